package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/isdelr/mediaverse-be/internal/common"
	"github.com/isdelr/mediaverse-be/internal/services"
	"github.com/isdelr/mediaverse-be/internal/storage"
)

var allowedImageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// multipart framing allowance on top of the file size limit
const multipartOverhead = 64 << 10

// Uploader accepts image uploads and hands them to a FileStore.
type Uploader struct {
	files    storage.FileStore
	remover  services.FileRemover
	maxBytes int64
}

// NewUploader creates an Uploader accepting files up to maxBytes.
func NewUploader(files storage.FileStore, remover services.FileRemover, maxBytes int64) *Uploader {
	return &Uploader{files: files, remover: remover, maxBytes: maxBytes}
}

// SaveImage stores the image sent in the multipart field and returns its
// reference. A request without a file yields an empty reference.
func (u *Uploader) SaveImage(w http.ResponseWriter, r *http.Request, field string) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, u.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(u.maxBytes); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", u.tooLarge()
		}
		return "", common.ErrUploadFailure.WithMessage("An unknown error occurred when uploading: " + err.Error())
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", common.ErrUploadFailure.WithMessage("An unknown error occurred when uploading: " + err.Error())
	}
	defer file.Close()

	if header.Size > u.maxBytes {
		return "", u.tooLarge()
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, ok := allowedImageTypes[ext]
	if !ok {
		return "", common.ErrUploadFailure.WithMessage("Only images are allowed")
	}

	ref, err := u.files.Save(r.Context(), uuid.NewString()+ext, contentType, file)
	if err != nil {
		return "", common.ErrUploadFailure.WithMessage("An unknown error occurred when uploading: " + err.Error())
	}
	return ref, nil
}

// Discard removes a stored upload that ended up unused.
func (u *Uploader) Discard(r *http.Request, ref string) {
	u.remover.RemoveAsync(r.Context(), ref)
}

func (u *Uploader) tooLarge() error {
	return common.ErrUploadFailure.WithMessage("Max file size is " + humanize.IBytes(uint64(u.maxBytes)))
}
