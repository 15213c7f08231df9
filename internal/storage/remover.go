package storage

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const removeTimeout = 30 * time.Second

// Remover deletes files in the background. Failures are logged and never
// reach the caller.
type Remover struct {
	files FileStore
	wg    sync.WaitGroup
}

func NewRemover(files FileStore) *Remover {
	return &Remover{files: files}
}

// RemoveAsync schedules removal of every non-empty ref. The work outlives
// ctx's cancellation but keeps its values.
func (r *Remover) RemoveAsync(ctx context.Context, refs ...string) {
	var pending []string
	for _, ref := range refs {
		if ref != "" {
			pending = append(pending, ref)
		}
	}
	if len(pending) == 0 {
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), removeTimeout)
		defer cancel()

		for _, ref := range pending {
			if err := r.files.Remove(ctx, ref); err != nil {
				log.Error().Err(err).Str("file", ref).Msg("Failed to remove file")
			}
		}
	}()
}

// Wait blocks until every scheduled removal has finished.
func (r *Remover) Wait() {
	r.wg.Wait()
}
