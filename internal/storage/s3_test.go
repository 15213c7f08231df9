package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	put     *s3.PutObjectInput
	body    string
	deleted []string
	err     error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.put = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_SaveAndRemove(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{}
	s := &S3Store{client: fake, bucket: "media", prefix: "avatars"}

	ref, err := s.Save(ctx, "../a.png", "image/png", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "avatars/a.png", ref)
	assert.Equal(t, "media", aws.ToString(fake.put.Bucket))
	assert.Equal(t, "image/png", aws.ToString(fake.put.ContentType))
	assert.Equal(t, "data", fake.body)

	require.NoError(t, s.Remove(ctx, ref))
	assert.Equal(t, []string{"avatars/a.png"}, fake.deleted)
}

func TestS3Store_Errors(t *testing.T) {
	ctx := context.Background()
	s := &S3Store{client: &fakeS3{err: errors.New("denied")}, bucket: "media"}

	_, err := s.Save(ctx, "a.png", "", strings.NewReader("data"))
	assert.ErrorContains(t, err, "denied")
	assert.ErrorContains(t, s.Remove(ctx, "a.png"), "denied")
}

func TestNewS3Store_AppliesConfig(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-west-1", lo.Region)
		assert.NotNil(t, lo.Credentials)
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &fakeS3{}
	}

	s, err := NewS3Store(context.Background(), S3Config{
		Bucket:       "media",
		Region:       "eu-west-1",
		BaseEndpoint: "http://127.0.0.1:9000",
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
	})
	require.NoError(t, err)
	assert.Equal(t, "media", s.bucket)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestNewS3Store_LoadError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no region")
	}

	_, err := NewS3Store(context.Background(), S3Config{})
	assert.ErrorContains(t, err, "no region")
}
