package storage

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFISPQKey(t *testing.T) {
	key := NewFISPQKey(42, "Ficha Ácido.PDF")
	assert.Regexp(t, regexp.MustCompile(`^fispq/42/[0-9a-f-]{36}\.pdf$`), key)
	assert.NotEqual(t, key, NewFISPQKey(42, "Ficha Ácido.PDF"))
	assert.Regexp(t, `\.pdf$`, NewFISPQKey(1, "noext"))
}

func TestNewS3StoreRequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), Options{})
	assert.Error(t, err)
}

func TestPresignGetIsOffline(t *testing.T) {
	store, err := NewS3Store(context.Background(), Options{
		Bucket:       "lab-docs",
		Region:       "us-east-1",
		Endpoint:     "http://127.0.0.1:9000",
		AccessKey:    "key",
		SecretKey:    "secret",
		UsePathStyle: true,
	})
	require.NoError(t, err)

	url, err := store.PresignGet(context.Background(), "fispq/1/a.pdf", "a.pdf", 15*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "http://127.0.0.1:9000/lab-docs/fispq/1/a.pdf")
	assert.Contains(t, url, "X-Amz-Expires=900")
}
