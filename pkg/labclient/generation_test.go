package labclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneration_NewerRequestMakesOlderStale(t *testing.T) {
	var g Generation
	first := g.Begin(context.Background())
	assert.True(t, first.Current())

	second := g.Begin(context.Background())
	assert.False(t, first.Current())
	assert.True(t, second.Current())
	assert.ErrorIs(t, first.Context().Err(), context.Canceled)
	assert.NoError(t, second.Context().Err())

	g.Stop()
	assert.False(t, second.Current())
	assert.ErrorIs(t, second.Context().Err(), context.Canceled)
}

func TestLatest_DiscardsSupersededResult(t *testing.T) {
	var g Generation
	ctx := context.Background()

	release := make(chan struct{})
	started := make(chan struct{})
	type result struct {
		v   string
		err error
	}
	slow := make(chan result, 1)
	go func() {
		v, err := Latest(ctx, &g, func(ctx context.Context) (string, error) {
			close(started)
			<-release
			return "old", nil
		})
		slow <- result{v, err}
	}()

	<-started
	v, err := Latest(ctx, &g, func(context.Context) (string, error) { return "new", nil })
	require.NoError(t, err)
	assert.Equal(t, "new", v)

	close(release)
	old := <-slow
	assert.ErrorIs(t, old.err, ErrStale)
	assert.Empty(t, old.v)
}

func TestLatest_ReleasesContextOfCurrentTicket(t *testing.T) {
	var g Generation
	var seen context.Context
	v, err := Latest(context.Background(), &g, func(ctx context.Context) (int, error) {
		seen = ctx
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	require.NotNil(t, seen)
	assert.ErrorIs(t, seen.Err(), context.Canceled)
}
