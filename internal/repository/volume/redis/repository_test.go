package redis

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sharetube/multiview/internal/repository/volume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*repo, *miniredis.Miniredis) {
	t.Helper()

	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	t.Cleanup(func() { rc.Close() })

	return NewRepo(rc, time.Hour, slog.Default()), s
}

func TestVolumeRoundTrip(t *testing.T) {
	r, s := newTestRepo(t)
	ctx := context.Background()

	_, err := r.GetVolume(ctx, "viewer1")
	assert.ErrorIs(t, err, volume.ErrVolumeNotFound)

	require.NoError(t, r.SetVolume(ctx, "viewer1", 42))

	v, err := r.GetVolume(ctx, "viewer1")
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, time.Hour, s.TTL("viewer:viewer1:volume"))
}

func TestVolumeRejectsOutOfRange(t *testing.T) {
	r, s := newTestRepo(t)
	ctx := context.Background()

	assert.ErrorIs(t, r.SetVolume(ctx, "viewer1", 101), volume.ErrInvalidVolume)

	require.NoError(t, s.Set("viewer:viewer2:volume", "loud"))
	_, err := r.GetVolume(ctx, "viewer2")
	assert.ErrorIs(t, err, volume.ErrInvalidVolume)
}

func TestVolumeExpires(t *testing.T) {
	r, s := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.SetVolume(ctx, "viewer1", 10))
	s.FastForward(2 * time.Hour)

	_, err := r.GetVolume(ctx, "viewer1")
	assert.ErrorIs(t, err, volume.ErrVolumeNotFound)
}
