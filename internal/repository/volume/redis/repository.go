package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/multiview/internal/repository/volume"
)

type repo struct {
	rc             *redis.Client
	expireDuration time.Duration
	logger         *slog.Logger
}

func NewRepo(rc *redis.Client, expireDuration time.Duration, logger *slog.Logger) *repo {
	return &repo{
		rc:             rc,
		expireDuration: expireDuration,
		logger:         logger,
	}
}

func (r repo) getVolumeKey(viewerID string) string {
	return "viewer:" + viewerID + ":volume"
}

func (r repo) GetVolume(ctx context.Context, viewerID string) (int, error) {
	funcName := "volume.redis.GetVolume"
	r.logger.DebugContext(ctx, funcName, "viewerID", viewerID)

	volumeKey := r.getVolumeKey(viewerID)
	res, err := r.rc.Get(ctx, volumeKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, volume.ErrVolumeNotFound
		}

		return 0, fmt.Errorf("failed to get volume: %w", err)
	}

	v, err := strconv.Atoi(res)
	if err != nil || v < 0 || v > 100 {
		r.logger.InfoContext(ctx, funcName, "error", volume.ErrInvalidVolume, "value", res)
		return 0, volume.ErrInvalidVolume
	}

	r.rc.Expire(ctx, volumeKey, r.expireDuration)

	r.logger.DebugContext(ctx, funcName, "result", v)
	return v, nil
}

func (r repo) SetVolume(ctx context.Context, viewerID string, v int) error {
	funcName := "volume.redis.SetVolume"
	r.logger.DebugContext(ctx, funcName, "viewerID", viewerID, "volume", v)

	if v < 0 || v > 100 {
		return volume.ErrInvalidVolume
	}

	if err := r.rc.Set(ctx, r.getVolumeKey(viewerID), v, r.expireDuration).Err(); err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}

	return nil
}
