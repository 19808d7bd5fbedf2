package inmemory

import (
	"context"
	"sync"

	"github.com/sharetube/multiview/internal/repository/volume"
)

type repo struct {
	volumes map[string]int
	mu      sync.RWMutex
}

func NewRepo() *repo {
	return &repo{volumes: make(map[string]int)}
}

func (r *repo) GetVolume(_ context.Context, viewerID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.volumes[viewerID]
	if !ok {
		return 0, volume.ErrVolumeNotFound
	}

	return v, nil
}

func (r *repo) SetVolume(_ context.Context, viewerID string, v int) error {
	if v < 0 || v > 100 {
		return volume.ErrInvalidVolume
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.volumes[viewerID] = v
	return nil
}
