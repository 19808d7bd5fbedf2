package volume

import "errors"

var (
	ErrVolumeNotFound = errors.New("volume not found")
	ErrInvalidVolume  = errors.New("invalid volume")
)
