package viewer

import (
	"errors"
	"strconv"

	"github.com/sharetube/multiview/internal/domain"
)

var ErrUnknownKey = errors.New("unknown key")

const (
	QualityAuto  = "auto"
	Quality1080p = "1080p"
	Quality720p  = "720p"
	Quality480p  = "480p"
)

const volumeStep = 5

type setQualityParams struct {
	Quality string `validate:"oneof=auto 1080p 720p 480p"`
}

// SetQuality stores the selected quality. It does not affect playback.
func (s *Session) SetQuality(quality string) error {
	if err := s.validate.Check(&setQualityParams{Quality: quality}); err != nil {
		return err
	}

	return s.do(func() {
		s.quality = quality
		s.publish()
	})
}

func (s *Session) ToggleFullscreen() (bool, error) {
	var active bool
	err := s.do(func() {
		active = s.fullscreen.Toggle()
		s.publish()
	})

	return active, err
}

// SyncFullscreen records a fullscreen change made outside the session, like
// the viewer pressing Escape.
func (s *Session) SyncFullscreen(active bool) error {
	return s.do(func() {
		if s.fullscreen.IsFullscreen() == active {
			return
		}
		s.fullscreen.Sync(active)
		s.publish()
	})
}

// HandleKey maps a keyboard shortcut to its action.
func (s *Session) HandleKey(key string) error {
	var keyErr error
	if err := s.do(func() {
		keyErr = s.handleKey(key)
		if keyErr == nil {
			s.publish()
		}
	}); err != nil {
		return err
	}

	return keyErr
}

func (s *Session) handleKey(key string) error {
	var err error
	switch key {
	case " ", "Space", "space", "k":
		_, err = s.engine.TogglePlay()
	case "m":
		_, err = s.engine.ToggleMute()
	case "ArrowUp":
		_, err = s.stepVolume(volumeStep)
	case "ArrowDown":
		_, err = s.stepVolume(-volumeStep)
	case "f":
		s.fullscreen.Toggle()
	case "1", "2", "3":
		n, _ := strconv.Atoi(key)
		if n > s.engine.Streams().Length() {
			return domain.ErrStreamNotFound
		}
		_, err = s.engine.Promote(n - 1)
	default:
		return ErrUnknownKey
	}

	return err
}
