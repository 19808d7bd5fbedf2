package viewer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sharetube/multiview/internal/domain"
	"github.com/sharetube/multiview/internal/media/remote"
	"github.com/sharetube/multiview/internal/playback"
)

type AddStreamParams struct {
	ID          string    `json:"id" validate:"omitempty,max=64"`
	SourceURL   string    `json:"source_url" validate:"required,url"`
	EventID     string    `json:"event_id" validate:"omitempty,max=64"`
	ViewerCount int       `json:"viewer_count" validate:"gte=0"`
	StartedAt   time.Time `json:"started_at"`
}

// AddStream adds a stream as the new main. Event metadata is fetched
// before entering the loop; a failed lookup leaves the display fields empty.
func (s *Session) AddStream(ctx context.Context, params *AddStreamParams) (string, error) {
	if err := s.validate.Check(params); err != nil {
		return "", err
	}

	stream := &domain.Stream{
		ID:          params.ID,
		SourceURL:   params.SourceURL,
		ViewerCount: params.ViewerCount,
		StartedAt:   params.StartedAt,
		EventID:     params.EventID,
	}
	if stream.ID == "" {
		stream.ID = uuid.NewString()
	}

	if params.EventID != "" && s.events != nil {
		details, err := s.events.GetEventDetails(ctx, params.EventID)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to get event details", "event_id", params.EventID, "error", err)
		} else {
			stream.Title = details.Title
			stream.OrganizerName = details.OrganizerName
			stream.Category = details.Category
		}
	}

	var addErr error
	if err := s.do(func() {
		if addErr = s.engine.AddStream(stream); addErr == nil {
			s.publish()
		}
	}); err != nil {
		return "", err
	}
	if addErr != nil {
		return "", addErr
	}

	return stream.ID, nil
}

func (s *Session) RemoveStream(index int) error {
	var removeErr error
	if err := s.do(func() {
		if _, removeErr = s.engine.RemoveStream(index); removeErr == nil {
			s.publish()
		}
	}); err != nil {
		return err
	}

	return removeErr
}

// Promote starts a swap. It reports false when nothing happened because the
// stream is already main or another swap is running.
func (s *Session) Promote(index int) (bool, error) {
	var (
		started    bool
		promoteErr error
	)
	if err := s.do(func() {
		started, promoteErr = s.engine.Promote(index)
		if started {
			s.publish()
		}
	}); err != nil {
		return false, err
	}

	return started, promoteErr
}

// stateAction runs a playback state change on the loop and publishes on
// success.
func (s *Session) stateAction(fn func() (domain.PlaybackState, error)) (domain.PlaybackState, error) {
	var (
		st       domain.PlaybackState
		stateErr error
	)
	if err := s.do(func() {
		if st, stateErr = fn(); stateErr == nil {
			s.publish()
		}
	}); err != nil {
		return domain.PlaybackState{}, err
	}

	return st, stateErr
}

func (s *Session) TogglePlay() (domain.PlaybackState, error) {
	return s.stateAction(s.engine.TogglePlay)
}

func (s *Session) SetVolume(v int) (domain.PlaybackState, error) {
	return s.stateAction(func() (domain.PlaybackState, error) {
		return s.engine.SetVolume(v)
	})
}

func (s *Session) ToggleMute() (domain.PlaybackState, error) {
	return s.stateAction(s.engine.ToggleMute)
}

// stepVolume moves the main stream's volume relative to its authority value.
func (s *Session) stepVolume(delta int) (domain.PlaybackState, error) {
	mainID, ok := s.engine.Streams().MainID()
	if !ok {
		return domain.PlaybackState{}, domain.ErrNoStreams
	}

	return s.engine.SetVolume(s.engine.Authority().Get(mainID) + delta)
}

// Mount attaches the element rendered for a stream.
func (s *Session) Mount(streamID string, el playback.MediaElement) error {
	var mountErr error
	if err := s.do(func() {
		mountErr = s.engine.Mount(streamID, el)
	}); err != nil {
		return err
	}

	return mountErr
}

func (s *Session) Unmount(streamID string) error {
	return s.do(func() {
		s.engine.Unmount(streamID)
	})
}

type reportable interface {
	Apply(r *remote.Report)
}

// MediaEvent handles a native media event. The report, when present,
// refreshes the remote mirror before the engine reacts.
func (s *Session) MediaEvent(streamID string, event playback.MediaEvent, report *remote.Report) error {
	var eventErr error
	if err := s.do(func() {
		if el, ok := s.engine.Handles().Get(streamID); ok && report != nil {
			if r, ok := el.(reportable); ok {
				r.Apply(report)
			}
		}

		eventErr = s.engine.HandleMediaEvent(streamID, event)
		if eventErr == nil {
			s.publish()
		}
	}); err != nil {
		return err
	}
	if eventErr != nil {
		return fmt.Errorf("failed to handle %q: %w", event, eventErr)
	}

	return nil
}
