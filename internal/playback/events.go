package playback

import (
	"errors"

	"github.com/sharetube/multiview/internal/domain"
)

var ErrUnknownMediaEvent = errors.New("unknown media event")

type MediaEvent string

const (
	EventPlay         MediaEvent = "play"
	EventPause        MediaEvent = "pause"
	EventVolumeChange MediaEvent = "volumechange"
	EventTimeUpdate   MediaEvent = "timeupdate"
	EventPlayRejected MediaEvent = "playrejected"
)

// HandleMediaEvent reacts to a native element event. The event only
// triggers a re-resolve from the authority: it never decides the volume by
// itself, so a spurious platform play/pause cannot drop the user's choice.
func (e *Engine) HandleMediaEvent(streamID string, event MediaEvent) error {
	el, ok := e.handles.Get(streamID)
	if !ok {
		// late event from an unmounted element
		return nil
	}

	switch event {
	case EventPlay, EventPause, EventVolumeChange, EventPlayRejected:
	case EventTimeUpdate:
		if d := el.Duration(); d > 0 {
			e.store.SetProgress(streamID, el.CurrentTime()/d*100)
		}
		return nil
	default:
		return ErrUnknownMediaEvent
	}

	if event == EventPlayRejected {
		e.rec.PlayRejected()
	}

	// the swap owns every element until it settles
	if !e.swapper.Idle() {
		return nil
	}

	if !e.streams.IsMain(streamID) {
		if event == EventPlayRejected {
			// the enforcement tick retries play
			el.SetMuted(true)
			el.SetVolume(0)
			return nil
		}
		silence(el, streamID, e.logger, e.rec)
		return nil
	}

	var st domain.PlaybackState
	switch event {
	case EventPlay:
		st = e.store.SetPlaying(streamID, true)
	case EventPause:
		st = e.store.SetPlaying(streamID, false)
	default:
		// volumechange and playrejected keep the logical play state
		current, _ := e.store.Get(streamID)
		st = e.store.SetPlaying(streamID, current.IsPlaying)
	}

	el.SetVolume(toElementVolume(e.authority.Get(streamID)))
	if st.IsPlaying && !el.Paused() {
		el.SetMuted(st.IsMuted)
	} else {
		el.SetMuted(true)
	}

	return nil
}
