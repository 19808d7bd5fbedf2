package playback

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sharetube/multiview/internal/domain"
)

var ErrInvalidPromote = errors.New("invalid promote target")

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseMuting
	PhaseAnimating
	PhaseCommitting
	PhaseSettling
)

func (p Phase) String() string {
	switch p {
	case PhaseMuting:
		return "muting"
	case PhaseAnimating:
		return "animating"
	case PhaseCommitting:
		return "committing"
	case PhaseSettling:
		return "settling"
	default:
		return "idle"
	}
}

// Scheduler runs fn once after d on the owner's event loop.
type Scheduler func(d time.Duration, fn func())

type Transition struct {
	FromIndex      int
	ToIndex        int
	Phase          Phase
	SavedPositions map[string]float64
	token          uint64
}

// Swapper exchanges the main stream. The logical commit is applied when the
// swap starts; only the settle step waits for the animation.
type Swapper struct {
	streams   *domain.Streams
	store     *Store
	authority *VolumeAuthority
	handles   *Handles
	schedule  Scheduler
	animation time.Duration
	logger    *slog.Logger
	rec       Recorder

	current *Transition
	tokens  uint64
}

func NewSwapper(streams *domain.Streams, store *Store, authority *VolumeAuthority, handles *Handles, schedule Scheduler, animation time.Duration, logger *slog.Logger, rec Recorder) *Swapper {
	return &Swapper{
		streams:   streams,
		store:     store,
		authority: authority,
		handles:   handles,
		schedule:  schedule,
		animation: animation,
		logger:    logger,
		rec:       rec,
	}
}

func (s *Swapper) Idle() bool {
	return s.current == nil
}

func (s *Swapper) Phase() Phase {
	if s.current == nil {
		return PhaseIdle
	}

	return s.current.Phase
}

// Current returns a copy of the in-flight transition.
func (s *Swapper) Current() (Transition, bool) {
	if s.current == nil {
		return Transition{}, false
	}

	t := *s.current
	t.SavedPositions = make(map[string]float64, len(s.current.SavedPositions))
	for id, pos := range s.current.SavedPositions {
		t.SavedPositions[id] = pos
	}

	return t, true
}

// Promote starts a swap to toIndex. It reports false without side effects
// when toIndex already is main or a swap is in flight.
func (s *Swapper) Promote(toIndex int) (bool, error) {
	if s.current != nil {
		s.logger.Debug("promote ignored, swap in flight", "to_index", toIndex)
		s.rec.PromoteIgnored()
		return false, nil
	}

	if _, err := s.streams.At(toIndex); err != nil {
		return false, ErrInvalidPromote
	}

	fromIndex := s.streams.MainIndex()
	if toIndex == fromIndex {
		return false, nil
	}

	s.tokens++
	t := &Transition{
		FromIndex:      fromIndex,
		ToIndex:        toIndex,
		SavedPositions: make(map[string]float64),
		token:          s.tokens,
	}
	s.current = t

	t.Phase = PhaseMuting
	s.mute(t)

	t.Phase = PhaseCommitting
	if err := s.commit(t); err != nil {
		// nothing was committed; release the elements back to the loop
		s.current = nil
		return false, err
	}

	t.Phase = PhaseAnimating
	token := t.token
	s.schedule(s.animation, func() {
		s.settle(token)
	})

	s.rec.Swap()
	s.logger.Debug("swap started", "from_index", fromIndex, "to_index", toIndex)

	return true, nil
}

// mute silences every element before anything else changes, so the old and
// new main never overlap in audio.
func (s *Swapper) mute(t *Transition) {
	for _, id := range s.streams.IDs() {
		el, ok := s.handles.Get(id)
		if !ok {
			continue
		}

		t.SavedPositions[id] = el.CurrentTime()
		el.Pause()
		el.SetMuted(true)
		el.SetVolume(0)
	}
}

func (s *Swapper) commit(t *Transition) error {
	oldMain, err := s.streams.At(t.FromIndex)
	if err != nil {
		return err
	}
	newMain, err := s.streams.At(t.ToIndex)
	if err != nil {
		return err
	}

	volume := s.authority.Get(oldMain.ID)

	if err := s.streams.SetMain(t.ToIndex); err != nil {
		return err
	}

	s.authority.carry(newMain.ID, volume)
	progress := 0.0
	if st, ok := s.store.Get(newMain.ID); ok {
		progress = st.Progress
	}
	s.store.Put(newMain.ID, domain.PlaybackState{
		IsPlaying: true,
		IsMuted:   false,
		Volume:    volume,
		Progress:  progress,
	})
	s.store.Silence(oldMain.ID)

	return nil
}

func (s *Swapper) settle(token uint64) {
	t := s.current
	if t == nil || t.token != token {
		return
	}

	t.Phase = PhaseSettling

	mainID, _ := s.streams.MainID()
	for _, id := range s.streams.IDs() {
		el, ok := s.handles.Get(id)
		if !ok {
			continue
		}

		if pos, ok := t.SavedPositions[id]; ok {
			el.SetCurrentTime(pos)
		}

		if id != mainID {
			silence(el, id, s.logger, s.rec)
			continue
		}

		state, _ := s.store.Get(id)
		el.SetVolume(toElementVolume(s.authority.Get(id)))
		el.SetMuted(state.IsMuted || !state.IsPlaying)
		if state.IsPlaying {
			play(el, id, s.logger, s.rec)
		}
	}

	s.current = nil
	s.logger.Debug("swap settled", "main_id", mainID)
}

// Cancel drops an in-flight swap without settling. A pending settle timer
// becomes a no-op.
func (s *Swapper) Cancel() {
	s.current = nil
}
