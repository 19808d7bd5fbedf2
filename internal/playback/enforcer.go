package playback

import "log/slog"

type roster interface {
	IDs() []string
	MainID() (string, bool)
}

type gate interface {
	Idle() bool
}

// Enforcer re-asserts the playback invariants on every mounted element. It
// is the safety net for any action that raced with the platform: drift is
// corrected within one tick. A tick without drift writes nothing.
type Enforcer struct {
	streams   roster
	store     *Store
	authority *VolumeAuthority
	handles   *Handles
	gate      gate
	logger    *slog.Logger
	rec       Recorder
}

func NewEnforcer(streams roster, store *Store, authority *VolumeAuthority, handles *Handles, g gate, logger *slog.Logger, rec Recorder) *Enforcer {
	return &Enforcer{
		streams:   streams,
		store:     store,
		authority: authority,
		handles:   handles,
		gate:      g,
		logger:    logger,
		rec:       rec,
	}
}

// Tick runs one correction pass and returns the number of writes made.
func (e *Enforcer) Tick() int {
	if !e.gate.Idle() {
		return 0
	}

	mainID, _ := e.streams.MainID()

	corrections := 0
	for _, id := range e.streams.IDs() {
		el, ok := e.handles.Get(id)
		if !ok {
			continue
		}

		if id == mainID {
			corrections += e.enforceMain(id, el)
		} else {
			corrections += e.enforceMini(id, el)
		}
	}

	return corrections
}

func (e *Enforcer) correct(kind string) int {
	e.rec.Correction(kind)
	return 1
}

func (e *Enforcer) enforceMini(id string, el MediaElement) int {
	n := 0
	if !el.Muted() {
		el.SetMuted(true)
		n += e.correct(CorrectionMute)
	}
	if el.Volume() != 0 {
		el.SetVolume(0)
		n += e.correct(CorrectionVolume)
	}
	if el.Paused() {
		play(el, id, e.logger, e.rec)
		n += e.correct(CorrectionPlay)
	}

	return n
}

func (e *Enforcer) enforceMain(id string, el MediaElement) int {
	n := 0

	target := toElementVolume(e.authority.Get(id))
	if volumeDiffers(el.Volume(), target) {
		el.SetVolume(target)
		n += e.correct(CorrectionVolume)
	}

	state, ok := e.store.Get(id)
	if !ok {
		return n
	}

	if state.IsPlaying {
		if el.Muted() != state.IsMuted {
			el.SetMuted(state.IsMuted)
			if state.IsMuted {
				n += e.correct(CorrectionMute)
			} else {
				n += e.correct(CorrectionUnmute)
			}
		}
		if el.Paused() {
			play(el, id, e.logger, e.rec)
			n += e.correct(CorrectionPlay)
		}

		return n
	}

	// paused main: keep it paused and silent, stored volume stays as is
	if !el.Paused() {
		el.Pause()
		n += e.correct(CorrectionPause)
	}
	if !el.Muted() {
		el.SetMuted(true)
		n += e.correct(CorrectionMute)
	}

	return n
}
