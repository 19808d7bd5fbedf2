package playback

import "github.com/sharetube/multiview/internal/domain"

// Store is the per-stream logical playback state. Setters are synchronous
// and visible to the very next enforcement tick.
type Store struct {
	states    map[string]*domain.PlaybackState
	authority *VolumeAuthority
}

func NewStore(authority *VolumeAuthority) *Store {
	return &Store{
		states:    make(map[string]*domain.PlaybackState),
		authority: authority,
	}
}

func (s *Store) Get(streamID string) (domain.PlaybackState, bool) {
	st, ok := s.states[streamID]
	if !ok {
		return domain.PlaybackState{}, false
	}

	return *st, true
}

func (s *Store) ensure(streamID string) *domain.PlaybackState {
	st, ok := s.states[streamID]
	if !ok {
		v := s.authority.Get(streamID)
		st = &domain.PlaybackState{
			IsPlaying: true,
			Volume:    v,
			IsMuted:   v == 0,
		}
		s.states[streamID] = st
	}

	return st
}

// Put replaces the whole state of a stream, keeping the mute invariant.
func (s *Store) Put(streamID string, state domain.PlaybackState) {
	state.Volume = domain.ClampVolume(state.Volume)
	state.Progress = domain.ClampProgress(state.Progress)
	if state.Volume == 0 {
		state.IsMuted = true
	}

	st := s.ensure(streamID)
	*st = state
}

// SetPlaying toggles playback and re-resolves the volume from the authority
// in the same call so play state never pairs with a stale volume.
func (s *Store) SetPlaying(streamID string, playing bool) domain.PlaybackState {
	st := s.ensure(streamID)
	st.IsPlaying = playing
	st.Volume = s.authority.Get(streamID)
	if st.Volume == 0 {
		st.IsMuted = true
	}

	return *st
}

// SetMuted records the user's mute toggle. Unmuting at volume 0 is ignored.
func (s *Store) SetMuted(streamID string, muted bool) domain.PlaybackState {
	st := s.ensure(streamID)
	st.IsMuted = muted || st.Volume == 0
	return *st
}

// SetVolume writes the authority first, then the mirror.
func (s *Store) SetVolume(streamID string, volume int) domain.PlaybackState {
	volume = s.authority.Set(streamID, volume)

	st := s.ensure(streamID)
	st.Volume = volume
	st.IsMuted = volume == 0
	return *st
}

func (s *Store) SetProgress(streamID string, progress float64) domain.PlaybackState {
	st := s.ensure(streamID)
	st.Progress = domain.ClampProgress(progress)
	return *st
}

// Silence writes the mini-player shape without touching the authority.
func (s *Store) Silence(streamID string) domain.PlaybackState {
	st := s.ensure(streamID)
	st.IsPlaying = true
	st.IsMuted = true
	st.Volume = 0
	return *st
}

func (s *Store) Remove(streamID string) {
	delete(s.states, streamID)
}
