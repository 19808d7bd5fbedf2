package playback

import "github.com/sharetube/multiview/internal/domain"

// VolumeAuthority holds the last explicitly chosen volume per stream. It is
// the only place any component resolves "what volume should this stream play
// at"; the element's own volume is never trusted.
type VolumeAuthority struct {
	intents       map[string]int
	lastSession   int
	hasLast       bool
	onExplicitSet func(streamID string, volume int)
}

// NewVolumeAuthority creates an authority. lastSession is the volume
// persisted by a previous session, ok reports whether one exists.
func NewVolumeAuthority(lastSession int, ok bool) *VolumeAuthority {
	return &VolumeAuthority{
		intents:     make(map[string]int),
		lastSession: domain.ClampVolume(lastSession),
		hasLast:     ok,
	}
}

// OnSet registers a hook called after every explicit Set, used to persist
// the last chosen volume.
func (a *VolumeAuthority) OnSet(fn func(streamID string, volume int)) {
	a.onExplicitSet = fn
}

// Set records user intent. It must run before any element write.
func (a *VolumeAuthority) Set(streamID string, volume int) int {
	volume = domain.ClampVolume(volume)
	a.intents[streamID] = volume
	a.lastSession = volume
	a.hasLast = true

	if a.onExplicitSet != nil {
		a.onExplicitSet(streamID, volume)
	}

	return volume
}

// carry records a volume that is not a user choice (inherited on add and
// swap) and does not touch the last-session value.
func (a *VolumeAuthority) carry(streamID string, volume int) int {
	volume = domain.ClampVolume(volume)
	a.intents[streamID] = volume
	return volume
}

func (a *VolumeAuthority) Lookup(streamID string) (int, bool) {
	v, ok := a.intents[streamID]
	return v, ok
}

// Default is the fallback used when a stream has no intent yet.
func (a *VolumeAuthority) Default() int {
	if a.hasLast {
		return a.lastSession
	}

	return domain.DefaultVolume
}

func (a *VolumeAuthority) Get(streamID string) int {
	if v, ok := a.intents[streamID]; ok {
		return v
	}

	return a.Default()
}

func (a *VolumeAuthority) Forget(streamID string) {
	delete(a.intents, streamID)
}
