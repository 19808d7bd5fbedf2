package playback

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sharetube/multiview/internal/domain"
	"golang.org/x/exp/slices"
)

var (
	ErrSwapInProgress = errors.New("swap in progress")
	ErrNotMain        = errors.New("stream is not main")
)

type Config struct {
	StreamsLimit   int
	SwapDuration   time.Duration
	LastVolume     int
	HasLastVolume  bool
	OnLeave        func()
	OnVolumeChosen func(streamID string, volume int)
	Schedule       Scheduler
	Recorder       Recorder
	Logger         *slog.Logger
}

// Engine owns every piece of playback state for one viewer. It is not safe
// for concurrent use: the caller serializes all access on one goroutine.
type Engine struct {
	streams   *domain.Streams
	authority *VolumeAuthority
	store     *Store
	handles   *Handles
	swapper   *Swapper
	enforcer  *Enforcer
	onLeave   func()
	logger    *slog.Logger
	rec       Recorder
}

func NewEngine(cfg *Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rec := cfg.Recorder
	if rec == nil {
		rec = nopRecorder{}
	}
	onLeave := cfg.OnLeave
	if onLeave == nil {
		onLeave = func() {}
	}

	streams := domain.NewStreams(cfg.StreamsLimit)
	authority := NewVolumeAuthority(cfg.LastVolume, cfg.HasLastVolume)
	if cfg.OnVolumeChosen != nil {
		authority.OnSet(cfg.OnVolumeChosen)
	}
	store := NewStore(authority)
	handles := NewHandles()
	swapper := NewSwapper(streams, store, authority, handles, cfg.Schedule, cfg.SwapDuration, logger, rec)

	return &Engine{
		streams:   streams,
		authority: authority,
		store:     store,
		handles:   handles,
		swapper:   swapper,
		enforcer:  NewEnforcer(streams, store, authority, handles, swapper, logger, rec),
		onLeave:   onLeave,
		logger:    logger,
		rec:       rec,
	}
}

func (e *Engine) Streams() *domain.Streams    { return e.streams }
func (e *Engine) Authority() *VolumeAuthority { return e.authority }
func (e *Engine) Store() *Store               { return e.store }
func (e *Engine) Handles() *Handles           { return e.handles }
func (e *Engine) Swapper() *Swapper           { return e.swapper }

// AddStream makes the stream main. The departing main is silenced and its
// volume seeds the new stream.
func (e *Engine) AddStream(stream *domain.Stream) error {
	if !e.swapper.Idle() {
		return ErrSwapInProgress
	}

	seed := e.authority.Default()
	if mainID, ok := e.streams.MainID(); ok {
		seed = e.authority.Get(mainID)
	}

	previousMainID, err := e.streams.Add(stream)
	if err != nil {
		return fmt.Errorf("failed to add stream: %w", err)
	}

	if previousMainID != "" {
		e.store.Silence(previousMainID)
		if el, ok := e.handles.Get(previousMainID); ok {
			silence(el, previousMainID, e.logger, e.rec)
		}
	}

	volume := e.authority.carry(stream.ID, seed)
	e.store.Put(stream.ID, domain.PlaybackState{
		IsPlaying: true,
		IsMuted:   volume == 0,
		Volume:    volume,
	})

	e.logger.Debug("stream added", "stream_id", stream.ID, "volume", volume, "previous_main_id", previousMainID)
	return nil
}

// RemoveStream removes the stream at index and frees its state. Removing the
// last stream signals leave.
func (e *Engine) RemoveStream(index int) (domain.Stream, error) {
	wasMain := index == e.streams.MainIndex()
	departing, err := e.streams.At(index)
	if err != nil {
		return domain.Stream{}, fmt.Errorf("failed to remove stream: %w", err)
	}
	volume := e.authority.Get(departing.ID)

	stream, err := e.streams.Remove(index)
	if err != nil {
		return domain.Stream{}, fmt.Errorf("failed to remove stream: %w", err)
	}

	if el, ok := e.handles.Get(stream.ID); ok {
		el.Pause()
		el.SetMuted(true)
		e.handles.Delete(stream.ID)
	}
	e.store.Remove(stream.ID)
	e.authority.Forget(stream.ID)

	if e.streams.Length() == 0 {
		e.swapper.Cancel()
		e.logger.Debug("last stream removed", "stream_id", stream.ID)
		e.onLeave()
		return stream, nil
	}

	if !wasMain {
		return stream, nil
	}

	// the first remaining stream takes over with the departing main's volume
	mainID, _ := e.streams.MainID()
	e.authority.carry(mainID, volume)
	st, _ := e.store.Get(mainID)
	e.store.Put(mainID, domain.PlaybackState{
		IsPlaying: true,
		IsMuted:   volume == 0,
		Volume:    volume,
		Progress:  st.Progress,
	})
	if el, ok := e.handles.Get(mainID); ok && e.swapper.Idle() {
		e.applyMain(mainID, el, e.mustState(mainID))
	}

	return stream, nil
}

// Mount registers the element for a stream and brings it to the right audio
// shape before any play call.
func (e *Engine) Mount(streamID string, el MediaElement) error {
	if _, _, err := e.streams.GetByID(streamID); err != nil {
		return fmt.Errorf("failed to mount: %w", err)
	}

	e.handles.Set(streamID, el)

	if !e.swapper.Idle() {
		// settle applies the final shape
		el.Pause()
		el.SetMuted(true)
		el.SetVolume(0)
		return nil
	}

	if !e.streams.IsMain(streamID) {
		silence(el, streamID, e.logger, e.rec)
		return nil
	}

	volume := e.resolveMountVolume(streamID)
	st, _ := e.store.Get(streamID)
	el.SetVolume(toElementVolume(volume))
	if st.IsPlaying {
		el.SetMuted(st.IsMuted || volume == 0)
		play(el, streamID, e.logger, e.rec)
	} else {
		el.SetMuted(true)
	}

	return nil
}

func (e *Engine) resolveMountVolume(streamID string) int {
	if v, ok := e.authority.Lookup(streamID); ok {
		return v
	}
	if st, ok := e.store.Get(streamID); ok {
		return st.Volume
	}

	return e.authority.Default()
}

func (e *Engine) Unmount(streamID string) bool {
	return e.handles.Delete(streamID)
}

// TogglePlay flips play/pause on the main stream. Pausing mutes the element
// but keeps the stored volume for resume.
func (e *Engine) TogglePlay() (domain.PlaybackState, error) {
	mainID, ok := e.streams.MainID()
	if !ok {
		return domain.PlaybackState{}, domain.ErrNoStreams
	}

	current, _ := e.store.Get(mainID)
	return e.SetPlaying(mainID, !current.IsPlaying)
}

func (e *Engine) SetPlaying(streamID string, playing bool) (domain.PlaybackState, error) {
	if !e.streams.IsMain(streamID) {
		return domain.PlaybackState{}, ErrNotMain
	}

	st := e.store.SetPlaying(streamID, playing)
	if el, ok := e.handles.Get(streamID); ok && e.swapper.Idle() {
		e.applyMain(streamID, el, st)
	}

	return st, nil
}

func (e *Engine) SetVolume(volume int) (domain.PlaybackState, error) {
	mainID, ok := e.streams.MainID()
	if !ok {
		return domain.PlaybackState{}, domain.ErrNoStreams
	}

	st := e.store.SetVolume(mainID, volume)
	if el, ok := e.handles.Get(mainID); ok && e.swapper.Idle() {
		e.applyMain(mainID, el, st)
	}

	return st, nil
}

func (e *Engine) ToggleMute() (domain.PlaybackState, error) {
	mainID, ok := e.streams.MainID()
	if !ok {
		return domain.PlaybackState{}, domain.ErrNoStreams
	}

	current, _ := e.store.Get(mainID)
	st := e.store.SetMuted(mainID, !current.IsMuted)
	if el, ok := e.handles.Get(mainID); ok && e.swapper.Idle() {
		e.applyMain(mainID, el, st)
	}

	return st, nil
}

func (e *Engine) mustState(streamID string) domain.PlaybackState {
	st, _ := e.store.Get(streamID)
	return st
}

func (e *Engine) applyMain(streamID string, el MediaElement, st domain.PlaybackState) {
	el.SetVolume(toElementVolume(e.authority.Get(streamID)))
	if st.IsPlaying {
		el.SetMuted(st.IsMuted)
		if el.Paused() {
			play(el, streamID, e.logger, e.rec)
		}
		return
	}

	el.Pause()
	el.SetMuted(true)
}

func (e *Engine) Promote(toIndex int) (bool, error) {
	return e.swapper.Promote(toIndex)
}

// Tick runs one enforcement pass; it does nothing while a swap is in flight.
func (e *Engine) Tick() int {
	return e.enforcer.Tick()
}

// Teardown cancels any swap and drops every handle.
func (e *Engine) Teardown() {
	e.swapper.Cancel()
	for _, id := range e.handles.IDs() {
		e.handles.Delete(id)
	}
}

type StreamView struct {
	domain.Stream
	State  domain.PlaybackState `json:"state"`
	IsMain bool                 `json:"is_main"`
}

type View struct {
	Streams   []StreamView `json:"streams"`
	MainIndex int          `json:"main_index"`
	SwapPhase string       `json:"swap_phase"`
}

func (e *Engine) View() View {
	list := e.streams.AsList()
	views := make([]StreamView, 0, len(list))
	for i, stream := range list {
		stream.ChatMessages = slices.Clone(stream.ChatMessages)
		st, _ := e.store.Get(stream.ID)
		views = append(views, StreamView{
			Stream: stream,
			State:  st,
			IsMain: i == e.streams.MainIndex(),
		})
	}

	return View{
		Streams:   views,
		MainIndex: e.streams.MainIndex(),
		SwapPhase: e.swapper.Phase().String(),
	}
}
