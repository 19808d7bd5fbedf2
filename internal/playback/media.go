package playback

import (
	"log/slog"
	"math"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// MediaElement is the capability surface of one playable media element.
// Volume is in [0,1]. Play may fail when the platform blocks autoplay; the
// failure is never fatal.
type MediaElement interface {
	Play() error
	Pause()
	Volume() float64
	SetVolume(float64)
	Muted() bool
	SetMuted(bool)
	CurrentTime() float64
	SetCurrentTime(float64)
	Duration() float64
	Paused() bool
}

// Handles maps stream ids to mounted media elements. Entries are removed
// synchronously on unmount so no later tick can reach a stale element.
type Handles struct {
	elements map[string]MediaElement
}

func NewHandles() *Handles {
	return &Handles{elements: make(map[string]MediaElement)}
}

func (h *Handles) Set(streamID string, el MediaElement) {
	h.elements[streamID] = el
}

func (h *Handles) Get(streamID string) (MediaElement, bool) {
	el, ok := h.elements[streamID]
	return el, ok
}

func (h *Handles) Delete(streamID string) bool {
	if _, ok := h.elements[streamID]; !ok {
		return false
	}

	delete(h.elements, streamID)
	return true
}

func (h *Handles) IDs() []string {
	ids := maps.Keys(h.elements)
	slices.Sort(ids)
	return ids
}

func (h *Handles) Len() int {
	return len(h.elements)
}

const volumeEpsilon = 1e-3

func volumeDiffers(a, b float64) bool {
	return math.Abs(a-b) > volumeEpsilon
}

func toElementVolume(v int) float64 {
	return float64(v) / 100
}

// play starts playback and swallows autoplay rejections.
func play(el MediaElement, streamID string, logger *slog.Logger, rec Recorder) {
	if err := el.Play(); err != nil {
		logger.Debug("play rejected", "stream_id", streamID, "error", err)
		rec.PlayRejected()
	}
}

// silence puts an element into the mini-player shape: muted, zero volume,
// playing.
func silence(el MediaElement, streamID string, logger *slog.Logger, rec Recorder) {
	el.SetMuted(true)
	el.SetVolume(0)
	if el.Paused() {
		play(el, streamID, logger, rec)
	}
}
