// Package remote mirrors a media element that lives in the viewer's
// browser. Writes go out as commands; the page reports the element's real
// state back, which overwrites the mirror.
package remote

import (
	"fmt"
	"log/slog"
	"sync"
)

const (
	OpPlay           = "play"
	OpPause          = "pause"
	OpSetVolume      = "set_volume"
	OpSetMuted       = "set_muted"
	OpSetCurrentTime = "set_current_time"
	OpFullscreen     = "fullscreen"
	OpExitFullscreen = "exit_fullscreen"
)

type Command struct {
	StreamID string `json:"stream_id,omitempty"`
	Op       string `json:"op"`
	Value    any    `json:"value,omitempty"`
}

type Sender interface {
	SendCommand(cmd *Command) error
}

// Report is the element state as seen by the page.
type Report struct {
	Paused      bool    `json:"paused"`
	Volume      float64 `json:"volume" validate:"gte=0,lte=1"`
	Muted       bool    `json:"muted"`
	CurrentTime float64 `json:"current_time" validate:"gte=0"`
	Duration    float64 `json:"duration" validate:"gte=0"`
}

type Element struct {
	streamID string
	sender   Sender
	logger   *slog.Logger

	mu          sync.Mutex
	volume      float64
	muted       bool
	paused      bool
	currentTime float64
	duration    float64
}

func NewElement(streamID string, sender Sender, initial *Report, logger *slog.Logger) *Element {
	el := &Element{
		streamID: streamID,
		sender:   sender,
		logger:   logger,
		volume:   1,
		paused:   true,
	}
	if initial != nil {
		el.Apply(initial)
	}

	return el
}

func (e *Element) send(op string, value any) error {
	return e.sender.SendCommand(&Command{StreamID: e.streamID, Op: op, Value: value})
}

// sendOrLog is used by writes that have no error return. The mirror is
// still updated; the page's next report corrects it.
func (e *Element) sendOrLog(op string, value any) {
	if err := e.send(op, value); err != nil {
		e.logger.Warn("failed to send media command", "stream_id", e.streamID, "op", op, "error", err)
	}
}

// Play is optimistic: an autoplay rejection arrives later as a report.
func (e *Element) Play() error {
	if err := e.send(OpPlay, nil); err != nil {
		return fmt.Errorf("failed to send play: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.paused = false
	return nil
}

func (e *Element) Pause() {
	e.sendOrLog(OpPause, nil)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.paused = true
}

func (e *Element) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.volume
}

func (e *Element) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	e.sendOrLog(OpSetVolume, v)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.volume = v
}

func (e *Element) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.muted
}

func (e *Element) SetMuted(muted bool) {
	e.sendOrLog(OpSetMuted, muted)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.muted = muted
}

func (e *Element) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.currentTime
}

func (e *Element) SetCurrentTime(t float64) {
	e.sendOrLog(OpSetCurrentTime, t)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.currentTime = t
}

func (e *Element) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.duration
}

func (e *Element) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.paused
}

func (e *Element) Apply(r *Report) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.paused = r.Paused
	e.volume = r.Volume
	e.muted = r.Muted
	e.currentTime = r.CurrentTime
	e.duration = r.Duration
}
