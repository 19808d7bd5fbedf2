// Package sim provides an in-memory media element used for headless
// sessions and tests.
package sim

import (
	"errors"
	"sync"
)

var ErrAutoplayBlocked = errors.New("autoplay blocked")

type Element struct {
	mu          sync.Mutex
	volume      float64
	muted       bool
	paused      bool
	currentTime float64
	duration    float64

	autoplayBlocked bool
	plays           int
	pauses          int
	volumeWrites    int
}

func New(duration float64) *Element {
	return &Element{
		volume:   1,
		paused:   true,
		duration: duration,
	}
}

func (e *Element) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.plays++
	if e.autoplayBlocked {
		e.paused = true
		return ErrAutoplayBlocked
	}

	e.paused = false
	return nil
}

func (e *Element) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pauses++
	e.paused = true
}

func (e *Element) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.volume
}

func (e *Element) SetVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	e.volumeWrites++
	e.volume = v
}

func (e *Element) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.muted
}

func (e *Element) SetMuted(muted bool) {
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
	e.mu.Lock()
	defer e.mu.Unlock()

	if t < 0 {
		t = 0
	}
	if e.duration > 0 && t > e.duration {
		t = e.duration
	}
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

// BlockAutoplay makes subsequent Play calls fail like a browser autoplay
// policy would.
func (e *Element) BlockAutoplay(blocked bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.autoplayBlocked = blocked
}

// Advance moves the playhead forward while playing, looping at the end.
func (e *Element) Advance(seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused {
		return
	}

	e.currentTime += seconds
	if e.duration > 0 && e.currentTime >= e.duration {
		e.currentTime -= e.duration
	}
}

// ResetVolume simulates the platform resetting the element volume behind
// the application's back.
func (e *Element) ResetVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.volume = v
}

// ForcePause simulates a platform-initiated pause.
func (e *Element) ForcePause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.paused = true
}

func (e *Element) Plays() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.plays
}

func (e *Element) Pauses() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.pauses
}

func (e *Element) VolumeWrites() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.volumeWrites
}
