package playback

import (
	"log/slog"
	"testing"
	"time"

	"github.com/sharetube/multiview/internal/domain"
	"github.com/sharetube/multiview/internal/media/sim"
	"github.com/stretchr/testify/require"
)

type manualScheduler struct {
	pending []func()
	delays  []time.Duration
}

func (m *manualScheduler) schedule(d time.Duration, fn func()) {
	m.delays = append(m.delays, d)
	m.pending = append(m.pending, fn)
}

func (m *manualScheduler) fire() {
	fns := m.pending
	m.pending = nil
	for _, fn := range fns {
		fn()
	}
}

func newTestEngine(t *testing.T, cfg *Config) (*Engine, *manualScheduler) {
	t.Helper()

	sched := &manualScheduler{}
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.Schedule = sched.schedule
	if cfg.SwapDuration == 0 {
		cfg.SwapDuration = 500 * time.Millisecond
	}
	cfg.Logger = slog.Default()

	return NewEngine(cfg), sched
}

func addMounted(t *testing.T, e *Engine, id string) *sim.Element {
	t.Helper()

	require.NoError(t, e.AddStream(&domain.Stream{ID: id, SourceURL: "https://cdn.example.com/" + id + ".m3u8"}))
	el := sim.New(3600)
	require.NoError(t, e.Mount(id, el))
	return el
}

// requireInvariants checks the idle-tick invariants: at most one audible
// stream and every mini muted, silent and playing.
func requireInvariants(t *testing.T, e *Engine) {
	t.Helper()

	require.True(t, e.Swapper().Idle())

	mainID, _ := e.Streams().MainID()
	unmuted := 0
	for _, id := range e.Streams().IDs() {
		st, ok := e.Store().Get(id)
		require.True(t, ok, "missing state for %s", id)
		if !st.IsMuted {
			unmuted++
		}
		if st.Volume == 0 {
			require.True(t, st.IsMuted, "volume 0 must be muted for %s", id)
		}

		if id == mainID {
			continue
		}

		require.True(t, st.IsMuted, "mini %s must be muted in store", id)
		el, ok := e.Handles().Get(id)
		if !ok {
			continue
		}
		require.True(t, el.Muted(), "mini %s must be muted", id)
		require.Zero(t, el.Volume(), "mini %s must be silent", id)
		require.False(t, el.Paused(), "mini %s must play", id)
	}
	require.LessOrEqual(t, unmuted, 1)
}
