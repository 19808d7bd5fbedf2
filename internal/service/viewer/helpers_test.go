package viewer

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/sharetube/multiview/internal/client"
	"github.com/sharetube/multiview/internal/media/sim"
	"github.com/sharetube/multiview/internal/repository/volume/inmemory"
	"github.com/sharetube/multiview/internal/service/chat"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const (
	waitFor = 2 * time.Second
	pollFor = 5 * time.Millisecond
)

type fakePublisher struct {
	mu     sync.Mutex
	views  []View
	leaves int
}

func (p *fakePublisher) Publish(view *View) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.views = append(p.views, *view)
}

func (p *fakePublisher) Leave() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.leaves++
}

func (p *fakePublisher) Leaves() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.leaves
}

type fakeRecorder struct {
	mu       sync.Mutex
	started  int
	ended    int
	pollErrs int
}

func (r *fakeRecorder) Correction(string) {}
func (r *fakeRecorder) Swap()             {}
func (r *fakeRecorder) PromoteIgnored()   {}
func (r *fakeRecorder) PlayRejected()     {}

func (r *fakeRecorder) SessionStarted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
}

func (r *fakeRecorder) SessionEnded() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended++
}

func (r *fakeRecorder) ChatPollFailed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pollErrs++
}

type fakeEvents struct {
	details client.EventDetails
	err     error
}

func (f fakeEvents) GetEventDetails(context.Context, string) (client.EventDetails, error) {
	return f.details, f.err
}

type fakeChat struct {
	mu       sync.Mutex
	messages map[string][]client.ChatMessage
	sendErr  error
}

func (f *fakeChat) Poll(_ context.Context, streamID string, offset int) ([]client.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all := f.messages[streamID]
	if offset >= len(all) {
		return nil, nil
	}
	return all[offset:], nil
}

func (f *fakeChat) Send(context.Context, string, string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		return false, f.sendErr
	}
	return true, nil
}

type failingVolumes struct{}

func (failingVolumes) GetVolume(context.Context, string) (int, error) {
	return 0, errors.New("redis down")
}

func (failingVolumes) SetVolume(context.Context, string, int) error {
	return errors.New("redis down")
}

type testSession struct {
	*Session
	pub     *fakePublisher
	rec     *fakeRecorder
	volumes iVolumeRepo
}

func newTestSession(t *testing.T, deps *Deps) *testSession {
	t.Helper()

	if deps == nil {
		deps = &Deps{}
	}
	if deps.Volumes == nil {
		deps.Volumes = inmemory.NewRepo()
	}
	pub := &fakePublisher{}
	rec := &fakeRecorder{}
	deps.Publisher = pub
	deps.Recorder = rec
	deps.Logger = slog.Default()

	s := NewSession(context.Background(), &Config{
		ViewerID:       "viewer-1",
		StreamsLimit:   3,
		TickInterval:   10 * time.Millisecond,
		SwapDuration:   100 * time.Millisecond,
		PersistTimeout: time.Second,
		Chat: chat.Config{
			PollInterval: 10 * time.Millisecond,
			SendRate:     rate.Inf,
			SendBurst:    1,
			Author:       "me",
		},
	}, deps)
	t.Cleanup(s.Close)

	return &testSession{Session: s, pub: pub, rec: rec, volumes: deps.Volumes}
}

func (ts *testSession) addMounted(t *testing.T, id string) *sim.Element {
	t.Helper()

	_, err := ts.AddStream(context.Background(), &AddStreamParams{
		ID:        id,
		SourceURL: "https://cdn.example.com/" + id + ".m3u8",
	})
	require.NoError(t, err)

	el := sim.New(3600)
	require.NoError(t, ts.Mount(id, el))
	return el
}

func (ts *testSession) mustView(t *testing.T) View {
	t.Helper()

	view, err := ts.View()
	require.NoError(t, err)
	return view
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
