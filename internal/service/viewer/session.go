// Package viewer runs one viewer's playback session. Every user action,
// native media event, enforcement tick and swap timer is executed on a
// single goroutine, so the engine never sees concurrent access.
package viewer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sharetube/multiview/internal/client"
	"github.com/sharetube/multiview/internal/playback"
	"github.com/sharetube/multiview/internal/repository/volume"
	"github.com/sharetube/multiview/internal/service/chat"
	"github.com/sharetube/multiview/pkg/fullscreen"
	"github.com/sharetube/multiview/pkg/validator"
)

var ErrSessionClosed = errors.New("session closed")

type iVolumeRepo interface {
	GetVolume(ctx context.Context, viewerID string) (int, error)
	SetVolume(ctx context.Context, viewerID string, v int) error
}

type iEventsClient interface {
	GetEventDetails(ctx context.Context, eventID string) (client.EventDetails, error)
}

type iChatClient interface {
	Poll(ctx context.Context, streamID string, offset int) ([]client.ChatMessage, error)
	Send(ctx context.Context, streamID, text string) (bool, error)
}

type Recorder interface {
	playback.Recorder
	SessionStarted()
	SessionEnded()
	ChatPollFailed()
}

type nopRecorder struct{}

func (nopRecorder) Correction(string) {}
func (nopRecorder) Swap()             {}
func (nopRecorder) PromoteIgnored()   {}
func (nopRecorder) PlayRejected()     {}
func (nopRecorder) SessionStarted()   {}
func (nopRecorder) SessionEnded()     {}
func (nopRecorder) ChatPollFailed()   {}

// Publisher delivers session output to the viewer. It is called from the
// session goroutine and must not call back into the session synchronously.
type Publisher interface {
	Publish(view *View)
	Leave()
}

type Config struct {
	ViewerID       string
	StreamsLimit   int
	TickInterval   time.Duration
	SwapDuration   time.Duration
	PersistTimeout time.Duration
	Chat           chat.Config
	Fullscreen     []fullscreen.API
}

type Deps struct {
	Volumes   iVolumeRepo
	Events    iEventsClient
	Chat      iChatClient
	Publisher Publisher
	Recorder  Recorder
	Logger    *slog.Logger
}

type Session struct {
	viewerID       string
	engine         *playback.Engine
	fullscreen     *fullscreen.Controller
	syncer         *chat.Syncer
	quality        string
	tickInterval   time.Duration
	persistTimeout time.Duration
	validate       *validator.Validator
	volumes        iVolumeRepo
	events         iEventsClient
	publisher      Publisher
	rec            Recorder
	logger         *slog.Logger
	left           bool

	// owned by the loop goroutine
	timers map[*time.Timer]struct{}

	inputCh   chan func()
	closeCh   chan struct{}
	doneCh    chan struct{}
	persistCh chan int
	closeOnce sync.Once
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewSession loads the viewer's last-session volume and starts the session
// goroutines. The caller must Close the session.
func NewSession(ctx context.Context, cfg *Config, deps *Deps) *Session {
	logger := deps.Logger.With("viewer_id", cfg.ViewerID)
	rec := deps.Recorder
	if rec == nil {
		rec = nopRecorder{}
	}

	s := &Session{
		viewerID:       cfg.ViewerID,
		fullscreen:     fullscreen.New(cfg.Fullscreen...),
		quality:        QualityAuto,
		tickInterval:   cfg.TickInterval,
		persistTimeout: cfg.PersistTimeout,
		validate:       validator.NewValidator(),
		volumes:        deps.Volumes,
		events:         deps.Events,
		publisher:      deps.Publisher,
		rec:            rec,
		logger:         logger,
		timers:         make(map[*time.Timer]struct{}),
		inputCh:        make(chan func()),
		closeCh:        make(chan struct{}),
		doneCh:         make(chan struct{}),
		persistCh:      make(chan int, 1),
	}

	lastVolume, hasLast := s.loadVolume(ctx)
	s.engine = playback.NewEngine(&playback.Config{
		StreamsLimit:   cfg.StreamsLimit,
		SwapDuration:   cfg.SwapDuration,
		LastVolume:     lastVolume,
		HasLastVolume:  hasLast,
		OnLeave:        func() { s.left = true },
		OnVolumeChosen: s.queueVolume,
		Schedule:       s.schedule,
		Recorder:       rec,
		Logger:         logger,
	})

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.persistVolumes(runCtx)
	}()

	if deps.Chat != nil {
		s.syncer = chat.NewSyncer(deps.Chat, s, &cfg.Chat, logger)
		s.syncer.OnPollError(rec.ChatPollFailed)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.syncer.Run(runCtx)
		}()
	}

	s.rec.SessionStarted()
	go s.handleInputs()

	logger.InfoContext(ctx, "session started", "last_volume", lastVolume, "has_last_volume", hasLast)
	return s
}

func (s *Session) ViewerID() string {
	return s.viewerID
}

func (s *Session) loadVolume(ctx context.Context) (int, bool) {
	v, err := s.volumes.GetVolume(ctx, s.viewerID)
	if err != nil {
		if !errors.Is(err, volume.ErrVolumeNotFound) {
			s.logger.WarnContext(ctx, "failed to load last volume", "error", err)
		}
		return 0, false
	}

	return v, true
}

func (s *Session) handleInputs() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.closeCh:
			s.teardown()
			return
		case fn := <-s.inputCh:
			fn()
		case <-ticker.C:
			if n := s.engine.Tick(); n > 0 {
				s.logger.Debug("enforcement corrected drift", "corrections", n)
			}
		}
	}
}

func (s *Session) teardown() {
	for t := range s.timers {
		t.Stop()
		delete(s.timers, t)
	}
	s.engine.Teardown()
}

// do runs fn on the session goroutine and waits for it.
func (s *Session) do(fn func()) error {
	done := make(chan struct{})
	select {
	case s.inputCh <- func() {
		defer close(done)
		fn()
	}:
	case <-s.doneCh:
		return ErrSessionClosed
	}

	<-done
	return nil
}

// post queues fn without waiting; it is dropped after close.
func (s *Session) post(fn func()) {
	select {
	case s.inputCh <- fn:
	case <-s.doneCh:
	}
}

// schedule is the engine's swap timer. The callback runs on the loop and a
// timer stopped by teardown never fires.
func (s *Session) schedule(d time.Duration, fn func()) {
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		s.post(func() {
			if _, ok := s.timers[t]; !ok {
				return
			}
			delete(s.timers, t)
			fn()
			s.publish()
		})
	})
	s.timers[t] = struct{}{}
}

func (s *Session) publish() {
	view := s.view()
	s.publisher.Publish(&view)

	if s.left {
		s.left = false
		s.publisher.Leave()
	}
}

func (s *Session) View() (View, error) {
	var view View
	err := s.do(func() {
		view = s.view()
	})

	return view, err
}

func (s *Session) view() View {
	return View{
		View:         s.engine.View(),
		ViewerID:     s.viewerID,
		Quality:      s.quality,
		IsFullscreen: s.fullscreen.IsFullscreen(),
	}
}

// Close stops the loop, cancels any swap, drops every element and waits for
// the background goroutines. The last chosen volume is still persisted.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.closeCh)
		<-s.doneCh
		s.cancel()
		s.wg.Wait()
		s.rec.SessionEnded()
		s.logger.Info("session closed")
	})
}
