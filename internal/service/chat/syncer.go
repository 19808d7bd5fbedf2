package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sharetube/multiview/internal/client"
	"github.com/sharetube/multiview/internal/domain"
	"golang.org/x/time/rate"
)

var (
	ErrRateLimited = errors.New("chat rate limited")
	ErrEmptyText   = errors.New("empty chat message")
)

type iChatClient interface {
	Poll(ctx context.Context, streamID string, offset int) ([]client.ChatMessage, error)
	Send(ctx context.Context, streamID, text string) (bool, error)
}

// Sink is where synced messages land; the viewer session implements it on
// its own event loop.
type Sink interface {
	StreamIDs(ctx context.Context) ([]string, error)
	MergeChat(ctx context.Context, streamID string, messages []domain.ChatMessage) error
	MarkDelivered(ctx context.Context, streamID, messageID string) error
}

type Config struct {
	PollInterval time.Duration
	SendRate     rate.Limit
	SendBurst    int
	Author       string
}

type Syncer struct {
	client       iChatClient
	sink         Sink
	pollInterval time.Duration
	limiter      *rate.Limiter
	author       string
	logger       *slog.Logger
	onPollError  func()

	mu      sync.Mutex
	offsets map[string]int
}

func NewSyncer(c iChatClient, sink Sink, cfg *Config, logger *slog.Logger) *Syncer {
	return &Syncer{
		client:       c,
		sink:         sink,
		pollInterval: cfg.PollInterval,
		limiter:      rate.NewLimiter(cfg.SendRate, cfg.SendBurst),
		author:       cfg.Author,
		logger:       logger,
		onPollError:  func() {},
		offsets:      make(map[string]int),
	}
}

func (s *Syncer) OnPollError(fn func()) {
	s.onPollError = fn
}

// Run polls on its own fixed interval until ctx is done. It is independent of
// the playback enforcement timer.
func (s *Syncer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.PollOnce(ctx)
		}
	}
}

// PollOnce fetches new messages for every active stream. A failed poll is
// skipped for this round; there is no backoff beyond the interval.
func (s *Syncer) PollOnce(ctx context.Context) {
	ids, err := s.sink.StreamIDs(ctx)
	if err != nil {
		s.logger.DebugContext(ctx, "chat poll skipped", "error", err)
		return
	}

	s.dropStale(ids)

	for _, id := range ids {
		offset := s.offset(id)

		msgs, err := s.client.Poll(ctx, id, offset)
		if err != nil {
			s.logger.DebugContext(ctx, "chat poll failed", "stream_id", id, "error", err)
			s.onPollError()
			continue
		}
		if len(msgs) == 0 {
			continue
		}

		converted := make([]domain.ChatMessage, 0, len(msgs))
		for _, m := range msgs {
			converted = append(converted, domain.ChatMessage{
				ID:        m.ID,
				StreamID:  id,
				Author:    m.Author,
				Text:      m.Text,
				SentAt:    m.SentAt,
				Delivered: true,
			})
		}

		if err := s.sink.MergeChat(ctx, id, converted); err != nil {
			s.logger.DebugContext(ctx, "chat merge failed", "stream_id", id, "error", err)
			continue
		}

		s.advance(id, len(msgs))
	}
}

// Send shows the message locally right away and keeps it undelivered if the
// chat service does not accept it.
func (s *Syncer) Send(ctx context.Context, streamID, text string) (domain.ChatMessage, error) {
	if text == "" {
		return domain.ChatMessage{}, ErrEmptyText
	}
	if !s.limiter.Allow() {
		return domain.ChatMessage{}, ErrRateLimited
	}

	msg := domain.ChatMessage{
		ID:       uuid.NewString(),
		StreamID: streamID,
		Author:   s.author,
		Text:     text,
		SentAt:   time.Now(),
	}
	if err := s.sink.MergeChat(ctx, streamID, []domain.ChatMessage{msg}); err != nil {
		return domain.ChatMessage{}, fmt.Errorf("failed to merge chat message: %w", err)
	}

	delivered, err := s.client.Send(ctx, streamID, text)
	if err != nil {
		s.logger.DebugContext(ctx, "chat send failed", "stream_id", streamID, "error", err)
		return msg, nil
	}
	if !delivered {
		return msg, nil
	}

	if err := s.sink.MarkDelivered(ctx, streamID, msg.ID); err != nil {
		return msg, fmt.Errorf("failed to mark delivered: %w", err)
	}
	msg.Delivered = true

	return msg, nil
}

func (s *Syncer) offset(streamID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.offsets[streamID]
}

func (s *Syncer) advance(streamID string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.offsets[streamID] += n
}

func (s *Syncer) dropStale(active []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keep := make(map[string]struct{}, len(active))
	for _, id := range active {
		keep[id] = struct{}{}
	}
	for id := range s.offsets {
		if _, ok := keep[id]; !ok {
			delete(s.offsets, id)
		}
	}
}
