package viewer

import (
	"context"
	"errors"

	"github.com/sharetube/multiview/internal/domain"
)

var ErrChatDisabled = errors.New("chat disabled")

func (s *Session) StreamIDs(_ context.Context) ([]string, error) {
	var ids []string
	err := s.do(func() {
		ids = s.engine.Streams().IDs()
	})

	return ids, err
}

func (s *Session) MergeChat(_ context.Context, streamID string, messages []domain.ChatMessage) error {
	var updateErr error
	if err := s.do(func() {
		added := 0
		updateErr = s.engine.Streams().Update(streamID, func(stream *domain.Stream) {
			added = stream.MergeMessages(messages)
		})
		if added > 0 {
			s.publish()
		}
	}); err != nil {
		return err
	}

	return updateErr
}

func (s *Session) MarkDelivered(_ context.Context, streamID, messageID string) error {
	var updateErr error
	if err := s.do(func() {
		updateErr = s.engine.Streams().Update(streamID, func(stream *domain.Stream) {
			stream.SetDelivered(messageID, true)
		})
		if updateErr == nil {
			s.publish()
		}
	}); err != nil {
		return err
	}

	return updateErr
}

// SendChat posts a message to a stream's chat. Network I/O happens on the
// caller's goroutine.
func (s *Session) SendChat(ctx context.Context, streamID, text string) (domain.ChatMessage, error) {
	if s.syncer == nil {
		return domain.ChatMessage{}, ErrChatDisabled
	}

	return s.syncer.Send(ctx, streamID, text)
}
