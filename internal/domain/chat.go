package domain

import "time"

type ChatMessage struct {
	ID        string    `json:"id"`
	StreamID  string    `json:"stream_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	SentAt    time.Time `json:"sent_at"`
	Delivered bool      `json:"delivered"`
}

// MergeMessages appends messages whose id is not known yet and returns how
// many were added.
func (s *Stream) MergeMessages(messages []ChatMessage) int {
	known := make(map[string]struct{}, len(s.ChatMessages))
	for _, m := range s.ChatMessages {
		known[m.ID] = struct{}{}
	}

	added := 0
	for _, m := range messages {
		if _, ok := known[m.ID]; ok {
			continue
		}

		known[m.ID] = struct{}{}
		s.ChatMessages = append(s.ChatMessages, m)
		added++
	}

	return added
}

func (s *Stream) SetDelivered(messageID string, delivered bool) bool {
	for i := range s.ChatMessages {
		if s.ChatMessages[i].ID == messageID {
			s.ChatMessages[i].Delivered = delivered
			return true
		}
	}

	return false
}
