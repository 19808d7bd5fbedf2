package domain

import (
	"errors"
	"time"

	"golang.org/x/exp/slices"
)

var (
	ErrStreamNotFound      = errors.New("stream not found")
	ErrStreamAlreadyExists = errors.New("stream already exists")
	ErrStreamsLimitReached = errors.New("streams limit reached")
	ErrNoStreams           = errors.New("no streams")
)

const StreamsLimit = 3

type Stream struct {
	ID            string        `json:"id"`
	SourceURL     string        `json:"source_url"`
	ViewerCount   int           `json:"viewer_count"`
	StartedAt     time.Time     `json:"started_at"`
	EventID       string        `json:"event_id,omitempty"`
	Title         string        `json:"title,omitempty"`
	OrganizerName string        `json:"organizer_name,omitempty"`
	Category      string        `json:"category,omitempty"`
	ChatMessages  []ChatMessage `json:"chat_messages"`
}

// Streams is the ordered list of active streams and the index of the main
// (focused) one. mainIndex is -1 only while the list is empty.
type Streams struct {
	list      []Stream
	mainIndex int
	limit     int
}

func NewStreams(limit int) *Streams {
	if limit < 1 || limit > StreamsLimit {
		limit = StreamsLimit
	}

	return &Streams{
		list:      make([]Stream, 0, limit),
		mainIndex: -1,
		limit:     limit,
	}
}

func (s Streams) Length() int {
	return len(s.list)
}

func (s Streams) Limit() int {
	return s.limit
}

func (s Streams) AsList() []Stream {
	return slices.Clone(s.list)
}

func (s Streams) IDs() []string {
	ids := make([]string, 0, len(s.list))
	for _, stream := range s.list {
		ids = append(ids, stream.ID)
	}

	return ids
}

func (s Streams) MainIndex() int {
	return s.mainIndex
}

func (s Streams) Main() (Stream, int, error) {
	if s.mainIndex < 0 || s.mainIndex >= len(s.list) {
		return Stream{}, -1, ErrNoStreams
	}

	return s.list[s.mainIndex], s.mainIndex, nil
}

func (s Streams) MainID() (string, bool) {
	stream, _, err := s.Main()
	if err != nil {
		return "", false
	}

	return stream.ID, true
}

func (s Streams) IsMain(id string) bool {
	mainID, ok := s.MainID()
	return ok && mainID == id
}

func (s Streams) At(index int) (Stream, error) {
	if index < 0 || index >= len(s.list) {
		return Stream{}, ErrStreamNotFound
	}

	return s.list[index], nil
}

func (s Streams) GetByID(id string) (Stream, int, error) {
	index := slices.IndexFunc(s.list, func(stream Stream) bool {
		return stream.ID == id
	})
	if index < 0 {
		return Stream{}, 0, ErrStreamNotFound
	}

	return s.list[index], index, nil
}

// Add appends the stream and makes it main. It returns the id of the main
// stream it replaced, empty when the list was empty. A rejected add leaves
// the list untouched.
func (s *Streams) Add(stream *Stream) (string, error) {
	if _, _, err := s.GetByID(stream.ID); err == nil {
		return "", ErrStreamAlreadyExists
	}

	if s.Length() >= s.limit {
		return "", ErrStreamsLimitReached
	}

	previousMainID, _ := s.MainID()

	s.list = append(s.list, *stream)
	s.mainIndex = len(s.list) - 1

	return previousMainID, nil
}

// Remove deletes the stream at index. When the main stream is removed and
// others remain the first remaining stream becomes main.
func (s *Streams) Remove(index int) (Stream, error) {
	stream, err := s.At(index)
	if err != nil {
		return Stream{}, err
	}

	s.list = slices.Delete(s.list, index, index+1)

	switch {
	case len(s.list) == 0:
		s.mainIndex = -1
	case index == s.mainIndex:
		s.mainIndex = 0
	case index < s.mainIndex:
		s.mainIndex--
	}

	return stream, nil
}

func (s *Streams) SetMain(index int) error {
	if index < 0 || index >= len(s.list) {
		return ErrStreamNotFound
	}

	s.mainIndex = index
	return nil
}

func (s *Streams) Update(id string, fn func(*Stream)) error {
	_, index, err := s.GetByID(id)
	if err != nil {
		return err
	}

	fn(&s.list[index])
	return nil
}
