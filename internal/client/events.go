package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type EventDetails struct {
	Title         string `json:"title"`
	OrganizerName string `json:"organizer_name"`
	Category      string `json:"category"`
}

type EventsClient struct {
	base
}

func NewEventsClient(baseURL string, timeout time.Duration) *EventsClient {
	return &EventsClient{base: newBase(baseURL, timeout)}
}

func (c *EventsClient) GetEventDetails(ctx context.Context, eventID string) (EventDetails, error) {
	var details EventDetails
	if err := c.doJSON(ctx, http.MethodGet, "/events/"+url.PathEscape(eventID), nil, &details); err != nil {
		return EventDetails{}, fmt.Errorf("failed to get event details: %w", err)
	}

	return details, nil
}
