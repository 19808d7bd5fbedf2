package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type ChatMessage struct {
	ID     string    `json:"id"`
	Author string    `json:"author"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

type ChatClient struct {
	base
}

func NewChatClient(baseURL string, timeout time.Duration) *ChatClient {
	return &ChatClient{base: newBase(baseURL, timeout)}
}

func (c *ChatClient) Poll(ctx context.Context, streamID string, offset int) ([]ChatMessage, error) {
	path := "/streams/" + url.PathEscape(streamID) + "/messages?offset=" + strconv.Itoa(offset)

	var messages []ChatMessage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &messages); err != nil {
		return nil, fmt.Errorf("failed to poll chat: %w", err)
	}

	return messages, nil
}

type sendChatRequest struct {
	Text string `json:"text"`
}

type sendChatResponse struct {
	Delivered bool `json:"delivered"`
}

func (c *ChatClient) Send(ctx context.Context, streamID, text string) (bool, error) {
	var resp sendChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/streams/"+url.PathEscape(streamID)+"/messages", &sendChatRequest{Text: text}, &resp); err != nil {
		return false, fmt.Errorf("failed to send chat message: %w", err)
	}

	return resp.Delivered, nil
}
