package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/sharetube/multiview/internal/media/remote"
	"github.com/sharetube/multiview/internal/playback"
	"github.com/sharetube/multiview/internal/service/gift"
	"github.com/sharetube/multiview/internal/service/viewer"
)

var errNoSession = errors.New("no session")

type EmptyInput struct{}

func (c controller) session(ctx context.Context) (*viewer.Session, error) {
	session := c.getSessionFromCtx(ctx)
	if session == nil {
		return nil, errNoSession
	}

	return session, nil
}

func (c controller) handleAlive(_ context.Context, _ *websocket.Conn, _ EmptyInput) error {
	return nil
}

func (c controller) handleAddStream(ctx context.Context, _ *websocket.Conn, input viewer.AddStreamParams) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	if _, err := session.AddStream(ctx, &input); err != nil {
		return fmt.Errorf("failed to add stream: %w", err)
	}

	return nil
}

type IndexInput struct {
	Index int `json:"index" validate:"gte=0"`
}

func (c controller) handleRemoveStream(ctx context.Context, _ *websocket.Conn, input IndexInput) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	if err := session.RemoveStream(input.Index); err != nil {
		return fmt.Errorf("failed to remove stream: %w", err)
	}

	return nil
}

func (c controller) handlePromote(ctx context.Context, _ *websocket.Conn, input IndexInput) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	if _, err := session.Promote(input.Index); err != nil {
		return fmt.Errorf("failed to promote: %w", err)
	}

	return nil
}

func (c controller) handleTogglePlay(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	if _, err := session.TogglePlay(); err != nil {
		return fmt.Errorf("failed to toggle play: %w", err)
	}

	return nil
}

type SetVolumeInput struct {
	Volume int `json:"volume" validate:"gte=0,lte=100"`
}

func (c controller) handleSetVolume(ctx context.Context, _ *websocket.Conn, input SetVolumeInput) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	if _, err := session.SetVolume(input.Volume); err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}

	return nil
}

func (c controller) handleToggleMute(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	if _, err := session.ToggleMute(); err != nil {
		return fmt.Errorf("failed to toggle mute: %w", err)
	}

	return nil
}

type KeyInput struct {
	Key string `json:"key" validate:"required,max=16"`
}

func (c controller) handleKey(ctx context.Context, _ *websocket.Conn, input KeyInput) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	if err := session.HandleKey(input.Key); err != nil {
		return fmt.Errorf("failed to handle key: %w", err)
	}

	return nil
}

const (
	mediaEventMounted   = "mounted"
	mediaEventUnmounted = "unmounted"
)

type MediaEventInput struct {
	StreamID string         `json:"stream_id" validate:"required"`
	Event    string         `json:"event" validate:"required,oneof=mounted unmounted play pause volumechange timeupdate playrejected"`
	Report   *remote.Report `json:"report"`
}

func (c controller) handleMediaEvent(ctx context.Context, _ *websocket.Conn, input MediaEventInput) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	switch input.Event {
	case mediaEventMounted:
		el := remote.NewElement(input.StreamID, c.getViewerConnFromCtx(ctx), input.Report, c.logger)
		if err := session.Mount(input.StreamID, el); err != nil {
			return fmt.Errorf("failed to mount: %w", err)
		}
	case mediaEventUnmounted:
		if err := session.Unmount(input.StreamID); err != nil {
			return fmt.Errorf("failed to unmount: %w", err)
		}
	default:
		if err := session.MediaEvent(input.StreamID, playback.MediaEvent(input.Event), input.Report); err != nil {
			return err
		}
	}

	return nil
}

type SetQualityInput struct {
	Quality string `json:"quality" validate:"required"`
}

func (c controller) handleSetQuality(ctx context.Context, _ *websocket.Conn, input SetQualityInput) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	if err := session.SetQuality(input.Quality); err != nil {
		return fmt.Errorf("failed to set quality: %w", err)
	}

	return nil
}

func (c controller) handleToggleFullscreen(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	if _, err := session.ToggleFullscreen(); err != nil {
		return fmt.Errorf("failed to toggle fullscreen: %w", err)
	}

	return nil
}

type FullscreenStateInput struct {
	Active    bool     `json:"active"`
	Supported []string `json:"supported" validate:"dive,oneof=standard webkit moz ms"`
}

// handleFullscreenState is sent by the page on connect and on every
// fullscreenchange.
func (c controller) handleFullscreenState(ctx context.Context, _ *websocket.Conn, input FullscreenStateInput) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	if vc := c.getViewerConnFromCtx(ctx); vc != nil {
		vc.setFullscreenSupport(input.Supported)
	}

	if err := session.SyncFullscreen(input.Active); err != nil {
		return fmt.Errorf("failed to sync fullscreen: %w", err)
	}

	return nil
}

type SendChatInput struct {
	StreamID string `json:"stream_id" validate:"required"`
	Text     string `json:"text" validate:"required,max=500"`
}

func (c controller) handleSendChat(ctx context.Context, _ *websocket.Conn, input SendChatInput) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	if _, err := session.SendChat(ctx, input.StreamID, input.Text); err != nil {
		return fmt.Errorf("failed to send chat: %w", err)
	}

	return nil
}

func (c controller) handleSendGift(ctx context.Context, _ *websocket.Conn, input gift.SendGiftParams) error {
	res, err := c.giftService.SendGift(ctx, &input)
	if err != nil {
		return fmt.Errorf("failed to send gift: %w", err)
	}

	return c.writeGiftResult(ctx, &res)
}

func (c controller) handleSendDonation(ctx context.Context, _ *websocket.Conn, input gift.SendDonationParams) error {
	res, err := c.giftService.SendDonation(ctx, &input)
	if err != nil {
		return fmt.Errorf("failed to send donation: %w", err)
	}

	return c.writeGiftResult(ctx, &res)
}
