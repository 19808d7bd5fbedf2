package controller

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
)

func (c controller) writeGiftResult(ctx context.Context, res any) error {
	vc := c.getViewerConnFromCtx(ctx)
	if vc == nil {
		return errNoSession
	}

	if err := vc.write(&Output{Type: "GIFT_RESULT", Payload: res}); err != nil {
		return fmt.Errorf("failed to write gift result: %w", err)
	}

	return nil
}

func (c controller) writeError(ctx context.Context, _ *websocket.Conn, err error) {
	c.logger.InfoContext(ctx, "websocket message failed", "error", err)

	vc := c.getViewerConnFromCtx(ctx)
	if vc == nil {
		return
	}

	if err := vc.write(&Output{
		Type: "ERROR",
		Payload: map[string]string{
			"message": err.Error(),
		},
	}); err != nil {
		c.logger.DebugContext(ctx, "failed to write error", "error", err)
	}
}
