package controller

import (
	"context"

	"github.com/sharetube/multiview/internal/service/viewer"
)

type contextKey int

const (
	viewerConnCtxKey contextKey = iota
	sessionCtxKey
)

func (c controller) getViewerConnFromCtx(ctx context.Context) *viewerConn {
	vc, ok := ctx.Value(viewerConnCtxKey).(*viewerConn)
	if !ok {
		return nil
	}

	return vc
}

func (c controller) getSessionFromCtx(ctx context.Context) *viewer.Session {
	session, ok := ctx.Value(sessionCtxKey).(*viewer.Session)
	if !ok {
		return nil
	}

	return session
}
