package viewer

import (
	"context"

	"github.com/sharetube/multiview/pkg/fullscreen"
)

type StartParams struct {
	ViewerID   string
	Publisher  Publisher
	Fullscreen []fullscreen.API
}

// Service starts sessions that share one configuration and one set of
// collaborators.
type Service struct {
	cfg  Config
	deps Deps
}

func NewService(cfg *Config, deps *Deps) *Service {
	return &Service{cfg: *cfg, deps: *deps}
}

func (s *Service) Start(ctx context.Context, params *StartParams) *Session {
	cfg := s.cfg
	cfg.ViewerID = params.ViewerID
	cfg.Fullscreen = params.Fullscreen
	if cfg.Chat.Author == "" {
		cfg.Chat.Author = params.ViewerID
	}

	deps := s.deps
	deps.Publisher = params.Publisher

	return NewSession(ctx, &cfg, &deps)
}
