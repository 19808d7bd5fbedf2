package viewer

import "github.com/sharetube/multiview/internal/playback"

type View struct {
	playback.View
	ViewerID     string `json:"viewer_id"`
	Quality      string `json:"quality"`
	IsFullscreen bool   `json:"is_fullscreen"`
}
