package domain

type PlaybackState struct {
	IsPlaying bool    `json:"is_playing"`
	IsMuted   bool    `json:"is_muted"`
	Volume    int     `json:"volume"`
	Progress  float64 `json:"progress"`
}

const (
	MinVolume     = 0
	MaxVolume     = 100
	DefaultVolume = 100
)

func ClampVolume(v int) int {
	if v < MinVolume {
		return MinVolume
	}
	if v > MaxVolume {
		return MaxVolume
	}

	return v
}

func ClampProgress(p float64) float64 {
	if p < 0 || p != p {
		return 0
	}
	if p > 100 {
		return 100
	}

	return p
}
