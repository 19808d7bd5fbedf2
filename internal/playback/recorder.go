package playback

// Recorder receives engine events for metrics.
type Recorder interface {
	Correction(kind string)
	Swap()
	PromoteIgnored()
	PlayRejected()
}

type nopRecorder struct{}

func (nopRecorder) Correction(string) {}
func (nopRecorder) Swap()             {}
func (nopRecorder) PromoteIgnored()   {}
func (nopRecorder) PlayRejected()     {}

const (
	CorrectionMute   = "mute"
	CorrectionUnmute = "unmute"
	CorrectionVolume = "volume"
	CorrectionPlay   = "play"
	CorrectionPause  = "pause"
)
