package remote

import "sync"

// FullscreenAPI asks the page to use one vendor fullscreen method. The page
// declares which vendors it supports.
type FullscreenAPI struct {
	vendor string
	sender Sender

	mu        sync.Mutex
	available bool
}

func NewFullscreenAPI(vendor string, sender Sender) *FullscreenAPI {
	return &FullscreenAPI{vendor: vendor, sender: sender}
}

func (f *FullscreenAPI) Name() string {
	return f.vendor
}

func (f *FullscreenAPI) SetAvailable(available bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.available = available
}

func (f *FullscreenAPI) Available() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.available
}

func (f *FullscreenAPI) Request() error {
	return f.sender.SendCommand(&Command{Op: OpFullscreen, Value: f.vendor})
}

func (f *FullscreenAPI) Exit() error {
	return f.sender.SendCommand(&Command{Op: OpExitFullscreen, Value: f.vendor})
}
