// Package fullscreen toggles fullscreen through a chain of vendor APIs,
// using the first one that works.
package fullscreen

type API interface {
	Name() string
	Available() bool
	Request() error
	Exit() error
}

type Controller struct {
	chain  []API
	active bool
}

func New(chain ...API) *Controller {
	return &Controller{chain: chain}
}

func (c *Controller) IsFullscreen() bool {
	return c.active
}

// Toggle flips fullscreen. When no API in the chain is available or every
// call fails, nothing happens and the last known state is kept.
func (c *Controller) Toggle() bool {
	for _, api := range c.chain {
		if !api.Available() {
			continue
		}

		var err error
		if c.active {
			err = api.Exit()
		} else {
			err = api.Request()
		}
		if err != nil {
			continue
		}

		c.active = !c.active
		return c.active
	}

	return c.active
}

// Sync records a state change reported by the platform, e.g. the user
// leaving fullscreen with Escape.
func (c *Controller) Sync(active bool) {
	c.active = active
}
