package platform

import (
	"sync"

	"github.com/1broseidon/glport/internal/errstate"
)

var (
	activeMu sync.Mutex
	active   *Platform
)

// Init creates the process-wide platform. A second Init before Teardown
// reports AlreadyInitialized.
func Init(kind Kind, opts Options) (*Platform, error) {
	activeMu.Lock()
	defer activeMu.Unlock()

	if active != nil {
		return nil, errstate.Errorf(errstate.AlreadyInitialized,
			"%v platform is already initialized", active.kind)
	}
	p, err := Create(kind, opts)
	if err != nil {
		return nil, err
	}
	active = p
	return p, nil
}

// Active returns the process-wide platform.
func Active() (*Platform, error) {
	activeMu.Lock()
	defer activeMu.Unlock()

	if active == nil {
		return nil, errstate.Errorf(errstate.NotInitialized, "no platform has been initialized")
	}
	return active, nil
}

// Teardown destroys the process-wide platform. The platform stays active
// when Destroy refuses because displays are still connected.
func Teardown() error {
	activeMu.Lock()
	defer activeMu.Unlock()

	if active == nil {
		return errstate.Errorf(errstate.NotInitialized, "no platform has been initialized")
	}
	if active.displays > 0 {
		return active.Destroy()
	}
	err := active.Destroy()
	active = nil
	return err
}
