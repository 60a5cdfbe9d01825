package memory

import (
	"context"
	"sync"

	"github.com/code-payments/code-treasury/pkg/config"
)

// Config is an in memory config. Its value can be replaced while it's in
// use, so tests can change parameters between operations.
type Config struct {
	mu       sync.RWMutex
	value    interface{}
	err      error
	shutdown bool
}

// NewConfig returns a new in memory config. A nil value is treated as unset.
func NewConfig(value interface{}) *Config {
	return &Config{value: value}
}

// Get implements Config.Get
func (c *Config) Get(_ context.Context) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch {
	case c.shutdown:
		return nil, config.ErrShutdown
	case c.err != nil:
		return nil, c.err
	case c.value == nil:
		return nil, config.ErrNoValue
	}
	return c.value, nil
}

// Shutdown implements Config.Shutdown
func (c *Config) Shutdown() {
	c.mu.Lock()
	c.shutdown = true
	c.mu.Unlock()
}

// Set replaces the value returned by Get. Setting nil unsets it.
func (c *Config) Set(value interface{}) {
	c.mu.Lock()
	c.value = value
	c.mu.Unlock()
}

// Fail makes Get return err until Fail(nil) is called
func (c *Config) Fail(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}
