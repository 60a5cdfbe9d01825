package config

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrNoValue indicates no value was set for the config
	ErrNoValue = errors.New("config: no value set")

	// ErrShutdown indicates the use of a Config after calling Shutdown
	ErrShutdown = errors.New("config: shutdown")
)

// Config is a source of untyped configuration values. Sources return
// ErrNoValue when nothing is set, so that typed wrappers can fall back to
// their defaults.
type Config interface {
	// Get returns the latest config value
	Get(ctx context.Context) (interface{}, error)

	// Shutdown signals the config to stop all underlying resources
	Shutdown()
}

// Func adapts a function into a Config that holds no resources.
type Func func(ctx context.Context) (interface{}, error)

// Get implements Config.Get
func (f Func) Get(ctx context.Context) (interface{}, error) {
	return f(ctx)
}

// Shutdown implements Config.Shutdown
func (Func) Shutdown() {
}

// NoopConfig never yields a value.
var NoopConfig Config = Func(func(context.Context) (interface{}, error) {
	return nil, ErrNoValue
})

// Value is a typed view over a Config. Get swallows source errors and
// returns the last known value, while GetSafe surfaces them.
type Value[T any] interface {
	Get(ctx context.Context) T
	GetSafe(ctx context.Context) (T, error)
	Shutdown()
}

type (
	Bool    = Value[bool]
	Float64 = Value[float64]
	Uint64  = Value[uint64]
)
