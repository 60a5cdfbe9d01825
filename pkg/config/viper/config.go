package viper

import (
	"context"

	base "github.com/spf13/viper"

	"github.com/code-payments/code-treasury/pkg/config"
	"github.com/code-payments/code-treasury/pkg/config/wrapper"
)

type conf struct {
	v   *base.Viper
	key string
}

// NewConfig returns a config that reads key from v on every Get, so values
// reloaded into v are observed. Use base.GetViper() for the global instance.
func NewConfig(v *base.Viper, key string) config.Config {
	return &conf{
		v:   v,
		key: key,
	}
}

// Get implements Config.Get
func (c *conf) Get(_ context.Context) (interface{}, error) {
	if !c.v.IsSet(c.key) {
		return nil, config.ErrNoValue
	}

	val := c.v.Get(c.key)
	if val == nil {
		return nil, config.ErrNoValue
	}
	return val, nil
}

// Shutdown implements Config.Shutdown
func (c *conf) Shutdown() {
}

// NewUint64Config creates a viper-based uint64 config
func NewUint64Config(v *base.Viper, key string, defaultValue uint64) config.Uint64 {
	return wrapper.NewUint64Config(NewConfig(v, key), defaultValue)
}

// NewFloat64Config creates a viper-based float64 config
func NewFloat64Config(v *base.Viper, key string, defaultValue float64) config.Float64 {
	return wrapper.NewFloat64Config(NewConfig(v, key), defaultValue)
}

// NewBoolConfig creates a viper-based bool config
func NewBoolConfig(v *base.Viper, key string, defaultValue bool) config.Bool {
	return wrapper.NewBoolConfig(NewConfig(v, key), defaultValue)
}
