package env

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/code-payments/code-treasury/pkg/config"
)

func TestConfig(t *testing.T) {
	const env = "ENV_CONFIG_TEST_VAR"
	t.Setenv(env, "default")

	v, err := NewConfig(env).Get(context.Background())
	assert.Equal(t, []byte("default"), v)
	assert.Nil(t, err)

	// Keys are upper-cased
	v, err = NewConfig("env_config_test_var").Get(context.Background())
	assert.Equal(t, []byte("default"), v)
	assert.Nil(t, err)

	t.Setenv(env, "")

	v, err = NewConfig(env).Get(context.Background())
	assert.Nil(t, v)
	assert.Equal(t, config.ErrNoValue, err)
}

func TestTypedConfigs(t *testing.T) {
	t.Setenv("ENV_CONFIG_TEST_UINT", "64")
	t.Setenv("ENV_CONFIG_TEST_FLOAT", "1.5")
	t.Setenv("ENV_CONFIG_TEST_BOOL", "false")

	assert.EqualValues(t, 64, NewUint64Config("ENV_CONFIG_TEST_UINT", 1).Get(context.Background()))
	assert.Equal(t, 1.5, NewFloat64Config("ENV_CONFIG_TEST_FLOAT", 2.0).Get(context.Background()))
	assert.False(t, NewBoolConfig("ENV_CONFIG_TEST_BOOL", true).Get(context.Background()))

	assert.EqualValues(t, 1, NewUint64Config("ENV_CONFIG_TEST_MISSING", 1).Get(context.Background()))
}
