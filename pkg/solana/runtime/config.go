package runtime

import (
	base "github.com/spf13/viper"

	"github.com/code-payments/code-treasury/pkg/config"
	"github.com/code-payments/code-treasury/pkg/config/env"
	"github.com/code-payments/code-treasury/pkg/config/memory"
	"github.com/code-payments/code-treasury/pkg/config/viper"
	"github.com/code-payments/code-treasury/pkg/config/wrapper"
	"github.com/code-payments/code-treasury/pkg/solana/system"
)

const (
	envConfigPrefix   = "RUNTIME_"
	viperConfigPrefix = "runtime."

	RentLamportsPerByteYearConfigEnvName = envConfigPrefix + "RENT_LAMPORTS_PER_BYTE_YEAR"
	rentLamportsPerByteYearConfigKey     = viperConfigPrefix + "rent_lamports_per_byte_year"
	defaultRentLamportsPerByteYear       = system.DefaultLamportsPerByteYear

	RentExemptionThresholdConfigEnvName = envConfigPrefix + "RENT_EXEMPTION_THRESHOLD"
	rentExemptionThresholdConfigKey     = viperConfigPrefix + "rent_exemption_threshold"
	defaultRentExemptionThreshold       = system.DefaultExemptionThreshold

	LockStripesConfigEnvName = envConfigPrefix + "LOCK_STRIPES"
	lockStripesConfigKey     = viperConfigPrefix + "lock_stripes"
	defaultLockStripes       = 64

	VerifySignaturesConfigEnvName = envConfigPrefix + "VERIFY_SIGNATURES"
	verifySignaturesConfigKey     = viperConfigPrefix + "verify_signatures"
	defaultVerifySignatures       = true

	MaxPayerTransactionsPerSecondConfigEnvName = envConfigPrefix + "MAX_PAYER_TRANSACTIONS_PER_SECOND"
	maxPayerTransactionsPerSecondConfigKey     = viperConfigPrefix + "max_payer_transactions_per_second"
	defaultMaxPayerTransactionsPerSecond       = 0
)

type conf struct {
	rentLamportsPerByteYear config.Uint64
	rentExemptionThreshold  config.Float64
	lockStripes             config.Uint64
	verifySignatures        config.Bool

	// Not positive disables fee payer rate limiting
	maxPayerTransactionsPerSecond config.Float64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			rentLamportsPerByteYear: env.NewUint64Config(RentLamportsPerByteYearConfigEnvName, defaultRentLamportsPerByteYear),
			rentExemptionThreshold:  env.NewFloat64Config(RentExemptionThresholdConfigEnvName, defaultRentExemptionThreshold),
			lockStripes:             env.NewUint64Config(LockStripesConfigEnvName, defaultLockStripes),
			verifySignatures:        env.NewBoolConfig(VerifySignaturesConfigEnvName, defaultVerifySignatures),

			maxPayerTransactionsPerSecond: env.NewFloat64Config(MaxPayerTransactionsPerSecondConfigEnvName, defaultMaxPayerTransactionsPerSecond),
		}
	}
}

// WithViperConfigs returns configuration pulled from the runtime section of
// a viper instance, such as one loaded from a config file
func WithViperConfigs(v *base.Viper) ConfigProvider {
	return func() *conf {
		return &conf{
			rentLamportsPerByteYear: viper.NewUint64Config(v, rentLamportsPerByteYearConfigKey, defaultRentLamportsPerByteYear),
			rentExemptionThreshold:  viper.NewFloat64Config(v, rentExemptionThresholdConfigKey, defaultRentExemptionThreshold),
			lockStripes:             viper.NewUint64Config(v, lockStripesConfigKey, defaultLockStripes),
			verifySignatures:        viper.NewBoolConfig(v, verifySignaturesConfigKey, defaultVerifySignatures),

			maxPayerTransactionsPerSecond: viper.NewFloat64Config(v, maxPayerTransactionsPerSecondConfigKey, defaultMaxPayerTransactionsPerSecond),
		}
	}
}

// WithDefaultConfigs returns the default configuration, ignoring the
// environment. Use it where ambient RUNTIME_* variables must not apply.
func WithDefaultConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			rentLamportsPerByteYear: wrapper.NewUint64Config(config.NoopConfig, defaultRentLamportsPerByteYear),
			rentExemptionThreshold:  wrapper.NewFloat64Config(config.NoopConfig, defaultRentExemptionThreshold),
			lockStripes:             wrapper.NewUint64Config(config.NoopConfig, defaultLockStripes),
			verifySignatures:        wrapper.NewBoolConfig(config.NoopConfig, defaultVerifySignatures),

			maxPayerTransactionsPerSecond: wrapper.NewFloat64Config(config.NoopConfig, defaultMaxPayerTransactionsPerSecond),
		}
	}
}

type testOverrides struct {
	rent             system.Rent
	lockStripes      uint64
	verifySignatures bool

	maxPayerTransactionsPerSecond float64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			rentLamportsPerByteYear: wrapper.NewUint64Config(memory.NewConfig(overrides.rent.LamportsPerByteYear), defaultRentLamportsPerByteYear),
			rentExemptionThreshold:  wrapper.NewFloat64Config(memory.NewConfig(overrides.rent.ExemptionThreshold), defaultRentExemptionThreshold),
			lockStripes:             wrapper.NewUint64Config(memory.NewConfig(overrides.lockStripes), defaultLockStripes),
			verifySignatures:        wrapper.NewBoolConfig(memory.NewConfig(overrides.verifySignatures), defaultVerifySignatures),

			maxPayerTransactionsPerSecond: wrapper.NewFloat64Config(memory.NewConfig(overrides.maxPayerTransactionsPerSecond), defaultMaxPayerTransactionsPerSecond),
		}
	}
}
