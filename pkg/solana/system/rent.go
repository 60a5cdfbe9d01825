package system

import (
	"math"
)

// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/rent.rs
const (
	// AccountStorageOverhead is the number of bytes charged for every account
	// on top of its data
	AccountStorageOverhead = 128

	DefaultLamportsPerByteYear = 3480
	DefaultExemptionThreshold  = 2.0
)

// Rent is the ledger's rent configuration. It determines the minimum balance
// an account must hold to persist indefinitely.
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
}

// DefaultRent returns the mainnet rent parameters
func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: DefaultLamportsPerByteYear,
		ExemptionThreshold:  DefaultExemptionThreshold,
	}
}

// MinimumBalance returns the lamports an account of size bytes needs to be
// rent exempt.
func (r Rent) MinimumBalance(size uint64) uint64 {
	bytes := float64(AccountStorageOverhead + size)
	return uint64(math.Floor(bytes * float64(r.LamportsPerByteYear) * r.ExemptionThreshold))
}

// IsExempt reports whether balance covers the minimum balance for size bytes
func (r Rent) IsExempt(balance, size uint64) bool {
	return balance >= r.MinimumBalance(size)
}
