package treasury

import (
	"crypto/ed25519"

	"github.com/code-payments/code-treasury/pkg/solana"
	"github.com/code-payments/code-treasury/pkg/solana/binary"
)

const (
	ConfigAccountSize   = ed25519.PublicKeySize
	TreasuryAccountSize = 8

	// Allocations carry 8 bytes beyond the record
	accountSpacePadding = 8

	ConfigAccountSpace   = accountSpacePadding + ConfigAccountSize
	TreasuryAccountSpace = accountSpacePadding + TreasuryAccountSize
)

// ConfigAccount records the treasury owner. It's written once by Initialize.
type ConfigAccount struct {
	Owner ed25519.PublicKey
}

func (a *ConfigAccount) Marshal() []byte {
	b := make([]byte, ConfigAccountSize)

	var offset int
	binary.PutKey32(b[offset:], a.Owner, &offset)

	return b
}

func (a *ConfigAccount) Unmarshal(b []byte) error {
	if len(b) < ConfigAccountSize {
		return solana.ErrInvalidAccountData
	}

	var offset int
	binary.GetKey32(b[offset:], &a.Owner, &offset)

	return nil
}

// TreasuryAccount is the treasury record. Balance is zero at creation and
// isn't maintained, the vault token account holds the actual funds.
type TreasuryAccount struct {
	Balance uint64
}

func (a *TreasuryAccount) Marshal() []byte {
	b := make([]byte, TreasuryAccountSize)

	var offset int
	binary.PutUint64(b[offset:], a.Balance, &offset)

	return b
}

func (a *TreasuryAccount) Unmarshal(b []byte) error {
	if len(b) < TreasuryAccountSize {
		return solana.ErrInvalidAccountData
	}

	var offset int
	binary.GetUint64(b[offset:], &a.Balance, &offset)

	return nil
}
