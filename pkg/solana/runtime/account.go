package runtime

import (
	"bytes"
	"crypto/ed25519"

	"github.com/code-payments/code-treasury/pkg/solana"
	"github.com/code-payments/code-treasury/pkg/solana/system"
)

// Account is a ledger storage object
type Account struct {
	Lamports   uint64
	Data       []byte
	Owner      ed25519.PublicKey
	Executable bool
}

// NewSystemAccount returns an empty, system owned account holding lamports
func NewSystemAccount(lamports uint64) *Account {
	return &Account{
		Lamports: lamports,
		Owner:    system.ProgramKey[:],
	}
}

// Clone returns a deep copy of the account
func (a *Account) Clone() *Account {
	return &Account{
		Lamports:   a.Lamports,
		Data:       append([]byte(nil), a.Data...),
		Owner:      append(ed25519.PublicKey(nil), a.Owner...),
		Executable: a.Executable,
	}
}

// IsOwnedBy reports whether program owns the account
func (a *Account) IsOwnedBy(program ed25519.PublicKey) bool {
	return bytes.Equal(a.Owner, program)
}

func (a *Account) equals(other *Account) bool {
	return a.Lamports == other.Lamports &&
		a.Executable == other.Executable &&
		bytes.Equal(a.Owner, other.Owner) &&
		bytes.Equal(a.Data, other.Data)
}

// AccountInfo is an account as presented to a program for a single
// instruction, along with the privileges the instruction grants over it.
// Instructions referencing the same key share the underlying *Account.
type AccountInfo struct {
	Key        ed25519.PublicKey
	IsSigner   bool
	IsWritable bool

	*Account
}

// Meta returns the account meta describing the info's key and privileges
func (a *AccountInfo) Meta() solana.AccountMeta {
	if a.IsWritable {
		return solana.NewAccountMeta(a.Key, a.IsSigner)
	}
	return solana.NewReadonlyAccountMeta(a.Key, a.IsSigner)
}
