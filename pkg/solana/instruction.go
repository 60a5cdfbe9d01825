package solana

import (
	"bytes"
	"crypto/ed25519"
	"sort"

	"github.com/pkg/errors"
)

var (
	ErrIncorrectProgram     = errors.New("incorrect program")
	ErrIncorrectInstruction = errors.New("incorrect instruction")
)

// AccountMeta is an account referenced by an instruction, along with the
// privileges the instruction requires over it.
type AccountMeta struct {
	PublicKey  ed25519.PublicKey
	IsSigner   bool
	IsWritable bool

	// Only set while compiling a transaction
	isPayer   bool
	isProgram bool
}

// NewAccountMeta returns a writable account meta
func NewAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: true,
	}
}

// NewReadonlyAccountMeta returns a readonly account meta
func NewReadonlyAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey: pub,
		IsSigner:  isSigner,
	}
}

// sortAccountMetas orders accounts the way a legacy message lays them out:
// the payer first, then signers before non-signers and writable before
// readonly within each, with invoked programs last. Ties break on key so
// compilation is deterministic.
//
// Reference: https://docs.solana.com/transaction#account-addresses-format
func sortAccountMetas(accounts []AccountMeta) {
	sort.SliceStable(accounts, func(i, j int) bool {
		a, b := accounts[i], accounts[j]

		switch {
		case a.isPayer != b.isPayer:
			return a.isPayer
		case a.isProgram != b.isProgram:
			return !a.isProgram
		case a.IsSigner != b.IsSigner:
			return a.IsSigner
		case a.IsWritable != b.IsWritable:
			return a.IsWritable
		}
		return bytes.Compare(a.PublicKey, b.PublicKey) < 0
	})
}

// Instruction is an uncompiled instruction addressed to Program
type Instruction struct {
	Program  ed25519.PublicKey
	Accounts []AccountMeta
	Data     []byte
}

func NewInstruction(program ed25519.PublicKey, data []byte, accounts ...AccountMeta) Instruction {
	return Instruction{
		Program:  program,
		Data:     data,
		Accounts: accounts,
	}
}

// CompiledInstruction is an instruction whose program and accounts have been
// replaced by indexes into a message's account list.
type CompiledInstruction struct {
	ProgramIndex byte
	Accounts     []byte
	Data         []byte
}
