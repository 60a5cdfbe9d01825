package runtime

import (
	"context"
	"crypto/ed25519"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-treasury/pkg/solana"
	"github.com/code-payments/code-treasury/pkg/solana/system"
)

// Program processes instructions addressed to it. Returned errors abort the
// enclosing transaction.
type Program interface {
	Process(ic InvokeContext, programID ed25519.PublicKey, accounts []*AccountInfo, data []byte) error
}

// ProgramFunc adapts a function to the Program interface
type ProgramFunc func(ic InvokeContext, programID ed25519.PublicKey, accounts []*AccountInfo, data []byte) error

// Process implements Program.Process
func (f ProgramFunc) Process(ic InvokeContext, programID ed25519.PublicKey, accounts []*AccountInfo, data []byte) error {
	return f(ic, programID, accounts, data)
}

// InvokeContext is the host surface available to a running program
type InvokeContext interface {
	// Context returns the context of the enclosing transaction
	Context() context.Context

	// Log returns a logger scoped to the running instruction
	Log() *logrus.Entry

	// Rent returns the rent parameters in effect for the transaction
	Rent() system.Rent

	// Invoke runs instruction as a cross-program invocation. Every account
	// it references must have been passed to the running program. Signer
	// privileges are extended to program derived addresses for which a
	// verified ProgramSigner is provided.
	Invoke(instruction solana.Instruction, signers ...*solana.ProgramSigner) error
}
