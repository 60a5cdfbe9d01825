// Package treasury implements a self-custodial treasury controller program.
//
// The program owns two singleton records at program derived addresses: a
// config record naming the treasury owner, and a treasury record whose
// address is the authority of an external token vault. Initialize creates
// both and fixes the owner forever. Claim lets that owner move tokens out
// of the vault, with the program signing for the treasury by re-deriving its
// address rather than holding a key.
package treasury

import (
	"crypto/ed25519"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-treasury/pkg/solana"
	"github.com/code-payments/code-treasury/pkg/solana/runtime"
)

// Process decodes the instruction and routes it to its handler. Handler
// errors are returned unchanged.
func Process(ic runtime.InvokeContext, programID ed25519.PublicKey, accounts []*runtime.AccountInfo, data []byte) error {
	instruction, err := DecodeInstruction(data)
	if err != nil {
		ic.Log().WithError(err).Debug("invalid treasury instruction")
		return err
	}

	switch instruction.Command {
	case CommandInitialize:
		return processInitialize(ic, programID, accounts)
	case CommandClaim:
		return processClaim(ic, programID, accounts, instruction.Amount)
	default:
		return solana.ErrInvalidInstructionData
	}
}

var _ runtime.Program = runtime.ProgramFunc(Process)

func handlerLog(ic runtime.InvokeContext, method string) *logrus.Entry {
	return ic.Log().WithField("method", method)
}
