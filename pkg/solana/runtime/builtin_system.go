package runtime

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-treasury/pkg/solana"
	"github.com/code-payments/code-treasury/pkg/solana/system"
)

// processSystemInstruction is the builtin system program. It supports
// account creation and lamport transfers.
//
// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/programs/system/src/system_processor.rs
func processSystemInstruction(ic InvokeContext, _ ed25519.PublicKey, accounts []*AccountInfo, data []byte) error {
	command, err := system.GetCommand(data)
	if err != nil {
		return solana.ErrInvalidInstructionData
	}

	switch command {
	case system.CommandCreateAccount:
		args, err := system.DecodeCreateAccountArgs(data)
		if err != nil {
			return solana.ErrInvalidInstructionData
		}
		if len(accounts) < 2 {
			return solana.ErrNotEnoughAccountKeys
		}
		return createAccount(ic, accounts[0], accounts[1], args)
	case system.CommandTransfer:
		lamports, err := system.DecodeTransferLamports(data)
		if err != nil {
			return solana.ErrInvalidInstructionData
		}
		if len(accounts) < 2 {
			return solana.ErrNotEnoughAccountKeys
		}
		return transferLamports(ic, accounts[0], accounts[1], lamports)
	default:
		return solana.ErrInvalidInstructionData
	}
}

func createAccount(ic InvokeContext, funder, to *AccountInfo, args *system.CreateAccountArgs) error {
	log := ic.Log().WithFields(logrus.Fields{
		"method":   "CreateAccount",
		"funder":   base58.Encode(funder.Key),
		"address":  base58.Encode(to.Key),
		"owner":    base58.Encode(args.Owner),
		"lamports": args.Lamports,
		"size":     args.Size,
	})

	if !to.IsSigner {
		log.Debug("new account did not sign")
		return solana.ErrMissingRequiredSignature
	}
	if to.Lamports > 0 || len(to.Data) > 0 || !to.IsOwnedBy(system.ProgramKey[:]) {
		log.Debug("account already in use")
		return system.ErrorAccountAlreadyInUse
	}
	if args.Size > system.MaxPermittedDataLength {
		return system.ErrorInvalidAccountDataLength
	}

	to.Data = make([]byte, args.Size)
	to.Owner = append(ed25519.PublicKey(nil), args.Owner...)

	if err := transferLamports(ic, funder, to, args.Lamports); err != nil {
		return err
	}

	log.Debug("account created")
	return nil
}

func transferLamports(ic InvokeContext, from, to *AccountInfo, lamports uint64) error {
	if !from.IsSigner {
		return solana.ErrMissingRequiredSignature
	}
	if len(from.Data) > 0 {
		return solana.ErrInvalidArgument
	}
	if from.Lamports < lamports {
		ic.Log().WithFields(logrus.Fields{
			"account":  base58.Encode(from.Key),
			"balance":  from.Lamports,
			"required": lamports,
		}).Debug("insufficient lamports")
		return system.ErrorResultWithNegativeLamports
	}
	if to.Lamports+lamports < to.Lamports {
		return solana.ErrInvalidArgument
	}

	from.Lamports -= lamports
	to.Lamports += lamports
	return nil
}
