package runtime

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-treasury/pkg/solana"
	"github.com/code-payments/code-treasury/pkg/solana/token"
)

// processTokenInstruction is the builtin token program. Only single-owner
// transfers are supported.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/processor.rs#L229
func processTokenInstruction(ic InvokeContext, programID ed25519.PublicKey, accounts []*AccountInfo, data []byte) error {
	command, err := token.GetCommand(data)
	if err != nil {
		return token.ErrorInvalidInstruction
	}

	switch command {
	case token.CommandTransfer:
		amount, err := token.DecodeTransferAmount(data)
		if err != nil {
			return token.ErrorInvalidInstruction
		}
		if len(accounts) < 3 {
			return solana.ErrNotEnoughAccountKeys
		}
		return transferTokens(ic, programID, accounts[0], accounts[1], accounts[2], amount)
	default:
		return token.ErrorInvalidInstruction
	}
}

func transferTokens(ic InvokeContext, programID ed25519.PublicKey, sourceInfo, destInfo, authority *AccountInfo, amount uint64) error {
	log := ic.Log().WithFields(logrus.Fields{
		"method":      "Transfer",
		"source":      base58.Encode(sourceInfo.Key),
		"destination": base58.Encode(destInfo.Key),
		"authority":   base58.Encode(authority.Key),
		"amount":      amount,
	})

	source, err := loadTokenAccount(programID, sourceInfo)
	if err != nil {
		return err
	}
	dest, err := loadTokenAccount(programID, destInfo)
	if err != nil {
		return err
	}

	if source.IsFrozen() || dest.IsFrozen() {
		return token.ErrorAccountFrozen
	}
	if source.Amount < amount {
		log.WithField("balance", source.Amount).Debug("insufficient token balance")
		return token.ErrorInsufficientFunds
	}
	if !bytes.Equal(source.Mint, dest.Mint) {
		return token.ErrorMintMismatch
	}
	if !bytes.Equal(source.Owner, authority.Key) {
		log.Debug("authority is not the source owner")
		return token.ErrorOwnerMismatch
	}
	if !authority.IsSigner {
		return solana.ErrMissingRequiredSignature
	}

	if bytes.Equal(sourceInfo.Key, destInfo.Key) {
		return nil
	}
	if dest.Amount+amount < dest.Amount {
		return token.ErrorOverflow
	}

	source.Amount -= amount
	dest.Amount += amount

	copy(sourceInfo.Data, source.Marshal())
	copy(destInfo.Data, dest.Marshal())

	log.Debug("tokens transferred")
	return nil
}

func loadTokenAccount(programID ed25519.PublicKey, info *AccountInfo) (*token.Account, error) {
	if !info.IsOwnedBy(programID) {
		return nil, solana.ErrIncorrectProgramID
	}

	var account token.Account
	if !account.Unmarshal(info.Data) {
		return nil, solana.ErrInvalidAccountData
	}
	if !account.IsInitialized() {
		return nil, token.ErrorUninitializedState
	}
	return &account, nil
}
