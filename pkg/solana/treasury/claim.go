package treasury

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-treasury/pkg/solana"
	"github.com/code-payments/code-treasury/pkg/solana/runtime"
	"github.com/code-payments/code-treasury/pkg/solana/token"
)

const claimAccountCount = 7

func processClaim(ic runtime.InvokeContext, programID ed25519.PublicKey, accounts []*runtime.AccountInfo, amount uint64) error {
	log := handlerLog(ic, "Claim").WithField("amount", amount)

	if len(accounts) < claimAccountCount {
		return solana.ErrNotEnoughAccountKeys
	}

	destination := accounts[1]
	vault := accounts[2]
	tokenProgram := accounts[3]
	treasury := accounts[4]
	owner := accounts[5]
	config := accounts[6]

	treasurySigner, err := getTreasurySigner(programID)
	if err != nil {
		log.WithError(err).Warn("failure deriving treasury address")
		return solana.ErrInvalidSeeds
	}
	if !bytes.Equal(treasury.Key, treasurySigner.Address()) {
		log.WithField("treasury", base58.Encode(treasury.Key)).Debug("treasury address does not match derived address")
		return solana.ErrInvalidSeeds
	}

	configAddress, _, err := GetConfigAddress(programID)
	if err != nil {
		log.WithError(err).Warn("failure deriving config address")
		return solana.ErrInvalidSeeds
	}
	if !bytes.Equal(config.Key, configAddress) {
		log.WithField("config", base58.Encode(config.Key)).Debug("config address does not match derived address")
		return solana.ErrInvalidSeeds
	}

	if config.Lamports == 0 {
		return solana.ErrUninitializedAccount
	}

	var record ConfigAccount
	if err := record.Unmarshal(config.Data); err != nil {
		return solana.ErrInvalidAccountData
	}

	log = log.WithFields(logrus.Fields{
		"owner":       base58.Encode(owner.Key),
		"destination": base58.Encode(destination.Key),
	})

	if !bytes.Equal(record.Owner, owner.Key) {
		log.Debug("owner does not match configured owner")
		return solana.ErrIllegalOwner
	}
	if !owner.IsSigner {
		log.Debug("owner did not sign")
		return solana.ErrMissingRequiredSignature
	}

	var vaultAccount token.Account
	if !vaultAccount.Unmarshal(vault.Data) || !vaultAccount.IsInitialized() {
		return solana.ErrInvalidAccountData
	}
	if !bytes.Equal(vaultAccount.Owner, treasury.Key) {
		log.WithField("vault", base58.Encode(vault.Key)).Debug("vault is not controlled by the treasury")
		return solana.ErrIllegalOwner
	}

	if !bytes.Equal(tokenProgram.Key, token.ProgramKey) {
		return solana.ErrIncorrectProgramID
	}

	// Balance sufficiency is left to the token program. The treasury record
	// balance isn't consulted.
	err = ic.Invoke(
		token.Transfer(vault.Key, destination.Key, treasury.Key, amount),
		treasurySigner,
	)
	if err != nil {
		log.WithError(err).Debug("failure transferring from vault")
		return err
	}

	log.Info("claimed from treasury vault")
	return nil
}
