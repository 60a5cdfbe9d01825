package treasury

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"

	"github.com/code-payments/code-treasury/pkg/solana"
	"github.com/code-payments/code-treasury/pkg/solana/runtime"
	"github.com/code-payments/code-treasury/pkg/solana/system"
)

const initializeAccountCount = 4

func processInitialize(ic runtime.InvokeContext, programID ed25519.PublicKey, accounts []*runtime.AccountInfo) error {
	log := handlerLog(ic, "Initialize")

	if len(accounts) < initializeAccountCount {
		return solana.ErrNotEnoughAccountKeys
	}

	payer := accounts[0]
	treasury := accounts[1]
	systemProgram := accounts[2]
	config := accounts[3]

	treasurySigner, err := getTreasurySigner(programID)
	if err != nil {
		log.WithError(err).Warn("failure deriving treasury address")
		return solana.ErrInvalidSeeds
	}
	if !bytes.Equal(treasury.Key, treasurySigner.Address()) {
		log.WithField("treasury", base58.Encode(treasury.Key)).Debug("treasury address does not match derived address")
		return solana.ErrInvalidSeeds
	}

	configSigner, err := getConfigSigner(programID)
	if err != nil {
		log.WithError(err).Warn("failure deriving config address")
		return solana.ErrInvalidSeeds
	}
	if !bytes.Equal(config.Key, configSigner.Address()) {
		log.WithField("config", base58.Encode(config.Key)).Debug("config address does not match derived address")
		return solana.ErrInvalidSeeds
	}

	if config.Lamports > 0 && len(config.Data) >= ConfigAccountSize {
		return solana.ErrAccountAlreadyInitialized
	}

	if !bytes.Equal(systemProgram.Key, system.ProgramKey[:]) {
		return solana.ErrIncorrectProgramID
	}

	rent := ic.Rent()

	err = ic.Invoke(
		system.CreateAccount(payer.Key, treasury.Key, programID, rent.MinimumBalance(TreasuryAccountSpace), TreasuryAccountSpace),
		treasurySigner,
	)
	if err != nil {
		log.WithError(err).Debug("failure creating treasury account")
		return err
	}

	err = ic.Invoke(
		system.CreateAccount(payer.Key, config.Key, programID, rent.MinimumBalance(ConfigAccountSpace), ConfigAccountSpace),
		configSigner,
	)
	if err != nil {
		log.WithError(err).Debug("failure creating config account")
		return err
	}

	record := &ConfigAccount{Owner: payer.Key}
	copy(config.Data, record.Marshal())

	log.WithField("owner", base58.Encode(payer.Key)).Info("treasury initialized")
	return nil
}
