package treasury

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-treasury/pkg/solana"
	"github.com/code-payments/code-treasury/pkg/solana/system"
	"github.com/code-payments/code-treasury/pkg/solana/token"
)

// NewInitializeInstruction returns the instruction that creates the treasury
// and config records for program, funded by payer. Payer becomes the
// treasury owner.
func NewInitializeInstruction(program, payer ed25519.PublicKey) (solana.Instruction, error) {
	treasury, _, err := GetTreasuryAddress(program)
	if err != nil {
		return solana.Instruction{}, errors.Wrap(err, "error deriving treasury address")
	}

	config, _, err := GetConfigAddress(program)
	if err != nil {
		return solana.Instruction{}, errors.Wrap(err, "error deriving config address")
	}

	return solana.NewInstruction(
		program,
		Instruction{Command: CommandInitialize}.Marshal(),
		solana.NewAccountMeta(payer, true),
		solana.NewAccountMeta(treasury, false),
		solana.NewReadonlyAccountMeta(system.ProgramKey[:], false),
		solana.NewAccountMeta(config, false),
	), nil
}

// ClaimInstructionAccounts are the caller supplied accounts of a Claim
type ClaimInstructionAccounts struct {
	User        ed25519.PublicKey
	Destination ed25519.PublicKey
	Vault       ed25519.PublicKey
	Owner       ed25519.PublicKey
}

// NewClaimInstruction returns the instruction that moves amount tokens from
// the vault to the destination token account. Owner must sign.
func NewClaimInstruction(program ed25519.PublicKey, accounts *ClaimInstructionAccounts, amount uint64) (solana.Instruction, error) {
	treasury, _, err := GetTreasuryAddress(program)
	if err != nil {
		return solana.Instruction{}, errors.Wrap(err, "error deriving treasury address")
	}

	config, _, err := GetConfigAddress(program)
	if err != nil {
		return solana.Instruction{}, errors.Wrap(err, "error deriving config address")
	}

	return solana.NewInstruction(
		program,
		Instruction{Command: CommandClaim, Amount: amount}.Marshal(),
		solana.NewReadonlyAccountMeta(accounts.User, true),
		solana.NewAccountMeta(accounts.Destination, false),
		solana.NewAccountMeta(accounts.Vault, false),
		solana.NewReadonlyAccountMeta(token.ProgramKey, false),
		solana.NewReadonlyAccountMeta(treasury, false),
		solana.NewReadonlyAccountMeta(accounts.Owner, true),
		solana.NewReadonlyAccountMeta(config, false),
	), nil
}

// DecompiledInitialize is the account set of a compiled Initialize instruction
type DecompiledInitialize struct {
	Payer    ed25519.PublicKey
	Treasury ed25519.PublicKey
	Config   ed25519.PublicKey
}

// DecompileInitialize reads the Initialize instruction at index in m
func DecompileInitialize(m solana.Message, index int, program ed25519.PublicKey) (*DecompiledInitialize, error) {
	i, _, err := decompile(m, index, program, CommandInitialize, initializeAccountCount)
	if err != nil {
		return nil, err
	}

	return &DecompiledInitialize{
		Payer:    m.Accounts[i.Accounts[0]],
		Treasury: m.Accounts[i.Accounts[1]],
		Config:   m.Accounts[i.Accounts[3]],
	}, nil
}

// DecompiledClaim is the account set and amount of a compiled Claim instruction
type DecompiledClaim struct {
	ClaimInstructionAccounts

	Treasury ed25519.PublicKey
	Config   ed25519.PublicKey
	Amount   uint64
}

// DecompileClaim reads the Claim instruction at index in m
func DecompileClaim(m solana.Message, index int, program ed25519.PublicKey) (*DecompiledClaim, error) {
	i, decoded, err := decompile(m, index, program, CommandClaim, claimAccountCount)
	if err != nil {
		return nil, err
	}

	return &DecompiledClaim{
		ClaimInstructionAccounts: ClaimInstructionAccounts{
			User:        m.Accounts[i.Accounts[0]],
			Destination: m.Accounts[i.Accounts[1]],
			Vault:       m.Accounts[i.Accounts[2]],
			Owner:       m.Accounts[i.Accounts[5]],
		},
		Treasury: m.Accounts[i.Accounts[4]],
		Config:   m.Accounts[i.Accounts[6]],
		Amount:   decoded.Amount,
	}, nil
}

func decompile(m solana.Message, index int, program ed25519.PublicKey, command Command, accountCount int) (solana.CompiledInstruction, *Instruction, error) {
	if index < 0 || index >= len(m.Instructions) {
		return solana.CompiledInstruction{}, nil, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]
	if int(i.ProgramIndex) >= len(m.Accounts) {
		return solana.CompiledInstruction{}, nil, errors.Errorf("program index out of range: %d", i.ProgramIndex)
	}
	for _, accountIndex := range i.Accounts {
		if int(accountIndex) >= len(m.Accounts) {
			return solana.CompiledInstruction{}, nil, errors.Errorf("account index out of range: %d", accountIndex)
		}
	}

	if !bytes.Equal(m.Accounts[i.ProgramIndex], program) {
		return solana.CompiledInstruction{}, nil, solana.ErrIncorrectProgram
	}

	decoded, err := DecodeInstruction(i.Data)
	if err != nil || decoded.Command != command {
		return solana.CompiledInstruction{}, nil, solana.ErrIncorrectInstruction
	}
	if len(i.Accounts) != accountCount {
		return solana.CompiledInstruction{}, nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}

	return i, decoded, nil
}
