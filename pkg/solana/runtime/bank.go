package runtime

import (
	"context"
	"crypto/ed25519"
	"sync"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-treasury/pkg/rate"
	"github.com/code-payments/code-treasury/pkg/solana"
	"github.com/code-payments/code-treasury/pkg/solana/system"
	"github.com/code-payments/code-treasury/pkg/solana/token"
	xsync "github.com/code-payments/code-treasury/pkg/sync"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrProgramExists   = errors.New("program already registered")
)

// NativeLoaderKey owns the accounts of builtin programs
//
// Current key: NativeLoader1111111111111111111111111111111
var NativeLoaderKey = solana.MustPublicKeyFromString("NativeLoader1111111111111111111111111111111")

// Bank is an in-memory ledger. It stores accounts, hosts programs, and
// executes transactions atomically against them.
type Bank struct {
	log  *logrus.Entry
	conf *conf

	// accountLocks serialize transactions by the accounts they touch,
	// while stateMu only guards the maps themselves.
	accountLocks *xsync.StripedLock

	payerLimiter rate.Limiter

	stateMu  sync.RWMutex
	accounts map[string]*Account
	programs map[string]Program
}

// NewBank returns a bank with the system and token programs installed
func NewBank(configProvider ConfigProvider) *Bank {
	conf := configProvider()

	b := &Bank{
		log:          logrus.StandardLogger().WithField("type", "solana/runtime/bank"),
		conf:         conf,
		accountLocks: xsync.NewStripedLock(uint(conf.lockStripes.Get(context.Background()))),
		payerLimiter: rate.NewLimiter(conf.maxPayerTransactionsPerSecond.Get(context.Background())),
		accounts:     make(map[string]*Account),
		programs:     make(map[string]Program),
	}

	b.mustRegisterBuiltin(system.ProgramKey[:], ProgramFunc(processSystemInstruction))
	b.mustRegisterBuiltin(token.ProgramKey, ProgramFunc(processTokenInstruction))

	return b
}

func (b *Bank) mustRegisterBuiltin(programID ed25519.PublicKey, program Program) {
	if err := b.RegisterProgram(programID, program); err != nil {
		panic(err)
	}
}

// RegisterProgram deploys program at programID. The program account is
// marked executable and can no longer be modified.
func (b *Bank) RegisterProgram(programID ed25519.PublicKey, program Program) error {
	if len(programID) != ed25519.PublicKeySize {
		return errors.Errorf("invalid program id length: %d", len(programID))
	}

	release := b.accountLocks.Acquire([][]byte{programID}, nil)
	defer release()

	b.stateMu.Lock()
	defer b.stateMu.Unlock()

	key := string(programID)
	if _, ok := b.programs[key]; ok {
		return ErrProgramExists
	}

	b.programs[key] = program
	b.accounts[key] = &Account{
		Lamports:   1,
		Owner:      NativeLoaderKey,
		Executable: true,
	}

	b.log.WithField("program", base58.Encode(programID)).Debug("program registered")
	return nil
}

// SetAccount stores a copy of account at key, replacing any existing
// account. Setting an account with no lamports removes it.
func (b *Bank) SetAccount(key ed25519.PublicKey, account *Account) error {
	if len(key) != ed25519.PublicKeySize {
		return errors.Errorf("invalid account key length: %d", len(key))
	}

	release := b.accountLocks.Acquire([][]byte{key}, nil)
	defer release()

	b.stateMu.Lock()
	defer b.stateMu.Unlock()

	if _, ok := b.programs[string(key)]; ok {
		return errors.New("cannot overwrite a program account")
	}

	if account == nil || account.Lamports == 0 {
		delete(b.accounts, string(key))
		return nil
	}

	b.accounts[string(key)] = account.Clone()
	return nil
}

// GetAccount returns a copy of the account stored at key
func (b *Bank) GetAccount(key ed25519.PublicKey) (*Account, error) {
	release := b.accountLocks.Acquire(nil, [][]byte{key})
	defer release()

	b.stateMu.RLock()
	defer b.stateMu.RUnlock()

	account, ok := b.accounts[string(key)]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return account.Clone(), nil
}

// GetBalance returns the lamports held at key, which is zero for accounts
// that don't exist
func (b *Bank) GetBalance(key ed25519.PublicKey) uint64 {
	account, err := b.GetAccount(key)
	if err != nil {
		return 0
	}
	return account.Lamports
}

// Airdrop mints lamports into key, creating a system account if needed
func (b *Bank) Airdrop(key ed25519.PublicKey, lamports uint64) error {
	if len(key) != ed25519.PublicKeySize {
		return errors.Errorf("invalid account key length: %d", len(key))
	}

	release := b.accountLocks.Acquire([][]byte{key}, nil)
	defer release()

	b.stateMu.Lock()
	defer b.stateMu.Unlock()

	account, ok := b.accounts[string(key)]
	if !ok {
		account = NewSystemAccount(0)
		b.accounts[string(key)] = account
	}

	if account.Lamports+lamports < account.Lamports {
		return errors.New("airdrop overflows account balance")
	}
	account.Lamports += lamports

	return nil
}

// Rent returns the rent parameters currently in effect
func (b *Bank) Rent(ctx context.Context) system.Rent {
	return system.Rent{
		LamportsPerByteYear: b.conf.rentLamportsPerByteYear.Get(ctx),
		ExemptionThreshold:  b.conf.rentExemptionThreshold.Get(ctx),
	}
}

func (b *Bank) getProgram(programID ed25519.PublicKey) (Program, bool) {
	b.stateMu.RLock()
	defer b.stateMu.RUnlock()

	program, ok := b.programs[string(programID)]
	return program, ok
}
