package runtime

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-treasury/pkg/solana"
	"github.com/code-payments/code-treasury/pkg/solana/system"
	"github.com/code-payments/code-treasury/pkg/solana/token"
	"github.com/code-payments/code-treasury/pkg/testutil"
)

const testLamports = 10_000_000_000

type testEnv struct {
	bank *Bank
	rent system.Rent
}

func setup(t *testing.T) *testEnv {
	return setupWithOverrides(t, &testOverrides{
		rent:             system.DefaultRent(),
		lockStripes:      16,
		verifySignatures: true,
	})
}

func setupWithOverrides(t *testing.T, overrides *testOverrides) *testEnv {
	return &testEnv{
		bank: NewBank(withManualTestOverrides(overrides)),
		rent: overrides.rent,
	}
}

// fundedKeypair returns a new keypair whose system account holds testLamports
func (e *testEnv) fundedKeypair(t *testing.T) ed25519.PrivateKey {
	key := testutil.GenerateSolanaKeypair(t)
	require.NoError(t, e.bank.Airdrop(testutil.PublicKey(key), testLamports))
	return key
}

// tokenAccount stores an initialized token account and returns its address
func (e *testEnv) tokenAccount(t *testing.T, mint, owner ed25519.PublicKey, amount uint64, state token.AccountState) ed25519.PublicKey {
	address := testutil.GenerateSolanaKeys(t, 1)[0]

	account := &token.Account{
		Mint:   mint,
		Owner:  owner,
		Amount: amount,
		State:  state,
	}
	require.NoError(t, e.bank.SetAccount(address, &Account{
		Lamports: e.rent.MinimumBalance(token.AccountSize),
		Data:     account.Marshal(),
		Owner:    token.ProgramKey,
	}))
	return address
}

func (e *testEnv) tokenBalance(t *testing.T, address ed25519.PublicKey) uint64 {
	stored, err := e.bank.GetAccount(address)
	require.NoError(t, err)

	var account token.Account
	require.True(t, account.Unmarshal(stored.Data))
	return account.Amount
}

func signedTransaction(t *testing.T, payer ed25519.PrivateKey, instructions []solana.Instruction, signers ...ed25519.PrivateKey) solana.Transaction {
	tx := solana.NewTransaction(testutil.PublicKey(payer), instructions...)
	tx.SetBlockhash(solana.Blockhash{1})
	require.NoError(t, tx.Sign(append([]ed25519.PrivateKey{payer}, signers...)...))
	return tx
}

func requireInstructionError(t *testing.T, err error, index int, expected error) {
	require.Error(t, err)

	var ie solana.InstructionError
	require.ErrorAs(t, err, &ie)
	require.Equal(t, index, ie.Index)
	require.ErrorIs(t, err, expected)
}
