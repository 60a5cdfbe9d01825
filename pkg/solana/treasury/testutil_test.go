package treasury

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-treasury/pkg/solana"
	"github.com/code-payments/code-treasury/pkg/solana/runtime"
	"github.com/code-payments/code-treasury/pkg/solana/token"
	"github.com/code-payments/code-treasury/pkg/testutil"
)

const testLamports = 10_000_000_000

type testEnv struct {
	ctx     context.Context
	bank    *runtime.Bank
	program ed25519.PublicKey
	mint    ed25519.PublicKey

	treasury ed25519.PublicKey
	config   ed25519.PublicKey
}

func setup(t *testing.T) *testEnv {
	keys := testutil.GenerateSolanaKeys(t, 2)

	env := &testEnv{
		ctx:     context.Background(),
		bank:    runtime.NewBank(runtime.WithDefaultConfigs()),
		program: keys[0],
		mint:    keys[1],
	}
	require.NoError(t, env.bank.RegisterProgram(env.program, runtime.ProgramFunc(Process)))

	var err error
	env.treasury, _, err = GetTreasuryAddress(env.program)
	require.NoError(t, err)
	env.config, _, err = GetConfigAddress(env.program)
	require.NoError(t, err)

	return env
}

func (e *testEnv) fundedKeypair(t *testing.T, lamports uint64) ed25519.PrivateKey {
	key := testutil.GenerateSolanaKeypair(t)
	require.NoError(t, e.bank.Airdrop(testutil.PublicKey(key), lamports))
	return key
}

// tokenAccount stores an initialized token account of the test mint
func (e *testEnv) tokenAccount(t *testing.T, owner ed25519.PublicKey, amount uint64) ed25519.PublicKey {
	address := testutil.GenerateSolanaKeys(t, 1)[0]
	e.storeTokenAccount(t, address, owner, amount)
	return address
}

// associatedTokenAccount stores an initialized token account of the test mint
// at owner's associated token address
func (e *testEnv) associatedTokenAccount(t *testing.T, owner ed25519.PublicKey, amount uint64) ed25519.PublicKey {
	address, err := token.GetAssociatedAccount(owner, e.mint)
	require.NoError(t, err)

	e.storeTokenAccount(t, address, owner, amount)
	return address
}

func (e *testEnv) storeTokenAccount(t *testing.T, address, owner ed25519.PublicKey, amount uint64) {
	account := &token.Account{
		Mint:   e.mint,
		Owner:  owner,
		Amount: amount,
		State:  token.AccountStateInitialized,
	}
	require.NoError(t, e.bank.SetAccount(address, &runtime.Account{
		Lamports: e.bank.Rent(e.ctx).MinimumBalance(token.AccountSize),
		Data:     account.Marshal(),
		Owner:    token.ProgramKey,
	}))
}

func (e *testEnv) tokenBalance(t *testing.T, address ed25519.PublicKey) uint64 {
	stored, err := e.bank.GetAccount(address)
	require.NoError(t, err)

	var account token.Account
	require.True(t, account.Unmarshal(stored.Data))
	return account.Amount
}

func (e *testEnv) execute(t *testing.T, payer ed25519.PrivateKey, instruction solana.Instruction, signers ...ed25519.PrivateKey) error {
	tx := solana.NewTransaction(testutil.PublicKey(payer), instruction)
	tx.SetBlockhash(solana.Blockhash{1})
	require.NoError(t, tx.Sign(append([]ed25519.PrivateKey{payer}, signers...)...))
	return e.bank.Execute(e.ctx, tx)
}

func (e *testEnv) initialize(t *testing.T, payer ed25519.PrivateKey) {
	instruction, err := NewInitializeInstruction(e.program, testutil.PublicKey(payer))
	require.NoError(t, err)
	require.NoError(t, e.execute(t, payer, instruction))
}

func (e *testEnv) claimInstruction(t *testing.T, user, destination, vault, owner ed25519.PublicKey, amount uint64) solana.Instruction {
	instruction, err := NewClaimInstruction(e.program, &ClaimInstructionAccounts{
		User:        user,
		Destination: destination,
		Vault:       vault,
		Owner:       owner,
	}, amount)
	require.NoError(t, err)
	return instruction
}

func requireInstructionError(t *testing.T, err error, expected error) {
	require.Error(t, err)

	var ie solana.InstructionError
	require.ErrorAs(t, err, &ie)
	require.Equal(t, 0, ie.Index)
	require.ErrorIs(t, err, expected)
}
