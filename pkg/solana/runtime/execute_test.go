package runtime

import (
	"context"
	"crypto/ed25519"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-treasury/pkg/solana"
	"github.com/code-payments/code-treasury/pkg/solana/system"
	"github.com/code-payments/code-treasury/pkg/solana/token"
	"github.com/code-payments/code-treasury/pkg/testutil"
)

func TestExecute_SystemTransfer(t *testing.T) {
	env := setup(t)

	payer := env.fundedKeypair(t)
	dest := testutil.GenerateSolanaKeys(t, 1)[0]

	tx := signedTransaction(t, payer, []solana.Instruction{
		system.Transfer(testutil.PublicKey(payer), dest, 1_000_000_000),
	})
	require.NoError(t, env.bank.Execute(context.Background(), tx))

	assert.EqualValues(t, testLamports-1_000_000_000, env.bank.GetBalance(testutil.PublicKey(payer)))
	assert.EqualValues(t, 1_000_000_000, env.bank.GetBalance(dest))
}

func TestExecute_SignatureFailure(t *testing.T) {
	env := setup(t)

	payer := env.fundedKeypair(t)
	other := testutil.GenerateSolanaKeypair(t)
	dest := testutil.GenerateSolanaKeys(t, 1)[0]

	instructions := []solana.Instruction{
		system.Transfer(testutil.PublicKey(payer), dest, 1_000_000_000),
	}

	// Unsigned
	tx := solana.NewTransaction(testutil.PublicKey(payer), instructions...)
	err := env.bank.Execute(context.Background(), tx)
	assert.ErrorIs(t, err, solana.NewTransactionError(solana.TransactionErrorSignatureFailure))

	// Signed by the wrong key
	tx = solana.NewTransaction(testutil.PublicKey(payer), instructions...)
	copy(tx.Signatures[0][:], signedTransaction(t, other, instructions).Signatures[0][:])
	err = env.bank.Execute(context.Background(), tx)
	assert.ErrorIs(t, err, solana.NewTransactionError(solana.TransactionErrorSignatureFailure))

	// Tampered after signing
	tx = signedTransaction(t, payer, instructions)
	tx.Message.Instructions[0].Data = system.Transfer(testutil.PublicKey(payer), dest, 2_000_000_000).Data
	err = env.bank.Execute(context.Background(), tx)
	assert.ErrorIs(t, err, solana.NewTransactionError(solana.TransactionErrorSignatureFailure))

	assert.EqualValues(t, testLamports, env.bank.GetBalance(testutil.PublicKey(payer)))
	assert.Zero(t, env.bank.GetBalance(dest))
}

func TestExecute_SignatureVerificationDisabled(t *testing.T) {
	env := setupWithOverrides(t, &testOverrides{
		rent:             system.DefaultRent(),
		lockStripes:      16,
		verifySignatures: false,
	})

	payer := env.fundedKeypair(t)
	dest := testutil.GenerateSolanaKeys(t, 1)[0]

	tx := solana.NewTransaction(testutil.PublicKey(payer), system.Transfer(testutil.PublicKey(payer), dest, 1_000_000_000))
	require.NoError(t, env.bank.Execute(context.Background(), tx))
	assert.EqualValues(t, 1_000_000_000, env.bank.GetBalance(dest))

	tx.Signatures = nil
	err := env.bank.Execute(context.Background(), tx)
	assert.ErrorIs(t, err, solana.NewTransactionError(solana.TransactionErrorSignatureFailure))
}

func TestExecute_InvalidTransactions(t *testing.T) {
	env := setup(t)

	payer := env.fundedKeypair(t)
	unknownProgram := testutil.GenerateSolanaKeys(t, 1)[0]

	tx := signedTransaction(t, payer, []solana.Instruction{
		solana.NewInstruction(unknownProgram, []byte{0}),
	})
	err := env.bank.Execute(context.Background(), tx)
	assert.ErrorIs(t, err, solana.NewTransactionError(solana.TransactionErrorInvalidProgramForExecution))

	tx = signedTransaction(t, payer, []solana.Instruction{
		solana.NewInstruction(system.ProgramKey[:], []byte{0}, solana.NewAccountMeta(token.ProgramKey, false)),
	})
	err = env.bank.Execute(context.Background(), tx)
	assert.ErrorIs(t, err, solana.NewTransactionError(solana.TransactionErrorInvalidWritableAccount))

	tx = signedTransaction(t, payer, []solana.Instruction{
		system.Transfer(testutil.PublicKey(payer), unknownProgram, 1),
	})
	tx.Message.Instructions[0].Accounts = []byte{42}
	err = env.bank.Execute(context.Background(), tx)
	assert.ErrorIs(t, err, solana.NewTransactionError(solana.TransactionErrorInvalidAccountIndex))
}

func TestExecute_CreateAccount(t *testing.T) {
	env := setup(t)

	payer := env.fundedKeypair(t)
	newAccount := testutil.GenerateSolanaKeypair(t)
	owner := testutil.GenerateSolanaKeys(t, 1)[0]

	lamports := env.rent.MinimumBalance(40)
	create := system.CreateAccount(testutil.PublicKey(payer), testutil.PublicKey(newAccount), owner, lamports, 40)

	tx := signedTransaction(t, payer, []solana.Instruction{create}, newAccount)
	require.NoError(t, env.bank.Execute(context.Background(), tx))

	created, err := env.bank.GetAccount(testutil.PublicKey(newAccount))
	require.NoError(t, err)
	assert.Equal(t, lamports, created.Lamports)
	assert.Equal(t, make([]byte, 40), created.Data)
	assert.True(t, created.IsOwnedBy(owner))
	assert.EqualValues(t, testLamports-lamports, env.bank.GetBalance(testutil.PublicKey(payer)))

	// The address is now in use
	tx = signedTransaction(t, payer, []solana.Instruction{create}, newAccount)
	err = env.bank.Execute(context.Background(), tx)
	requireInstructionError(t, err, 0, system.ErrorAccountAlreadyInUse)

	var ie solana.InstructionError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, `[0, {"Custom": 0}]`, ie.JSONString())
}

func TestExecute_CreateAccountFailures(t *testing.T) {
	env := setup(t)

	payer := env.fundedKeypair(t)
	newAccount := testutil.GenerateSolanaKeypair(t)
	owner := testutil.GenerateSolanaKeys(t, 1)[0]

	// Funder can't cover the balance
	create := system.CreateAccount(testutil.PublicKey(payer), testutil.PublicKey(newAccount), owner, testLamports+1, 0)
	err := env.bank.Execute(context.Background(), signedTransaction(t, payer, []solana.Instruction{create}, newAccount))
	requireInstructionError(t, err, 0, system.ErrorResultWithNegativeLamports)

	// Too large
	create = system.CreateAccount(testutil.PublicKey(payer), testutil.PublicKey(newAccount), owner, 1, system.MaxPermittedDataLength+1)
	err = env.bank.Execute(context.Background(), signedTransaction(t, payer, []solana.Instruction{create}, newAccount))
	requireInstructionError(t, err, 0, system.ErrorInvalidAccountDataLength)

	// Below the rent exempt minimum
	create = system.CreateAccount(testutil.PublicKey(payer), testutil.PublicKey(newAccount), owner, env.rent.MinimumBalance(40)-1, 40)
	err = env.bank.Execute(context.Background(), signedTransaction(t, payer, []solana.Instruction{create}, newAccount))
	assert.ErrorIs(t, err, solana.NewTransactionError(solana.TransactionErrorInsufficientFundsForRent))

	// Malformed
	create = system.CreateAccount(testutil.PublicKey(payer), testutil.PublicKey(newAccount), owner, 1, 0)
	create.Data = create.Data[:10]
	err = env.bank.Execute(context.Background(), signedTransaction(t, payer, []solana.Instruction{create}, newAccount))
	requireInstructionError(t, err, 0, solana.ErrInvalidInstructionData)

	_, err = env.bank.GetAccount(testutil.PublicKey(newAccount))
	assert.Equal(t, ErrAccountNotFound, err)
	assert.EqualValues(t, testLamports, env.bank.GetBalance(testutil.PublicKey(payer)))
}

func TestExecute_Atomicity(t *testing.T) {
	env := setup(t)

	payer := env.fundedKeypair(t)
	dest := testutil.GenerateSolanaKeys(t, 1)[0]

	tx := signedTransaction(t, payer, []solana.Instruction{
		system.Transfer(testutil.PublicKey(payer), dest, 1_000_000_000),
		system.Transfer(testutil.PublicKey(payer), dest, testLamports),
	})
	err := env.bank.Execute(context.Background(), tx)
	requireInstructionError(t, err, 1, system.ErrorResultWithNegativeLamports)

	assert.EqualValues(t, testLamports, env.bank.GetBalance(testutil.PublicKey(payer)))
	assert.Zero(t, env.bank.GetBalance(dest))
}

func TestExecute_PurgesEmptyAccounts(t *testing.T) {
	env := setup(t)

	payer := env.fundedKeypair(t)
	drained := env.fundedKeypair(t)

	tx := signedTransaction(t, payer, []solana.Instruction{
		system.Transfer(testutil.PublicKey(drained), testutil.PublicKey(payer), testLamports),
	}, drained)
	require.NoError(t, env.bank.Execute(context.Background(), tx))

	_, err := env.bank.GetAccount(testutil.PublicKey(drained))
	assert.Equal(t, ErrAccountNotFound, err)
	assert.EqualValues(t, 2*testLamports, env.bank.GetBalance(testutil.PublicKey(payer)))
}

func TestExecute_TokenTransfer(t *testing.T) {
	env := setup(t)

	payer := env.fundedKeypair(t)
	owner := env.fundedKeypair(t)
	mint := testutil.GenerateSolanaKeys(t, 1)[0]

	source := env.tokenAccount(t, mint, testutil.PublicKey(owner), 1000, token.AccountStateInitialized)
	dest := env.tokenAccount(t, mint, testutil.GenerateSolanaKeys(t, 1)[0], 5, token.AccountStateInitialized)

	tx := signedTransaction(t, payer, []solana.Instruction{
		token.Transfer(source, dest, testutil.PublicKey(owner), 400),
	}, owner)
	require.NoError(t, env.bank.Execute(context.Background(), tx))

	assert.EqualValues(t, 600, env.tokenBalance(t, source))
	assert.EqualValues(t, 405, env.tokenBalance(t, dest))
}

func TestExecute_TokenTransferFailures(t *testing.T) {
	env := setup(t)

	payer := env.fundedKeypair(t)
	owner := env.fundedKeypair(t)
	other := env.fundedKeypair(t)
	mint := testutil.GenerateSolanaKeys(t, 1)[0]
	otherMint := testutil.GenerateSolanaKeys(t, 1)[0]

	source := env.tokenAccount(t, mint, testutil.PublicKey(owner), 1000, token.AccountStateInitialized)
	dest := env.tokenAccount(t, mint, testutil.PublicKey(other), 0, token.AccountStateInitialized)
	frozen := env.tokenAccount(t, mint, testutil.PublicKey(other), 0, token.AccountStateFrozen)
	wrongMint := env.tokenAccount(t, otherMint, testutil.PublicKey(other), 0, token.AccountStateInitialized)
	uninitialized := env.tokenAccount(t, mint, testutil.PublicKey(other), 0, token.AccountStateUninitialized)
	notToken := testutil.PublicKey(env.fundedKeypair(t))

	for _, tc := range []struct {
		name        string
		instruction solana.Instruction
		authority   ed25519.PrivateKey
		expected    error
	}{
		{"insufficient funds", token.Transfer(source, dest, testutil.PublicKey(owner), 1001), owner, token.ErrorInsufficientFunds},
		{"wrong authority", token.Transfer(source, dest, testutil.PublicKey(other), 1), other, token.ErrorOwnerMismatch},
		{"frozen", token.Transfer(source, frozen, testutil.PublicKey(owner), 1), owner, token.ErrorAccountFrozen},
		{"mint mismatch", token.Transfer(source, wrongMint, testutil.PublicKey(owner), 1), owner, token.ErrorMintMismatch},
		{"uninitialized", token.Transfer(source, uninitialized, testutil.PublicKey(owner), 1), owner, token.ErrorUninitializedState},
		{"not a token account", token.Transfer(source, notToken, testutil.PublicKey(owner), 1), owner, solana.ErrIncorrectProgramID},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tx := signedTransaction(t, payer, []solana.Instruction{tc.instruction}, tc.authority)
			err := env.bank.Execute(context.Background(), tx)
			requireInstructionError(t, err, 0, tc.expected)
		})
	}

	// The authority must sign
	transfer := token.Transfer(source, dest, testutil.PublicKey(owner), 1)
	transfer.Accounts[2].IsSigner = false
	err := env.bank.Execute(context.Background(), signedTransaction(t, payer, []solana.Instruction{transfer}))
	requireInstructionError(t, err, 0, solana.ErrMissingRequiredSignature)

	// Both accounts must be writable
	transfer = token.Transfer(source, dest, testutil.PublicKey(owner), 1)
	transfer.Accounts[1].IsWritable = false
	err = env.bank.Execute(context.Background(), signedTransaction(t, payer, []solana.Instruction{transfer}, owner))
	requireInstructionError(t, err, 0, solana.ErrReadonlyDataModified)

	assert.EqualValues(t, 1000, env.tokenBalance(t, source))
	assert.EqualValues(t, 0, env.tokenBalance(t, dest))
}

func TestExecute_Concurrent(t *testing.T) {
	env := setup(t)

	dest := testutil.GenerateSolanaKeys(t, 1)[0]
	require.NoError(t, env.bank.Airdrop(dest, env.rent.MinimumBalance(0)))

	workers := 16
	transfersPerWorker := 20

	var wg sync.WaitGroup
	errs := make(chan error, workers*transfersPerWorker)
	for i := 0; i < workers; i++ {
		payer := env.fundedKeypair(t)

		txs := make([]solana.Transaction, transfersPerWorker)
		for j := range txs {
			tx := solana.NewTransaction(testutil.PublicKey(payer), system.Transfer(testutil.PublicKey(payer), dest, 1000))
			tx.SetBlockhash(solana.Blockhash{byte(j)})
			require.NoError(t, tx.Sign(payer))
			txs[j] = tx
		}

		wg.Add(1)
		go func() {
			defer wg.Done()

			for _, tx := range txs {
				if err := env.bank.Execute(context.Background(), tx); err != nil {
					errs <- errors.Wrap(err, "execute")
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.EqualValues(t, env.rent.MinimumBalance(0)+uint64(workers*transfersPerWorker*1000), env.bank.GetBalance(dest))
}

func TestExecute_PayerRateLimit(t *testing.T) {
	env := setupWithOverrides(t, &testOverrides{
		rent:                          system.DefaultRent(),
		lockStripes:                   16,
		verifySignatures:              true,
		maxPayerTransactionsPerSecond: 0.5,
	})

	payer := env.fundedKeypair(t)
	other := env.fundedKeypair(t)
	dest := testutil.GenerateSolanaKeys(t, 1)[0]

	tx := signedTransaction(t, payer, []solana.Instruction{system.Transfer(testutil.PublicKey(payer), dest, 1_000_000_000)})
	require.NoError(t, env.bank.Execute(context.Background(), tx))

	tx = signedTransaction(t, payer, []solana.Instruction{system.Transfer(testutil.PublicKey(payer), dest, 2_000_000_000)})
	err := env.bank.Execute(context.Background(), tx)
	assert.ErrorIs(t, err, solana.NewTransactionError(solana.TransactionErrorWouldExceedMaxAccountCostLimit))
	assert.EqualValues(t, 1_000_000_000, env.bank.GetBalance(dest))

	// Limits apply per fee payer
	tx = signedTransaction(t, other, []solana.Instruction{system.Transfer(testutil.PublicKey(other), dest, 2_000_000_000)})
	require.NoError(t, env.bank.Execute(context.Background(), tx))
	assert.EqualValues(t, 3_000_000_000, env.bank.GetBalance(dest))
}
