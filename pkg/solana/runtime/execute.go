package runtime

import (
	"context"
	"crypto/ed25519"

	"github.com/google/uuid"
	"github.com/mr-tron/base58/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-treasury/pkg/metrics"
	"github.com/code-payments/code-treasury/pkg/solana"
)

const (
	metricsComponentName = "Runtime/Transactions"

	executedTransactionsMetricName = "Runtime/Transactions/Executed"
	failedTransactionsMetricName   = "Runtime/Transactions/Failed"
	failedTransactionEventName     = "RuntimeTransactionFailed"
)

// Execute runs every instruction in tx against the bank. Either all of the
// transaction's account changes are committed, or none are.
//
// Failures before any instruction runs are returned as *solana.TransactionError.
// Instruction failures are returned as solana.InstructionError, which unwraps
// to the error the program returned.
func (b *Bank) Execute(ctx context.Context, tx solana.Transaction) (err error) {
	executionID := uuid.New()

	span := metrics.StartSpan(ctx, metricsComponentName, "Execute")
	span.SetAttributes(map[string]interface{}{
		"execution_id": executionID.String(),
		"instructions": len(tx.Message.Instructions),
	})

	log := b.log.WithFields(logrus.Fields{
		"method":       "Execute",
		"execution_id": executionID.String(),
	})
	if len(tx.Signatures) > 0 {
		log = log.WithField("signature", base58.Encode(tx.Signature()))
	}

	defer func() {
		elapsed := span.Finish()
		log = log.WithField("elapsed", elapsed)

		if err == nil {
			metrics.RecordCount(ctx, executedTransactionsMetricName, 1)
			log.Debug("transaction executed")
			return
		}

		span.Fail(err)
		metrics.RecordCount(ctx, failedTransactionsMetricName, 1)
		metrics.RecordEvent(ctx, failedTransactionEventName, map[string]interface{}{
			"execution_id": executionID.String(),
			"error":        err.Error(),
		})
		log.WithError(err).Info("transaction failed")
	}()

	if err := b.checkTransaction(ctx, tx); err != nil {
		return err
	}

	m := tx.Message

	allowed, err := b.payerLimiter.Allow(string(m.Accounts[0]))
	if err != nil {
		return err
	}
	if !allowed {
		log.Debug("fee payer rate limited")
		return solana.NewTransactionError(solana.TransactionErrorWouldExceedMaxAccountCostLimit)
	}

	writable := make([][]byte, 0, len(m.Accounts))
	readonly := make([][]byte, 0, len(m.Accounts))
	for i, key := range m.Accounts {
		if m.IsWritable(i) {
			writable = append(writable, key)
		} else {
			readonly = append(readonly, key)
		}
	}

	release := b.accountLocks.Acquire(writable, readonly)
	defer release()

	preExisting, workingSet := b.load(m.Accounts)

	rent := b.Rent(ctx)
	for i, instruction := range m.Instructions {
		programID := m.Accounts[instruction.ProgramIndex]
		program, _ := b.getProgram(programID)

		accounts := make([]*AccountInfo, len(instruction.Accounts))
		for j, index := range instruction.Accounts {
			accounts[j] = &AccountInfo{
				Key:        m.Accounts[index],
				IsSigner:   m.IsSigner(int(index)),
				IsWritable: m.IsWritable(int(index)),
				Account:    workingSet[index],
			}
		}

		f := newFrame(ctx, b, log.WithField("instruction", i), rent, 1, programID, accounts)
		if err := program.Process(f, programID, accounts, instruction.Data); err != nil {
			return solana.InstructionError{Index: i, Err: err}
		}
		if err := f.verify(); err != nil {
			return solana.InstructionError{Index: i, Err: err}
		}
	}

	for i, account := range workingSet {
		if !m.IsWritable(i) || account.Lamports == 0 {
			continue
		}

		// Accounts may stay below the rent exempt minimum only if they were
		// already there.
		wasExempt := preExisting[i] == nil || rent.IsExempt(preExisting[i].Lamports, uint64(len(preExisting[i].Data)))
		if wasExempt && !rent.IsExempt(account.Lamports, uint64(len(account.Data))) {
			log.WithField("account", base58.Encode(m.Accounts[i])).Debug("account left below rent exempt minimum")
			return solana.NewTransactionError(solana.TransactionErrorInsufficientFundsForRent)
		}
	}

	b.commit(m, workingSet)
	return nil
}

// checkTransaction validates tx before any account is loaded
func (b *Bank) checkTransaction(ctx context.Context, tx solana.Transaction) error {
	m := tx.Message

	if err := m.Sanitize(); err != nil {
		return err
	}

	if b.conf.verifySignatures.Get(ctx) {
		if err := tx.VerifySignatures(); err != nil {
			b.log.WithError(err).Debug("signature verification failed")
			return solana.NewTransactionError(solana.TransactionErrorSignatureFailure)
		}
	} else if len(tx.Signatures) != int(m.Header.NumSignatures) {
		return solana.NewTransactionError(solana.TransactionErrorSignatureFailure)
	}

	for _, instruction := range m.Instructions {
		if _, ok := b.getProgram(m.Accounts[instruction.ProgramIndex]); !ok {
			return solana.NewTransactionError(solana.TransactionErrorInvalidProgramForExecution)
		}
	}

	for i, key := range m.Accounts {
		if !m.IsWritable(i) {
			continue
		}
		if _, ok := b.getProgram(key); ok {
			return solana.NewTransactionError(solana.TransactionErrorInvalidWritableAccount)
		}
	}

	return nil
}

// load copies the transaction's accounts into a working set. Accounts that
// don't exist yet are loaded as empty system accounts. The stored accounts
// are also returned, with nil entries for those that don't exist.
func (b *Bank) load(keys []ed25519.PublicKey) (stored []*Account, workingSet []*Account) {
	b.stateMu.RLock()
	defer b.stateMu.RUnlock()

	stored = make([]*Account, len(keys))
	workingSet = make([]*Account, len(keys))
	for i, key := range keys {
		if account, ok := b.accounts[string(key)]; ok {
			stored[i] = account.Clone()
			workingSet[i] = account.Clone()
		} else {
			workingSet[i] = NewSystemAccount(0)
		}
	}
	return stored, workingSet
}

// commit stores the writable accounts of the working set, purging those
// left without lamports.
func (b *Bank) commit(m solana.Message, workingSet []*Account) {
	b.stateMu.Lock()
	defer b.stateMu.Unlock()

	for i, account := range workingSet {
		if !m.IsWritable(i) {
			continue
		}

		key := string(m.Accounts[i])
		if account.Lamports == 0 {
			delete(b.accounts, key)
			continue
		}
		b.accounts[key] = account
	}
}
