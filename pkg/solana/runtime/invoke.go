package runtime

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-treasury/pkg/solana"
	"github.com/code-payments/code-treasury/pkg/solana/system"
)

// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/program-runtime/src/compute_budget.rs#L112
const maxInvokeDepth = 4

// frame is a single program invocation, either a transaction instruction or
// a cross-program invocation made by another frame.
type frame struct {
	ctx   context.Context
	bank  *Bank
	log   *logrus.Entry
	rent  system.Rent
	depth int

	program  ed25519.PublicKey
	accounts []*AccountInfo

	// pre holds the account states the frame's changes are checked against.
	// It's refreshed after every successful cross-program invocation.
	pre map[string]*Account
}

func newFrame(ctx context.Context, bank *Bank, log *logrus.Entry, rent system.Rent, depth int, program ed25519.PublicKey, accounts []*AccountInfo) *frame {
	f := &frame{
		ctx:      ctx,
		bank:     bank,
		log:      log.WithField("program", base58.Encode(program)),
		rent:     rent,
		depth:    depth,
		program:  program,
		accounts: accounts,
	}
	f.snapshot()
	return f
}

// Context implements InvokeContext.Context
func (f *frame) Context() context.Context {
	return f.ctx
}

// Log implements InvokeContext.Log
func (f *frame) Log() *logrus.Entry {
	return f.log
}

// Rent implements InvokeContext.Rent
func (f *frame) Rent() system.Rent {
	return f.rent
}

// Invoke implements InvokeContext.Invoke
func (f *frame) Invoke(instruction solana.Instruction, signers ...*solana.ProgramSigner) error {
	if f.depth >= maxInvokeDepth {
		return solana.ErrCallDepth
	}

	program, ok := f.bank.getProgram(instruction.Program)
	if !ok {
		return solana.ErrUnsupportedProgramID
	}
	if f.find(instruction.Program) == nil {
		return solana.ErrMissingAccount
	}

	// Only addresses whose seeds re-derive under the calling program may
	// sign on its behalf.
	var pdaSigners []ed25519.PublicKey
	for _, signer := range signers {
		if err := signer.Verify(f.program); err != nil {
			f.log.WithError(err).Warn("rejecting program signer")
			return solana.ErrInvalidSeeds
		}
		pdaSigners = append(pdaSigners, signer.Address())
	}

	calleeAccounts := make([]*AccountInfo, len(instruction.Accounts))
	for i, meta := range instruction.Accounts {
		caller := f.find(meta.PublicKey)
		if caller == nil {
			return solana.ErrMissingAccount
		}

		if meta.IsWritable && !f.isWritable(meta.PublicKey) {
			f.log.WithField("account", base58.Encode(meta.PublicKey)).Debug("writable privilege escalated")
			return solana.ErrPrivilegeEscalation
		}
		if meta.IsSigner && !f.isSigner(meta.PublicKey) && !containsKey(pdaSigners, meta.PublicKey) {
			f.log.WithField("account", base58.Encode(meta.PublicKey)).Debug("signer privilege escalated")
			return solana.ErrPrivilegeEscalation
		}

		calleeAccounts[i] = &AccountInfo{
			Key:        caller.Key,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
			Account:    caller.Account,
		}
	}

	// The caller's own changes are checked before control is handed over
	if err := f.verify(); err != nil {
		return err
	}

	callee := newFrame(f.ctx, f.bank, f.log, f.rent, f.depth+1, instruction.Program, calleeAccounts)
	if err := program.Process(callee, instruction.Program, calleeAccounts, instruction.Data); err != nil {
		return err
	}
	if err := callee.verify(); err != nil {
		return err
	}

	f.snapshot()
	return nil
}

func (f *frame) snapshot() {
	f.pre = make(map[string]*Account, len(f.accounts))
	for _, info := range f.accounts {
		f.pre[string(info.Key)] = info.Account.Clone()
	}
}

func (f *frame) find(key ed25519.PublicKey) *AccountInfo {
	for _, info := range f.accounts {
		if bytes.Equal(info.Key, key) {
			return info
		}
	}
	return nil
}

func (f *frame) isWritable(key ed25519.PublicKey) bool {
	for _, info := range f.accounts {
		if info.IsWritable && bytes.Equal(info.Key, key) {
			return true
		}
	}
	return false
}

func (f *frame) isSigner(key ed25519.PublicKey) bool {
	for _, info := range f.accounts {
		if info.IsSigner && bytes.Equal(info.Key, key) {
			return true
		}
	}
	return false
}

// verify checks the frame's account changes against the privileges of the
// running program.
//
// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/transaction_context.rs#L776
func (f *frame) verify() error {
	var preTotal, postTotal uint64
	seen := make(map[string]struct{}, len(f.accounts))

	for _, info := range f.accounts {
		key := string(info.Key)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		pre := f.pre[key]
		post := info.Account
		writable := f.isWritable(info.Key)
		isOwner := pre.IsOwnedBy(f.program)

		preTotal += pre.Lamports
		postTotal += post.Lamports

		if pre.equals(post) {
			continue
		}

		if pre.Executable || post.Executable != pre.Executable {
			return solana.ErrModifiedProgramID
		}

		if !bytes.Equal(pre.Owner, post.Owner) {
			if !writable || !isOwner {
				return solana.ErrModifiedProgramID
			}
		}

		if post.Lamports != pre.Lamports {
			if !writable {
				return solana.ErrReadonlyLamportChange
			}
			if post.Lamports < pre.Lamports && !isOwner {
				return solana.ErrExternalLamportSpend
			}
		}

		if !bytes.Equal(pre.Data, post.Data) {
			if !writable {
				return solana.ErrReadonlyDataModified
			}
			if !isOwner {
				return solana.ErrExternalDataModified
			}
		}
	}

	if preTotal != postTotal {
		return solana.ErrUnbalancedInstruction
	}
	return nil
}

func containsKey(keys []ed25519.PublicKey, key ed25519.PublicKey) bool {
	for _, k := range keys {
		if bytes.Equal(k, key) {
			return true
		}
	}
	return false
}
