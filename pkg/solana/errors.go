package solana

import (
	"fmt"

	"github.com/pkg/errors"
)

// TransactionErrorKey is the string key returned in a transaction error.
//
// Source: https://github.com/solana-labs/solana/blob/fc2bf2d3b669d1c6655ae48b0a05f470938f3676/sdk/src/transaction/mod.rs#L37
type TransactionErrorKey string

const (
	TransactionErrorAccountInUse               TransactionErrorKey = "AccountInUse"               // An account is already being processed in another transaction in a way that does not support parallelism
	TransactionErrorAccountLoadedTwice         TransactionErrorKey = "AccountLoadedTwice"         // A `Pubkey` appears twice in the transaction's `account_keys`
	TransactionErrorProgramAccountNotFound     TransactionErrorKey = "ProgramAccountNotFound"     // Attempt to load a program that does not exist
	TransactionErrorInstructionError           TransactionErrorKey = "InstructionError"           // An error occurred while processing an instruction
	TransactionErrorMissingSignatureForFee     TransactionErrorKey = "MissingSignatureForFee"     // Transaction has no signature present
	TransactionErrorInvalidAccountIndex        TransactionErrorKey = "InvalidAccountIndex"        // Transaction contains an invalid account reference
	TransactionErrorSignatureFailure           TransactionErrorKey = "SignatureFailure"           // Transaction did not pass signature verification
	TransactionErrorSanitizeFailure            TransactionErrorKey = "SanitizeFailure"            // Transaction failed to sanitize accounts offsets correctly
	TransactionErrorInvalidWritableAccount     TransactionErrorKey = "InvalidWritableAccount"     // Transaction loads a writable account that cannot be written
	TransactionErrorInvalidProgramForExecution TransactionErrorKey = "InvalidProgramForExecution" // This program may not be used for executing instructions
	TransactionErrorInsufficientFundsForRent   TransactionErrorKey = "InsufficientFundsForRent"   // Transaction leaves an account with a lower balance than rent-exempt minimum

	TransactionErrorWouldExceedMaxAccountCostLimit TransactionErrorKey = "WouldExceedMaxAccountCostLimit" // Transaction would exceed the fee payer's limit
)

// InstructionErrorKey is the string keys returned in an instruction error.
//
// Source: https://github.com/solana-labs/solana/blob/4e2754341514cd181ae3f373cc2548bd22e918b8/sdk/program/src/instruction.rs#L23
type InstructionErrorKey string

const (
	InstructionErrorGenericError              InstructionErrorKey = "GenericError"
	InstructionErrorInvalidArgument           InstructionErrorKey = "InvalidArgument"
	InstructionErrorInvalidInstructionData    InstructionErrorKey = "InvalidInstructionData"
	InstructionErrorInvalidAccountData        InstructionErrorKey = "InvalidAccountData"
	InstructionErrorAccountDataTooSmall       InstructionErrorKey = "AccountDataTooSmall"
	InstructionErrorInsufficientFunds         InstructionErrorKey = "InsufficientFunds"
	InstructionErrorIncorrectProgramID        InstructionErrorKey = "IncorrectProgramId"
	InstructionErrorMissingRequiredSignature  InstructionErrorKey = "MissingRequiredSignature"
	InstructionErrorAccountAlreadyInitialized InstructionErrorKey = "AccountAlreadyInitialized"
	InstructionErrorUninitializedAccount      InstructionErrorKey = "UninitializedAccount"
	InstructionErrorUnbalancedInstruction     InstructionErrorKey = "UnbalancedInstruction"
	InstructionErrorModifiedProgramID         InstructionErrorKey = "ModifiedProgramId"
	InstructionErrorExternalLamportSpend      InstructionErrorKey = "ExternalAccountLamportSpend"
	InstructionErrorExternalDataModified      InstructionErrorKey = "ExternalAccountDataModified"
	InstructionErrorReadonlyLamportChange     InstructionErrorKey = "ReadonlyLamportChange"
	InstructionErrorReadonlyDataModified      InstructionErrorKey = "ReadonlyDataModified"
	InstructionErrorNotEnoughAccountKeys      InstructionErrorKey = "NotEnoughAccountKeys"
	InstructionErrorAccountDataSizeChanged    InstructionErrorKey = "AccountDataSizeChanged"
	InstructionErrorMissingAccount            InstructionErrorKey = "MissingAccount"
	InstructionErrorPrivilegeEscalation       InstructionErrorKey = "PrivilegeEscalation"
	InstructionErrorUnsupportedProgramID      InstructionErrorKey = "UnsupportedProgramId"
	InstructionErrorMaxSeedLengthExceeded     InstructionErrorKey = "MaxSeedLengthExceeded"
	InstructionErrorInvalidSeeds              InstructionErrorKey = "InvalidSeeds"
	InstructionErrorCallDepth                 InstructionErrorKey = "CallDepth"
	InstructionErrorIllegalOwner              InstructionErrorKey = "IllegalOwner"
	InstructionErrorCustom                    InstructionErrorKey = "Custom"
)

// ProgramError is a builtin error a program returns from instruction
// processing. Its value is the ledger's instruction error key.
type ProgramError InstructionErrorKey

func (e ProgramError) Error() string {
	return string(e)
}

// Key returns the instruction error key
func (e ProgramError) Key() InstructionErrorKey {
	return InstructionErrorKey(e)
}

var (
	ErrInvalidArgument           = ProgramError(InstructionErrorInvalidArgument)
	ErrInvalidInstructionData    = ProgramError(InstructionErrorInvalidInstructionData)
	ErrInvalidAccountData        = ProgramError(InstructionErrorInvalidAccountData)
	ErrAccountDataTooSmall       = ProgramError(InstructionErrorAccountDataTooSmall)
	ErrInsufficientFunds         = ProgramError(InstructionErrorInsufficientFunds)
	ErrIncorrectProgramID        = ProgramError(InstructionErrorIncorrectProgramID)
	ErrMissingRequiredSignature  = ProgramError(InstructionErrorMissingRequiredSignature)
	ErrAccountAlreadyInitialized = ProgramError(InstructionErrorAccountAlreadyInitialized)
	ErrUninitializedAccount      = ProgramError(InstructionErrorUninitializedAccount)
	ErrUnbalancedInstruction     = ProgramError(InstructionErrorUnbalancedInstruction)
	ErrModifiedProgramID         = ProgramError(InstructionErrorModifiedProgramID)
	ErrExternalLamportSpend      = ProgramError(InstructionErrorExternalLamportSpend)
	ErrExternalDataModified      = ProgramError(InstructionErrorExternalDataModified)
	ErrReadonlyLamportChange     = ProgramError(InstructionErrorReadonlyLamportChange)
	ErrReadonlyDataModified      = ProgramError(InstructionErrorReadonlyDataModified)
	ErrNotEnoughAccountKeys      = ProgramError(InstructionErrorNotEnoughAccountKeys)
	ErrAccountDataSizeChanged    = ProgramError(InstructionErrorAccountDataSizeChanged)
	ErrMissingAccount            = ProgramError(InstructionErrorMissingAccount)
	ErrPrivilegeEscalation       = ProgramError(InstructionErrorPrivilegeEscalation)
	ErrUnsupportedProgramID      = ProgramError(InstructionErrorUnsupportedProgramID)
	ErrInvalidSeeds              = ProgramError(InstructionErrorInvalidSeeds)
	ErrCallDepth                 = ProgramError(InstructionErrorCallDepth)
	ErrIllegalOwner              = ProgramError(InstructionErrorIllegalOwner)
)

// CustomError is the numerical error returned by a non-system program.
type CustomError int

func (c CustomError) Error() string {
	return fmt.Sprintf("custom program error: %x", int(c))
}

// InstructionError indicates an instruction returned an error in a transaction.
type InstructionError struct {
	Index int
	Err   error
}

func (i InstructionError) Error() string {
	return fmt.Sprintf("Error processing Instruction %d: %v", i.Index, i.Err)
}

// Unwrap exposes the program error for errors.Is and errors.As
func (i InstructionError) Unwrap() error {
	return i.Err
}

func (i InstructionError) ErrorKey() InstructionErrorKey {
	if i.Err == nil {
		return ""
	}

	if i.CustomError() != nil {
		return InstructionErrorCustom
	}

	var pe ProgramError
	if errors.As(i.Err, &pe) {
		return pe.Key()
	}

	return InstructionErrorKey(i.Err.Error())
}

func (i InstructionError) JSONString() string {
	if e := i.CustomError(); e != nil {
		return fmt.Sprintf(`[%d, {"%s": %d}]`, i.Index, InstructionErrorCustom, *e)
	}

	return fmt.Sprintf(`[%d, "%s"]`, i.Index, i.ErrorKey())
}

func (i InstructionError) CustomError() *CustomError {
	var ce CustomError
	if errors.As(i.Err, &ce) {
		return &ce
	}

	return nil
}

// TransactionError is a failure that rejects a transaction before any of its
// instructions run.
type TransactionError struct {
	Key TransactionErrorKey
}

func NewTransactionError(key TransactionErrorKey) *TransactionError {
	return &TransactionError{Key: key}
}

func (t *TransactionError) Error() string {
	return string(t.Key)
}

// Is matches transaction errors by key
func (t *TransactionError) Is(target error) bool {
	other, ok := target.(*TransactionError)
	return ok && other.Key == t.Key
}
