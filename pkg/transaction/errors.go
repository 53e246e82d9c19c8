package transaction

import "errors"

// Wire-level and construction errors for the Transaction envelope.
var (
	ErrNoSigners             = errors.New("transaction: at least one signer is required")
	ErrTooManySigners        = errors.New("transaction: more than 16 signers")
	ErrDuplicateSignerAccount = errors.New("transaction: two signers share the same account")
	ErrTooManyAttributes     = errors.New("transaction: attributes exceed 16 minus signer count")
	ErrDuplicateHighPriority = errors.New("transaction: HighPriority attribute present more than once")
	ErrEmptyScript           = errors.New("transaction: script must not be empty")
	ErrScriptTooLarge        = errors.New("transaction: script exceeds maximum size")
	ErrWitnessCountMismatch  = errors.New("transaction: witness count does not match signer count")
)
