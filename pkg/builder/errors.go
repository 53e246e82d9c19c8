package builder

import "errors"

// Configuration errors, surfaced with no retries at the API boundary.
var (
	ErrNonceOutOfRange          = errors.New("builder: nonce out of range")
	ErrValidUntilBlockOutOfRange = errors.New("builder: valid_until_block out of range")
	ErrConflictingFeeHandlers   = errors.New("builder: configure either a fee-insufficient consumer or an error, never both")
	ErrDuplicateSigner          = errors.New("builder: duplicate signer concerning the same account")
	ErrTooManyAttributes        = errors.New("builder: signers and attributes exceed the 16-item budget")
	ErrEmptyScript              = errors.New("builder: script is empty")
	ErrFirstSignerNotFound      = errors.New("builder: first-signer override account not present among signers")
	ErrFirstSignerFeeOnly       = errors.New("builder: first-signer override account has the fee-only (None) scope")
	ErrNoSigners                = errors.New("builder: at least one signer is required")
	ErrInsufficientFunds        = errors.New("builder: sender balance is insufficient for system_fee + network_fee")
	ErrNoPrivateKeyForSigner    = errors.New("builder: no private key available to sign for this account")
	ErrMultiSigAutoSignNotSupported = errors.New("builder: multi-signature accounts must be witnessed explicitly")
	ErrNotBroadcast             = errors.New("builder: transaction has not been sent yet")
)

// FaultError reports a VM FAULT state returned while estimating fees
// during build.
type FaultError struct {
	Exception string
}

func (e *FaultError) Error() string {
	return "builder: script invocation faulted: " + e.Exception
}

// RelayError reports a node's rejection of a broadcast transaction.
type RelayError struct {
	Message string
}

func (e *RelayError) Error() string {
	return "builder: transaction rejected by node: " + e.Message
}
