package casino

import "github.com/pkg/errors"

// Signature binding failures.
var (
	ErrMalformedHeader        = errors.New("ed25519 verify record missing or malformed")
	ErrWrongVerifierProgram   = errors.New("verify record not issued by the ed25519 program")
	ErrNoSignaturePresent     = errors.New("verify record carries no signature")
	ErrMissingPublicKey       = errors.New("verify record has no public key")
	ErrSignerMismatch         = errors.New("signature not made by the house")
	ErrMissingSignatureBytes  = errors.New("verify record has no signature bytes")
	ErrSignatureValueMismatch = errors.New("signature does not match the verified one")
	ErrMissingMessage         = errors.New("verify record has no message")
	ErrMessageMismatch        = errors.New("signed message is not this bet")
)

var (
	ErrOverflow       = errors.New("payout overflow")
	ErrTransferFailed = errors.New("payout transfer failed")

	ErrInvalidBet    = errors.New("invalid bet amount")
	ErrInvalidRoll   = errors.New("roll must be between 1 and 99")
	ErrMaxBet        = errors.New("bet exceeds max bet")
	ErrSeedInUse     = errors.New("bet seed already used")
	ErrBetNotFound   = errors.New("pending bet not found")
	ErrBetNotExpired = errors.New("bet has not expired")
	ErrVaultNotFound = errors.New("vault not opened")
)

// IsBindingError reports whether err came from signature binding.
func IsBindingError(err error) bool {
	for _, target := range []error{
		ErrMalformedHeader, ErrWrongVerifierProgram, ErrNoSignaturePresent,
		ErrMissingPublicKey, ErrSignerMismatch, ErrMissingSignatureBytes,
		ErrSignatureValueMismatch, ErrMissingMessage, ErrMessageMismatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
