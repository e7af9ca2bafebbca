package casino

import (
	"crypto/subtle"

	"dice-settle/internal/pubkey"
	"dice-settle/internal/sigverify"
)

// VerifyIndex is the position of the verify record within a request.
const VerifyIndex = 0

// Binder checks that the verify record at VerifyIndex covers exactly this
// signature, this signer and this bet. Cryptographic validity is the
// facility's job; the binder only matches fields.
type Binder struct {
	program pubkey.Key
}

func NewBinder() *Binder {
	return &Binder{program: sigverify.ProgramID}
}

func (b *Binder) Verify(records []sigverify.Record, sig []byte, bet *Bet, house pubkey.Key) error {
	if len(records) <= VerifyIndex {
		return ErrMalformedHeader
	}
	rec := records[VerifyIndex]

	if rec.Program != b.program {
		return ErrWrongVerifierProgram
	}

	entries, err := sigverify.Unpack(rec.Data)
	if err != nil {
		return ErrMalformedHeader
	}
	if len(entries) == 0 {
		return ErrNoSignaturePresent
	}
	entry := entries[0]

	if entry.PublicKey == nil {
		return ErrMissingPublicKey
	}
	if *entry.PublicKey != house {
		return ErrSignerMismatch
	}

	if entry.Signature == nil {
		return ErrMissingSignatureBytes
	}
	if subtle.ConstantTimeCompare(entry.Signature[:], sig) != 1 {
		return ErrSignatureValueMismatch
	}

	if entry.Message == nil {
		return ErrMissingMessage
	}
	if subtle.ConstantTimeCompare(entry.Message, bet.Bytes()) != 1 {
		return ErrMessageMismatch
	}

	return nil
}
