package sigverify

import (
	"crypto/ed25519"

	"dice-settle/internal/pubkey"
)

// Verifier checks a detached signature.
type Verifier interface {
	Verify(message, signature, publicKey []byte) bool
}

type Ed25519Verifier struct{}

func (Ed25519Verifier) Verify(message, signature, publicKey []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, signature)
}

// Facility executes verification records the way the host runtime would
// before any settlement logic sees them. Offsets may reference data in
// other records of the same request.
type Facility struct {
	verifier Verifier
}

func NewFacility(v Verifier) *Facility {
	if v == nil {
		v = Ed25519Verifier{}
	}
	return &Facility{verifier: v}
}

func (f *Facility) Execute(records []Record) error {
	for i, rec := range records {
		if rec.Program != ProgramID {
			continue
		}
		if err := f.executeOne(records, i); err != nil {
			return err
		}
	}
	return nil
}

func (f *Facility) executeOne(records []Record, self int) error {
	offs, err := readOffsets(records[self].Data)
	if err != nil {
		return err
	}

	resolve := func(index, off, size uint16) ([]byte, error) {
		data := records[self].Data
		if index != CurrentInstruction {
			if int(index) >= len(records) {
				return nil, ErrMalformed
			}
			data = records[index].Data
		}
		return slice(data, off, size)
	}

	for _, o := range offs {
		pub, err := resolve(o.publicKeyIndex, o.publicKeyOffset, pubkey.Size)
		if err != nil {
			return err
		}
		sig, err := resolve(o.signatureIndex, o.signatureOffset, SignatureSize)
		if err != nil {
			return err
		}
		msg, err := resolve(o.messageIndex, o.messageOffset, o.messageSize)
		if err != nil {
			return err
		}
		if !f.verifier.Verify(msg, sig, pub) {
			return ErrInvalidSignature
		}
	}
	return nil
}
