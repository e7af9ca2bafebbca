package sigverify

import (
	"encoding/binary"
	"errors"

	"dice-settle/internal/pubkey"
)

const (
	SignatureSize = 64

	headerSize  = 2
	offsetsSize = 14

	// CurrentInstruction marks an offset that points into the record's own data.
	CurrentInstruction = 0xFFFF
)

// ProgramID identifies records produced by the Ed25519 verification facility.
var ProgramID = pubkey.MustParse("Ed25519SigVerify111111111111111111111111111")

var (
	ErrMalformed        = errors.New("malformed ed25519 record")
	ErrInvalidSignature = errors.New("ed25519 signature verification failed")
	ErrIncompleteEntry  = errors.New("ed25519 entry is missing a field")
)

// Record is one instruction of a settlement request.
type Record struct {
	Program pubkey.Key
	Data    []byte
}

// Entry is one unpacked signature triple. Fields that live in another
// record are left nil.
type Entry struct {
	PublicKey *pubkey.Key
	Signature *[SignatureSize]byte
	Message   []byte
}

type offsets struct {
	signatureOffset uint16
	signatureIndex  uint16
	publicKeyOffset uint16
	publicKeyIndex  uint16
	messageOffset   uint16
	messageSize     uint16
	messageIndex    uint16
}

func readOffsets(data []byte) ([]offsets, error) {
	if len(data) < headerSize {
		return nil, ErrMalformed
	}
	count := int(data[0])
	if len(data) < headerSize+count*offsetsSize {
		return nil, ErrMalformed
	}

	out := make([]offsets, count)
	for i := range out {
		b := data[headerSize+i*offsetsSize:]
		out[i] = offsets{
			signatureOffset: binary.LittleEndian.Uint16(b[0:]),
			signatureIndex:  binary.LittleEndian.Uint16(b[2:]),
			publicKeyOffset: binary.LittleEndian.Uint16(b[4:]),
			publicKeyIndex:  binary.LittleEndian.Uint16(b[6:]),
			messageOffset:   binary.LittleEndian.Uint16(b[8:]),
			messageSize:     binary.LittleEndian.Uint16(b[10:]),
			messageIndex:    binary.LittleEndian.Uint16(b[12:]),
		}
	}
	return out, nil
}

func slice(data []byte, off, size uint16) ([]byte, error) {
	end := int(off) + int(size)
	if end > len(data) {
		return nil, ErrMalformed
	}
	return data[off:end], nil
}

// Unpack decodes the signature list of a record. Only fields stored in the
// record itself are extracted.
func Unpack(data []byte) ([]Entry, error) {
	offs, err := readOffsets(data)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(offs))
	for i, o := range offs {
		var e Entry

		if o.publicKeyIndex == CurrentInstruction {
			b, err := slice(data, o.publicKeyOffset, pubkey.Size)
			if err != nil {
				return nil, err
			}
			k, _ := pubkey.FromBytes(b)
			e.PublicKey = &k
		}

		if o.signatureIndex == CurrentInstruction {
			b, err := slice(data, o.signatureOffset, SignatureSize)
			if err != nil {
				return nil, err
			}
			var sig [SignatureSize]byte
			copy(sig[:], b)
			e.Signature = &sig
		}

		if o.messageIndex == CurrentInstruction {
			b, err := slice(data, o.messageOffset, o.messageSize)
			if err != nil {
				return nil, err
			}
			e.Message = append([]byte{}, b...)
		}

		entries[i] = e
	}
	return entries, nil
}

// Pack encodes complete entries into a self-contained record payload.
func Pack(entries []Entry) ([]byte, error) {
	if len(entries) > 0xFF {
		return nil, ErrMalformed
	}

	size := headerSize + len(entries)*offsetsSize
	for _, e := range entries {
		if e.PublicKey == nil || e.Signature == nil || e.Message == nil {
			return nil, ErrIncompleteEntry
		}
		size += pubkey.Size + SignatureSize + len(e.Message)
	}
	if size > 0xFFFF {
		return nil, ErrMalformed
	}

	data := make([]byte, headerSize+len(entries)*offsetsSize, size)
	data[0] = byte(len(entries))

	for i, e := range entries {
		pkOff := len(data)
		data = append(data, e.PublicKey[:]...)
		sigOff := len(data)
		data = append(data, e.Signature[:]...)
		msgOff := len(data)
		data = append(data, e.Message...)

		b := data[headerSize+i*offsetsSize:]
		binary.LittleEndian.PutUint16(b[0:], uint16(sigOff))
		binary.LittleEndian.PutUint16(b[2:], CurrentInstruction)
		binary.LittleEndian.PutUint16(b[4:], uint16(pkOff))
		binary.LittleEndian.PutUint16(b[6:], CurrentInstruction)
		binary.LittleEndian.PutUint16(b[8:], uint16(msgOff))
		binary.LittleEndian.PutUint16(b[10:], uint16(len(e.Message)))
		binary.LittleEndian.PutUint16(b[12:], CurrentInstruction)
	}
	return data, nil
}

// NewRecord builds a single-signature verification record.
func NewRecord(pub pubkey.Key, sig []byte, msg []byte) (Record, error) {
	if len(sig) != SignatureSize {
		return Record{}, ErrMalformed
	}
	var s [SignatureSize]byte
	copy(s[:], sig)

	data, err := Pack([]Entry{{PublicKey: &pub, Signature: &s, Message: append([]byte{}, msg...)}})
	if err != nil {
		return Record{}, err
	}
	return Record{Program: ProgramID, Data: data}, nil
}
