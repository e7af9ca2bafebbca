package sigverify

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dice-settle/internal/pubkey"
)

func newSigner(t *testing.T) (pubkey.Key, ed25519.PrivateKey) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	k, err := pubkey.FromBytes(pub)
	require.NoError(t, err)
	return k, priv
}

func TestNewRecordUnpack(t *testing.T) {
	pub, priv := newSigner(t)
	msg := []byte("bet message")
	sig := ed25519.Sign(priv, msg)

	rec, err := NewRecord(pub, sig, msg)
	require.NoError(t, err)
	assert.Equal(t, ProgramID, rec.Program)

	entries, err := Unpack(rec.Data)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	require.NotNil(t, e.PublicKey)
	require.NotNil(t, e.Signature)
	assert.Equal(t, pub, *e.PublicKey)
	assert.Equal(t, sig, e.Signature[:])
	assert.Equal(t, msg, e.Message)
}

func TestUnpackMalformed(t *testing.T) {
	_, err := Unpack(nil)
	assert.ErrorIs(t, err, ErrMalformed)

	// header claims one entry but carries no offsets
	_, err = Unpack([]byte{1, 0})
	assert.ErrorIs(t, err, ErrMalformed)

	// offsets point past the end of the data
	data := make([]byte, headerSize+offsetsSize)
	data[0] = 1
	b := data[headerSize:]
	binary.LittleEndian.PutUint16(b[0:], 100)
	binary.LittleEndian.PutUint16(b[2:], CurrentInstruction)
	_, err = Unpack(data)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestUnpackEmptyList(t *testing.T) {
	entries, err := Unpack([]byte{0, 0})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// crossRecord builds a verify record whose public key lives in records[1].
func crossRecord(pub pubkey.Key, sig, msg []byte) []Record {
	data := make([]byte, headerSize+offsetsSize)
	data[0] = 1
	sigOff := len(data)
	data = append(data, sig...)
	msgOff := len(data)
	data = append(data, msg...)

	b := data[headerSize:]
	binary.LittleEndian.PutUint16(b[0:], uint16(sigOff))
	binary.LittleEndian.PutUint16(b[2:], CurrentInstruction)
	binary.LittleEndian.PutUint16(b[4:], 0)
	binary.LittleEndian.PutUint16(b[6:], 1)
	binary.LittleEndian.PutUint16(b[8:], uint16(msgOff))
	binary.LittleEndian.PutUint16(b[10:], uint16(len(msg)))
	binary.LittleEndian.PutUint16(b[12:], CurrentInstruction)

	return []Record{
		{Program: ProgramID, Data: data},
		{Program: pubkey.Key{7}, Data: pub.Bytes()},
	}
}

func TestUnpackLeavesForeignFieldsAbsent(t *testing.T) {
	pub, priv := newSigner(t)
	msg := []byte("m")
	records := crossRecord(pub, ed25519.Sign(priv, msg), msg)

	entries, err := Unpack(records[0].Data)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].PublicKey)
	assert.NotNil(t, entries[0].Signature)
	assert.Equal(t, msg, entries[0].Message)
}

func TestFacilityExecute(t *testing.T) {
	pub, priv := newSigner(t)
	msg := []byte("bet message")
	sig := ed25519.Sign(priv, msg)
	f := NewFacility(nil)

	rec, err := NewRecord(pub, sig, msg)
	require.NoError(t, err)
	assert.NoError(t, f.Execute([]Record{rec}))

	forged := append([]byte{}, sig...)
	forged[0] ^= 0x01
	rec, err = NewRecord(pub, forged, msg)
	require.NoError(t, err)
	assert.ErrorIs(t, f.Execute([]Record{rec}), ErrInvalidSignature)

	assert.NoError(t, f.Execute(crossRecord(pub, sig, msg)))

	other, _ := newSigner(t)
	assert.ErrorIs(t, f.Execute(crossRecord(other, sig, msg)), ErrInvalidSignature)
}

func TestFacilitySkipsOtherPrograms(t *testing.T) {
	f := NewFacility(nil)
	assert.NoError(t, f.Execute([]Record{{Program: pubkey.Key{1}, Data: []byte{0xff}}}))
}

func TestPackRejectsIncompleteEntry(t *testing.T) {
	pub, _ := newSigner(t)
	_, err := Pack([]Entry{{PublicKey: &pub}})
	assert.ErrorIs(t, err, ErrIncompleteEntry)

	_, err = NewRecord(pub, make([]byte, 10), nil)
	assert.ErrorIs(t, err, ErrMalformed)
}
