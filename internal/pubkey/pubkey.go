package pubkey

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

const Size = 32

var ErrInvalidKey = errors.New("invalid public key")

// Key is an Ed25519 public key or a derived account address.
type Key [Size]byte

func FromBytes(b []byte) (Key, error) {
	var k Key
	if len(b) != Size {
		return k, ErrInvalidKey
	}
	copy(k[:], b)
	return k, nil
}

func Parse(s string) (Key, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return FromBytes(b)
}

func MustParse(s string) Key {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return k
}

func (k Key) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, k[:])
	return b
}

func (k Key) String() string {
	return base58.Encode(k[:])
}

func (k Key) IsZero() bool {
	return k == Key{}
}

func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Value stores keys as base58 text columns.
func (k Key) Value() (driver.Value, error) {
	return k.String(), nil
}

func (k *Key) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return k.UnmarshalText([]byte(v))
	case []byte:
		return k.UnmarshalText(v)
	default:
		return fmt.Errorf("pubkey: cannot scan %T", src)
	}
}
