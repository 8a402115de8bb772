package domain

import (
	"encoding/hex"
	"strings"

	dErrors "awardregistry/pkg/domain-errors"
)

// AddressLength is the byte length of a payment identity.
const AddressLength = 20

// Address is a caller's payment identity. It receives refunds and prizes and
// authorizes self-service mutations of the member record it created.
type Address [AddressLength]byte

// ParseAddress accepts a 40 hex digit address with an optional 0x prefix.
func ParseAddress(s string) (Address, error) {
	var a Address
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if len(s) != 2*AddressLength {
		return a, dErrors.New(dErrors.CodeInvalidInput, "address must be 20 bytes of hex")
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return a, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid address")
	}
	copy(a[:], b)
	return a, nil
}

// MustParseAddress panics on malformed input. Intended for tests and constants.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// IsZero reports whether no identity has been supplied.
func (a Address) IsZero() bool { return a == Address{} }

func (a Address) String() string { return "0x" + hex.EncodeToString(a[:]) }

func (a Address) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
