package domain

import (
	"math/big"
	"strings"

	dErrors "awardregistry/pkg/domain-errors"
)

// Amount is a non-negative quantity of the payment currency in base units.
// Values are immutable; arithmetic returns new amounts. The zero value is 0.
type Amount struct {
	v *big.Int
}

// Zero is the empty amount.
var Zero = Amount{}

// NewAmount builds an amount from base units. Negative input is clamped to zero.
func NewAmount(units int64) Amount {
	if units <= 0 {
		return Zero
	}
	return Amount{v: big.NewInt(units)}
}

// AmountFromBig copies b. Negative or nil input yields zero.
func AmountFromBig(b *big.Int) Amount {
	if b == nil || b.Sign() <= 0 {
		return Zero
	}
	return Amount{v: new(big.Int).Set(b)}
}

// ParseAmount parses a non-negative base-10 integer.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Zero, dErrors.New(dErrors.CodeInvalidInput, "invalid amount")
	}
	if b.Sign() < 0 {
		return Zero, dErrors.New(dErrors.CodeInvalidInput, "amount must not be negative")
	}
	return AmountFromBig(b), nil
}

// Ether returns n whole currency units at 18 decimals.
func Ether(n int64) Amount {
	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	return AmountFromBig(unit.Mul(unit, big.NewInt(n)))
}

func (a Amount) big() *big.Int {
	if a.v == nil {
		return new(big.Int)
	}
	return a.v
}

// Big returns a copy of the underlying integer.
func (a Amount) Big() *big.Int { return new(big.Int).Set(a.big()) }

func (a Amount) IsZero() bool { return a.v == nil || a.v.Sign() == 0 }

// Cmp compares a and b, returning -1, 0 or +1.
func (a Amount) Cmp(b Amount) int { return a.big().Cmp(b.big()) }

func (a Amount) Equal(b Amount) bool { return a.Cmp(b) == 0 }

func (a Amount) Add(b Amount) Amount {
	return AmountFromBig(new(big.Int).Add(a.big(), b.big()))
}

// Sub returns a-b, floored at zero.
func (a Amount) Sub(b Amount) Amount {
	return AmountFromBig(new(big.Int).Sub(a.big(), b.big()))
}

// Mul scales the amount by a non-negative factor.
func (a Amount) Mul(n int64) Amount {
	return AmountFromBig(new(big.Int).Mul(a.big(), big.NewInt(n)))
}

func (a Amount) String() string { return a.big().String() }

func (a Amount) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Amount) UnmarshalText(text []byte) error {
	parsed, err := ParseAmount(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
