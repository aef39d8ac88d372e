// Package amount implements the unsigned 128-bit minor-unit quantity used
// for player balances, bets and payouts. One token is 10^18 attos.
package amount

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// AttosPerToken is the number of minor units per display token.
const AttosPerToken = 18

// Amount is an unsigned 128-bit attos value in big-endian byte order.
// The fixed-size representation gives it plain value semantics: amounts
// compare with ==, copy by assignment and never alias.
type Amount [16]byte

var maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// Zero is the zero amount.
var Zero Amount

// FromUint64 converts a uint64 attos value.
func FromUint64(v uint64) Amount {
	var a Amount
	for i := 0; i < 8; i++ {
		a[15-i] = byte(v >> (8 * i))
	}
	return a
}

// FromBig converts a big.Int attos value. Negative values and values
// wider than 128 bits are rejected.
func FromBig(v *big.Int) (Amount, error) {
	if v.Sign() < 0 {
		return Zero, fmt.Errorf("amount cannot be negative: %s", v)
	}
	if v.Cmp(maxUint128) > 0 {
		return Zero, fmt.Errorf("amount exceeds 128 bits: %s", v)
	}
	var a Amount
	v.FillBytes(a[:])
	return a, nil
}

// clampBig saturates out-of-range values instead of rejecting them.
func clampBig(v *big.Int) Amount {
	if v.Sign() < 0 {
		return Zero
	}
	if v.Cmp(maxUint128) > 0 {
		v = maxUint128
	}
	var a Amount
	v.FillBytes(a[:])
	return a
}

// Big returns the value as a fresh big.Int.
func (a Amount) Big() *big.Int {
	return new(big.Int).SetBytes(a[:])
}

func (a Amount) IsZero() bool {
	return a == Zero
}

// Cmp returns -1, 0 or 1 comparing a against b.
func (a Amount) Cmp(b Amount) int {
	return bytes.Compare(a[:], b[:])
}

// Add returns a+b, saturating at the 128-bit maximum rather than wrapping.
func (a Amount) Add(b Amount) Amount {
	sum := new(big.Int).Add(a.Big(), b.Big())
	return clampBig(sum)
}

// Sub returns a-b. ok is false when b exceeds a; the result is then Zero
// and the caller must treat the subtraction as rejected.
func (a Amount) Sub(b Amount) (Amount, bool) {
	if a.Cmp(b) < 0 {
		return Zero, false
	}
	diff := new(big.Int).Sub(a.Big(), b.Big())
	return clampBig(diff), true
}

// MulDiv returns a*mul/div with a wide intermediate, flooring the
// division and saturating the result. div must be non-zero.
func (a Amount) MulDiv(mul uint64, div uint64) Amount {
	wide := new(big.Int).Mul(a.Big(), new(big.Int).SetUint64(mul))
	wide.Quo(wide, new(big.Int).SetUint64(div))
	return clampBig(wide)
}

// Uint64Saturating narrows to uint64, saturating at MaxUint64. Used to
// keep the aggregate fund counter in lockstep with 128-bit balances.
func (a Amount) Uint64Saturating() uint64 {
	v := a.Big()
	if v.BitLen() > 64 {
		return ^uint64(0)
	}
	return v.Uint64()
}

// Attos returns the raw attos value as a decimal digit string.
func (a Amount) Attos() string {
	return a.Big().String()
}

// String renders the amount in display tokens, e.g. "1.5" for
// 1500000000000000000 attos.
func (a Amount) String() string {
	return decimal.NewFromBigInt(a.Big(), -AttosPerToken).String()
}

// ParseTokens parses a display-token string such as "0.25" into attos.
func ParseTokens(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("invalid token amount %q: %w", s, err)
	}
	attos := d.Shift(AttosPerToken)
	if !attos.IsInteger() {
		return Zero, fmt.Errorf("token amount %q has more than %d decimals", s, AttosPerToken)
	}
	return FromBig(attos.BigInt())
}

// ParseAttos parses a raw attos digit string.
func ParseAttos(s string) (Amount, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Zero, fmt.Errorf("invalid attos amount %q", s)
	}
	return FromBig(v)
}

// MarshalJSON encodes the amount as its attos digit string, which
// round-trips exactly at any magnitude.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.Attos() + `"`), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("amount must be a JSON string")
	}
	parsed, err := ParseAttos(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
