// Package codec converts between the registry's on-chain integer
// representations and human-entered values and tags.
package codec

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// ErrInvalidValue is returned for values outside the encodable or
// protocol-accepted range.
var ErrInvalidValue = errors.New("invalid value")

// MaxDecimals is the maximum precision the registry stores.
const MaxDecimals = 18

// Value is the registry's fixed-point representation of a feedback
// value: the human value equals Raw / 10^Decimals.
type Value struct {
	Raw      uint64
	Decimals uint8
}

// EncodeValue converts a human-entered integer and decimal-places count
// into the on-chain fixed-point representation.
func EncodeValue(raw int64, decimals int) (Value, error) {
	if raw < 0 {
		return Value{}, fmt.Errorf("%w: raw value %d is negative", ErrInvalidValue, raw)
	}
	if decimals < 0 {
		return Value{}, fmt.Errorf("%w: decimals %d is negative", ErrInvalidValue, decimals)
	}
	if decimals > MaxDecimals {
		return Value{}, fmt.Errorf("%w: decimals %d exceeds maximum precision %d", ErrInvalidValue, decimals, MaxDecimals)
	}
	return Value{Raw: uint64(raw), Decimals: uint8(decimals)}, nil
}

// Decimal reconstructs the exact human value as a decimal string. The
// arithmetic is on the decimal digits themselves, so values beyond
// float64 precision round-trip without drift. Trailing fractional
// zeros are trimmed.
func (v Value) Decimal() string {
	digits := strconv.FormatUint(v.Raw, 10)
	if v.Decimals == 0 {
		return digits
	}

	d := int(v.Decimals)
	if len(digits) <= d {
		digits = strings.Repeat("0", d-len(digits)+1) + digits
	}

	whole := digits[:len(digits)-d]
	frac := strings.TrimRight(digits[len(digits)-d:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

// InRange reports whether the value is within the protocol-accepted
// feedback range of 0..100 scaled by its decimals. The bound is
// computed with big.Int: 100 * 10^18 does not fit in a uint64.
func (v Value) InRange() bool {
	bound := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(v.Decimals)), nil)
	bound.Mul(bound, big.NewInt(100))
	return new(big.Int).SetUint64(v.Raw).Cmp(bound) <= 0
}

func (v Value) String() string {
	return v.Decimal()
}
