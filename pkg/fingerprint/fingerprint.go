// Package fingerprint computes content digests over canonical JSON encodings.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Precision is the number of decimal places every fingerprinted float is rounded to.
const Precision int32 = 6

// Of returns the hex SHA-256 digest of v's JSON encoding.
// Struct fields are encoded in declaration order and map keys sorted, so the encoding is stable.
func Of(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint encode: %w", err)
	}
	return Bytes(b), nil
}

// MustOf is Of for values that are known to encode, such as structs of finite floats.
func MustOf(v interface{}) string {
	s, err := Of(v)
	if err != nil {
		panic(err)
	}
	return s
}

// Bytes returns the hex SHA-256 digest of b.
func Bytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Round rounds v to Precision decimals, half away from zero.
// Non-finite values are returned unchanged.
func Round(v float64) float64 {
	return RoundTo(v, Precision)
}

// RoundTo rounds v to places decimals.
func RoundTo(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
