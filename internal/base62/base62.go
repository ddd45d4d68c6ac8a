// Package base62 encodes byte strings into the [0-9A-Za-z] alphabet. Used
// for opaque identifiers carried in URLs (short link ids, stateful token
// ids) where base64 padding and punctuation would get in the way.
package base62

import (
	"crypto/rand"
	"math/big"
)

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

var base = big.NewInt(int64(len(alphabet)))

// Encode returns the base62 representation of buf interpreted as a
// big-endian unsigned integer. An empty or all-zero input encodes to "0".
func Encode(buf []byte) string {
	n := new(big.Int).SetBytes(buf)
	if n.Sign() == 0 {
		return "0"
	}

	var out []byte
	rem := new(big.Int)
	for n.Sign() > 0 {
		n.DivMod(n, base, rem)
		out = append(out, alphabet[rem.Int64()])
	}

	// Digits were produced least-significant first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

// Random returns the base62 encoding of n crypto-random bytes.
func Random(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return Encode(buf)
}
