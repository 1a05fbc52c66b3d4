// Package inputs builds integer buffers to reduce.
package inputs

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/unixpickle/essentials"
	"golang.org/x/crypto/sha3"
)

// Ramp returns the buffer 0, 1, ..., n-1.
func Ramp(n int) []int64 {
	res := make([]int64, n)
	for i := range res {
		res[i] = int64(i)
	}
	return res
}

// Seeded returns n pseudo-random values in [0, bound),
// expanded deterministically from the seed with SHAKE128.
//
// The same seed always yields the same prefix, regardless
// of n.
// Panics if bound is not positive.
func Seeded(seed []byte, n int, bound int64) []int64 {
	if bound <= 0 {
		panic(fmt.Sprintf("invalid bound: %d", bound))
	}
	xof := sha3.NewShake128()
	xof.Write(seed)

	res := make([]int64, n)
	var word [8]byte
	for i := range res {
		xof.Read(word[:])
		res[i] = int64(binary.LittleEndian.Uint64(word[:]) % uint64(bound))
	}
	return res
}

// Parse decodes a buffer from decimal integers.
func Parse(fields []string) ([]int64, error) {
	res := make([]int64, len(fields))
	for i, field := range fields {
		x, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, essentials.AddCtx(fmt.Sprintf("parse element %d", i), err)
		}
		res[i] = x
	}
	return res, nil
}

// Sum adds up a buffer one element at a time.
func Sum(buf []int64) int64 {
	var res int64
	for _, x := range buf {
		res += x
	}
	return res
}
