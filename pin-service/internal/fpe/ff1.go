// Package fpe implements the FF1 format-preserving encryption mode (NIST SP
// 800-38G) over digit slices. It is the keyed permutation behind keyed PIN
// sequences: for a fixed key and tweak, Encrypt is a bijection on all digit
// slices of a given length and radix.
//
// Unlike the standard, any length >= 1 is accepted so small PIN spaces can be
// permuted; the domain-size floor is a policy decision left to callers.
package fpe

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
)

const (
	MaxRadix  = 1 << 16
	numRounds = 10
	blockSize = aes.BlockSize
)

var (
	ErrRadix      = errors.New("radix must be between 2 and 65536")
	ErrLength     = errors.New("input must contain at least one digit")
	ErrKeySize    = errors.New("key must be 16, 24 or 32 bytes")
	ErrDigitRange = errors.New("digit out of range for radix")
	ErrTweakSize  = errors.New("tweak too long")
)

// FF1 is stateless; the zero value is ready to use.
type FF1 struct{}

// New returns an FF1 permuter.
func New() FF1 {
	return FF1{}
}

// Encrypt permutes digits under key and tweak.
func (FF1) Encrypt(key, tweak []byte, digits []int, radix int) ([]int, error) {
	c, err := newCipher(key, tweak, digits, radix)
	if err != nil {
		return nil, err
	}
	return c.encrypt(digits), nil
}

// Decrypt is the inverse of Encrypt.
func (FF1) Decrypt(key, tweak []byte, digits []int, radix int) ([]int, error) {
	c, err := newCipher(key, tweak, digits, radix)
	if err != nil {
		return nil, err
	}
	return c.decrypt(digits), nil
}

type ff1Cipher struct {
	block cipher.Block
	tweak []byte
	radix *big.Int
	n     int
	u, v  int
	b, d  int
	p     [blockSize]byte
}

func newCipher(key, tweak []byte, digits []int, radix int) (*ff1Cipher, error) {
	if radix < 2 || radix > MaxRadix {
		return nil, fmt.Errorf("%w, got %d", ErrRadix, radix)
	}
	n := len(digits)
	if n == 0 {
		return nil, ErrLength
	}
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w, got %d", ErrKeySize, len(key))
	}
	if uint64(len(tweak)) > 1<<32-1 {
		return nil, ErrTweakSize
	}
	for i, d := range digits {
		if d < 0 || d >= radix {
			return nil, fmt.Errorf("%w: %d at position %d", ErrDigitRange, d, i)
		}
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	c := &ff1Cipher{
		block: block,
		tweak: tweak,
		radix: big.NewInt(int64(radix)),
		n:     n,
		u:     n / 2,
	}
	c.v = n - c.u

	// b = ceil(ceil(v*log2(radix))/8); the bit length of radix^v-1 is exactly
	// ceil(v*log2(radix)).
	maxB := new(big.Int).Exp(c.radix, big.NewInt(int64(c.v)), nil)
	maxB.Sub(maxB, big.NewInt(1))
	c.b = (maxB.BitLen() + 7) / 8
	if c.b == 0 {
		c.b = 1
	}
	c.d = 4*((c.b+3)/4) + 4

	// P = [1,2,1] || [radix]^3 || [10] || [u mod 256] || [n]^4 || [t]^4
	c.p[0] = 1
	c.p[1] = 2
	c.p[2] = 1
	c.p[3] = byte(radix >> 16)
	c.p[4] = byte(radix >> 8)
	c.p[5] = byte(radix)
	c.p[6] = numRounds
	c.p[7] = byte(c.u % 256)
	binary.BigEndian.PutUint32(c.p[8:12], uint32(n))
	binary.BigEndian.PutUint32(c.p[12:16], uint32(len(tweak)))

	return c, nil
}

func (c *ff1Cipher) encrypt(digits []int) []int {
	a := num(digits[:c.u], c.radix)
	b := num(digits[c.u:], c.radix)
	modU := pow(c.radix, c.u)
	modV := pow(c.radix, c.v)

	for i := 0; i < numRounds; i++ {
		y := c.roundValue(i, b)
		m := modV
		if i%2 == 0 {
			m = modU
		}
		// C = (NUM(A) + y) mod radix^m; A = B; B = C
		a.Add(a, y)
		a.Mod(a, m)
		a, b = b, a
	}

	return join(a, b, c.u, c.v, c.radix)
}

func (c *ff1Cipher) decrypt(digits []int) []int {
	a := num(digits[:c.u], c.radix)
	b := num(digits[c.u:], c.radix)
	modU := pow(c.radix, c.u)
	modV := pow(c.radix, c.v)

	for i := numRounds - 1; i >= 0; i-- {
		y := c.roundValue(i, a)
		m := modV
		if i%2 == 0 {
			m = modU
		}
		// C = (NUM(B) - y) mod radix^m; B = A; A = C
		b.Sub(b, y)
		b.Mod(b, m)
		a, b = b, a
	}

	return join(a, b, c.u, c.v, c.radix)
}

// roundValue computes y for round i from the numeral value of the half that
// feeds the round function.
func (c *ff1Cipher) roundValue(i int, x *big.Int) *big.Int {
	t := len(c.tweak)
	pad := mod(-t-c.b-1, blockSize)

	// Q = T || [0]^pad || [i] || [NUM(x)]^b
	q := make([]byte, t+pad+1+c.b)
	copy(q, c.tweak)
	q[t+pad] = byte(i)
	x.FillBytes(q[t+pad+1:])

	r := c.prf(q)

	// S = R || CIPH(R xor [1]^16) || CIPH(R xor [2]^16) ...
	s := make([]byte, 0, c.d+blockSize)
	s = append(s, r[:]...)
	for j := 1; len(s) < c.d; j++ {
		var blk [blockSize]byte
		binary.BigEndian.PutUint64(blk[8:], uint64(j))
		for k := range blk {
			blk[k] ^= r[k]
		}
		c.block.Encrypt(blk[:], blk[:])
		s = append(s, blk[:]...)
	}

	return new(big.Int).SetBytes(s[:c.d])
}

// prf is AES-CBC-MAC with a zero IV over P || q.
func (c *ff1Cipher) prf(q []byte) [blockSize]byte {
	y := c.p
	c.block.Encrypt(y[:], y[:])

	for off := 0; off < len(q); off += blockSize {
		for k := 0; k < blockSize; k++ {
			y[k] ^= q[off+k]
		}
		c.block.Encrypt(y[:], y[:])
	}
	return y
}

func num(digits []int, radix *big.Int) *big.Int {
	x := new(big.Int)
	d := new(big.Int)
	for _, v := range digits {
		x.Mul(x, radix)
		x.Add(x, d.SetInt64(int64(v)))
	}
	return x
}

func pow(radix *big.Int, e int) *big.Int {
	return new(big.Int).Exp(radix, big.NewInt(int64(e)), nil)
}

// join writes a as u digits followed by b as v digits.
func join(a, b *big.Int, u, v int, radix *big.Int) []int {
	out := make([]int, u+v)
	str(out[:u], a, radix)
	str(out[u:], b, radix)
	return out
}

func str(out []int, x *big.Int, radix *big.Int) {
	x = new(big.Int).Set(x)
	rem := new(big.Int)
	for i := len(out) - 1; i >= 0; i-- {
		x.QuoRem(x, radix, rem)
		out[i] = int(rem.Int64())
	}
}

func mod(x, m int) int {
	r := x % m
	if r < 0 {
		r += m
	}
	return r
}
