// Package seal encrypts stored key material with XChaCha20-Poly1305 under a
// key derived from a passphrase with argon2id. Every sealed record is bound to
// a scope (the principal that owns the state) and a per-record slot, so a
// blob copied to another principal or slot no longer opens.
package seal

import (
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"os/user"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const saltLen = 16

var (
	ErrEmptyPassphrase = errors.New("seal passphrase must not be empty")
	ErrOpen            = errors.New("failed to open sealed data")
)

// Params are the argon2id cost parameters.
type Params struct {
	Time    uint32 `mapstructure:"time"`
	Memory  uint32 `mapstructure:"memory"`
	Threads uint8  `mapstructure:"threads"`
}

// DefaultParams follow the x/crypto/argon2 recommendation for argon2id.
func DefaultParams() Params {
	return Params{
		Time:    1,
		Memory:  64 * 1024,
		Threads: 4,
	}
}

type Sealer struct {
	passphrase []byte
	scope      []byte
	params     Params
	salt       []byte
	aead       cipher.AEAD
}

// New derives the sealing key. An empty scope uses the current OS user.
func New(passphrase, scope string, params Params) (*Sealer, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	if scope == "" {
		var err error
		scope, err = CurrentScope()
		if err != nil {
			return nil, err
		}
	}
	if params.Time == 0 || params.Memory == 0 || params.Threads == 0 {
		params = DefaultParams()
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	s := &Sealer{
		passphrase: []byte(passphrase),
		scope:      []byte(scope),
		params:     params,
		salt:       salt,
	}

	aead, err := s.newAEAD(salt)
	if err != nil {
		return nil, err
	}
	s.aead = aead
	return s, nil
}

// CurrentScope returns the OS user name of the running process.
func CurrentScope() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("failed to resolve current user: %w", err)
	}
	return u.Username, nil
}

// Scope returns the principal the sealer binds records to.
func (s *Sealer) Scope() string {
	return string(s.scope)
}

// Seal encrypts plain and binds it to slot. Output is salt||nonce||ciphertext.
func (s *Sealer) Seal(plain []byte, slot string) ([]byte, error) {
	nonce := make([]byte, chacha20poly1305.NonceSizeX, saltLen+chacha20poly1305.NonceSizeX+len(plain)+chacha20poly1305.Overhead)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, saltLen+cap(nonce))
	out = append(out, s.salt...)
	out = append(out, nonce...)
	return s.aead.Seal(out, nonce, plain, s.additionalData(slot)), nil
}

// Open reverses Seal. Data sealed under another scope, slot or passphrase
// fails with ErrOpen.
func (s *Sealer) Open(sealed []byte, slot string) ([]byte, error) {
	if len(sealed) < saltLen+chacha20poly1305.NonceSizeX+chacha20poly1305.Overhead {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrOpen)
	}

	salt := sealed[:saltLen]
	nonce := sealed[saltLen : saltLen+chacha20poly1305.NonceSizeX]
	ciphertext := sealed[saltLen+chacha20poly1305.NonceSizeX:]

	aead := s.aead
	if !bytes.Equal(salt, s.salt) {
		// sealed by an earlier process
		var err error
		aead, err = s.newAEAD(salt)
		if err != nil {
			return nil, err
		}
	}

	plain, err := aead.Open(nil, nonce, ciphertext, s.additionalData(slot))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	return plain, nil
}

func (s *Sealer) newAEAD(salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey(s.passphrase, salt, s.params.Time, s.params.Memory, s.params.Threads, chacha20poly1305.KeySize)
	defer clear(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return aead, nil
}

func (s *Sealer) additionalData(slot string) []byte {
	ad := make([]byte, 0, len(s.scope)+1+len(slot))
	ad = append(ad, s.scope...)
	ad = append(ad, 0)
	ad = append(ad, slot...)
	return ad
}
