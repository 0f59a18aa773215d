// Package cryptox implements password hashing for stored accounts.
//
// New hashes are argon2id in PHC string form:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt b64>$<hash b64>
//
// VerifyPassword additionally accepts bcrypt hashes and the werkzeug
// "pbkdf2:..." and "scrypt:..." formats, so users files written by earlier
// deployments keep working without re-hashing.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	argon2ID = "argon2id"

	minMemoryKiB uint32 = 8 * 1024
	maxMemoryKiB uint32 = 1024 * 1024
	minSaltLen          = 16
	minKeyLen           = 16
)

// Params are the argon2id cost parameters used for new hashes.
type Params struct {
	MemoryKiB  uint32
	Time       uint32
	Threads    uint8
	SaltLength uint32
	KeyLength  uint32
}

// DefaultParams returns the parameters used when none are configured.
func DefaultParams() Params {
	return Params{
		MemoryKiB:  64 * 1024,
		Time:       1,
		Threads:    4,
		SaltLength: 16,
		KeyLength:  32,
	}
}

func (p Params) validate() error {
	switch {
	case p.MemoryKiB < minMemoryKiB || p.MemoryKiB > maxMemoryKiB:
		return fmt.Errorf("hash memory must be between %d and %d KiB", minMemoryKiB, maxMemoryKiB)
	case p.Time < 1:
		return errors.New("hash time must be >= 1")
	case p.Threads < 1:
		return errors.New("hash threads must be >= 1")
	case p.SaltLength < minSaltLen:
		return fmt.Errorf("salt length must be >= %d", minSaltLen)
	case p.KeyLength < minKeyLen:
		return fmt.Errorf("key length must be >= %d", minKeyLen)
	}
	return nil
}

// Argon2Hasher produces salted argon2id hashes. It is safe for concurrent use.
type Argon2Hasher struct {
	params Params
}

func NewArgon2Hasher(p Params) (*Argon2Hasher, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &Argon2Hasher{params: p}, nil
}

// Hash derives a new PHC-encoded hash with a fresh random salt.
func (h *Argon2Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", common.ErrNoSecret
	}

	salt := common.GenerateRandByteArray(int(h.params.SaltLength))
	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.MemoryKiB, h.params.Threads, h.params.KeyLength)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2ID,
		argon2.Version,
		h.params.MemoryKiB,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// PlaceholderHash returns a well-formed argon2id hash with parameters p and
// zeroed salt and key. Verifying against it costs as much as a real hash.
func PlaceholderHash(p Params) string {
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2ID,
		argon2.Version,
		p.MemoryKiB,
		p.Time,
		p.Threads,
		base64.RawStdEncoding.EncodeToString(make([]byte, p.SaltLength)),
		base64.RawStdEncoding.EncodeToString(make([]byte, p.KeyLength)),
	)
}

// VerifyPassword reports whether password matches encoded. Unknown or
// malformed hashes never match.
func VerifyPassword(encoded, password string) bool {
	switch {
	case strings.HasPrefix(encoded, "$"+argon2ID+"$"):
		return verifyArgon2(encoded, password)
	case isBcrypt(encoded):
		return verifyBcrypt(encoded, password)
	case strings.HasPrefix(encoded, "pbkdf2:"):
		return verifyWerkzeugPBKDF2(encoded, password)
	case strings.HasPrefix(encoded, "scrypt:"):
		return verifyWerkzeugScrypt(encoded, password)
	default:
		return false
	}
}

type phc struct {
	params Params
	salt   []byte
	key    []byte
}

func verifyArgon2(encoded, password string) bool {
	p, err := parsePHC(encoded)
	if err != nil {
		return false
	}
	candidate := argon2.IDKey([]byte(password), p.salt, p.params.Time, p.params.MemoryKiB, p.params.Threads, p.params.KeyLength)
	return subtle.ConstantTimeCompare(candidate, p.key) == 1
}

func parsePHC(encoded string) (*phc, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != argon2ID {
		return nil, errors.New("invalid PHC format")
	}

	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return nil, errors.New("unsupported argon2 version")
	}

	var p Params
	for _, kv := range strings.Split(parts[3], ",") {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, errors.New("invalid parameter entry")
		}
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid parameter %s: %w", name, err)
		}
		switch name {
		case "m":
			p.MemoryKiB = uint32(n)
		case "t":
			p.Time = uint32(n)
		case "p":
			if n > 255 {
				return nil, errors.New("invalid parallelism")
			}
			p.Threads = uint8(n)
		default:
			return nil, fmt.Errorf("unsupported parameter %s", name)
		}
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, errors.New("invalid salt encoding")
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, errors.New("invalid hash encoding")
	}

	p.SaltLength = uint32(len(salt))
	p.KeyLength = uint32(len(key))
	if err := p.validate(); err != nil {
		return nil, err
	}

	return &phc{params: p, salt: salt, key: key}, nil
}
