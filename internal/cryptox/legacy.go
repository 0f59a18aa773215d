package cryptox

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

const (
	werkzeugPBKDF2Iterations = 600000
	werkzeugScryptN          = 1 << 15
	werkzeugScryptR          = 8
	werkzeugScryptP          = 1
	werkzeugScryptKeyLen     = 64

	maxScryptN  = 1 << 20
	maxScryptRP = 64
)

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

func verifyBcrypt(encoded, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
}

// splitWerkzeug splits "method$salt$hexdigest" into the ':'-separated method
// fields, the salt and the decoded digest.
func splitWerkzeug(encoded string) ([]string, []byte, []byte, bool) {
	parts := strings.SplitN(encoded, "$", 3)
	if len(parts) != 3 || parts[1] == "" {
		return nil, nil, nil, false
	}
	digest, err := hex.DecodeString(parts[2])
	if err != nil || len(digest) == 0 {
		return nil, nil, nil, false
	}
	return strings.Split(parts[0], ":"), []byte(parts[1]), digest, true
}

// verifyWerkzeugPBKDF2 handles "pbkdf2:sha256:600000$salt$hex". The hash
// name and iteration count are optional.
func verifyWerkzeugPBKDF2(encoded, password string) bool {
	method, salt, digest, ok := splitWerkzeug(encoded)
	if !ok || len(method) > 3 {
		return false
	}

	name := "sha256"
	if len(method) > 1 {
		name = method[1]
	}
	iterations := werkzeugPBKDF2Iterations
	if len(method) > 2 {
		n, err := strconv.Atoi(method[2])
		if err != nil || n < 1 {
			return false
		}
		iterations = n
	}

	var h func() hash.Hash
	switch name {
	case "sha1":
		h = sha1.New
	case "sha256":
		h = sha256.New
	case "sha512":
		h = sha512.New
	default:
		return false
	}

	candidate := pbkdf2.Key([]byte(password), salt, iterations, h().Size(), h)
	return subtle.ConstantTimeCompare(candidate, digest) == 1
}

// verifyWerkzeugScrypt handles "scrypt:32768:8:1$salt$hex".
func verifyWerkzeugScrypt(encoded, password string) bool {
	method, salt, digest, ok := splitWerkzeug(encoded)
	if !ok || len(method) > 4 {
		return false
	}

	costs := []int{werkzeugScryptN, werkzeugScryptR, werkzeugScryptP}
	for i, s := range method[1:] {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return false
		}
		costs[i] = n
	}
	if costs[0] > maxScryptN || costs[1]*costs[2] > maxScryptRP {
		return false
	}

	candidate, err := scrypt.Key([]byte(password), salt, costs[0], costs[1], costs[2], werkzeugScryptKeyLen)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(candidate, digest) == 1
}
