// Package models defines the account record kept by the user store.
package models

import (
	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/cryptox"
)

// PasswordHasher turns a raw password into an opaque, salted digest.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// User is one account. PasswordHash is the only field that changes after
// creation, and the raw password is never kept.
type User struct {
	Username     string
	Fullname     string
	Email        string
	Birthdate    Date
	PasswordHash string
}

// NewUser creates an account from a raw password, hashing it with h.
// Field contents are not validated here.
func NewUser(username, fullname, email string, birthdate Date, password string, h PasswordHasher) (*User, error) {
	if password == "" {
		return nil, common.ErrNoSecret
	}
	hash, err := h.Hash(password)
	if err != nil {
		return nil, err
	}
	return RestoreUser(username, fullname, email, birthdate, hash)
}

// RestoreUser rebuilds an account from a stored hash, kept verbatim.
func RestoreUser(username, fullname, email string, birthdate Date, passwordHash string) (*User, error) {
	if passwordHash == "" {
		return nil, common.ErrNoSecret
	}
	return &User{
		Username:     username,
		Fullname:     fullname,
		Email:        email,
		Birthdate:    birthdate,
		PasswordHash: passwordHash,
	}, nil
}

// VerifyPassword reports whether candidate matches the stored hash.
// A malformed hash never matches.
func (u *User) VerifyPassword(candidate string) bool {
	return cryptox.VerifyPassword(u.PasswordHash, candidate)
}

// SetPassword replaces the stored hash with a hash of password.
func (u *User) SetPassword(password string, h PasswordHasher) error {
	if password == "" {
		return common.ErrNoSecret
	}
	hash, err := h.Hash(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// MatchesIdentity reports whether fullname and birthdate both equal the
// stored values exactly.
func (u *User) MatchesIdentity(fullname string, birthdate Date) bool {
	return u.Fullname == fullname && u.Birthdate == birthdate
}

// Clone returns a copy that callers may modify freely.
func (u *User) Clone() *User {
	c := *u
	return &c
}

// Public returns a copy without the password hash, for listing.
func (u *User) Public() *User {
	c := u.Clone()
	c.PasswordHash = ""
	return c
}
