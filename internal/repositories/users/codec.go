package users

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

// fileRecord is the on-disk shape of one account.
type fileRecord struct {
	Username     string `json:"username"`
	Fullname     string `json:"fullname"`
	Email        string `json:"email"`
	Birthdate    string `json:"birthdate"`
	PasswordHash string `json:"password_hash"`
}

// wireRecord is used for decoding so missing fields can be told apart from
// empty ones.
type wireRecord struct {
	Username     *string `json:"username"`
	Fullname     *string `json:"fullname"`
	Email        *string `json:"email"`
	Birthdate    *string `json:"birthdate"`
	PasswordHash *string `json:"password_hash"`
}

// DecodeError describes why the users file could not be loaded.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("users file: %v", e.Err)
	}
	return fmt.Sprintf("users file: record %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// encodeUsers writes the accounts as one JSON object, keys in the given order.
// Invalid UTF-8 is refused rather than rewritten, so a load returns exactly
// what was stored.
func encodeUsers(order []string, byName map[string]*models.User) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range order {
		u := byName[name]
		for _, s := range []string{name, u.Username, u.Fullname, u.Email, u.PasswordHash} {
			if !utf8.ValidString(s) {
				return nil, fmt.Errorf("record %q: field is not valid UTF-8", name)
			}
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(fileRecord{
			Username:     u.Username,
			Fullname:     u.Fullname,
			Email:        u.Email,
			Birthdate:    u.Birthdate.String(),
			PasswordHash: u.PasswordHash,
		})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// decodeUsers parses the users file, keeping key order. Every record must
// carry all five fields and nothing else, its username must equal its key,
// and emails must be unique.
func decodeUsers(data []byte) ([]string, map[string]*models.User, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '{'); err != nil {
		return nil, nil, &DecodeError{Err: err}
	}

	order := make([]string, 0)
	byName := make(map[string]*models.User)
	emails := make(map[string]string)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, &DecodeError{Err: err}
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, &DecodeError{Err: fmt.Errorf("unexpected token %v", tok)}
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, &DecodeError{Key: key, Err: err}
		}

		u, err := decodeRecord(key, raw)
		if err != nil {
			return nil, nil, &DecodeError{Key: key, Err: err}
		}
		if _, dup := byName[key]; dup {
			return nil, nil, &DecodeError{Key: key, Err: errors.New("duplicate username")}
		}
		if other, dup := emails[u.Email]; dup {
			return nil, nil, &DecodeError{Key: key, Err: fmt.Errorf("email also used by %q", other)}
		}

		emails[u.Email] = key
		byName[key] = u
		order = append(order, key)
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, nil, &DecodeError{Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, nil, &DecodeError{Err: errors.New("trailing data after users object")}
	}

	return order, byName, nil
}

func decodeRecord(key string, raw json.RawMessage) (*models.User, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var w wireRecord
	if err := dec.Decode(&w); err != nil {
		return nil, err
	}

	fields := []struct {
		name  string
		value *string
	}{
		{"username", w.Username},
		{"fullname", w.Fullname},
		{"email", w.Email},
		{"birthdate", w.Birthdate},
		{"password_hash", w.PasswordHash},
	}
	for _, f := range fields {
		if f.value == nil {
			return nil, fmt.Errorf("missing field %q", f.name)
		}
	}

	if *w.Username != key {
		return nil, fmt.Errorf("username %q does not match key", *w.Username)
	}

	birthdate, err := models.ParseDate(*w.Birthdate)
	if err != nil {
		return nil, err
	}

	u, err := models.RestoreUser(*w.Username, *w.Fullname, *w.Email, birthdate, *w.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", "password_hash", err)
	}
	return u, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
