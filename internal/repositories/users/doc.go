// Package users implements the account store: the authoritative collection
// of accounts, persisted as a single JSON file.
//
// # File format
//
// A JSON object keyed by username, in insertion order:
//
//	{
//	  "nva": {
//	    "username": "nva",
//	    "fullname": "Nguyen Van A",
//	    "email": "a@example.com",
//	    "birthdate": "2000-01-01",
//	    "password_hash": "$argon2id$v=19$..."
//	  }
//	}
//
// # Invariants
//
//   - usernames are unique (map key);
//   - emails are unique across all records;
//   - every mutation (Register, ResetPassword) is followed by a full rewrite
//     of the file. If the write fails the mutation is rolled back and the
//     error wraps common.ErrStorage.
//
// A missing or unreadable file at startup yields an empty store. A file that
// exists but cannot be decoded is renamed to "<path>.corrupt" first, so the
// next write does not overwrite it.
//
// # Known weakness
//
// VerifyIdentity accepts anyone who knows an account's full name and
// birthdate, and ResetPassword trusts its caller completely. Binding the
// recovery steps together is the job of services.RecoveryService.
//
// JSONFileRepository is safe for concurrent use within one process. Several
// processes sharing one file are not supported.
package users
