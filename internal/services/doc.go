// Package services contains the account workflows built on top of the user
// store: registration with form validation, login, listing, and the
// three-step password recovery (identify, verify, reset).
//
// Services return the sentinel errors from package common, or a
// *ValidationError wrapping common.ErrValidation when a form is rejected.
package services
