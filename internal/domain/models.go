package domain

// Domain contains core models and interfaces.

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"errors"
	"strings"
)

// Submission is a single contact record awaiting identification. Both fields
// are optional individually, but a submission is only valid when at least
// one is present.
type Submission struct {
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty" yaml:"phone_number,omitempty"`
}

// ErrEmptySubmission marks a submission carrying neither email nor phone.
var ErrEmptySubmission = errors.New("submission requires an email or a phone number")

// Normalize trims whitespace from both fields.
func (s Submission) Normalize() Submission {
	s.Email = strings.TrimSpace(s.Email)
	s.PhoneNumber = strings.TrimSpace(s.PhoneNumber)
	return s
}

// Validate enforces the at-least-one-field rule. This check belongs at the
// intake boundary; the service client accepts any payload.
func (s Submission) Validate() error {
	if strings.TrimSpace(s.Email) == "" && strings.TrimSpace(s.PhoneNumber) == "" {
		return ErrEmptySubmission
	}
	return nil
}

// Fingerprint derives a stable journal key from the submission fields.
func (s Submission) Fingerprint() string {
	s = s.Normalize()
	sum := sha1.Sum([]byte(s.Email + "|" + s.PhoneNumber))
	return hex.EncodeToString(sum[:])
}
