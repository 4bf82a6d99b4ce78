// Package errors defines the failure taxonomy shared by the gateway and
// the conversation engine. Every user-facing failure collapses into one
// generic apology, so the kind exists for logs, not for users.
package errors

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Kind identifies the class of a failure.
type Kind string

const (
	KindSignatureInvalid Kind = "signature_invalid"
	KindPayloadMalformed Kind = "payload_malformed"
	KindStorage          Kind = "storage"
	KindPlatformSend     Kind = "platform_send"
	KindUniqueViolation  Kind = "unique_violation"
	KindUnknown          Kind = "unknown"
)

// Error wraps an underlying cause with its classified kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// SignatureInvalid marks a failed webhook signature check.
func SignatureInvalid(msg string) error {
	return &Error{Kind: KindSignatureInvalid, Err: errors.New(msg)}
}

// PayloadMalformed wraps a parse failure of an inbound event or postback.
func PayloadMalformed(err error) error {
	return &Error{Kind: KindPayloadMalformed, Err: err}
}

// Storage wraps a persistence failure. Duplicate-key errors are promoted
// to UniqueViolation so the engine can tell a re-created profile apart
// from an I/O failure.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &Error{Kind: KindUniqueViolation, Err: err}
	}
	return &Error{Kind: KindStorage, Err: err}
}

// PlatformSend wraps a failed outbound call to the messaging platform.
func PlatformSend(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindPlatformSend, Err: err}
}

// UniqueViolation marks a duplicate profile creation.
func UniqueViolation(msg string) error {
	return &Error{Kind: KindUniqueViolation, Err: errors.New(msg)}
}

// KindOf classifies an arbitrary error for logging.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return KindUniqueViolation
	case errors.Is(err, gorm.ErrRecordNotFound):
		return KindStorage
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return KindPlatformSend
	default:
		return KindUnknown
	}
}
