// Package errors defines the closed catalog of application error kinds.
package errors

import (
	stderrors "errors"
	"fmt"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Class groups error codes by how callers are expected to react to them.
type Class string

const (
	// ClassConfig marks expected, recoverable "not configured yet" states.
	ClassConfig Class = "config"
	// ClassValidation marks rejected chat designations.
	ClassValidation Class = "validation"
	// ClassRouting marks updates that do not fit the operation they reached.
	ClassRouting Class = "routing"
	// ClassInternal marks unexpected failures.
	ClassInternal Class = "internal"
)

type AppError struct {
	Code        string
	Class       Class
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

func (e *AppError) Cause() error {
	return e.Unwrap()
}

// Is reports whether target carries the same code, so wrapped catalog
// errors match their sentinel regardless of message text.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || e == nil || t == nil {
		return false
	}

	return e.Code != "" && e.Code == t.Code
}

func newKind(code string, class Class, severity Severity, msg, userMsg string) *AppError {
	return &AppError{
		Code:        code,
		Class:       class,
		Message:     msg,
		UserMessage: userMsg,
		Severity:    severity,
	}
}

// Configuration-missing kinds.
var (
	ErrNoSettingsChat  = newKind("E601", ClassConfig, SeverityLow, "no settings chat", "The settings chat is not configured yet. Run /setsettings in the chat that should become it.")
	ErrNoContactChat   = newKind("E602", ClassConfig, SeverityLow, "no contact chat", "The contact chat is not configured yet. Run /setcontact in the chat that should become it.")
	ErrNoGreetingSet   = newKind("E603", ClassConfig, SeverityLow, "no greeting set", "No greeting has been set yet.")
	ErrNoStartSettings = newKind("E604", ClassConfig, SeverityLow, "no start settings topic", "The greeting topic is not configured yet. Run /startsettings inside a topic of the settings chat.")
)

// Chat designation kinds.
var (
	ErrChatNotSupergroup       = newKind("E611", ClassValidation, SeverityLow, "chat is not a supergroup", "This chat is not a supergroup.")
	ErrTopicsNotEnabled        = newKind("E612", ClassValidation, SeverityLow, "topics are not enabled", "Topics are not enabled in this chat.")
	ErrCannotManageTopics      = newKind("E613", ClassValidation, SeverityLow, "bot cannot manage topics", "The bot must be an administrator allowed to manage topics.")
	ErrChatAlreadySettingsChat = newKind("E614", ClassValidation, SeverityLow, "chat is already the settings chat", "This chat is already the settings chat.")
	ErrChatAlreadyContactChat  = newKind("E615", ClassValidation, SeverityLow, "chat is already the contact chat", "This chat is already the contact chat.")
	ErrNotChatAdmin            = newKind("E616", ClassValidation, SeverityLow, "sender is not a chat administrator", "Only chat administrators can do this.")
)

// Routing kinds.
var (
	ErrNotContactChat   = newKind("E621", ClassRouting, SeverityLow, "not the contact chat", "This command only works in the contact chat.")
	ErrNotTopicMessage  = newKind("E622", ClassRouting, SeverityLow, "not a topic message", "This command only works inside a topic.")
	ErrNoTopicUser      = newKind("E623", ClassRouting, SeverityMedium, "topic has no user", "This topic is not linked to any user.")
	ErrNotSettingsChat  = newKind("E624", ClassRouting, SeverityLow, "not the settings chat", "This command only works in the settings chat.")
	ErrNotStartSettings = newKind("E625", ClassRouting, SeverityLow, "not the start settings topic", "Send the greeting inside the greeting topic.")
	ErrNoMessage        = newKind("E626", ClassRouting, SeverityLow, "update carries no message", "")
)

// Wrap annotates a catalog kind with details while keeping it matchable by code.
func Wrap(kind *AppError, format string, args ...any) *AppError {
	wrapped := *kind
	wrapped.Message = fmt.Sprintf("%s: %s", kind.Message, fmt.Sprintf(format, args...))
	return &wrapped
}

// IsKind reports whether err is, or wraps, the catalog kind.
func IsKind(err error, kind *AppError) bool {
	return stderrors.Is(err, kind)
}

// ClassOf returns the class of the catalog kind err carries, or "" for foreign errors.
func ClassOf(err error) Class {
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr != nil {
		return appErr.Class
	}
	return ""
}

// NewInternalError wraps an unexpected failure such as a recovered panic.
func NewInternalError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E900",
		Class:       ClassInternal,
		Message:     fmt.Sprintf("internal error: %s", underlyingMsg),
		UserMessage: "Something went wrong. Please try again later.",
		Severity:    SeverityCritical,
		Retryable:   false,
		cause:       cause,
	}
}
