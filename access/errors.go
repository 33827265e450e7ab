package access

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrSettingNotFound is returned by delete operations when there is nothing
// to delete. It is expected and user-facing, not a bug.
var ErrSettingNotFound = errors.New("no such setting")

// ErrTooManyPrefixes is returned when a guild already has the maximum number
// of custom prefixes.
var ErrTooManyPrefixes = errors.New("too many custom prefixes")

// ErrPrefixNotFound is returned when removing a prefix that is neither a
// custom prefix nor an active default.
var ErrPrefixNotFound = errors.New("no such prefix")

// DeniedError reports that an invocation was denied, and by which setting,
// so the caller can tell the user why.
type DeniedError struct {
	Command string // root command name, empty if the bot-wide setting denied
	Scope   Scope
	Subject string
}

func (e *DeniedError) Error() string {
	what := "this bot"
	if e.Command != "" {
		what = fmt.Sprintf("command %q", e.Command)
	}
	return fmt.Sprintf("access to %s is denied by a %s setting", what, e.Scope)
}

// StorageError wraps a failure to reach the durable store. Management
// commands surface it to the caller; it never takes the process down.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return "settings storage unavailable: " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func errBadKey(format string, args ...interface{}) error {
	return errors.Errorf("invalid setting key: "+format, args...)
}
