package sync

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoRemoteID is returned when a write call succeeded at the HTTP level
// but the response carried no identifier. The sync cannot proceed without
// one, so it fails the unit like any API error.
var ErrNoRemoteID = errors.New("store response contained no remote id")

// ValidationError is a pre-flight failure. It is never sent to the remote
// store and causes no state mutation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates every failed pre-flight check of one entity.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// IsValidationError reports whether err originated from pre-flight
// validation rather than from the remote store.
func IsValidationError(err error) bool {
	var verrs ValidationErrors
	return errors.As(err, &verrs)
}
