package store

import (
	"errors"
	"fmt"
	"strings"
)

var ErrBlockedBySuccessor = errors.New("blocked by recurrence successor")

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// BlockedError names the successors that keep a task alive.
type BlockedError struct {
	IDs []string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrBlockedBySuccessor, strings.Join(e.IDs, ", "))
}

func (e *BlockedError) Is(target error) bool {
	return target == ErrBlockedBySuccessor
}
