package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAmbiguous marks decompositions that need external disambiguation
	// before planning may proceed.
	ErrAmbiguous = errors.New("ambiguous decomposition")
	// ErrConflict marks operation requests rejected by the planner because
	// another request already targets the same record field or file.
	ErrConflict = errors.New("conflicting operation")
	// ErrCollision marks plans rejected because two operations would produce
	// the same destination path.
	ErrCollision = errors.New("destination collision")
	// ErrPrecondition marks fatal failures that halt a run before any
	// mutation, such as an uncreatable quarantine directory.
	ErrPrecondition = errors.New("precondition failure")
	// ErrOperation marks a single failed file-system call; the run continues.
	ErrOperation = errors.New("operation failure")

	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrOperation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether an execution error must halt the whole run. Only
// precondition failures abort a batch; everything else accumulates into the
// run report.
func Fatal(err error) bool {
	return errors.Is(err, ErrPrecondition)
}

// Recoverable reports whether the error represents a structured result the
// host can resolve (disambiguation, conflict resolution, collision repair)
// rather than an internal fault.
func Recoverable(err error) bool {
	return errors.Is(err, ErrAmbiguous) || errors.Is(err, ErrConflict) || errors.Is(err, ErrCollision)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
