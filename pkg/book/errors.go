package book

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/yourusername/quantikbook/internal/quantik"
	"github.com/yourusername/quantikbook/internal/symmetry"
)

var (
	// ErrCorruptBook is returned when a book file does not match the layout
	ErrCorruptBook = errors.New("corrupt opening book")
	// ErrNotInBook is returned when a history has no record in the book
	ErrNotInBook = errors.New("position not in opening book")
	// ErrIncompleteTree is returned when encoding a tree with unresolved nodes
	ErrIncompleteTree = errors.New("tree has unresolved nodes")
)

// InvariantViolation reports a logic defect found while building the book.
// It always aborts the build.
type InvariantViolation struct {
	History []quantik.Action
	Reason  string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation at [%s]: %s", quantik.FormatMoves(e.History), e.Reason)
}

// violation builds an InvariantViolation with a stack trace attached.
func violation(history []quantik.Action, format string, args ...interface{}) error {
	h := make([]quantik.Action, len(history))
	copy(h, history)
	return errors.WithStack(&InvariantViolation{
		History: h,
		Reason:  fmt.Sprintf(format, args...),
	})
}

// IsInvariantViolation reports whether err wraps an InvariantViolation
func IsInvariantViolation(err error) bool {
	var v *InvariantViolation
	return errors.As(err, &v)
}

// DefaultGroup returns the board symmetry group. A group that fails to
// close is reported as an InvariantViolation at the root.
func DefaultGroup() (*symmetry.Group, error) {
	g, err := symmetry.Default()
	if err != nil {
		return nil, groupViolation(err)
	}
	return g, nil
}

func groupViolation(err error) error {
	return violation(nil, "symmetry group: %v", err)
}
