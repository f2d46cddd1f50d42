package core

import (
	"fmt"

	"github.com/google/uuid"
)

// NewID returns a new unique identifier (UUID v4 string).
func NewID() string { return uuid.NewString() }

// Position is a location in AgentScript source text. Line and Column are
// 1-based; a zero Position means "unknown".
type Position struct {
	Line   int
	Column int
}

// IsValid reports whether the position refers to an actual source location.
func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
