package geo

import (
	"fmt"
	"strconv"
	"strings"
)

// GeometryParseError indicates the geometry text is not a usable structured document.
type GeometryParseError struct {
	Err    error
	Reason string
}

func (e *GeometryParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse geometry: %v", e.Err)
	}
	return fmt.Sprintf("parse geometry: %s", e.Reason)
}

func (e *GeometryParseError) Unwrap() error {
	return e.Err
}

// GeometryShapeError indicates a coordinate tree with unexpected nesting.
// Path lists the child indexes from the root to the offending node.
type GeometryShapeError struct {
	Path   []int
	Reason string
}

func (e *GeometryShapeError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("invalid coordinates at root: %s", e.Reason)
	}

	parts := make([]string, len(e.Path))
	for i, p := range e.Path {
		parts[i] = strconv.Itoa(p)
	}

	return fmt.Sprintf("invalid coordinates at [%s]: %s", strings.Join(parts, "]["), e.Reason)
}
