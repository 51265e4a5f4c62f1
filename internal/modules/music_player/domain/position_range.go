package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// PositionRange is an inclusive range of 1-based queue positions.
type PositionRange struct {
	Start int
	End   int
}

// ParseRange parses "N" or "N-M".
func ParseRange(s string) (PositionRange, error) {
	s = strings.TrimSpace(s)
	startStr, endStr, isRange := strings.Cut(s, "-")

	start, err := strconv.Atoi(strings.TrimSpace(startStr))
	if err != nil {
		return PositionRange{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	if !isRange {
		return PositionRange{Start: start, End: start}, nil
	}

	end, err := strconv.Atoi(strings.TrimSpace(endStr))
	if err != nil {
		return PositionRange{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	return PositionRange{Start: start, End: end}, nil
}

func (r PositionRange) IsSingle() bool {
	return r.Start == r.End
}

func (r PositionRange) Count() int {
	return r.End - r.Start + 1
}
