package model

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// The court's archive tabs start at 2006; nothing older is published.
const EarliestArchiveYear = 2006

var ErrInvalidYear = errors.New("invalid year")

// ValidYear parses a year argument and returns it in the canonical 4-digit
// form the archive uses as tab labels. Years outside
// [EarliestArchiveYear, current year] are rejected.
func ValidYear(value string) (string, error) {
	year, err := strconv.Atoi(value)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a number", ErrInvalidYear, value)
	}
	currentYear := time.Now().Year()
	if year < EarliestArchiveYear || year > currentYear {
		return "", fmt.Errorf("%w: must be between %d and %d", ErrInvalidYear, EarliestArchiveYear, currentYear)
	}
	return strconv.Itoa(year), nil
}
