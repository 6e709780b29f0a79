package model

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidYear(t *testing.T) {
	currentYear := time.Now().Year()

	t.Run("accepts every year in the archive range", func(t *testing.T) {
		for y := EarliestArchiveYear; y <= currentYear; y++ {
			canonical, err := ValidYear(fmt.Sprintf("%d", y))
			assert.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("%d", y), canonical)
		}
	})

	t.Run("rejects years outside the range", func(t *testing.T) {
		testCases := []string{
			"2005",
			"1999",
			fmt.Sprintf("%d", currentYear+1),
			"0",
			"-2010",
		}
		for _, value := range testCases {
			t.Run(value, func(t *testing.T) {
				_, err := ValidYear(value)
				assert.ErrorIs(t, err, ErrInvalidYear)
			})
		}
	})

	t.Run("rejects non-numeric input", func(t *testing.T) {
		for _, value := range []string{"", "twenty21", "20 21", "2021.0"} {
			_, err := ValidYear(value)
			assert.ErrorIs(t, err, ErrInvalidYear)
		}
	})

	t.Run("canonicalizes leading zeros away", func(t *testing.T) {
		canonical, err := ValidYear("02021")
		assert.NoError(t, err)
		assert.Equal(t, "2021", canonical)
	})
}
