package domain

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"time"
)

var devisNumberPattern = regexp.MustCompile(`^(\d{4})-(\d{2})(\d{2})-(\d{3})$`)

// NewDevisNumber formats a YYYY-MMDD-NNN number for the given day with a
// random three digit suffix.
func NewDevisNumber(now time.Time) string {
	return FormatDevisNumber(now, rand.Intn(1000))
}

func FormatDevisNumber(day time.Time, suffix int) string {
	return fmt.Sprintf("%04d-%02d%02d-%03d", day.Year(), int(day.Month()), day.Day(), suffix%1000)
}

func ValidDevisNumber(number string) bool {
	m := devisNumberPattern.FindStringSubmatch(number)
	if m == nil {
		return false
	}
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	return month >= 1 && month <= 12 && day >= 1 && day <= 31
}
