package repository

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ID prefixes.
const (
	PrefixClass        = "cls"
	PrefixBooking      = "bkg"
	PrefixEnrollment   = "enr"
	PrefixNotification = "ntf"
	PrefixMaterial     = "mat"
	PrefixWaitlist     = "wl"
	PrefixIntervention = "int"
	PrefixDetection    = "det"
	PrefixSubject      = "sub"
)

// NextSequentialID returns prefix_NNN where NNN is one past the largest numeric
// suffix among existing ids. Ids are never reused after a delete.
func NextSequentialID(prefix string, existing []string) string {
	max := 0
	marker := prefix + "_"
	for _, id := range existing {
		if !strings.HasPrefix(id, marker) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(id, marker))
		if err == nil && n > max {
			max = n
		}
	}
	return SequentialID(prefix, max+1)
}

// SequentialID formats n with at least three digits.
func SequentialID(prefix string, n int) string {
	return fmt.Sprintf("%s_%03d", prefix, n)
}

// ShortID returns prefix_ followed by eight hex characters of a random UUID.
func ShortID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// IDs extracts ids using fn.
func IDs[T any](items []T, fn func(T) string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = fn(item)
	}
	return out
}
