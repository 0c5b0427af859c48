package content

import (
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	Ascending  = 1
	Descending = -1
)

// SortContent builds a single-field sort stage value.
// An empty field means no sorting and yields nil.
func SortContent(field string, order int) bson.D {
	if field == "" {
		return nil
	}
	return bson.D{{Key: field, Value: order}}
}

// ParseOrder maps a query parameter to a sort direction: a positive integer
// is ascending, anything else descending.
func ParseOrder(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err == nil && n > 0 {
		return Ascending
	}
	return Descending
}

// ParsePage returns the 1-based page number in s, or 1 when s is not a
// positive integer.
func ParsePage(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
