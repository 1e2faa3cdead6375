// ABOUTME: 1-indexed pagination with strict page validation
// ABOUTME: Rejects out-of-range pages instead of clamping them

package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/2389/coven-mailstore/internal/message"
)

// ErrInvalidPage is the sentinel matched by errors.Is for every rejected
// page request.
var ErrInvalidPage = errors.New("invalid page")

// PageError describes a rejected page request.
type PageError struct {
	Page       int
	TotalPages int
	Reason     string
}

func (e *PageError) Error() string { return e.Reason }

// Is lets errors.Is(err, ErrInvalidPage) match any PageError.
func (e *PageError) Is(target error) bool { return target == ErrInvalidPage }

// Page is one slice of a filtered message listing.
type Page struct {
	Items      []*message.Message
	Page       int
	PerPage    int
	TotalItems int
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// Paginate slices items into the requested 1-indexed page. Pages below 1 or
// beyond the total are rejected, never clamped. An empty input is special:
// any page >= 1 returns page 1 of 1 with zero items, so callers need not
// special-case emptiness.
func Paginate(items []*message.Message, page, perPage int) (*Page, error) {
	if perPage < 1 {
		return nil, &PageError{Page: page, Reason: fmt.Sprintf("page size must be a positive integer, got %d", perPage)}
	}
	if page < 1 {
		return nil, &PageError{Page: page, Reason: fmt.Sprintf("page must be a positive integer, got %d", page)}
	}

	total := len(items)
	if total == 0 {
		return &Page{Items: []*message.Message{}, Page: 1, PerPage: perPage, TotalItems: 0, TotalPages: 1}, nil
	}

	totalPages := (total + perPage - 1) / perPage
	if page > totalPages {
		return nil, &PageError{Page: page, TotalPages: totalPages, Reason: fmt.Sprintf("page %d exceeds total pages (%d)", page, totalPages)}
	}

	start := (page - 1) * perPage
	end := min(start+perPage, total)
	return &Page{
		Items:      items[start:end],
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}, nil
}

// ParsePage converts a textual page argument to an int. Only clean positive
// integers pass; floats like "1.0" and anything non-numeric are rejected
// rather than truncated.
func ParsePage(s string) (int, error) {
	trimmed := strings.TrimSpace(s)
	n, err := strconv.Atoi(trimmed)
	if err != nil || n < 1 {
		return 0, &PageError{Reason: fmt.Sprintf("page must be a positive integer, got %q", s)}
	}
	return n, nil
}
