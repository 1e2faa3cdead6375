// ABOUTME: Message entity, participant normalization, and id/timestamp formats
// ABOUTME: Pure data and pure functions; no I/O and no dependencies on storage

package message

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimeLayout is the only timestamp format the store reads or writes:
// UTC, second precision, mandatory trailing Z, no fractional seconds.
const TimeLayout = "2006-01-02T15:04:05Z"

// ErrEmptyName is returned when a participant name is empty after normalization.
var ErrEmptyName = errors.New("empty participant name")

// ErrNoRecipients is returned when a message has no valid recipients.
var ErrNoRecipients = errors.New("message needs at least one recipient")

// ErrNoSender is returned when a message has no valid sender.
var ErrNoSender = errors.New("message needs a sender")

// ErrBadReference is returned when a reply reference is not a well-formed id.
var ErrBadReference = errors.New("reply reference is not a valid id")

// Message is the sole persisted entity. ID, participants, subject, content,
// timestamp, and the reply edge are immutable after creation; only ReadBy and
// DeletedBy mutate, and they record per-viewer state rather than message content.
type Message struct {
	ID        string   `json:"id"`
	To        []string `json:"to"`
	From      string   `json:"from"`
	Subject   string   `json:"subject"`
	Content   string   `json:"content"`
	Timestamp string   `json:"timestamp"`
	ReplyTo   string   `json:"isResponseTo,omitempty"`
	ReadBy    []string `json:"readBy"`
	DeletedBy []string `json:"deletedBy"`
}

// New builds a normalized message from caller-supplied fields, assigning a
// fresh id and the current UTC timestamp. The reply reference is validated
// for form only; it is allowed to point at a message that does not exist.
func New(to []string, from, subject, content, replyTo string) (*Message, error) {
	recipients := NormalizeNames(to)
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	sender, err := NormalizeName(from)
	if err != nil {
		return nil, ErrNoSender
	}
	if replyTo != "" && !ValidID(replyTo) {
		return nil, fmt.Errorf("%w: %q", ErrBadReference, replyTo)
	}
	return &Message{
		ID:        NewID(),
		To:        recipients,
		From:      sender,
		Subject:   subject,
		Content:   content,
		Timestamp: NewTimestamp(),
		ReplyTo:   replyTo,
		ReadBy:    []string{},
		DeletedBy: []string{},
	}, nil
}

// NormalizeName lowercases and trims a participant name.
func NormalizeName(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return "", ErrEmptyName
	}
	return n, nil
}

// NormalizeNames lowercases and trims every name, drops entries that are empty
// after normalization, and deduplicates preserving first occurrence.
func NormalizeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, raw := range names {
		n := strings.ToLower(strings.TrimSpace(raw))
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// NewID returns a fresh message id in canonical hyphenated form.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether s is an id in canonical hyphenated form
// (8-4-4-4-12 hex). Braced, URN, and compact UUID renderings are rejected.
func ValidID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// NewTimestamp renders the current time in TimeLayout.
func NewTimestamp() string {
	return time.Now().UTC().Format(TimeLayout)
}

// ValidTimestamp reports whether s matches TimeLayout exactly. time.Parse
// accepts a fractional second even when the layout has none, so the length
// check is what holds the format to second precision.
func ValidTimestamp(s string) bool {
	if len(s) != len(TimeLayout) || !strings.HasSuffix(s, "Z") {
		return false
	}
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}

// IsParticipant reports whether name (normalized) is a recipient or the sender.
func (m *Message) IsParticipant(name string) bool {
	n, err := NormalizeName(name)
	if err != nil {
		return false
	}
	return n == m.From || slices.Contains(m.To, n)
}

// IsReadBy reports whether the viewer has marked the message read.
func (m *Message) IsReadBy(viewer string) bool {
	n, err := NormalizeName(viewer)
	if err != nil {
		return false
	}
	return slices.Contains(m.ReadBy, n)
}

// IsDeletedFor reports whether the viewer has deleted the message for themselves.
func (m *Message) IsDeletedFor(viewer string) bool {
	n, err := NormalizeName(viewer)
	if err != nil {
		return false
	}
	return slices.Contains(m.DeletedBy, n)
}

// MarkRead adds the viewer to the read set. It reports whether the set changed;
// re-marking is a no-op.
func (m *Message) MarkRead(viewer string) bool {
	n, err := NormalizeName(viewer)
	if err != nil || slices.Contains(m.ReadBy, n) {
		return false
	}
	m.ReadBy = append(m.ReadBy, n)
	return true
}

// MarkDeleted adds the viewer to the deleted set. It reports whether the set
// changed; re-marking is a no-op.
func (m *Message) MarkDeleted(viewer string) bool {
	n, err := NormalizeName(viewer)
	if err != nil || slices.Contains(m.DeletedBy, n) {
		return false
	}
	m.DeletedBy = append(m.DeletedBy, n)
	return true
}

// Clone returns a deep copy. The store hands out clones so callers can never
// mutate the live index through a returned message.
func (m *Message) Clone() *Message {
	c := *m
	c.To = slices.Clone(m.To)
	c.ReadBy = slices.Clone(m.ReadBy)
	c.DeletedBy = slices.Clone(m.DeletedBy)
	return &c
}

// SortNewestFirst orders messages by timestamp descending. Ties break on id
// ascending so the order is deterministic. Lexicographic comparison of
// TimeLayout strings is chronological because the format is fixed-width UTC.
func SortNewestFirst(msgs []*Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].Timestamp != msgs[j].Timestamp {
			return msgs[i].Timestamp > msgs[j].Timestamp
		}
		return msgs[i].ID < msgs[j].ID
	})
}
