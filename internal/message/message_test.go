// ABOUTME: Tests for message normalization, formats, and per-viewer flag sets
// ABOUTME: Covers id/timestamp strictness and the strict create constructor

package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	n, err := NormalizeName("  Alice ")
	require.NoError(t, err)
	assert.Equal(t, "alice", n)

	n, err = NormalizeName("BOB")
	require.NoError(t, err)
	assert.Equal(t, "bob", n)

	_, err = NormalizeName("   ")
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = NormalizeName("")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestNormalizeNames(t *testing.T) {
	got := NormalizeNames([]string{" Alice ", "BOB", "alice", "", "  ", "Carol"})
	assert.Equal(t, []string{"alice", "bob", "carol"}, got)
}

func TestNormalizeNames_PreservesFirstOccurrence(t *testing.T) {
	got := NormalizeNames([]string{"Bob", "alice", "BOB"})
	assert.Equal(t, []string{"bob", "alice"}, got)
}

func TestValidID(t *testing.T) {
	assert.True(t, ValidID("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
	assert.True(t, ValidID("6BA7B810-9DAD-11D1-80B4-00C04FD430C8"))
	assert.True(t, ValidID(NewID()))

	// Only the canonical hyphenated form is accepted.
	assert.False(t, ValidID("6ba7b8109dad11d180b400c04fd430c8"))
	assert.False(t, ValidID("{6ba7b810-9dad-11d1-80b4-00c04fd430c8}"))
	assert.False(t, ValidID("urn:uuid:6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
	assert.False(t, ValidID("6ba7b810-9dad-11d1-80b4-00c04fd430cZ"))
	assert.False(t, ValidID("not-a-uuid"))
	assert.False(t, ValidID(""))
}

func TestValidTimestamp(t *testing.T) {
	assert.True(t, ValidTimestamp("2026-03-01T12:30:45Z"))
	assert.True(t, ValidTimestamp(NewTimestamp()))

	assert.False(t, ValidTimestamp("2026-03-01T12:30:45"))        // missing Z
	assert.False(t, ValidTimestamp("2026-03-01T12:30:45+02:00"))  // offset
	assert.False(t, ValidTimestamp("2026-03-01 12:30:45Z"))       // wrong separator
	assert.False(t, ValidTimestamp("2026-13-01T12:30:45Z"))       // bad month
	assert.False(t, ValidTimestamp(""))
}

func TestValidTimestamp_RejectsFractionalSeconds(t *testing.T) {
	// time.Parse tolerates a fractional second the layout never asked for;
	// the validator must not.
	assert.False(t, ValidTimestamp("2026-01-02T15:04:05.123Z"))
	assert.False(t, ValidTimestamp("2026-01-02T15:04:05,123Z"))
	assert.False(t, ValidTimestamp("2026-01-02T15:04:05.0Z"))
	assert.False(t, ValidTimestamp("2026-01-02T15:04:05.000000000Z"))
}

func TestNew(t *testing.T) {
	m, err := New([]string{" Alice ", "BOB", "alice"}, " Carol ", "Hello", "body text", "")
	require.NoError(t, err)

	assert.True(t, ValidID(m.ID))
	assert.True(t, ValidTimestamp(m.Timestamp))
	assert.Equal(t, []string{"alice", "bob"}, m.To)
	assert.Equal(t, "carol", m.From)
	assert.Equal(t, "Hello", m.Subject)
	assert.Equal(t, "body text", m.Content)
	assert.Empty(t, m.ReplyTo)
	assert.Empty(t, m.ReadBy)
	assert.Empty(t, m.DeletedBy)
}

func TestNew_NoRecipients(t *testing.T) {
	_, err := New(nil, "carol", "s", "c", "")
	assert.ErrorIs(t, err, ErrNoRecipients)

	_, err = New([]string{"  ", ""}, "carol", "s", "c", "")
	assert.ErrorIs(t, err, ErrNoRecipients)
}

func TestNew_NoSender(t *testing.T) {
	_, err := New([]string{"alice"}, "   ", "s", "c", "")
	assert.ErrorIs(t, err, ErrNoSender)
}

func TestNew_BadReference(t *testing.T) {
	_, err := New([]string{"alice"}, "carol", "s", "c", "not-a-uuid")
	assert.ErrorIs(t, err, ErrBadReference)

	// A well-formed reference is accepted even though nothing checks it resolves.
	m, err := New([]string{"alice"}, "carol", "s", "c", "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	require.NoError(t, err)
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", m.ReplyTo)
}

func TestIsParticipant(t *testing.T) {
	m := &Message{To: []string{"alice", "bob"}, From: "carol"}

	assert.True(t, m.IsParticipant("alice"))
	assert.True(t, m.IsParticipant(" ALICE "))
	assert.True(t, m.IsParticipant("carol"))
	assert.False(t, m.IsParticipant("dave"))
	assert.False(t, m.IsParticipant(""))
}

func TestMarkRead_Idempotent(t *testing.T) {
	m := &Message{ReadBy: []string{}}

	assert.True(t, m.MarkRead(" Alice "))
	assert.False(t, m.MarkRead("alice"))
	assert.Equal(t, []string{"alice"}, m.ReadBy)
	assert.True(t, m.IsReadBy("ALICE"))
}

func TestMarkDeleted_Idempotent(t *testing.T) {
	m := &Message{DeletedBy: []string{}}

	assert.True(t, m.MarkDeleted("bob"))
	assert.False(t, m.MarkDeleted("BOB"))
	assert.Equal(t, []string{"bob"}, m.DeletedBy)
	assert.True(t, m.IsDeletedFor("bob"))
	assert.False(t, m.IsDeletedFor("alice"))
}

func TestClone_DeepCopy(t *testing.T) {
	m := &Message{
		ID:        NewID(),
		To:        []string{"alice"},
		From:      "bob",
		ReadBy:    []string{"alice"},
		DeletedBy: []string{},
	}

	c := m.Clone()
	c.To[0] = "mallory"
	c.ReadBy = append(c.ReadBy, "mallory")

	assert.Equal(t, []string{"alice"}, m.To)
	assert.Equal(t, []string{"alice"}, m.ReadBy)
}

func TestSortNewestFirst(t *testing.T) {
	a := &Message{ID: "b-id", Timestamp: "2026-01-01T00:00:00Z"}
	b := &Message{ID: "a-id", Timestamp: "2026-01-03T00:00:00Z"}
	c := &Message{ID: "c-id", Timestamp: "2026-01-02T00:00:00Z"}
	tie := &Message{ID: "a-tie", Timestamp: "2026-01-01T00:00:00Z"}

	msgs := []*Message{a, b, c, tie}
	SortNewestFirst(msgs)

	assert.Equal(t, []*Message{b, c, tie, a}, msgs)
}
