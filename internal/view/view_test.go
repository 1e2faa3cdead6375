// ABOUTME: Tests for the inbox and audit views over in-memory snapshots
// ABOUTME: Inbox honors per-viewer deletion; audit shows everything

package view

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/2389/coven-mailstore/internal/message"
)

func viewMsg(id, from string, to []string, ts string) *message.Message {
	return &message.Message{
		ID:        id,
		From:      from,
		To:        to,
		Timestamp: ts,
		ReadBy:    []string{},
		DeletedBy: []string{},
	}
}

func viewIDs(msgs []*message.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.ID)
	}
	return out
}

func TestInbox_RecipientAndSender(t *testing.T) {
	snapshot := []*message.Message{
		viewMsg("to-alice", "bob", []string{"alice"}, "2026-01-01T00:00:00Z"),
		viewMsg("from-alice", "alice", []string{"carol"}, "2026-01-02T00:00:00Z"),
		viewMsg("strangers", "bob", []string{"carol"}, "2026-01-03T00:00:00Z"),
	}

	got := Inbox(snapshot, "alice")
	assert.Equal(t, []string{"from-alice", "to-alice"}, viewIDs(got))
}

func TestInbox_ExcludesDeletedForViewer(t *testing.T) {
	kept := viewMsg("kept", "bob", []string{"alice"}, "2026-01-01T00:00:00Z")
	gone := viewMsg("gone", "bob", []string{"alice"}, "2026-01-02T00:00:00Z")
	gone.DeletedBy = []string{"alice"}
	otherDeleted := viewMsg("other-deleted", "bob", []string{"alice", "carol"}, "2026-01-03T00:00:00Z")
	otherDeleted.DeletedBy = []string{"carol"}

	got := Inbox([]*message.Message{kept, gone, otherDeleted}, "alice")
	assert.Equal(t, []string{"other-deleted", "kept"}, viewIDs(got))
}

func TestInbox_ViewerNameNormalized(t *testing.T) {
	snapshot := []*message.Message{
		viewMsg("m", "bob", []string{"alice"}, "2026-01-01T00:00:00Z"),
	}

	got := Inbox(snapshot, "  ALICE ")
	assert.Equal(t, []string{"m"}, viewIDs(got))
}

func TestInbox_EmptyViewer(t *testing.T) {
	snapshot := []*message.Message{
		viewMsg("m", "bob", []string{"alice"}, "2026-01-01T00:00:00Z"),
	}

	assert.Empty(t, Inbox(snapshot, "   "))
}

func TestInbox_NewestFirst(t *testing.T) {
	snapshot := []*message.Message{
		viewMsg("old", "bob", []string{"alice"}, "2026-01-01T00:00:00Z"),
		viewMsg("new", "bob", []string{"alice"}, "2026-01-03T00:00:00Z"),
		viewMsg("mid", "bob", []string{"alice"}, "2026-01-02T00:00:00Z"),
	}

	got := Inbox(snapshot, "alice")
	assert.Equal(t, []string{"new", "mid", "old"}, viewIDs(got))
}

func TestAudit_IncludesDeleted(t *testing.T) {
	deleted := viewMsg("deleted", "bob", []string{"alice"}, "2026-01-02T00:00:00Z")
	deleted.DeletedBy = []string{"alice"}
	snapshot := []*message.Message{
		viewMsg("plain", "alice", []string{"bob"}, "2026-01-01T00:00:00Z"),
		deleted,
		viewMsg("strangers", "bob", []string{"carol"}, "2026-01-03T00:00:00Z"),
	}

	got := Audit(snapshot, "Alice")
	assert.Equal(t, []string{"deleted", "plain"}, viewIDs(got))
	// Flag sets stay visible so the caller can see who deleted what.
	assert.Equal(t, []string{"alice"}, got[0].DeletedBy)
}

func TestAudit_EmptyName(t *testing.T) {
	snapshot := []*message.Message{
		viewMsg("m", "bob", []string{"alice"}, "2026-01-01T00:00:00Z"),
	}

	assert.Empty(t, Audit(snapshot, ""))
}
