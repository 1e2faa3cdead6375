// ABOUTME: Recipient-filtered views over a message snapshot
// ABOUTME: Inbox honors per-viewer deletion; the audit view deliberately does not

package view

import (
	"slices"

	"github.com/2389/coven-mailstore/internal/message"
)

// Inbox returns the messages the viewer can see: every message where the
// viewer is a recipient or the sender and has not deleted it, newest first.
func Inbox(msgs []*message.Message, viewer string) []*message.Message {
	v, err := message.NormalizeName(viewer)
	if err != nil {
		return []*message.Message{}
	}

	out := make([]*message.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.From != v && !slices.Contains(m.To, v) {
			continue
		}
		if slices.Contains(m.DeletedBy, v) {
			continue
		}
		out = append(out, m)
	}
	message.SortNewestFirst(out)
	return out
}

// Audit returns every message involving name, with no deletion filtering at
// all, newest first. Per-viewer read and delete sets stay on the returned
// messages so the caller sees exactly who read and who deleted what.
func Audit(msgs []*message.Message, name string) []*message.Message {
	n, err := message.NormalizeName(name)
	if err != nil {
		return []*message.Message{}
	}

	out := make([]*message.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.From == n || slices.Contains(m.To, n) {
			out = append(out, m)
		}
	}
	message.SortNewestFirst(out)
	return out
}
