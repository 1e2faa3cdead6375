// ABOUTME: Thread resolution over an immutable snapshot of the message index
// ABOUTME: Defensive against dangling parents and corrupted parent cycles

package thread

import "github.com/2389/coven-mailstore/internal/message"

// Thread is the resolved conversation around one requested message.
//
// Messages holds every member of the conversation except Requested itself,
// including the root, newest first. Per-viewer deletion flags are not applied:
// a thread is a structural view and keeps messages a participant has deleted.
type Thread struct {
	Requested *message.Message
	Root      *message.Message
	Messages  []*message.Message
}

// Resolve computes the thread containing the message with the given id. It
// reports false when the id is not present in the snapshot.
func Resolve(snapshot []*message.Message, id string) (*Thread, bool) {
	byID := make(map[string]*message.Message, len(snapshot))
	for _, m := range snapshot {
		byID[m.ID] = m
	}
	requested, ok := byID[id]
	if !ok {
		return nil, false
	}

	root := findRoot(byID, requested)
	members := descendants(snapshot, root)

	out := make([]*message.Message, 0, len(members))
	for _, m := range members {
		if m.ID != requested.ID {
			out = append(out, m)
		}
	}
	message.SortNewestFirst(out)

	return &Thread{Requested: requested, Root: root, Messages: out}, true
}

// findRoot walks reply pointers upward with bounded iteration. The chain
// length is corruption-controlled, so recursion is off the table. The walk
// stops at a message with no parent, at a parent that does not resolve (a
// dangling reference counts as "no parent"), or when the next hop has already
// been visited (cycle; the current message becomes the root).
func findRoot(byID map[string]*message.Message, start *message.Message) *message.Message {
	current := start
	visited := map[string]struct{}{current.ID: {}}
	for current.ReplyTo != "" {
		if _, seen := visited[current.ReplyTo]; seen {
			break
		}
		parent, ok := byID[current.ReplyTo]
		if !ok {
			break
		}
		visited[parent.ID] = struct{}{}
		current = parent
	}
	return current
}

// descendants collects the root and everything reachable from it by reply
// edges, via fixed-point iteration: rescan the snapshot until a full pass
// adds nothing. Quadratic in the worst case, which is fine for a single-node
// store with a small dataset; correctness over throughput.
func descendants(snapshot []*message.Message, root *message.Message) []*message.Message {
	inThread := map[string]struct{}{root.ID: {}}
	members := []*message.Message{root}

	for changed := true; changed; {
		changed = false
		for _, m := range snapshot {
			if _, ok := inThread[m.ID]; ok {
				continue
			}
			if m.ReplyTo == "" {
				continue
			}
			if _, ok := inThread[m.ReplyTo]; ok {
				inThread[m.ID] = struct{}{}
				members = append(members, m)
				changed = true
			}
		}
	}
	return members
}
