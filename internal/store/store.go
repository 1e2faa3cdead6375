// ABOUTME: Store interface, quarantine record type, and sentinel errors
// ABOUTME: Defines the persistence contract implemented by FileStore

package store

import (
	"context"
	"errors"

	"github.com/2389/coven-mailstore/internal/message"
)

// ErrNotFound is returned when a requested message does not exist.
var ErrNotFound = errors.New("message not found")

// ErrDuplicateID is returned when creating a message whose id already exists.
var ErrDuplicateID = errors.New("message id already exists")

// ErrCorrupt is returned by Admit when the main dataset cannot be trusted:
// unparseable JSON, a non-object document, a missing version marker, or a
// malformed messages container. The host process must not start serving.
var ErrCorrupt = errors.New("dataset corrupt")

// ErrNameTaken is returned when registering a participant name that has
// already been used. Names are reserved permanently, even across deregistration.
var ErrNameTaken = errors.New("participant name already taken")

// ErrUnknownParticipant is returned when updating a participant that was
// never registered.
var ErrUnknownParticipant = errors.New("participant not registered")

// Flag selects which per-viewer visibility set a mark applies to.
type Flag string

const (
	FlagRead    Flag = "read"
	FlagDeleted Flag = "deleted"
)

// QuarantineRecord holds one record that failed admission, kept for audit.
// Original is the payload exactly as it appeared in the dataset.
type QuarantineRecord struct {
	Original      any    `json:"original"`
	Reason        string `json:"reason"`
	QuarantinedAt string `json:"quarantinedAt"`
}

// Store defines the persistence surface consumed by the mailbox service.
//
// All methods are safe for concurrent use. Messages returned by reads are
// deep copies; mutating them never affects the live index.
type Store interface {
	// Admit runs the startup validation/quarantine pipeline. It must complete
	// successfully before any other method is called, and may be re-run:
	// re-admitting the pipeline's own output changes nothing.
	Admit(ctx context.Context) error

	// GetByID returns the message with the given id, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*message.Message, error)

	// Create writes a new message through to disk before returning.
	Create(ctx context.Context, m *message.Message) error

	// MarkFlag records a per-viewer read/deleted flag. Idempotent: re-marking
	// succeeds without rewriting the backing file. Returns ErrNotFound when
	// the message does not exist.
	MarkFlag(ctx context.Context, id, viewer string, flag Flag) error

	// Snapshot returns a deep copy of every admitted message, ordered by id.
	Snapshot(ctx context.Context) []*message.Message

	// Quarantined returns a copy of the quarantine set.
	Quarantined(ctx context.Context) []QuarantineRecord

	// Participant directory: in-memory only, never persisted.
	RegisterParticipant(ctx context.Context, name string, pid int) error
	UpdateParticipantPID(ctx context.Context, name string, pid int) error
	NameAvailable(ctx context.Context, name string) bool
	Participants(ctx context.Context) []string
}
