// ABOUTME: Engine facade tying the store, thread resolver, and view engine together
// ABOUTME: This is the surface the surrounding API layer consumes

package mailbox

import (
	"context"
	"log/slog"

	"github.com/2389/coven-mailstore/internal/message"
	"github.com/2389/coven-mailstore/internal/store"
	"github.com/2389/coven-mailstore/internal/thread"
	"github.com/2389/coven-mailstore/internal/view"
)

// Service exposes the engine operations over an admitted store. Construct it
// explicitly at process start (construct, admit, serve, dispose) and hand it
// to the API layer; there is no implicit global instance.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

// New wraps an already-admitted store.
func New(st store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, logger: logger.With("component", "mailbox")}
}

// CreateRequest carries the caller-supplied fields for a new message.
// Normalization and id/timestamp assignment happen inside Create.
type CreateRequest struct {
	To      []string
	From    string
	Subject string
	Content string
	ReplyTo string
}

// ThreadResult pairs a requested message with its resolved conversation.
type ThreadResult struct {
	Requested *message.Message
	Root      *message.Message
	Page      *view.Page
}

// Create validates, normalizes, and persists a new message, returning the
// stored form.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*message.Message, error) {
	m, err := message.New(req.To, req.From, req.Subject, req.Content, req.ReplyTo)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, m); err != nil {
		return nil, err
	}
	s.logger.Debug("message created", "id", m.ID, "from", m.From, "recipients", len(m.To))
	return m, nil
}

// GetByID returns the message with the given id, or store.ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (*message.Message, error) {
	return s.store.GetByID(ctx, id)
}

// UpdateFlag marks a message read or deleted for one viewer. Idempotent.
func (s *Service) UpdateFlag(ctx context.Context, id, viewer string, flag store.Flag) error {
	return s.store.MarkFlag(ctx, id, viewer, flag)
}

// Inbox returns one page of the viewer's inbox.
func (s *Service) Inbox(ctx context.Context, viewer string, page, perPage int) (*view.Page, error) {
	msgs := view.Inbox(s.store.Snapshot(ctx), viewer)
	return view.Paginate(msgs, page, perPage)
}

// Audit returns one page of every message involving name, deletion flags
// included and visible.
func (s *Service) Audit(ctx context.Context, name string, page, perPage int) (*view.Page, error) {
	msgs := view.Audit(s.store.Snapshot(ctx), name)
	return view.Paginate(msgs, page, perPage)
}

// Thread resolves the conversation around id and returns one page of its
// members (excluding the requested message itself). Returns store.ErrNotFound
// when id is not in the index.
func (s *Service) Thread(ctx context.Context, id string, page, perPage int) (*ThreadResult, error) {
	snap := s.store.Snapshot(ctx)
	t, ok := thread.Resolve(snap, id)
	if !ok {
		return nil, store.ErrNotFound
	}
	pg, err := view.Paginate(t.Messages, page, perPage)
	if err != nil {
		return nil, err
	}
	return &ThreadResult{Requested: t.Requested, Root: t.Root, Page: pg}, nil
}

// Quarantined returns the quarantine set for audit tooling.
func (s *Service) Quarantined(ctx context.Context) []store.QuarantineRecord {
	return s.store.Quarantined(ctx)
}
