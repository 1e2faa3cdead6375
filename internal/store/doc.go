// Package store provides the persisted message index backing the mailbox
// service.
//
// # Files
//
// Two JSON documents live in the data directory:
//
//   - messages.json: {"version": 1, "messages": [...]} — the single source
//     of truth for message content and per-viewer flags.
//   - quarantine.json: {"version": 1, "quarantined": [...]} — append-mostly
//     records rejected during admission, kept for audit only.
//
// # Admission
//
// Admit runs once at process start and turns the on-disk dataset into a
// trusted in-memory index:
//
//   - missing file: an empty dataset is synthesized
//   - unparseable file or missing version marker: fatal (ErrCorrupt)
//   - unsupported version: file renamed to <name>.old.<timestamp>, fresh start
//   - textual "1" version: coerced in place
//   - duplicate ids: every copy quarantined
//   - per-record defects: representational ones repaired, the rest quarantined
//
// Quarantine-file defects never block startup; the file is renamed to
// <name>.bak.<timestamp> and a fresh set started, because quarantine is
// diagnostic rather than authoritative.
//
// # Concurrency
//
// One RWMutex serializes writers (index mutation plus full-file rewrite);
// readers run concurrently with each other. Reads return deep copies, so
// callers can never reach the live index through a returned message.
//
// # Errors
//
//   - ErrCorrupt: fatal admission failure, host must not start
//   - ErrNotFound: lookup miss
//   - ErrDuplicateID: create collision
//   - ErrNameTaken / ErrUnknownParticipant: participant directory
//
// All methods accept a context.Context for interface symmetry with the rest
// of the codebase; the engine has no internal cancellation and every write
// runs to completion or fails loudly.
package store
