// Package message defines the Message entity and its normalization and
// validation rules.
//
// # Normalization
//
// Participant names are case-folded and trimmed. Name lists additionally drop
// entries that normalize to empty and deduplicate preserving first occurrence.
//
// # Formats
//
// Message ids are UUIDs in canonical hyphenated form only; compact, braced,
// and URN renderings are rejected. Timestamps use exactly one textual pattern
// (TimeLayout): UTC, second precision, mandatory trailing Z.
//
// # Trust levels
//
// The package exposes two validation levels:
//
//   - ValidateCreate: strict, used for the write path. Any defect rejects the
//     payload; defects are reported as typed FieldError values.
//   - The lenient, repairing path lives in the store's admission pipeline and
//     uses the helpers here (NormalizeNames, ValidID, ValidTimestamp).
//
// All functions are pure; the package performs no I/O.
package message
