// Package view computes the recipient-filtered, page-sliced listings every
// read path returns. Two views exist: the inbox (participation minus
// per-viewer deletion) and the audit view (participation only, deletion
// flags visible). Pagination is strict: invalid pages are rejected with a
// PageError rather than clamped, except that an empty result set always
// answers as page 1 of 1.
package view
