// Package mailbox is the engine facade: the seven operations the surrounding
// API layer consumes (create, lookup, flag updates, inbox, audit, thread,
// quarantine inspection) composed from the store, the thread resolver, and
// the view engine. The facade holds no state of its own beyond the store
// handle and performs no transport concerns.
package mailbox
