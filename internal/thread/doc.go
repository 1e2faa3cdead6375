// Package thread rebuilds conversation trees from the flat parent-pointer
// dataset. Resolution is defensive: parent chains may be arbitrarily long,
// dangle, or form cycles, and Resolve terminates with a finite result in
// every case. It operates on a snapshot taken from the store, never on the
// live index.
package thread
