// Package ht implements a chained hash table keyed by arbitrary byte strings.
//
// # Structure
//
// A Table owns an array of slots, each heading a singly linked chain of
// elements. Elements live in an arena and are linked by index, so relinking
// on resize never touches key bytes. Every element holds:
//   - a copy of its key bytes, obtained from the table's alloc.Allocator and
//     returned to it on removal or Close;
//   - the cached hash of the key, reused when the table is rehashed;
//   - the value. The table stores the value as given; when V is a pointer
//     or reference type the referenced data stays owned by the caller.
//
// # Hashing
//
// Keys are hashed with FNV-1a over the raw key bytes, using the 64-bit
// variant on 64-bit platforms and the 32-bit variant otherwise. The hash is
// not resistant to adversarial keys. WithHasher selects another function,
// e.g. XXHash.
//
// # Resizing
//
// New sizes the slot array as avgCount*10/8+1. After every insert and delete
// the table checks its load:
//   - tables holding fewer than 4 elements never resize;
//   - with target = (cap-1)*8/10, nothing happens while target/4 < count < target;
//   - otherwise the table is rehashed to count*2*10/8+1 slots.
//
// The band between target/4 and target keeps alternating inserts and deletes
// from triggering repeated rehashes.
//
// # Typed keys
//
// The String accessors store a key as its bytes followed by a zero byte. The
// Int64 and Uint64 accessors store the 8 bytes of the integer in host byte
// order, which makes integer-keyed tables endianness dependent.
//
// # Lookups
//
// Get and Pop report presence explicitly, so a stored zero value is never
// confused with a missing key.
//
// # Iteration
//
// Iter walks the table slot by slot and chain by chain. The order is
// unspecified but deterministic for a given table state. Any mutation
// invalidates running iterators.
//
// # Concurrency
//
// A Table is not safe for concurrent use; callers must synchronize access.
package ht
