// Package civs provides in-memory, cascading, ordered associative
// containers: CivSet[K] and CivMap[K,V].
//
// Both are built on the same log-structured-merge shape. A small mutable
// write buffer (the slot) absorbs inserts and removes directly. Once it
// fills, its contents are merged with the lowest contiguous run of
// already-occupied, size-doubling sorted runs into the smallest empty run,
// and the buffer is left empty again. Removing a key that has already been
// promoted into a run does not move any storage; it only clears that
// entry's live bit. A run whose live bits have thinned out past a
// configurable density threshold is redistributed back down into smaller,
// freshly emptied runs the next time it is touched by a merge, reclaiming
// the space its tombstones left behind.
//
// There is no background goroutine and no locking anywhere in this
// package: every exported method runs synchronously on the calling
// goroutine and a CivSet/CivMap value must not be shared across
// goroutines without external synchronization, exactly like a built-in
// map.
//
// Construction takes functional options (OptSlotSize, OptTombsLimit,
// OptLogger); invalid parameters panic at construction rather than being
// silently clamped. See Config for the full list and their environment
// variable overrides.
package civs
