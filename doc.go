/*
Package scstate hosts typed contract state on top of a key-value store
(Bolt, LevelDB, or memory).

The typed layer lives in two subpackages:

1. codec translates scalar values between Go values, stored bytes, the wire
format and strings.

2. kvo addresses the store as a tree of scalars, arrays and maps through
Location key paths.

This package supplies the store: every call runs in its own transaction, sees
its parameters as a read-only dictionary, its contract's state partition as a
Location, and fills a fresh results dictionary.

# Technical Details

**Partitions.**
All state lives in one bucket. Each contract owns the keys under its root
prefix: either pinned in Options.Roots or derived as the 4-byte hname of the
contract name. Roots must not be prefixes of each other.

**Aborts.**
Codec and collection errors are panics. Call and View recover them into
*AbortError and roll the transaction back, so a failed call leaves no writes
behind.

**Snapshots.**
Export writes msgpack: the format version (int), then a map of raw keys to
raw values in key order. Checksum is xxhash64 over uvarint-framed pairs in key
order and does not depend on the backend.
*/
package scstate
