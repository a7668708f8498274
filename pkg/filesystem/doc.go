// Package filesystem holds the afero-based helpers shared by the bundle
// loader, the merger, the manifest assembler and the archive finalizer:
// deterministic tree listing, JSON load/dump and file copies.
package filesystem
