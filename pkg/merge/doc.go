// Package merge is the content merger of the pack composition engine.
//
// A Merger owns one destination tree for the duration of an export and
// applies resolved contributions to it strictly in order. Every source is
// listed depth first in lexicographic order and each entry is handled by
// the policy its classification selects:
//
//   - directories are created when missing
//   - manifest.json files merge modules, dependencies and authors
//   - plain-text script and language files are appended
//   - other JSON files are merged key by key, the newer source winning
//   - everything else is copied, and replaced later only by a contribution
//     of strictly greater priority
//
// Merging never deletes content. The first error aborts the merge and
// leaves the destination partially written.
package merge
