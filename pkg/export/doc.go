// Package export runs one export end to end.
//
// An export resolves its selection against the content type's bundle,
// scaffolds the manifests, merges every contribution in order, decides
// the output format and hands the tree to the archive finalizer:
//
//	initialized -> manifest_scaffolded -> merging -> post_link_decision -> finalized
//
// Any error moves the export to aborted. An aborted export leaves neither
// a tree nor an archive behind.
//
// Exports sharing a pack name are serialized: the tree lives at
// <work_dir>/<pack name>, so two of them must never write it at the same
// time. Exports with different names run concurrently.
package export
