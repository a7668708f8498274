// Package manifest scaffolds and finishes the manifests of an export tree.
//
// Scaffold runs before any content is merged: it clones the bundle's
// template for every sub-tree, fills in the header (name, description,
// engine version, fresh uuids) and writes manifest.json, pack_icon.png and
// selected_packs.json. Finish runs after the merge and, for dual-tree
// content types, decides whether the companion sub-tree is kept and linked
// or discarded.
package manifest
