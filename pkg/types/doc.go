// Package types defines the data shared by the pack composition engine:
// selections, the static per-content-type bundle, resolved contributions,
// manifests, and the export lifecycle.
package types
