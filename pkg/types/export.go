package types

// OutputFormat tells the archive finalizer which shape the tree has.
type OutputFormat string

const (
	// FormatSingle is one content tree.
	FormatSingle OutputFormat = "single"
	// FormatCombined is a dual-tree export that kept both linked sub-trees.
	FormatCombined OutputFormat = "combined"
)

// ExportState is the lifecycle of one export.
type ExportState string

const (
	StateInitialized        ExportState = "initialized"
	StateManifestScaffolded ExportState = "manifest_scaffolded"
	StateMerging            ExportState = "merging"
	StatePostLinkDecision   ExportState = "post_link_decision"
	StateFinalized          ExportState = "finalized"
	StateAborted            ExportState = "aborted"
)

// IsTerminal reports whether no further transition is possible
func (s ExportState) IsTerminal() bool {
	return s == StateFinalized || s == StateAborted
}
