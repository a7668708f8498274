package types

// Contribution is one resolved source directory and the weight its binary
// assets carry. The order of a contribution list is significant.
type Contribution struct {
	Source   string `json:"source" yaml:"source"`
	Priority int    `json:"priority" yaml:"priority"`
	// Group is set when the source is a compatibility group.
	Group []string `json:"group,omitempty" yaml:"group,omitempty"`
}
