package export

import (
	"github.com/arthur-debert/packweaver/pkg/errors"
	"github.com/arthur-debert/packweaver/pkg/types"
	"github.com/rs/zerolog"
)

var transitions = map[types.ExportState][]types.ExportState{
	types.StateInitialized:        {types.StateManifestScaffolded},
	types.StateManifestScaffolded: {types.StateMerging},
	types.StateMerging:            {types.StatePostLinkDecision},
	types.StatePostLinkDecision:   {types.StateFinalized},
}

// machine tracks the lifecycle of one export
type machine struct {
	state  types.ExportState
	logger zerolog.Logger
}

func newMachine(logger zerolog.Logger) *machine {
	return &machine{state: types.StateInitialized, logger: logger}
}

func (m *machine) State() types.ExportState {
	return m.state
}

// advance moves to next. Every non-terminal state may abort.
func (m *machine) advance(next types.ExportState) error {
	if !m.allowed(next) {
		return errors.Newf(errors.ErrInternal, "invalid export transition %s -> %s", m.state, next)
	}
	m.logger.Debug().
		Str("from", string(m.state)).
		Str("to", string(next)).
		Msg("Export state changed")
	m.state = next
	return nil
}

func (m *machine) allowed(next types.ExportState) bool {
	if m.state.IsTerminal() {
		return false
	}
	if next == types.StateAborted {
		return true
	}
	for _, s := range transitions[m.state] {
		if s == next {
			return true
		}
	}
	return false
}
