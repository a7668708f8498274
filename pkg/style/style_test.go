package style

import (
	"fmt"
	"strings"
	"testing"

	"github.com/arthur-debert/packweaver/pkg/errors"
	"github.com/arthur-debert/packweaver/pkg/export"
	"github.com/arthur-debert/packweaver/pkg/merge"
	"github.com/arthur-debert/packweaver/pkg/types"
	"github.com/arthur-debert/packweaver/pkg/ui"
	"github.com/stretchr/testify/assert"
)

func sampleResult() *export.Result {
	return &export.Result{
		ContentType: "behaviour",
		PackName:    "MyPack",
		State:       types.StateFinalized,
		Format:      types.FormatCombined,
		ArchivePath: "/work/MyPack.mcaddon",
		Contributions: []types.Contribution{
			{Source: "/c/packs/compat/a_b", Priority: 999, Group: []string{"a", "b"}},
			{Source: "/c/packs/gameplay/c/files", Priority: 3},
		},
		Stats: merge.Stats{Copied: 4, Appended: 1, Overwritten: 2, Skipped: 1},
	}
}

func TestNewRenderer(t *testing.T) {
	assert.IsType(t, &TerminalRenderer{}, NewRenderer(ui.FormatTerminal))
	assert.IsType(t, &PlainRenderer{}, NewRenderer(ui.FormatText))
}

func TestPlainRenderer(t *testing.T) {
	r := NewPlainRenderer()

	out := r.RenderExport(sampleResult())
	assert.Contains(t, out, "Exported MyPack (behaviour, combined)")
	assert.Contains(t, out, "archive: /work/MyPack.mcaddon")
	assert.Contains(t, out, "merged: 4 copied, 1 appended, 0 structured, 0 manifests")
	assert.Contains(t, out, "overwrites: 2 replaced, 1 kept")

	plan := r.RenderPlan(sampleResult().Contributions)
	assert.Equal(t, "1. [999] /c/packs/compat/a_b (group a+b)\n2. [3] /c/packs/gameplay/c/files (default)", plan)
	assert.Equal(t, "Nothing to merge", r.RenderPlan(nil))

	validations := r.RenderValidations([]Validation{
		{ContentType: "resource", Categories: 3, Groups: 2},
		{ContentType: "behaviour", Err: fmt.Errorf("broken")},
	})
	assert.Equal(t, "ok   resource: 3 categories, 2 compatibility groups\nFAIL behaviour: broken", validations)

	assert.Equal(t, "Error: boom", r.RenderError(fmt.Errorf("boom")))
	assert.Empty(t, r.RenderError(nil))
}

func TestTerminalRenderer(t *testing.T) {
	r := NewTerminalRenderer()

	out := r.RenderExport(sampleResult())
	for _, want := range []string{"MyPack", "behaviour", "combined", "/work/MyPack.mcaddon"} {
		assert.Contains(t, out, want)
	}

	plan := r.RenderPlan(sampleResult().Contributions)
	assert.Contains(t, plan, "/c/packs/compat/a_b")
	assert.Contains(t, plan, "999")
	assert.Contains(t, plan, "Priority")

	errOut := r.RenderError(errors.New(errors.ErrConfigAmbiguous, "overlap"))
	assert.Contains(t, errOut, "CONFIG_AMBIGUOUS")
	assert.Contains(t, errOut, "overlap")
}

func TestRenderMarkdown(t *testing.T) {
	md := "# resource\n\n| Category | Location |\n| --- | --- |\n| Aesthetic | aesthetic |\n"
	assert.Equal(t, md, RenderMarkdown(md, ui.FormatText, 80))

	rendered := RenderMarkdown(md, ui.FormatTerminal, 80)
	assert.True(t, strings.Contains(rendered, "Aesthetic"))
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "    x", Indent("x", 2))
	assert.Equal(t, "x", Indent("x", 0))
}
