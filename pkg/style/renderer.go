package style

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arthur-debert/packweaver/pkg/errors"
	"github.com/arthur-debert/packweaver/pkg/export"
	"github.com/arthur-debert/packweaver/pkg/types"
	"github.com/arthur-debert/packweaver/pkg/ui"
	"github.com/pterm/pterm"
)

// Validation is the outcome of validating one content type
type Validation struct {
	ContentType string
	Categories  int
	Groups      int
	Err         error
}

// Renderer turns command results into human readable text
type Renderer interface {
	RenderExport(res *export.Result) string
	RenderPlan(contributions []types.Contribution) string
	RenderValidations(results []Validation) string
	RenderError(err error) string
}

// NewRenderer returns the renderer for a resolved human format
func NewRenderer(f ui.Format) Renderer {
	if f == ui.FormatTerminal {
		return NewTerminalRenderer()
	}
	return NewPlainRenderer()
}

// TerminalRenderer implements Renderer with rich terminal output
type TerminalRenderer struct{}

// NewTerminalRenderer creates a new terminal renderer
func NewTerminalRenderer() *TerminalRenderer {
	return &TerminalRenderer{}
}

// RenderExport renders a boxed summary of a finished export
func (r *TerminalRenderer) RenderExport(res *export.Result) string {
	var b strings.Builder
	b.WriteString(SuccessIndicator + " " + TitleStyle.Render("Exported "+res.PackName) + "\n\n")

	row := func(label, value string) {
		b.WriteString(LabelStyle.Render(label) + value + "\n")
	}
	row("Content type", res.ContentType)
	row("Format", string(res.Format))
	if res.ArchivePath != "" {
		row("Archive", PathStyle.Render(res.ArchivePath))
	}
	if res.TreePath != "" {
		row("Tree", PathStyle.Render(res.TreePath))
	}
	row("Sources", strconv.Itoa(len(res.Contributions)))
	row("Merged", fmt.Sprintf("%d copied, %d appended, %d structured, %d manifests",
		res.Stats.Copied, res.Stats.Appended, res.Stats.Structured, res.Stats.Manifests))
	row("Overwrites", fmt.Sprintf("%d replaced, %d kept", res.Stats.Overwritten, res.Stats.Skipped))
	for _, m := range res.Manifests {
		row("Manifest", MutedStyle.Render(m.UUID()))
	}

	return BoxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// RenderPlan renders contributions as a table in application order
func (r *TerminalRenderer) RenderPlan(contributions []types.Contribution) string {
	if len(contributions) == 0 {
		return MutedStyle.Render("Nothing to merge")
	}

	data := pterm.TableData{{"#", "Kind", "Priority", "Source"}}
	for i, c := range contributions {
		kind := DefaultStyle.Render("default")
		if len(c.Group) > 0 {
			kind = GroupStyle.Render("group " + strings.Join(c.Group, "+"))
		}
		data = append(data, []string{strconv.Itoa(i + 1), kind, strconv.Itoa(c.Priority), c.Source})
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return NewPlainRenderer().RenderPlan(contributions)
	}
	return strings.TrimRight(out, "\n")
}

// RenderValidations renders one status line per content type
func (r *TerminalRenderer) RenderValidations(results []Validation) string {
	var b strings.Builder
	for _, v := range results {
		if v.Err != nil {
			b.WriteString(fmt.Sprintf("%s %s %s\n", ErrorIndicator, TitleStyle.Render(v.ContentType), ErrorStyle.Render(v.Err.Error())))
			continue
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n", SuccessIndicator, TitleStyle.Render(v.ContentType),
			MutedStyle.Render(fmt.Sprintf("%d categories, %d compatibility groups", v.Categories, v.Groups))))
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderError renders an error with its code when it carries one
func (r *TerminalRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		return fmt.Sprintf("%s Error [%s]: %s",
			pterm.Error.Prefix.Text,
			pterm.Error.MessageStyle.Sprint(string(code)),
			err.Error())
	}
	return fmt.Sprintf("%s %s", pterm.Error.Prefix.Text, pterm.Error.MessageStyle.Sprint(err.Error()))
}

// PlainRenderer implements Renderer with plain text output (no styling)
type PlainRenderer struct{}

// NewPlainRenderer creates a new plain text renderer
func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{}
}

// RenderExport renders a plain export summary
func (r *PlainRenderer) RenderExport(res *export.Result) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Exported %s (%s, %s)\n", res.PackName, res.ContentType, res.Format))
	if res.ArchivePath != "" {
		b.WriteString(fmt.Sprintf("  archive: %s\n", res.ArchivePath))
	}
	if res.TreePath != "" {
		b.WriteString(fmt.Sprintf("  tree: %s\n", res.TreePath))
	}
	b.WriteString(fmt.Sprintf("  sources: %d\n", len(res.Contributions)))
	b.WriteString(fmt.Sprintf("  merged: %d copied, %d appended, %d structured, %d manifests\n",
		res.Stats.Copied, res.Stats.Appended, res.Stats.Structured, res.Stats.Manifests))
	b.WriteString(fmt.Sprintf("  overwrites: %d replaced, %d kept\n", res.Stats.Overwritten, res.Stats.Skipped))
	return strings.TrimRight(b.String(), "\n")
}

// RenderPlan renders one line per contribution
func (r *PlainRenderer) RenderPlan(contributions []types.Contribution) string {
	if len(contributions) == 0 {
		return "Nothing to merge"
	}

	var b strings.Builder
	for i, c := range contributions {
		kind := "default"
		if len(c.Group) > 0 {
			kind = "group " + strings.Join(c.Group, "+")
		}
		b.WriteString(fmt.Sprintf("%d. [%d] %s (%s)\n", i+1, c.Priority, c.Source, kind))
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderValidations renders one plain line per content type
func (r *PlainRenderer) RenderValidations(results []Validation) string {
	var b strings.Builder
	for _, v := range results {
		if v.Err != nil {
			b.WriteString(fmt.Sprintf("FAIL %s: %s\n", v.ContentType, v.Err.Error()))
			continue
		}
		b.WriteString(fmt.Sprintf("ok   %s: %d categories, %d compatibility groups\n", v.ContentType, v.Categories, v.Groups))
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderError renders a plain error message
func (r *PlainRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %s", err.Error())
}
