package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/navscout/internal/model"
)

// MarkdownWriter outputs reports in Markdown format for documentation and
// sharing, using the nao1215/markdown builder.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	if report == nil {
		return 0, ErrNilReport
	}

	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeNavigation(md, report)
	w.writeRoutes(md, report)
	w.writeFailures(md, report)
	w.writeSkipped(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with exploration information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("Navigation Exploration Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Base URL", "`" + report.BaseURL + "`"},
			{"Exploration Domain", "`" + report.ExplorationDomain + "`"},
			{"Explored At", report.Summary.Timestamp.Format("2006-01-02 15:04:05 MST")},
			{"Duration", strconv.FormatInt(report.Summary.DurationMs, 10) + " ms"},
			{"Status", statusText(report)},
		},
	})
	md.PlainText("")
}

func statusText(report *model.Report) string {
	if report.Summary.Cancelled {
		return "⚠️ Cancelled (partial results)"
	}
	return "✅ Complete"
}

// writeSummary writes the count table, a pie chart, and an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.Report) {
	md.H2("Summary")
	md.PlainText("")

	s := report.Summary
	c := report.Configuration
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Discovered routes", strconv.Itoa(s.TotalDiscovered)},
			{"Failed routes", strconv.Itoa(s.TotalFailed)},
			{"Skipped logout links", strconv.Itoa(s.TotalSkippedLogout)},
			{"Attempted", strconv.Itoa(s.TotalAttempted)},
			{"Menus", strconv.Itoa(s.TotalMenus)},
			{"Page budget", strconv.Itoa(c.MaxPages)},
		},
	})
	md.PlainText("")

	if s.TotalDiscovered+s.TotalFailed+s.TotalSkippedLogout > 0 {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of route outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.Report) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Route Outcomes"),
		piechart.WithShowData(true),
	)

	s := report.Summary
	if s.TotalDiscovered > 0 {
		chart.LabelAndIntValue("Discovered", uint64(s.TotalDiscovered))
	}
	if s.TotalFailed > 0 {
		chart.LabelAndIntValue("Failed", uint64(s.TotalFailed))
	}
	if s.TotalSkippedLogout > 0 {
		chart.LabelAndIntValue("Skipped (logout)", uint64(s.TotalSkippedLogout))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert describing how complete the exploration is.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.Report) {
	s := report.Summary
	switch {
	case s.Cancelled:
		md.Warningf(
			"Exploration was cancelled. The report covers %d route(s) discovered before it stopped.",
			s.TotalDiscovered,
		)
	case s.TotalDiscovered == 0:
		md.Cautionf("No routes were discovered. Check the start URL and the saved authentication state.")
	case s.TotalFailed > 0:
		md.Importantf("%d route(s) failed after %d retries.", s.TotalFailed, report.Configuration.MaxRetries)
	case s.TotalDiscovered >= report.Configuration.MaxPages:
		md.Note("The page budget was reached. Raise max pages to explore further.")
	default:
		md.Tip("Every reachable route was explored.")
	}
	md.PlainText("")
}

// writeNavigation writes the menu hierarchy.
func (w *MarkdownWriter) writeNavigation(md *markdown.Markdown, report *model.Report) {
	md.H2("Navigation Structure")
	md.PlainText("")

	if len(report.NavigationStructure) == 0 {
		md.PlainText("No navigation menus detected.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.NavigationStructure))
	for i, g := range report.NavigationStructure {
		rows[i] = []string{
			g.MenuName,
			string(g.MenuType),
			strconv.Itoa(g.RouteCount),
			strconv.Itoa(len(g.SubMenus)),
			strconv.Itoa(len(g.ObservedPages)),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Menu", "Type", "Routes", "Sub-menus", "Seen On"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, g := range report.NavigationStructure {
		if g.RouteCount == 0 && len(g.SubMenus) == 0 {
			continue
		}
		md.H3(g.MenuName)
		md.PlainText("")
		if len(g.Routes) > 0 {
			md.BulletList(codeSpans(g.Routes)...)
			md.PlainText("")
		}
		for _, sub := range g.SubMenus {
			if sub.RouteCount == 0 {
				continue
			}
			md.Details(sub.Name, strings.Join(sub.Routes, "\n"))
		}
		md.PlainText("")
	}

	meta := report.NavigationMetadata
	md.PlainTextf("%d menus (%d main, %d sub-menus), %d standalone pages, %d pages scanned.",
		meta.TotalMenus, meta.MainMenus, meta.TotalSubMenus, meta.StandalonePages, meta.PagesScanned)
	md.PlainText("")
}

// writeRoutes writes the discovered routes in crawl order.
func (w *MarkdownWriter) writeRoutes(md *markdown.Markdown, report *model.Report) {
	md.H2("Discovered Routes")
	md.PlainText("")

	if len(report.DiscoveredRoutes) == 0 {
		md.PlainText("No routes discovered.")
		md.PlainText("")
		return
	}

	md.BulletList(codeSpans(report.DiscoveredRoutes)...)
	md.PlainText("")
}

// writeFailures writes a table of routes that failed after all retries.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.Report) {
	if !report.HasFailures() {
		return
	}

	md.H2("Failed Routes")
	md.PlainText("")

	rows := make([][]string, len(report.FailedRoutes))
	for i, f := range report.FailedRoutes {
		rows[i] = []string{
			"`" + f.NormalizedPath + "`",
			string(f.ErrorType),
			strconv.Itoa(f.RetryAttempts),
			truncateString(f.Error, 60),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Route", "Error Type", "Attempts", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSkipped writes logout links that were never followed.
func (w *MarkdownWriter) writeSkipped(md *markdown.Markdown, report *model.Report) {
	if len(report.SkippedLogoutRoutes) == 0 {
		return
	}

	md.H2("Skipped Logout Links")
	md.PlainText("")
	md.BulletList(codeSpans(report.SkippedLogoutRoutes)...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [navscout](https://github.com/nao1215/navscout)*")
}

func codeSpans(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = "`" + s + "`"
	}
	return out
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
