package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/navscout/internal/model"
)

// SimpleWriter outputs a human-readable text report for the terminal.
// Output is plain ASCII so it can be piped to files without escape codes.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether empty sections are shown.
	showEmpty bool

	// verbose lists every discovered route and menu route.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	if report == nil {
		return 0, ErrNilReport
	}

	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeNavigation(&sb, report)
	w.writeRoutes(&sb, report)
	w.writeFailures(&sb, report)
	w.writeSkipped(&sb, report)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeHeader writes the report header with exploration information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.Report) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                     NAVSCOUT EXPLORATION REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Base URL:       %s\n", report.BaseURL)
	fmt.Fprintf(sb, "Domain:         %s\n", report.ExplorationDomain)
	fmt.Fprintf(sb, "Explored At:    %s\n", report.Summary.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Duration:       %dms\n", report.Summary.DurationMs)

	if report.Summary.Cancelled {
		sb.WriteString("Status:         CANCELLED (partial results)\n")
	} else {
		sb.WriteString("Status:         Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the route counts.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.Report) {
	section(sb, "SUMMARY")

	s := report.Summary
	fmt.Fprintf(sb, "  DISCOVERED:     %d\n", s.TotalDiscovered)
	fmt.Fprintf(sb, "  FAILED:         %d\n", s.TotalFailed)
	fmt.Fprintf(sb, "  SKIPPED LOGOUT: %d\n", s.TotalSkippedLogout)
	fmt.Fprintf(sb, "  ATTEMPTED:      %d of max %d pages\n", s.TotalAttempted, report.Configuration.MaxPages)
	fmt.Fprintf(sb, "  MENUS:          %d\n", s.TotalMenus)
	sb.WriteString("\n")
}

// writeNavigation writes the menu hierarchy as an indented tree.
func (w *SimpleWriter) writeNavigation(sb *strings.Builder, report *model.Report) {
	if len(report.NavigationStructure) == 0 && !w.showEmpty {
		return
	}

	section(sb, "NAVIGATION STRUCTURE")

	if len(report.NavigationStructure) == 0 {
		sb.WriteString("  No navigation menus detected\n\n")
		return
	}

	for _, g := range report.NavigationStructure {
		fmt.Fprintf(sb, "  [%s] %s (%d routes)\n", g.MenuType, g.MenuName, g.RouteCount)
		if w.verbose {
			for _, r := range g.Routes {
				fmt.Fprintf(sb, "      %s\n", r)
			}
		}
		for _, sub := range g.SubMenus {
			fmt.Fprintf(sb, "    - %s (%d routes)\n", sub.Name, sub.RouteCount)
			if w.verbose {
				for _, r := range sub.Routes {
					fmt.Fprintf(sb, "        %s\n", r)
				}
			}
		}
	}

	meta := report.NavigationMetadata
	fmt.Fprintf(sb, "\n  %d menus, %d main, %d sub-menus, %d standalone pages, %d pages scanned\n\n",
		meta.TotalMenus, meta.MainMenus, meta.TotalSubMenus, meta.StandalonePages, meta.PagesScanned)
}

// writeRoutes lists discovered routes in verbose mode.
func (w *SimpleWriter) writeRoutes(sb *strings.Builder, report *model.Report) {
	if !w.verbose {
		return
	}
	if len(report.DiscoveredRoutes) == 0 && !w.showEmpty {
		return
	}

	section(sb, "DISCOVERED ROUTES")

	if len(report.DiscoveredRoutes) == 0 {
		sb.WriteString("  No routes discovered\n\n")
		return
	}
	for _, r := range report.DiscoveredRoutes {
		fmt.Fprintf(sb, "  [+] %s\n", r)
	}
	sb.WriteString("\n")
}

// writeFailures writes routes that failed after all retries.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, report *model.Report) {
	if !report.HasFailures() && !w.showEmpty {
		return
	}

	section(sb, "FAILED ROUTES")

	if !report.HasFailures() {
		sb.WriteString("  No failed routes\n\n")
		return
	}

	for _, f := range report.FailedRoutes {
		fmt.Fprintf(sb, "  [!] %s (%s, %d attempts)\n", f.URL, f.ErrorType, f.RetryAttempts)
		if w.verbose {
			fmt.Fprintf(sb, "      Error: %s\n", f.Error)
		}
	}
	sb.WriteString("\n")
}

// writeSkipped writes logout links that were never followed.
func (w *SimpleWriter) writeSkipped(sb *strings.Builder, report *model.Report) {
	if len(report.SkippedLogoutRoutes) == 0 && !w.showEmpty {
		return
	}

	section(sb, "SKIPPED LOGOUT LINKS")

	if len(report.SkippedLogoutRoutes) == 0 {
		sb.WriteString("  No logout links found\n\n")
		return
	}
	for _, u := range report.SkippedLogoutRoutes {
		fmt.Fprintf(sb, "  [-] %s\n", u)
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by navscout\n")
	sb.WriteString("https://github.com/nao1215/navscout\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
