package cmd

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rubiojr/stusearch/pkg/controller"
	"github.com/rubiojr/stusearch/pkg/history"
	"github.com/rubiojr/stusearch/pkg/realtime"
	"github.com/rubiojr/stusearch/pkg/render"
	"github.com/rubiojr/stusearch/pkg/student"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			Margin(1, 0, 0, 0)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Margin(0, 0, 1, 2)

	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Margin(1, 0)

	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0a0e17")).
			Padding(0, 1)

	severityTitle = cases.Title(language.Und)
	stripMarkup   = bluemonday.StrictPolicy()
)

// clean strips any markup from backend supplied text before it reaches the
// terminal.
func clean(s string) string {
	return html.UnescapeString(stripMarkup.Sanitize(s))
}

func formatStatusBar(s controller.State) string {
	total := student.MissingValue
	if s.TotalRecords != nil {
		total = render.FormatCount(*s.TotalRecords)
	}
	latency := student.MissingValue
	if s.HasLatency {
		latency = render.FormatLatency(s.Latency)
	}

	status := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(s.Status.Color())).Render(string(s.Status))
	return titleStyle.Render("STUDENT_DATABASE") + "\n" + fmt.Sprintf("%s %s  %s %s  %s %s  %s %d\n",
		labelStyle.Render("STATUS"), status,
		labelStyle.Render("TOTAL_RECORDS"), total,
		labelStyle.Render("RESPONSE_TIME"), latency,
		labelStyle.Render("RESULTS"), s.ResultCount,
	)
}

func formatStats(s controller.State) string {
	var out strings.Builder
	out.WriteString(formatStatusBar(s))
	if len(s.Columns) == 0 {
		out.WriteString(noDataStyle.Render("No column information available."))
		out.WriteString("\n")
		return out.String()
	}
	out.WriteString(headerStyle.Render(fmt.Sprintf("Columns (%d)", len(s.Columns))))
	out.WriteString("\n")
	for _, col := range s.Columns {
		fmt.Fprintf(&out, "  %s\n", clean(col))
	}
	return out.String()
}

// formatResults renders the result area the way the page does: nothing
// before the first search, a no-results box, or one card per record.
func formatResults(s controller.State) string {
	var out strings.Builder

	switch {
	case s.ShowPlaceholder:
		out.WriteString(noDataStyle.Render("READY_FOR_QUERY"))
		out.WriteString("\n")
	case s.NoResults:
		out.WriteString(noDataStyle.Render(fmt.Sprintf("NO_RESULTS_FOUND: %q bo'yicha hech qanday natija topilmadi.", clean(s.LastTerm))))
		out.WriteString("\n")
	default:
		for _, c := range s.Cards {
			out.WriteString(formatCard(c))
			out.WriteString("\n")
		}
	}
	return out.String()
}

func formatCard(c student.Card) string {
	var body strings.Builder
	body.WriteString(metaStyle.Render("ID: "+clean(c.ID)) + "  " + labelStyle.Render(c.Status) + "\n")
	body.WriteString(nameStyle.Render(clean(c.Name)) + "\n")
	fmt.Fprintf(&body, "%s %s  %s %s\n",
		labelStyle.Render("Fakultet:"), clean(c.Faculty),
		labelStyle.Render("Guruh:"), clean(c.Group))
	fmt.Fprintf(&body, "%s %s  %s %s\n",
		labelStyle.Render("Kurs:"), clean(c.Course),
		labelStyle.Render("Ta'lim tili:"), clean(c.Language))
	body.WriteString(metaStyle.Render("key: " + c.Key))
	return cardStyle.Render(body.String())
}

func formatDetail(d student.Detail) string {
	var out strings.Builder
	out.WriteString(titleStyle.Render(clean(d.Title)))
	out.WriteString("\n")

	for _, sec := range d.Sections {
		out.WriteString(headerStyle.Render(sec.Title))
		out.WriteString("\n")
		if len(sec.Rows) == 0 {
			out.WriteString(metaStyle.Render("  " + student.MissingValue))
			out.WriteString("\n")
			continue
		}
		for _, row := range sec.Rows {
			fmt.Fprintf(&out, "  %s %s\n", labelStyle.Render(row.Label+":"), clean(row.Value))
		}
	}
	return out.String()
}

func formatProfile(p student.Profile) string {
	var out strings.Builder
	out.WriteString(titleStyle.Render(clean(p.Title())))
	out.WriteString("\n")

	width := 0
	for _, row := range p.Rows {
		if len(row.Label) > width {
			width = len(row.Label)
		}
	}
	for _, row := range p.Rows {
		fmt.Fprintf(&out, "%s  %s\n", labelStyle.Render(fmt.Sprintf("%-*s", width, row.Label)), clean(row.Value))
	}
	return out.String()
}

func formatNotification(n realtime.NotificationEvent) string {
	label := severityTitle.String(n.Severity)
	return bannerStyle.Background(lipgloss.Color(n.Color)).Render(fmt.Sprintf("%s %s: %s", n.Icon, label, n.Message))
}

func formatHistory(entries []history.Entry) string {
	if len(entries) == 0 {
		return noDataStyle.Render("No searches recorded yet.") + "\n"
	}

	var out strings.Builder
	out.WriteString(titleStyle.Render("Recent searches"))
	out.WriteString("\n")
	for _, e := range entries {
		latency := student.MissingValue
		if e.Outcome != history.OutcomeTransportError {
			latency = render.FormatLatency(e.Latency)
		}
		fmt.Fprintf(&out, "%-16s %-20q %-16s %5d  %s\n",
			formatTime(e.CreatedAt), e.Query, e.Outcome, e.ResultCount, latency)
	}
	return out.String()
}

func formatHistoryStats(stats *history.Stats) string {
	var out strings.Builder
	out.WriteString(titleStyle.Render("📊 Search Statistics"))
	out.WriteString("\n")
	fmt.Fprintf(&out, "Total searches: %s\n", render.FormatCount(stats.Total))
	if stats.Total > 0 {
		fmt.Fprintf(&out, "Average latency: %s\n", render.FormatLatency(stats.AvgLatency))
	}

	outcomes := make([]history.Outcome, 0, len(stats.ByOutcome))
	for o := range stats.ByOutcome {
		outcomes = append(outcomes, o)
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i] < outcomes[j] })
	for _, o := range outcomes {
		n := stats.ByOutcome[o]
		fmt.Fprintf(&out, "  %-16s %d (%.1f%%)\n", o, n, float64(n)/float64(stats.Total)*100)
	}
	return out.String()
}

// formatTime formats a time relative to now or as an absolute date
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	if diff < 24*time.Hour {
		if diff < time.Hour {
			minutes := int(diff.Minutes())
			if minutes < 1 {
				return "just now"
			}
			return fmt.Sprintf("%d minutes ago", minutes)
		}
		return fmt.Sprintf("%d hours ago", int(diff.Hours()))
	}

	if diff < 7*24*time.Hour {
		return fmt.Sprintf("%d days ago", int(diff.Hours()/24))
	}

	if t.Year() == now.Year() {
		return t.Format("Jan 2, 15:04")
	}
	return t.Format("Jan 2, 2006")
}
