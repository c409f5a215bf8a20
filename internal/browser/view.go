package browser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/projecthubv3/projecthub-backend/internal/pager"
	"github.com/projecthubv3/projecthub-backend/internal/projects/domain"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	currentStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	badgeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

const (
	colName     = 28
	colType     = 16
	colStatus   = 20
	colFeatures = 9
)

func (m Model) View() string {
	var b strings.Builder
	v := m.view

	title := titleStyle.Render("Projects")
	if v.Loading {
		title += " " + m.spinner.View()
	}
	b.WriteString(title + "\n")
	b.WriteString(m.search.View() + "\n")
	b.WriteString(dimStyle.Render(filterLine(v.Query)) + "\n\n")

	b.WriteString(headerStyle.Render(row("Name", "Type", "Status", "Features", "Market")) + "\n")
	if len(v.Result.Projects) == 0 {
		b.WriteString(dimStyle.Render("  no projects match") + "\n")
	}
	for i, p := range v.Result.Projects {
		line := row(p.Name, p.Type, p.Status, features(p), market(p))
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	if v.Result.Total > 0 {
		b.WriteString(fmt.Sprintf("Showing %d to %d of %d projects\n", v.From, v.To, v.Result.Total))
	}
	if w := renderWindow(v.Window, v.Query.Page); w != "" {
		b.WriteString(w + "\n")
	}
	s := v.Result.Stats
	b.WriteString(dimStyle.Render(fmt.Sprintf("total %d · with spec %d · market enhanced %d",
		s.Total, s.WithSpecification, s.WithMarketEnhanced)) + "\n")

	if v.Err != nil {
		b.WriteString(errorStyle.Render("! "+v.Err.Error()+" (showing last results)") + "\n")
	}
	if m.notice != "" {
		b.WriteString(m.notice + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func filterLine(q domain.ListQuery) string {
	order := "↑"
	if q.SortOrder == domain.SortDesc {
		order = "↓"
	}
	return fmt.Sprintf("type: %s  status: %s  features: %s  market: %s  sort: %s %s  size: %d",
		orAny(q.Type), orAny(q.Status), orAny(q.HasFeat), orAny(q.HasMarket), q.SortBy, order, q.PageSize)
}

func orAny(s string) string {
	if s == "" || s == domain.TypeAll {
		return "any"
	}
	return s
}

func row(name, typ, status, feats, mkt string) string {
	return fmt.Sprintf("  %-*s %-*s %-*s %*s  %s",
		colName, truncate(name, colName),
		colType, truncate(typ, colType),
		colStatus, truncate(status, colStatus),
		colFeatures, feats,
		mkt)
}

func features(p domain.Project) string {
	if p.Features == nil {
		return "-"
	}
	return fmt.Sprintf("%d+%d", p.Features.Core, p.Features.Advanced)
}

func market(p domain.Project) string {
	if !p.Market.Known() {
		if p.HasMarketEnhanced {
			return badgeStyle.Render("enhanced")
		}
		return "-"
	}
	return "TAM " + orDash(p.Market.TAM) + " / SAM " + orDash(p.Market.SAM)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// renderWindow draws "« 1 … 5 6 [7] 8 9 … 10 »".
func renderWindow(w pager.Window, page int) string {
	if len(w.Pages) == 0 {
		return ""
	}
	parts := []string{"«"}
	if w.ShowFirst {
		parts = append(parts, "1")
		if w.LeadingEllipsis {
			parts = append(parts, "…")
		}
	}
	for _, p := range w.Pages {
		if p == page {
			parts = append(parts, currentStyle.Render("["+strconv.Itoa(p)+"]"))
			continue
		}
		parts = append(parts, strconv.Itoa(p))
	}
	if w.ShowLast {
		if w.TrailingEllipsis {
			parts = append(parts, "…")
		}
		parts = append(parts, strconv.Itoa(w.Last))
	}
	parts = append(parts, "»")
	return strings.Join(parts, " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
