package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"minicloud/pkg/notify"
	"minicloud/pkg/session"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
)

type palette struct {
	primary lipgloss.Color
	success lipgloss.Color
	warning lipgloss.Color
	danger  lipgloss.Color
	muted   lipgloss.Color
	text    lipgloss.Color
	track   lipgloss.Color
}

var palettes = map[string]palette{
	session.ThemeDark: {
		primary: lipgloss.Color("#7571f9"),
		success: lipgloss.Color("#42c767"),
		warning: lipgloss.Color("#ff9f43"),
		danger:  lipgloss.Color("#ff6b6b"),
		muted:   lipgloss.Color("#6c757d"),
		text:    lipgloss.Color("#ffffff"),
		track:   lipgloss.Color("#333333"),
	},
	session.ThemeLight: {
		primary: lipgloss.Color("#4b44d6"),
		success: lipgloss.Color("#1e8e3e"),
		warning: lipgloss.Color("#b35c00"),
		danger:  lipgloss.Color("#c62828"),
		muted:   lipgloss.Color("#5f6368"),
		text:    lipgloss.Color("#202124"),
		track:   lipgloss.Color("#dadce0"),
	},
}

type styles struct {
	palette
	title   lipgloss.Style
	header  lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	danger  lipgloss.Style
	folder  lipgloss.Style
	panel   lipgloss.Style
}

func newStyles(theme string) styles {
	p, ok := palettes[theme]
	if !ok {
		p = palettes[session.ThemeDark]
	}
	return styles{
		palette: p,
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.primary),
		header: lipgloss.NewStyle().
			Foreground(p.text).
			Bold(true).
			Padding(0, 1),
		muted:   lipgloss.NewStyle().Foreground(p.muted),
		success: lipgloss.NewStyle().Foreground(p.success),
		warning: lipgloss.NewStyle().Foreground(p.warning),
		danger:  lipgloss.NewStyle().Foreground(p.danger).Bold(true),
		folder:  lipgloss.NewStyle().Foreground(p.primary).Bold(true),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.primary).
			Padding(0, 1),
	}
}

// newTable returns a rounded table with the theme's header row.
func (s styles) newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(s.primary)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.header
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

func (s styles) progressBar(percent float64, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(float64(width) * percent / 100)
	empty := width - filled

	bar := lipgloss.NewStyle().Foreground(s.palette.success).Render(strings.Repeat("█", filled))
	bar += lipgloss.NewStyle().Foreground(s.track).Render(strings.Repeat("░", empty))
	return fmt.Sprintf("%s %.1f%%", bar, percent)
}

// printer renders notifications as one styled line each.
type printer struct {
	out io.Writer
	st  styles
}

func newPrinter(out io.Writer, st styles) *printer {
	return &printer{out: out, st: st}
}

func (p *printer) Notify(n notify.Notification) {
	switch n.Level {
	case notify.LevelSuccess:
		fmt.Fprintln(p.out, p.st.success.Render("✓ "+n.Message))
	case notify.LevelError:
		fmt.Fprintln(p.out, p.st.danger.Render("✗ "+n.Message))
	default:
		fmt.Fprintln(p.out, p.st.muted.Render("• "+n.Message))
	}
}

// relativeTime renders an RFC 3339 timestamp as "3 hours ago".
func relativeTime(ts string) string {
	if ts == "" {
		return "-"
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		if t, err = time.Parse("2006-01-02T15:04:05.999999", ts); err != nil {
			return ts
		}
	}
	return humanize.Time(t)
}
