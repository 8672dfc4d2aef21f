package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cfaller/planweave/pkg/layout"
	"github.com/cfaller/planweave/pkg/layout/state"
	"github.com/cfaller/planweave/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listPendingStyle  = lipgloss.NewStyle().Foreground(colorYellow)
)

// nudgeStep is the vertical distance of one nudge keypress.
const nudgeStep = 10.0

// trackRow is one workstream track in the adjust view.
type trackRow struct {
	id      string
	name    string
	current float64 // committed track y (override or baseline)
	pending float64 // uncommitted local delta
}

// adjustModel is the bubbletea model for interactive track nudging. Moves
// are local state until enter commits them to the override store.
type adjustModel struct {
	ctx       context.Context
	overrides *state.Store
	tracks    []trackRow
	cursor    int
	committed int
	status    string

	placements []*layout.Placement
	coords     map[string]layout.Point
}

// newAdjustModel builds the adjust view from a fresh layout result.
func newAdjustModel(ctx context.Context, result *pipeline.Result) adjustModel {
	m := adjustModel{
		ctx:        ctx,
		overrides:  result.Overrides,
		placements: result.Layout.Placements,
		coords:     result.Layout.Coordinates,
	}

	for _, ws := range result.Graph.Workstreams {
		current, ok := result.Overrides.WorkstreamY(ws.ID)
		if !ok {
			current = result.Layout.Baselines[ws.ID]
		}
		m.tracks = append(m.tracks, trackRow{id: ws.ID, name: ws.Name, current: current})
	}

	return m
}

func (m adjustModel) Init() tea.Cmd {
	return nil
}

func (m adjustModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.tracks)-1 {
			m.cursor++
		}
	case "K", "shift+up", "-":
		if len(m.tracks) > 0 {
			m.tracks[m.cursor].pending -= nudgeStep
			m.status = ""
		}
	case "J", "shift+down", "+", "=":
		if len(m.tracks) > 0 {
			m.tracks[m.cursor].pending += nudgeStep
			m.status = ""
		}
	case "r":
		if len(m.tracks) > 0 {
			m.tracks[m.cursor].pending = 0
			m.status = ""
		}
	case "enter":
		return m.commit()
	}
	return m, nil
}

// commit persists the selected track's pending delta.
func (m adjustModel) commit() (tea.Model, tea.Cmd) {
	if len(m.tracks) == 0 {
		return m, nil
	}
	row := &m.tracks[m.cursor]
	if row.pending == 0 {
		return m, nil
	}

	delta := row.pending
	newY := row.current + delta
	trackYs := state.TrackYs(m.placements, m.coords, row.id)

	if err := m.overrides.CommitWorkstreamDrag(m.ctx, row.id, newY, delta, trackYs); err != nil {
		m.status = "commit failed: " + err.Error()
		return m, nil
	}

	// Shift the local coordinates so a later commit on the same track
	// computes its delta from the new positions.
	for id := range trackYs {
		c := m.coords[id]
		c.Y += delta
		m.coords[id] = c
	}

	row.current = newY
	row.pending = 0
	m.committed++
	m.status = fmt.Sprintf("committed %s at y=%.1f", row.name, newY)
	return m, nil
}

func (m adjustModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Adjust Workstream Tracks"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ select  +/- nudge  r revert  ⏎ commit  q quit"))
	b.WriteString("\n\n")

	for i, row := range m.tracks {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		line := fmt.Sprintf("%s%-24s y=%.1f", cursor, row.name, row.current)
		if row.pending != 0 {
			line += listPendingStyle.Render(fmt.Sprintf("  (%+.0f pending)", row.pending))
		}

		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(m.status))
	}
	b.WriteString("\n")

	return b.String()
}
