// ABOUTME: Bubbletea model for the soundboard TUI
// ABOUTME: Defines board state, key handling and rendering
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/shermbites/shermbites-go/internal/app"
	"github.com/shermbites/shermbites-go/internal/clip"
	"github.com/shermbites/shermbites-go/internal/playback"
	"github.com/shermbites/shermbites-go/internal/version"
)

const (
	refreshInterval = 250 * time.Millisecond
	progressWidth   = 30
	labelWidth      = clip.MaxLabelLength
	volumeStep      = 10
)

// Board is the soundboard surface the TUI drives
type Board interface {
	Snapshot() app.Snapshot
	Load(ctx context.Context) error
	Sync(ctx context.Context) error
	Play(c clip.Clip, mode playback.Mode) (*playback.Session, error)
	PlayRandom(mode playback.Mode) (*playback.Session, error)
	Stop() bool
	AdjustVolume(delta int) int
	ToggleMute() bool
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	playingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	cachedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// Model represents the TUI state
type Model struct {
	board  Board
	ctx    context.Context
	snap   app.Snapshot
	cursor int
	notice string

	quitting bool
	width    int
	height   int
}

type tickMsg time.Time

// eventMsg carries a soundboard event into the update loop
type eventMsg app.Event

type loadedMsg struct{ err error }

type syncDoneMsg struct{ err error }

// NewModel creates a model over board. ctx bounds load and sync work.
func NewModel(ctx context.Context, board Board) Model {
	return Model{
		board: board,
		ctx:   ctx,
		snap:  board.Snapshot(),
	}
}

// Init loads the clip list and starts the refresh tick
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), tickEvery())
}

func tickEvery() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.board.Load(m.ctx)}
	}
}

func (m Model) syncCmd() tea.Cmd {
	return func() tea.Msg {
		return syncDoneMsg{err: m.board.Sync(m.ctx)}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.refresh()
		return m, tickEvery()

	case eventMsg:
		m.refresh()

	case loadedMsg:
		m.refresh()
		if msg.err == nil {
			// Pre-download whatever the cache is missing
			return m, m.syncCmd()
		}

	case syncDoneMsg:
		m.refresh()
		if msg.err != nil && !errors.Is(msg.err, app.ErrSyncRunning) && !errors.Is(msg.err, context.Canceled) {
			log.Warn("Download run ended early", "err", msg.err)
		}
	}

	return m, nil
}

// refresh pulls the latest board state and keeps the cursor in range
func (m *Model) refresh() {
	m.snap = m.board.Snapshot()
	if m.cursor >= len(m.snap.Clips) {
		m.cursor = max(len(m.snap.Clips)-1, 0)
	}
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.board.Stop()
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.snap.Clips)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.play(playback.ModeNormal)
	case "b":
		m.play(playback.ModeBlast)
	case "m":
		m.play(playback.ModeMonster)
	case "r":
		m.report(m.board.PlayRandom(playback.ModeNormal))
	case "s":
		m.board.Stop()
	case "+", "=":
		m.board.AdjustVolume(volumeStep)
		m.refresh()
	case "-":
		m.board.AdjustVolume(-volumeStep)
		m.refresh()
	case "x":
		m.board.ToggleMute()
		m.refresh()
	case "d":
		if m.snap.Status == app.StatusReady && !m.snap.Syncing {
			return m, m.syncCmd()
		}
	case "l":
		if m.snap.Status == app.StatusFailed {
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m *Model) play(mode playback.Mode) {
	c, ok := m.selected()
	if !ok {
		return
	}
	m.report(m.board.Play(c, mode))
}

// report turns a play error into a notice; busy is shown by the snapshot
func (m *Model) report(_ *playback.Session, err error) {
	switch {
	case err == nil:
	case errors.Is(err, clip.ErrLockRejected):
	case errors.Is(err, app.ErrNoPlayableClips):
		m.notice = "No playable clips yet"
	default:
		m.notice = err.Error()
	}
	m.refresh()
}

func (m Model) selected() (clip.Clip, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Clips) {
		return clip.Clip{}, false
	}
	return m.snap.Clips[m.cursor], true
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s %s", version.Product, version.Version)))
	b.WriteString("\n\n")

	switch m.snap.Status {
	case app.StatusLoading:
		b.WriteString("Loading clips...\n")
	case app.StatusFailed:
		b.WriteString(m.renderError())
	default:
		b.WriteString(m.renderProgress())
		b.WriteString(m.renderClips())
	}

	b.WriteString(m.renderStatus())
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderError() string {
	msg := "unknown error"
	if m.snap.Err != nil {
		msg = m.snap.Err.Error()
	}
	return errorStyle.Render("Could not load clips: "+msg) + "\n" +
		"Please check backend configuration (SHERMBITES_BACKEND_URL, SHERMBITES_API_KEY).\n" +
		faintStyle.Render("Press 'l' to retry") + "\n"
}

// renderProgress renders the download bar while a sync run has work
func (m Model) renderProgress() string {
	p := m.snap.Progress
	if !m.snap.Syncing || p.Total == 0 {
		return ""
	}
	return fmt.Sprintf("Downloading clips... %d / %d\n[%s] %d%%\n\n",
		p.Completed, p.Total, renderBar(p.Completed, p.Total, progressWidth), p.Percent())
}

func (m Model) renderClips() string {
	if len(m.snap.Clips) == 0 {
		return faintStyle.Render("No clips yet. Add one with shermbites-upload.") + "\n"
	}

	var playingID int64 = -1
	playingMode := ""
	if s := m.snap.Playing; s != nil {
		playingID = s.Clip.ID
		playingMode = s.Mode.String()
	}

	var b strings.Builder
	for i, c := range m.snap.Clips {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("› ")
		}

		label := fmt.Sprintf("%-*s", labelWidth, truncate(c.Label, labelWidth))
		if i == m.cursor {
			label = cursorStyle.Render(label)
		}

		marker := " "
		switch {
		case !c.Playable():
			marker = faintStyle.Render("-")
		case m.snap.Downloaded[c.ID]:
			marker = cachedStyle.Render("✓")
		}

		line := cursor + marker + " " + label
		if c.ID == playingID {
			line += " " + playingStyle.Render("♪ "+playingMode)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) renderStatus() string {
	var b strings.Builder
	b.WriteString("\n")
	if m.snap.Muted {
		b.WriteString(faintStyle.Render("Volume: muted") + "\n")
	} else {
		b.WriteString(faintStyle.Render(fmt.Sprintf("Volume: %d%%", m.snap.Volume)) + "\n")
	}
	if m.snap.Busy {
		b.WriteString(warnStyle.Render("Wait for the current clip to finish!") + "\n")
	}
	if m.notice != "" {
		b.WriteString(warnStyle.Render(m.notice) + "\n")
	}
	return b.String()
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return faintStyle.Render("↑/↓:Select  enter:Play  b:Blast  m:Monster  r:Random  s:Stop  +/-:Volume  x:Mute  d:Download all  q:Quit") + "\n"
}

// Utility functions
func renderBar(value, max, width int) string {
	if max <= 0 {
		return strings.Repeat("░", width)
	}
	filled := (value * width) / max
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

// truncate shortens s to length runes, marking the cut with "..."
func truncate(s string, length int) string {
	r := []rune(s)
	if len(r) <= length {
		return s
	}
	return string(r[:length-3]) + "..."
}
