// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests key handling, board state rendering and helpers
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shermbites/shermbites-go/internal/app"
	"github.com/shermbites/shermbites-go/internal/clip"
	"github.com/shermbites/shermbites-go/internal/download"
	"github.com/shermbites/shermbites-go/internal/playback"
)

// fakeBoard records calls and serves a fixed snapshot
type fakeBoard struct {
	snap    app.Snapshot
	playErr error
	plays   []string
	stops   int
	syncs   int
	loads   int
}

func (f *fakeBoard) AdjustVolume(delta int) int {
	f.snap.Volume = min(max(f.snap.Volume+delta, 0), 100)
	return f.snap.Volume
}

func (f *fakeBoard) ToggleMute() bool {
	f.snap.Muted = !f.snap.Muted
	return f.snap.Muted
}

func (f *fakeBoard) Snapshot() app.Snapshot { return f.snap }

func (f *fakeBoard) Load(ctx context.Context) error {
	f.loads++
	return nil
}

func (f *fakeBoard) Sync(ctx context.Context) error {
	f.syncs++
	return nil
}

func (f *fakeBoard) Play(c clip.Clip, mode playback.Mode) (*playback.Session, error) {
	f.plays = append(f.plays, fmt.Sprintf("%s/%s", c.Label, mode))
	return nil, f.playErr
}

func (f *fakeBoard) PlayRandom(mode playback.Mode) (*playback.Session, error) {
	f.plays = append(f.plays, "random/"+mode.String())
	return nil, f.playErr
}

func (f *fakeBoard) Stop() bool {
	f.stops++
	return true
}

func readyBoard() *fakeBoard {
	return &fakeBoard{snap: app.Snapshot{
		Status: app.StatusReady,
		Clips: []clip.Clip{
			{ID: 2, Label: "Huh"},
			{ID: 1, Label: "Wow", Filename: "a.mp3"},
			{ID: 3, Label: "Zap", Filename: "c.wav"},
		},
		Downloaded: map[int64]bool{1: true},
		Volume:     100,
	}}
}

func press(t *testing.T, m Model, key string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestNewModel(t *testing.T) {
	m := NewModel(context.Background(), &fakeBoard{})

	if m.cursor != 0 {
		t.Errorf("expected cursor 0, got %d", m.cursor)
	}
	if m.snap.Status != app.StatusLoading {
		t.Errorf("expected loading status, got %v", m.snap.Status)
	}
	if !strings.Contains(m.View(), "Loading clips...") {
		t.Error("expected loading screen")
	}
}

func TestCursorMovement(t *testing.T) {
	m := NewModel(context.Background(), readyBoard())

	m, _ = press(t, m, "up")
	if m.cursor != 0 {
		t.Errorf("cursor should not move above the first clip, got %d", m.cursor)
	}

	m, _ = press(t, m, "down")
	m, _ = press(t, m, "down")
	m, _ = press(t, m, "down")
	if m.cursor != 2 {
		t.Errorf("cursor should stop at the last clip, got %d", m.cursor)
	}

	m, _ = press(t, m, "k")
	if m.cursor != 1 {
		t.Errorf("expected k to move up, got %d", m.cursor)
	}
}

func TestPlayKeys(t *testing.T) {
	board := readyBoard()
	m := NewModel(context.Background(), board)
	m, _ = press(t, m, "down")

	m, _ = press(t, m, "enter")
	m, _ = press(t, m, "b")
	m, _ = press(t, m, "m")
	m, _ = press(t, m, "r")
	m, _ = press(t, m, "s")

	want := []string{"Wow/normal", "Wow/blast", "Wow/monster", "random/normal"}
	if strings.Join(board.plays, ",") != strings.Join(want, ",") {
		t.Errorf("expected plays %v, got %v", want, board.plays)
	}
	if board.stops != 1 {
		t.Errorf("expected 1 stop, got %d", board.stops)
	}
}

func TestPlayRejectedShowsBusyNotError(t *testing.T) {
	board := readyBoard()
	board.playErr = fmt.Errorf("%w: clip 1 is already playing", clip.ErrLockRejected)
	board.snap.Busy = true

	m := NewModel(context.Background(), board)
	m, _ = press(t, m, "enter")

	if m.notice != "" {
		t.Errorf("lock rejection should not set a notice, got %q", m.notice)
	}
	if !strings.Contains(m.View(), "Wait for the current clip to finish!") {
		t.Error("expected busy warning")
	}
}

func TestPlayErrorShowsNotice(t *testing.T) {
	board := readyBoard()
	board.playErr = app.ErrNoPlayableClips

	m := NewModel(context.Background(), board)
	m, _ = press(t, m, "r")

	if !strings.Contains(m.View(), "No playable clips yet") {
		t.Error("expected notice for random play without clips")
	}

	m, _ = press(t, m, "down")
	if m.notice != "" {
		t.Error("expected notice to clear on the next key")
	}
}

func TestDownloadKey(t *testing.T) {
	board := readyBoard()
	m := NewModel(context.Background(), board)

	_, cmd := press(t, m, "d")
	if cmd == nil {
		t.Fatal("expected a sync command")
	}
	cmd()
	if board.syncs != 1 {
		t.Errorf("expected 1 sync, got %d", board.syncs)
	}

	board.snap.Syncing = true
	m.refresh()
	if _, cmd := press(t, m, "d"); cmd != nil {
		t.Error("expected no second run while syncing")
	}
}

func TestLoadTriggersSync(t *testing.T) {
	board := readyBoard()
	m := NewModel(context.Background(), board)

	next, cmd := m.Update(loadedMsg{})
	if cmd == nil {
		t.Fatal("expected sync after successful load")
	}
	cmd()
	if board.syncs != 1 {
		t.Errorf("expected 1 sync, got %d", board.syncs)
	}

	if _, cmd := next.Update(loadedMsg{err: errors.New("boom")}); cmd != nil {
		t.Error("expected no sync after failed load")
	}
}

func TestQuit(t *testing.T) {
	board := readyBoard()
	m := NewModel(context.Background(), board)

	m, cmd := press(t, m, "q")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if !m.quitting || board.stops != 1 {
		t.Error("expected quitting state and playback stopped")
	}
}

func TestViewErrorState(t *testing.T) {
	board := &fakeBoard{snap: app.Snapshot{
		Status: app.StatusFailed,
		Err:    fmt.Errorf("%w: HTTP 401", clip.ErrDirectory),
	}}
	m := NewModel(context.Background(), board)

	view := m.View()
	if !strings.Contains(view, "check backend configuration") {
		t.Error("expected configuration guidance")
	}
	if !strings.Contains(view, "HTTP 401") {
		t.Error("expected underlying error")
	}

	_, cmd := press(t, m, "l")
	if cmd == nil {
		t.Fatal("expected retry command")
	}
	cmd()
	if board.loads != 1 {
		t.Errorf("expected 1 load, got %d", board.loads)
	}
}

func TestViewEmptyState(t *testing.T) {
	m := NewModel(context.Background(), &fakeBoard{snap: app.Snapshot{Status: app.StatusReady}})
	if !strings.Contains(m.View(), "No clips yet") {
		t.Error("expected empty state")
	}
}

func TestViewClipList(t *testing.T) {
	board := readyBoard()
	board.snap.Playing = &playback.Session{Clip: board.snap.Clips[2], Mode: playback.ModeMonster}
	m := NewModel(context.Background(), board)

	view := m.View()
	for _, label := range []string{"Huh", "Wow", "Zap"} {
		if !strings.Contains(view, label) {
			t.Errorf("expected %s in view", label)
		}
	}
	if !strings.Contains(view, "✓") {
		t.Error("expected downloaded marker")
	}
	if !strings.Contains(view, "♪ monster") {
		t.Error("expected playing marker with mode")
	}
}

func TestViewProgress(t *testing.T) {
	board := readyBoard()
	board.snap.Syncing = true
	board.snap.Progress = download.Progress{Completed: 1, Total: 4}
	m := NewModel(context.Background(), board)

	view := m.View()
	if !strings.Contains(view, "Downloading clips... 1 / 4") {
		t.Error("expected progress text")
	}
	if !strings.Contains(view, "25%") {
		t.Error("expected percentage")
	}

	board.snap.Syncing = false
	m.refresh()
	if strings.Contains(m.View(), "Downloading clips") {
		t.Error("expected progress hidden after the run")
	}
}

func TestRefreshClampsCursor(t *testing.T) {
	board := readyBoard()
	m := NewModel(context.Background(), board)
	m, _ = press(t, m, "down")
	m, _ = press(t, m, "down")

	board.snap.Clips = board.snap.Clips[:1]
	next, _ := m.Update(eventMsg(app.Event{Kind: app.EventClipsLoaded}))
	if next.(Model).cursor != 0 {
		t.Errorf("expected cursor clamped to 0, got %d", next.(Model).cursor)
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		value, max, width int
		expected          string
	}{
		{0, 4, 4, "░░░░"},
		{2, 4, 4, "██░░"},
		{4, 4, 4, "████"},
		{1, 0, 3, "░░░"},
	}

	for _, tt := range tests {
		if got := renderBar(tt.value, tt.max, tt.width); got != tt.expected {
			t.Errorf("renderBar(%d, %d, %d) = %q, expected %q", tt.value, tt.max, tt.width, got, tt.expected)
		}
	}
}

func TestTruncateFunction(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"this is longer than allowed", 10, "this is..."},
		{"this is longer than allowed", 15, "this is long..."},
		{"", 10, ""},
		{"abcd", 4, "abcd"},
		{"abcde", 4, "a..."},
		{strings.Repeat("é", 30), 30, strings.Repeat("é", 30)},
		{strings.Repeat("é", 31), 30, strings.Repeat("é", 27) + "..."},
		{"Sküll Crüsher Extrême", 10, "Sküll C..."},
	}

	for _, tt := range tests {
		result := truncate(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, expected %q",
				tt.input, tt.maxLen, result, tt.expected)
		}
		if !utf8.ValidString(result) {
			t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.input, tt.maxLen)
		}
	}
}

func TestVolumeKeys(t *testing.T) {
	board := readyBoard()
	m := NewModel(context.Background(), board)

	m, _ = press(t, m, "-")
	m, _ = press(t, m, "-")
	if board.snap.Volume != 80 {
		t.Errorf("expected volume 80, got %d", board.snap.Volume)
	}
	if !strings.Contains(m.View(), "Volume: 80%") {
		t.Error("expected the volume in the status line")
	}

	m, _ = press(t, m, "+")
	if board.snap.Volume != 90 {
		t.Errorf("expected volume 90, got %d", board.snap.Volume)
	}

	m, _ = press(t, m, "x")
	if !board.snap.Muted || !strings.Contains(m.View(), "Volume: muted") {
		t.Error("expected muted status")
	}
}
