// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program and forwards soundboard events to it
package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shermbites/shermbites-go/internal/app"
)

// Run shows the soundboard until the user quits
func Run(ctx context.Context, board Board, events <-chan app.Event) error {
	p := tea.NewProgram(NewModel(ctx, board), tea.WithAltScreen(), tea.WithContext(ctx))

	go func() {
		for {
			select {
			case ev := <-events:
				p.Send(eventMsg(ev))
			case <-ctx.Done():
				return
			}
		}
	}()

	_, err := p.Run()
	return err
}
