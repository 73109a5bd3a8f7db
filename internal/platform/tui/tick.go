// Package tui runs HellTiles in a terminal through Bubble Tea: the fixed
// tick loop, key mapping, the menu and scoreboard screens and the SSH
// server that hands each connection its own session.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	defaultTickRate = 30
	maxTickRate     = 120
)

// TickMsg is sent to trigger a game simulation tick.
type TickMsg time.Time

// frameInterval is the wall-clock time between ticks. Rates outside
// 1..maxTickRate fall back to defaultTickRate or are clamped.
func frameInterval(tickRate int) time.Duration {
	switch {
	case tickRate <= 0:
		tickRate = defaultTickRate
	case tickRate > maxTickRate:
		tickRate = maxTickRate
	}
	return time.Second / time.Duration(tickRate)
}

// tickCmd schedules the next simulation tick.
func tickCmd(tickRate int) tea.Cmd {
	return tea.Tick(frameInterval(tickRate), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
