package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	logPanelWidth = 420
	logMaxEntries = 80
	logLineHeight = 14
)

// ThoughtEntry is a single line in the on-screen battle log.
type ThoughtEntry struct {
	Tick    int
	Label   string
	Team    string
	Message string
}

// ThoughtLog is a ring buffer of recent battle events rendered on-screen.
// It is fed from the battle's SimLog after each tick.
type ThoughtLog struct {
	entries []ThoughtEntry
	head    int
	count   int
	synced  int // SimLog entries already copied
}

// NewThoughtLog creates a thought log with a fixed capacity.
func NewThoughtLog() *ThoughtLog {
	return &ThoughtLog{
		entries: make([]ThoughtEntry, logMaxEntries),
	}
}

// Add appends an entry to the log.
func (tl *ThoughtLog) Add(tick int, label, team, msg string) {
	tl.entries[tl.head] = ThoughtEntry{
		Tick:    tick,
		Label:   label,
		Team:    team,
		Message: msg,
	}
	tl.head = (tl.head + 1) % logMaxEntries
	if tl.count < logMaxEntries {
		tl.count++
	}
}

// Sync copies SimLog entries added since the last call. Verbose entries are
// left out to keep the panel readable.
func (tl *ThoughtLog) Sync(sl *SimLog) {
	all := sl.Entries()
	if len(all) < tl.synced {
		tl.synced = 0 // log was replaced by a reset
	}
	for _, e := range all[tl.synced:] {
		if (e.Category == "ai" && e.Key == "plan") || e.Category == "move" {
			continue
		}
		tl.Add(e.Tick, e.Unit, e.Team, e.Value)
	}
	tl.synced = len(all)
}

// Clear drops every entry.
func (tl *ThoughtLog) Clear() {
	tl.head, tl.count, tl.synced = 0, 0, 0
}

// Recent returns entries in chronological order (oldest first).
func (tl *ThoughtLog) Recent() []ThoughtEntry {
	result := make([]ThoughtEntry, tl.count)
	for i := 0; i < tl.count; i++ {
		idx := (tl.head - tl.count + i + logMaxEntries) % logMaxEntries
		result[i] = tl.entries[idx]
	}
	return result
}

// Draw renders the log panel on the right side of the screen.
func (tl *ThoughtLog) Draw(screen *ebiten.Image, panelX int, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), float32(panelH), color.RGBA{R: 10, G: 12, B: 10, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 70, B: 50, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), 18, color.RGBA{R: 20, G: 30, B: 20, A: 255}, false)
	drawText(screen, "BATTLE LOG  [C] copy", panelX+8, 2, hudTextColor)
	vector.StrokeLine(screen, float32(panelX), 18, float32(panelX+logPanelWidth), 18, 1.0, color.RGBA{R: 50, G: 80, B: 50, A: 200}, false)

	entries := tl.Recent()

	// Newest at the bottom.
	maxVisible := (panelH - 24) / logLineHeight
	startIdx := 0
	if len(entries) > maxVisible {
		startIdx = len(entries) - maxVisible
	}
	visible := entries[startIdx:]
	recent := 3

	y := 22
	for i, e := range visible {
		isRecent := i >= len(visible)-recent
		if isRecent {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(logPanelWidth-4), float32(logLineHeight), color.RGBA{R: 30, G: 40, B: 30, A: 160}, false)
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+4), 3, 6, teamLabelColor(e.Team), false)

		label := e.Label
		if label == "" {
			label = "--"
		}
		col := color.RGBA{R: 150, G: 160, B: 150, A: 255}
		if isRecent {
			col = hudTextColor
		}
		drawText(screen, fmt.Sprintf("%3d %s %s", e.Tick, label, e.Message), panelX+12, y, col)
		y += logLineHeight
	}
}

func teamLabelColor(team string) color.RGBA {
	switch team {
	case TeamA.String():
		return teamColors[TeamA]
	case TeamB.String():
		return teamColors[TeamB]
	}
	return color.RGBA{R: 120, G: 120, B: 120, A: 255}
}
