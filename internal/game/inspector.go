package game

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Inspector panel, rendered into an offscreen buffer then blitted beside
// the board.
const (
	inspBufW  = 300
	inspBufH  = 400
	inspPad   = 6
	inspLineH = 15

	inspRecent      = 3
	inspRecentWidth = 40
)

// Inspector holds the selected unit and view toggle state.
type Inspector struct {
	selected string // unit id
	rawView  bool   // false = curated, true = raw dump
}

// handleInspectorClick selects the unit in the clicked cell, or clears the
// selection on an empty cell or outside the board.
func (g *Game) handleInspectorClick(mx, my int) bool {
	if g.cell <= 0 {
		return false
	}
	cx := int(float32(mx-g.offX) / g.cell)
	cy := int(float32(my-g.offY) / g.cell)
	if mx < g.offX || my < g.offY {
		g.inspector.selected = ""
		return false
	}
	if u := g.battle.UnitAt(Point{cx, cy}); u != nil {
		g.inspector.selected = u.ID
		return true
	}
	g.inspector.selected = ""
	return false
}

// drawInspector renders the panel for the selected unit, if it still lives.
func (g *Game) drawInspector(screen *ebiten.Image) {
	if g.inspector.selected == "" {
		return
	}
	u := g.battle.Unit(g.inspector.selected)
	if u == nil {
		return
	}

	buf := g.inspBuf
	buf.Clear()
	bw, bh := float32(inspBufW), float32(inspBufH)
	panelBorder := color.RGBA{R: 55, G: 80, B: 55, A: 255}
	vector.FillRect(buf, 0, 0, bw, bh, color.RGBA{R: 14, G: 16, B: 14, A: 235}, false)
	vector.StrokeRect(buf, 0, 0, bw, bh, 1.0, panelBorder, false)

	lx, ly := inspPad, inspPad
	drawText(buf, fmt.Sprintf("[ %s  team %s ]", u.ID, u.RealTeam), lx, ly, teamColors[u.RealTeam])
	ly += inspLineH
	viewName := "CURATED"
	if g.inspector.rawView {
		viewName = "RAW"
	}
	drawText(buf, fmt.Sprintf("view: %s  [I] toggle", viewName), lx, ly, hudTextColor)
	ly += inspLineH + 2
	vector.StrokeLine(buf, float32(lx), float32(ly), bw-inspPad, float32(ly), 1.0, panelBorder, false)
	ly += 4

	if g.inspector.rawView {
		g.drawInspectorRaw(buf, u, lx, ly)
	} else {
		g.drawInspectorCurated(buf, u, lx, ly)
	}

	// Over the log panel, top.
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Translate(float64(g.offX+boardPixels+g.offX+logPanelWidth-inspBufW-8), 24)
	screen.DrawImage(buf, opts)
}

func (g *Game) drawInspectorCurated(buf *ebiten.Image, u *Unit, lx, ly int) {
	b := g.battle
	line := func(s string) {
		drawText(buf, s, lx, ly, hudTextColor)
		ly += inspLineH
	}
	section := func(title string) {
		ly += 3
		drawText(buf, "-- "+title+" --", lx, ly, color.RGBA{R: 140, G: 200, B: 140, A: 255})
		ly += inspLineH
	}
	bar := func(label string, v, maxV int) {
		const width = 14
		filled := 0
		if maxV > 0 {
			filled = clampInt(v*width/maxV, 0, width)
		}
		line(fmt.Sprintf("%-6s %s%s %d/%d", label, strings.Repeat("#", filled), strings.Repeat(".", width-filled), v, maxV))
	}

	section("UNIT")
	line(fmt.Sprintf("%s at %s", u.Arch, u.Pos))
	bar("hp", u.HP, u.MaxHP)
	if u.Arch == ArchSpy {
		state := "undercover as " + u.Team.String()
		if u.SpyRevealed {
			state = "revealed"
		}
		line("spy: " + state)
	}
	if u.Team.Combatant() {
		line(fmt.Sprintf("role: %v  value %.2f", u.Arch.Role(), u.Arch.Value()))
	}

	section("ORDERS")
	line("plan: " + u.Plan.String())
	if u.RealTeam.Combatant() {
		ts := b.TeamState(u.RealTeam)
		line(fmt.Sprintf("strategy: %s", ts.Strategy))
		if ts.PriorityTarget != "" {
			line("priority: " + ts.PriorityTarget)
		}
		if ts.OverwhelmTarget != "" {
			line("overwhelm: " + ts.OverwhelmTarget)
		}
	}
	if t, ok := b.RedeployTargets[u.ID]; ok {
		line("redeploy: " + t.String())
	}
	if u.Team.Combatant() && b.IsStalemated(u) {
		line("STALEMATED")
	}

	section("READINESS")
	line(fmt.Sprintf("cd shot=%d atk=%d move=%d", u.Cooldown, u.AttackCooldown, u.MoveCooldown))
	line(fmt.Sprintf("cd heal=%d gren=%d spy=%d", u.HealCooldown, u.GrenCooldown, u.SpyCooldown))
	line(fmt.Sprintf("bandages=%d", u.HealUses))
	line(fmt.Sprintf("patience spy=%d ambush=%d", u.Patience, u.AmbushPatience))

	section("RECENT")
	entries := b.Log.FilterUnit(u.ID)
	for _, e := range entries[max(0, len(entries)-inspRecent):] {
		msg := fmt.Sprintf("T%d %s", e.Tick, e.Value)
		if len(msg) > inspRecentWidth {
			msg = msg[:inspRecentWidth-2] + ".."
		}
		line(msg)
	}
}

// drawInspectorRaw dumps every unit field verbatim.
func (g *Game) drawInspectorRaw(buf *ebiten.Image, u *Unit, lx, ly int) {
	line := func(s string) {
		drawText(buf, s, lx, ly, hudTextColor)
		ly += inspLineH
	}
	line(fmt.Sprintf("id=%s arch=%d", u.ID, u.Arch))
	line(fmt.Sprintf("pos=%s team=%s real=%s", u.Pos, u.Team, u.RealTeam))
	line(fmt.Sprintf("hp=%d max=%d alive=%v", u.HP, u.MaxHP, u.Alive))
	line(fmt.Sprintf("cd=%d atk=%d mv=%d", u.Cooldown, u.AttackCooldown, u.MoveCooldown))
	line(fmt.Sprintf("heal=%d gren=%d spy=%d", u.HealCooldown, u.GrenCooldown, u.SpyCooldown))
	line(fmt.Sprintf("uses=%d lastBandage=%d", u.HealUses, u.LastBandageTurn))
	line(fmt.Sprintf("revealed=%v pat=%d amb=%d", u.SpyRevealed, u.Patience, u.AmbushPatience))
	line(fmt.Sprintf("lastOffensive=%d", u.LastOffensiveTurn))
	line(fmt.Sprintf("plan=%+v", u.Plan))
	var hist []string
	for _, p := range u.History {
		hist = append(hist, p.String())
	}
	line("hist=" + strings.Join(hist, " "))
}
