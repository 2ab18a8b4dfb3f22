package game

import (
	"fmt"
	"image/color"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
	"golang.org/x/image/font/basicfont"
)

// borderWidth is the pixel gap between the window edge and the board.
const borderWidth = 24

// boardPixels is the on-screen side length of the board; cells scale to fit.
const boardPixels = 720

var hudFace = text.NewGoXFace(basicfont.Face7x13)

var hudTextColor = color.RGBA{R: 220, G: 230, B: 220, A: 255}

var teamColors = map[Team]color.RGBA{
	TeamA:        {R: 210, G: 70, B: 70, A: 255},
	TeamB:        {R: 70, G: 110, B: 210, A: 255},
	TeamObstacle: {R: 110, G: 105, B: 95, A: 255},
	TeamCorpse:   {R: 70, G: 55, B: 45, A: 255},
}

// Game is the ebiten front end: it watches a Battle, steps it at a chosen
// speed and shows the battle log and a unit inspector.
type Game struct {
	battle     *Battle
	logger     *zap.Logger
	width      int
	height     int
	offX, offY int
	cell       float32

	thoughtLog *ThoughtLog
	reporter   *SimReporter
	inspector  Inspector
	inspBuf    *ebiten.Image

	showHUD       bool
	showTargets   bool
	prevKeys      map[ebiten.Key]bool
	prevMouseLeft bool

	// Turns per second; 0 is paused.
	simSpeed  float64
	tickAccum float64
	status    string
}

// New wraps a battle for display. The battle's starting layout is saved so
// R can reset it.
func New(b *Battle, logger *zap.Logger) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}
	b.SaveLayout()
	g := &Game{
		battle:     b,
		logger:     logger,
		width:      borderWidth + boardPixels + borderWidth + logPanelWidth,
		height:     borderWidth + boardPixels + borderWidth + 90,
		offX:       borderWidth,
		offY:       borderWidth,
		thoughtLog: NewThoughtLog(),
		reporter:   NewSimReporter(reportWindowTicks),
		inspBuf:    ebiten.NewImage(inspBufW, inspBufH),
		showHUD:    true,
		prevKeys:   make(map[ebiten.Key]bool),
		simSpeed:   2,
	}
	g.cell = float32(boardPixels) / float32(max(b.Size, 1))
	g.thoughtLog.Sync(b.Log)
	return g
}

func (g *Game) Update() error {
	g.handleInput()
	if g.simSpeed <= 0 || g.battle.Phase == PhaseGameOver {
		return nil
	}
	g.tickAccum += g.simSpeed / float64(ebiten.TPS())
	for g.tickAccum >= 1.0 {
		g.tickAccum -= 1.0
		g.step()
	}
	return nil
}

func (g *Game) step() {
	if g.battle.Phase == PhaseGameOver {
		return
	}
	g.battle.Tick()
	g.reporter.Collect(g.battle)
	g.thoughtLog.Sync(g.battle.Log)
}

// pressed reports a key going down this frame.
func (g *Game) pressed(k ebiten.Key, cur map[ebiten.Key]bool) bool {
	cur[k] = ebiten.IsKeyPressed(k)
	return cur[k] && !g.prevKeys[k]
}

func (g *Game) handleInput() {
	cur := map[ebiten.Key]bool{}

	// P / space: pause or resume.
	if g.pressed(ebiten.KeyP, cur) || g.pressed(ebiten.KeySpace, cur) {
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 2
		}
	}
	// N: single step while paused.
	if g.pressed(ebiten.KeyN, cur) && g.simSpeed == 0 {
		g.step()
	}

	speeds := []float64{0, 0.5, 1, 2, 4, 8}
	if g.pressed(ebiten.KeyComma, cur) {
		for i := len(speeds) - 1; i > 0; i-- {
			if speeds[i] <= g.simSpeed {
				g.simSpeed = speeds[i-1]
				break
			}
		}
	}
	if g.pressed(ebiten.KeyPeriod, cur) {
		for _, s := range speeds {
			if s > g.simSpeed {
				g.simSpeed = s
				break
			}
		}
	}

	if g.pressed(ebiten.KeyR, cur) {
		if err := g.battle.Reset(); err != nil {
			g.logger.Error("reset failed", zap.Error(err))
			g.status = "reset failed: " + err.Error()
		} else {
			g.inspector.selected = ""
			g.status = "battle reset"
		}
		g.thoughtLog.Sync(g.battle.Log)
	}
	if g.pressed(ebiten.KeyC, cur) {
		summary := g.battle.Log.Summary(g.battle) + "\n" + g.battle.Log.Format()
		if err := clipboard.WriteAll(summary); err != nil {
			g.logger.Warn("clipboard write failed", zap.Error(err))
			g.status = "clipboard unavailable"
		} else {
			g.status = fmt.Sprintf("copied %d log entries", len(g.battle.Log.Entries()))
		}
	}
	if g.pressed(ebiten.KeyH, cur) {
		g.showHUD = !g.showHUD
	}
	if g.pressed(ebiten.KeyT, cur) {
		g.showTargets = !g.showTargets
	}
	if g.pressed(ebiten.KeyI, cur) {
		g.inspector.rawView = !g.inspector.rawView
	}

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) && !g.prevMouseLeft {
		mx, my := ebiten.CursorPosition()
		g.handleInspectorClick(mx, my)
	}
	g.prevMouseLeft = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)

	g.prevKeys = cur
}

// cellRect returns the screen rectangle of a board cell.
func (g *Game) cellRect(p Point) (x, y, w float32) {
	return float32(g.offX) + float32(p.X)*g.cell, float32(g.offY) + float32(p.Y)*g.cell, g.cell
}

func (g *Game) cellCenter(p Point) (float32, float32) {
	x, y, w := g.cellRect(p)
	return x + w/2, y + w/2
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 14, B: 12, A: 255})

	g.drawBoard(screen)
	g.drawUnits(screen)
	g.drawEffects(screen)
	if g.showTargets {
		g.drawRedeployTargets(screen)
	}

	logX := g.offX + boardPixels + g.offX
	g.thoughtLog.Draw(screen, logX, g.height)

	if g.showHUD {
		g.drawHUD(screen)
	}
	g.drawInspector(screen)
}

func (g *Game) drawBoard(screen *ebiten.Image) {
	b := g.battle
	ox, oy := float32(g.offX), float32(g.offY)
	size := g.cell * float32(b.Size)
	vector.FillRect(screen, ox, oy, size, size, color.RGBA{R: 34, G: 48, B: 34, A: 255}, false)

	// Home zones, tinted when they matter to the phase.
	alpha := uint8(28)
	if b.Phase == PhaseRedeploying || b.HighlightZone {
		alpha = 60
	}
	for _, t := range []Team{TeamA, TeamB} {
		z := b.ZoneFor(t)
		c := teamColors[t]
		c.A = alpha
		x0, y0, _ := g.cellRect(Point{z.X0, z.Y0})
		w := float32(z.X1-z.X0+1) * g.cell
		h := float32(z.Y1-z.Y0+1) * g.cell
		vector.FillRect(screen, x0, y0, w, h, c, false)
	}

	gridCol := color.RGBA{R: 60, G: 80, B: 60, A: 160}
	for i := 0; i <= b.Size; i++ {
		f := float32(i) * g.cell
		vector.StrokeLine(screen, ox+f, oy, ox+f, oy+size, 1, gridCol, false)
		vector.StrokeLine(screen, ox, oy+f, ox+size, oy+f, 1, gridCol, false)
	}
	vector.StrokeRect(screen, ox-1, oy-1, size+2, size+2, 2.0, color.RGBA{R: 65, G: 90, B: 65, A: 255}, false)
}

func (g *Game) drawUnits(screen *ebiten.Image) {
	for _, u := range g.battle.Units {
		if !u.Alive {
			continue
		}
		x, y, w := g.cellRect(u.Pos)
		cx, cy := g.cellCenter(u.Pos)
		col := teamColors[u.Team]
		switch {
		case u.Arch == ArchWall:
			vector.FillRect(screen, x+2, y+2, w-4, w-4, col, false)
		case u.Arch == ArchCorpse:
			vector.FillRect(screen, x+w*0.2, y+w*0.35, w*0.6, w*0.3, col, false)
		default:
			vector.FillCircle(screen, cx, cy, w*0.36, col, true)
			if u.Arch == ArchSpy {
				// Real colours as a ring so the viewer can see through the cover.
				vector.StrokeCircle(screen, cx, cy, w*0.40, 2, teamColors[u.RealTeam], true)
			}
			if u.Arch == ArchGeneral {
				vector.StrokeCircle(screen, cx, cy, w*0.44, 1.5, color.RGBA{R: 240, G: 210, B: 80, A: 255}, true)
			}
			drawText(screen, unitGlyph(u.Arch), int(cx)-7, int(cy)-7, hudTextColor)
		}
		if g.inspector.selected == u.ID {
			vector.StrokeRect(screen, x+1, y+1, w-2, w-2, 2, color.RGBA{R: 255, G: 255, B: 255, A: 220}, false)
		}

		// hp bar
		if u.MaxHP > 0 && u.HP < u.MaxHP {
			frac := float32(u.HP) / float32(u.MaxHP)
			vector.FillRect(screen, x+3, y+w-6, w-6, 3, color.RGBA{R: 40, G: 20, B: 20, A: 255}, false)
			vector.FillRect(screen, x+3, y+w-6, (w-6)*frac, 3, color.RGBA{R: 90, G: 220, B: 90, A: 255}, false)
		}
	}
}

// unitGlyph is the two-letter label drawn on a unit.
func unitGlyph(a Archetype) string {
	s := a.String()
	if len(s) > 2 {
		s = s[:2]
	}
	return s
}

func (g *Game) drawEffects(screen *ebiten.Image) {
	for _, e := range g.battle.Effects {
		cx, cy := g.cellCenter(e.At)
		switch e.Kind {
		case EffectShot:
			fx, fy := g.cellCenter(e.From)
			c := teamColors[e.Team]
			c.A = 200
			vector.StrokeLine(screen, fx, fy, cx, cy, 2, c, true)
		case EffectExplosion:
			x, y, w := g.cellRect(e.At)
			vector.FillRect(screen, x, y, w, w, color.RGBA{R: 255, G: 150, B: 30, A: 90}, false)
		case EffectDamage:
			vector.StrokeCircle(screen, cx, cy, g.cell*0.45, 2, color.RGBA{R: 255, G: 60, B: 40, A: 220}, true)
		case EffectDeath:
			r := g.cell * 0.3
			c := color.RGBA{R: 240, G: 240, B: 240, A: 220}
			vector.StrokeLine(screen, cx-r, cy-r, cx+r, cy+r, 3, c, true)
			vector.StrokeLine(screen, cx-r, cy+r, cx+r, cy-r, 3, c, true)
		case EffectHeal, EffectBandage:
			r := g.cell * 0.2
			c := color.RGBA{R: 80, G: 240, B: 120, A: 230}
			vector.StrokeLine(screen, cx-r, cy, cx+r, cy, 3, c, false)
			vector.StrokeLine(screen, cx, cy-r, cx, cy+r, 3, c, false)
		}
	}
}

func (g *Game) drawRedeployTargets(screen *ebiten.Image) {
	for id, p := range g.battle.RedeployTargets {
		u := g.battle.Unit(id)
		if u == nil {
			continue
		}
		cx, cy := g.cellCenter(p)
		c := teamColors[u.Team]
		c.A = 140
		vector.StrokeCircle(screen, cx, cy, g.cell*0.25, 1.5, c, true)
		ux, uy := g.cellCenter(u.Pos)
		vector.StrokeLine(screen, ux, uy, cx, cy, 1, c, true)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	b := g.battle
	speedStr := fmt.Sprintf("%.1f turns/s", g.simSpeed)
	if g.simSpeed == 0 {
		speedStr = "PAUSED"
	}
	lines := []string{
		fmt.Sprintf("T=%d  %s  tide=%.2f  waves=%d  %s", b.Turn, b.Phase, b.Tide(), b.Waves, speedStr),
		fmt.Sprintf("A: %-16s alive=%d lost=%d   B: %-16s alive=%d lost=%d",
			b.Strategy(TeamA), len(b.AliveByTeam(TeamA)), b.Casualties[TeamA],
			b.Strategy(TeamB), len(b.AliveByTeam(TeamB)), b.Casualties[TeamB]),
		"P/space=pause N=step ,/.=speed R=reset C=copy T=targets H=hud I=inspector view",
	}
	if b.Phase == PhaseGameOver && b.HasWinner {
		lines = append(lines, fmt.Sprintf("GAME OVER: team %s wins", b.Winner))
	} else if b.Phase == PhaseGameOver {
		lines = append(lines, "GAME OVER: no survivors")
	}
	if g.status != "" {
		lines = append(lines, g.status)
	}

	const lineH = 16
	bx := float32(g.offX)
	by := float32(g.offY + boardPixels + 8)
	vector.FillRect(screen, bx, by, float32(boardPixels), float32(len(lines)*lineH+8), color.RGBA{R: 6, G: 10, B: 6, A: 210}, false)
	vector.StrokeRect(screen, bx, by, float32(boardPixels), float32(len(lines)*lineH+8), 1.0, color.RGBA{R: 60, G: 100, B: 60, A: 180}, false)
	for i, l := range lines {
		drawText(screen, l, int(bx)+6, int(by)+4+i*lineH, hudTextColor)
	}
}

// drawText renders s with the HUD face, top-left anchored at (x, y).
func drawText(dst *ebiten.Image, s string, x, y int, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(dst, s, hudFace, op)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// WindowSize returns the preferred window size.
func (g *Game) WindowSize() (int, int) {
	return g.width, g.height
}
