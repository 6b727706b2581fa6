package viewer

import (
	"cmp"
	"context"
	"fmt"
	"image/color"
	"math"
	"slices"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tochemey/goakt/v3/actor"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"

	"github.com/lao-tseu-is-alive/go-flocking/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flocking/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-flocking/pkg/ui"
)

// DrawTriangles indexes vertices with uint16.
const maxBatchVertices = math.MaxUint16 - 2

var (
	whiteImage     = ebiten.NewImage(3, 3)
	backgroundClr  = color.RGBA{R: 12, G: 14, B: 24, A: 255}
	boidClr        = color.RGBA{R: 100, G: 200, B: 255, A: 255}
	predatorClr    = color.RGBA{R: 255, G: 60, B: 60, A: 255}
	visionClr      = color.RGBA{R: 255, G: 60, B: 60, A: 90}
	worldBorderClr = color.RGBA{R: 70, G: 70, B: 90, A: 255}
)

// Game renders the snapshots of a flock actor and drives it one batch of
// ticks per frame.
type Game struct {
	ctx        context.Context
	logger     *zap.Logger
	flockPID   *actor.PID
	snapshotCh chan *simulation.Snapshot
	lastState  *simulation.Snapshot

	cfg            simulation.Config
	screenW        int
	screenH        int
	camera         camera
	stepRequested  bool
	resetRequested bool

	// UI Controls
	panel               *ui.UIPanel
	widgetPaused        *ui.Checkbox
	widgetShowVision    *ui.Checkbox
	widgetShowBorder    *ui.Checkbox
	widgetTicksPerFrame *ui.Slider

	// batched boid triangles
	vertices []ebiten.Vertex
	indices  []uint16
	order    []int

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64 // Rolling average in ms
}

// NewGame spawns the flock actor in system and builds the window contents.
// The game owns flock from now on.
func NewGame(ctx context.Context, system actor.ActorSystem, flock *simulation.Flock, screenW, screenH int, logger *zap.Logger) (*Game, error) {
	// 1. Buffer to avoid blocking the actor
	snapshotCh := make(chan *simulation.Snapshot, 10)

	cfg := flock.Config()
	initial := flock.Snapshot()

	// 2. Spawn the flock actor, it pushes a snapshot after every message
	pid, err := simulation.SpawnFlock(ctx, system, flock, snapshotCh)
	if err != nil {
		return nil, fmt.Errorf("failed to spawn flock: %w", err)
	}

	g := &Game{
		ctx:        ctx,
		logger:     logger,
		flockPID:   pid,
		snapshotCh: snapshotCh,
		lastState:  initial,
		cfg:        cfg,
		screenW:    screenW,
		screenH:    screenH,
		camera:     newCamera(cfg.World, screenW, screenH),
	}

	// 3. HUD panel
	g.panel = ui.NewUIPanel("Flock (H to hide)", 10, 10, 230, min(float64(screenH)-20, 330))

	g.panel.AddSection("Simulation")
	g.widgetPaused = g.panel.AddCheckbox("Paused (space)", false)
	g.widgetTicksPerFrame = g.panel.AddSlider("Ticks / frame", 1, 10, 1)
	g.widgetTicksPerFrame.Step = 1
	g.panel.AddButton("Step", func() { g.stepRequested = true })
	g.panel.AddButton("Reset", func() { g.resetRequested = true })

	g.panel.AddSection("Display")
	g.widgetShowBorder = g.panel.AddCheckbox("World border", true)
	if cfg.Predator != nil {
		g.widgetShowVision = g.panel.AddCheckbox("Predator vision", true)
	}

	g.panel.AddSection("Stats")
	g.panel.AddText(func() string { return fmt.Sprintf("Tick: %d", g.lastState.Tick) })
	g.panel.AddText(func() string { return fmt.Sprintf("Boids: %d", len(g.lastState.Positions)) })
	g.panel.AddText(func() string {
		return fmt.Sprintf("Fallbacks: %d / %d", g.lastState.Stats.Degenerate, g.lastState.Stats.Jittered)
	})
	g.panel.AddText(func() string { return fmt.Sprintf("%s, %s", cfg.BoundaryPolicy, cfg.UpdateMode) })

	logger.Info("viewer ready",
		zap.Int("width", screenW),
		zap.Int("height", screenH),
		zap.Float64("scale", g.camera.scale),
	)
	return g, nil
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	// 1. Keyboard shortcuts, then UI Panel
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.widgetPaused.Value = !g.widgetPaused.Value
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.panel.Hidden = !g.panel.Hidden
	}
	g.panel.Update()

	// 2. Retrieve Latest State (Non-blocking)
	select {
	case snap := <-g.snapshotCh:
		g.lastState = snap
	default:
		// Use previous state if new one isn't ready
	}

	// 3. Drive the flock
	switch {
	case g.resetRequested:
		g.resetRequested = false
		return g.tell(simulation.ResetMessage())
	case g.stepRequested:
		g.stepRequested = false
		return g.tell(simulation.TickMessage(1))
	case !g.widgetPaused.Value:
		return g.tell(simulation.TickMessage(uint32(g.widgetTicksPerFrame.Value)))
	}
	return nil
}

func (g *Game) tell(msg proto.Message) error {
	if err := actor.Tell(g.ctx, g.flockPID, msg); err != nil {
		return fmt.Errorf("flock actor unreachable: %w", err)
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(backgroundClr)

	if g.widgetShowBorder.Value {
		x0, y0 := g.camera.project(g.cfg.World.Min)
		x1, y1 := g.camera.project(g.cfg.World.Max)
		vector.StrokeRect(screen, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), 1, worldBorderClr, true)
	}

	g.drawThreat(screen)
	g.drawFlock(screen)

	// HUD
	g.panel.Draw(screen)

	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\n\nUpdate: %.2fms\nDraw:   %.2fms",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.updateAvg,
		g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, g.screenW-130, 10)
}

func (g *Game) drawThreat(screen *ebiten.Image) {
	threat := g.lastState.Threat
	if threat == nil {
		return
	}
	x, y := g.camera.project(*threat)
	if g.widgetShowVision != nil && g.widgetShowVision.Value {
		r := g.cfg.Predator.VisionRadius * g.camera.scale
		vector.StrokeCircle(screen, float32(x), float32(y), float32(r), 1, visionClr, true)
	}
	vector.FillCircle(screen, float32(x), float32(y), 6, predatorClr, true)
}

// drawFlock draws every boid as a triangle pointing along its velocity,
// far boids first and darker.
func (g *Game) drawFlock(screen *ebiten.Image) {
	snap := g.lastState
	g.order = g.order[:0]
	for i := range snap.Positions {
		g.order = append(g.order, i)
	}
	if g.cfg.World.Active(2) {
		slices.SortFunc(g.order, func(a, b int) int {
			return cmp.Compare(snap.Positions[a].Z, snap.Positions[b].Z)
		})
	}

	g.vertices = g.vertices[:0]
	g.indices = g.indices[:0]
	for _, i := range g.order {
		if len(g.vertices)+3 > maxBatchVertices {
			g.flush(screen)
		}
		g.appendBoid(snap.Positions[i], snap.Velocities[i])
	}
	g.flush(screen)
}

func (g *Game) appendBoid(pos, vel geometry.Vector) {
	x, y := g.camera.project(pos)
	angle := vel.Heading()
	shade := float32(0.35 + 0.65*g.camera.depth(pos))
	size := 4 + 2*g.camera.depth(pos)

	r := float32(boidClr.R) / 255 * shade
	gr := float32(boidClr.G) / 255 * shade
	b := float32(boidClr.B) / 255 * shade

	base := uint16(len(g.vertices))
	for _, corner := range [3]struct{ turn, length float64 }{
		{0, size * 1.5},
		{2.5, size},
		{-2.5, size},
	} {
		g.vertices = append(g.vertices, ebiten.Vertex{
			DstX:   float32(x + math.Cos(angle+corner.turn)*corner.length),
			DstY:   float32(y + math.Sin(angle+corner.turn)*corner.length),
			SrcX:   1,
			SrcY:   1,
			ColorR: r, ColorG: gr, ColorB: b, ColorA: 1,
		})
	}
	g.indices = append(g.indices, base, base+1, base+2)
}

func (g *Game) flush(screen *ebiten.Image) {
	if len(g.indices) == 0 {
		return
	}
	screen.DrawTriangles(g.vertices, g.indices, whiteImage, &ebiten.DrawTrianglesOptions{})
	g.vertices = g.vertices[:0]
	g.indices = g.indices[:0]
}

func (g *Game) Layout(w, h int) (int, int) { return g.screenW, g.screenH }

func init() {
	whiteImage.Fill(color.White)
}
