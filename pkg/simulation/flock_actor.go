package simulation

import (
	"context"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// FlockActorName is the name the flock actor is spawned under.
const FlockActorName = "flock"

// TickMessage asks the flock actor to advance n ticks.
func TickMessage(n uint32) proto.Message {
	return wrapperspb.UInt32(n)
}

// ResetMessage asks the flock actor to restore the initial population.
func ResetMessage() proto.Message {
	return &emptypb.Empty{}
}

// FlockActor hosts a Flock inside an actor system. Messages are processed
// one at a time, so the flock keeps its single-threaded stepping while the
// render loop runs on its own goroutine.
type FlockActor struct {
	flock *Flock
	// Communication with UI
	snapshotCh chan<- *Snapshot
	// --- Benchmark Stats ---
	tickCount   int
	lastLogTime time.Time
}

var _ actor.Actor = (*FlockActor)(nil)

// NewFlockActor wraps flock. After every message that changes the flock a
// snapshot is offered on snapshotCh, dropped if the receiver is busy.
func NewFlockActor(flock *Flock, snapshotCh chan<- *Snapshot) *FlockActor {
	return &FlockActor{
		flock:       flock,
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

// SpawnFlock spawns a FlockActor for flock in system.
func SpawnFlock(ctx context.Context, system actor.ActorSystem, flock *Flock, snapshotCh chan<- *Snapshot) (*actor.PID, error) {
	return system.Spawn(ctx, FlockActorName, NewFlockActor(flock, snapshotCh))
}

func (a *FlockActor) PreStart(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("Flock of %d boids is taking off...", a.flock.Len())
	return nil
}

func (a *FlockActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {

	case *goaktpb.PostStart:
		ctx.Logger().Info("Flock started")
		a.pushSnapshot()

	// The Main Simulation Step (Driven by the render loop)
	case *wrapperspb.UInt32Value:
		a.advance(msg.GetValue())
		a.logBenchmarks(ctx)
		a.pushSnapshot()

	case *emptypb.Empty:
		a.flock.Reset()
		ctx.Logger().Info("Flock reset")
		a.pushSnapshot()

	default:
		ctx.Unhandled()
	}
}

func (a *FlockActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("Flock landed after %d ticks", a.flock.Tick())
	return nil
}

func (a *FlockActor) advance(n uint32) {
	for range n {
		a.flock.Step()
	}
	a.tickCount += int(n)
}

func (a *FlockActor) logBenchmarks(ctx *actor.ReceiveContext) {
	if time.Since(a.lastLogTime) >= time.Second {
		stats := a.flock.Stats()
		ctx.Logger().Infof("📊 TICK RATE: %d/sec | Boids: %d | Tick: %d | Degenerate: %d | Jittered: %d",
			a.tickCount, a.flock.Len(), a.flock.Tick(), stats.Degenerate, stats.Jittered)
		a.tickCount = 0
		a.lastLogTime = time.Now()
	}
}

func (a *FlockActor) pushSnapshot() {
	if a.snapshotCh == nil {
		return
	}
	select {
	case a.snapshotCh <- a.flock.Snapshot():
	default:
		// UI busy, skip frame
	}
}
