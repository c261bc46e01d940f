package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/shashiranjanraj/sampleapp/internal/server"
	"github.com/shashiranjanraj/sampleapp/pkg/fault"
	"github.com/shashiranjanraj/sampleapp/pkg/logger"
)

// State is a Bootstrapper's position in bring-up.
type State int

const (
	Idle State = iota
	TransportReady
	PersistenceReady
	ObservabilityReady
	CORSReady
	RoutesReady
	FaultBoundaryReady
	Listening
	Failed
)

var stateNames = [...]string{
	Idle:               "idle",
	TransportReady:     "transport-ready",
	PersistenceReady:   "persistence-ready",
	ObservabilityReady: "observability-ready",
	CORSReady:          "cors-ready",
	RoutesReady:        "routes-ready",
	FaultBoundaryReady: "fault-boundary-ready",
	Listening:          "listening",
	Failed:             "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Config is the input to bring-up.
type Config struct {
	Port      int
	Env       string
	BodyLimit int64
}

// Stage is one step of bring-up. Ready is the state reached when Run succeeds.
type Stage struct {
	Name  string
	Ready State
	Run   func(ctx context.Context) error
}

// Bootstrapper drives the stages in order and then listens. Each instance
// runs at most once.
type Bootstrapper struct {
	cfg        Config
	log        *slog.Logger
	conn       Connector
	build      ModelBuilder
	registrars []RouteRegistrar
	fault      fault.Handler
	policy     OriginPolicy

	listen   func(network, addr string) (net.Listener, error)
	exit     func(code int)
	onListen func(addr net.Addr)

	mu          sync.Mutex
	state       State
	transitions []State
	sc          *Context
}

// New returns a Bootstrapper with the default origin policy, the JSON fault
// handler and a real listener.
func New(cfg Config, log *slog.Logger) *Bootstrapper {
	if log == nil {
		log = logger.L
	}
	if cfg.Env == "" {
		cfg.Env = DefaultEnvironment
	}
	return &Bootstrapper{
		cfg:         cfg,
		log:         log,
		fault:       fault.JSONHandler{},
		policy:      DefaultOriginPolicy(),
		listen:      net.Listen,
		exit:        os.Exit,
		transitions: []State{Idle},
	}
}

// Persistence sets the storage collaborators.
func (b *Bootstrapper) Persistence(conn Connector, build ModelBuilder) *Bootstrapper {
	b.conn, b.build = conn, build
	return b
}

// Routes appends route registrars. They run in the order given.
func (b *Bootstrapper) Routes(registrars ...RouteRegistrar) *Bootstrapper {
	b.registrars = append(b.registrars, registrars...)
	return b
}

// ErrorHandler replaces the fault handler.
func (b *Bootstrapper) ErrorHandler(h fault.Handler) *Bootstrapper {
	b.fault = h
	return b
}

// Origins replaces the cross-origin policy.
func (b *Bootstrapper) Origins(p OriginPolicy) *Bootstrapper {
	b.policy = p
	return b
}

// Listener replaces net.Listen.
func (b *Bootstrapper) Listener(fn func(network, addr string) (net.Listener, error)) *Bootstrapper {
	b.listen = fn
	return b
}

// Exit replaces os.Exit.
func (b *Bootstrapper) Exit(fn func(code int)) *Bootstrapper {
	b.exit = fn
	return b
}

// OnListen is called with the bound address once the socket is open.
func (b *Bootstrapper) OnListen(fn func(addr net.Addr)) *Bootstrapper {
	b.onListen = fn
	return b
}

// State reports the current state.
func (b *Bootstrapper) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Transitions returns every state visited so far, starting with Idle.
func (b *Bootstrapper) Transitions() []State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]State(nil), b.transitions...)
}

// Context returns the service context, or nil before transport is ready.
func (b *Bootstrapper) Context() *Context {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sc
}

func (b *Bootstrapper) advance(s State) {
	b.mu.Lock()
	b.state = s
	b.transitions = append(b.transitions, s)
	b.mu.Unlock()
}

// Stages lists bring-up in execution order.
func (b *Bootstrapper) Stages() []Stage {
	return []Stage{
		{Name: StageTransport, Ready: TransportReady, Run: func(context.Context) error {
			sc, err := InitializeTransport(b.cfg.Port, TransportConfig{BodyLimit: b.cfg.BodyLimit}, b.log)
			if err != nil {
				return err
			}
			b.mu.Lock()
			b.sc = sc
			b.mu.Unlock()
			return nil
		}},
		{Name: StagePersistence, Ready: PersistenceReady, Run: func(ctx context.Context) error {
			_, err := BindPersistence(ctx, b.sc, b.conn, b.build)
			return err
		}},
		{Name: StageObservability, Ready: ObservabilityReady, Run: func(context.Context) error {
			_, err := BindObservability(b.sc)
			return err
		}},
		{Name: StageCORS, Ready: CORSReady, Run: func(context.Context) error {
			_, err := BindCORS(b.sc, b.policy, b.cfg.Env)
			return err
		}},
		{Name: StageRoutes, Ready: RoutesReady, Run: func(context.Context) error {
			_, err := BindRoutes(b.sc, b.registrars...)
			return err
		}},
		{Name: StageErrorHandler, Ready: FaultBoundaryReady, Run: func(context.Context) error {
			_, err := BindFaultBoundary(b.sc, b.fault)
			return err
		}},
	}
}

// Bring runs every stage in order and stops at the first failure, leaving
// the Bootstrapper in Failed. It does not listen.
func (b *Bootstrapper) Bring(ctx context.Context) (*Context, error) {
	b.mu.Lock()
	if b.state != Idle {
		b.mu.Unlock()
		return nil, ErrAlreadyStarted
	}
	b.mu.Unlock()

	for _, stage := range b.Stages() {
		if err := stage.Run(ctx); err != nil {
			b.fail()
			if StageOf(err) == "" {
				err = &InitError{Stage: stage.Name, Err: err}
			}
			return nil, err
		}
		b.advance(stage.Ready)
	}
	b.log.Info("bootstrapping done")
	return b.sc, nil
}

func (b *Bootstrapper) fail() {
	b.advance(Failed)
	if sc := b.Context(); sc != nil {
		if m := sc.Models(); m != nil {
			_ = m.Close()
		}
	}
}

// Start brings the service up, binds the recorded port and serves until ctx
// is cancelled.
func (b *Bootstrapper) Start(ctx context.Context) error {
	sc, err := b.Bring(ctx)
	if err != nil {
		return err
	}

	handler := sc.Handler()
	ln, err := b.listen("tcp", fmt.Sprintf(":%d", sc.Port()))
	if err != nil {
		b.log.Error("stage failed", "stage", StageListen, "error", err)
		b.fail()
		return &InitError{Stage: StageListen, Err: err}
	}
	b.advance(Listening)
	b.log.Info("up and running", "port", sc.Port(), "addr", ln.Addr().String())
	if b.onListen != nil {
		b.onListen(ln.Addr())
	}

	defer func() {
		if m := sc.Models(); m != nil {
			_ = m.Close()
		}
	}()
	return server.Serve(ctx, ln, handler, b.log)
}

// Run is Start for main: any failure is logged and the process exits with
// status 1.
func (b *Bootstrapper) Run(ctx context.Context) {
	err := b.Start(ctx)
	if err == nil {
		return
	}
	if stage := StageOf(err); stage != "" {
		b.log.Error("bootstrapping failed", "stage", stage, "error", err)
	} else {
		b.log.Error("server stopped", "error", err)
	}
	b.exit(1)
}
