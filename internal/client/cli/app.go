// Package cli is the interactive canvas client: a REPL around the drawing
// engine, talking to the server over HTTP and websocket and keeping a local
// sqlite cache so a rejoin renders instantly.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/Preethi0409/canvas/internal/client/api"
	"github.com/Preethi0409/canvas/internal/client/config"
	"github.com/Preethi0409/canvas/internal/client/engine"
	"github.com/Preethi0409/canvas/internal/client/session"
	"github.com/Preethi0409/canvas/internal/client/storage"
	"github.com/Preethi0409/canvas/internal/client/transport"
	"github.com/Preethi0409/canvas/internal/logging"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	api     *api.Client
	session *session.Manager
	cache   *storage.OperationCache
	db      *sql.DB

	recorder    *engine.Recorder
	coordinator *engine.Coordinator
	canvas      *api.Canvas
	stopCanvas  context.CancelFunc
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	db, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, err
	}

	sess := session.NewManager(storage.NewSessionRepository(db))
	if err := sess.Restore(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &App{
		config:   c,
		logger:   logger,
		api:      api.NewClient(logger, c.ServerURL, sess),
		session:  sess,
		cache:    storage.NewOperationCache(db),
		db:       db,
		recorder: engine.NewRecorder(),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

func (a *App) Close() {
	a.leaveCanvas()
	_ = a.db.Close()
}

func (a *App) isLoggedIn() bool {
	_, ok := a.session.CurrentUser()
	return ok
}

func (a *App) onCanvas() bool {
	return a.coordinator != nil
}

func (a *App) status() string {
	user, ok := a.session.CurrentUser()
	if !ok {
		return "logged out"
	}
	if a.canvas == nil {
		return user.Username
	}
	return user.Username + " @ " + a.canvas.Name
}

func (a *App) leaveCanvas() {
	if a.coordinator != nil {
		a.coordinator.Leave()
		a.coordinator = nil
	}
	if a.stopCanvas != nil {
		a.stopCanvas()
		a.stopCanvas = nil
	}
	a.canvas = nil
}

// joinCanvas wires a coordinator for one canvas: websocket channel, HTTP
// store, local cache, then snapshot hydration and heartbeats.
func (a *App) joinCanvas(ctx context.Context, canvas *api.Canvas, password string) error {
	channel := transport.NewChannel(a.logger, a.api.BaseURL(), a.session, password)
	surface := engine.NewSurface(a.config.CanvasWidth, a.config.CanvasHeight)
	coord := engine.NewCoordinator(a.logger, a.api, channel, a.session, a.cache, canvas.ID, surface)
	channel.OnReconnect(func() {
		if err := coord.Resync(ctx); err != nil {
			a.logger.Warn(ctx, "resync after reconnect failed", "canvas", canvas.ID, "error", err.Error())
		}
	})

	if err := coord.Join(ctx); err != nil {
		return err
	}

	hbCtx, cancel := context.WithCancel(ctx)
	coord.StartHeartbeats(hbCtx, a.config.HeartbeatInterval)

	a.coordinator = coord
	a.canvas = canvas
	a.stopCanvas = cancel
	return nil
}
