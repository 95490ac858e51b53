package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Preethi0409/canvas/internal/client/api"
	"github.com/Preethi0409/canvas/internal/client/storage"
	"github.com/Preethi0409/canvas/internal/wire"
)

func (a *App) Register(ctx context.Context, args []string) error {
	if len(args) < 2 {
		printlnFn("usage: register <username> <password>")
		return nil
	}
	res, err := a.api.Register(ctx, args[0], args[1], "")
	if err != nil {
		printlnFn("Registration failed:", err)
		return err
	}
	if err := a.startSession(ctx, res); err != nil {
		return err
	}
	printlnFn("Registered and logged in as", res.User.Username)
	return nil
}

func (a *App) Login(ctx context.Context, args []string) error {
	if len(args) < 2 {
		printlnFn("usage: login <username> <password>")
		return nil
	}
	res, err := a.api.Login(ctx, args[0], args[1])
	if err != nil {
		printlnFn("Login failed:", err)
		return err
	}
	if err := a.startSession(ctx, res); err != nil {
		return err
	}
	printlnFn("Logged in as", res.User.Username)
	return nil
}

func (a *App) startSession(ctx context.Context, res *api.AuthResult) error {
	return a.session.Start(ctx, &storage.Session{
		UserID:       res.User.ID,
		Username:     res.User.Username,
		ProfilePic:   res.User.ProfilePic,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	})
}

func (a *App) Logout(ctx context.Context) error {
	a.leaveCanvas()
	if err := a.session.End(ctx); err != nil {
		printlnFn("Logout failed:", err)
		return err
	}
	printlnFn("Logged out")
	return nil
}

func (a *App) CreateCanvas(ctx context.Context, args []string) error {
	if len(args) < 1 {
		printlnFn("usage: create <name> [password]")
		return nil
	}
	name := args[0]
	password := ""
	if len(args) > 1 {
		password = args[1]
	}
	canvas, err := a.api.CreateCanvas(ctx, name, password != "", password)
	if err != nil {
		printlnFn("Create failed:", err)
		return err
	}
	printlnFn("Created canvas", canvas.Name, "id:", canvas.ID)
	return nil
}

func (a *App) JoinCanvas(ctx context.Context, args []string) error {
	if len(args) < 1 {
		printlnFn("usage: join <canvas-id> [password]")
		return nil
	}
	id := args[0]
	password := ""
	if len(args) > 1 {
		password = args[1]
	}

	canvas, err := a.api.JoinCanvas(ctx, id, password)
	if err != nil {
		printlnFn("Join failed:", err)
		return err
	}

	a.leaveCanvas()
	if err := a.joinCanvas(ctx, canvas, password); err != nil {
		printlnFn("Join failed:", err)
		return err
	}
	printlnFn("Joined canvas", canvas.Name)
	return nil
}

func (a *App) ListCanvases(ctx context.Context) error {
	list, err := a.api.ListCanvases(ctx)
	if err != nil {
		printlnFn("List failed:", err)
		return err
	}
	if len(list) == 0 {
		printlnFn("No public canvases")
		return nil
	}
	for _, c := range list {
		printlnFn(fmt.Sprintf("%s  %s (by %s)", c.ID, c.Name, c.CreatedBy))
	}
	return nil
}

func (a *App) Leave(ctx context.Context) error {
	a.leaveCanvas()
	printlnFn("Left canvas")
	return nil
}

// Stroke records one gesture from x,y point arguments and commits it.
func (a *App) Stroke(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("usage: stroke <x,y> [x,y ...]")
		return nil
	}
	points, err := parsePoints(args)
	if err != nil {
		printlnFn("Bad point:", err)
		return err
	}

	a.recorder.Begin(points[0])
	for _, p := range points[1:] {
		a.recorder.Extend(p)
	}
	draft := a.recorder.End()
	if draft == nil {
		return nil
	}

	op, err := a.coordinator.CompleteStroke(ctx, *draft)
	if err != nil {
		printlnFn("Stroke not saved:", err)
		return err
	}
	printlnFn("Stroke saved as", op.ID)
	return nil
}

// Cursor broadcasts the live pointer position to other participants.
func (a *App) Cursor(ctx context.Context, args []string) error {
	if len(args) < 1 {
		printlnFn("usage: cursor <x,y>")
		return nil
	}
	points, err := parsePoints(args[:1])
	if err != nil {
		printlnFn("Bad point:", err)
		return err
	}
	if err := a.coordinator.MoveCursor(ctx, points[0].X, points[0].Y, a.recorder.Settings().Color); err != nil {
		printlnFn("Cursor broadcast failed:", err)
		return err
	}
	return nil
}

func (a *App) SetTool(args []string) error {
	if len(args) < 1 {
		printlnFn("usage: tool brush|eraser")
		return nil
	}
	tool := wire.Tool(args[0])
	if !tool.Valid() {
		printlnFn("Unknown tool:", args[0])
		return nil
	}
	s := a.recorder.Settings()
	s.Tool = tool
	a.recorder.SetSettings(s)
	printlnFn("Tool:", args[0])
	return nil
}

func (a *App) SetColor(args []string) error {
	if len(args) < 1 {
		printlnFn("usage: color <#rrggbb>")
		return nil
	}
	s := a.recorder.Settings()
	s.Color = args[0]
	a.recorder.SetSettings(s)
	printlnFn("Color:", args[0])
	return nil
}

func (a *App) SetWidth(args []string) error {
	if len(args) < 1 {
		printlnFn("usage: width <pixels>")
		return nil
	}
	w, err := strconv.ParseFloat(args[0], 64)
	if err != nil || w <= 0 {
		printlnFn("Width must be a positive number")
		return nil
	}
	s := a.recorder.Settings()
	s.LineWidth = w
	a.recorder.SetSettings(s)
	printlnFn("Width:", args[0])
	return nil
}

func (a *App) Undo(ctx context.Context) error {
	ok, err := a.coordinator.Undo(ctx)
	if err != nil {
		printlnFn("Undo broadcast failed:", err)
		return err
	}
	if !ok {
		printlnFn("Nothing to undo")
		return nil
	}
	printlnFn("Undone")
	return nil
}

func (a *App) Redo(ctx context.Context) error {
	ok, err := a.coordinator.Redo(ctx)
	if err != nil {
		printlnFn("Redo broadcast failed:", err)
		return err
	}
	if !ok {
		printlnFn("Nothing to redo")
		return nil
	}
	printlnFn("Redone")
	return nil
}

func (a *App) Clear(ctx context.Context) error {
	if err := a.coordinator.Clear(ctx); err != nil {
		printlnFn("Clear failed:", err)
		return err
	}
	printlnFn("Canvas cleared")
	return nil
}

func (a *App) Who(ctx context.Context) error {
	online := a.coordinator.Online(a.config.PresenceWindow)
	if len(online) == 0 {
		printlnFn("Nobody else is here")
		return nil
	}
	for _, p := range online {
		line := p.Username
		if p.Cursor != nil {
			line += fmt.Sprintf(" (cursor %.0f,%.0f)", p.Cursor.X, p.Cursor.Y)
		}
		printlnFn(line)
	}
	return nil
}

func (a *App) Ops(ctx context.Context) error {
	visible := a.coordinator.Visible()
	printlnFn(fmt.Sprintf("%d visible operation(s), cursor at %d", len(visible), a.coordinator.CurrentIndex()))
	for i, op := range visible {
		printlnFn(fmt.Sprintf("%3d  %s  %s  %d point(s)", i, op.ID, op.Tool, len(op.Points)))
	}
	return nil
}

func parsePoints(args []string) ([]wire.Point, error) {
	points := make([]wire.Point, 0, len(args))
	for _, arg := range args {
		xy := strings.SplitN(arg, ",", 2)
		if len(xy) != 2 {
			return nil, fmt.Errorf("expected x,y but got %q", arg)
		}
		x, err := strconv.ParseFloat(xy[0], 64)
		if err != nil {
			return nil, fmt.Errorf("bad x in %q", arg)
		}
		y, err := strconv.ParseFloat(xy[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad y in %q", arg)
		}
		points = append(points, wire.Point{X: x, Y: y})
	}
	return points, nil
}
