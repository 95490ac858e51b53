package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = func(a ...any) { fmt.Println(a...) }

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a stub.
type execIface interface {
	isLoggedIn() bool
	onCanvas() bool
	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	CreateCanvas(ctx context.Context, args []string) error
	JoinCanvas(ctx context.Context, args []string) error
	ListCanvases(ctx context.Context) error
	Leave(ctx context.Context) error
	Stroke(ctx context.Context, args []string) error
	Cursor(ctx context.Context, args []string) error
	SetTool(args []string) error
	SetColor(args []string) error
	SetWidth(args []string) error
	Undo(ctx context.Context) error
	Redo(ctx context.Context) error
	Clear(ctx context.Context) error
	Who(ctx context.Context) error
	Ops(ctx context.Context) error
}

// runREPL reads a line, parses the first token as the command, and dispatches
// to methods on 'a'. The loop exits on scanner EOF or "exit"/"quit". Command
// errors are reported by the handlers themselves; the loop keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("canvas> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printHelp(a)

		case "register":
			_ = a.Register(ctx, args)

		case "login":
			_ = a.Login(ctx, args)

		case "logout":
			requireLogin(a, func() { _ = a.Logout(ctx) })

		case "create":
			requireLogin(a, func() { _ = a.CreateCanvas(ctx, args) })

		case "join":
			requireLogin(a, func() { _ = a.JoinCanvas(ctx, args) })

		case "l", "list":
			requireLogin(a, func() { _ = a.ListCanvases(ctx) })

		case "leave":
			requireCanvas(a, func() { _ = a.Leave(ctx) })

		case "stroke":
			requireCanvas(a, func() { _ = a.Stroke(ctx, args) })

		case "cursor":
			requireCanvas(a, func() { _ = a.Cursor(ctx, args) })

		case "tool":
			_ = a.SetTool(args)

		case "color":
			_ = a.SetColor(args)

		case "width":
			_ = a.SetWidth(args)

		case "undo":
			requireCanvas(a, func() { _ = a.Undo(ctx) })

		case "redo":
			requireCanvas(a, func() { _ = a.Redo(ctx) })

		case "clear":
			requireCanvas(a, func() { _ = a.Clear(ctx) })

		case "who":
			requireCanvas(a, func() { _ = a.Who(ctx) })

		case "ops":
			requireCanvas(a, func() { _ = a.Ops(ctx) })

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func requireLogin(a execIface, fn func()) {
	if !a.isLoggedIn() {
		printlnFn("Log in first")
		return
	}
	fn()
}

func requireCanvas(a execIface, fn func()) {
	if !a.onCanvas() {
		printlnFn("Join a canvas first")
		return
	}
	fn()
}

func printHelp(a execIface) {
	if !a.isLoggedIn() {
		printlnFn("Available commands: register <user> <pass>, login <user> <pass>, exit")
		return
	}
	if !a.onCanvas() {
		printlnFn("Available commands: create <name> [pass], join <id> [pass], (l)ist, logout, exit")
		return
	}
	printlnFn("Available commands: stroke <x,y ...>, cursor <x,y>, tool, color, width, undo, redo, clear, who, ops, leave, logout, exit")
}
