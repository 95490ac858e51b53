package engine

import "github.com/Preethi0409/canvas/internal/wire"

// ToolSettings is the brush state applied to a stroke when it is finalized.
type ToolSettings struct {
	Tool      wire.Tool
	Color     string
	LineWidth float64
}

// DefaultToolSettings matches the initial toolbar state of the UI.
func DefaultToolSettings() ToolSettings {
	return ToolSettings{Tool: wire.ToolBrush, Color: "#000000", LineWidth: 3}
}

// Recorder captures one pointer-down-to-pointer-up gesture into an operation
// draft. It never persists or broadcasts anything itself.
type Recorder struct {
	settings ToolSettings
	path     []wire.Point
	active   bool
}

func NewRecorder() *Recorder {
	return &Recorder{settings: DefaultToolSettings()}
}

func (r *Recorder) Settings() ToolSettings { return r.settings }

func (r *Recorder) SetSettings(s ToolSettings) { r.settings = s }

// Begin starts a new in-progress path at the given sample. An unfinished
// previous path is discarded.
func (r *Recorder) Begin(p wire.Point) {
	r.path = []wire.Point{p}
	r.active = true
}

// Extend appends a sample to the in-progress path. No-op when no path is in
// progress.
func (r *Recorder) Extend(p wire.Point) {
	if !r.active {
		return
	}
	r.path = append(r.path, p)
}

// End finalizes the in-progress path into a draft, taking tool settings as
// they are at this moment. Returns nil if the path had no samples.
func (r *Recorder) End() *wire.OperationDraft {
	if !r.active || len(r.path) == 0 {
		r.path = nil
		r.active = false
		return nil
	}

	points := make([]wire.Point, len(r.path))
	copy(points, r.path)
	r.path = nil
	r.active = false

	return &wire.OperationDraft{
		Tool:      r.settings.Tool,
		Color:     r.settings.Color,
		LineWidth: r.settings.LineWidth,
		Points:    points,
	}
}
