package engine

import (
	"image/color"
	"testing"
	"time"

	"github.com/Preethi0409/canvas/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strokeOp(id, clr string, tool wire.Tool, width float64, points ...wire.Point) wire.Operation {
	return wire.Operation{
		ID: id, Tool: tool, Color: clr, LineWidth: width, Points: points,
		CreatedAt: time.Now(),
	}
}

func TestRenderIdempotent(t *testing.T) {
	ops := []wire.Operation{
		strokeOp("a", "#ff0000", wire.ToolBrush, 4, wire.Point{X: 5, Y: 5}, wire.Point{X: 40, Y: 30}),
		strokeOp("b", "#00ff00", wire.ToolBrush, 2, wire.Point{X: 10, Y: 45}, wire.Point{X: 45, Y: 10}),
	}

	s1 := NewSurface(64, 64)
	Render(s1, ops)
	first := make([]byte, len(s1.Image().Pix))
	copy(first, s1.Image().Pix)

	Render(s1, ops)
	assert.Equal(t, first, s1.Image().Pix, "re-render changed pixels")

	// A fresh surface rendered once matches too.
	s2 := NewSurface(64, 64)
	Render(s2, ops)
	assert.Equal(t, first, s2.Image().Pix)
}

func TestRenderClearsPreviousContent(t *testing.T) {
	s := NewSurface(32, 32)
	Render(s, []wire.Operation{
		strokeOp("a", "#000000", wire.ToolBrush, 6, wire.Point{X: 16, Y: 16}),
	})
	Render(s, nil)

	blank := NewSurface(32, 32)
	assert.Equal(t, blank.Image().Pix, s.Image().Pix)
}

func TestDrawOperationStrokesSegment(t *testing.T) {
	s := NewSurface(32, 32)
	DrawOperation(s, strokeOp("a", "#ff0000", wire.ToolBrush, 3, wire.Point{X: 4, Y: 16}, wire.Point{X: 28, Y: 16}))

	red := color.RGBA{R: 0xff, A: 0xff}
	assert.Equal(t, red, s.Image().RGBAAt(16, 16), "midpoint of the segment")
	assert.Equal(t, color.RGBA{}, s.Image().RGBAAt(16, 2), "far from the stroke")
}

func TestEraserClearsDestination(t *testing.T) {
	s := NewSurface(32, 32)
	DrawOperation(s, strokeOp("a", "#0000ff", wire.ToolBrush, 10, wire.Point{X: 16, Y: 16}))
	require.NotEqual(t, color.RGBA{}, s.Image().RGBAAt(16, 16))

	// Eraser color is ignored; it always clears.
	DrawOperation(s, strokeOp("b", "#ff0000", wire.ToolEraser, 10, wire.Point{X: 16, Y: 16}))
	assert.Equal(t, color.RGBA{}, s.Image().RGBAAt(16, 16))
}

func TestSinglePointOperationDrawsDot(t *testing.T) {
	s := NewSurface(16, 16)
	DrawOperation(s, strokeOp("a", "#000000", wire.ToolBrush, 2, wire.Point{X: 8, Y: 8}))
	assert.Equal(t, color.RGBA{A: 0xff}, s.Image().RGBAAt(8, 8))
}

func TestDrawOperationWithoutPoints(t *testing.T) {
	s := NewSurface(16, 16)
	DrawOperation(s, strokeOp("a", "#000000", wire.ToolBrush, 2))

	blank := NewSurface(16, 16)
	assert.Equal(t, blank.Image().Pix, s.Image().Pix)
}

func TestStrokesOutsideBoundsAreClipped(t *testing.T) {
	s := NewSurface(16, 16)
	DrawOperation(s, strokeOp("a", "#000000", wire.ToolBrush, 4, wire.Point{X: -10, Y: -10}, wire.Point{X: 30, Y: 30}))
	assert.Equal(t, color.RGBA{A: 0xff}, s.Image().RGBAAt(8, 8))
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#ff0000", color.RGBA{R: 0xff, A: 0xff}},
		{"#0f0", color.RGBA{G: 0xff, A: 0xff}},
		{"#AABBCC", color.RGBA{R: 0xaa, G: 0xbb, B: 0xcc, A: 0xff}},
		{"", color.RGBA{A: 0xff}},
		{"red", color.RGBA{A: 0xff}},
		{"#zzzzzz", color.RGBA{A: 0xff}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseHexColor(tt.in), tt.in)
	}
}
