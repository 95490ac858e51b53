package engine

import (
	"image"
	"image/color"
	"math"

	"github.com/Preethi0409/canvas/internal/wire"
)

// Surface is the in-memory raster a canvas session draws on. Pixels outside
// any stroke stay fully transparent, which doubles as the "blank" state.
type Surface struct {
	img *image.RGBA
}

func NewSurface(width, height int) *Surface {
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Clear resets every pixel to transparent.
func (s *Surface) Clear() {
	for i := range s.img.Pix {
		s.img.Pix[i] = 0
	}
}

// Image exposes the raster for inspection and export.
func (s *Surface) Image() *image.RGBA { return s.img }

// Render replays a prefix of the operation log onto the surface: clear, then
// stroke every operation in order. Calling it twice with the same operations
// yields identical pixels.
func Render(s *Surface, ops []wire.Operation) {
	s.Clear()
	for _, op := range ops {
		DrawOperation(s, op)
	}
}

// DrawOperation strokes a single operation onto the surface without touching
// what is already there. Used for incremental draws of newly arrived
// operations; Render uses it for full replays.
func DrawOperation(s *Surface, op wire.Operation) {
	if len(op.Points) == 0 {
		return
	}
	erase := op.Tool == wire.ToolEraser
	col := parseHexColor(op.Color)
	radius := op.LineWidth / 2
	if radius < 0.5 {
		radius = 0.5
	}

	prev := op.Points[0]
	stampDisc(s.img, prev.X, prev.Y, radius, col, erase)
	for _, p := range op.Points[1:] {
		stampSegment(s.img, prev, p, radius, col, erase)
		prev = p
	}
}

// stampSegment walks from a to b stamping round caps, giving a continuous
// round-capped line.
func stampSegment(img *image.RGBA, a, b wire.Point, radius float64, col color.RGBA, erase bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	dist := math.Hypot(dx, dy)
	steps := int(math.Ceil(dist))
	if steps == 0 {
		steps = 1
	}
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		stampDisc(img, a.X+dx*t, a.Y+dy*t, radius, col, erase)
	}
}

func stampDisc(img *image.RGBA, cx, cy, radius float64, col color.RGBA, erase bool) {
	bounds := img.Bounds()
	minX := int(math.Floor(cx - radius))
	maxX := int(math.Ceil(cx + radius))
	minY := int(math.Floor(cy - radius))
	maxY := int(math.Ceil(cy + radius))

	for y := minY; y <= maxY; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := minX; x <= maxX; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			ddx := float64(x) - cx
			ddy := float64(y) - cy
			if ddx*ddx+ddy*ddy > radius*radius {
				continue
			}
			if erase {
				img.SetRGBA(x, y, color.RGBA{})
			} else {
				img.SetRGBA(x, y, col)
			}
		}
	}
}

// parseHexColor accepts #RGB and #RRGGBB; anything else renders black, the
// toolbar default.
func parseHexColor(s string) color.RGBA {
	black := color.RGBA{A: 0xff}
	if len(s) == 0 || s[0] != '#' {
		return black
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return black
	}
	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		hi, ok1 := hexVal(hex[i*2])
		lo, ok2 := hexVal(hex[i*2+1])
		if !ok1 || !ok2 {
			return black
		}
		rgb[i] = hi<<4 | lo
	}
	return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff}
}

func hexVal(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
