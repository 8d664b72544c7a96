package gauge

import (
	"math"

	drawille "github.com/exrook/drawille-go"
)

// The readiness dial opens at the bottom: it starts at 135° (lower left),
// runs clockwise over the top and ends at 45° (lower right). Angles are in
// screen space, so 90° points down.
const (
	dialStart     = 135.0
	dialSweep     = 270.0
	dialThickness = 5
)

// arc is a ring segment of a given thickness, drawn inward from radius.
type arc struct {
	cx, cy    int
	radius    int
	thickness int
	start     float64
	sweep     float64
}

func newDial(cx, cy, radius float64, fill float64) arc {
	return arc{
		cx:        int(cx),
		cy:        int(cy),
		radius:    int(radius),
		thickness: dialThickness,
		start:     dialStart,
		sweep:     dialSweep * math.Max(0, math.Min(fill, 1)),
	}
}

// covers reports whether the point's angle lies inside the arc.
func (a arc) covers(px, py int) bool {
	if a.sweep >= 360 {
		return true
	}
	angle := math.Atan2(float64(py-a.cy), float64(px-a.cx)) * 180 / math.Pi
	// offset from start, clockwise, in [0, 360)
	offset := math.Mod(angle-a.start+720, 360)
	return offset <= a.sweep
}

// draw plots every ring of the arc with the midpoint circle algorithm, which
// leaves no gaps between neighbouring dots.
func (a arc) draw(canvas *drawille.Canvas) {
	if a.sweep <= 0 {
		return
	}
	for t := range a.thickness {
		if r := a.radius - t; r > 0 {
			a.ring(canvas, r)
		}
	}
}

func (a arc) ring(canvas *drawille.Canvas, r int) {
	x, y := r, 0
	d := 1 - r
	for x >= y {
		for _, p := range [8][2]int{
			{x, y}, {y, x}, {-y, x}, {-x, y},
			{-x, -y}, {-y, -x}, {y, -x}, {x, -y},
		} {
			px, py := a.cx+p[0], a.cy+p[1]
			if a.covers(px, py) {
				canvas.Set(px, py)
			}
		}

		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
}
