package imgproc

import (
	"math"

	"github.com/MeKo-Tech/surveyscan/internal/utils"
)

// TraceContour extracts the external boundary polygon of the labeled
// component using Moore-neighbor tracing, restricted to the component's
// bounding box. Collinear intermediate points are dropped. Returned
// points are pixel-center coordinates.
func TraceContour(labels []int, w, h, label int, comp Component) []utils.Point {
	if label <= 0 || len(labels) != w*h {
		return nil
	}
	sx, sy := startingBoundaryPixel(labels, w, h, label, comp)
	if sx == -1 {
		return nil
	}

	pts := make([]utils.Point, 0, 64)
	addPoint := func(x, y int) {
		p := utils.Point{X: float64(x), Y: float64(y)}
		if n := len(pts); n >= 2 {
			a, b := pts[n-2], pts[n-1]
			cross := (b.X-a.X)*(p.Y-b.Y) - (b.Y-a.Y)*(p.X-b.X)
			if cross == 0 {
				pts = pts[:n-1]
			}
		}
		pts = append(pts, p)
	}

	cx, cy := sx, sy
	bx, by := sx-1, sy // backtrack to the left of the start pixel
	addPoint(cx, cy)

	startCx, startCy := cx, cy
	startBx, startBy := bx, by
	maxSteps := w*h*4 + 8

	for steps := 0; steps < maxSteps; steps++ {
		nx, ny, nbx, nby, found := nextBoundaryPixel(labels, w, h, label, cx, cy, bx, by)
		if !found {
			break
		}
		bx, by = nbx, nby
		cx, cy = nx, ny

		if len(pts) == 0 || pts[len(pts)-1].X != float64(cx) || pts[len(pts)-1].Y != float64(cy) {
			addPoint(cx, cy)
		}
		if cx == startCx && cy == startCy && bx == startBx && by == startBy {
			break
		}
	}

	// Drop a duplicated closing point if present.
	if n := len(pts); n >= 2 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	return pts
}

func startingBoundaryPixel(labels []int, w, h, label int, comp Component) (int, int) {
	isLabel := func(x, y int) bool {
		if x < 0 || y < 0 || x >= w || y >= h {
			return false
		}
		return labels[y*w+x] == label
	}
	for y := comp.MinY; y <= comp.MaxY; y++ {
		for x := comp.MinX; x <= comp.MaxX; x++ {
			if !isLabel(x, y) {
				continue
			}
			if !isLabel(x+1, y) || !isLabel(x-1, y) || !isLabel(x, y+1) || !isLabel(x, y-1) {
				return x, y
			}
		}
	}
	for y := comp.MinY; y <= comp.MaxY; y++ {
		for x := comp.MinX; x <= comp.MaxX; x++ {
			if isLabel(x, y) {
				return x, y
			}
		}
	}
	return -1, -1
}

// 8-neighborhood in clockwise order: E, SE, S, SW, W, NW, N, NE.
var (
	mooreDx = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	mooreDy = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
)

func nextBoundaryPixel(labels []int, w, h, label, cx, cy, bx, by int) (int, int, int, int, bool) {
	isLabel := func(x, y int) bool {
		if x < 0 || y < 0 || x >= w || y >= h {
			return false
		}
		return labels[y*w+x] == label
	}

	start := 0
	dx, dy := bx-cx, by-cy
	for i := range 8 {
		if mooreDx[i] == dx && mooreDy[i] == dy {
			start = (i + 1) % 8
			break
		}
	}

	for k := range 8 {
		i := (start + k) % 8
		tx, ty := cx+mooreDx[i], cy+mooreDy[i]
		if isLabel(tx, ty) {
			return tx, ty, cx, cy, true
		}
		// Advance the backtrack to this neighbor for clockwise scanning.
		bx, by = tx, ty
	}
	return 0, 0, bx, by, false
}

// PolygonArea returns the absolute shoelace area of a closed polygon.
func PolygonArea(pts []utils.Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	sum := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(sum) / 2
}

// PolygonPerimeter returns the closed-path length of a polygon.
func PolygonPerimeter(pts []utils.Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	sum := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].Distance(pts[j])
	}
	return sum
}
