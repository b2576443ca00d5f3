package imgproc

import "container/list"

// Component holds statistics for one 4-connected foreground component.
type Component struct {
	Count int
	SumX  float64
	SumY  float64
	MinX  int
	MinY  int
	MaxX  int
	MaxY  int
}

// CentroidX returns the mean x coordinate of the component's pixels.
func (c Component) CentroidX() float64 { return c.SumX / float64(c.Count) }

// CentroidY returns the mean y coordinate of the component's pixels.
func (c Component) CentroidY() float64 { return c.SumY / float64(c.Count) }

// ConnectedComponents labels 4-connected foreground components in the
// mask. It returns per-component statistics and the label map; labels
// start at 1, so component comps[i] carries label i+1.
func ConnectedComponents(mask []bool, w, h int) ([]Component, []int) {
	labels := make([]int, w*h)
	var comps []Component
	label := 1

	for y := range h {
		for x := range w {
			idx := y*w + x
			if mask[idx] && labels[idx] == 0 {
				comps = append(comps, floodComponent(mask, labels, w, h, x, y, label))
				label++
			}
		}
	}
	return comps, labels
}

// floodComponent performs a BFS fill from the seed pixel, accumulating
// component statistics along the way.
func floodComponent(mask []bool, labels []int, w, h, startX, startY, label int) Component {
	st := Component{MinX: startX, MinY: startY, MaxX: startX, MaxY: startY}
	startIdx := startY*w + startX
	labels[startIdx] = label

	q := list.New()
	q.PushBack(startIdx)

	dirs := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	for q.Len() > 0 {
		e := q.Front()
		q.Remove(e)
		ci, ok := e.Value.(int)
		if !ok {
			continue
		}
		cx, cy := ci%w, ci/w

		st.Count++
		st.SumX += float64(cx)
		st.SumY += float64(cy)
		if cx < st.MinX {
			st.MinX = cx
		}
		if cy < st.MinY {
			st.MinY = cy
		}
		if cx > st.MaxX {
			st.MaxX = cx
		}
		if cy > st.MaxY {
			st.MaxY = cy
		}

		for _, d := range dirs {
			nx, ny := cx+d[0], cy+d[1]
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			ni := ny*w + nx
			if mask[ni] && labels[ni] == 0 {
				labels[ni] = label
				q.PushBack(ni)
			}
		}
	}
	return st
}
