package imgproc

// dilate3x3 expands foreground by one pixel in the 8-neighborhood.
func dilate3x3(mask []bool, w, h int) []bool {
	out := make([]bool, len(mask))
	for y := range h {
		for x := range w {
			set := false
			for dy := -1; dy <= 1 && !set; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w {
						continue
					}
					if mask[ny*w+nx] {
						set = true
						break
					}
				}
			}
			out[y*w+x] = set
		}
	}
	return out
}

// erode3x3 shrinks foreground by one pixel in the 8-neighborhood.
// Pixels on the image border erode away.
func erode3x3(mask []bool, w, h int) []bool {
	out := make([]bool, len(mask))
	for y := range h {
		for x := range w {
			keep := true
			for dy := -1; dy <= 1 && keep; dy++ {
				ny := y + dy
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w || ny < 0 || ny >= h || !mask[ny*w+nx] {
						keep = false
						break
					}
				}
			}
			out[y*w+x] = keep
		}
	}
	return out
}

// MorphGradient returns the morphological boundary of the mask, the
// difference between its 3x3 dilation and erosion. For a binarized
// checkbox this approximates total ink stroke extent.
func MorphGradient(mask []bool, w, h int) []bool {
	d := dilate3x3(mask, w, h)
	e := erode3x3(mask, w, h)
	out := make([]bool, len(mask))
	for i := range mask {
		out[i] = d[i] && !e[i]
	}
	return out
}
