package registrar

import (
	"math"

	"github.com/MeKo-Tech/surveyscan/internal/utils"
)

// solveLinear solves a dense n x n system in place using Gaussian
// elimination with partial pivoting. Returns false for singular
// systems.
func solveLinear(a [][]float64, b []float64) ([]float64, bool) {
	n := len(b)
	for col := range n {
		pivot := col
		maxAbs := math.Abs(a[col][col])
		for r := col + 1; r < n; r++ {
			if v := math.Abs(a[r][col]); v > maxAbs {
				maxAbs = v
				pivot = r
			}
		}
		if maxAbs == 0 {
			return nil, false
		}
		if pivot != col {
			a[col], a[pivot] = a[pivot], a[col]
			b[col], b[pivot] = b[pivot], b[col]
		}

		div := a[col][col]
		for c := col; c < n; c++ {
			a[col][c] /= div
		}
		b[col] /= div

		for r := range n {
			if r == col {
				continue
			}
			f := a[r][col]
			if f == 0 {
				continue
			}
			for c := col; c < n; c++ {
				a[r][c] -= f * a[col][c]
			}
			b[r] -= f * b[col]
		}
	}
	return b, true
}

// fitHomography computes the projective transform mapping src[i] to
// dst[i] from exactly four correspondences. The 8 unknowns h00..h21 are
// solved with h22 fixed at 1.
func fitHomography(src, dst []utils.Point) (utils.Matrix3, bool) {
	if len(src) != 4 || len(dst) != 4 {
		return utils.Matrix3{}, false
	}
	a := make([][]float64, 8)
	b := make([]float64, 8)
	for i := range 4 {
		sx, sy := src[i].X, src[i].Y
		dx, dy := dst[i].X, dst[i].Y
		a[2*i] = []float64{sx, sy, 1, 0, 0, 0, -sx * dx, -sy * dx}
		b[2*i] = dx
		a[2*i+1] = []float64{0, 0, 0, sx, sy, 1, -sx * dy, -sy * dy}
		b[2*i+1] = dy
	}
	h, ok := solveLinear(a, b)
	if !ok {
		return utils.Matrix3{}, false
	}
	m := utils.Matrix3{h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7], 1}
	if !m.IsFinite() {
		return utils.Matrix3{}, false
	}
	return m, true
}

// fitAffine computes the affine transform mapping src[i] to dst[i] from
// exactly three correspondences, embedded in a 3x3 homogeneous matrix
// with no perspective term.
func fitAffine(src, dst []utils.Point) (utils.Matrix3, bool) {
	if len(src) != 3 || len(dst) != 3 {
		return utils.Matrix3{}, false
	}
	// x' = a*x + b*y + c and y' = d*x + e*y + f share the same
	// coefficient matrix of source rows.
	ax := make([][]float64, 3)
	bx := make([]float64, 3)
	for i := range 3 {
		ax[i] = []float64{src[i].X, src[i].Y, 1}
		bx[i] = dst[i].X
	}
	row, ok := solveLinear(ax, bx)
	if !ok {
		return utils.Matrix3{}, false
	}

	ay := make([][]float64, 3)
	by := make([]float64, 3)
	for i := range 3 {
		ay[i] = []float64{src[i].X, src[i].Y, 1}
		by[i] = dst[i].Y
	}
	col, ok := solveLinear(ay, by)
	if !ok {
		return utils.Matrix3{}, false
	}

	m := utils.Matrix3{row[0], row[1], row[2], col[0], col[1], col[2], 0, 0, 1}
	if !m.IsFinite() {
		return utils.Matrix3{}, false
	}
	return m, true
}
