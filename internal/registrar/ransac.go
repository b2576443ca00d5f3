package registrar

import "github.com/MeKo-Tech/surveyscan/internal/utils"

// fitHomographyRANSAC fits a projective transform from four
// correspondences while tolerating one outlier. With only four points
// the minimal set for a homography is the whole input, so the candidate
// pool is the direct fit plus, for each point left out, the affine fit
// of the remaining three. Candidates are scored by inlier count within
// inlierThresholdPx, ties broken by total inlier reprojection error,
// and the winner is refit as a homography when all four points are
// inliers.
func fitHomographyRANSAC(src, dst []utils.Point, inlierThresholdPx float64) (utils.Matrix3, bool) {
	if len(src) != 4 || len(dst) != 4 {
		return utils.Matrix3{}, false
	}

	type candidate struct {
		m       utils.Matrix3
		inliers []int
		errSum  float64
	}
	var best *candidate

	score := func(m utils.Matrix3) candidate {
		c := candidate{m: m}
		for i := range src {
			e := utils.ReprojectionError(m, src[i], dst[i])
			if e <= inlierThresholdPx {
				c.inliers = append(c.inliers, i)
				c.errSum += e
			}
		}
		return c
	}
	consider := func(m utils.Matrix3) {
		c := score(m)
		if best == nil ||
			len(c.inliers) > len(best.inliers) ||
			(len(c.inliers) == len(best.inliers) && c.errSum < best.errSum) {
			best = &c
		}
	}

	if m, ok := fitHomography(src, dst); ok {
		consider(m)
	}
	for leaveOut := range 4 {
		s := make([]utils.Point, 0, 3)
		d := make([]utils.Point, 0, 3)
		for i := range 4 {
			if i != leaveOut {
				s = append(s, src[i])
				d = append(d, dst[i])
			}
		}
		if m, ok := fitAffine(s, d); ok {
			consider(m)
		}
	}

	if best == nil || len(best.inliers) < 3 {
		return utils.Matrix3{}, false
	}
	// Refit on the inlier set when it spans all four correspondences.
	if len(best.inliers) == 4 {
		if m, ok := fitHomography(src, dst); ok {
			return m, true
		}
	}
	return best.m, true
}
