// Package review aggregates classifications per question per page,
// flags conflicts, missing selections and uncertain calls, and ranks
// pages for manual review. The queue is a worklist, not an audit log:
// pages with zero flags are excluded entirely.
package review

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MeKo-Tech/surveyscan/internal/checkbox"
	"github.com/MeKo-Tech/surveyscan/internal/registrar"
)

// Priority ranks a flagged page for reviewers.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var priorityOrder = map[Priority]int{PriorityHigh: 0, PriorityMedium: 1, PriorityLow: 2}

// ConfidenceLevel bands a score by its distance from the decision
// threshold. Scores and thresholds share a unit (percent for the
// threshold policy, probability for the learned policy scaled the same
// way by the caller).
func ConfidenceLevel(score, threshold, nearMargin float64) string {
	d := score - threshold
	if d < 0 {
		d = -d
	}
	// Bands scale with the margin: at the stock 3-point margin the high
	// band starts 10 points out and the low band half a margin out.
	switch {
	case d > nearMargin*10/3:
		return "high"
	case d > nearMargin:
		return "medium"
	case d > nearMargin/2:
		return "low"
	default:
		return "very_low"
	}
}

// Config holds review-queue settings.
type Config struct {
	// NearMargin flags a score as uncertain when its distance from the
	// threshold is at most this value, regardless of which side it
	// landed on. Same unit as the scores.
	NearMargin float64
	// ResidualFailPx flags a page when its registration mean residual
	// exceeds this value.
	ResidualFailPx float64
}

// DefaultConfig returns sensible defaults: a 3-point margin and the
// registrar's fail residual.
func DefaultConfig() Config {
	return Config{NearMargin: 3.0, ResidualFailPx: 6.0}
}

// PageInput is one page's classification outcome handed to the builder.
type PageInput struct {
	Page         string
	Checkboxes   []checkbox.Classification
	Registration *registrar.Result
	// Threshold is the active decision threshold the scores were
	// compared against, in score units.
	Threshold float64
}

// Flag is the read-only per-page review record.
type Flag struct {
	Page          string   `json:"page"`
	Priority      Priority `json:"priority"`
	Quality       string   `json:"quality,omitempty"`
	ResidualPx    float64  `json:"residual_px,omitempty"`
	Conflicts     int      `json:"conflicts"`
	Missing       int      `json:"missing"`
	NearThreshold int      `json:"near_threshold"`
	LowConfidence int      `json:"low_confidence"`
	Issues        []string `json:"issues"`
	Details       []string `json:"details,omitempty"`
}

// Build produces the ranked review queue over all pages. It must run
// after every page has been classified.
func Build(pages []PageInput, cfg Config) []Flag {
	if cfg.NearMargin <= 0 {
		cfg.NearMargin = DefaultConfig().NearMargin
	}
	if cfg.ResidualFailPx <= 0 {
		cfg.ResidualFailPx = DefaultConfig().ResidualFailPx
	}

	var queue []Flag
	for _, p := range pages {
		if f, flagged := buildPageFlag(p, cfg); flagged {
			queue = append(queue, f)
		}
	}

	sort.SliceStable(queue, func(i, j int) bool {
		if priorityOrder[queue[i].Priority] != priorityOrder[queue[j].Priority] {
			return priorityOrder[queue[i].Priority] < priorityOrder[queue[j].Priority]
		}
		return queue[i].Page < queue[j].Page
	})
	return queue
}

func buildPageFlag(p PageInput, cfg Config) (Flag, bool) {
	f := Flag{Page: p.Page}

	for _, q := range questionOrder(p.Checkboxes) {
		group := questionGroup(p.Checkboxes, q)
		checked := 0
		for _, c := range group {
			if c.Checked {
				checked++
			}
		}
		switch {
		case checked > 1:
			f.Conflicts++
			f.Details = append(f.Details, fmt.Sprintf("%s: multiple selections (%d)", q, checked))
		case checked == 0:
			f.Missing++
			f.Details = append(f.Details, fmt.Sprintf("%s: no selection", q))
		}

		near := nearThresholdBoxes(group, p.Threshold, cfg.NearMargin)
		if len(near) > 0 {
			f.NearThreshold++
			f.Details = append(f.Details, fmt.Sprintf("%s: near threshold (%s)", q, formatScores(near)))
		}
		for _, c := range group {
			if ConfidenceLevel(c.Score, p.Threshold, cfg.NearMargin) == "very_low" {
				f.LowConfidence++
			}
		}
	}

	if p.Registration != nil {
		f.Quality = string(p.Registration.Quality)
		f.ResidualPx = p.Registration.MeanResidualPx
	}

	if f.Conflicts > 0 {
		f.Issues = append(f.Issues, "conflict")
	}
	if f.Missing > 0 {
		f.Issues = append(f.Issues, "missing")
	}
	if f.NearThreshold > 0 {
		f.Issues = append(f.Issues, "near-threshold")
	}
	if f.LowConfidence > 0 {
		f.Issues = append(f.Issues, "low-confidence")
	}
	if p.Registration != nil {
		if p.Registration.Quality == registrar.QualityFail {
			f.Issues = append(f.Issues, "registration-failed")
		} else if p.Registration.MeanResidualPx > cfg.ResidualFailPx {
			f.Issues = append(f.Issues, "high-residual")
		}
	}

	if len(f.Issues) == 0 {
		return Flag{}, false
	}
	f.Priority = pagePriority(f)
	return f, true
}

func pagePriority(f Flag) Priority {
	if f.Conflicts > 0 {
		return PriorityHigh
	}
	if f.NearThreshold > 0 || f.LowConfidence > 0 {
		return PriorityMedium
	}
	return PriorityLow
}

// questionOrder returns the distinct question prefixes in first-seen
// order, keeping the queue stable across runs.
func questionOrder(boxes []checkbox.Classification) []string {
	var order []string
	seen := make(map[string]struct{})
	for _, c := range boxes {
		q := questionPrefix(c.ID)
		if _, ok := seen[q]; !ok {
			seen[q] = struct{}{}
			order = append(order, q)
		}
	}
	return order
}

func questionGroup(boxes []checkbox.Classification, question string) []checkbox.Classification {
	var out []checkbox.Classification
	for _, c := range boxes {
		if questionPrefix(c.ID) == question {
			out = append(out, c)
		}
	}
	return out
}

func questionPrefix(id string) string {
	if i := strings.Index(id, "_"); i > 0 {
		return id[:i]
	}
	return id
}

func nearThresholdBoxes(group []checkbox.Classification, threshold, margin float64) []checkbox.Classification {
	var out []checkbox.Classification
	for _, c := range group {
		d := c.Score - threshold
		if d < 0 {
			d = -d
		}
		if d <= margin {
			out = append(out, c)
		}
	}
	return out
}

func formatScores(boxes []checkbox.Classification) string {
	parts := make([]string, len(boxes))
	for i, c := range boxes {
		parts[i] = fmt.Sprintf("%s=%.1f", c.ID, c.Score)
	}
	return strings.Join(parts, ", ")
}
