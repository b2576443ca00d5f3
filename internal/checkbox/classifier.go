package checkbox

import (
	"github.com/MeKo-Tech/surveyscan/internal/template"
)

// Classification is the immutable per-ROI decision. Score is the fill
// percentage for the threshold policy or the model probability for the
// learned policy. Re-running with a new threshold produces a new
// classification, never an update.
type Classification struct {
	ID      string  `json:"id"`
	Score   float64 `json:"score"`
	Checked bool    `json:"checked"`
}

// Classifier converts a feature vector into a checked/unchecked
// decision. The strategy is selected once at pipeline construction and
// applies uniformly to every ROI in a run.
type Classifier interface {
	Classify(roi template.ROI, f Features) Classification
}

// ThresholdResolver resolves the applicable fill threshold for a
// question group as a pure function of its sources. Resolution order:
// per-invocation override, per-question override, template default,
// global default. The order is total and deterministic.
type ThresholdResolver struct {
	// Override is the per-invocation threshold, in percent; nil when
	// not supplied.
	Override *float64
	// PerQuestion maps question prefixes to thresholds in percent.
	PerQuestion map[string]float64
	// TemplateDefault is the template-embedded default; nil when the
	// template carries none.
	TemplateDefault *float64
	// GlobalDefault is the configuration default in percent.
	GlobalDefault float64
}

// NewThresholdResolver builds a resolver from a template and the global
// default, with an optional per-invocation override.
func NewThresholdResolver(tpl *template.Template, globalDefault float64, override *float64) ThresholdResolver {
	return ThresholdResolver{
		Override:        override,
		PerQuestion:     tpl.Detection.PerQuestionThresholds,
		TemplateDefault: tpl.Detection.FillThresholdPercent,
		GlobalDefault:   globalDefault,
	}
}

// Resolve returns the active threshold for the given question group.
func (r ThresholdResolver) Resolve(question string) float64 {
	if r.Override != nil {
		return *r.Override
	}
	if v, ok := r.PerQuestion[question]; ok {
		return v
	}
	if r.TemplateDefault != nil {
		return *r.TemplateDefault
	}
	return r.GlobalDefault
}

// ThresholdClassifier decides checked from the fill ratio alone.
type ThresholdClassifier struct {
	Resolver ThresholdResolver
}

// Classify reports checked iff the fill percentage meets the resolved
// threshold for the ROI's question group.
func (c *ThresholdClassifier) Classify(roi template.ROI, f Features) Classification {
	th := c.Resolver.Resolve(roi.Question())
	return Classification{
		ID:      roi.ID,
		Score:   f.FillPct,
		Checked: f.FillPct >= th,
	}
}

// LearnedClassifier applies a trained linear model to the standardized
// feature vector.
type LearnedClassifier struct {
	Model *Model
}

// Classify reports checked iff the model probability exceeds 0.5; the
// probability is reported as the score in place of the fill ratio.
func (c *LearnedClassifier) Classify(roi template.ROI, f Features) Classification {
	p := c.Model.Probability(f.Vector())
	return Classification{
		ID:      roi.ID,
		Score:   p,
		Checked: p > 0.5,
	}
}
