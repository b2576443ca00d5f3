// Package pipeline wires anchor detection, registration, feature
// extraction, classification and review into a page-parallel batch
// processor.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/surveyscan/internal/anchor"
	"github.com/MeKo-Tech/surveyscan/internal/checkbox"
	"github.com/MeKo-Tech/surveyscan/internal/config"
	"github.com/MeKo-Tech/surveyscan/internal/registrar"
	"github.com/MeKo-Tech/surveyscan/internal/template"
)

// Pipeline processes pages against a fixed template, configuration and
// classifier strategy. All of its state is read-only after Build, so a
// single Pipeline is safe for concurrent page processing.
type Pipeline struct {
	tpl        *template.Template
	cfg        *config.Config
	detector   *anchor.Detector
	registrar  *registrar.Registrar
	classifier checkbox.Classifier

	// reviewThreshold and reviewMargin are the decision threshold and
	// uncertainty margin in the unit of the classifier's scores.
	reviewThreshold float64
	reviewMargin    float64
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	tpl       *template.Template
	cfg       *config.Config
	modelPath string
	override  *float64
}

// NewBuilder creates a pipeline builder with default configuration.
func NewBuilder() *Builder {
	return &Builder{cfg: config.DefaultConfig()}
}

// WithTemplate sets the page template. Required.
func (b *Builder) WithTemplate(tpl *template.Template) *Builder {
	b.tpl = tpl
	return b
}

// WithConfig replaces the default configuration.
func (b *Builder) WithConfig(cfg *config.Config) *Builder {
	if cfg != nil {
		b.cfg = cfg
	}
	return b
}

// WithModelPath sets the trained model artifact path, overriding the
// configured one.
func (b *Builder) WithModelPath(path string) *Builder {
	if path != "" {
		b.modelPath = path
	}
	return b
}

// WithThresholdOverride sets the per-invocation fill threshold in
// percent, the highest-precedence source in the resolution order.
func (b *Builder) WithThresholdOverride(percent float64) *Builder {
	b.override = &percent
	return b
}

// Build validates inputs and selects the classifier strategy once. A
// present model artifact selects the learned policy for the whole run;
// absence selects the threshold policy and is not an error.
func (b *Builder) Build() (*Pipeline, error) {
	if b.tpl == nil {
		return nil, errors.New("pipeline requires a template")
	}
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		tpl: b.tpl,
		cfg: b.cfg,
		detector: anchor.NewDetector(anchor.Config{
			SearchHalfWidth: b.cfg.Anchor.SearchHalfWidth,
			MinArea:         b.cfg.Anchor.MinArea,
			BlurRadius:      b.cfg.Anchor.BlurRadius,
		}),
		registrar: registrar.NewRegistrar(registrar.Config{
			RANSACThresholdPx: b.cfg.Register.RANSACThresholdPx,
			WarnResidualPx:    b.cfg.Register.WarnResidualPx,
			FailResidualPx:    b.cfg.Register.FailResidualPx,
		}),
	}

	modelPath := b.modelPath
	if modelPath == "" {
		modelPath = b.cfg.Checkbox.ModelPath
	}
	model, err := loadOptionalModel(modelPath)
	if err != nil {
		return nil, err
	}

	resolver := checkbox.NewThresholdResolver(b.tpl, b.cfg.Checkbox.FillThresholdPercent, b.override)
	if model != nil {
		p.classifier = &checkbox.LearnedClassifier{Model: model}
		// Learned scores are probabilities; the decision boundary is
		// 0.5 and the percent margin scales down accordingly.
		p.reviewThreshold = 0.5
		p.reviewMargin = b.cfg.Review.NearMarginPercent / 100
		slog.Info("using learned checkbox classifier", "model", modelPath)
	} else {
		p.classifier = &checkbox.ThresholdClassifier{Resolver: resolver}
		p.reviewThreshold = resolver.Resolve("")
		p.reviewMargin = b.cfg.Review.NearMarginPercent
	}
	return p, nil
}

func loadOptionalModel(path string) (*checkbox.Model, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Warn("model artifact not found, falling back to threshold policy", "path", path)
		return nil, nil
	}
	m, err := checkbox.LoadModel(path)
	if err != nil {
		return nil, fmt.Errorf("loading classifier model: %w", err)
	}
	return m, nil
}
