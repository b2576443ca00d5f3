package checkbox

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Model is a logistic-regression artifact fit offline: per-feature
// standardization parameters plus a linear decision boundary.
type Model struct {
	FeatureNames []string              `json:"feature_names"`
	Mean         [FeatureCount]float64 `json:"mean"`
	Scale        [FeatureCount]float64 `json:"scale"`
	Weights      [FeatureCount]float64 `json:"weights"`
	Bias         float64               `json:"bias"`
}

// LoadModel reads and validates a model artifact from a JSON file.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-provided model path is expected
	if err != nil {
		return nil, fmt.Errorf("cannot read model %s: %w", path, err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("cannot parse model %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model %s: %w", path, err)
	}
	return &m, nil
}

// Validate checks the artifact matches the extractor's feature order
// and carries usable scaling parameters.
func (m *Model) Validate() error {
	if len(m.FeatureNames) != FeatureCount {
		return fmt.Errorf("expected %d feature names, got %d", FeatureCount, len(m.FeatureNames))
	}
	for i, name := range m.FeatureNames {
		if name != FeatureNames[i] {
			return fmt.Errorf("feature %d is %q, expected %q", i, name, FeatureNames[i])
		}
	}
	for i, s := range m.Scale {
		if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("scale for %s must be positive and finite, got %g", FeatureNames[i], s)
		}
	}
	return nil
}

// Standardize centers and scales a feature vector with the stored
// training statistics. A vector equal to the training mean maps to the
// zero vector.
func (m *Model) Standardize(v [FeatureCount]float64) [FeatureCount]float64 {
	var out [FeatureCount]float64
	for i := range v {
		out[i] = (v[i] - m.Mean[i]) / m.Scale[i]
	}
	return out
}

// Probability applies the linear decision boundary to the standardized
// vector and squashes through the sigmoid.
func (m *Model) Probability(v [FeatureCount]float64) float64 {
	z := m.Bias
	std := m.Standardize(v)
	for i := range std {
		z += m.Weights[i] * std[i]
	}
	return 1 / (1 + math.Exp(-z))
}
