package review

import (
	"testing"

	"github.com/MeKo-Tech/surveyscan/internal/checkbox"
	"github.com/MeKo-Tech/surveyscan/internal/registrar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cls(id string, score float64, checked bool) checkbox.Classification {
	return checkbox.Classification{ID: id, Score: score, Checked: checked}
}

func TestConfidenceLevel(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  string
	}{
		{"far above", 90, "high"},
		{"far below", 5, "high"},
		{"moderately off", 60, "medium"},
		{"slightly off", 57, "low"},
		{"at threshold", 55, "very_low"},
		{"just off", 56, "very_low"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfidenceLevel(tt.score, 55, 3.0))
		})
	}
}

func TestBuildConflictPage(t *testing.T) {
	// Two boxes of the same question both over threshold.
	pages := []PageInput{{
		Page:      "page_03.png",
		Threshold: 11.5,
		Checkboxes: []checkbox.Classification{
			cls("Q1_1", 56, true),
			cls("Q1_2", 55, true),
		},
	}}

	queue := Build(pages, DefaultConfig())
	require.Len(t, queue, 1)

	f := queue[0]
	assert.Equal(t, PriorityHigh, f.Priority)
	assert.Equal(t, 1, f.Conflicts)
	assert.Contains(t, f.Issues, "conflict")
	require.NotEmpty(t, f.Details)
	assert.Contains(t, f.Details[0], "Q1: multiple selections (2)")
}

func TestBuildMissingSelection(t *testing.T) {
	pages := []PageInput{{
		Page:      "page_07.png",
		Threshold: 11.5,
		Checkboxes: []checkbox.Classification{
			cls("Q1_1", 2, false),
			cls("Q1_2", 3, false),
			cls("Q2_1", 80, true),
		},
	}}

	queue := Build(pages, DefaultConfig())
	require.Len(t, queue, 1)
	f := queue[0]
	assert.Equal(t, 1, f.Missing)
	assert.Contains(t, f.Issues, "missing")
	assert.Equal(t, PriorityLow, f.Priority)
}

func TestBuildNearThreshold(t *testing.T) {
	pages := []PageInput{{
		Page:      "page_11.png",
		Threshold: 11.5,
		Checkboxes: []checkbox.Classification{
			cls("Q1_1", 12.0, true), // 0.5 from threshold
			cls("Q1_2", 2, false),
		},
	}}

	queue := Build(pages, DefaultConfig())
	require.Len(t, queue, 1)
	f := queue[0]
	assert.Equal(t, 1, f.NearThreshold)
	assert.Contains(t, f.Issues, "near-threshold")
	assert.Equal(t, PriorityMedium, f.Priority)
	assert.Positive(t, f.LowConfidence)
}

func TestBuildCleanPageExcluded(t *testing.T) {
	pages := []PageInput{{
		Page:      "page_01.png",
		Threshold: 11.5,
		Checkboxes: []checkbox.Classification{
			cls("Q1_1", 80, true),
			cls("Q1_2", 1, false),
		},
		Registration: &registrar.Result{Quality: registrar.QualityOK, MeanResidualPx: 0.8},
	}}

	queue := Build(pages, DefaultConfig())
	assert.Empty(t, queue)
}

func TestBuildRegistrationIssues(t *testing.T) {
	t.Run("failed registration", func(t *testing.T) {
		pages := []PageInput{{
			Page:         "page_02.png",
			Threshold:    11.5,
			Registration: &registrar.Result{Quality: registrar.QualityFail, Reason: "insufficient anchors (2/4)"},
		}}
		queue := Build(pages, DefaultConfig())
		require.Len(t, queue, 1)
		assert.Contains(t, queue[0].Issues, "registration-failed")
		assert.Equal(t, "fail", queue[0].Quality)
	})

	t.Run("high residual", func(t *testing.T) {
		pages := []PageInput{{
			Page:      "page_05.png",
			Threshold: 11.5,
			Checkboxes: []checkbox.Classification{
				cls("Q1_1", 80, true),
				cls("Q1_2", 1, false),
			},
			Registration: &registrar.Result{Quality: registrar.QualityWarn, MeanResidualPx: 7.2},
		}}
		queue := Build(pages, DefaultConfig())
		require.Len(t, queue, 1)
		assert.Contains(t, queue[0].Issues, "high-residual")
		assert.InDelta(t, 7.2, queue[0].ResidualPx, 1e-9)
	})
}

func TestBuildOrdering(t *testing.T) {
	pages := []PageInput{
		{
			Page:       "b.png",
			Threshold:  11.5,
			Checkboxes: []checkbox.Classification{cls("Q1_1", 1, false)},
		},
		{
			Page:      "a.png",
			Threshold: 11.5,
			Checkboxes: []checkbox.Classification{
				cls("Q1_1", 60, true),
				cls("Q1_2", 70, true),
			},
		},
		{
			Page:       "c.png",
			Threshold:  11.5,
			Checkboxes: []checkbox.Classification{cls("Q1_1", 12, true)},
		},
	}

	queue := Build(pages, DefaultConfig())
	require.Len(t, queue, 3)
	// Conflicts outrank near-threshold, which outranks missing.
	assert.Equal(t, "a.png", queue[0].Page)
	assert.Equal(t, PriorityHigh, queue[0].Priority)
	assert.Equal(t, "c.png", queue[1].Page)
	assert.Equal(t, PriorityMedium, queue[1].Priority)
	assert.Equal(t, "b.png", queue[2].Page)
	assert.Equal(t, PriorityLow, queue[2].Priority)
}

func TestBuildSamePriorityOrdersByPage(t *testing.T) {
	missing := func(page string) PageInput {
		return PageInput{
			Page:       page,
			Threshold:  11.5,
			Checkboxes: []checkbox.Classification{cls("Q1_1", 1, false)},
		}
	}
	queue := Build([]PageInput{missing("z.png"), missing("m.png"), missing("a.png")}, DefaultConfig())
	require.Len(t, queue, 3)
	assert.Equal(t, "a.png", queue[0].Page)
	assert.Equal(t, "m.png", queue[1].Page)
	assert.Equal(t, "z.png", queue[2].Page)
}

func TestBuildZeroConfigUsesDefaults(t *testing.T) {
	pages := []PageInput{{
		Page:       "page.png",
		Threshold:  11.5,
		Checkboxes: []checkbox.Classification{cls("Q1_1", 12, true)},
	}}
	queue := Build(pages, Config{})
	require.Len(t, queue, 1)
	assert.Equal(t, 1, queue[0].NearThreshold)
}
