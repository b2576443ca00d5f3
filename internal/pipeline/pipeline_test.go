package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/surveyscan/internal/checkbox"
	"github.com/MeKo-Tech/surveyscan/internal/config"
	"github.com/MeKo-Tech/surveyscan/internal/registrar"
	"github.com/MeKo-Tech/surveyscan/internal/testutil"
	"github.com/MeKo-Tech/surveyscan/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderRequiresTemplate(t *testing.T) {
	_, err := NewBuilder().Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template")
}

func TestBuilderRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogLevel = "nope"
	_, err := NewBuilder().WithTemplate(testutil.SurveyTemplate()).WithConfig(cfg).Build()
	require.Error(t, err)
}

func TestBuilderSelectsThresholdPolicy(t *testing.T) {
	p, err := NewBuilder().WithTemplate(testutil.SurveyTemplate()).Build()
	require.NoError(t, err)

	_, ok := p.classifier.(*checkbox.ThresholdClassifier)
	assert.True(t, ok)
	// The template default threshold drives the review comparisons.
	assert.InDelta(t, 25.0, p.reviewThreshold, 1e-9)
	assert.InDelta(t, 3.0, p.reviewMargin, 1e-9)
}

func TestBuilderThresholdOverride(t *testing.T) {
	p, err := NewBuilder().
		WithTemplate(testutil.SurveyTemplate()).
		WithThresholdOverride(40).
		Build()
	require.NoError(t, err)
	assert.InDelta(t, 40.0, p.reviewThreshold, 1e-9)
}

func TestBuilderSelectsLearnedPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	artifact := map[string]any{
		"feature_names": checkbox.FeatureNames[:],
		"mean":          []float64{10, 5, 8, 30, 2, 1, 4000},
		"scale":         []float64{12, 6, 7, 25, 1.5, 0.8, 3500},
		"weights":       []float64{2, 0, 0, 0, 0, 0, 0},
		"bias":          -1.0,
	}
	data, err := json.Marshal(artifact)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	p, err := NewBuilder().
		WithTemplate(testutil.SurveyTemplate()).
		WithModelPath(path).
		Build()
	require.NoError(t, err)

	_, ok := p.classifier.(*checkbox.LearnedClassifier)
	assert.True(t, ok)
	// Learned scores are probabilities, so the review unit shrinks.
	assert.InDelta(t, 0.5, p.reviewThreshold, 1e-9)
	assert.InDelta(t, 0.03, p.reviewMargin, 1e-9)
}

func TestBuilderMissingModelFallsBack(t *testing.T) {
	p, err := NewBuilder().
		WithTemplate(testutil.SurveyTemplate()).
		WithModelPath(filepath.Join(t.TempDir(), "absent.json")).
		Build()
	require.NoError(t, err)
	_, ok := p.classifier.(*checkbox.ThresholdClassifier)
	assert.True(t, ok)
}

func TestBuilderInvalidModelFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"feature_names":["fill_pct"]}`), 0o600))

	_, err := NewBuilder().
		WithTemplate(testutil.SurveyTemplate()).
		WithModelPath(path).
		Build()
	require.Error(t, err)
}

func buildTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := NewBuilder().WithTemplate(testutil.SurveyTemplate()).Build()
	require.NoError(t, err)
	return p
}

func TestProcessPageChecked(t *testing.T) {
	tpl := testutil.SurveyTemplate()
	page := testutil.SyntheticPage(tpl, map[string]bool{"Q1_1": true, "Q2_2": true})

	p := buildTestPipeline(t)
	res := p.ProcessPage(context.Background(), "page_01.png", page)

	require.NotNil(t, res.Registration)
	assert.Equal(t, registrar.QualityOK, res.Registration.Quality)
	assert.False(t, res.Failed())
	require.Len(t, res.Checkboxes, 4)

	byID := make(map[string]checkbox.Classification)
	for _, c := range res.Checkboxes {
		byID[c.ID] = c
	}
	assert.True(t, byID["Q1_1"].Checked)
	assert.False(t, byID["Q1_2"].Checked)
	assert.False(t, byID["Q2_1"].Checked)
	assert.True(t, byID["Q2_2"].Checked)
	assert.Equal(t, 2, res.CheckedTotal)
}

func TestProcessPageBlankFails(t *testing.T) {
	p := buildTestPipeline(t)
	res := p.ProcessPage(context.Background(), "blank.png", testutil.NewWhiteGray(1000, 1000))

	assert.True(t, res.Failed())
	require.NotNil(t, res.Registration)
	assert.Equal(t, registrar.QualityFail, res.Registration.Quality)
	assert.Contains(t, res.Registration.Reason, "insufficient anchors")
	assert.Empty(t, res.Checkboxes)
	assert.Nil(t, res.Cropped)
}

func TestProcessPageCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := buildTestPipeline(t)
	res := p.ProcessPage(ctx, "page.png", testutil.NewWhiteGray(1000, 1000))
	assert.Equal(t, context.Canceled.Error(), res.Err)
}

func TestProcessPagesPreservesOrder(t *testing.T) {
	tpl := testutil.SurveyTemplate()
	p := buildTestPipeline(t)

	pages := []NamedImage{
		{Name: "c.png", Image: testutil.SyntheticPage(tpl, map[string]bool{"Q1_1": true})},
		{Name: "a.png", Image: testutil.NewWhiteGray(1000, 1000)},
		{Name: "b.png", Image: testutil.SyntheticPage(tpl, map[string]bool{"Q2_1": true})},
	}

	batch, err := p.ProcessPages(context.Background(), pages)
	require.NoError(t, err)
	require.Len(t, batch.Pages, 3)
	assert.Equal(t, "c.png", batch.Pages[0].Page)
	assert.Equal(t, "a.png", batch.Pages[1].Page)
	assert.Equal(t, "b.png", batch.Pages[2].Page)

	assert.Equal(t, 2, batch.Summary.OK)
	assert.Equal(t, 1, batch.Summary.Fail)
}

func TestProcessPagesBuildsReviewQueue(t *testing.T) {
	tpl := testutil.SurveyTemplate()
	p := buildTestPipeline(t)

	// Q1 marked in both boxes: a conflict the reviewers must see.
	conflict := testutil.SyntheticPage(tpl, map[string]bool{"Q1_1": true, "Q1_2": true})
	batch, err := p.ProcessPages(context.Background(), []NamedImage{{Name: "conflict.png", Image: conflict}})
	require.NoError(t, err)

	require.NotEmpty(t, batch.Review)
	assert.Equal(t, "conflict.png", batch.Review[0].Page)
	assert.Positive(t, batch.Review[0].Conflicts)
}

func TestProcessPagesWorkerCap(t *testing.T) {
	tpl := testutil.SurveyTemplate()
	cfg := config.DefaultConfig()
	cfg.Parallel.MaxWorkers = 2

	p, err := NewBuilder().WithTemplate(tpl).WithConfig(cfg).Build()
	require.NoError(t, err)

	pages := make([]NamedImage, 5)
	for i := range pages {
		pages[i] = NamedImage{Name: string(rune('a'+i)) + ".png", Image: testutil.SyntheticPage(tpl, nil)}
	}
	batch, err := p.ProcessPages(context.Background(), pages)
	require.NoError(t, err)
	assert.Len(t, batch.Pages, 5)
	assert.Equal(t, 5, batch.Summary.OK)
}

func TestProcessPagesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := buildTestPipeline(t)
	_, err := p.ProcessPages(ctx, []NamedImage{
		{Name: "a.png", Image: testutil.NewWhiteGray(1000, 1000)},
	})
	require.Error(t, err)
}

func TestProcessDirectory(t *testing.T) {
	tpl := testutil.SurveyTemplate()
	dir := t.TempDir()

	page := testutil.SyntheticPage(tpl, map[string]bool{"Q1_1": true})
	require.NoError(t, utils.SavePNG(filepath.Join(dir, "page_01.png"), page))
	require.NoError(t, utils.SavePNG(filepath.Join(dir, "page_02.png"), testutil.SyntheticPage(tpl, nil)))
	// A corrupt file must be reported, not dropped.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page_03.png"), []byte("not a png"), 0o600))

	p := buildTestPipeline(t)
	batch, err := p.ProcessDirectory(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, batch.Pages, 3)
	assert.Equal(t, 2, batch.Summary.OK)
	assert.Equal(t, 1, batch.Summary.Fail)

	var badPage *PageResult
	for _, pr := range batch.Pages {
		if pr.Err != "" {
			badPage = pr
		}
	}
	require.NotNil(t, badPage)
	assert.Contains(t, badPage.Page, "page_03.png")
	assert.True(t, badPage.Failed())
}

func TestProcessDirectoryMissing(t *testing.T) {
	p := buildTestPipeline(t)
	_, err := p.ProcessDirectory(context.Background(), filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}
