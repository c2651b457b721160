// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/prakhar1009/blood-test-analyser-debug/pkg/types"
)

func newTestStore(t *testing.T, maxResults int) *Store {
	t.Helper()
	s, err := NewStore(types.HistoryConfig{HistoryDir: t.TempDir(), MaxResults: maxResults})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testAnalysis(created time.Time, narrative string) *types.Analysis {
	return &types.Analysis{
		CreatedAt:  created,
		SourceFile: "/data/blood_test_report.pdf",
		Query:      "summarise my blood test",
		Backend:    "openai",
		Model:      "gpt-4o-mini",
		Elapsed:    42 * time.Second,
		ReportPath: "/reports/blood_analysis_20260824_153000.md",
		Markers: types.MarkerSet{
			"hemoglobin": {Name: "hemoglobin", Value: 11.5, Unit: "g/dL", Status: types.StatusLow},
			"glucose":    {Name: "glucose", Value: 95, Unit: "mg/dL", Status: types.StatusNormal},
		},
		Sections: []types.Section{
			{Agent: "medical-doctor", Title: "Medical Analysis", Content: narrative},
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	a := testAnalysis(time.Date(2026, 8, 24, 15, 30, 0, 0, time.UTC), "Hemoglobin is below the reference range.")
	id, err := s.Save(ctx, a)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, id, a.ID, "Save assigns the ID back onto the analysis")

	got, err := s.Get(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, id, got.ID)
	assert.Equal(t, "/data/blood_test_report.pdf", got.SourceFile)
	assert.Equal(t, "summarise my blood test", got.Query)
	assert.Equal(t, "openai", got.Backend)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 42*time.Second, got.Elapsed)
	assert.Equal(t, "/reports/blood_analysis_20260824_153000.md", got.ReportPath)
	assert.True(t, got.CreatedAt.Equal(a.CreatedAt))
	assert.Equal(t, "Hemoglobin is below the reference range.", got.Narrative)

	require.Len(t, got.Markers, 2)
	assert.Equal(t, 11.5, got.Markers["hemoglobin"].Value)
	assert.Equal(t, types.StatusLow, got.Markers["hemoglobin"].Status)
	assert.Equal(t, "mg/dL", got.Markers["glucose"].Unit)
}

func TestGetByPrefix(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	a := testAnalysis(time.Now().UTC(), "narrative")
	id, err := s.Save(ctx, a)
	require.NoError(t, err)

	got, err := s.Get(ctx, id[:8])
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
}

func TestGetAmbiguousPrefix(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	a := testAnalysis(time.Now().UTC(), "first run")
	a.ID = "aaaa1111-0000-0000-0000-000000000001"
	_, err := s.Save(ctx, a)
	require.NoError(t, err)

	b := testAnalysis(time.Now().UTC(), "second run")
	b.ID = "aaaa2222-0000-0000-0000-000000000002"
	_, err = s.Save(ctx, b)
	require.NoError(t, err)

	_, err = s.Get(ctx, "aaaa")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")

	// A prefix narrowing to one analysis still resolves.
	got, err := s.Get(ctx, "aaaa1111")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t, 0)

	_, err := s.Get(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListRecentFirst(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	older := testAnalysis(time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC), "older run")
	newer := testAnalysis(time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC), "newer run")
	_, err := s.Save(ctx, older)
	require.NoError(t, err)
	_, err = s.Save(ctx, newer)
	require.NoError(t, err)

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, newer.ID, records[0].ID)
	assert.Equal(t, older.ID, records[1].ID)

	// List returns summaries only.
	assert.Empty(t, records[0].Narrative)
	assert.Empty(t, records[0].Markers)
}

func TestListHonorsMaxResults(t *testing.T) {
	s := newTestStore(t, 2)
	ctx := context.Background()

	for day := 1; day <= 3; day++ {
		a := testAnalysis(time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC), "run")
		_, err := s.Save(ctx, a)
		require.NoError(t, err)
	}

	records, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSearch(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	iron := testAnalysis(time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		"Low hemoglobin suggests iron deficiency. Increase dietary iron.")
	lipids := testAnalysis(time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC),
		"Cholesterol is elevated. Reduce saturated fat intake.")
	_, err := s.Save(ctx, iron)
	require.NoError(t, err)
	_, err = s.Save(ctx, lipids)
	require.NoError(t, err)

	results, err := s.Search(ctx, "iron")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, iron.ID, results[0].ID)
	assert.Contains(t, results[0].Snippet, "iron")

	results, err = s.Search(ctx, "cholesterol")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, lipids.ID, results[0].ID)

	results, err = s.Search(ctx, "ferritin")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestTrend(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	first := testAnalysis(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), "june")
	first.Markers = types.MarkerSet{
		"hemoglobin": {Name: "hemoglobin", Value: 11.2, Unit: "g/dL", Status: types.StatusLow},
	}
	second := testAnalysis(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), "august")
	second.Markers = types.MarkerSet{
		"hemoglobin": {Name: "hemoglobin", Value: 12.4, Unit: "g/dL", Status: types.StatusNormal},
		"glucose":    {Name: "glucose", Value: 90, Unit: "mg/dL", Status: types.StatusNormal},
	}
	_, err := s.Save(ctx, first)
	require.NoError(t, err)
	_, err = s.Save(ctx, second)
	require.NoError(t, err)

	points, err := s.Trend(ctx, "hemoglobin")
	require.NoError(t, err)
	require.Len(t, points, 2)

	// Oldest first.
	assert.Equal(t, first.ID, points[0].AnalysisID)
	assert.Equal(t, 11.2, points[0].Value)
	assert.Equal(t, types.StatusLow, points[0].Status)
	assert.Equal(t, second.ID, points[1].AnalysisID)
	assert.Equal(t, 12.4, points[1].Value)

	points, err = s.Trend(ctx, "creatinine")
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestExportYAML(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	a := testAnalysis(time.Date(2026, 8, 24, 15, 30, 0, 0, time.UTC), "export me")
	_, err := s.Save(ctx, a)
	require.NoError(t, err)

	path, err := s.ExportYAML(ctx)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []Record
	require.NoError(t, yaml.Unmarshal(data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, a.ID, records[0].ID)
	assert.Equal(t, "export me", records[0].Narrative)
	assert.Len(t, records[0].Markers, 2)
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	cfg := types.HistoryConfig{HistoryDir: dir}
	ctx := context.Background()

	s, err := NewStore(cfg)
	require.NoError(t, err)
	a := testAnalysis(time.Now().UTC(), "persisted")
	id, err := s.Save(ctx, a)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := NewStore(cfg)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Narrative)
}
