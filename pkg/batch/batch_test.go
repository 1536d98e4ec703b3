package batch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adammathes/xliffverify/pkg/validate"
)

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Join(dir, "..", "..", "testdata", "xliff")
}

func copyFixtures(t *testing.T, names map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for dst, src := range names {
		data, err := os.ReadFile(filepath.Join(fixtureDir(t), src))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, dst), data, 0o644))
	}
	return dir
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b(fr).xlf", "a(en).XLF", "notes.txt", "c.xliff"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.xlf"), 0o755))

	files, err := Discover(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a(en).XLF", filepath.Base(files[0]))
	assert.Equal(t, "b(fr).xlf", filepath.Base(files[1]))

	_, err = Discover(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestMasterName(t *testing.T) {
	assert.Equal(t, "messages(en).xlf", MasterName("messages(zh).xlf", "en"))
	assert.Equal(t, "app(v2)(en).xlf", MasterName("app(v2)(fr-CA).xlf", "en"))
	assert.Equal(t, "", MasterName("messages(en).xlf", "en"))
	assert.Equal(t, "", MasterName("messages.xlf", "en"))
}

func TestPlan(t *testing.T) {
	files := []string{
		"/d/menu(de).xlf",
		"/d/messages(en).xlf",
		"/d/messages(zh).xlf",
	}
	jobs := Plan(files, "en")
	assert.Equal(t, []Job{
		{Path: "/d/menu(de).xlf"},
		{Path: "/d/messages(en).xlf"},
		{Master: "/d/messages(en).xlf", Path: "/d/messages(zh).xlf"},
	}, jobs)
	assert.Equal(t, []string{"/d/messages(en).xlf", "/d/messages(zh).xlf"}, jobs[2].Paths())
	assert.Equal(t, "messages(en).xlf -> messages(zh).xlf", jobs[2].String())
}

func TestRun(t *testing.T) {
	dir := copyFixtures(t, map[string]string{
		"messages(en).xlf": "messages(en).xlf",
		"messages(zh).xlf": "messages(zh).xlf",
		"other(zh).xlf":    "messages(zh).xlf",
	})
	files, err := Discover(dir)
	require.NoError(t, err)
	jobs := Plan(files, "en")

	results, err := Run(context.Background(), validate.New(nil, validate.Options{}), jobs, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, res := range results {
		assert.Equal(t, jobs[i], res.Job)
		assert.True(t, res.Report.IsValid(), "%s: %v", res.Job, res.Report.Issues)
	}

	merged := Merge(results)
	assert.Equal(t, []string{"messages(en).xlf", "messages(zh).xlf", "other(zh).xlf"}, merged.Files)
}

func TestRunReportsIssuesPerJob(t *testing.T) {
	dir := copyFixtures(t, map[string]string{
		"messages(en).xlf": "messages(en).xlf",
		"messages(zh).xlf": "messages(zh).xlf",
	})
	master := filepath.Join(dir, "messages(en).xlf")
	data, err := os.ReadFile(master)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(master, []byte(strings.TrimPrefix(string(data), "\xEF\xBB\xBF")), 0o644))

	files, err := Discover(dir)
	require.NoError(t, err)
	results, err := Run(context.Background(), validate.New(nil, validate.Options{}), Plan(files, "en"), 4)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Report.Count())
	assert.Equal(t, 1, results[1].Report.Count(), "pair job reports the master failure")

	merged := Merge(results)
	require.Len(t, merged.Issues, 1)
	assert.Equal(t, "UTF-8 BOM", merged.Issues[0].Validator)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	jobs := []Job{{Path: "a(fr).xlf"}, {Path: "b(fr).xlf"}}
	_, err := Run(ctx, validate.New(nil, validate.Options{}), jobs, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMergeSkipsEmptyResults(t *testing.T) {
	merged := Merge([]Result{{}})
	assert.True(t, merged.IsValid())
	assert.Empty(t, merged.Files)
}
