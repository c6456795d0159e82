package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projectmd/internal/project"
	"projectmd/internal/testutil"
)

var testClock = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// newTestEngine pins the clock so stamped timestamps are predictable.
func newTestEngine(fake *testutil.FakeBackend, root string) *Engine {
	eng := New(fake, root)
	eng.now = func() time.Time { return testClock }
	return eng
}

func writeProject(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "project.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeTask(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSync_CreatesNewIssue(t *testing.T) {
	dir := t.TempDir()
	projectFile := writeProject(t, dir, "backend: github\nrepo: a/b\n---\n\n* [new] - tasks/x.md - Do X\n")
	taskPath := writeTask(t, dir, "tasks/x.md", "---\ntags: [chore]\n---\n# Do X\n\nDetails.\n")

	fake := testutil.NewFakeBackend()
	fake.AddIssue(6, "older", "") // next created issue gets number 7
	eng := newTestEngine(fake, dir)

	result, err := eng.Sync(context.Background(), projectFile)
	require.NoError(t, err)

	require.Len(t, fake.CreateCalls, 1)
	assert.Equal(t, "Do X", fake.CreateCalls[0].Title)
	assert.Equal(t, "Details.", fake.CreateCalls[0].Body)
	assert.Equal(t, []string{"chore"}, fake.CreateCalls[0].Labels)

	require.Len(t, result.Created, 1)
	assert.Equal(t, IssueRef{Path: "tasks/x.md", Number: 7}, result.Created[0])
	assert.Empty(t, result.Updated)
	assert.Empty(t, result.Errors)

	// The task file gains issue_id and both timestamps.
	raw, err := os.ReadFile(taskPath)
	require.NoError(t, err)
	tf, err := project.ParseTaskFile(string(raw))
	require.NoError(t, err)
	assert.Equal(t, 7, tf.Config.IssueID)
	assert.True(t, tf.Config.CreatedAt.Equal(testClock))
	assert.True(t, tf.Config.UpdatedAt.Equal(testClock))
	assert.Equal(t, []string{"chore"}, tf.Config.Tags)
	assert.Equal(t, "Do X", tf.Title)
	assert.Equal(t, "Details.", tf.Body)

	// The document bullet flips from [new] to [#7].
	doc, err := os.ReadFile(projectFile)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "* [#7] - tasks/x.md - Do X")
	assert.NotContains(t, string(doc), "[new]")
}

func TestSync_UpdatesExistingIssue(t *testing.T) {
	dir := t.TempDir()
	projectFile := writeProject(t, dir, "backend: github\nrepo: a/b\n---\n* [#7] - tasks/x.md - Do X\n")
	// updated_at well before the file's mtime, so the gate lets the
	// update through.
	taskPath := writeTask(t, dir, "tasks/x.md",
		"---\nissue_id: 7\ntags: [chore]\ncreated_at: 2024-01-01T00:00:00Z\nupdated_at: 2024-01-01T00:00:00Z\n---\n# Do X\n\nDetails.\n")

	fake := testutil.NewFakeBackend()
	fake.AddIssue(7, "Do X", "old body")
	eng := newTestEngine(fake, dir)

	result, err := eng.Sync(context.Background(), projectFile)
	require.NoError(t, err)

	require.Len(t, fake.UpdateCalls, 1)
	assert.Equal(t, 7, fake.UpdateCalls[0].Number)
	assert.Equal(t, "Do X", fake.UpdateCalls[0].Title)
	assert.Empty(t, fake.CreateCalls)

	require.Len(t, result.Updated, 1)
	assert.Equal(t, IssueRef{Path: "tasks/x.md", Number: 7}, result.Updated[0])

	raw, err := os.ReadFile(taskPath)
	require.NoError(t, err)
	tf, err := project.ParseTaskFile(string(raw))
	require.NoError(t, err)
	assert.True(t, tf.Config.UpdatedAt.Equal(testClock))
	// created_at is stamped on creation only, never refreshed.
	assert.True(t, tf.Config.CreatedAt.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestSync_SkipsUnchangedTask(t *testing.T) {
	dir := t.TempDir()
	projectFile := writeProject(t, dir, "backend: github\nrepo: a/b\n---\n* [#7] - tasks/x.md - Do X\n")
	taskPath := writeTask(t, dir, "tasks/x.md",
		"---\nissue_id: 7\nupdated_at: 2025-03-01T00:00:00Z\n---\n# Do X\n\nDetails.\n")

	// Backdate the file so updated_at >= mtime.
	old := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(taskPath, old, old))

	fake := testutil.NewFakeBackend()
	fake.AddIssue(7, "Do X", "")
	eng := newTestEngine(fake, dir)

	result, err := eng.Sync(context.Background(), projectFile)
	require.NoError(t, err)

	assert.Equal(t, []string{"tasks/x.md"}, result.Skipped)
	assert.Empty(t, fake.CreateCalls)
	assert.Empty(t, fake.UpdateCalls)

	// Idempotence: a second pass skips again without any backend call.
	result, err = eng.Sync(context.Background(), projectFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"tasks/x.md"}, result.Skipped)
	assert.Empty(t, fake.UpdateCalls)
}

func TestSync_SecondPassSettles(t *testing.T) {
	dir := t.TempDir()
	projectFile := writeProject(t, dir,
		"backend: github\nrepo: a/b\n---\n* [new] - tasks/a.md - A\n* [#7] - tasks/b.md - B\n")
	writeTask(t, dir, "tasks/a.md", "---\ntype: task\n---\n# A\n\nBody.\n")
	writeTask(t, dir, "tasks/b.md", "---\nissue_id: 7\n---\n# B\n\nBody.\n")

	fake := testutil.NewFakeBackend()
	fake.AddIssue(7, "B", "old")

	// Real clock: the first pass creates and updates, then every further
	// pass must settle through the change-detection gate with no backend
	// calls. This is what keeps watch mode from chasing its own rewrites.
	eng := New(fake, dir)

	result, err := eng.Sync(context.Background(), projectFile)
	require.NoError(t, err)
	require.Len(t, result.Created, 1)
	require.Len(t, result.Updated, 1)

	for pass := 0; pass < 3; pass++ {
		result, err = eng.Sync(context.Background(), projectFile)
		require.NoError(t, err)
		assert.Empty(t, result.Created, "pass %d", pass)
		assert.Empty(t, result.Updated, "pass %d", pass)
		assert.Empty(t, result.Errors, "pass %d", pass)
		assert.Len(t, result.Skipped, 2, "pass %d", pass)
	}
	assert.Len(t, fake.CreateCalls, 1)
	assert.Len(t, fake.UpdateCalls, 1)
}

func TestSync_ReconcilesIssueIDMismatch(t *testing.T) {
	dir := t.TempDir()
	projectFile := writeProject(t, dir, "backend: github\nrepo: a/b\n---\n* [#7] - tasks/x.md - Do X\n")
	// The task file disagrees with the document; the document wins.
	taskPath := writeTask(t, dir, "tasks/x.md", "---\nissue_id: 3\n---\n# Do X\n\nDetails.\n")

	fake := testutil.NewFakeBackend()
	fake.AddIssue(7, "Do X", "")
	eng := newTestEngine(fake, dir)

	result, err := eng.Sync(context.Background(), projectFile)
	require.NoError(t, err)
	require.Len(t, result.Updated, 1)

	raw, err := os.ReadFile(taskPath)
	require.NoError(t, err)
	tf, err := project.ParseTaskFile(string(raw))
	require.NoError(t, err)
	assert.Equal(t, 7, tf.Config.IssueID)
}

func TestSync_TaskErrorsAreIsolated(t *testing.T) {
	dir := t.TempDir()
	projectFile := writeProject(t, dir,
		"backend: github\nrepo: a/b\n---\n* [new] - tasks/missing.md - Gone\n* [new] - tasks/ok.md - Fine\n")
	writeTask(t, dir, "tasks/ok.md", "---\ntype: task\n---\n# Fine\n\nBody.\n")

	fake := testutil.NewFakeBackend()
	eng := newTestEngine(fake, dir)

	result, err := eng.Sync(context.Background(), projectFile)
	require.NoError(t, err)

	// One error for the missing file, one creation for the good one;
	// the run does not abort.
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "tasks/missing.md", result.Errors[0].Path)
	require.Len(t, result.Created, 1)
	assert.Equal(t, 1, result.Created[0].Number)

	// The document is still patched for the task that succeeded.
	doc, err := os.ReadFile(projectFile)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "* [#1] - tasks/ok.md - Fine")
	assert.Contains(t, string(doc), "* [new] - tasks/missing.md - Gone")
}

func TestSync_BackendFailureIsPerTask(t *testing.T) {
	dir := t.TempDir()
	projectFile := writeProject(t, dir,
		"backend: github\nrepo: a/b\n---\n* [new] - tasks/a.md - A\n* [#9] - tasks/b.md - B\n")
	writeTask(t, dir, "tasks/a.md", "---\ntype: task\n---\n# A\n\nBody.\n")
	writeTask(t, dir, "tasks/b.md", "---\nissue_id: 9\n---\n# B\n\nBody.\n")

	fake := testutil.NewFakeBackend()
	fake.CreateErr = assert.AnError
	fake.AddIssue(9, "B", "")
	eng := newTestEngine(fake, dir)

	result, err := eng.Sync(context.Background(), projectFile)
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "tasks/a.md", result.Errors[0].Path)
	require.Len(t, result.Updated, 1)
	assert.Equal(t, 9, result.Updated[0].Number)
}

func TestSync_DocumentPatchPreservesBytes(t *testing.T) {
	dir := t.TempDir()
	content := "backend: github\nrepo: a/b\n---\n\n# Plan\n\nProse   with   odd   spacing.\n\n* [new] - tasks/x.md - Do X\n\n> a quote\t\twith tabs\n"
	projectFile := writeProject(t, dir, content)
	writeTask(t, dir, "tasks/x.md", "---\ntype: task\n---\n# Do X\n\nBody.\n")

	fake := testutil.NewFakeBackend()
	eng := newTestEngine(fake, dir)

	_, err := eng.Sync(context.Background(), projectFile)
	require.NoError(t, err)

	got, err := os.ReadFile(projectFile)
	require.NoError(t, err)
	want := strings.Replace(content, "* [new] - tasks/x.md -", "* [#1] - tasks/x.md -", 1)
	assert.Equal(t, want, string(got))
}

func TestSync_DocumentFailuresAreFatal(t *testing.T) {
	dir := t.TempDir()

	_, err := New(testutil.NewFakeBackend(), dir).Sync(context.Background(), filepath.Join(dir, "absent.md"))
	require.Error(t, err)

	projectFile := writeProject(t, dir, "no front matter here\n")
	_, err = New(testutil.NewFakeBackend(), dir).Sync(context.Background(), projectFile)
	require.Error(t, err)
}

func TestSync_CreateStampsPreserveExistingCreatedAt(t *testing.T) {
	dir := t.TempDir()
	projectFile := writeProject(t, dir, "backend: github\nrepo: a/b\n---\n* [new] - tasks/x.md - Do X\n")
	taskPath := writeTask(t, dir, "tasks/x.md",
		"---\ncreated_at: 2024-05-05T05:05:05Z\n---\n# Do X\n\nBody.\n")

	fake := testutil.NewFakeBackend()
	eng := newTestEngine(fake, dir)

	_, err := eng.Sync(context.Background(), projectFile)
	require.NoError(t, err)

	raw, err := os.ReadFile(taskPath)
	require.NoError(t, err)
	tf, err := project.ParseTaskFile(string(raw))
	require.NoError(t, err)
	assert.True(t, tf.Config.CreatedAt.Equal(time.Date(2024, 5, 5, 5, 5, 5, 0, time.UTC)))
	assert.True(t, tf.Config.UpdatedAt.Equal(testClock))
}

func TestSync_UnknownKeysSurviveRewrite(t *testing.T) {
	dir := t.TempDir()
	projectFile := writeProject(t, dir, "backend: github\nrepo: a/b\n---\n* [new] - tasks/x.md - Do X\n")
	taskPath := writeTask(t, dir, "tasks/x.md",
		"---\nassignee: vagmi\npriority: 2\n---\n# Do X\n\nBody.\n")

	fake := testutil.NewFakeBackend()
	eng := newTestEngine(fake, dir)

	_, err := eng.Sync(context.Background(), projectFile)
	require.NoError(t, err)

	raw, err := os.ReadFile(taskPath)
	require.NoError(t, err)
	tf, err := project.ParseTaskFile(string(raw))
	require.NoError(t, err)
	assert.Equal(t, "vagmi", tf.Config.Extra["assignee"])
	assert.Equal(t, 2, tf.Config.Extra["priority"])
	assert.Equal(t, 1, tf.Config.IssueID)
}
