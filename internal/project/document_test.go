package project_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projectmd/internal/project"
)

const simpleDoc = `backend: github
repo: vagmi/projectmd
---

# Your glorious project name

Description paragraph.

* [#1] - tasks/setup_auth.md - setup the authentication
* [new] - tasks/scaffold_ui.md - Scaffold the UI
`

func TestParseDocument(t *testing.T) {
	doc, err := project.ParseDocument(simpleDoc)
	require.NoError(t, err)

	assert.Equal(t, "github", doc.Config.Backend)
	assert.Equal(t, "vagmi/projectmd", doc.Config.Repo)
	require.Len(t, doc.Tasks, 2)

	n, ok := doc.Tasks[0].Status.IssueNumber()
	require.True(t, ok)
	assert.Equal(t, 1, n)
	assert.Equal(t, "tasks/setup_auth.md", doc.Tasks[0].Path)
	assert.Equal(t, "setup the authentication", doc.Tasks[0].Description)

	assert.True(t, doc.Tasks[1].Status.IsNew())
	assert.Equal(t, "tasks/scaffold_ui.md", doc.Tasks[1].Path)
}

func TestParseDocument_MixedContent(t *testing.T) {
	// Task bullets must be extracted regardless of the prose, headings,
	// checkboxes and blank-line runs around them.
	content := `backend: github
repo: test/mixed
extra_field: some_value
---

# Heading

Some opening prose that mentions * [new] inline but not at line start.

* [new] - tasks/first.md - Setup the project


* [#10] - tasks/second.md - Build the application

## Notes

- a plain bullet
* a star bullet without brackets
* [x] a markdown checkbox

> quoted text

* [#20] - tasks/third.md - Deploy to production
* [new] - tasks/fourth.md - Write tests
`
	doc, err := project.ParseDocument(content)
	require.NoError(t, err)

	assert.Equal(t, "some_value", doc.Config.Extra["extra_field"])
	require.Len(t, doc.Tasks, 4)

	assert.True(t, doc.Tasks[0].Status.IsNew())
	assert.Equal(t, "tasks/first.md", doc.Tasks[0].Path)

	n, _ := doc.Tasks[1].Status.IssueNumber()
	assert.Equal(t, 10, n)

	n, _ = doc.Tasks[2].Status.IssueNumber()
	assert.Equal(t, 20, n)
	assert.Equal(t, "Deploy to production", doc.Tasks[2].Description)

	assert.True(t, doc.Tasks[3].Status.IsNew())
	assert.Equal(t, "tasks/fourth.md", doc.Tasks[3].Path)
}

func TestParseDocument_TrailingAndRepeatedNewlines(t *testing.T) {
	content := "backend: github\nrepo: test/trailing\n---\n\n\n\n* [new] - a.md - One\n\n\n* [#1] - b.md - Two\n\n\n"
	doc, err := project.ParseDocument(content)
	require.NoError(t, err)
	require.Len(t, doc.Tasks, 2)
}

func TestParseDocument_NoTasks(t *testing.T) {
	content := `backend: github
repo: test/notasks
---

# A project with prose only

Nothing to track yet.
`
	doc, err := project.ParseDocument(content)
	require.NoError(t, err)
	assert.Empty(t, doc.Tasks)
}

func TestParseDocument_MissingFrontMatter(t *testing.T) {
	var parseErr *project.ParseError

	_, err := project.ParseDocument("# Just markdown\n\n* [new] - a.md - Task\n")
	require.Error(t, err)
	assert.True(t, errors.As(err, &parseErr))

	// A separator with nothing before it is still missing front matter.
	_, err = project.ParseDocument("---\n* [new] - a.md - Task\n")
	require.Error(t, err)
	assert.True(t, errors.As(err, &parseErr))
}

func TestParseDocument_MissingRequiredKeys(t *testing.T) {
	_, err := project.ParseDocument("backend: github\n---\ncontent\n")
	require.Error(t, err)

	_, err = project.ParseDocument("repo: a/b\n---\ncontent\n")
	require.Error(t, err)
}

func TestParseDocument_MalformedYAML(t *testing.T) {
	var parseErr *project.ParseError
	_, err := project.ParseDocument("backend: [unclosed\n---\ncontent\n")
	require.Error(t, err)
	assert.True(t, errors.As(err, &parseErr))
}

func TestParseDocument_BadIssueNumbers(t *testing.T) {
	base := "backend: github\nrepo: a/b\n---\n"

	for _, line := range []string{
		"* [#abc] - a.md - not a number",
		"* [#0] - a.md - zero is not a valid issue",
		"* [#99999999999999999999] - a.md - overflow",
	} {
		_, err := project.ParseDocument(base + line + "\n")
		assert.Error(t, err, "line %q", line)
	}
}

func TestParseDocument_MalformedBullets(t *testing.T) {
	base := "backend: github\nrepo: a/b\n---\n"

	// A bullet that declares a task status must carry path and
	// description; failure is fatal, not ignored.
	for _, line := range []string{
		"* [new] - a.md",
		"* [new] a.md - no separator",
		"* [#3] -  - description without path",
	} {
		_, err := project.ParseDocument(base + line + "\n")
		assert.Error(t, err, "line %q", line)
	}

	// Bullets with unrelated bracket contents are not task bullets.
	doc, err := project.ParseDocument(base + "* [x] done thing\n* [ ] open thing\n")
	require.NoError(t, err)
	assert.Empty(t, doc.Tasks)
}

func TestParseDocument_StatusInvariant(t *testing.T) {
	doc, err := project.ParseDocument(simpleDoc)
	require.NoError(t, err)

	for _, task := range doc.Tasks {
		if n, ok := task.Status.IssueNumber(); ok {
			assert.GreaterOrEqual(t, n, 1)
			assert.False(t, task.Status.IsNew())
		} else {
			assert.True(t, task.Status.IsNew())
		}
	}
}

func TestParseDocument_OrderStable(t *testing.T) {
	content := "backend: github\nrepo: a/b\n---\n* [new] - z.md - Z\n* [new] - a.md - A\n* [#5] - m.md - M\n"

	for range 3 {
		doc, err := project.ParseDocument(content)
		require.NoError(t, err)
		require.Len(t, doc.Tasks, 3)
		assert.Equal(t, "z.md", doc.Tasks[0].Path)
		assert.Equal(t, "a.md", doc.Tasks[1].Path)
		assert.Equal(t, "m.md", doc.Tasks[2].Path)
	}
}
