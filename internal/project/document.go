package project

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Separator delimits the YAML front matter from the document content.
const Separator = "---"

// bulletPrefix marks a candidate task bullet. Lines carrying the prefix
// must parse fully; all other lines are ignored.
const bulletPrefix = "* ["

// ParseDocument parses project document text into a Document.
//
// The document is a YAML key/value block, a line consisting solely of
// "---", then free-form content. Within the content, every line of the
// shape "* [<status>] - <path> - <description>" becomes a TaskItem, where
// <status> is either "new" or "#<digits>". Headings, prose, blank lines
// and unrelated bullets are skipped without error.
func ParseDocument(text string) (*Document, error) {
	head, content, found := splitDocument(text)
	if !found {
		return nil, parseErrorf("missing front matter: no %q separator line", Separator)
	}
	if strings.TrimSpace(head) == "" {
		return nil, parseErrorf("missing front matter: empty block before %q", Separator)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(head), &cfg); err != nil {
		return nil, parseErrorf("invalid front matter: %v", err)
	}
	if cfg.Backend == "" {
		return nil, parseErrorf("front matter missing required key %q", "backend")
	}
	if cfg.Repo == "" {
		return nil, parseErrorf("front matter missing required key %q", "repo")
	}

	doc := &Document{Config: cfg}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(line, bulletPrefix) {
			continue
		}
		item, matched, err := parseTaskBullet(line)
		if err != nil {
			return nil, err
		}
		if matched {
			doc.Tasks = append(doc.Tasks, item)
		}
	}
	return doc, nil
}

// splitDocument separates the text at the first line that consists solely
// of the separator.
func splitDocument(text string) (head, content string, found bool) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimRight(line, "\r") == Separator {
			return strings.Join(lines[:i], "\n"), strings.Join(lines[i+1:], "\n"), true
		}
	}
	return "", "", false
}

// parseTaskBullet parses a single candidate bullet line. Bullets whose
// bracket contents are neither "new" nor "#<digits>" are not task bullets
// (checkboxes and the like) and report matched=false. Bullets that are
// task bullets but malformed fail the whole parse.
func parseTaskBullet(line string) (TaskItem, bool, error) {
	rest := strings.TrimPrefix(line, bulletPrefix)
	end := strings.Index(rest, "]")
	if end < 0 {
		return TaskItem{}, false, nil
	}

	statusText := rest[:end]
	tail := rest[end+1:]

	var status TaskStatus
	switch {
	case statusText == "new":
		status = NewStatus()
	case strings.HasPrefix(statusText, "#"):
		n, err := strconv.Atoi(statusText[1:])
		if err != nil {
			return TaskItem{}, false, parseErrorf("invalid issue number in %q: %v", line, err)
		}
		if n < 1 {
			return TaskItem{}, false, parseErrorf("invalid issue number in %q: must be >= 1", line)
		}
		status = ExistingStatus(n)
	default:
		return TaskItem{}, false, nil
	}

	tail, ok := strings.CutPrefix(tail, " - ")
	if !ok {
		return TaskItem{}, false, parseErrorf("task bullet missing path: %q", line)
	}
	path, description, ok := strings.Cut(tail, " - ")
	if !ok {
		return TaskItem{}, false, parseErrorf("task bullet missing description: %q", line)
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return TaskItem{}, false, parseErrorf("task bullet missing path: %q", line)
	}

	return TaskItem{
		Status:      status,
		Path:        path,
		Description: strings.TrimSpace(description),
	}, true, nil
}
