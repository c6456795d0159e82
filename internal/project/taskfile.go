package project

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseTaskFile parses task file text into a TaskFile.
//
// The format is front matter delimited by "---", a YAML block, a second
// "---", then a markdown body. Only the first two separators are
// significant: "---" sequences inside the body pass through untouched.
func ParseTaskFile(text string) (*TaskFile, error) {
	yamlPart, tail, err := splitTaskFile(text)
	if err != nil {
		return nil, err
	}

	var cfg TaskFileConfig
	if err := yaml.Unmarshal([]byte(yamlPart), &cfg); err != nil {
		return nil, parseErrorf("invalid task front matter: %v", err)
	}

	title, body := extractTitleAndBody(tail)
	return &TaskFile{Config: cfg, Title: title, Body: body}, nil
}

// RenderTaskFile re-serializes cfg and splices it back into the original
// task file text. Only the front-matter block changes; the tail after the
// second separator is kept byte-for-byte, so rendering is stable under
// repetition and never touches the body.
func RenderTaskFile(cfg TaskFileConfig, original string) (string, error) {
	_, tail, err := splitTaskFile(original)
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", parseErrorf("cannot serialize task front matter: %v", err)
	}

	var b strings.Builder
	b.WriteString(Separator)
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(string(data)))
	b.WriteString("\n")
	b.WriteString(Separator)
	b.WriteString(tail)
	return b.String(), nil
}

// splitTaskFile splits on the first two "---" occurrences.
func splitTaskFile(text string) (yamlPart, tail string, err error) {
	parts := strings.SplitN(text, Separator, 3)
	if len(parts) < 3 {
		return "", "", parseErrorf("invalid task file: missing front matter delimiters")
	}
	return parts[1], parts[2], nil
}

// extractTitleAndBody takes the markdown after the front matter and
// returns the first "# " heading as the title and everything after it,
// trimmed, as the body. Without a heading the title is empty and the
// whole remainder is the body.
func extractTitleAndBody(markdown string) (title, body string) {
	lines := strings.Split(markdown, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			title = strings.TrimPrefix(trimmed, "# ")
			body = strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
			return title, body
		}
	}
	return "", strings.TrimSpace(markdown)
}
