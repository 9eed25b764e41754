package protocol

import (
	"errors"
	"strings"
)

var errBadPostArgs = errors.New("malformed post arguments")

// parsePostArgs extracts the title and optional content from the raw
// arguments of a post command. Both are passed as double-quoted groups:
//
//	post "title" "content"
//	post "title"
//
// The quote count must be even and exactly one or two quoted groups must be
// present, the first non-empty after trimming. Anything else is a usage
// error.
func parsePostArgs(raw string) (title, content string, err error) {
	if strings.Count(raw, `"`)%2 != 0 {
		return "", "", errBadPostArgs
	}

	parts := strings.Split(raw, `"`)
	// quoted groups sit at the odd indices of the split
	var groups []string
	for i := 1; i < len(parts); i += 2 {
		groups = append(groups, parts[i])
	}
	if len(groups) < 1 || len(groups) > 2 {
		return "", "", errBadPostArgs
	}

	title = strings.TrimSpace(groups[0])
	if title == "" {
		return "", "", errBadPostArgs
	}
	if len(groups) == 2 {
		content = groups[1]
	}
	return title, content, nil
}
