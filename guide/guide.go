// Package guide embeds the usage pages printed by "exambank guide" and
// served by the exambank_guide MCP tool.
package guide

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"
)

//go:embed *.md
var files embed.FS

// Default is the page returned for an empty topic.
const Default = "guide"

// Get returns the markdown of a page. An empty topic returns the main page.
func Get(topic string) (string, error) {
	if topic == "" {
		topic = Default
	}
	data, err := files.ReadFile(topic + ".md")
	if err != nil {
		return "", fmt.Errorf("guide %q not found (available: %s)", topic, strings.Join(Topics(), ", "))
	}
	return string(data), nil
}

// Topics returns the names of the pages other than the main one, sorted.
func Topics() []string {
	names, _ := fs.Glob(files, "*.md")
	var out []string
	for _, n := range names {
		if n = strings.TrimSuffix(n, ".md"); n != Default {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out
}
