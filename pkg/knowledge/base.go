// Package knowledge answers out-of-flow questions. It holds a static
// keyword-indexed knowledge base, consulted before any model call: the
// first case-insensitive substring match wins and short-circuits the LLM.
package knowledge

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is one canned answer, matched by keyword.
type Entry struct {
	Keyword  string `yaml:"keyword"`
	Category string `yaml:"category"`
	Reply    string `yaml:"reply"`
}

// Base is the read-only knowledge base, loaded once at startup.
type Base struct {
	entries []Entry
}

// NewBase creates a knowledge base from the given entries, preserving their
// order (match precedence follows entry order).
func NewBase(entries []Entry) *Base {
	return &Base{entries: append([]Entry{}, entries...)}
}

// LoadBase reads a knowledge base from a YAML file. The file holds a list
// of entries under a top-level "entries" key.
func LoadBase(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge file %s: %w", path, err)
	}

	var doc struct {
		Entries []Entry `yaml:"entries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge file %s: %w", path, err)
	}

	for i := range doc.Entries {
		e := &doc.Entries[i]
		if strings.TrimSpace(e.Keyword) == "" || strings.TrimSpace(e.Reply) == "" {
			return nil, fmt.Errorf("knowledge entry %d in %s missing keyword or reply", i, path)
		}
	}

	return NewBase(doc.Entries), nil
}

// Lookup scans the user text for the first entry whose keyword appears
// case-insensitively as a substring. Returns the entry and true on a hit.
func (b *Base) Lookup(text string) (Entry, bool) {
	lowered := strings.ToLower(text)
	for _, entry := range b.entries {
		if strings.Contains(lowered, strings.ToLower(entry.Keyword)) {
			return entry, true
		}
	}
	return Entry{}, false
}

// Keywords returns the sorted keyword list, for fallback help text.
func (b *Base) Keywords() []string {
	keywords := make([]string, 0, len(b.entries))
	for _, entry := range b.entries {
		keywords = append(keywords, entry.Keyword)
	}
	sort.Strings(keywords)
	return keywords
}

// Len returns the number of entries.
func (b *Base) Len() int {
	return len(b.entries)
}

// Serialize renders the base as plain text suitable for use as LLM context.
func (b *Base) Serialize() string {
	var sb strings.Builder
	for _, entry := range b.entries {
		sb.WriteString(fmt.Sprintf("## %s (%s)\n%s\n\n", entry.Keyword, entry.Category, entry.Reply))
	}
	return sb.String()
}
