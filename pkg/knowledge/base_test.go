package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKnowledgeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "knowledge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadBase(t *testing.T) {
	path := writeKnowledgeFile(t, `
entries:
  - keyword: visa
    category: paperwork
    reply: "We help with student visa applications."
  - keyword: housing
    category: services
    reply: "We can arrange student housing."
`)

	base, err := LoadBase(path)
	require.NoError(t, err)
	assert.Equal(t, 2, base.Len())

	entry, ok := base.Lookup("how do I get a visa?")
	require.True(t, ok)
	assert.Equal(t, "paperwork", entry.Category)
}

func TestLoadBaseRejectsIncompleteEntries(t *testing.T) {
	path := writeKnowledgeFile(t, `
entries:
  - keyword: visa
    reply: ""
`)

	_, err := LoadBase(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing keyword or reply")
}

func TestLoadBaseMissingFile(t *testing.T) {
	_, err := LoadBase(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestSerializeIncludesAllEntries(t *testing.T) {
	out := testBase().Serialize()
	assert.Contains(t, out, "scholarships")
	assert.Contains(t, out, "germany")
	assert.Contains(t, out, "tuition-free")
}
