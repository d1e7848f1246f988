// Package testutils holds fixtures shared by adapter and CLI tests.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// SetupFormRepo writes files (name -> content) into a fresh temp dir and
// initializes a Loam repository over it. It fails the test immediately on error.
func SetupFormRepo(t *testing.T, files map[string]string, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	dir := WriteFiles(t, files)
	repo, err := loam.Init(dir, opts...)
	require.NoError(t, err, "Failed to init loam repo")
	return dir, repo
}

// WriteFiles writes files into a fresh temp dir and returns its absolute path.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

// SurveyYAML is a three-question form in the YAML file format.
const SurveyYAML = `name: Survey
settings:
  name: Survey
nodes:
  - id: "1"
    data:
      question: What's your name?
      type: text
      variable: name
      required: true
  - id: "2"
    position: {x: 0, y: 150}
    data:
      question: How old are you, [name]?
      type: rating
      variable: age
  - id: "3"
    position: {x: 0, y: 300}
    data:
      question: Do you drive?
      type: boolean
      variable: drives
edges:
  - id: e1
    source: "1"
    target: "2"
  - id: e2
    source: "2"
    target: "3"
    data:
      conditions:
        - source: age
          operator: greaterThanOrEqual
          value: 18
`

// SurveyMarkdown is the same survey as a Loam document (frontmatter format).
const SurveyMarkdown = `---
name: Survey
nodes:
  - id: "1"
    question: What's your name?
    variable: name
    required: true
    to: "2"
  - id: "2"
    question: How old are you, [name]?
    type: rating
    variable: age
    y: 150
  - id: "3"
    question: Do you drive?
    type: boolean
    variable: drives
    y: 300
edges:
  - from: "2"
    to: "3"
    when:
      - var: age
        op: greaterThanOrEqual
        value: 18
---
`
