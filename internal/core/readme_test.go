package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const readmeFixture = `# sample-project

[![docs](https://img.shields.io/badge/docs-latest-orange.svg)](https://example.com/sample/sample-project/latest/sphinx/index.html)
[![pipeline](https://gitlab.example.com/sample/sample-project/badges/main/pipeline.svg)](https://gitlab.example.com/sample/sample-project/commits/main)

See the [user guide](https://example.com/sample/sample-project/latest/sphinx/index.html)
and [the docs-latest builds](https://example.com/sample/sample-project/main/).

Unrelated link to [main street](https://maps.example.com/main-street) stays.
`

func TestUpdateReadmeForRelease(t *testing.T) {
	got := UpdateReadme(readmeFixture, "2.0.1", "main")

	require.Contains(t, got, "docs-v2.0.1-orange.svg")
	require.Contains(t, got, "badges/v2.0.1/pipeline.svg")
	require.Contains(t, got, "commits/v2.0.1")
	require.Contains(t, got, "sample-project/v2.0.1/sphinx/index.html")
	require.NotContains(t, got, "docs-latest-orange")
	// lines without gitlab or doc-server markers stay put
	require.Contains(t, got, "maps.example.com/main-street")
	require.True(t, strings.HasSuffix(got, "\n"))
}

func TestUpdateReadmeBackToLatest(t *testing.T) {
	released := UpdateReadme(readmeFixture, "2.0.1", "main")
	restored := UpdateReadme(released, "", "main")

	require.Contains(t, restored, "docs-latest-orange.svg")
	require.Contains(t, restored, "badges/main/pipeline.svg")
	require.Contains(t, restored, "commits/main")
}

func TestUpdateReadmeIdempotent(t *testing.T) {
	once := UpdateReadme(readmeFixture, "2.0.1", "main")
	twice := UpdateReadme(once, "2.0.1", "main")
	require.Equal(t, once, twice)
}

func TestRewriteBranchLink(t *testing.T) {
	tests := []struct {
		url     string
		version string
		branch  string
		want    string
		changed bool
	}{
		{
			url:     "https://example.com/sample/sample-project/main/sphinx/index.html",
			version: "2.0.1",
			branch:  "main",
			want:    "https://example.com/sample/sample-project/v2.0.1/sphinx/index.html",
			changed: true,
		},
		{
			url:     "https://example.com/sample/sample-project/v1.9.0/sphinx/index.html",
			version: "2.0.1",
			branch:  "main",
			want:    "https://example.com/sample/sample-project/v2.0.1/sphinx/index.html",
			changed: true,
		},
		{
			url:     "https://example.com/sample/sample-project/v2.0.1/sphinx/index.html",
			version: "",
			branch:  "main",
			want:    "https://example.com/sample/sample-project/main/sphinx/index.html",
			changed: true,
		},
		{
			url:     "https://example.com/about",
			version: "2.0.1",
			branch:  "develop",
			want:    "https://example.com/about",
			changed: false,
		},
	}

	for _, tt := range tests {
		got, changed := RewriteBranchLink(tt.url, tt.version, tt.branch)
		require.Equal(t, tt.changed, changed, tt.url)
		require.Equal(t, tt.want, got, tt.url)
	}
}

func TestUnifiedDiff(t *testing.T) {
	diff := UnifiedDiff("a\nb\nc\n", "a\nB\nc\n", "sample.txt")
	require.Contains(t, diff, "--- sample.txt")
	require.Contains(t, diff, "+++ sample.txt.new")
	require.Contains(t, diff, "-b")
	require.Contains(t, diff, "+B")

	require.Empty(t, UnifiedDiff("same\n", "same\n", "sample.txt"))
}
