package core

import (
	"regexp"
	"strings"
)

// pep440TagPattern matches version-shaped path segments inside links so a
// README already pointing at a release can be repointed.
const pep440TagPattern = `v?\d+\.\d+\.\d+((a|b|c|rc|dev)\d+)?`

// branchVariants lists the branch-like link segments that get rewritten on
// release, besides the project default branch and version-shaped segments.
var branchVariants = []string{"available", "latest", "main", "master", "stable"}

// UpdateReadme rewrites README text to make it release (or latest) ready.
// Link segments matching a branch variant, the default branch, or a version
// tag are repointed to "/v<version>"; doc badge images become
// "docs-v<version>-". An empty version restores the latest form: links point
// at the default branch and badges at "docs-latest-".
func UpdateReadme(contents string, version string, defaultBranch string) string {
	alternatives := variantAlternatives(defaultBranch)

	// matches the graphical doc badge in the readme's text
	docImage := regexp.MustCompile(`docs-(` + alternatives + `)-`)

	// matches all other occurrences we need to handle
	branchRe := regexp.MustCompile(`/(` + alternatives + `)`)

	linkReplacement := "/" + defaultBranch
	badgeReplacement := "docs-latest-"
	if version != "" {
		linkReplacement = "/v" + version
		badgeReplacement = "docs-v" + version + "-"
	}

	lines := strings.Split(contents, "\n")
	updated := make([]string, 0, len(lines))
	for _, line := range lines {
		if branchRe.MatchString(line) {
			if strings.Contains(line, "gitlab") {
				line = branchRe.ReplaceAllString(line, linkReplacement)
			}
			if strings.Contains(line, "docs-latest") || strings.Contains(line, "docs-stable") {
				// doc server links
				line = branchRe.ReplaceAllString(line, linkReplacement)
			}
		}
		if docImage.MatchString(line) {
			line = docImage.ReplaceAllString(line, badgeReplacement)
		}
		updated = append(updated, line)
	}
	text := strings.Join(updated, "\n")
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text
}

// RewriteBranchLink repoints a single URL the same way UpdateReadme treats
// link segments. Used for manifest documentation URLs.
func RewriteBranchLink(url string, version string, defaultBranch string) (string, bool) {
	branchRe := regexp.MustCompile(`/(` + variantAlternatives(defaultBranch) + `)`)
	if !branchRe.MatchString(url) {
		return url, false
	}
	replacement := "/" + defaultBranch
	if version != "" {
		replacement = "/v" + version
	}
	return branchRe.ReplaceAllString(url, replacement), true
}

func variantAlternatives(defaultBranch string) string {
	variants := make([]string, 0, len(branchVariants)+2)
	variants = append(variants, branchVariants...)
	if defaultBranch != "" {
		variants = append(variants, regexp.QuoteMeta(defaultBranch))
	}
	variants = append(variants, pep440TagPattern)
	return strings.Join(variants, "|")
}
