package core

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"

	"gitlab-devtools/internal/types"
)

// releaseTagPattern matches the subset of PEP 440 used for release tags:
// X.Y.Z with an optional pre-release suffix (1.2.3, 1.2.3b1, 1.2.3rc2).
var releaseTagPattern = regexp.MustCompile(`^\d+\.\d+\.\d+((a|b|c|rc|dev)\d+)?$`)

var releasePrefixPattern = regexp.MustCompile(`^\d+\.\d+\.\d+`)

// versionSatisfies checks a single version against a specifier set under
// PEP 440 semantics. Pre-release tags order before the final release of the
// same numeric prefix, and a version differing only by such a suffix is not
// equal to the final release.
func versionSatisfies(version string, restriction []types.Specifier) (bool, error) {
	parsed, err := pep440.Parse(version)
	if err != nil {
		return false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid version %q", version)).
			WithCause(err)
	}
	spec, err := pep440.NewSpecifiers(SpecifiersString(restriction), pep440.WithPreRelease(true))
	if err != nil {
		return false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid specifiers %q", SpecifiersString(restriction))).
			WithCause(err)
	}
	return spec.Check(parsed), nil
}

// versionBound is one side of the interval a specifier set allows.
type versionBound struct {
	version   pep440.Version
	inclusive bool
	set       bool
}

// specifiersDisjoint reports whether two specifier sets are provably
// disjoint on their numeric bounds. The check is deliberately coarse: it
// only derives lower/upper bounds from the supported operators and declares
// a conflict when the combined interval is empty. Anything it cannot model
// (wildcards, unparseable versions, "!=" clauses) makes the check
// inconclusive, never a conflict.
func specifiersDisjoint(a []types.Specifier, b []types.Specifier) (bool, error) {
	var lower versionBound
	var upper versionBound
	for _, spec := range append(append([]types.Specifier(nil), a...), b...) {
		specLower, specUpper, ok := boundsOf(spec)
		if !ok {
			continue
		}
		if specLower.set {
			lower = tightenLower(lower, specLower)
		}
		if specUpper.set {
			upper = tightenUpper(upper, specUpper)
		}
	}
	if !lower.set || !upper.set {
		return false, nil
	}
	cmp := lower.version.Compare(upper.version)
	if cmp > 0 {
		return true, nil
	}
	if cmp == 0 && !(lower.inclusive && upper.inclusive) {
		return true, nil
	}
	return false, nil
}

func boundsOf(spec types.Specifier) (versionBound, versionBound, bool) {
	if strings.Contains(spec.Version, "*") {
		return versionBound{}, versionBound{}, false
	}
	parsed, err := pep440.Parse(spec.Version)
	if err != nil {
		return versionBound{}, versionBound{}, false
	}
	switch spec.Op {
	case types.SpecifierOpEq:
		bound := versionBound{version: parsed, inclusive: true, set: true}
		return bound, bound, true
	case types.SpecifierOpGte:
		return versionBound{version: parsed, inclusive: true, set: true}, versionBound{}, true
	case types.SpecifierOpGt:
		return versionBound{version: parsed, inclusive: false, set: true}, versionBound{}, true
	case types.SpecifierOpLte:
		return versionBound{}, versionBound{version: parsed, inclusive: true, set: true}, true
	case types.SpecifierOpLt:
		return versionBound{}, versionBound{version: parsed, inclusive: false, set: true}, true
	case types.SpecifierOpCompat:
		ceiling, ok := compatibleReleaseCeiling(spec.Version)
		if !ok {
			return versionBound{version: parsed, inclusive: true, set: true}, versionBound{}, true
		}
		parsedCeiling, err := pep440.Parse(ceiling)
		if err != nil {
			return versionBound{version: parsed, inclusive: true, set: true}, versionBound{}, true
		}
		return versionBound{version: parsed, inclusive: true, set: true},
			versionBound{version: parsedCeiling, inclusive: false, set: true}, true
	default:
		return versionBound{}, versionBound{}, false
	}
}

// compatibleReleaseCeiling computes the exclusive upper bound of a "~="
// clause: drop the last release segment and increment the new last one
// (1.2.3 -> 1.3, 1.2 -> 2).
func compatibleReleaseCeiling(version string) (string, bool) {
	segments := strings.Split(version, ".")
	numeric := make([]int, 0, len(segments))
	for _, segment := range segments {
		value, err := strconv.Atoi(segment)
		if err != nil {
			break
		}
		numeric = append(numeric, value)
	}
	if len(numeric) < 2 {
		return "", false
	}
	numeric = numeric[:len(numeric)-1]
	numeric[len(numeric)-1]++
	parts := make([]string, 0, len(numeric))
	for _, value := range numeric {
		parts = append(parts, strconv.Itoa(value))
	}
	return strings.Join(parts, "."), true
}

func tightenLower(current versionBound, candidate versionBound) versionBound {
	if !current.set {
		return candidate
	}
	cmp := candidate.version.Compare(current.version)
	if cmp > 0 || (cmp == 0 && !candidate.inclusive) {
		return candidate
	}
	return current
}

func tightenUpper(current versionBound, candidate versionBound) versionBound {
	if !current.set {
		return candidate
	}
	cmp := candidate.version.Compare(current.version)
	if cmp < 0 || (cmp == 0 && !candidate.inclusive) {
		return candidate
	}
	return current
}

// LatestVersionTag picks the highest release tag from a list of tag names.
// Names are accepted with or without a leading "v"; anything that does not
// look like a release version is ignored. Returns false when no usable tag
// exists.
func LatestVersionTag(tags []string) (string, bool) {
	type parsedTag struct {
		name    string
		version pep440.Version
	}
	var candidates []parsedTag
	for _, tag := range tags {
		name := strings.TrimPrefix(strings.TrimSpace(tag), "v")
		if !releaseTagPattern.MatchString(name) {
			continue
		}
		parsed, err := pep440.Parse(name)
		if err != nil {
			continue
		}
		candidates = append(candidates, parsedTag{name: name, version: parsed})
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].version.Compare(candidates[j].version) < 0
	})
	return candidates[len(candidates)-1].name, true
}

// NextVersion computes the tag for the next release given the latest
// released version (without the leading "v") and the requested bump. An
// empty latest version yields the first release for that bump. Patch bumps
// on a pre-release (e.g. 1.2.3b1) finalize that series: the numeric patch is
// kept, not incremented past it.
func NextVersion(latest string, bump types.Bump) (string, error) {
	switch bump {
	case types.BumpMajor, types.BumpMinor, types.BumpPatch:
	default:
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown bump %q", bump))
	}
	if strings.TrimSpace(latest) == "" {
		switch bump {
		case types.BumpMajor:
			return "v1.0.0", nil
		case types.BumpMinor:
			return "v0.1.0", nil
		default:
			return "v0.0.1", nil
		}
	}
	if !releasePrefixPattern.MatchString(latest) {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("latest tag v%s has unknown format", latest))
	}
	parts := strings.SplitN(latest, ".", 3)
	major, _ := strconv.Atoi(parts[0])
	minor, _ := strconv.Atoi(parts[1])
	switch bump {
	case types.BumpMajor:
		return fmt.Sprintf("v%d.0.0", major+1), nil
	case types.BumpMinor:
		return fmt.Sprintf("v%d.%d.0", major, minor+1), nil
	}
	patch, preRelease := splitPatchSegment(parts[2])
	if preRelease {
		// A pre-release occupies the patch number it announces; the next
		// patch release finalizes it instead of skipping past.
		patch--
	}
	return fmt.Sprintf("v%d.%d.%d", major, minor, patch+1), nil
}

// NextBetaVersion returns the version the manifest is bumped to right after
// a release: the next patch as a first beta (1.2.3 -> 1.2.4b0).
func NextBetaVersion(released string) (string, error) {
	if !releasePrefixPattern.MatchString(released) {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("released version %q has unknown format", released))
	}
	parts := strings.SplitN(released, ".", 3)
	patch, _ := splitPatchSegment(parts[2])
	return fmt.Sprintf("%s.%s.%db0", parts[0], parts[1], patch+1), nil
}

// IsPEP440Version reports whether a version string is PEP 440 compliant.
func IsPEP440Version(version string) bool {
	_, err := pep440.Parse(version)
	return err == nil
}

// splitPatchSegment extracts the numeric patch from a segment that may
// carry a pre-release suffix ("3b1" -> 3, true).
func splitPatchSegment(segment string) (int, bool) {
	end := 0
	for end < len(segment) && segment[end] >= '0' && segment[end] <= '9' {
		end++
	}
	value, _ := strconv.Atoi(segment[:end])
	return value, end < len(segment)
}
