package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"gitlab-devtools/internal/types"
)

// PinResult is the output of one pinning pass: the declaration list with
// pins applied, in the original order, plus the advisories collected along
// the way. Advisories are observations, not errors; the caller decides how
// to surface them.
type PinResult struct {
	Packages   []string
	Advisories []types.Advisory
}

// ParsePins parses a list of desired pin declarations, failing on the first
// malformed entry.
func ParsePins(raw []string) ([]types.Requirement, error) {
	pins := make([]types.Requirement, 0, len(raw))
	for _, entry := range raw {
		pin, err := ParseRequirement(entry)
		if err != nil {
			return nil, err
		}
		pins = append(pins, pin)
	}
	return pins, nil
}

// BuildPinTable keys the desired pins by normalized package name. A key
// appearing twice is a configuration error and is rejected before any
// package is examined.
func BuildPinTable(pins []types.Requirement) (map[string]types.Requirement, error) {
	table := make(map[string]types.Requirement, len(pins))
	for _, pin := range pins {
		if _, exists := table[pin.Key]; exists {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeAlreadyExists).
				WithMsg(fmt.Sprintf("duplicate pin for %q in constraint table", pin.Key))
		}
		table[pin.Key] = pin
	}
	return table, nil
}

// Pin applies the desired pins to an ordered list of dependency
// declarations, preserving order and cardinality. Packages without a
// matching pin pass through verbatim. Any parse failure or irreconcilable
// pin aborts the whole batch; the caller receives no partial result.
func Pin(packages []string, table map[string]types.Requirement) (PinResult, error) {
	result := PinResult{Packages: make([]string, 0, len(packages))}
	for _, raw := range packages {
		req, err := ParseRequirement(raw)
		if err != nil {
			return PinResult{}, err
		}
		desired, found := table[req.Key]
		if !found {
			result.Packages = append(result.Packages, raw)
			result.Advisories = append(result.Advisories, types.Advisory{
				Package: req.Key,
				Reason:  types.AdvisoryNoPin,
				Detail:  "no desired pin for this package",
			})
			continue
		}
		resolved, advisories, changed, err := reconcile(req, desired)
		if err != nil {
			return PinResult{}, err
		}
		result.Advisories = append(result.Advisories, advisories...)
		if changed {
			result.Packages = append(result.Packages, RenderRequirement(resolved))
		} else {
			result.Packages = append(result.Packages, raw)
		}
	}
	return result, nil
}

// reconcile merges one existing declaration with its desired pin. The
// returned requirement is only rendered when changed is true, so untouched
// declarations keep their original spelling.
func reconcile(existing types.Requirement, desired types.Requirement) (types.Requirement, []types.Advisory, bool, error) {
	resolved := existing
	changed := false
	var advisories []types.Advisory

	extras, extrasChanged, err := reconcileExtras(existing, desired)
	if err != nil {
		return types.Requirement{}, nil, false, err
	}
	resolved.Extras = extras
	changed = changed || extrasChanged

	marker, markerChanged, err := reconcileMarker(existing, desired)
	if err != nil {
		return types.Requirement{}, nil, false, err
	}
	resolved.Marker = marker
	changed = changed || markerChanged

	switch {
	case desired.HasURL():
		// URL pins win outright; replacing an existing, different URL is
		// an allowed override, not a conflict.
		if !existing.HasURL() || existing.URL != desired.URL || existing.HasSpecifiers() {
			resolved.URL = desired.URL
			resolved.Specifiers = nil
			changed = true
		}

	case !desired.HasSpecifiers():
		advisories = append(advisories, types.Advisory{
			Package: existing.Key,
			Reason:  types.AdvisoryEmptyPin,
			Detail:  "desired pin carries neither specifiers nor url",
		})

	case existing.HasURL():
		// A direct reference already in place takes precedence over a
		// plain version pin.
		advisories = append(advisories, types.Advisory{
			Package: existing.Key,
			Reason:  types.AdvisoryURLPrecedence,
			Detail:  fmt.Sprintf("existing url reference kept over desired %q", SpecifiersString(desired.Specifiers)),
		})

	case !existing.HasSpecifiers():
		resolved.Specifiers = append([]types.Specifier(nil), desired.Specifiers...)
		changed = true

	default:
		replaced, advisory, err := reconcileSpecifiers(existing, desired)
		if err != nil {
			return types.Requirement{}, nil, false, err
		}
		if advisory != nil {
			advisories = append(advisories, *advisory)
		}
		if replaced {
			resolved.Specifiers = append([]types.Specifier(nil), desired.Specifiers...)
			changed = true
		}
	}
	return resolved, advisories, changed, nil
}

// reconcileSpecifiers decides whether the desired specifier set replaces the
// existing one. A single-equality desired pin is verified precisely against
// the existing restriction; an incompatible result is fatal. Complex desired
// pins (multi-clause or non-equality) are not verified precisely: the
// existing declaration is kept with an advisory, unless the two sets are
// provably disjoint on their numeric bounds.
func reconcileSpecifiers(existing types.Requirement, desired types.Requirement) (bool, *types.Advisory, error) {
	if single, version := singleEquality(desired.Specifiers); single {
		if exSingle, exVersion := singleEquality(existing.Specifiers); exSingle && exVersion == version {
			return false, nil, nil
		}
		ok, err := versionSatisfies(version, existing.Specifiers)
		if err != nil {
			return false, nil, err
		}
		if !ok {
			return false, nil, conflictError(existing.Key, existing, desired)
		}
		return true, nil, nil
	}
	disjoint, err := specifiersDisjoint(existing.Specifiers, desired.Specifiers)
	if err != nil {
		return false, nil, err
	}
	if disjoint {
		return false, nil, conflictError(existing.Key, existing, desired)
	}
	advisory := &types.Advisory{
		Package: existing.Key,
		Reason:  types.AdvisoryComplexPin,
		Detail: fmt.Sprintf("desired pin %q not verified against existing %q",
			SpecifiersString(desired.Specifiers), SpecifiersString(existing.Specifiers)),
	}
	return false, advisory, nil
}

func reconcileExtras(existing types.Requirement, desired types.Requirement) ([]string, bool, error) {
	switch {
	case len(desired.Extras) == 0:
		return existing.Extras, false, nil
	case len(existing.Extras) == 0:
		return append([]string(nil), desired.Extras...), true, nil
	case equalStringSlices(existing.Extras, desired.Extras):
		return existing.Extras, false, nil
	default:
		return nil, false, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("conflicting extras for %q: existing [%s] vs desired [%s]",
				existing.Key, strings.Join(existing.Extras, ","), strings.Join(desired.Extras, ",")))
	}
}

func reconcileMarker(existing types.Requirement, desired types.Requirement) (string, bool, error) {
	switch {
	case desired.Marker == "":
		return existing.Marker, false, nil
	case existing.Marker == "":
		return desired.Marker, true, nil
	case existing.Marker == desired.Marker:
		return existing.Marker, false, nil
	default:
		return "", false, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("conflicting markers for %q: existing %q vs desired %q",
				existing.Key, existing.Marker, desired.Marker))
	}
}

// singleEquality reports whether the specifier set is exactly one "=="
// clause, returning the pinned version.
func singleEquality(specifiers []types.Specifier) (bool, string) {
	if len(specifiers) == 1 && specifiers[0].Op == types.SpecifierOpEq {
		return true, specifiers[0].Version
	}
	return false, ""
}

func equalStringSlices(a []string, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func conflictError(key string, existing types.Requirement, desired types.Requirement) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("incompatible pin for %q: existing %q vs desired %q",
			key, SpecifiersString(existing.Specifiers), SpecifiersString(desired.Specifiers)))
}
