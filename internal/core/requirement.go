package core

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"gitlab-devtools/internal/shared"
	"gitlab-devtools/internal/types"
)

// opTokens is the ordered list of specifier operators tried during parsing.
// Longer tokens must precede shorter ones to avoid false matches
// (e.g. ">=" before ">").
var opTokens = []types.SpecifierOp{
	types.SpecifierOpGte,
	types.SpecifierOpLte,
	types.SpecifierOpCompat,
	types.SpecifierOpNe,
	types.SpecifierOpEq,
	types.SpecifierOpGt,
	types.SpecifierOpLt,
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9])?$`)

// ParseRequirement splits a raw dependency declaration into its structured
// form. The grammar is
//
//	name[extras] <specifiers> [; marker]
//	name[extras] @ url [; marker]
//
// where specifiers is a comma-separated list of operator+version clauses.
func ParseRequirement(raw string) (types.Requirement, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return types.Requirement{}, parseError(raw, "empty declaration")
	}
	req := types.Requirement{Raw: raw}

	body := text
	if idx := strings.Index(body, ";"); idx >= 0 {
		req.Marker = strings.TrimSpace(body[idx+1:])
		body = strings.TrimSpace(body[:idx])
		if req.Marker == "" {
			return types.Requirement{}, parseError(raw, "empty marker after ';'")
		}
	}

	var rest string
	if idx := strings.IndexAny(body, "[@<>=!~ "); idx >= 0 {
		req.Name = body[:idx]
		rest = strings.TrimSpace(body[idx:])
	} else {
		req.Name = body
	}
	if !namePattern.MatchString(req.Name) {
		return types.Requirement{}, parseError(raw, "invalid package name")
	}
	req.Key = shared.NormalizePackageName(req.Name)

	if strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end < 0 {
			return types.Requirement{}, parseError(raw, "unterminated extras list")
		}
		extras, err := parseExtras(rest[1:end])
		if err != nil {
			return types.Requirement{}, parseError(raw, err.Error())
		}
		req.Extras = extras
		rest = strings.TrimSpace(rest[end+1:])
	}

	if strings.HasPrefix(rest, "@") {
		req.URL = strings.TrimSpace(rest[1:])
		if req.URL == "" {
			return types.Requirement{}, parseError(raw, "empty url after '@'")
		}
		return req, nil
	}

	if rest != "" {
		specifiers, err := parseSpecifiers(rest)
		if err != nil {
			return types.Requirement{}, parseError(raw, err.Error())
		}
		req.Specifiers = specifiers
	}
	return req, nil
}

func parseExtras(list string) ([]string, error) {
	var extras []string
	for _, part := range strings.Split(list, ",") {
		extra := strings.TrimSpace(part)
		if extra == "" {
			return nil, fmt.Errorf("empty extra name")
		}
		extras = append(extras, shared.NormalizePackageName(extra))
	}
	sort.Strings(extras)
	return extras, nil
}

func parseSpecifiers(list string) ([]types.Specifier, error) {
	var specifiers []types.Specifier
	for _, part := range strings.Split(list, ",") {
		clause := strings.TrimSpace(part)
		if clause == "" {
			return nil, fmt.Errorf("empty specifier clause")
		}
		spec, err := parseSpecifierClause(clause)
		if err != nil {
			return nil, err
		}
		specifiers = append(specifiers, spec)
	}
	return specifiers, nil
}

func parseSpecifierClause(clause string) (types.Specifier, error) {
	for _, op := range opTokens {
		if strings.HasPrefix(clause, string(op)) {
			version := strings.TrimSpace(strings.TrimPrefix(clause, string(op)))
			if version == "" {
				return types.Specifier{}, fmt.Errorf("missing version after %q", op)
			}
			if strings.ContainsAny(version, " \t") {
				return types.Specifier{}, fmt.Errorf("invalid version %q", version)
			}
			return types.Specifier{Op: op, Version: version}, nil
		}
	}
	return types.Specifier{}, fmt.Errorf("missing comparison operator in %q", clause)
}

// RenderRequirement produces the canonical text of a declaration:
// name[extras]<specifiers>; marker, or name[extras]@ url; marker.
func RenderRequirement(req types.Requirement) string {
	var b strings.Builder
	b.WriteString(req.Name)
	if len(req.Extras) > 0 {
		b.WriteString("[")
		b.WriteString(strings.Join(req.Extras, ","))
		b.WriteString("]")
	}
	switch {
	case req.HasURL():
		b.WriteString("@ ")
		b.WriteString(req.URL)
	case req.HasSpecifiers():
		clauses := make([]string, 0, len(req.Specifiers))
		for _, spec := range req.Specifiers {
			clauses = append(clauses, string(spec.Op)+spec.Version)
		}
		b.WriteString(strings.Join(clauses, ","))
	}
	if req.Marker != "" {
		b.WriteString("; ")
		b.WriteString(req.Marker)
	}
	return b.String()
}

// SpecifiersString renders a specifier list alone, e.g. "==1.2.3" or
// ">=1.0,<2.0".
func SpecifiersString(specifiers []types.Specifier) string {
	clauses := make([]string, 0, len(specifiers))
	for _, spec := range specifiers {
		clauses = append(clauses, string(spec.Op)+spec.Version)
	}
	return strings.Join(clauses, ",")
}

func parseError(raw string, reason string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("invalid dependency declaration %q: %s", strings.TrimSpace(raw), reason))
}
