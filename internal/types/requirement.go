package types

// SpecifierOp is a PEP 440 version comparison operator as it appears in a
// dependency declaration.
type SpecifierOp string

const (
	SpecifierOpEq     SpecifierOp = "=="
	SpecifierOpNe     SpecifierOp = "!="
	SpecifierOpCompat SpecifierOp = "~="
	SpecifierOpGte    SpecifierOp = ">="
	SpecifierOpLte    SpecifierOp = "<="
	SpecifierOpGt     SpecifierOp = ">"
	SpecifierOpLt     SpecifierOp = "<"
)

// Specifier is a single operator+version clause constraining the acceptable
// versions of a dependency.
type Specifier struct {
	Op      SpecifierOp
	Version string
}

// Requirement is one parsed dependency declaration. A declaration carries
// either Specifiers or a URL, never both. Raw preserves the original text so
// untouched declarations can be passed through verbatim.
type Requirement struct {
	Name       string
	Key        string
	Extras     []string
	Specifiers []Specifier
	Marker     string
	URL        string
	Raw        string
}

// HasSpecifiers reports whether the declaration constrains versions.
func (r Requirement) HasSpecifiers() bool {
	return len(r.Specifiers) > 0
}

// HasURL reports whether the declaration is a direct-reference form.
func (r Requirement) HasURL() bool {
	return r.URL != ""
}

// AdvisoryReason classifies a non-fatal observation made while pinning.
type AdvisoryReason string

const (
	AdvisoryNoPin         AdvisoryReason = "no-pin"
	AdvisoryComplexPin    AdvisoryReason = "complex-pin"
	AdvisoryURLPrecedence AdvisoryReason = "url-precedence"
	AdvisoryEmptyPin      AdvisoryReason = "empty-pin"
)

// Advisory records a package the pinner looked at but intentionally left
// alone, together with the reason.
type Advisory struct {
	Package string
	Reason  AdvisoryReason
	Detail  string
}
