package types

// PinProfile is a constraint profile: an ordered collection of desired
// dependency declarations applied to package manifests during a release or a
// standalone pin update. Pins are declaration strings in the same grammar as
// manifest dependency entries.
type PinProfile struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Pins        []string `yaml:"pins"`
}
