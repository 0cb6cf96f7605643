package core

import (
	"fmt"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/pelletier/go-toml/v2"

	"gitlab-devtools/internal/types"
)

// Manifest is a parsed pyproject-style package manifest. The document is
// kept as a generic tree so fields the tool does not understand survive a
// round trip.
type Manifest struct {
	data map[string]interface{}
}

// ParseManifest decodes manifest TOML text.
func ParseManifest(contents []byte) (*Manifest, error) {
	data := map[string]interface{}{}
	if err := toml.Unmarshal(contents, &data); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse manifest toml").
			WithCause(err)
	}
	return &Manifest{data: data}, nil
}

// Render serializes the manifest back to TOML text.
func (m *Manifest) Render() ([]byte, error) {
	out, err := toml.Marshal(m.data)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to serialize manifest toml").
			WithCause(err)
	}
	return out, nil
}

// Version returns project.version, or "" when absent.
func (m *Manifest) Version() string {
	project, ok := m.project()
	if !ok {
		return ""
	}
	version, _ := project["version"].(string)
	return version
}

// SetVersion sets project.version. Returns false when the manifest has no
// project table.
func (m *Manifest) SetVersion(version string) bool {
	project, ok := m.project()
	if !ok {
		return false
	}
	project["version"] = version
	return true
}

// Dependencies returns the unconditional dependency declarations.
func (m *Manifest) Dependencies() []string {
	project, ok := m.project()
	if !ok {
		return nil
	}
	return stringList(project["dependencies"])
}

// OptionalDependencyGroups returns the names of the grouped-optional
// dependency lists in sorted order.
func (m *Manifest) OptionalDependencyGroups() []string {
	groups, ok := m.optionalDependencies()
	if !ok {
		return nil
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OptionalDependencies returns the declarations of one optional group.
func (m *Manifest) OptionalDependencies(group string) []string {
	groups, ok := m.optionalDependencies()
	if !ok {
		return nil
	}
	return stringList(groups[group])
}

// PinDependencies runs the pinner over the unconditional dependency list
// and every optional group, sharing one pin table. Advisories from all
// groups are merged; the first conflict or parse failure aborts with no
// partial modification of the manifest.
func (m *Manifest) PinDependencies(table map[string]types.Requirement) ([]types.Advisory, error) {
	project, ok := m.project()
	if !ok {
		return nil, nil
	}
	var advisories []types.Advisory

	mainResult, err := Pin(stringList(project["dependencies"]), table)
	if err != nil {
		return nil, err
	}
	advisories = append(advisories, mainResult.Advisories...)

	groups, hasOptional := m.optionalDependencies()
	pinnedGroups := map[string][]string{}
	if hasOptional {
		for _, name := range m.OptionalDependencyGroups() {
			groupResult, err := Pin(stringList(groups[name]), table)
			if err != nil {
				return nil, err
			}
			advisories = append(advisories, groupResult.Advisories...)
			pinnedGroups[name] = groupResult.Packages
		}
	}

	// All groups pinned cleanly; write everything back.
	if _, present := project["dependencies"]; present {
		project["dependencies"] = toInterfaceList(mainResult.Packages)
	}
	for name, packages := range pinnedGroups {
		groups[name] = toInterfaceList(packages)
	}
	return advisories, nil
}

// RewriteDocumentationURL repoints project.urls.documentation for the given
// version (or back to the default branch when version is empty). Reports
// whether a rewrite happened.
func (m *Manifest) RewriteDocumentationURL(version string, defaultBranch string) bool {
	project, ok := m.project()
	if !ok {
		return false
	}
	urls, ok := project["urls"].(map[string]interface{})
	if !ok {
		return false
	}
	doc, ok := urls["documentation"].(string)
	if !ok {
		return false
	}
	rewritten, changed := RewriteBranchLink(doc, version, defaultBranch)
	if changed {
		urls["documentation"] = rewritten
	}
	return changed
}

func (m *Manifest) project() (map[string]interface{}, bool) {
	project, ok := m.data["project"].(map[string]interface{})
	return project, ok
}

func (m *Manifest) optionalDependencies() (map[string]interface{}, bool) {
	project, ok := m.project()
	if !ok {
		return nil, false
	}
	groups, ok := project["optional-dependencies"].(map[string]interface{})
	return groups, ok
}

func stringList(value interface{}) []string {
	items, ok := value.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, fmt.Sprint(item))
	}
	return out
}

func toInterfaceList(values []string) []interface{} {
	out := make([]interface{}, 0, len(values))
	for _, value := range values {
		out = append(out, value)
	}
	return out
}
