package bridge

import (
	"strings"

	"github.com/daml-lf/bridge/lf/types"
	"github.com/daml-lf/bridge/lferrors"
)

// resolved is the outcome of resolving a JSON template identifier: the
// owning package id, the Template Data definition, and its canonical
// "package_id:module:entity" string used in response encoding.
type resolved struct {
	PackageID string
	ModPath   []string
	Data      *types.Data
}

// canonicalID renders the resolved template as "package_id:module:entity".
func (r resolved) canonicalID() string {
	return r.PackageID + ":" + strings.Join(r.ModPath, ".") + ":" + r.Data.Name
}

// parseTemplateID splits a JSON template identifier into its optional
// package id, module path and entity name, accepting both
// "module:entity" and "package_id:module:entity" forms.
func parseTemplateID(raw string) (packageID string, modulePath []string, entity string, err error) {
	parts := strings.Split(raw, ":")
	switch len(parts) {
	case 2:
		return "", strings.Split(parts[0], "."), parts[1], nil
	case 3:
		return parts[0], strings.Split(parts[1], "."), parts[2], nil
	default:
		return "", nil, "", lferrors.Errorf(lferrors.KindTranslation, "malformed template id %q", raw)
	}
}

// resolveTemplate implements the template-id resolution algorithm of
// spec.md §4.D: a package-qualified id is looked up directly; an
// unqualified id is resolved by scanning every package for a unique
// (module path, entity) match.
func resolveTemplate(archive *types.Archive, raw string) (resolved, error) {
	packageID, modulePath, entity, err := parseTemplateID(raw)
	if err != nil {
		return resolved{}, err
	}

	if packageID != "" {
		pkg, ok := archive.Packages[packageID]
		if !ok {
			return resolved{}, lferrors.Errorf(lferrors.KindTranslation, "unknown template id: %s", raw)
		}
		d := archive.FindTemplate(packageID, modulePath, entity)
		if d == nil {
			if mod, ok := pkg.Modules[strings.Join(modulePath, ".")]; ok {
				if other, ok := mod.Data[entity]; ok && other.Kind != types.DataTemplate {
					return resolved{}, lferrors.Errorf(lferrors.KindTranslation, "not a template: %s", raw)
				}
			}
			return resolved{}, lferrors.Errorf(lferrors.KindTranslation, "unknown template id: %s", raw)
		}
		return resolved{PackageID: packageID, ModPath: modulePath, Data: d}, nil
	}

	var matches []resolved
	for _, pkgID := range archive.PackageOrder {
		pkg := archive.Packages[pkgID]
		mod, ok := pkg.Modules[strings.Join(modulePath, ".")]
		if !ok {
			continue
		}
		d, ok := mod.Data[entity]
		if !ok {
			continue
		}
		if d.Kind != types.DataTemplate {
			return resolved{}, lferrors.Errorf(lferrors.KindTranslation, "not a template: %s", raw)
		}
		matches = append(matches, resolved{PackageID: pkgID, ModPath: modulePath, Data: d})
	}

	switch len(matches) {
	case 0:
		return resolved{}, lferrors.Errorf(lferrors.KindTranslation, "unknown template id: %s", raw)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.PackageID
		}
		return resolved{}, lferrors.Errorf(lferrors.KindTranslation, "multiple matching templates for %s: %s", raw, strings.Join(ids, ", "))
	}
}

// findChoice looks up a named choice on a resolved template.
func findChoice(d *types.Data, name string) (*types.Choice, error) {
	for i := range d.Template.Choices {
		if d.Template.Choices[i].Name == name {
			return &d.Template.Choices[i], nil
		}
	}
	return nil, lferrors.Errorf(lferrors.KindTranslation, "unknown choice %q on template %s", name, d.Name)
}
