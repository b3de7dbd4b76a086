package types

import "github.com/daml-lf/bridge/lf/version"

// Module is a Daml-LF module: a dotted name plus the data definitions
// (records, variants, enums, templates) it declares, keyed by unqualified
// name for O(1) lookup during decode and translation.
type Module struct {
	Path []string
	Data map[string]*Data
	// DataOrder records the declaration order of Data's keys, so visitors
	// can traverse a module deterministically in decode order rather than
	// Go's randomized map iteration order.
	DataOrder []string
}

// Name renders the module's dotted path, e.g. "Main.Asset".
func (m *Module) Name() string {
	return joinDots(m.Path)
}

// Package is a single decoded dalf payload: its language version, id, an
// optional human-readable name/version pair from its metadata, and the
// modules it declares, keyed by dotted module path.
type Package struct {
	ID              string
	Name            string
	Version         string
	LanguageVersion version.Version
	Modules         map[string]*Module
	// ModuleOrder records the declaration order of Modules's keys.
	ModuleOrder []string
}

// Archive is the full decoded contents of a dar file: the main package plus
// its package dependencies, keyed by package id. Archive is the unit the
// bridge server swaps atomically on reload.
type Archive struct {
	Name          string
	MainPackageID string
	Packages      map[string]*Package
	// PackageOrder records the declaration order of Packages's keys (main
	// package followed by dependencies in dar manifest order).
	PackageOrder []string
}

// Main returns the archive's main package.
func (a *Archive) Main() *Package {
	return a.Packages[a.MainPackageID]
}

// FindTemplate resolves a template by package id, module path and entity
// name, returning its owning Data definition. Returns nil if not found or
// if the found Data is not a template.
func (a *Archive) FindTemplate(packageID string, modulePath []string, entity string) *Data {
	pkg, ok := a.Packages[packageID]
	if !ok {
		return nil
	}
	mod, ok := pkg.Modules[joinDots(modulePath)]
	if !ok {
		return nil
	}
	d, ok := mod.Data[entity]
	if !ok || d.Kind != DataTemplate {
		return nil
	}
	return d
}
