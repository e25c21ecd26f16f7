package domain

import (
	"path/filepath"
	"strings"
)

// PackPrefix marks a dependency specifier whose target must be packed before install.
const PackPrefix = "file+pack:"

// SectionKind selects one of the manifest's dependency sections.
type SectionKind int

const (
	// SectionRuntime is the "dependencies" section.
	SectionRuntime SectionKind = iota
	// SectionDev is the "devDependencies" section.
	SectionDev
)

// Key returns the manifest key of the native section.
func (k SectionKind) Key() string {
	if k == SectionDev {
		return "devDependencies"
	}
	return "dependencies"
}

// PackKey returns the manifest key of the dedicated section holding plain paths to pack.
func (k SectionKind) PackKey() string {
	if k == SectionDev {
		return "filepackDevDependencies"
	}
	return "filepackDependencies"
}

func (k SectionKind) String() string {
	return k.Key()
}

// Sections returns the sections resolved for a run. Production runs skip dev dependencies.
func Sections(production bool) []SectionKind {
	if production {
		return []SectionKind{SectionRuntime}
	}
	return []SectionKind{SectionRuntime, SectionDev}
}

// Dependency is a dependency that has to be packed: its name and the path to its project.
type Dependency struct {
	Name string
	Path string
}

// ResolveDir returns the dependency's project directory relative to the referencing project.
func (d Dependency) ResolveDir(baseDir string) string {
	p := filepath.FromSlash(d.Path)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(baseDir, p)
}

// ParseSpecifier reports whether spec is marked for packing and returns the path after the prefix.
func ParseSpecifier(spec string) (string, bool) {
	return strings.CutPrefix(spec, PackPrefix)
}
