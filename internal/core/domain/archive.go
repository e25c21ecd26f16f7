package domain

import (
	"path/filepath"
	"strings"
)

// ArchiveFileName returns the file name pack produces for a package:
// "@scope/pkg" at "1.0.0" becomes "scope-pkg-1.0.0.tgz".
func ArchiveFileName(name, version string) string {
	if rest, scoped := strings.CutPrefix(name, "@"); scoped {
		name = strings.ReplaceAll(rest, "/", "-")
	}
	return name + "-" + version + ArchiveExt
}

// ArchiveSpecifier returns the manifest specifier that points a project at an archive.
// The path is relative to projectDir, slash separated and always starts with ".".
func ArchiveSpecifier(projectDir, archivePath string) string {
	rel, err := filepath.Rel(projectDir, archivePath)
	if err != nil {
		return filepath.ToSlash(archivePath)
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || strings.HasPrefix(rel, "./") || strings.HasPrefix(rel, "../") {
		return rel
	}
	return "./" + rel
}
