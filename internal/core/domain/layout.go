package domain

import "os"

const (
	// ManifestFileName is the package manifest read and rewritten in each project.
	ManifestFileName = "package.json"

	// BackupFileName holds the original manifest bytes while a rewrite is in progress.
	BackupFileName = "package.filepack_backup.json"

	// ModulesDirName is the directory the package manager installs into.
	ModulesDirName = "node_modules"

	// ConfigFileName is the optional per-project configuration file.
	ConfigFileName = "filepack.yaml"

	// ArchiveExt is the extension of archives produced by pack.
	ArchiveExt = ".tgz"

	// PrepackScript is the lifecycle script that triggers a nested install before pack.
	PrepackScript = "prepack"

	// DefaultPackageManager is the package manager binary used when none is configured.
	DefaultPackageManager = "npm"
)

const (
	// DirPerm is the default permission for directories.
	DirPerm os.FileMode = 0o750

	// FilePerm is the default permission for files written by filepack.
	FilePerm os.FileMode = 0o644
)
