package domain

import "go.trai.ch/zerr"

var (
	// ErrManifestRead is returned when a package manifest cannot be read or is not valid JSON.
	ErrManifestRead = zerr.New("failed to read package manifest")

	// ErrManifestInvalid is returned when a packed dependency's manifest lacks a name or version.
	ErrManifestInvalid = zerr.New("package manifest is missing name or version")

	// ErrManifestWrite is returned when a mutated manifest or its backup cannot be written.
	ErrManifestWrite = zerr.New("failed to write package manifest")

	// ErrManifestRestore is returned when the original manifest could not be put back in place.
	// The backup file is left on disk and can be recovered with the restore command.
	ErrManifestRestore = zerr.New("failed to restore package manifest")

	// ErrStaleBackup is returned when a backup from an interrupted run differs from the current manifest.
	ErrStaleBackup = zerr.New("manifest backup from an interrupted run found")

	// ErrTransactionInProgress is returned when a manifest is already held open by the current run.
	ErrTransactionInProgress = zerr.New("manifest is already being rewritten")

	// ErrSubprocessFailed is returned when a package manager subprocess exits unsuccessfully.
	ErrSubprocessFailed = zerr.New("subprocess failed")

	// ErrInstallFailed is returned when the package manager install step fails.
	ErrInstallFailed = zerr.New("install failed")

	// ErrPackFailed is returned when the package manager pack step fails.
	ErrPackFailed = zerr.New("pack failed")

	// ErrArchiveNotFound is returned when pack succeeded but the expected archive is missing.
	ErrArchiveNotFound = zerr.New("packed archive not found")

	// ErrInvalidSpecifier is returned when a marked dependency has an empty path.
	ErrInvalidSpecifier = zerr.New("invalid file+pack specifier")

	// ErrDependencyCycle is returned when packing a dependency requires packing itself.
	ErrDependencyCycle = zerr.New("dependency cycle detected")

	// ErrNoBackup is returned by restore when no manifest backup exists.
	ErrNoBackup = zerr.New("no manifest backup found")

	// ErrConfigRead is returned when the project configuration file cannot be read.
	ErrConfigRead = zerr.New("failed to read configuration file")

	// ErrConfigParse is returned when the project configuration file is malformed.
	ErrConfigParse = zerr.New("failed to parse configuration file")
)
