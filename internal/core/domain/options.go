package domain

import "strings"

// Options configures a single install run. It is built once and never mutated.
type Options struct {
	// ProjectDir is the absolute path of the top-level project.
	ProjectDir string
	// Production skips dev dependencies and passes --production to the top-level install.
	Production bool
	// Output shows the top-level install output on the terminal.
	Output bool
	// NestedOutput shows the output of installs and packs run for dependencies.
	NestedOutput bool
	// Jobs bounds how many sibling dependencies are packed concurrently.
	Jobs int
	// PackageManager is the binary used for install and pack.
	PackageManager string
	// InstallArgs are appended to the top-level install command.
	InstallArgs []string
}

// Settings holds configuration gathered from the project file, the environment and flags.
// Unset fields leave the lower-precedence value in place when merged.
type Settings struct {
	PackageManager string
	Production     *bool
	NestedOutput   *bool
	Jobs           int
	InstallArgs    []string
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		PackageManager: DefaultPackageManager,
		Production:     new(bool),
		NestedOutput:   new(bool),
		Jobs:           1,
	}
}

// Merge returns s with every field set in over replacing its value.
func (s Settings) Merge(over Settings) Settings {
	if over.PackageManager != "" {
		s.PackageManager = over.PackageManager
	}
	if over.Production != nil {
		s.Production = over.Production
	}
	if over.NestedOutput != nil {
		s.NestedOutput = over.NestedOutput
	}
	if over.Jobs > 0 {
		s.Jobs = over.Jobs
	}
	if len(over.InstallArgs) > 0 {
		s.InstallArgs = over.InstallArgs
	}
	return s
}

// InstallRequest describes one install invocation.
type InstallRequest struct {
	PackageManager string
	Dir            string
	Production     bool
	Args           []string
}

// PackRequest describes one pack invocation.
type PackRequest struct {
	PackageManager string
	Dir            string
}

// Command is a process to run in a directory.
type Command struct {
	Name string
	Args []string
	Dir  string
}

// String returns the command line as typed in a shell.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}
