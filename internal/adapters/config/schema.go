package config

// Projectfile represents the structure of the filepack.yaml configuration file.
type Projectfile struct {
	Version        string   `yaml:"version"`
	PackageManager string   `yaml:"packageManager"`
	Production     *bool    `yaml:"production"`
	NestedOutput   *bool    `yaml:"nestedOutput"`
	Jobs           int      `yaml:"jobs"`
	InstallArgs    []string `yaml:"installArgs"`
}
