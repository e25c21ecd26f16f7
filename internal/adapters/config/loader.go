// Package config provides the project configuration loader.
package config

import (
	"bytes"
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/filepack/internal/core/domain"
	"go.trai.ch/filepack/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const supportedVersion = "1"

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader by reading filepack.yaml from the project directory.
type Loader struct {
	logger ports.Logger
}

// NewLoader creates a new Loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads <dir>/filepack.yaml. A missing file yields empty settings.
func (l *Loader) Load(dir string) (domain.Settings, error) {
	path := filepath.Join(dir, domain.ConfigFileName)

	data, err := os.ReadFile(path) //nolint:gosec // path is derived from the project directory
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			l.logger.Debug("no " + domain.ConfigFileName + " in " + dir)
			return domain.Settings{}, nil
		}
		return domain.Settings{}, zerr.With(errors.Join(domain.ErrConfigRead, err), "path", path)
	}

	pf, err := parse(data)
	if err != nil {
		return domain.Settings{}, zerr.With(errors.Join(domain.ErrConfigParse, err), "path", path)
	}

	if pf.Version != "" && pf.Version != supportedVersion {
		l.logger.Warn("unknown " + domain.ConfigFileName + " version " + pf.Version + ", reading it as version " + supportedVersion)
	}

	l.logger.Debug("loaded " + path)
	return pf.settings(), nil
}

func parse(data []byte) (*Projectfile, error) {
	var pf Projectfile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil && !errors.Is(err, io.EOF) {
		return nil, zerr.Wrap(err, "invalid yaml")
	}

	if pf.Jobs < 0 {
		return nil, zerr.With(zerr.New("jobs must not be negative"), "jobs", pf.Jobs)
	}
	if strings.ContainsAny(pf.PackageManager, " \t\n") {
		return nil, zerr.With(zerr.New("packageManager must be a single executable name"), "packageManager", pf.PackageManager)
	}

	return &pf, nil
}

func (pf *Projectfile) settings() domain.Settings {
	return domain.Settings{
		PackageManager: pf.PackageManager,
		Production:     pf.Production,
		NestedOutput:   pf.NestedOutput,
		Jobs:           pf.Jobs,
		InstallArgs:    pf.InstallArgs,
	}
}
