package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".voxline"

// Paths holds resolved filesystem paths for Voxline data.
type Paths struct {
	Base     string // ~/.voxline
	Config   string // ~/.voxline/config.yaml
	Contacts string // ~/.voxline/contacts.json
	Logs     string // ~/.voxline/logs
}

// ResolvePaths computes all standard paths from the home directory.
// If VOXLINE_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("VOXLINE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:     base,
		Config:   filepath.Join(base, "config.yaml"),
		Contacts: filepath.Join(base, "contacts.json"),
		Logs:     filepath.Join(base, "logs"),
	}, nil
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	for _, d := range []string{p.Base, p.Logs} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}
