package cli

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the application directory name under BaseDir.
	AppName = "splittyping"
	// DefaultBaseDir is the base configuration directory name
	DefaultBaseDir = ".splittyping"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"
)

// Paths provides access to the application directory structure
type Paths struct {
	// HomeDir is the user's home directory
	HomeDir string
}

// NewPaths creates a new Paths rooted at the user's home directory
func NewPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{HomeDir: home}, nil
}

// BaseDir returns the base directory (~/.splittyping)
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// ConfigFile returns the config file path (~/.splittyping/config.yaml)
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.BaseDir(), DefaultConfigFile)
}

// StateDir returns the chat state directory (~/.splittyping/state)
func (p *Paths) StateDir() string {
	return filepath.Join(p.BaseDir(), "state")
}

// EnsureBaseDir creates the base directory if it doesn't exist
func (p *Paths) EnsureBaseDir() error {
	return os.MkdirAll(p.BaseDir(), 0755)
}

// EnsureStateDir creates the state directory if it doesn't exist
func (p *Paths) EnsureStateDir() error {
	return os.MkdirAll(p.StateDir(), 0755)
}
