package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Credentials represents ~/.hostelctl/credentials.yaml.
type Credentials struct {
	URL   string `yaml:"url,omitempty"`
	Token string `yaml:"token,omitempty"`
	Email string `yaml:"email,omitempty"`
}

// ConfigDir returns the path to ~/.hostelctl/.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".hostelctl")
}

// CredentialsPath returns the path to ~/.hostelctl/credentials.yaml.
func CredentialsPath() string {
	return filepath.Join(ConfigDir(), "credentials.yaml")
}

// LoadCredentials reads the credentials file. A missing file yields empty credentials.
func LoadCredentials() (*Credentials, error) {
	data, err := os.ReadFile(CredentialsPath())
	if errors.Is(err, fs.ErrNotExist) {
		return &Credentials{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var c Credentials
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return &c, nil
}

// SaveCredentials writes the credentials file readable only by the owner.
func SaveCredentials(c *Credentials) error {
	if err := os.MkdirAll(ConfigDir(), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	return os.WriteFile(CredentialsPath(), data, 0o600)
}
