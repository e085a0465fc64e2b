package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"petcare-inventory-api/internal/guard"

	"gopkg.in/yaml.v3"
)

const sessionFileName = ".invctl.yaml"

const defaultBaseURL = "http://localhost:8080"

// session is the on-disk login state.
type session struct {
	BaseURL    string `yaml:"base_url"`
	Token      string `yaml:"token"`
	CachedRole string `yaml:"cached_role,omitempty"`
}

func (s session) guardSession() guard.Session {
	return guard.Session{Token: s.Token, CachedRole: s.CachedRole}
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return sessionFileName
	}
	return filepath.Join(home, sessionFileName)
}

// loadSession reads path. A missing file is an empty session.
func loadSession(path string) (session, error) {
	var s session

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		s.BaseURL = defaultBaseURL
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("reading session: %w", err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing session %s: %w", path, err)
	}
	if s.BaseURL == "" {
		s.BaseURL = defaultBaseURL
	}
	return s, nil
}

func saveSession(path string, s session) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}
