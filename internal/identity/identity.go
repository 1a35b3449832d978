package identity

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LoadOrCreate returns the stable per-install device identifier, generating
// and persisting one on first use. The identifier is the user's only
// identity; deleting the file orphans them from any trip they were part of.
func LoadOrCreate(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err == nil {
		id := strings.TrimSpace(string(raw))
		if _, parseErr := uuid.Parse(id); parseErr == nil {
			return id, nil
		}
		// Corrupt file - fall through and regenerate.
	} else if !os.IsNotExist(err) {
		return "", err
	}

	id := uuid.NewString()

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", err
	}

	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", err
	}

	return id, nil
}
