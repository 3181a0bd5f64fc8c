package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

const pepperLength = 32 // bytes of entropy in a generated pepper

var (
	// Pepper is dynamically loaded from a file or generated at runtime.
	pepperMu   sync.Mutex
	pepper     string
	pepperFile string
)

// SetPepperPath sets the file the pepper is read from, or written to when
// it does not exist yet.
func SetPepperPath(file string) {
	pepperFile = file
}

// GetPepper returns the process pepper, loading it on first use. A pepper
// that cannot be loaded or created is fatal.
func GetPepper() string {
	pepperMu.Lock()
	defer pepperMu.Unlock()

	if pepper != "" {
		return pepper
	}

	var err error
	pepper, err = loadOrGeneratePepper()
	if err != nil {
		slog.Error("failed to load or generate pepper", slog.Any("err", err))
		os.Exit(1)
	}

	return pepper
}

// loadOrGeneratePepper loads the pepper from a file or generates one if not found.
func loadOrGeneratePepper() (string, error) {
	pepperFile = filepath.Clean(pepperFile)
	pepperDir := filepath.Dir(pepperFile)
	if err := os.MkdirAll(pepperDir, 0750); err != nil {
		return "", err
	}

	if _, err := os.Stat(pepperFile); os.IsNotExist(err) {
		// Generate a new pepper and save it to the file
		pepperBytes := make([]byte, pepperLength)
		if _, err := rand.Read(pepperBytes); err != nil {
			return "", err
		}
		pepper := base64.RawURLEncoding.EncodeToString(pepperBytes)

		// Write the pepper to the file
		if err := os.WriteFile(pepperFile, []byte(pepper), 0600); err != nil {
			return "", err
		}
		return pepper, nil
	}

	// Load existing pepper from file
	pepperBytes, err := os.ReadFile(pepperFile)
	if err != nil {
		return "", err
	}

	return string(pepperBytes), nil
}
