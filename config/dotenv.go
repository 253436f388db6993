package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadDotEnv reads a .env file from the working directory, then from the
// directory of the executable. A missing file is not an error: variables may
// come from the real environment. Variables already set are never overridden.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	ex, exErr := os.Executable()
	if exErr != nil {
		return nil
	}

	path := filepath.Join(filepath.Dir(ex), ".env")
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
