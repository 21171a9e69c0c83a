package file

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
)

// EnvFileName is the dotenv file read from the working directory and the
// studyhall home directory.
const EnvFileName = ".env"

// LoadEnv loads STUDYHALL_* overrides from .env files into the process
// environment. The working directory is read first, then configDir. Variables
// already set in the environment are never overwritten, so the shell wins
// over the working directory, which wins over configDir.
//
// Missing files are not an error.
func LoadEnv(configDir string) ([]string, error) {
	candidates := []string{EnvFileName}
	if configDir != "" {
		candidates = append(candidates, filepath.Join(configDir, EnvFileName))
	}

	var loaded []string
	for _, path := range candidates {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, fmt.Errorf("load %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}
