package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const envSearchDepth = 6

// LoadEnvFile loads the nearest .env from the working directory or one of
// its parents. Variables already set in the environment win. It returns the
// path that was loaded, or "" when there is none.
func LoadEnvFile() (string, error) {
	path, err := findEnvFile()
	if err != nil || path == "" {
		return "", err
	}
	if err := godotenv.Load(path); err != nil {
		return "", err
	}
	return path, nil
}

func findEnvFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for i := 0; i < envSearchDepth; i++ {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil
}
