package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv reads KEY=value pairs from the given files (".env" when none are
// named) into the process environment. Variables already set win, and missing
// files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			var pathErr *os.PathError
			if !errors.As(err, &pathErr) {
				return err
			}
		}
	}
	return nil
}
