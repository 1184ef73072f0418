package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
)

// ReadFile parses a key=value config file. Blank lines and # comments are
// skipped and surrounding quotes are stripped. Keys are lower-cased.
// A missing file yields an empty map.
func ReadFile(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return map[string]string{}, nil
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	ret := make(map[string]string, len(values))
	for key, value := range values {
		ret[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return ret, nil
}
