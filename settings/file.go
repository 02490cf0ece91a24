package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// DefaultPath returns the settings file next to the executable, or in the
// working directory if the executable path is unknown.
func DefaultPath() string {
	filename := filepath.Join(DefaultSettingsFile)
	binPath, err := os.Executable()
	if err == nil {
		binDir := filepath.Dir(binPath)
		filename = filepath.Join(binDir, DefaultSettingsFile)
	}
	return filename
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Decode reads settings from data on top of base. JSON is used for .json
// paths and TOML for everything else.
func Decode(path string, data []byte, base Settings) (Settings, error) {
	s := base
	var err error
	if isJSON(path) {
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		err = decoder.Decode(&s)
	} else {
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		err = decoder.Decode(&s)
	}
	if err != nil {
		return base, fmt.Errorf("settings: parse %v: %w", path, err)
	}
	return s, nil
}

// Load reads path on top of base. A missing file is not an error; base is
// returned unchanged with found=false.
func Load(path string, base Settings) (s Settings, found bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return base, false, nil
		}
		return base, false, err
	}
	s, err = Decode(path, data, base)
	return s, err == nil, err
}

func Save(path string, s Settings) error {
	var data []byte
	var err error
	if isJSON(path) {
		data, err = json.MarshalIndent(s, "", "  ")
	} else {
		data, err = toml.Marshal(s)
	}
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}
