package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

type OutputMethod int

const (
	OutputMethodOverwrite OutputMethod = iota
	OutputMethodNewFile

	OutputMethod_Size
)

func (method OutputMethod) String() string {
	switch method {
	case OutputMethodNewFile:
		return "new-file"
	case OutputMethodOverwrite:
		return "overwrite"
	}
	return "invalid-output-method"
}

func ParseOutputMethod(s string) (OutputMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "new-file", "new file", "newfile", "":
		return OutputMethodNewFile, nil
	case "overwrite":
		return OutputMethodOverwrite, nil
	}
	return 0, fmt.Errorf("unknown output method %q", s)
}

func (method OutputMethod) MarshalText() ([]byte, error) {
	if method < 0 || method >= OutputMethod_Size {
		return nil, fmt.Errorf("unknown output method %d", int(method))
	}
	return []byte(method.String()), nil
}

func (method *OutputMethod) UnmarshalText(text []byte) error {
	m, err := ParseOutputMethod(string(text))
	if err != nil {
		return err
	}
	*method = m
	return nil
}

// FileStore writes finished GIFs to Filename. With OutputMethodNewFile an
// existing file is never replaced; a numbered sibling is created instead.
type FileStore struct {
	Filename string
	Method   OutputMethod
	Logger   zerolog.Logger
}

func (s *FileStore) nextFilename() (string, error) {
	filename := s.Filename
	if s.Method != OutputMethodNewFile {
		return filename, nil
	}
	_, err := os.Stat(filename)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		return filename, nil
	}

	next, _, err := NextLatestIncrementedFilename(filename)
	return next, err
}

// Save writes data and returns the path it was written to.
func (s *FileStore) Save(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.Filename == "" {
		return "", errors.New("store: no output filename")
	}

	filename, err := s.nextFilename()
	if err != nil {
		return "", fmt.Errorf("store: pick output filename: %w", err)
	}
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("store: %w", err)
		}
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("store: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return "", fmt.Errorf("store: write %v: %w", filename, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("store: close %v: %w", filename, err)
	}

	s.Logger.Info().Str("file", filename).Int("bytes", len(data)).Msg("saved gif")
	return filename, nil
}
