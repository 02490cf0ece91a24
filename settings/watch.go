package settings

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watch calls fn with freshly loaded settings every time path is written,
// until ctx is done. The directory is watched so editors that replace the
// file are noticed too.
func Watch(ctx context.Context, path string, base Settings, log zerolog.Logger, fn func(Settings, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		target := filepath.Clean(path)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				log.Info().Str("file", path).Msg("settings changed")
				s, _, err := Load(path, base)
				if err == nil {
					err = s.Validate()
				}
				fn(s, err)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("settings watcher")
			}
		}
	}()
	return nil
}
