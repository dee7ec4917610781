// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package config

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reloads a Manager whenever its configuration file is written. Bursts of writes are
// coalesced into one reload after the debounce delay.
type Watcher struct {
	manager  *Manager
	path     string
	onChange func(Config)

	watcher       *fsnotify.Watcher
	debounceDelay time.Duration
	logger        zerolog.Logger

	mu            sync.Mutex
	debounceTimer *time.Timer
}

// NewWatcher watches path and reloads m on change. onChange runs on a timer goroutine after
// every successful reload.
func NewWatcher(m *Manager, path string, onChange func(Config), logger zerolog.Logger) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("config watcher: no file to watch")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		manager:       m,
		path:          path,
		onChange:      onChange,
		watcher:       watcher,
		debounceDelay: 100 * time.Millisecond,
		logger:        logger.With().Str("component", "config.watcher").Logger(),
	}, nil
}

// Start blocks until ctx is done or the watcher is closed.
func (w *Watcher) Start(ctx context.Context) error {
	// fsnotify loses the file across editor rename-and-replace saves, so watch the directory.
	dir := filepath.Dir(w.path)
	file := filepath.Base(w.path)

	if err := w.watcher.Add(dir); err != nil {
		w.logger.Error().Err(err).Str("dir", dir).Msg("Failed to watch config directory")
		return err
	}
	w.logger.Debug().Str("file", w.path).Dur("debounce", w.debounceDelay).Msg("Watching config file")

	defer func() {
		w.stopTimer()
		if err := w.watcher.Close(); err != nil {
			w.logger.Warn().Err(err).Msg("Error closing watcher")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != file {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.logger.Trace().Str("op", ev.Op.String()).Msg("Config file changed")
				w.scheduleReload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("File watcher error")
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, w.reload)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
}

func (w *Watcher) reload() {
	cfg, err := w.manager.Reload()
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to reload config, keeping previous")
		return
	}
	w.logger.Info().Str("log_level", cfg.Log.Level).Msg("Config reloaded")
	if w.onChange != nil {
		w.onChange(cfg)
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
