// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces the burst of write events editors emit when
// saving a file.
const debounceWindow = 250 * time.Millisecond

// Watcher reloads the config file on change and delivers the new
// configuration to a callback. Invalid intermediate states are logged
// and skipped; the last valid configuration stays in effect.
type Watcher struct {
	path    string
	fs      *fsnotify.Watcher
	onApply func(*Config)
	done    chan struct{}
}

// Watch starts watching path. onApply is called from the watcher
// goroutine with each successfully reloaded configuration.
func Watch(path string, onApply func(*Config)) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory, not the file: editors that rename-replace
	// would otherwise detach the watch.
	if err := fs.Add(filepath.Dir(path)); err != nil {
		fs.Close()
		return nil, err
	}

	w := &Watcher{path: path, fs: fs, onApply: onApply, done: make(chan struct{})}
	go w.loop()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			return

		case ev, okCh := <-w.fs.Events:
			if !okCh {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerC = timer.C
			} else {
				timer.Reset(debounceWindow)
			}

		case err, okCh := <-w.fs.Errors:
			if !okCh {
				return
			}
			log.Printf("CONFIG | watcher error: %v", err)

		case <-timerC:
			timer = nil
			timerC = nil
			cfg, err := LoadPath(w.path)
			if err != nil {
				log.Printf("CONFIG | reload skipped: %v", err)
				continue
			}
			log.Printf("CONFIG | reloaded from %s", w.path)
			w.onApply(cfg)
		}
	}
}
