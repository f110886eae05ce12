package lensing

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ShaderReload carries the new contents of a watched shader file.
type ShaderReload struct {
	Path   string
	Source string
	Err    error
}

// ShaderWatcher reports edits to a single shader file. The parent directory
// is watched so editors that save by rename are seen too. Only the newest
// pending reload is kept.
type ShaderWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	reloads chan ShaderReload
	done    chan struct{}
	log     Logger
}

func WatchShader(path string, log Logger) (*ShaderWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	sw := &ShaderWatcher{
		path:    abs,
		watcher: w,
		reloads: make(chan ShaderReload, 1),
		done:    make(chan struct{}),
		log:     log,
	}
	go sw.loop()
	return sw, nil
}

func (sw *ShaderWatcher) Path() string { return sw.path }

func (sw *ShaderWatcher) loop() {
	for {
		select {
		case <-sw.done:
			return
		case ev, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != sw.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			src, err := os.ReadFile(sw.path)
			sw.publish(ShaderReload{Path: sw.path, Source: string(src), Err: err})
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.log.Warnf("shader watcher: %v", err)
		}
	}
}

// publish replaces any reload the main thread has not picked up yet.
func (sw *ShaderWatcher) publish(r ShaderReload) {
	for {
		select {
		case sw.reloads <- r:
			return
		default:
		}
		select {
		case <-sw.reloads:
		default:
		}
	}
}

// Poll returns the pending reload, if any, without blocking.
func (sw *ShaderWatcher) Poll() (ShaderReload, bool) {
	select {
	case r := <-sw.reloads:
		return r, true
	default:
		return ShaderReload{}, false
	}
}

func (sw *ShaderWatcher) Reloads() <-chan ShaderReload { return sw.reloads }

func (sw *ShaderWatcher) Close() error {
	select {
	case <-sw.done:
		return nil
	default:
	}
	close(sw.done)
	return sw.watcher.Close()
}
