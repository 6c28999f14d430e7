package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/derrell/LearnCS-sub002/internal/config"
)

// settle is the quiet period after the last change before a rerun.
const settle = 100 * time.Millisecond

// runWatch runs filename, then runs it again every time it is saved.
// It watches the directory so that saves by rename are seen.
func runWatch(filename string, run *config.Run, stepping bool) int {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer w.Close()

	target, err := filepath.Abs(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	code := runFile(filename, run, stepping)
	fmt.Fprintf(os.Stderr, "[exit %d] watching %s\n", code, filename)

	var timer <-chan time.Time
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return code
			}
			if !isChange(ev, target) {
				continue
			}
			timer = time.After(settle)

		case err, ok := <-w.Errors:
			if !ok {
				return code
			}
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)

		case <-timer:
			timer = nil
			fmt.Fprintf(os.Stderr, "--- %s changed\n", filename)
			code = runFile(filename, run, stepping)
			fmt.Fprintf(os.Stderr, "[exit %d] watching %s\n", code, filename)
		}
	}
}

// isChange reports whether ev writes or replaces the file at target.
func isChange(ev fsnotify.Event, target string) bool {
	name, err := filepath.Abs(ev.Name)
	if err != nil || name != target {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
