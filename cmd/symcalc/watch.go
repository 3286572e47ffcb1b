package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle is how long to wait after a change before reading the file, so that
// a burst of writes from one save is evaluated once.
const settle = 50 * time.Millisecond

// watchFile evaluates the expressions in name, then evaluates them again each
// time the file is written. It returns only on a watcher error.
func watchFile(c *calc, name string, nl bool, jobs int, w io.Writer) error {
	name = filepath.Clean(name)
	wt, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer wt.Close()
	// Watch the directory to see new files renamed over name.
	if err := wt.Add(filepath.Dir(name)); err != nil {
		return err
	}
	evalFile(c, name, nl, jobs, w)
	var timer <-chan time.Time
	for {
		select {
		case ev, ok := <-wt.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != name {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				timer = time.After(settle)
			}
		case err, ok := <-wt.Errors:
			if !ok {
				return nil
			}
			return err
		case <-timer:
			timer = nil
			fmt.Fprintln(w, "---")
			evalFile(c, name, nl, jobs, w)
		}
	}
}

func evalFile(c *calc, name string, nl bool, jobs int, w io.Writer) {
	f, err := os.Open(name)
	if err != nil {
		log.Print(err)
		return
	}
	defer f.Close()
	srcs, err := readExprs(f, nl)
	if err != nil {
		log.Print(err)
		return
	}
	c.run(w, srcs, jobs)
}
