// Package watch recompiles a grammar and reparses input files whenever any
// of them changes on disk.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/peg/grammar"
	"github.com/dhamidi/peg/parse"
	"github.com/dhamidi/peg/source"
)

var log = commonlog.GetLogger("peg.watch")

// Result reports the outcome of one reload.
type Result struct {
	// Path is the file that was compiled or parsed.
	Path     string
	Tree     *parse.Tree
	Err      error
	Duration time.Duration
}

// OnResult is called for every grammar compile and every input parse.
type OnResult func(Result)

// Watcher owns the compiled grammar and the set of watched files.
type Watcher struct {
	grammarPath string
	inputs      []string
	opts        []parse.Option
	onResult    OnResult

	mu      sync.Mutex
	grammar *grammar.Grammar
}

// New returns a watcher for the grammar at grammarPath and the given inputs.
// opts are passed to every parse.
func New(grammarPath string, inputs []string, onResult OnResult, opts ...parse.Option) *Watcher {
	clean := make([]string, len(inputs))
	for i, in := range inputs {
		clean[i] = filepath.Clean(in)
	}
	return &Watcher{
		grammarPath: filepath.Clean(grammarPath),
		inputs:      clean,
		opts:        opts,
		onResult:    onResult,
	}
}

// Run compiles the grammar, parses every input once and then reacts to file
// events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := w.getWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	w.Handle(w.grammarPath)

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			log.Debugf("file event: %s", evt)
			w.Handle(evt.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warningf("watch: %v", err)
		}
	}
}

// getWatcher watches the directories holding the files. Handle filters the
// events by name.
func (w *Watcher) getWatcher() (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dirs := make(map[string]bool)
	for _, path := range append([]string{w.grammarPath}, w.inputs...) {
		dir := filepath.Dir(path)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		log.Debugf("watching %s", dir)
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, err
		}
	}
	return watcher, nil
}

// Handle processes a change to path. A grammar change recompiles the grammar
// and reparses every input; an input change reparses that input. Other paths
// are ignored.
func (w *Watcher) Handle(path string) {
	path = filepath.Clean(path)
	if path == w.grammarPath {
		if w.compile() {
			for _, in := range w.inputs {
				w.parse(in)
			}
		}
		return
	}
	for _, in := range w.inputs {
		if in == path {
			w.parse(in)
			return
		}
	}
}

// compile reports whether a grammar is available afterwards. A grammar that
// fails to compile leaves the previous one in place.
func (w *Watcher) compile() bool {
	t0 := time.Now()
	file, err := source.ReadFile(w.grammarPath)
	var g *grammar.Grammar
	if err == nil {
		g, err = grammar.CompileFile(file)
	}
	w.onResult(Result{Path: w.grammarPath, Err: err, Duration: time.Since(t0)})

	w.mu.Lock()
	defer w.mu.Unlock()
	if err == nil {
		w.grammar = g
	}
	return w.grammar != nil
}

func (w *Watcher) parse(path string) {
	w.mu.Lock()
	g := w.grammar
	w.mu.Unlock()
	if g == nil {
		return
	}

	t0 := time.Now()
	text, err := os.ReadFile(path)
	if err != nil {
		w.onResult(Result{Path: path, Err: err, Duration: time.Since(t0)})
		return
	}
	tree, err := parse.ParseFile(g, source.NewFile(path, text), w.opts...)
	w.onResult(Result{Path: path, Tree: tree, Err: err, Duration: time.Since(t0)})
}
