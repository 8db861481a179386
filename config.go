package holokin

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadBodyParameters reads a YAML parameter file over the defaults, so a
// file only needs to name the knobs it changes.
func LoadBodyParameters(path string) (*BodyParameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading body parameters: %w", err)
	}
	params := DefaultBodyParameters()
	if err := yaml.Unmarshal(data, params); err != nil {
		return nil, fmt.Errorf("parsing body parameters %s: %w", path, err)
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("body parameters %s: %w", path, err)
	}
	return params, nil
}

// ParamsContainer publishes the current BodyParameters to the solve loop.
// The watcher swaps in a fresh pointer; the solver reads a consistent set
// for the whole tick.
type ParamsContainer struct {
	latest atomic.Pointer[BodyParameters]
}

func NewParamsContainer(params *BodyParameters) *ParamsContainer {
	c := &ParamsContainer{}
	c.latest.Store(params)
	return c
}

func (c *ParamsContainer) Update(params *BodyParameters) {
	c.latest.Store(params)
}

func (c *ParamsContainer) Get() *BodyParameters {
	return c.latest.Load()
}

// ParamsWatcher polls a parameter file and republishes it on change. This
// is the dev-time tuning loop; nothing in the runtime contract needs it.
type ParamsWatcher struct {
	path      string
	interval  time.Duration
	container *ParamsContainer
	log       Logger

	lastMod time.Time
	stop    chan struct{}
	done    chan struct{}
}

func NewParamsWatcher(path string, interval time.Duration, container *ParamsContainer, log Logger) *ParamsWatcher {
	if log == nil {
		log = NewNopLogger()
	}
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &ParamsWatcher{
		path:      path,
		interval:  interval,
		container: container,
		log:       log,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (w *ParamsWatcher) Start() {
	go w.run()
}

func (w *ParamsWatcher) Stop() {
	close(w.stop)
	<-w.done
}

func (w *ParamsWatcher) run() {
	defer close(w.done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *ParamsWatcher) poll() {
	info, err := os.Stat(w.path)
	if err != nil {
		w.log.Debugf("params watcher: %v", err)
		return
	}
	if !info.ModTime().After(w.lastMod) {
		return
	}
	w.lastMod = info.ModTime()
	params, err := LoadBodyParameters(w.path)
	if err != nil {
		// Keep the last good parameters; a half-saved file is common
		// while live-editing.
		w.log.Warnf("params watcher: %v", err)
		return
	}
	w.container.Update(params)
	w.log.Infof("params watcher: reloaded %s", w.path)
}
