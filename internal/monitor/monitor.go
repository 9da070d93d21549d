package monitor

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Monitor re-runs the conversion whenever the input directory changes
type Monitor struct {
	dir   string
	delay time.Duration
	run   func()
	log   logrus.FieldLogger

	watcher *fsnotify.Watcher
	timer   *time.Timer
	timerMu sync.Mutex
	runMu   sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a new monitor instance. run is invoked once the
// directory has been quiet for delay after a change.
func New(dir string, delay time.Duration, run func(), log logrus.FieldLogger) *Monitor {
	return &Monitor{
		dir:    dir,
		delay:  delay,
		run:    run,
		log:    log.WithField("component", "monitor"),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins watching the input directory
func (m *Monitor) Start() error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", m.dir, err)
	}

	var err error
	m.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := m.watcher.Add(m.dir); err != nil {
		m.watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", m.dir, err)
	}

	go m.watchFiles()

	m.log.WithField("dir", m.dir).Info("Watching input directory")
	return nil
}

// RunNow runs the conversion immediately. Runs never overlap.
func (m *Monitor) RunNow() {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			m.log.WithField("panic", r).Error("Conversion run failed unexpectedly")
		}
	}()
	m.run()
}

func (m *Monitor) watchFiles() {
	defer close(m.doneCh)

	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0 {
				m.log.WithFields(logrus.Fields{
					"file": event.Name,
					"op":   event.Op.String(),
				}).Debug("Input changed")
				m.schedule()
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.log.WithError(err).Warn("File watcher error")

		case <-m.stopCh:
			return
		}
	}
}

// schedule debounces bursts of events into a single run
func (m *Monitor) schedule() {
	m.timerMu.Lock()
	defer m.timerMu.Unlock()

	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.delay, m.RunNow)
}

// Stop stops monitoring and waits for the watch loop to exit
func (m *Monitor) Stop() {
	close(m.stopCh)

	m.timerMu.Lock()
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timerMu.Unlock()

	if m.watcher != nil {
		m.watcher.Close()
		<-m.doneCh
	}
}
