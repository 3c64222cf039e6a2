package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"lexhaven/gavel/pkg/rules/ast"
	"lexhaven/gavel/pkg/rules/parser"
)

// FileSource loads local rules from YAML files on disk. The path may
// be a single file or a directory, in which case every .yaml/.yml file
// under it is loaded. Invalid files are skipped with a warning rather
// than failing the whole load: one court's broken edit must not
// blank every court's rules.
type FileSource struct {
	path     string
	logger   *slog.Logger
	debounce time.Duration
}

// FileOption configures a FileSource.
type FileOption func(*FileSource)

// WithDebounce sets the quiet period after a file event before
// onChange fires. Editors emit bursts of writes; default 100ms.
func WithDebounce(d time.Duration) FileOption {
	return func(s *FileSource) { s.debounce = d }
}

// NewFileSource creates a file-backed rule source.
func NewFileSource(path string, logger *slog.Logger, opts ...FileOption) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	s := &FileSource{
		path:     path,
		logger:   logger.With("component", "rule_source"),
		debounce: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads and parses all rule files under the configured path.
func (s *FileSource) Load(ctx context.Context) ([]*ast.Rule, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("stat rule path %q: %w", s.path, err)
	}

	var rules []*ast.Rule
	if !info.IsDir() {
		rules, err = s.loadFile(s.path)
		if err != nil {
			return nil, err
		}
	} else {
		err = filepath.Walk(s.path, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() || !ruleFile(path) {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			loaded, err := s.loadFile(path)
			if err != nil {
				s.logger.Warn("skipping invalid rule file", "path", path, "error", err)
				return nil
			}
			rules = append(rules, loaded...)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk rule directory %q: %w", s.path, err)
		}
	}

	s.logger.Info("loaded local rules", "path", s.path, "rule_count", len(rules))
	return rules, nil
}

func (s *FileSource) loadFile(path string) ([]*ast.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file %q: %w", path, err)
	}
	rules, err := parser.ParseRuleFile(data, path)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("loaded rule file", "path", path, "rule_count", len(rules))
	return rules, nil
}

// Watch blocks watching the rule path, invoking onChange after each
// debounced batch of file events. It returns when ctx is cancelled.
func (s *FileSource) Watch(ctx context.Context, onChange func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create rule watcher: %w", err)
	}
	defer watcher.Close()

	if err := s.addPaths(watcher); err != nil {
		return err
	}

	s.logger.Info("rule file watcher started", "path", s.path, "debounce_ms", s.debounce.Milliseconds())

	var mu sync.Mutex
	var timer *time.Timer
	fire := func(name, op string) {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(s.debounce, func() {
			s.logger.Info("rule files changed, reloading", "path", name, "op", op)
			if err := onChange(); err != nil {
				s.logger.Error("rule reload failed", "error", err)
			}
		})
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("rule file watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("rule watcher events channel closed")
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod || !ruleFile(event.Name) {
				continue
			}
			fire(event.Name, event.Op.String())

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("rule watcher errors channel closed")
			}
			// Keep watching.
			s.logger.Error("rule watcher error", "error", err)
		}
	}
}

// addPaths registers the rule path with the watcher; for a directory,
// every subdirectory is registered so new files are seen.
func (s *FileSource) addPaths(watcher *fsnotify.Watcher) error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("stat rule path %q: %w", s.path, err)
	}
	if !info.IsDir() {
		return watcher.Add(s.path)
	}
	return filepath.Walk(s.path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if strings.HasPrefix(filepath.Base(path), ".") && path != s.path {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch directory %q: %w", path, err)
		}
		return nil
	})
}

func ruleFile(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
