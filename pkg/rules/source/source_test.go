package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"lexhaven/gavel/pkg/docket"
	"lexhaven/gavel/pkg/rules/ast"
)

const goodRules = `
rules:
  - name: "Mandatory settlement conference"
    court: nd-cal
    citation: "L.R. 16-8"
    priority: 100
    status: Active
    triggers: [case_filed]
    conditions:
      type: field_equals
      field: case_type
      value: civil
    actions:
      - type: generate_deadline
        title: "Settlement conference statement due"
        days: 120
        counting_mode: calendar
  - name: "Chambers copy notice"
    court: nd-cal
    citation: "L.R. 5-1(e)"
    priority: 200
    triggers: [document_filed]
    actions:
      - type: notify
        recipient: chambers
        message: "deliver chambers copy within one business day"
`

func TestFileSource_LoadDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "nd-cal.yaml"), []byte(goodRules), 0o644); err != nil {
		t.Fatal(err)
	}
	// Broken files are skipped, not fatal.
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("rules: [{name: x}]"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Non-YAML files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# rules"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource(dir, nil)
	rules, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(rules))
	}
	if rules[0].Citation != "L.R. 16-8" || rules[0].Status != ast.StatusActive {
		t.Errorf("first rule = %+v", rules[0])
	}
	if !rules[1].Matches(docket.TriggerDocumentFiled) {
		t.Error("second rule should subscribe to document_filed")
	}
}

func TestFileSource_MissingPath(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "nope"), nil)
	if _, err := src.Load(context.Background()); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestFileSource_WatchFiresOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(path, []byte(goodRules), 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource(dir, nil, WithDebounce(10*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- src.Watch(ctx, func() error {
			select {
			case changed <- struct{}{}:
			default:
			}
			return nil
		})
	}()

	// Give the watcher a moment to register, then touch the file.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte(goodRules), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not fire on file change")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestMemorySource(t *testing.T) {
	rule := &ast.Rule{
		ID:       uuid.New(),
		Name:     "test rule",
		Status:   ast.StatusActive,
		Triggers: []docket.Trigger{docket.TriggerCaseFiled},
		Actions:  []ast.Action{{Type: ast.ActionWarn, Message: "hi"}},
	}
	src := NewMemorySource(rule)

	rules, err := src.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != 1 || rules[0].Name != "test rule" {
		t.Fatalf("rules = %+v", rules)
	}

	src.Add(&ast.Rule{ID: uuid.New(), Name: "second"})
	rules, _ = src.Load(context.Background())
	if len(rules) != 2 {
		t.Fatalf("got %d rules after Add, want 2", len(rules))
	}

	src.Replace(nil)
	rules, _ = src.Load(context.Background())
	if len(rules) != 0 {
		t.Fatalf("got %d rules after Replace(nil), want 0", len(rules))
	}
}
