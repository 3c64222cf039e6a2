package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lexhaven/gavel/pkg/rules/ast"
	"lexhaven/gavel/pkg/rules/parser"
)

// RuleStore exposes the local_rules table as a rule source
// (rules/source.Source). Rule rows keep the original YAML document so
// the parser stays the single decoder: what loads is exactly what was
// validated at save time.
type RuleStore struct {
	store *Store
}

// Rules returns the store's local-rule source view.
func (s *Store) Rules() *RuleStore {
	return &RuleStore{store: s}
}

// Save validates and persists every rule in one YAML document. Each
// rule gets its own row keyed by rule ID; re-saving a document with an
// existing ID replaces that rule.
func (r *RuleStore) Save(ctx context.Context, document []byte) ([]*ast.Rule, error) {
	rules, err := parser.ParseRuleFile(document, "db")
	if err != nil {
		return nil, err
	}

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, rule := range rules {
		err := execContext(ctx, tx, `
			INSERT INTO local_rules (id, court, name, citation, priority, status, document, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				court = excluded.court,
				name = excluded.name,
				citation = excluded.citation,
				priority = excluded.priority,
				status = excluded.status,
				document = excluded.document,
				updated_at = excluded.updated_at`,
			rule.ID.String(), rule.Court, rule.Name, rule.Citation,
			rule.Priority, string(rule.Status), string(document), now)
		if err != nil {
			return nil, fmt.Errorf("save rule %s: %w", rule.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return rules, nil
}

// SetStatus changes a rule's administrative status without reparsing
// its document. Superseding or repealing a rule removes it from
// future snapshots while keeping its history queryable.
func (r *RuleStore) SetStatus(ctx context.Context, id uuid.UUID, status ast.RuleStatus) error {
	res, err := r.store.db.ExecContext(ctx,
		`UPDATE local_rules SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().Unix(), id.String())
	if err != nil {
		return fmt.Errorf("set rule status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no rule with id %s", id)
	}
	return nil
}

// Load implements source.Source: it reparses every stored document and
// returns the rules matching their stored status. Documents that no
// longer parse are skipped with a warning rather than failing the load.
func (r *RuleStore) Load(ctx context.Context) ([]*ast.Rule, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT id, name, status, document FROM local_rules ORDER BY priority, citation`)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	defer rows.Close()

	var out []*ast.Rule
	for rows.Next() {
		var id, name, status, document string
		if err := rows.Scan(&id, &name, &status, &document); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rowID, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("rule id %q: %w", id, err)
		}
		parsed, err := parser.ParseRuleFile([]byte(document), "db:"+id)
		if err != nil {
			r.store.logger.Warn("skipping unparseable stored rule", "rule_id", id, "error", err)
			continue
		}
		// A document may hold several rules; each row loads only its
		// own, matched by name, with identity and status taken from the
		// row. Parse-time random IDs never leak out.
		for _, rule := range parsed {
			if rule.Name != name {
				continue
			}
			rule.ID = rowID
			rule.Status = ast.RuleStatus(status)
			out = append(out, rule)
			break
		}
	}
	return out, rows.Err()
}
