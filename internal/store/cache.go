package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/skeinworks/skein/internal/ir"
	"github.com/skeinworks/skein/internal/render"
)

// ConfigFingerprint computes the cache key component for a renderer
// configuration. Only canonically marshalable option values participate;
// configurations differing in any recognized option never collide.
func ConfigFingerprint(cfg render.Config) (string, error) {
	obj := make(ir.Object, len(cfg))
	for key, value := range cfg {
		converted, err := ir.FromGo(value)
		if err != nil {
			return "", fmt.Errorf("config option %q: %w", key, err)
		}
		obj[key] = converted
	}
	return ir.Fingerprint(ir.DomainConfig, obj)
}

// PutDocuments stores a rendered document set. Re-inserting an identical
// set is a no-op; the unique index makes writes idempotent.
func (s *Store) PutDocuments(ctx context.Context, workflowHash, renderer, configHash string, docs map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put documents: %w", err)
	}
	defer tx.Rollback()

	seq := 0
	for name, body := range docs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO documents (id, workflow_hash, renderer, config_hash, name, body, created_seq)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(workflow_hash, renderer, config_hash, name) DO NOTHING
		`,
			uuid.NewString(), workflowHash, renderer, configHash, name, body, seq,
		)
		if err != nil {
			return fmt.Errorf("put document %q: %w", name, err)
		}
		seq++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put documents: %w", err)
	}
	return nil
}

// GetDocuments loads a cached document set, or (nil, nil) on a miss.
// A set is a hit only when it contains the root document.
func (s *Store) GetDocuments(ctx context.Context, workflowHash, renderer, configHash string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, body FROM documents
		WHERE workflow_hash = ? AND renderer = ? AND config_hash = ?
		ORDER BY created_seq, name
	`, workflowHash, renderer, configHash)
	if err != nil {
		return nil, fmt.Errorf("get documents: %w", err)
	}
	defer rows.Close()

	docs := make(map[string]string)
	for rows.Next() {
		var name, body string
		if err := rows.Scan(&name, &body); err != nil {
			return nil, fmt.Errorf("get documents: %w", err)
		}
		docs[name] = body
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get documents: %w", err)
	}

	if _, ok := docs[render.RootKey]; !ok {
		return nil, nil
	}
	return docs, nil
}

// Evict removes every cached rendering of the given workflow.
func (s *Store) Evict(ctx context.Context, workflowHash string) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE workflow_hash = ?", workflowHash)
	if err != nil {
		return 0, fmt.Errorf("evict %s: %w", workflowHash, err)
	}
	affected, err := result.RowsAffected()
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("evict %s: %w", workflowHash, err)
	}
	return affected, nil
}
