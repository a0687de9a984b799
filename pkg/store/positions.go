package store

import (
	"context"
	"fmt"

	"github.com/Bubbleman532/turing-sandbox/pkg/diagram"
)

// SavePositions replaces the stored position table of the named diagram.
func (s *Store) SavePositions(ctx context.Context, name string, table diagram.PositionTable) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM positions WHERE diagram = ?`, name); err != nil {
		return fmt.Errorf("failed to clear positions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO positions (diagram, label, x, y, px, py, fixed, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := s.now().Unix()
	for label, p := range table {
		fixed := 0
		if p.Fixed {
			fixed = 1
		}
		if _, err := stmt.ExecContext(ctx, name, label, p.X, p.Y, p.PX, p.PY, fixed, now); err != nil {
			return fmt.Errorf("failed to insert position %q: %w", label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit positions: %w", err)
	}
	return nil
}

// LoadPositions returns the stored table of the named diagram. A diagram
// never saved yields an empty table.
func (s *Store) LoadPositions(ctx context.Context, name string) (diagram.PositionTable, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT label, x, y, px, py, fixed FROM positions WHERE diagram = ?
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	table := diagram.PositionTable{}
	for rows.Next() {
		var (
			label string
			p     diagram.PositionEntry
			fixed int
		)
		if err := rows.Scan(&label, &p.X, &p.Y, &p.PX, &p.PY, &fixed); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		p.Fixed = fixed != 0
		table[label] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}
	return table, nil
}

// Diagrams lists the names with stored positions.
func (s *Store) Diagrams(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT diagram FROM positions ORDER BY diagram`)
	if err != nil {
		return nil, fmt.Errorf("failed to query diagrams: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan diagram: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeletePositions forgets the named diagram.
func (s *Store) DeletePositions(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM positions WHERE diagram = ?`, name); err != nil {
		return fmt.Errorf("failed to delete positions: %w", err)
	}
	return nil
}
