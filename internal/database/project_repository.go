package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/thenoetrevino/lanes/internal/models"
)

// ============================================================================
// Project Operations
// ============================================================================

const projectColumns = `id, project_key, name, description, created_at, updated_at`

// CreateProject inserts a project with caller supplied id and timestamps.
// A key already taken by another project yields ErrDuplicateKey.
func (s *Store) CreateProject(ctx context.Context, project *models.Project) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (`+projectColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		project.ID, project.Key, project.Name, project.Description,
		toUnixNano(project.CreatedAt), toUnixNano(project.UpdatedAt),
	)
	return s.dialect.mapWriteError(err)
}

// GetProject retrieves a project by id, ErrNotFound if missing
func (s *Store) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return scanProject(s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
}

// ListProjects returns all projects, newest first
func (s *Store) ListProjects(ctx context.Context) ([]*models.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+projectColumns+`
		 FROM projects
		 ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	return projects, rows.Err()
}

// DeleteProject removes a project and its tickets
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return s.WithTx(ctx, func(tx Tx) error {
		return tx.DeleteProject(ctx, id)
	})
}

// GetProject looks a project up inside the transaction
func (t *sqlTx) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return scanProject(t.tx.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
}

// UpdateProject rewrites the descriptive fields of an existing project
func (t *sqlTx) UpdateProject(ctx context.Context, project *models.Project) error {
	result, err := t.tx.ExecContext(ctx,
		`UPDATE projects SET project_key = ?, name = ?, description = ?, updated_at = ? WHERE id = ?`,
		project.Key, project.Name, project.Description, toUnixNano(project.UpdatedAt), project.ID,
	)
	if err != nil {
		return t.dialect.mapWriteError(err)
	}
	return requireRow(result)
}

// DeleteProject removes a project together with its tickets
func (t *sqlTx) DeleteProject(ctx context.Context, id string) error {
	// Cascade explicitly so the result does not depend on foreign key enforcement
	if _, err := t.tx.ExecContext(ctx, "DELETE FROM tickets WHERE project_id = ?", id); err != nil {
		return err
	}
	result, err := t.tx.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// requireRow turns an update or delete that matched nothing into ErrNotFound
func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProject(row rowScanner) (*models.Project, error) {
	project := &models.Project{}
	var createdAt, updatedAt int64
	err := row.Scan(&project.ID, &project.Key, &project.Name, &project.Description, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	project.CreatedAt = fromUnixNano(createdAt)
	project.UpdatedAt = fromUnixNano(updatedAt)
	return project, nil
}
