package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/thenoetrevino/lanes/internal/models"
)

// ============================================================================
// Ticket Operations
// ============================================================================

const ticketColumns = `id, project_id, title, description, status, priority,
	assignee_id, source, source_url, position, created_at, updated_at`

// sqlTx implements Tx on top of *sql.Tx
type sqlTx struct {
	tx      *sql.Tx
	dialect *dialect
	// prepared update statements keyed by SET clause, reused across a batch
	stmts map[string]*sql.Stmt
}

func newSQLTx(tx *sql.Tx, d *dialect) *sqlTx {
	return &sqlTx{tx: tx, dialect: d, stmts: make(map[string]*sql.Stmt)}
}

func (t *sqlTx) close() {
	for _, stmt := range t.stmts {
		if err := stmt.Close(); err != nil {
			slog.Error("failed to close statement", "error", err)
		}
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	var status, priority string
	var createdAt, updatedAt int64
	if err := row.Scan(
		&ticket.ID, &ticket.ProjectID, &ticket.Title, &ticket.Description,
		&status, &priority, &ticket.AssigneeID, &ticket.Source, &ticket.SourceURL,
		&ticket.Position, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	ticket.Status = models.Status(status)
	ticket.Priority = models.Priority(priority)
	ticket.CreatedAt = fromUnixNano(createdAt)
	ticket.UpdatedAt = fromUnixNano(updatedAt)
	return ticket, nil
}

// FindMany retrieves every ticket matching filter in the requested order
func (t *sqlTx) FindMany(ctx context.Context, filter TicketFilter, order ...OrderBy) ([]*models.Ticket, error) {
	where, args := filter.where()
	query := "SELECT " + ticketColumns + " FROM tickets" + where + orderClause(order) + filter.limitClause()

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}

// FindOne retrieves the first matching ticket. Asking for the first ticket of a
// column ordered by position descending yields the column maximum.
func (t *sqlTx) FindOne(ctx context.Context, filter TicketFilter, order ...OrderBy) (*models.Ticket, error) {
	filter.Limit = 1
	filter.Offset = 0
	tickets, err := t.FindMany(ctx, filter, order...)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, ErrNotFound
	}
	return tickets[0], nil
}

// Count returns the number of matching tickets, ignoring Limit and Offset
func (t *sqlTx) Count(ctx context.Context, filter TicketFilter) (int, error) {
	where, args := filter.where()
	var count int
	if err := t.tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM tickets"+where, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Insert stores a new ticket. Timestamps are taken from the ticket as given.
func (t *sqlTx) Insert(ctx context.Context, ticket *models.Ticket) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO tickets (`+ticketColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ticket.ID, ticket.ProjectID, ticket.Title, ticket.Description,
		string(ticket.Status), string(ticket.Priority), ticket.AssigneeID,
		ticket.Source, ticket.SourceURL, ticket.Position,
		toUnixNano(ticket.CreatedAt), toUnixNano(ticket.UpdatedAt),
	)
	return err
}

// setClause renders the SET part of an update and its arguments
func (f TicketFields) setClause() (string, []any) {
	var sets []string
	var args []any

	if f.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*f.Status))
	}
	if f.Position != nil {
		sets = append(sets, "position = ?")
		args = append(args, *f.Position)
	}
	if f.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *f.Title)
	}
	if f.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *f.Description)
	}
	if f.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, string(*f.Priority))
	}
	if f.AssigneeID != nil {
		sets = append(sets, "assignee_id = ?")
		args = append(args, *f.AssigneeID)
	}
	if f.UpdatedAt != nil {
		sets = append(sets, "updated_at = ?")
		args = append(args, toUnixNano(*f.UpdatedAt))
	}

	return strings.Join(sets, ", "), args
}

// UpdateMany applies a batch of field updates. A row that no longer exists
// fails the batch with ErrNotFound so the caller's transaction rolls back.
func (t *sqlTx) UpdateMany(ctx context.Context, updates []TicketUpdate) error {
	for _, u := range updates {
		set, args := u.Fields.setClause()
		if set == "" {
			continue
		}

		stmt, ok := t.stmts[set]
		if !ok {
			var err error
			stmt, err = t.tx.PrepareContext(ctx, "UPDATE tickets SET "+set+" WHERE id = ?")
			if err != nil {
				return err
			}
			t.stmts[set] = stmt
		}

		result, err := stmt.ExecContext(ctx, append(args, u.ID)...)
		if err != nil {
			return fmt.Errorf("failed to update ticket %s: %w", u.ID, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("ticket %s: %w", u.ID, ErrNotFound)
		}
	}
	return nil
}

// Delete removes a ticket, ErrNotFound if it did not exist
func (t *sqlTx) Delete(ctx context.Context, id string) error {
	result, err := t.tx.ExecContext(ctx, "DELETE FROM tickets WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(result)
}
