package ticket

import (
	"context"
	"strings"

	"github.com/thenoetrevino/lanes/internal/database"
	"github.com/thenoetrevino/lanes/internal/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SortOrder is the direction of a listing
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListTicketsRequest filters and pages tickets. Pointer fields are optional.
type ListTicketsRequest struct {
	ProjectID  string // Optional: "" lists every project
	Status     *models.Status
	Priority   *models.Priority
	AssigneeID *string
	Search     string

	SortBy database.SortField // Optional: "" means created_at
	Order  SortOrder          // Optional: "" means desc

	Page     int // 1-based, 0 means 1
	PageSize int // 0 means DefaultPageSize
}

// TicketPage is one page of a listing
type TicketPage struct {
	Items    []*models.Ticket
	Total    int
	Page     int
	PageSize int
}

// HasMore reports whether a later page exists
func (p *TicketPage) HasMore() bool {
	return p.Page*p.PageSize < p.Total
}

// Board maps each status to its tickets in column order
type Board map[models.Status][]*models.Ticket

// ListTickets returns one page of tickets matching the request
func (s *service) ListTickets(ctx context.Context, req ListTicketsRequest) (*TicketPage, error) {
	req, err := normalizeList(req)
	if err != nil {
		return nil, err
	}

	filter := database.TicketFilter{
		Status:     req.Status,
		Priority:   req.Priority,
		AssigneeID: req.AssigneeID,
		Limit:      req.PageSize,
		Offset:     (req.Page - 1) * req.PageSize,
	}
	if req.ProjectID != "" {
		filter.ProjectID = &req.ProjectID
	}
	if search := strings.TrimSpace(req.Search); search != "" {
		filter.Search = &search
	}

	order := []database.OrderBy{{Field: req.SortBy, Desc: req.Order == SortDesc}}
	if req.SortBy == database.SortPosition {
		// Keep the in-column tie-break when listing by position
		order = append(order, database.OrderBy{Field: database.SortCreatedAt, Desc: req.Order == SortDesc})
	}

	page := &TicketPage{Page: req.Page, PageSize: req.PageSize}
	err = s.repo.WithTx(ctx, func(tx database.Tx) error {
		total, err := tx.Count(ctx, filter)
		if err != nil {
			return err
		}
		items, err := tx.FindMany(ctx, filter, order...)
		if err != nil {
			return err
		}
		page.Total = total
		page.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	if page.Items == nil {
		page.Items = []*models.Ticket{}
	}
	return page, nil
}

func normalizeList(req ListTicketsRequest) (ListTicketsRequest, error) {
	if req.ProjectID != "" {
		if err := validateID("project id", req.ProjectID); err != nil {
			return req, err
		}
	}
	if req.Status != nil {
		if err := validateStatus(*req.Status); err != nil {
			return req, err
		}
	}
	if req.Priority != nil {
		if err := validatePriority(*req.Priority); err != nil {
			return req, err
		}
	}

	if req.SortBy == "" {
		req.SortBy = database.SortCreatedAt
	} else if _, err := database.ParseSortField(string(req.SortBy)); err != nil {
		return req, invalid("sort", "%v", err)
	}

	switch strings.ToLower(string(req.Order)) {
	case "":
		req.Order = SortDesc
	case string(SortAsc):
		req.Order = SortAsc
	case string(SortDesc):
		req.Order = SortDesc
	default:
		return req, invalid("order", "%q (must be: asc, desc)", req.Order)
	}

	switch {
	case req.Page == 0:
		req.Page = 1
	case req.Page < 0:
		return req, invalid("page", "must be >= 1")
	}

	switch {
	case req.PageSize == 0:
		req.PageSize = DefaultPageSize
	case req.PageSize < 0 || req.PageSize > MaxPageSize:
		return req, invalid("page size", "must be between 1 and %d", MaxPageSize)
	}

	return req, nil
}

// Board returns every column of a project in display order
func (s *service) Board(ctx context.Context, projectID string) (Board, error) {
	if err := validateID("project id", projectID); err != nil {
		return nil, err
	}

	var board Board
	err := s.repo.WithTx(ctx, func(tx database.Tx) error {
		board = make(Board, len(models.AllStatuses))
		for _, st := range models.AllStatuses {
			board[st] = []*models.Ticket{}
		}

		if err := requireProject(ctx, tx, projectID); err != nil {
			return err
		}
		tickets, err := tx.FindMany(ctx, database.TicketFilter{ProjectID: &projectID}, database.ColumnOrder...)
		if err != nil {
			return err
		}
		for _, t := range tickets {
			board[t.Status] = append(board[t.Status], t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return board, nil
}
