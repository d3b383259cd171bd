package dto

import (
	"time"

	"github.com/spec-kit/support-portal/internal/domain"
)

// TicketContentRequest carries the requester-owned fields for create and edit.
// Status and priority are not accepted here.
type TicketContentRequest struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
}

// TransitionTicketRequest payload for the IT dashboard.
type TransitionTicketRequest struct {
	Status   string `json:"status" form:"status"`
	Priority string `json:"priority" form:"priority"`
}

// TicketResponse is a single ticket.
type TicketResponse struct {
	ID          int64                 `json:"id"`
	Reference   string                `json:"reference"`
	Requester   string                `json:"requester"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// TicketStatsResponse counts tickets by status.
type TicketStatsResponse struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Closed     int `json:"closed"`
}

// TicketListResponse is a partitioned list with counts.
type TicketListResponse struct {
	Tickets []TicketResponse    `json:"tickets"`
	Stats   TicketStatsResponse `json:"stats"`
}

// ReportResponse is the manager breakdown.
type ReportResponse struct {
	Total            int                           `json:"total"`
	ByStatus         map[domain.TicketStatus]int   `json:"by_status"`
	ByPriority       map[domain.TicketPriority]int `json:"by_priority"`
	ByRequester      map[string]int                `json:"by_requester"`
	ResolutionRate   float64                       `json:"resolution_rate"`
	HighPriorityRate float64                       `json:"high_priority_rate"`
	GeneratedAt      time.Time                     `json:"generated_at"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          ticket.ID,
		Reference:   ticket.Reference(),
		Requester:   ticket.Requester,
		Name:        ticket.Name,
		Description: ticket.Description,
		Status:      ticket.Status,
		Priority:    ticket.Priority,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

// NewTicketListResponse maps tickets and their counts.
func NewTicketListResponse(tickets []domain.Ticket, stats domain.TicketStats) TicketListResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return TicketListResponse{
		Tickets: items,
		Stats: TicketStatsResponse{
			Total:      stats.Total,
			Open:       stats.Open,
			InProgress: stats.InProgress,
			Closed:     stats.Closed,
		},
	}
}

// NewReportResponse maps the manager report.
func NewReportResponse(report *domain.TicketReport) ReportResponse {
	return ReportResponse{
		Total:            report.Total,
		ByStatus:         report.ByStatus,
		ByPriority:       report.ByPriority,
		ByRequester:      report.ByRequester,
		ResolutionRate:   report.ResolutionRate,
		HighPriorityRate: report.HighPriorityRate,
		GeneratedAt:      report.GeneratedAt,
	}
}
