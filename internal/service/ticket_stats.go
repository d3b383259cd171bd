package service

import (
	"math"
	"time"

	"github.com/spec-kit/support-portal/internal/domain"
)

// PartitionOpenFirst orders tickets that are not CLOSED ahead of CLOSED ones.
// Relative order inside each group is preserved.
func PartitionOpenFirst(tickets []domain.Ticket) []domain.Ticket {
	ordered := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t.Status != domain.TicketStatusClosed {
			ordered = append(ordered, t)
		}
	}
	for _, t := range tickets {
		if t.Status == domain.TicketStatusClosed {
			ordered = append(ordered, t)
		}
	}
	return ordered
}

// ComputeStats counts tickets by status.
func ComputeStats(tickets []domain.Ticket) domain.TicketStats {
	stats := domain.TicketStats{Total: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case domain.TicketStatusOpen:
			stats.Open++
		case domain.TicketStatusInProgress:
			stats.InProgress++
		case domain.TicketStatusClosed:
			stats.Closed++
		}
	}
	return stats
}

// BuildReport aggregates the manager view. Rates are percentages rounded to
// one decimal and are zero when there are no tickets.
func BuildReport(tickets []domain.Ticket, now time.Time) *domain.TicketReport {
	report := &domain.TicketReport{
		Total: len(tickets),
		ByStatus: map[domain.TicketStatus]int{
			domain.TicketStatusOpen:       0,
			domain.TicketStatusInProgress: 0,
			domain.TicketStatusClosed:     0,
		},
		ByPriority: map[domain.TicketPriority]int{
			domain.TicketPriorityLow:    0,
			domain.TicketPriorityMedium: 0,
			domain.TicketPriorityHigh:   0,
		},
		ByRequester: map[string]int{},
		GeneratedAt: now.UTC(),
	}
	for _, t := range tickets {
		report.ByStatus[t.Status]++
		report.ByPriority[t.Priority]++
		report.ByRequester[t.Requester]++
	}
	report.ResolutionRate = percent(report.ByStatus[domain.TicketStatusClosed], report.Total)
	report.HighPriorityRate = percent(report.ByPriority[domain.TicketPriorityHigh], report.Total)
	return report
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}
