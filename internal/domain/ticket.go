package domain

import (
	"fmt"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// Valid reports whether the status is one of the enumerated values.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
)

// Valid reports whether the priority is one of the enumerated values.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// Ticket is a support request. Requester holds the username of the creating account.
type Ticket struct {
	ID          int64
	Requester   string
	Name        string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Reference renders the display form of a ticket id, e.g. #0007.
func (t Ticket) Reference() string {
	return fmt.Sprintf("#%04d", t.ID)
}

// TicketStats aggregates tickets by status.
type TicketStats struct {
	Total      int
	Open       int
	InProgress int
	Closed     int
}

// TicketReport is the manager-level breakdown of all tickets.
type TicketReport struct {
	Total            int
	ByStatus         map[TicketStatus]int
	ByPriority       map[TicketPriority]int
	ByRequester      map[string]int
	ResolutionRate   float64
	HighPriorityRate float64
	GeneratedAt      time.Time
}
