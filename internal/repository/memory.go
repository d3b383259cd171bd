package repository

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/support-portal/internal/domain"
)

// MemoryAccountRepository keeps accounts in process memory. It backs local
// development when no Postgres DSN is configured, and tests.
type MemoryAccountRepository struct {
	mu       sync.RWMutex
	nextID   int64
	accounts []domain.Account
}

// NewMemoryAccountRepository constructs an empty store.
func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{}
}

func (r *MemoryAccountRepository) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Username == account.Username {
			return ErrDuplicate
		}
	}
	r.nextID++
	now := time.Now().UTC()
	account.ID = r.nextID
	account.CreatedAt = now
	account.UpdatedAt = now
	r.accounts = append(r.accounts, *account)
	return nil
}

func (r *MemoryAccountRepository) Update(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.accounts {
		if r.accounts[i].ID == account.ID {
			account.UpdatedAt = time.Now().UTC()
			r.accounts[i].PasswordHash = account.PasswordHash
			r.accounts[i].Role = account.Role
			r.accounts[i].UpdatedAt = account.UpdatedAt
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryAccountRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.accounts {
		if r.accounts[i].ID == id {
			r.accounts = append(r.accounts[:i], r.accounts[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryAccountRepository) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, account := range r.accounts {
		if account.ID == id {
			found := account
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryAccountRepository) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, account := range r.accounts {
		if account.Username == username {
			found := account
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryAccountRepository) List(_ context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Account(nil), r.accounts...), nil
}

// MemoryTicketRepository keeps tickets in process memory in insertion order.
type MemoryTicketRepository struct {
	mu      sync.RWMutex
	nextID  int64
	tickets []domain.Ticket
}

// NewMemoryTicketRepository constructs an empty store.
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{}
}

func (r *MemoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := time.Now().UTC()
	ticket.ID = r.nextID
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.tickets = append(r.tickets, *ticket)
	return nil
}

func (r *MemoryTicketRepository) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tickets {
		if r.tickets[i].ID == ticket.ID {
			ticket.UpdatedAt = time.Now().UTC()
			r.tickets[i].Name = ticket.Name
			r.tickets[i].Description = ticket.Description
			r.tickets[i].Status = ticket.Status
			r.tickets[i].Priority = ticket.Priority
			r.tickets[i].UpdatedAt = ticket.UpdatedAt
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryTicketRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tickets {
		if r.tickets[i].ID == id {
			r.tickets = append(r.tickets[:i], r.tickets[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryTicketRepository) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ticket := range r.tickets {
		if ticket.ID == id {
			found := ticket
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryTicketRepository) List(_ context.Context) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Ticket(nil), r.tickets...), nil
}

func (r *MemoryTicketRepository) ListByRequester(_ context.Context, requester string) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.Requester == requester {
			result = append(result, ticket)
		}
	}
	return result, nil
}
