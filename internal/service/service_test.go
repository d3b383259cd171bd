package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/events"
	"github.com/spec-kit/support-portal/internal/observability"
	"github.com/spec-kit/support-portal/internal/repository"
)

// fakeAccounts lets a test override individual store methods.
type fakeAccounts struct {
	repository.AccountRepository
	getByUsernameFn func(ctx context.Context, username string) (*domain.Account, error)
	createFn        func(ctx context.Context, account *domain.Account) error
}

func (f *fakeAccounts) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	if f.getByUsernameFn != nil {
		return f.getByUsernameFn(ctx, username)
	}
	return f.AccountRepository.GetByUsername(ctx, username)
}

func (f *fakeAccounts) Create(ctx context.Context, account *domain.Account) error {
	if f.createFn != nil {
		return f.createFn(ctx, account)
	}
	return f.AccountRepository.Create(ctx, account)
}

// fakeTickets lets a test override individual store methods.
type fakeTickets struct {
	repository.TicketRepository
	listFn func(ctx context.Context) ([]domain.Ticket, error)
}

func (f *fakeTickets) List(ctx context.Context) ([]domain.Ticket, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return f.TicketRepository.List(ctx)
}

var errConnRefused = errors.New("dial tcp: connection refused")

type portal struct {
	accounts   repository.AccountRepository
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	auth       *AuthService
	roles      *AccountService
	ticketSvc  *TicketService
	tokens     *auth.TokenManager
	published  []events.Event
}

func setupPortal(t *testing.T) *portal {
	t.Helper()
	return setupPortalWith(t, repository.NewMemoryAccountRepository(), repository.NewMemoryTicketRepository())
}

func setupPortalWith(t *testing.T, accounts repository.AccountRepository, tickets repository.TicketRepository) *portal {
	t.Helper()
	p := &portal{
		accounts:   accounts,
		tickets:    tickets,
		dispatcher: events.NewInMemoryDispatcher(),
		tokens:     auth.NewTokenManager("test-secret", 30*time.Minute),
	}
	record := func(_ context.Context, e events.Event) error {
		p.published = append(p.published, e)
		return nil
	}
	for _, et := range []events.EventType{
		events.EventTicketCreated, events.EventTicketEdited, events.EventTicketDeleted,
		events.EventTicketTransitioned, events.EventAccountRoleChanged, events.EventAccountDeleted,
	} {
		p.dispatcher.Subscribe(et, record)
	}

	metrics := observability.NewMetrics(nil)
	p.auth = NewAuthService(AuthDependencies{
		Accounts:   accounts,
		Hasher:     auth.NewPasswordHasher(bcrypt.MinCost),
		Tokens:     p.tokens,
		Dispatcher: p.dispatcher,
		Metrics:    metrics,
	})
	p.roles = NewAccountService(accounts, p.dispatcher, metrics, nil)
	p.ticketSvc = NewTicketService(TicketDependencies{
		Tickets:    tickets,
		Dispatcher: p.dispatcher,
		Metrics:    metrics,
	})
	return p
}

// signup registers username and returns the stored account.
func (p *portal) signup(t *testing.T, username string) *domain.Account {
	t.Helper()
	account, err := p.auth.Signup(context.Background(), username, "abc123", "abc123")
	require.NoError(t, err)
	return account
}

// manager registers username and promotes it through the operator path.
func (p *portal) manager(t *testing.T, username string) *domain.Account {
	t.Helper()
	p.signup(t, username)
	account, err := p.roles.AssignRole(context.Background(), username, domain.RoleManager)
	require.NoError(t, err)
	return account
}

// reload fetches the current state of an account, as the session middleware would.
func (p *portal) reload(t *testing.T, account *domain.Account) *domain.Account {
	t.Helper()
	fresh, err := p.accounts.GetByUsername(context.Background(), account.Username)
	require.NoError(t, err)
	return fresh
}

func validContent() TicketContent {
	return TicketContent{Name: "Alice Liddell", Description: strings.Repeat("x", 30)}
}
