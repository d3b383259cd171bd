// Package seed loads accounts and tickets from a YAML file into the portal.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/repository"
	"github.com/spec-kit/support-portal/internal/service"
	apperrors "github.com/spec-kit/support-portal/pkg/util/errorutil"
)

// File is the seed document.
type File struct {
	Accounts []Account `yaml:"accounts"`
	Tickets  []Ticket  `yaml:"tickets"`
}

// Account seeds one login. Role is a name or level and defaults to USER.
type Account struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// Ticket seeds one ticket for an existing requester.
type Ticket struct {
	Requester   string `yaml:"requester"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Status      string `yaml:"status"`
	Priority    string `yaml:"priority"`
}

// Result counts what Apply wrote.
type Result struct {
	AccountsCreated int
	AccountsSkipped int
	TicketsCreated  int
	TicketsSkipped  int
}

// Load decodes a seed document and rejects unknown keys.
func Load(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &File{}, nil
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &f, nil
}

// LoadFile opens and decodes path.
func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Load(fh)
}

// Seeder writes a seed document through the services so every validation rule applies.
type Seeder struct {
	Auth     *service.AuthService
	Roles    *service.AccountService
	Tickets  *service.TicketService
	Accounts repository.AccountRepository
	Store    repository.TicketRepository
	Logger   *zap.Logger
}

// Apply is idempotent on usernames: existing accounts are left alone, and
// tickets are only seeded for requesters that have none yet.
func (s *Seeder) Apply(ctx context.Context, f *File) (Result, error) {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var res Result

	for _, a := range f.Accounts {
		role := domain.RoleUser
		if a.Role != "" {
			parsed, err := domain.ParseRole(a.Role)
			if err != nil {
				return res, fmt.Errorf("account %q: %w", a.Username, err)
			}
			role = parsed
		}

		_, err := s.Auth.Signup(ctx, a.Username, a.Password, a.Password)
		switch {
		case apperrors.IsCode(err, apperrors.CodeConflict):
			res.AccountsSkipped++
			logger.Info("seed account exists", zap.String("username", a.Username))
			continue
		case err != nil:
			return res, fmt.Errorf("account %q: %w", a.Username, err)
		}
		if role != domain.RoleUser {
			if _, err := s.Roles.AssignRole(ctx, a.Username, role); err != nil {
				return res, fmt.Errorf("account %q: %w", a.Username, err)
			}
		}
		res.AccountsCreated++
	}

	// The operator acts with manager rights for status and priority overrides.
	operator := &domain.Account{Username: "operator", Role: domain.RoleManager}
	seeded := map[string]bool{}
	for _, t := range f.Tickets {
		requester, err := s.Accounts.GetByUsername(ctx, t.Requester)
		if err != nil {
			return res, fmt.Errorf("ticket for %q: %w", t.Requester, err)
		}
		if _, checked := seeded[t.Requester]; !checked {
			existing, err := s.Store.ListByRequester(ctx, t.Requester)
			if err != nil {
				return res, err
			}
			seeded[t.Requester] = len(existing) == 0
		}
		if !seeded[t.Requester] {
			res.TicketsSkipped++
			continue
		}

		ticket, err := s.Tickets.CreateTicket(ctx, requester, service.TicketContent{Name: t.Name, Description: t.Description})
		if err != nil {
			return res, fmt.Errorf("ticket for %q: %w", t.Requester, err)
		}
		if t.Status != "" || t.Priority != "" {
			_, err = s.Tickets.TransitionTicket(ctx, operator, ticket.ID, service.TransitionInput{
				Status:   domain.TicketStatus(strings.ToUpper(t.Status)),
				Priority: domain.TicketPriority(strings.ToUpper(t.Priority)),
			})
			if err != nil {
				return res, fmt.Errorf("ticket %s: %w", ticket.Reference(), err)
			}
		}
		res.TicketsCreated++
	}
	return res, nil
}
