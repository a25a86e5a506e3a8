package test

import (
	"context"
	"sync"

	domainErrors "github.com/payneu/gateway/internal/domain/errors"
	"github.com/payneu/gateway/internal/domain/model"
	"github.com/payneu/gateway/internal/domain/repository"
)

// RepositoryFactoryStub hands out the configured stub repositories.
type RepositoryFactoryStub struct {
	UserRepo    *UserRepositoryStub
	AttemptRepo *AttemptRepositoryStub
}

func (s *RepositoryFactoryStub) Users() repository.UserRepository {
	if s.UserRepo == nil {
		s.UserRepo = NewUserRepositoryStub()
	}
	return s.UserRepo
}

func (s *RepositoryFactoryStub) Attempts() repository.AttemptRepository {
	if s.AttemptRepo == nil {
		s.AttemptRepo = &AttemptRepositoryStub{}
	}
	return s.AttemptRepo
}

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, login, passwordHash string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.User)
	}
	if _, exists := s.Users[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user := &model.User{ID: s.Next, Login: login, PasswordHash: passwordHash}
	s.Next++
	s.Users[login] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByLogin fetches user by login or returns not found.
func (s *UserRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[login]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// AttemptRepositoryStub journals payment attempts in-memory for tests.
type AttemptRepositoryStub struct {
	RecordFn     func(context.Context, model.PaymentAttempt) error
	ListRecentFn func(context.Context, int) ([]model.PaymentAttempt, error)
	ListByInvFn  func(context.Context, int64) ([]model.PaymentAttempt, error)

	mu      sync.Mutex
	Records []model.PaymentAttempt
	Err     error
}

// Record stores the attempt snapshot unless the stub has an explicit error.
func (s *AttemptRepositoryStub) Record(ctx context.Context, attempt model.PaymentAttempt) error {
	if s.RecordFn != nil {
		return s.RecordFn(ctx, attempt)
	}
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records = append(s.Records, attempt)
	return nil
}

// ListRecent returns stored attempts, newest bound by limit.
func (s *AttemptRepositoryStub) ListRecent(ctx context.Context, limit int) ([]model.PaymentAttempt, error) {
	if s.ListRecentFn != nil {
		return s.ListRecentFn(ctx, limit)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	records := append([]model.PaymentAttempt(nil), s.Records...)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// ListByInvoice returns attempts stored for the invoice.
func (s *AttemptRepositoryStub) ListByInvoice(ctx context.Context, invoiceID int64) ([]model.PaymentAttempt, error) {
	if s.ListByInvFn != nil {
		return s.ListByInvFn(ctx, invoiceID)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []model.PaymentAttempt
	for _, record := range s.Records {
		if record.InvoiceID == invoiceID {
			matched = append(matched, record)
		}
	}
	return matched, nil
}
