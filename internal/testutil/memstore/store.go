package memstore

import (
	"context"
	"sync"
	"time"

	"loansyncro/internal/domain/loan"
	"loansyncro/internal/domain/repayment"
	"loansyncro/internal/domain/uow"
	"loansyncro/internal/domain/user"
)

// Store is an in-process stand-in for the gorm repositories. Reads return
// copies, so callers never alias stored rows.
type Store struct {
	mu         sync.Mutex
	seq        uint64
	loans      []loan.Loan
	repayments []repayment.Repayment
	users      []user.User
}

func New() *Store { return &Store{} }

func (s *Store) Loans() *Loans           { return &Loans{s} }
func (s *Store) Repayments() *Repayments { return &Repayments{s} }
func (s *Store) Users() *Users           { return &Users{s} }

func (s *Store) Repos() uow.Repos {
	return uow.Repos{Loans: s.Loans(), Repayments: s.Repayments()}
}

func (s *Store) next() uint64 {
	s.seq++
	return s.seq
}

// --- unit of work ---

var _ uow.UnitOfWork = (*Store)(nil)

func (s *Store) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	l, err := s.Loans().GetByLoanIDForUpdate(ctx, loanID)
	if err != nil {
		return err
	}
	return fn(s.Repos(), l)
}

// --- loans ---

var _ loan.Repository = (*Loans)(nil)

type Loans struct{ s *Store }

func (r *Loans) find(loanID string) int {
	for i := range r.s.loans {
		if r.s.loans[i].LoanID == loanID && !r.s.loans[i].DeletedAt.Valid {
			return i
		}
	}
	return -1
}

func (r *Loans) Create(_ context.Context, l *loan.Loan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now().UTC()
	l.ID = r.s.next()
	l.CreatedAt, l.UpdatedAt = now, now
	if l.Status == "" {
		l.Status = loan.StatusActive
	}
	r.s.loans = append(r.s.loans, *l)
	return nil
}

func (r *Loans) GetByLoanID(_ context.Context, loanID string) (*loan.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.find(loanID)
	if i < 0 {
		return nil, loan.ErrNotFound
	}
	out := r.s.loans[i]
	return &out, nil
}

func (r *Loans) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loan.Loan, error) {
	return r.GetByLoanID(ctx, loanID)
}

func (r *Loans) ListByUserID(_ context.Context, userID string) ([]loan.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []loan.Loan
	for _, l := range r.s.loans {
		if l.UserID == userID && !l.DeletedAt.Valid {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *Loans) UpdateDetails(_ context.Context, l *loan.Loan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.find(l.LoanID)
	if i < 0 {
		return loan.ErrNotFound
	}
	row := &r.s.loans[i]
	row.Title, row.Description = l.Title, l.Description
	row.Amount, row.InterestRate, row.TermMonths = l.Amount, l.InterestRate, l.TermMonths
	row.StartDate = l.StartDate
	row.TotalAmount, row.MonthlyPayment = l.TotalAmount, l.MonthlyPayment
	row.UpdatedAt = time.Now().UTC()
	l.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *Loans) UpdateStatus(_ context.Context, l *loan.Loan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.find(l.LoanID)
	if i < 0 {
		return loan.ErrNotFound
	}
	r.s.loans[i].Status = l.Status
	r.s.loans[i].UpdatedAt = time.Now().UTC()
	return nil
}

func (r *Loans) Delete(_ context.Context, l *loan.Loan, deletedBy string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.find(l.LoanID)
	if i < 0 {
		return loan.ErrNotFound
	}
	r.s.loans[i].DeletedAt.Time = time.Now().UTC()
	r.s.loans[i].DeletedAt.Valid = true
	r.s.loans[i].DeletedBy = deletedBy
	return nil
}

// --- repayments ---

var _ repayment.Repository = (*Repayments)(nil)

type Repayments struct{ s *Store }

func (r *Repayments) Create(_ context.Context, p *repayment.Repayment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.next()
	p.CreatedAt = time.Now().UTC()
	r.s.repayments = append(r.s.repayments, *p)
	return nil
}

func (r *Repayments) ListByLoanID(ctx context.Context, loanID string) ([]repayment.Repayment, error) {
	return r.ListByLoanIDs(ctx, []string{loanID})
}

func (r *Repayments) ListByLoanIDs(_ context.Context, loanIDs []string) ([]repayment.Repayment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := make(map[string]bool, len(loanIDs))
	for _, id := range loanIDs {
		want[id] = true
	}
	var out []repayment.Repayment
	for _, p := range r.s.repayments {
		if want[p.LoanID] {
			out = append(out, p)
		}
	}
	repayment.SortNewestFirst(out)
	return out, nil
}

// --- users ---

var _ user.Repository = (*Users)(nil)

type Users struct{ s *Store }

func (r *Users) Create(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.Email = user.NormalizeEmail(u.Email)
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
	}
	now := time.Now().UTC()
	u.ID = r.s.next()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users = append(r.s.users, *u)
	return nil
}

func (r *Users) GetByUserID(_ context.Context, userID string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.UserID == userID {
			out := u
			return &out, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *Users) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = user.NormalizeEmail(email)
	for _, u := range r.s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, user.ErrNotFound
}
