package usecase_test

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/saldora-api/internal/domain/entity"
	"github.com/jhoicas/saldora-api/internal/domain/repository"
)

// ────────────────────────────── dobles de prueba ──────────────────────────────

// fakeUserRepo implementa repository.UserRepository en memoria, conservando
// el orden de inserción para que los listados sean deterministas.
type fakeUserRepo struct {
	order       []string
	users       map[string]*entity.User
	updateCalls int
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		copia := *u
		r.users[u.ID] = &copia
		r.order = append(r.order, u.ID)
	}
	return r
}

func (r *fakeUserRepo) Create(u *entity.User) error {
	copia := *u
	r.users[u.ID] = &copia
	r.order = append(r.order, u.ID)
	return nil
}

func (r *fakeUserRepo) GetByID(id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copia := *u
	return &copia, nil
}

func (r *fakeUserRepo) GetByUsername(username string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			copia := *u
			return &copia, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copia := *u
			return &copia, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetForUpdate(id string) (*entity.User, error) {
	return r.GetByID(id)
}

func (r *fakeUserRepo) Update(u *entity.User) error {
	r.updateCalls++
	if existing, ok := r.users[u.ID]; ok {
		existing.Username = u.Username
		existing.Email = u.Email
		existing.PasswordHash = u.PasswordHash
		existing.UpdatedAt = u.UpdatedAt
	}
	return nil
}

func (r *fakeUserRepo) UpdateBalance(id string, balance decimal.Decimal) error {
	if u, ok := r.users[id]; ok {
		u.Balance = balance
	}
	return nil
}

func (r *fakeUserRepo) UpdateRole(id, role string) error {
	if u, ok := r.users[id]; ok {
		u.Role = role
	}
	return nil
}

func (r *fakeUserRepo) UpdateStatus(id string, isActive bool) error {
	if u, ok := r.users[id]; ok {
		u.IsActive = isActive
	}
	return nil
}

func (r *fakeUserRepo) Delete(id string) error {
	delete(r.users, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	// el FK real es ON DELETE SET NULL: los hijos quedan raíces
	for _, u := range r.users {
		if u.CreatedBy == id {
			u.CreatedBy = ""
		}
	}
	return nil
}

func (r *fakeUserRepo) List(limit, offset int) ([]*entity.User, error) {
	var list []*entity.User
	for i := offset; i < len(r.order) && len(list) < limit; i++ {
		copia := *r.users[r.order[i]]
		list = append(list, &copia)
	}
	return list, nil
}

func (r *fakeUserRepo) Count() (int64, error) {
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) ListAll() ([]*entity.User, error) {
	var list []*entity.User
	for _, id := range r.order {
		copia := *r.users[id]
		list = append(list, &copia)
	}
	return list, nil
}

func (r *fakeUserRepo) ListByCreatedBy(createdBy string) ([]*entity.User, error) {
	var list []*entity.User
	for _, id := range r.order {
		if r.users[id].CreatedBy == createdBy {
			copia := *r.users[id]
			list = append(list, &copia)
		}
	}
	return list, nil
}

// fakeTxRepo implementa repository.TransactionRepository en memoria.
type fakeTxRepo struct {
	txs []*entity.Transaction
}

func (r *fakeTxRepo) Create(t *entity.Transaction) error {
	copia := *t
	r.txs = append(r.txs, &copia)
	return nil
}

func (r *fakeTxRepo) GetByID(id string) (*entity.Transaction, error) {
	for _, t := range r.txs {
		if t.ID == id {
			copia := *t
			return &copia, nil
		}
	}
	return nil, nil
}

func (r *fakeTxRepo) GetByReference(reference string) (*entity.Transaction, error) {
	for _, t := range r.txs {
		if t.Reference == reference {
			copia := *t
			return &copia, nil
		}
	}
	return nil, nil
}

func (r *fakeTxRepo) matches(t *entity.Transaction, f repository.TransactionFilter) bool {
	if f.UserID != "" && t.UserID != f.UserID {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.From != nil && t.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && t.CreatedAt.After(*f.To) {
		return false
	}
	return true
}

func (r *fakeTxRepo) List(filter repository.TransactionFilter) ([]*entity.Transaction, int64, error) {
	var all []*entity.Transaction
	for _, t := range r.txs {
		if r.matches(t, filter) {
			copia := *t
			all = append(all, &copia)
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if filter.SortAsc {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	total := int64(len(all))

	if filter.Offset > 0 {
		if filter.Offset >= len(all) {
			return nil, total, nil
		}
		all = all[filter.Offset:]
	}
	if filter.Limit > 0 && len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	return all, total, nil
}

func (r *fakeTxRepo) Summary(userID string, from, to *time.Time) (*repository.TransactionSummary, error) {
	s := &repository.TransactionSummary{
		TotalCredits: decimal.Zero,
		TotalDebits:  decimal.Zero,
	}
	f := repository.TransactionFilter{UserID: userID, From: from, To: to}
	for _, t := range r.txs {
		if !r.matches(t, f) {
			continue
		}
		switch t.Type {
		case entity.TransactionTypeCredit:
			s.TotalCredits = s.TotalCredits.Add(t.Amount)
			s.CreditCount++
		case entity.TransactionTypeDebit:
			s.TotalDebits = s.TotalDebits.Add(t.Amount)
			s.DebitCount++
		}
	}
	s.NetAmount = s.TotalCredits.Sub(s.TotalDebits)
	return s, nil
}

// fakePDFGen registra la última invocación y devuelve bytes fijos.
type fakePDFGen struct {
	gotUser      *entity.User
	gotMovements []*entity.Transaction
	gotFrom      time.Time
	gotTo        time.Time
}

func (g *fakePDFGen) GenerateStatementPDF(
	_ context.Context,
	user *entity.User,
	_ *repository.TransactionSummary,
	movements []*entity.Transaction,
	from, to time.Time,
) ([]byte, error) {
	g.gotUser, g.gotMovements, g.gotFrom, g.gotTo = user, movements, from, to
	return []byte("%PDF-fake"), nil
}

// ────────────────────────────── fixture común ─────────────────────────────────

// mkUser construye un usuario activo para el fixture.
func mkUser(id, username, role, createdBy string, balance int64) *entity.User {
	now := time.Now()
	return &entity.User{
		ID:        id,
		Username:  username,
		Email:     username + "@saldora.test",
		Role:      role,
		Balance:   decimal.NewFromInt(balance),
		CreatedBy: createdBy,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// buildNetwork arma la red común de los tests:
//
//	root (super_admin)
//	└── admin1 (admin)
//	    └── mod1 (moderator)
//	        ├── user1 (user)
//	        └── user2 (user)
//	libre (user, raíz independiente)
func buildNetwork() *fakeUserRepo {
	return newFakeUserRepo(
		mkUser("u-root", "root", entity.RoleSuperAdmin, "", 1000),
		mkUser("u-admin1", "admin1", entity.RoleAdmin, "u-root", 500),
		mkUser("u-mod1", "mod1", entity.RoleModerator, "u-admin1", 200),
		mkUser("u-user1", "user1", entity.RoleUser, "u-mod1", 50),
		mkUser("u-user2", "user2", entity.RoleUser, "u-mod1", 0),
		mkUser("u-libre", "libre", entity.RoleUser, "", 30),
	)
}
