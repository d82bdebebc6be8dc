package ledger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// In-memory repositories. They ignore the db handle, so engine tests pass a nil tx.

type fakeUsers struct{ rows map[uuid.UUID]*domain.User }

func (f *fakeUsers) get(id uuid.UUID) *domain.User {
	u, ok := f.rows[id]
	if !ok {
		return nil
	}
	c := *u
	return &c
}

func (f *fakeUsers) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.User, error) {
	return f.get(id), nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, _ repository.DBTX, email string) (*domain.User, error) {
	for _, u := range f.rows {
		if u.Email == email {
			return f.get(u.ID), nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) LockForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*domain.User, error) {
	return f.get(id), nil
}

func (f *fakeUsers) Create(_ context.Context, _ repository.DBTX, u *domain.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	c := *u
	f.rows[u.ID] = &c
	return nil
}

func (f *fakeUsers) UpdateBalances(_ context.Context, _ repository.DBTX, id uuid.UUID, d domain.BalanceUpdate) (*domain.User, error) {
	u, ok := f.rows[id]
	if !ok || u.Points+d.Points < 0 || u.Balance.Add(d.Balance).IsNegative() {
		return nil, nil
	}
	u.Points += d.Points
	u.Balance = u.Balance.Add(d.Balance)
	return f.get(id), nil
}

func (f *fakeUsers) List(context.Context, repository.DBTX, domain.UserFilter) ([]domain.User, error) {
	return nil, nil
}

func (f *fakeUsers) UpdateStatus(_ context.Context, _ repository.DBTX, id uuid.UUID, s domain.UserStatus) (*domain.User, error) {
	if u, ok := f.rows[id]; ok {
		u.Status = s
	}
	return f.get(id), nil
}

func (f *fakeUsers) UpdateRole(_ context.Context, _ repository.DBTX, id uuid.UUID, r domain.Role) (*domain.User, error) {
	if u, ok := f.rows[id]; ok {
		u.Role = r
	}
	return f.get(id), nil
}

type fakeTransactions struct{ rows []*domain.Transaction }

func (f *fakeTransactions) Insert(_ context.Context, _ repository.DBTX, p domain.PostLedgerEntryParams, status domain.TransactionStatus) (*domain.Transaction, error) {
	t := &domain.Transaction{
		ID:          uuid.New(),
		UserID:      p.UserID,
		Type:        p.Type,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Points:      p.Points,
		Status:      status,
		Provider:    p.Provider,
		ProviderRef: p.ProviderRef,
		Metadata:    p.Metadata,
		CreatedAt:   time.Now(),
	}
	f.rows = append(f.rows, t)
	c := *t
	return &c, nil
}

func (f *fakeTransactions) find(id uuid.UUID) *domain.Transaction {
	for _, t := range f.rows {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (f *fakeTransactions) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Transaction, error) {
	if t := f.find(id); t != nil {
		c := *t
		return &c, nil
	}
	return nil, nil
}

func (f *fakeTransactions) LockForUpdate(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*domain.Transaction, error) {
	return f.FindByID(ctx, nil, id)
}

func (f *fakeTransactions) Settle(_ context.Context, _ repository.DBTX, id uuid.UUID, status domain.TransactionStatus, ref *string) (*domain.Transaction, error) {
	t := f.find(id)
	if t == nil || t.Status != domain.TxStatusPending {
		return nil, nil
	}
	t.Status = status
	now := time.Now()
	t.CompletedAt = &now
	if ref != nil {
		t.ProviderRef = ref
	}
	c := *t
	return &c, nil
}

func (f *fakeTransactions) SetProviderRef(_ context.Context, _ repository.DBTX, id uuid.UUID, provider, ref string) error {
	t := f.find(id)
	if t == nil || t.Status != domain.TxStatusPending {
		return domain.ErrConflict("transaction is no longer pending")
	}
	t.Provider, t.ProviderRef = &provider, &ref
	return nil
}

func (f *fakeTransactions) ListByUser(_ context.Context, _ repository.DBTX, userID uuid.UUID, _ *uuid.UUID, _ int) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].UserID == userID {
			out = append(out, *f.rows[i])
		}
	}
	return out, nil
}

func (f *fakeTransactions) Search(context.Context, repository.DBTX, domain.TransactionFilter) ([]domain.Transaction, error) {
	return nil, nil
}

func (f *fakeTransactions) FindRefundOf(_ context.Context, _ repository.DBTX, depositID uuid.UUID) (*domain.Transaction, error) {
	for _, t := range f.rows {
		if t.Type != domain.TxWithdrawal {
			continue
		}
		var m map[string]interface{}
		_ = json.Unmarshal(t.Metadata, &m)
		if m["refund_of"] == depositID.String() {
			c := *t
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeTransactions) CountSince(_ context.Context, _ repository.DBTX, userID uuid.UUID, since time.Time) (int, error) {
	n := 0
	for _, t := range f.rows {
		if t.UserID == userID && t.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeTransactions) SumDepositsSince(context.Context, repository.DBTX, uuid.UUID, time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (f *fakeTransactions) forUser(id uuid.UUID) []*domain.Transaction {
	var out []*domain.Transaction
	for _, t := range f.rows {
		if t.UserID == id {
			out = append(out, t)
		}
	}
	return out
}

type fakeHistory struct{ rows []*domain.GameHistory }

func (f *fakeHistory) Insert(_ context.Context, _ repository.DBTX, h *domain.GameHistory) error {
	for _, r := range f.rows {
		if r.TransactionID == h.TransactionID {
			return domain.ErrConflict("duplicate transaction_id")
		}
	}
	h.ID = uuid.New()
	h.CreatedAt = time.Now()
	c := *h
	f.rows = append(f.rows, &c)
	return nil
}

func (f *fakeHistory) ListByUser(context.Context, repository.DBTX, uuid.UUID, int) ([]domain.GameHistory, error) {
	return nil, nil
}

func (f *fakeHistory) SumWinningsSince(context.Context, repository.DBTX, uuid.UUID, time.Time) (int64, error) {
	return 0, nil
}

type fakePrizes struct{ rows map[uuid.UUID]*domain.Prize }

func (f *fakePrizes) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Prize, error) {
	p, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (f *fakePrizes) LockForUpdate(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*domain.Prize, error) {
	return f.FindByID(ctx, nil, id)
}

func (f *fakePrizes) List(context.Context, repository.DBTX, domain.PrizeFilter) ([]domain.Prize, error) {
	return nil, nil
}

func (f *fakePrizes) Create(context.Context, repository.DBTX, domain.PrizeInput) (*domain.Prize, error) {
	return nil, nil
}

func (f *fakePrizes) Update(context.Context, repository.DBTX, uuid.UUID, domain.PrizeInput) (*domain.Prize, error) {
	return nil, nil
}

func (f *fakePrizes) SetActive(context.Context, repository.DBTX, uuid.UUID, bool) (*domain.Prize, error) {
	return nil, nil
}

func (f *fakePrizes) Restock(context.Context, repository.DBTX, uuid.UUID, int) (*domain.Prize, error) {
	return nil, nil
}

func (f *fakePrizes) ConsumeStock(ctx context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Prize, error) {
	p, ok := f.rows[id]
	if !ok || !p.Claimable() {
		return nil, nil
	}
	p.Stock--
	p.Active = p.Stock > 0
	return f.FindByID(ctx, nil, id)
}

type fakeTournaments struct {
	rows    map[uuid.UUID]*domain.Tournament
	members map[uuid.UUID]map[uuid.UUID]bool
}

func (f *fakeTournaments) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Tournament, error) {
	t, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	c := *t
	c.Participants = len(f.members[id])
	return &c, nil
}

func (f *fakeTournaments) LockForUpdate(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*domain.Tournament, error) {
	return f.FindByID(ctx, nil, id)
}

func (f *fakeTournaments) List(context.Context, repository.DBTX, domain.TournamentStatus) ([]domain.Tournament, error) {
	return nil, nil
}

func (f *fakeTournaments) Create(context.Context, repository.DBTX, domain.TournamentInput) (*domain.Tournament, error) {
	return nil, nil
}

func (f *fakeTournaments) UpdateStatus(context.Context, repository.DBTX, uuid.UUID, domain.TournamentStatus, domain.TournamentStatus) (*domain.Tournament, error) {
	return nil, nil
}

func (f *fakeTournaments) AddParticipant(_ context.Context, _ repository.DBTX, tid, uid uuid.UUID) (*domain.TournamentParticipant, error) {
	if f.members[tid] == nil {
		f.members[tid] = map[uuid.UUID]bool{}
	}
	if f.members[tid][uid] {
		return nil, domain.ErrAlreadyJoined()
	}
	f.members[tid][uid] = true
	return &domain.TournamentParticipant{ID: uuid.New(), TournamentID: tid, UserID: uid, CreatedAt: time.Now()}, nil
}

func (f *fakeTournaments) Leaderboard(context.Context, repository.DBTX, uuid.UUID, int) ([]domain.TournamentParticipant, error) {
	return nil, nil
}

func (f *fakeTournaments) UpdateScore(context.Context, repository.DBTX, uuid.UUID, uuid.UUID, int64) (*domain.TournamentParticipant, error) {
	return nil, nil
}

type fakeGames struct{ rows map[uuid.UUID]*domain.Game }

func (f *fakeGames) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Game, error) {
	g, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	c := *g
	return &c, nil
}

func (f *fakeGames) ListActive(context.Context, repository.DBTX) ([]domain.Game, error) {
	return nil, nil
}

type fakeOutbox struct{ events []domain.OutboxDraft }

func (f *fakeOutbox) Insert(_ context.Context, _ repository.DBTX, d domain.OutboxDraft) error {
	f.events = append(f.events, d)
	return nil
}

func (f *fakeOutbox) FetchUnpublished(context.Context, repository.DBTX, int) ([]domain.OutboxDraft, error) {
	return f.events, nil
}

func (f *fakeOutbox) MarkPublished(context.Context, repository.DBTX, []int64) error {
	return nil
}

type fixture struct {
	engine      *Engine
	users       *fakeUsers
	txs         *fakeTransactions
	history     *fakeHistory
	prizes      *fakePrizes
	tournaments *fakeTournaments
	games       *fakeGames
	outbox      *fakeOutbox
}

func newFixture() *fixture {
	f := &fixture{
		users:       &fakeUsers{rows: map[uuid.UUID]*domain.User{}},
		txs:         &fakeTransactions{},
		history:     &fakeHistory{},
		prizes:      &fakePrizes{rows: map[uuid.UUID]*domain.Prize{}},
		tournaments: &fakeTournaments{rows: map[uuid.UUID]*domain.Tournament{}, members: map[uuid.UUID]map[uuid.UUID]bool{}},
		games:       &fakeGames{rows: map[uuid.UUID]*domain.Game{}},
		outbox:      &fakeOutbox{},
	}
	f.engine = NewEngine(Repositories{
		Users:        f.users,
		Transactions: f.txs,
		History:      f.history,
		Prizes:       f.prizes,
		Tournaments:  f.tournaments,
		Games:        f.games,
		Outbox:       f.outbox,
	})
	return f
}

func (f *fixture) addUser(points int64) *domain.User {
	u := &domain.User{
		ID:      uuid.New(),
		Email:   uuid.NewString() + "@example.com",
		Role:    domain.RoleUser,
		Country: "ES",
		Region:  "EUROPE",
		Points:  points,
		Balance: decimal.Zero,
		Status:  domain.UserStatusActive,
	}
	f.users.rows[u.ID] = u
	return u
}

func (f *fixture) addPrize(value int64, stock int, region *string) *domain.Prize {
	p := &domain.Prize{
		ID:         uuid.New(),
		Name:       "Coffee",
		Category:   domain.CategoryFood,
		PointValue: value,
		Stock:      stock,
		Active:     true,
		Region:     region,
	}
	f.prizes.rows[p.ID] = p
	return p
}

func (f *fixture) addTournament(fee int64, maxPlayers int, status domain.TournamentStatus) *domain.Tournament {
	t := &domain.Tournament{ID: uuid.New(), Name: "Weekly", Status: status, EntryFee: fee, MaxPlayers: maxPlayers}
	f.tournaments.rows[t.ID] = t
	return t
}

func (f *fixture) addGame(reward int64) *domain.Game {
	g := &domain.Game{ID: uuid.New(), Name: "Classic Memory", RewardPoints: reward, Active: true}
	f.games.rows[g.ID] = g
	return g
}
