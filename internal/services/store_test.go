package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gym_backend/internal/models"
	"gym_backend/internal/repositories"

	"github.com/shopspring/decimal"
)

// memStore is an in-memory stand-in for every repository. WithinTx snapshots the
// state and restores it when the callback fails, like a rolled back transaction.
type memStore struct {
	txMu   sync.Mutex // transactions run one at a time
	mu     sync.Mutex
	nextID int64

	members      map[int64]models.Member
	admins       map[int64]models.AdminUser
	items        map[int64]models.InventoryItem
	movements    []models.StockMovement
	trainers     map[int64]models.Trainer
	bookings     map[int64]models.Booking
	testimonials map[int64]models.Testimonial
	notes        map[int64]models.Note

	conflicts       int   // SetQuantity calls that report a lost update
	movementErr     error // returned by CreateMovement
	attachConflicts bool  // AttachCredentials behaves as if another signup won
	txCount         int
	rollbacks       int
}

func newMemStore() *memStore {
	return &memStore{
		members:      map[int64]models.Member{},
		admins:       map[int64]models.AdminUser{},
		items:        map[int64]models.InventoryItem{},
		trainers:     map[int64]models.Trainer{},
		bookings:     map[int64]models.Booking{},
		testimonials: map[int64]models.Testimonial{},
		notes:        map[int64]models.Note{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

type memSnapshot struct {
	members      map[int64]models.Member
	items        map[int64]models.InventoryItem
	movements    []models.StockMovement
	bookings     map[int64]models.Booking
	testimonials map[int64]models.Testimonial
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	s.txCount++
	snap := memSnapshot{
		members:      copyMap(s.members),
		items:        copyMap(s.items),
		movements:    append([]models.StockMovement(nil), s.movements...),
		bookings:     copyMap(s.bookings),
		testimonials: copyMap(s.testimonials),
	}
	s.mu.Unlock()

	if err := fn(nil); err != nil {
		s.mu.Lock()
		s.members, s.items, s.movements = snap.members, snap.items, snap.movements
		s.bookings, s.testimonials = snap.bookings, snap.testimonials
		s.rollbacks++
		s.mu.Unlock()
		return err
	}
	return nil
}

// --- members ---

func (s *memStore) CreateMember(_ context.Context, _ repositories.SQLExecutor, m *models.Member) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.members {
		if other.Email == m.Email {
			return 0, fmt.Errorf("%w: dup (constraint: %s)", repositories.ErrDuplicateKey, repositories.ConstraintMemberEmail)
		}
		if other.PhoneNumber == m.PhoneNumber {
			return 0, fmt.Errorf("%w: dup (constraint: %s)", repositories.ErrDuplicateKey, repositories.ConstraintMemberPhone)
		}
	}
	m.ID = s.id()
	s.members[m.ID] = *m
	return m.ID, nil
}

func (s *memStore) member(match func(models.Member) bool) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if match(m) {
			out := m
			return &out, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *memStore) GetMemberByID(_ context.Context, id int64) (*models.Member, error) {
	return s.member(func(m models.Member) bool { return m.ID == id })
}

func (s *memStore) GetMemberByUsername(_ context.Context, username string) (*models.Member, error) {
	return s.member(func(m models.Member) bool { return m.Username != nil && *m.Username == username })
}

func (s *memStore) GetMemberByEmailAndPhone(_ context.Context, email, phone string) (*models.Member, error) {
	return s.member(func(m models.Member) bool { return m.Email == email && m.PhoneNumber == phone })
}

func (s *memStore) FindMembersByEmailOrPhone(_ context.Context, email, phone string) ([]models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Member
	for _, m := range s.members {
		if m.Email == email || m.PhoneNumber == phone {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) GetMembers(_ context.Context, f models.MemberFilter) ([]models.Member, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Member
	for _, m := range s.members {
		if f.Search != nil && !strings.Contains(strings.ToLower(m.FullName), strings.ToLower(*f.Search)) {
			continue
		}
		if f.ExpiresOnOrAfter != nil && m.ExpiresAt.Before(*f.ExpiresOnOrAfter) {
			continue
		}
		if f.ExpiresBefore != nil && !m.ExpiresAt.Before(*f.ExpiresBefore) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegisteredAt.After(out[j].RegisteredAt) })
	return out, len(out), nil
}

func (s *memStore) GetMembersExpiringBetween(_ context.Context, from, through time.Time) ([]models.MemberWindow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.MemberWindow
	for _, m := range s.members {
		if !m.ExpiresAt.Before(from) && !m.ExpiresAt.After(through) {
			out = append(out, models.MemberWindow{ID: m.ID, FullName: m.FullName, RegisteredAt: m.RegisteredAt, ExpiresAt: m.ExpiresAt})
		}
	}
	return out, nil
}

func (s *memStore) UpdateMember(_ context.Context, _ repositories.SQLExecutor, m *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[m.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.members[m.ID] = *m
	return nil
}

func (s *memStore) AttachCredentials(_ context.Context, _ repositories.SQLExecutor, id int64, username, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[id]
	if !ok || m.Username != nil || s.attachConflicts {
		return repositories.ErrConflict
	}
	for _, other := range s.members {
		if other.Username != nil && *other.Username == username {
			return fmt.Errorf("%w: dup (constraint: %s)", repositories.ErrDuplicateKey, repositories.ConstraintMemberUsername)
		}
	}
	m.Username, m.PasswordHash = &username, &hash
	s.members[id] = m
	return nil
}

func (s *memStore) DeleteMember(_ context.Context, _ repositories.SQLExecutor, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.members, id)
	return nil
}

func (s *memStore) CountMembers(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.members), nil
}

func (s *memStore) CountByWindow(_ context.Context, activeFrom, expiringThrough time.Time) (total, active, expiring int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		total++
		if m.ExpiresAt.Before(activeFrom) {
			continue
		}
		active++
		if !m.ExpiresAt.After(expiringThrough) {
			expiring++
		}
	}
	return total, active, expiring, nil
}

func (s *memStore) CountRegistrationsByMonth(_ context.Context, from time.Time) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]int{}
	for _, m := range s.members {
		if !m.RegisteredAt.Before(from) {
			out[m.RegisteredAt.Format("2006-01")]++
		}
	}
	return out, nil
}

// --- admins ---

func (s *memStore) CreateAdmin(_ context.Context, _ repositories.SQLExecutor, a *models.AdminUser) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	s.admins[a.ID] = *a
	return a.ID, nil
}

func (s *memStore) FindAdminByUsername(_ context.Context, username string) (*models.AdminUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if a.Username == username {
			out := a
			return &out, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *memStore) FindAdminByID(_ context.Context, id int64) (*models.AdminUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.admins[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &a, nil
}

func (s *memStore) CountAdmins(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.admins), nil
}

// --- inventory ---

func (s *memStore) CreateItem(_ context.Context, _ repositories.SQLExecutor, item *models.InventoryItem) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = s.id()
	item.Quantity = 0
	s.items[item.ID] = *item
	return item.ID, nil
}

func (s *memStore) GetItemByID(_ context.Context, _ repositories.SQLExecutor, id int64) (*models.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok || item.ArchivedAt != nil {
		return nil, repositories.ErrNotFound
	}
	return &item, nil
}

func (s *memStore) GetItems(context.Context, models.InventoryFilter) ([]models.InventoryItem, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.InventoryItem
	for _, item := range s.items {
		if item.ArchivedAt == nil {
			out = append(out, item)
		}
	}
	return out, len(out), nil
}

func (s *memStore) GetCategories(context.Context) ([]string, error) {
	return nil, nil
}

func (s *memStore) UpdateItemDetails(_ context.Context, _ repositories.SQLExecutor, item *models.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.items[item.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	item.Quantity = current.Quantity
	s.items[item.ID] = *item
	return nil
}

func (s *memStore) SetQuantity(_ context.Context, _ repositories.SQLExecutor, id int64, expected, next int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conflicts > 0 {
		s.conflicts--
		return repositories.ErrConflict
	}
	item, ok := s.items[id]
	if !ok || item.Quantity != expected {
		return repositories.ErrConflict
	}
	item.Quantity = next
	s.items[id] = item
	return nil
}

func (s *memStore) ArchiveItem(_ context.Context, _ repositories.SQLExecutor, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok || item.ArchivedAt != nil {
		return repositories.ErrNotFound
	}
	now := time.Now()
	item.ArchivedAt = &now
	s.items[id] = item
	return nil
}

func (s *memStore) GetLedgerTotals(context.Context) ([]models.LedgerTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sums := map[int64]int{}
	for _, m := range s.movements {
		sums[m.ItemID] += m.Delta()
	}
	var out []models.LedgerTotal
	for _, item := range s.items {
		out = append(out, models.LedgerTotal{ItemID: item.ID, ItemName: item.Name, Quantity: item.Quantity, LedgerSum: sums[item.ID]})
	}
	return out, nil
}

func (s *memStore) GetInventoryStatistics(context.Context) (models.InventoryStatistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var stats models.InventoryStatistics
	for _, item := range s.items {
		if item.ArchivedAt != nil {
			continue
		}
		stats.Items++
		stats.UnitsOnHand += item.Quantity
		stats.StockValue = stats.StockValue.Add(item.PurchasePrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		if item.Quantity == 0 {
			stats.OutOfStock++
		}
	}
	return stats, nil
}

func (s *memStore) CreateMovement(_ context.Context, _ repositories.SQLExecutor, m *models.StockMovement) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.movementErr != nil {
		return 0, s.movementErr
	}
	m.ID = s.id()
	s.movements = append(s.movements, *m)
	return m.ID, nil
}

func (s *memStore) GetMovements(_ context.Context, f models.MovementFilter) ([]models.StockMovement, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.StockMovement
	for i := len(s.movements) - 1; i >= 0; i-- {
		m := s.movements[i]
		if f.ItemID != nil && m.ItemID != *f.ItemID {
			continue
		}
		if f.Direction != nil && m.Direction != *f.Direction {
			continue
		}
		out = append(out, m)
	}
	return out, len(out), nil
}

// --- trainers ---

func (s *memStore) CreateTrainer(_ context.Context, _ repositories.SQLExecutor, t *models.Trainer) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id()
	s.trainers[t.ID] = *t
	return t.ID, nil
}

func (s *memStore) GetTrainerByID(_ context.Context, id int64) (*models.Trainer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trainers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &t, nil
}

func (s *memStore) GetTrainers(context.Context) ([]models.Trainer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Trainer
	for _, t := range s.trainers {
		out = append(out, t)
	}
	return out, nil
}

func (s *memStore) DeleteTrainer(_ context.Context, _ repositories.SQLExecutor, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trainers[id]; !ok {
		return repositories.ErrNotFound
	}
	for _, b := range s.bookings {
		if b.TrainerID == id {
			return repositories.ErrForeignKey
		}
	}
	delete(s.trainers, id)
	return nil
}

// --- bookings ---

func (s *memStore) CreateBooking(_ context.Context, _ repositories.SQLExecutor, b *models.Booking) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.id()
	s.bookings[b.ID] = *b
	return b.ID, nil
}

func (s *memStore) GetBookingByID(_ context.Context, id int64) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &b, nil
}

func (s *memStore) GetBookings(_ context.Context, f models.BookingFilter) ([]models.Booking, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if f.MemberID != nil && b.MemberID != *f.MemberID {
			continue
		}
		if f.Status != nil && b.Status != *f.Status {
			continue
		}
		out = append(out, b)
	}
	return out, len(out), nil
}

func (s *memStore) TransitionStatus(_ context.Context, _ repositories.SQLExecutor, id int64, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.Status != from {
		return repositories.ErrConflict
	}
	now := time.Now()
	b.Status, b.DecidedAt = to, &now
	s.bookings[id] = b
	return nil
}

func (s *memStore) DeleteBooking(_ context.Context, _ repositories.SQLExecutor, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.bookings, id)
	return nil
}

func (s *memStore) CountByStatus(_ context.Context, status string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.bookings {
		if b.Status == status {
			n++
		}
	}
	return n, nil
}

// --- testimonials ---

func (s *memStore) CreateTestimonial(_ context.Context, _ repositories.SQLExecutor, t *models.Testimonial) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	s.testimonials[t.ID] = *t
	return t.ID, nil
}

func (s *memStore) GetTestimonials(_ context.Context, f models.TestimonialFilter) ([]models.Testimonial, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Testimonial
	for _, t := range s.testimonials {
		if f.Rating != nil && t.Rating != *f.Rating {
			continue
		}
		out = append(out, t)
	}
	return out, len(out), nil
}

func (s *memStore) DeleteTestimonial(_ context.Context, _ repositories.SQLExecutor, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.testimonials[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.testimonials, id)
	return nil
}

func (s *memStore) CountSince(_ context.Context, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.testimonials {
		if !t.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *memStore) CountByRating(context.Context) (map[int]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, t := range s.testimonials {
		out[t.Rating]++
	}
	return out, nil
}

// --- notes ---

func (s *memStore) CreateNote(_ context.Context, _ repositories.SQLExecutor, n *models.Note) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = s.id()
	s.notes[n.ID] = *n
	return n.ID, nil
}

func (s *memStore) GetNotes(context.Context) ([]models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Note
	for _, n := range s.notes {
		out = append(out, n)
	}
	return out, nil
}

func (s *memStore) DeleteNote(_ context.Context, _ repositories.SQLExecutor, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.notes, id)
	return nil
}

var (
	_ repositories.MemberRepository        = (*memStore)(nil)
	_ repositories.AuthRepository          = (*memStore)(nil)
	_ repositories.InventoryRepository     = (*memStore)(nil)
	_ repositories.StockMovementRepository = (*memStore)(nil)
	_ repositories.TrainerRepository       = (*memStore)(nil)
	_ repositories.BookingRepository       = (*memStore)(nil)
	_ repositories.TestimonialRepository   = (*memStore)(nil)
	_ repositories.NoteRepository          = (*memStore)(nil)
	_ repositories.TxRunner                = (*memStore)(nil)
)
