package handlers

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"lab-backend/internal/apperr"
	"lab-backend/internal/models"
)

var testToday = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func fixedToday() time.Time { return testToday }

type memMaterials struct {
	mu    sync.Mutex
	next  int
	items map[int]models.Material
	moves []models.StockMovement
}

func newMemMaterials(items ...models.Material) *memMaterials {
	s := &memMaterials{items: map[int]models.Material{}}
	for _, m := range items {
		s.items[m.ID] = m
		if m.ID > s.next {
			s.next = m.ID
		}
	}
	return s
}

func (s *memMaterials) Create(_ context.Context, m *models.Material) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	m.ID = s.next
	s.items[m.ID] = *m
	return nil
}

func (s *memMaterials) Get(_ context.Context, id int) (*models.Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.items[id]
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "Material não encontrado")
	}
	return &m, nil
}

func (s *memMaterials) GetByCode(_ context.Context, code string) (*models.Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.items {
		if m.Code == code {
			return &m, nil
		}
	}
	return nil, apperr.New(apperr.CodeNotFound, "Material não encontrado")
}

func (s *memMaterials) List(_ context.Context) ([]models.Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Material, 0, len(s.items))
	for _, m := range s.items {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memMaterials) Update(_ context.Context, m *models.Material) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[m.ID]; !ok {
		return apperr.New(apperr.CodeNotFound, "Material não encontrado")
	}
	s.items[m.ID] = *m
	return nil
}

func (s *memMaterials) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *memMaterials) Decrement(_ context.Context, id int, qty decimal.Decimal, userID int, note string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.items[id]
	if !ok {
		return decimal.Zero, apperr.New(apperr.CodeNotFound, "Material não encontrado")
	}
	if !m.CurrentStock.Valid || m.CurrentStock.Decimal.LessThan(qty) {
		return decimal.Zero, apperr.New(apperr.CodeInsufficientStock, "Estoque insuficiente").
			WithDetails(map[string]any{"estoque_atual": m.CurrentStock.Decimal})
	}
	left := m.CurrentStock.Decimal.Sub(qty)
	m.CurrentStock = decimal.NewNullDecimal(left)
	s.items[id] = m
	s.moves = append(s.moves, models.StockMovement{ID: len(s.moves) + 1, MaterialID: id, Quantity: qty, ResultingStock: left, UserID: userID, Note: note})
	return left, nil
}

func (s *memMaterials) Movements(_ context.Context, id int) ([]models.StockMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.StockMovement{}
	for i := len(s.moves) - 1; i >= 0; i-- {
		if s.moves[i].MaterialID == id {
			out = append(out, s.moves[i])
		}
	}
	return out, nil
}

type memDocs struct {
	objects map[string][]byte
}

func newMemDocs() *memDocs { return &memDocs{objects: map[string][]byte{}} }

func (d *memDocs) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	d.objects[key] = data
	return nil
}

func (d *memDocs) Delete(_ context.Context, key string) error {
	delete(d.objects, key)
	return nil
}

func (d *memDocs) PresignGet(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://docs.example/" + key, nil
}

type memEquipment struct {
	items map[int]models.Equipment
	next  int
}

func newMemEquipment(items ...models.Equipment) *memEquipment {
	s := &memEquipment{items: map[int]models.Equipment{}}
	for _, e := range items {
		s.items[e.ID] = e
		if e.ID > s.next {
			s.next = e.ID
		}
	}
	return s
}

func (s *memEquipment) Create(_ context.Context, e *models.Equipment) error {
	s.next++
	e.ID = s.next
	s.items[e.ID] = *e
	return nil
}

func (s *memEquipment) Get(_ context.Context, id int) (*models.Equipment, error) {
	e, ok := s.items[id]
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "Equipamento não encontrado")
	}
	return &e, nil
}

func (s *memEquipment) List(_ context.Context) ([]models.Equipment, error) {
	out := make([]models.Equipment, 0, len(s.items))
	for _, e := range s.items {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memEquipment) Update(_ context.Context, e *models.Equipment) error {
	s.items[e.ID] = *e
	return nil
}

func (s *memEquipment) Delete(_ context.Context, id int) error {
	delete(s.items, id)
	return nil
}

func (s *memEquipment) Exists(_ context.Context, id int) (bool, error) {
	_, ok := s.items[id]
	return ok, nil
}

type memMaintenance struct {
	items map[int]models.Maintenance
	next  int
}

func newMemMaintenance(items ...models.Maintenance) *memMaintenance {
	s := &memMaintenance{items: map[int]models.Maintenance{}}
	for _, m := range items {
		s.items[m.ID] = m
		if m.ID > s.next {
			s.next = m.ID
		}
	}
	return s
}

func (s *memMaintenance) Create(_ context.Context, m *models.Maintenance) error {
	s.next++
	m.ID = s.next
	s.items[m.ID] = *m
	return nil
}

func (s *memMaintenance) Get(_ context.Context, id int) (*models.Maintenance, error) {
	m, ok := s.items[id]
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "Manutenção não encontrada")
	}
	return &m, nil
}

func (s *memMaintenance) List(_ context.Context) ([]models.Maintenance, error) {
	out := make([]models.Maintenance, 0, len(s.items))
	for _, m := range s.items {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memMaintenance) Update(_ context.Context, m *models.Maintenance) (bool, error) {
	cur, ok := s.items[m.ID]
	if !ok || cur.Status == models.MaintenanceCompleted {
		return false, nil
	}
	s.items[m.ID] = *m
	return true, nil
}

func (s *memMaintenance) Complete(_ context.Context, id int, cost decimal.NullDecimal, notes string, performed time.Time) (bool, error) {
	m, ok := s.items[id]
	if !ok || m.Status != models.MaintenanceScheduled {
		return false, nil
	}
	m.Status = models.MaintenanceCompleted
	m.PerformedDate = models.NewNullDate(models.DateFromTime(performed))
	m.Cost = cost
	m.Notes = notes
	s.items[id] = m
	return true, nil
}

func (s *memMaintenance) Delete(_ context.Context, id int) (bool, error) {
	m, ok := s.items[id]
	if !ok || m.Status != models.MaintenanceScheduled {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

type memUsers struct {
	byID map[int]*models.User
}

func newMemUsers(users ...*models.User) *memUsers {
	s := &memUsers{byID: map[int]*models.User{}}
	for _, u := range users {
		s.byID[u.ID] = u
	}
	return s
}

func (s *memUsers) Get(_ context.Context, id int) (*models.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "Usuário não encontrado")
	}
	cp := *u
	return &cp, nil
}

func (s *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.CodeNotFound, "Usuário não encontrado")
}

func (s *memUsers) SetTOTPSecret(_ context.Context, id int, secret string) error {
	s.byID[id].TOTPSecret = secret
	return nil
}

func (s *memUsers) EnableTOTP(_ context.Context, id int) error {
	s.byID[id].TOTPEnabled = true
	return nil
}

func (s *memUsers) UpsertPassword(_ context.Context, u *models.User) error {
	s.byID[u.ID] = u
	return nil
}
