package services

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

type fakeMaterials struct {
	mu        sync.Mutex
	nextID    int
	items     map[int]models.Material
	movements []models.StockMovement
}

func newFakeMaterials(items ...models.Material) *fakeMaterials {
	f := &fakeMaterials{items: map[int]models.Material{}}
	for _, m := range items {
		if m.ID > f.nextID {
			f.nextID = m.ID
		}
		f.items[m.ID] = m
	}
	return f
}

func (f *fakeMaterials) Create(_ context.Context, m *models.Material) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.items {
		if m.Code != "" && existing.Code == m.Code {
			return apperr.New(apperr.CodeConflict, "Registro duplicado")
		}
	}
	f.nextID++
	m.ID = f.nextID
	f.items[m.ID] = *m
	return nil
}

func (f *fakeMaterials) Get(_ context.Context, id int) (*models.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.items[id]
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "Material não encontrado")
	}
	return &m, nil
}

func (f *fakeMaterials) GetByCode(_ context.Context, code string) (*models.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.items {
		if m.Code == code {
			return &m, nil
		}
	}
	return nil, apperr.New(apperr.CodeNotFound, "Material não encontrado")
}

func (f *fakeMaterials) List(_ context.Context) ([]models.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Material, 0, len(f.items))
	for _, m := range f.items {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeMaterials) Update(_ context.Context, m *models.Material) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[m.ID]; !ok {
		return apperr.New(apperr.CodeNotFound, "Material não encontrado")
	}
	f.items[m.ID] = *m
	return nil
}

func (f *fakeMaterials) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return apperr.New(apperr.CodeNotFound, "Material não encontrado")
	}
	delete(f.items, id)
	return nil
}

func (f *fakeMaterials) Decrement(_ context.Context, id int, qty decimal.Decimal, userID int, note string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.items[id]
	if !ok {
		return decimal.Zero, apperr.New(apperr.CodeNotFound, "Material não encontrado")
	}
	if !m.CurrentStock.Valid || m.CurrentStock.Decimal.LessThan(qty) {
		var current any
		if m.CurrentStock.Valid {
			current = m.CurrentStock.Decimal
		}
		return decimal.Zero, apperr.New(apperr.CodeInsufficientStock, "Estoque insuficiente").
			WithDetails(map[string]any{"estoque_atual": current})
	}
	remaining := m.CurrentStock.Decimal.Sub(qty)
	m.CurrentStock = decimal.NewNullDecimal(remaining)
	f.items[id] = m
	f.movements = append(f.movements, models.StockMovement{
		ID: len(f.movements) + 1, MaterialID: id, Quantity: qty, ResultingStock: remaining,
		UserID: userID, Note: note,
	})
	return remaining, nil
}

func (f *fakeMaterials) Movements(_ context.Context, materialID int) ([]models.StockMovement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.StockMovement
	for i := len(f.movements) - 1; i >= 0; i-- {
		if f.movements[i].MaterialID == materialID {
			out = append(out, f.movements[i])
		}
	}
	return out, nil
}

type fakeDocs struct {
	objects map[string][]byte
	deleted []string
	putErr  error
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{objects: map[string][]byte{}}
}

func (f *fakeDocs) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeDocs) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeDocs) PresignGet(_ context.Context, key, filename string, _ time.Duration) (string, error) {
	return "https://bucket.example/" + key + "?name=" + filename, nil
}

type fakeCache struct {
	data        map[string]any
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]any{}}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, dest any) bool {
	v, ok := c.data[key]
	if !ok {
		return false
	}
	switch d := dest.(type) {
	case *models.MaterialStats:
		*d = v.(models.MaterialStats)
	case *models.StockValue:
		*d = v.(models.StockValue)
	default:
		return false
	}
	return true
}

func (c *fakeCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) {
	c.data[key] = value
}

func (c *fakeCache) InvalidatePattern(_ context.Context, pattern string) {
	c.invalidated = append(c.invalidated, pattern)
	c.data = map[string]any{}
}

type countingNotifier struct{ n int }

func (c *countingNotifier) Trigger() { c.n++ }

type fakeEquipment struct {
	items map[int]models.Equipment
	next  int
}

func newFakeEquipment(items ...models.Equipment) *fakeEquipment {
	f := &fakeEquipment{items: map[int]models.Equipment{}}
	for _, e := range items {
		f.items[e.ID] = e
		if e.ID > f.next {
			f.next = e.ID
		}
	}
	return f
}

func (f *fakeEquipment) Create(_ context.Context, e *models.Equipment) error {
	f.next++
	e.ID = f.next
	f.items[e.ID] = *e
	return nil
}

func (f *fakeEquipment) Get(_ context.Context, id int) (*models.Equipment, error) {
	e, ok := f.items[id]
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "Equipamento não encontrado")
	}
	return &e, nil
}

func (f *fakeEquipment) List(_ context.Context) ([]models.Equipment, error) {
	out := make([]models.Equipment, 0, len(f.items))
	for _, e := range f.items {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEquipment) Update(_ context.Context, e *models.Equipment) error {
	if _, ok := f.items[e.ID]; !ok {
		return apperr.New(apperr.CodeNotFound, "Equipamento não encontrado")
	}
	f.items[e.ID] = *e
	return nil
}

func (f *fakeEquipment) Delete(_ context.Context, id int) error {
	if _, ok := f.items[id]; !ok {
		return apperr.New(apperr.CodeNotFound, "Equipamento não encontrado")
	}
	delete(f.items, id)
	return nil
}

func (f *fakeEquipment) Exists(_ context.Context, id int) (bool, error) {
	_, ok := f.items[id]
	return ok, nil
}

type fakeMaintenance struct {
	items map[int]models.Maintenance
	next  int
}

func newFakeMaintenance(items ...models.Maintenance) *fakeMaintenance {
	f := &fakeMaintenance{items: map[int]models.Maintenance{}}
	for _, m := range items {
		f.items[m.ID] = m
		if m.ID > f.next {
			f.next = m.ID
		}
	}
	return f
}

func (f *fakeMaintenance) Create(_ context.Context, m *models.Maintenance) error {
	f.next++
	m.ID = f.next
	f.items[m.ID] = *m
	return nil
}

func (f *fakeMaintenance) Get(_ context.Context, id int) (*models.Maintenance, error) {
	m, ok := f.items[id]
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "Manutenção não encontrada")
	}
	return &m, nil
}

func (f *fakeMaintenance) List(_ context.Context) ([]models.Maintenance, error) {
	out := make([]models.Maintenance, 0, len(f.items))
	for _, m := range f.items {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeMaintenance) Update(_ context.Context, m *models.Maintenance) (bool, error) {
	existing, ok := f.items[m.ID]
	if !ok || existing.Status == models.MaintenanceCompleted {
		return false, nil
	}
	f.items[m.ID] = *m
	return true, nil
}

func (f *fakeMaintenance) Complete(_ context.Context, id int, cost decimal.NullDecimal, notes string, performed time.Time) (bool, error) {
	m, ok := f.items[id]
	if !ok || m.Status != models.MaintenanceScheduled {
		return false, nil
	}
	m.Status = models.MaintenanceCompleted
	m.PerformedDate = models.NullDate{Date: models.DateFromTime(performed), Valid: true}
	if cost.Valid {
		m.Cost = cost
	}
	if notes != "" {
		m.Notes = notes
	}
	f.items[id] = m
	return true, nil
}

func (f *fakeMaintenance) Delete(_ context.Context, id int) (bool, error) {
	m, ok := f.items[id]
	if !ok || m.Status != models.MaintenanceScheduled {
		return false, nil
	}
	delete(f.items, id)
	return true, nil
}

type fakeUsers struct {
	byID map[int]*models.User
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{byID: map[int]*models.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Get(_ context.Context, id int) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "Usuário não encontrado")
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, apperr.New(apperr.CodeNotFound, "Usuário não encontrado")
}

func (f *fakeUsers) SetTOTPSecret(_ context.Context, id int, secret string) error {
	f.byID[id].TOTPSecret = secret
	f.byID[id].TOTPEnabled = false
	return nil
}

func (f *fakeUsers) EnableTOTP(_ context.Context, id int) error {
	f.byID[id].TOTPEnabled = true
	return nil
}

func (f *fakeUsers) UpsertPassword(_ context.Context, u *models.User) error {
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			existing.PasswordHash = u.PasswordHash
			u.ID = existing.ID
			return nil
		}
	}
	u.ID = len(f.byID) + 1
	c := *u
	f.byID[u.ID] = &c
	return nil
}
