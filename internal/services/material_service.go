package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"lab-backend/internal/apperr"
	"lab-backend/internal/cache"
	"lab-backend/internal/catalog"
	"lab-backend/internal/logger"
	"lab-backend/internal/metrics"
	"lab-backend/internal/models"
	"lab-backend/internal/storage"
	"lab-backend/internal/timeutil"
)

const (
	DefaultMaxUploadBytes = 10 << 20
	FISPQLinkTTL          = 15 * time.Minute
	statsTTL              = 60 * time.Second
)

const (
	MsgMaterialCreated = "Material inserido com sucesso!"
	MsgMaterialUpdated = "Material atualizado com sucesso!"
	MsgMaterialDeleted = "Material excluído com sucesso!"
	MsgBaixaRecorded   = "Baixa registrada com sucesso!"
)

// Upload is a FISPQ file received with a material form.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type MaterialService struct {
	Repo           MaterialStore
	Docs           DocumentStore
	Cache          Cache
	Notifier       StockNotifier
	Metrics        *metrics.Metrics
	Log            *logger.Logger
	MaxUploadBytes int64
	Today          func() time.Time
	Now            func() time.Time
}

// NewMaterialService wires the service. docs may be nil when no bucket is
// configured; uploads are then rejected.
func NewMaterialService(repo MaterialStore, docs DocumentStore, c Cache, log *logger.Logger) *MaterialService {
	if c == nil {
		c = noCache{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &MaterialService{
		Repo:           repo,
		Docs:           docs,
		Cache:          c,
		Log:            log,
		MaxUploadBytes: DefaultMaxUploadBytes,
		Today:          timeutil.Today,
		Now:            timeutil.Now,
	}
}

func (s *MaterialService) view(m models.Material, today time.Time) models.MaterialView {
	v := catalog.Annotate(m, today)
	if m.HasFISPQ() {
		v.FISPQURL = fmt.Sprintf("/materiais/%d/fispq", m.ID)
	}
	return v
}

// List applies q to every material, annotated with its status as of today.
func (s *MaterialService) List(ctx context.Context, q catalog.MaterialQuery) ([]models.MaterialView, error) {
	items, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	today := s.Today()
	views := catalog.ApplyMaterials(items, q, today)
	for i := range views {
		if views[i].HasFISPQ() {
			views[i].FISPQURL = fmt.Sprintf("/materiais/%d/fispq", views[i].ID)
		}
	}
	return views, nil
}

func (s *MaterialService) Get(ctx context.Context, id int) (*models.MaterialView, error) {
	m, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	v := s.view(*m, s.Today())
	return &v, nil
}

func (s *MaterialService) GetByCode(ctx context.Context, code string) (*models.MaterialView, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.New(apperr.CodeValidation, "Código obrigatório")
	}
	m, err := s.Repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	v := s.view(*m, s.Today())
	return &v, nil
}

// Create stores a new material. Current stock defaults to the registered
// quantity. A FISPQ upload failure rolls the insert back.
func (s *MaterialService) Create(ctx context.Context, req models.MaterialRequest, doc *Upload) (int, error) {
	if err := validateMaterialRequest(req); err != nil {
		return 0, err
	}
	if err := s.checkUpload(doc); err != nil {
		return 0, err
	}

	m := materialFromRequest(req)
	if !m.CurrentStock.Valid {
		m.CurrentStock = decimal.NewNullDecimal(m.Quantity)
	}
	if err := s.Repo.Create(ctx, &m); err != nil {
		return 0, err
	}

	if doc != nil {
		if err := s.attach(ctx, &m, doc); err != nil {
			if delErr := s.Repo.Delete(ctx, m.ID); delErr != nil {
				s.Log.Error(ctx, "rollback material after upload failure", delErr)
			}
			return 0, err
		}
		if err := s.Repo.Update(ctx, &m); err != nil {
			return 0, err
		}
	}

	s.invalidate(ctx)
	return m.ID, nil
}

// Update rewrites a material. Omitted stock keeps the stored value; a new
// FISPQ replaces the previous object.
func (s *MaterialService) Update(ctx context.Context, id int, req models.MaterialRequest, doc *Upload) error {
	if err := validateMaterialRequest(req); err != nil {
		return err
	}
	if err := s.checkUpload(doc); err != nil {
		return err
	}
	existing, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}

	m := materialFromRequest(req)
	m.ID = id
	if !req.CurrentStock.Valid {
		m.CurrentStock = existing.CurrentStock
	}
	m.FISPQName = existing.FISPQName
	m.FISPQKey = existing.FISPQKey

	if doc != nil {
		if err := s.attach(ctx, &m, doc); err != nil {
			return err
		}
	}
	if err := s.Repo.Update(ctx, &m); err != nil {
		return err
	}
	if doc != nil && existing.HasFISPQ() && existing.FISPQKey != m.FISPQKey {
		s.dropDocument(ctx, existing.FISPQKey)
	}

	s.invalidate(ctx)
	return nil
}

func (s *MaterialService) Delete(ctx context.Context, id int) error {
	existing, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	if existing.HasFISPQ() {
		s.dropDocument(ctx, existing.FISPQKey)
	}
	s.invalidate(ctx)
	return nil
}

// Baixa withdraws qty from the material's current stock. The repository
// applies the stock check atomically; this layer only rejects non-positive
// quantities up front.
func (s *MaterialService) Baixa(ctx context.Context, id, userID int, req models.BaixaRequest) (*models.BaixaResult, error) {
	if !req.Quantity.Valid || !req.Quantity.Decimal.IsPositive() {
		s.Metrics.IncBaixa(string(apperr.CodeValidation))
		return nil, apperr.New(apperr.CodeValidation, "Quantidade deve ser maior que zero").
			WithDetails(map[string]any{"quantidade": "deve ser maior que zero"})
	}

	stock, err := s.Repo.Decrement(ctx, id, req.Quantity.Decimal, userID, strings.TrimSpace(req.Note))
	if err != nil {
		outcome := string(apperr.CodeInternal)
		if typed := apperr.As(err); typed != nil {
			outcome = string(typed.Code())
		}
		s.Metrics.IncBaixa(outcome)
		return nil, err
	}
	s.Metrics.IncBaixa("ok")

	s.invalidate(ctx)
	if s.Notifier != nil {
		s.Notifier.Trigger()
	}
	return &models.BaixaResult{Message: MsgBaixaRecorded, MaterialID: id, CurrentStock: stock}, nil
}

func (s *MaterialService) Movements(ctx context.Context, id int) ([]models.StockMovement, error) {
	if _, err := s.Repo.Get(ctx, id); err != nil {
		return nil, err
	}
	movements, err := s.Repo.Movements(ctx, id)
	if err != nil {
		return nil, err
	}
	if movements == nil {
		movements = []models.StockMovement{}
	}
	return movements, nil
}

func (s *MaterialService) Expired(ctx context.Context) ([]models.MaterialView, error) {
	return s.List(ctx, catalog.MaterialQuery{Mode: catalog.FilterExpired})
}

// Stats counts materials by derived status. Results are cached per day.
func (s *MaterialService) Stats(ctx context.Context) (*models.MaterialStats, error) {
	today := s.Today()
	key := cache.MaterialStatsKey + ":" + today.Format(timeutil.DateLayout)

	var stats models.MaterialStats
	if s.Cache.GetJSON(ctx, key, &stats) {
		s.Metrics.CacheLookup(cache.MaterialStatsKey, true)
		return &stats, nil
	}
	s.Metrics.CacheLookup(cache.MaterialStatsKey, false)

	items, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	stats = catalog.Stats(items, today)
	s.Cache.SetJSON(ctx, key, stats, statsTTL)
	return &stats, nil
}

func (s *MaterialService) StockValue(ctx context.Context) (*models.StockValue, error) {
	var value models.StockValue
	if s.Cache.GetJSON(ctx, cache.StockValueKey, &value) {
		s.Metrics.CacheLookup(cache.StockValueKey, true)
		return &value, nil
	}
	s.Metrics.CacheLookup(cache.StockValueKey, false)

	items, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	value = catalog.StockValue(items)
	s.Cache.SetJSON(ctx, cache.StockValueKey, value, statsTTL)
	return &value, nil
}

// Alerts lists materials that are expired, critical or low on stock.
func (s *MaterialService) Alerts(ctx context.Context) ([]models.StockAlert, error) {
	items, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	alerts := catalog.Alerts(items, s.Today(), s.Now())
	if alerts == nil {
		alerts = []models.StockAlert{}
	}
	return alerts, nil
}

// FISPQURL returns a short-lived download link for the material's FISPQ.
func (s *MaterialService) FISPQURL(ctx context.Context, id int) (string, error) {
	m, err := s.Repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !m.HasFISPQ() {
		return "", apperr.New(apperr.CodeNotFound, "FISPQ não encontrada")
	}
	if s.Docs == nil {
		return "", apperr.New(apperr.CodeDependency, "Armazenamento de documentos não configurado")
	}
	url, err := s.Docs.PresignGet(ctx, m.FISPQKey, m.FISPQName, FISPQLinkTTL)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeDependency, err, "presign fispq")
	}
	return url, nil
}

func (s *MaterialService) checkUpload(doc *Upload) error {
	if doc == nil {
		return nil
	}
	if s.Docs == nil {
		return apperr.New(apperr.CodeDependency, "Armazenamento de documentos não configurado")
	}
	limit := s.MaxUploadBytes
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}
	if doc.Size > limit {
		return apperr.New(apperr.CodeValidation, "Arquivo FISPQ muito grande").
			WithDetails(map[string]any{"fispq": fmt.Sprintf("máximo %d MB", limit>>20)})
	}
	if !isPDF(doc) {
		return apperr.New(apperr.CodeValidation, "FISPQ deve ser um arquivo PDF").
			WithDetails(map[string]any{"fispq": "apenas PDF"})
	}
	return nil
}

func (s *MaterialService) attach(ctx context.Context, m *models.Material, doc *Upload) error {
	key := storage.NewFISPQKey(m.ID, doc.Filename)
	if err := s.Docs.Put(ctx, key, doc.Body, doc.Size, "application/pdf"); err != nil {
		return apperr.Wrap(apperr.CodeDependency, err, "upload fispq")
	}
	m.FISPQKey = key
	m.FISPQName = filepath.Base(doc.Filename)
	return nil
}

func (s *MaterialService) dropDocument(ctx context.Context, key string) {
	if s.Docs == nil {
		return
	}
	if err := s.Docs.Delete(ctx, key); err != nil {
		s.Log.Error(s.Log.WithField(ctx, "key", key), "delete fispq object", err)
	}
}

func (s *MaterialService) invalidate(ctx context.Context) {
	s.Cache.InvalidatePattern(ctx, cache.MaterialPattern)
}

func isPDF(doc *Upload) bool {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(doc.ContentType, ";", 2)[0]))
	if ct == "application/pdf" {
		return true
	}
	return strings.EqualFold(filepath.Ext(doc.Filename), ".pdf") &&
		(ct == "" || ct == "application/octet-stream")
}

func validateMaterialRequest(req models.MaterialRequest) error {
	details := map[string]string{}
	if !req.Quantity.Valid {
		details["quantidade"] = "obrigatório"
	} else if req.Quantity.Decimal.IsNegative() {
		details["quantidade"] = "não pode ser negativo"
	}
	if !req.Price.Valid {
		details["preco"] = "obrigatório"
	} else if req.Price.Decimal.IsNegative() {
		details["preco"] = "não pode ser negativo"
	}
	if req.CurrentStock.Valid && req.CurrentStock.Decimal.IsNegative() {
		details["estoque_atual"] = "não pode ser negativo"
	}
	if req.MinimumStock.Valid && req.MinimumStock.Decimal.IsNegative() {
		details["estoque_minimo"] = "não pode ser negativo"
	}
	if len(details) == 0 {
		return nil
	}
	names := make([]string, 0, len(details))
	for _, f := range []string{"quantidade", "preco", "estoque_atual", "estoque_minimo"} {
		if _, ok := details[f]; ok {
			names = append(names, f)
		}
	}
	return apperr.New(apperr.CodeValidation, "Campos inválidos: "+strings.Join(names, ", ")).WithDetails(details)
}

func materialFromRequest(req models.MaterialRequest) models.Material {
	return models.Material{
		Name:         strings.TrimSpace(req.Name),
		Type:         strings.TrimSpace(req.Type),
		Manufacturer: strings.TrimSpace(req.Manufacturer),
		Quantity:     req.Quantity.Decimal,
		Unit:         strings.TrimSpace(req.Unit),
		CurrentStock: req.CurrentStock,
		MinimumStock: req.MinimumStock,
		Expiry:       req.Expiry,
		Price:        req.Price,
		Code:         strings.TrimSpace(req.Code),
	}
}
