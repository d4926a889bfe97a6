package labclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"lab-backend/internal/models"
	"lab-backend/internal/timeutil"
)

// MaterialFilter mirrors the list query parameters of /materiais.
type MaterialFilter struct {
	Search string
	Mode   string
	Type   string
	Sort   string
}

func (f MaterialFilter) values() url.Values {
	v := url.Values{}
	setIf(v, "busca", f.Search)
	setIf(v, "filtro", f.Mode)
	setIf(v, "tipo", f.Type)
	setIf(v, "ordenar", f.Sort)
	return v
}

type EquipmentFilter struct {
	Search   string
	Status   string
	Category string
	Sort     string
}

type MaintenanceFilter struct {
	Search      string
	Status      string
	Type        string
	EquipmentID int
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

// Attachment is a FISPQ PDF sent along with a material.
type Attachment struct {
	Filename string
	Body     io.Reader
}

// Login authenticates and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, email, password, totpCode string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	in := models.LoginRequest{Email: email, Password: password, TOTPCode: totpCode}
	if err := c.doJSON(ctx, http.MethodPost, "/login", nil, in, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.doJSON(ctx, http.MethodGet, "/usuarios/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Materials

func (c *Client) ListMaterials(ctx context.Context, f MaterialFilter) ([]models.MaterialView, error) {
	var items []models.MaterialView
	err := c.doJSON(ctx, http.MethodGet, "/materiais", f.values(), nil, &items)
	return items, err
}

func (c *Client) GetMaterial(ctx context.Context, id int) (*models.MaterialView, error) {
	var m models.MaterialView
	if err := c.doJSON(ctx, http.MethodGet, "/materiais/"+strconv.Itoa(id), nil, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) GetMaterialByCode(ctx context.Context, code string) (*models.MaterialView, error) {
	var m models.MaterialView
	if err := c.doJSON(ctx, http.MethodGet, "/materiais/codigo/"+url.PathEscape(code), nil, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMaterial sends JSON, or a multipart form when doc is non-nil.
func (c *Client) CreateMaterial(ctx context.Context, req models.MaterialRequest, doc *Attachment) (int, error) {
	var msg models.MessageResponse
	if err := c.sendMaterial(ctx, http.MethodPost, "/materiais", req, doc, &msg); err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (c *Client) UpdateMaterial(ctx context.Context, id int, req models.MaterialRequest, doc *Attachment) error {
	return c.sendMaterial(ctx, http.MethodPut, "/materiais/"+strconv.Itoa(id), req, doc, nil)
}

func (c *Client) DeleteMaterial(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodDelete, "/materiais/"+strconv.Itoa(id), nil, nil, nil)
}

func (c *Client) sendMaterial(ctx context.Context, method, path string, in models.MaterialRequest, doc *Attachment, out any) error {
	if doc == nil {
		return c.doJSON(ctx, method, path, nil, in, out)
	}

	body, contentType, err := materialForm(in, doc)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, method, path, nil, body, contentType)
	if err != nil {
		return err
	}
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		return nil
	}
	return decodeInto(resp, out)
}

func materialForm(in models.MaterialRequest, doc *Attachment) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"nome", in.Name},
		{"tipo", in.Type},
		{"fabricante", in.Manufacturer},
		{"quantidade", decimalField(in.Quantity)},
		{"unidade", in.Unit},
		{"estoque_atual", decimalField(in.CurrentStock)},
		{"estoque_minimo", decimalField(in.MinimumStock)},
		{"preco", decimalField(in.Price)},
		{"codigo", in.Code},
	}
	if in.Expiry.Valid {
		fields = append(fields, [2]string{"validade", in.Expiry.Date.Format(timeutil.DateLayout)})
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	part, err := w.CreateFormFile("fispq", doc.Filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, doc.Body); err != nil {
		return nil, "", fmt.Errorf("read attachment: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func decimalField(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

// Baixa withdraws qty from m after the advisory check. A *ValidationError
// means nothing was sent.
func (c *Client) Baixa(ctx context.Context, m models.Material, qty decimal.Decimal, note string) (*models.BaixaResult, error) {
	if err := ValidateBaixa(m, qty); err != nil {
		return nil, err
	}
	in := models.BaixaRequest{Quantity: decimal.NewNullDecimal(qty), Note: note}
	var res models.BaixaResult
	if err := c.doJSON(ctx, http.MethodPatch, "/materiais/"+strconv.Itoa(m.ID)+"/baixa", nil, in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// BaixaByCode resolves the material by code, then behaves like Baixa.
func (c *Client) BaixaByCode(ctx context.Context, code string, qty decimal.Decimal, note string) (*models.BaixaResult, error) {
	m, err := c.GetMaterialByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return c.Baixa(ctx, m.Material, qty, note)
}

// InsufficientStock reports the stock the server said was available when
// it refused a withdrawal.
func InsufficientStock(err error) (decimal.Decimal, bool) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "INSUFFICIENT_STOCK" {
		return decimal.Zero, false
	}
	var details struct {
		Current decimal.NullDecimal `json:"estoque_atual"`
	}
	if err := apiErr.DecodeDetails(&details); err != nil || !details.Current.Valid {
		return decimal.Zero, true
	}
	return details.Current.Decimal, true
}

func (c *Client) Movements(ctx context.Context, id int) ([]models.StockMovement, error) {
	var items []models.StockMovement
	err := c.doJSON(ctx, http.MethodGet, "/materiais/"+strconv.Itoa(id)+"/movimentacoes", nil, nil, &items)
	return items, err
}

func (c *Client) ExpiredMaterials(ctx context.Context) ([]models.MaterialView, error) {
	var items []models.MaterialView
	err := c.doJSON(ctx, http.MethodGet, "/materiais/vencidos", nil, nil, &items)
	return items, err
}

func (c *Client) MaterialStats(ctx context.Context) (*models.MaterialStats, error) {
	var s models.MaterialStats
	if err := c.doJSON(ctx, http.MethodGet, "/materiais/stats", nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) StockValue(ctx context.Context) (*models.StockValue, error) {
	var v models.StockValue
	if err := c.doJSON(ctx, http.MethodGet, "/materiais/valor-estoque", nil, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// ExportCSV downloads the filtered CSV and the filename the server chose.
func (c *Client) ExportCSV(ctx context.Context, f MaterialFilter) (string, []byte, error) {
	return c.download(ctx, "/materiais/exportar-csv", f.values(), DefaultCSVFilename)
}

func (c *Client) ReportPDF(ctx context.Context, f MaterialFilter) (string, []byte, error) {
	return c.download(ctx, "/materiais/relatorio-pdf", f.values(), "relatorio_materiais.pdf")
}

func (c *Client) download(ctx context.Context, path string, query url.Values, fallback string) (string, []byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return "", nil, err
	}
	req.Header.Del("Accept")
	resp, err := c.send(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", path, err)
	}
	return filenameFromDisposition(resp.Header.Get("Content-Disposition"), fallback), data, nil
}

// Equipment

func (c *Client) ListEquipment(ctx context.Context, f EquipmentFilter) ([]models.Equipment, error) {
	v := url.Values{}
	setIf(v, "busca", f.Search)
	setIf(v, "status", f.Status)
	setIf(v, "categoria", f.Category)
	setIf(v, "ordenar", f.Sort)
	var items []models.Equipment
	err := c.doJSON(ctx, http.MethodGet, "/equipamentos", v, nil, &items)
	return items, err
}

func (c *Client) GetEquipment(ctx context.Context, id int) (*models.Equipment, error) {
	var e models.Equipment
	if err := c.doJSON(ctx, http.MethodGet, "/equipamentos/"+strconv.Itoa(id), nil, nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) CreateEquipment(ctx context.Context, req models.EquipmentRequest) (int, error) {
	var msg models.MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/equipamentos", nil, req, &msg); err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (c *Client) UpdateEquipment(ctx context.Context, id int, req models.EquipmentRequest) error {
	return c.doJSON(ctx, http.MethodPut, "/equipamentos/"+strconv.Itoa(id), nil, req, nil)
}

func (c *Client) DeleteEquipment(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodDelete, "/equipamentos/"+strconv.Itoa(id), nil, nil, nil)
}

// Maintenance

func (c *Client) ListMaintenance(ctx context.Context, f MaintenanceFilter) ([]models.Maintenance, error) {
	v := url.Values{}
	setIf(v, "busca", f.Search)
	setIf(v, "status", f.Status)
	setIf(v, "tipo", f.Type)
	if f.EquipmentID > 0 {
		v.Set("equipamento_id", strconv.Itoa(f.EquipmentID))
	}
	var items []models.Maintenance
	err := c.doJSON(ctx, http.MethodGet, "/manutencoes", v, nil, &items)
	return items, err
}

func (c *Client) GetMaintenance(ctx context.Context, id int) (*models.Maintenance, error) {
	var m models.Maintenance
	if err := c.doJSON(ctx, http.MethodGet, "/manutencoes/"+strconv.Itoa(id), nil, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) CreateMaintenance(ctx context.Context, req models.MaintenanceRequest) (int, error) {
	var msg models.MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/manutencoes", nil, req, &msg); err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (c *Client) UpdateMaintenance(ctx context.Context, id int, req models.MaintenanceRequest) error {
	return c.doJSON(ctx, http.MethodPut, "/manutencoes/"+strconv.Itoa(id), nil, req, nil)
}

// CompleteMaintenance moves a scheduled record to concluida.
func (c *Client) CompleteMaintenance(ctx context.Context, id int, cost decimal.NullDecimal, notes string) (*models.Maintenance, error) {
	in := models.CompleteMaintenanceRequest{Cost: cost, Notes: notes}
	var m models.Maintenance
	if err := c.doJSON(ctx, http.MethodPatch, "/manutencoes/"+strconv.Itoa(id)+"/concluir", nil, in, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) DeleteMaintenance(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodDelete, "/manutencoes/"+strconv.Itoa(id), nil, nil, nil)
}

// Supplier requests and alerts

func (c *Client) RequestSupplier(ctx context.Context, req models.SupplierRequest) (*models.EmailLog, error) {
	var entry models.EmailLog
	if err := c.doJSON(ctx, http.MethodPost, "/solicitacoes", nil, req, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) EmailHistory(ctx context.Context) ([]models.EmailLog, error) {
	var items []models.EmailLog
	err := c.doJSON(ctx, http.MethodGet, "/emails/historico", nil, nil, &items)
	return items, err
}

func (c *Client) ClearEmailHistory(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/emails/historico", nil, nil, nil)
}

func (c *Client) Alerts(ctx context.Context) ([]models.StockAlert, error) {
	var items []models.StockAlert
	err := c.doJSON(ctx, http.MethodGet, "/alertas", nil, nil, &items)
	return items, err
}
