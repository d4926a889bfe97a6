package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"lab-backend/internal/apperr"
	"lab-backend/internal/catalog"
	"lab-backend/internal/logger"
	"lab-backend/internal/middleware"
	"lab-backend/internal/models"
	"lab-backend/internal/services"
	"lab-backend/pkg/httpjson"
)

// multipartMemory is how much of a form ParseMultipartForm keeps in memory
// before spilling file parts to disk.
const multipartMemory = 8 << 20

type MaterialHandler struct {
	Service *services.MaterialService
	Log     *logger.Logger
}

func NewMaterialHandler(s *services.MaterialService, log *logger.Logger) *MaterialHandler {
	return &MaterialHandler{Service: s, Log: log}
}

func (h *MaterialHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	httpjson.WriteError(r.Context(), h.Log, w, err)
}

// List handles GET /materiais and GET /materiaisList
func (h *MaterialHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseMaterialQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	items, err := h.Service.List(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, items)
}

// Get handles GET /materiais/{id}
func (h *MaterialHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.PathInt(mux.Vars(r), "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	m, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, m)
}

// GetByCode handles GET /materiais/codigo/{codigo}
func (h *MaterialHandler) GetByCode(w http.ResponseWriter, r *http.Request) {
	m, err := h.Service.GetByCode(r.Context(), mux.Vars(r)["codigo"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, m)
}

// Create handles POST /materiais (JSON or multipart with a fispq file)
func (h *MaterialHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, doc, cleanup, err := h.readMaterial(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer cleanup()

	id, err := h.Service.Create(r.Context(), req, doc)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.WriteMessage(w, http.StatusCreated, services.MsgMaterialCreated, id)
}

// Update handles PUT /materiais/{id}
func (h *MaterialHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.PathInt(mux.Vars(r), "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req, doc, cleanup, err := h.readMaterial(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer cleanup()

	if err := h.Service.Update(r.Context(), id, req, doc); err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.WriteMessage(w, http.StatusOK, services.MsgMaterialUpdated, 0)
}

// Delete handles DELETE /materiais/{id}
func (h *MaterialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.PathInt(mux.Vars(r), "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.WriteMessage(w, http.StatusOK, services.MsgMaterialDeleted, 0)
}

// Baixa handles PATCH /materiais/{id}/baixa
func (h *MaterialHandler) Baixa(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.PathInt(mux.Vars(r), "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req models.BaixaRequest
	if err := httpjson.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	// anonymous withdrawals are recorded without a user when auth is optional
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	res, err := h.Service.Baixa(r.Context(), id, userID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, res)
}

// Movements handles GET /materiais/{id}/movimentacoes
func (h *MaterialHandler) Movements(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.PathInt(mux.Vars(r), "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	items, err := h.Service.Movements(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, items)
}

// Expired handles GET /materiais/vencidos
func (h *MaterialHandler) Expired(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.Expired(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, items)
}

// Stats handles GET /materiais/stats
func (h *MaterialHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, stats)
}

// StockValue handles GET /materiais/valor-estoque
func (h *MaterialHandler) StockValue(w http.ResponseWriter, r *http.Request) {
	v, err := h.Service.StockValue(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, v)
}

// ExportCSV handles GET /materiais/exportar-csv
func (h *MaterialHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	q, err := parseMaterialQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data, err := h.Service.ExportCSV(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeAttachment(w, "text/csv; charset=utf-8", services.CSVFilename, data)
}

// ReportPDF handles GET /materiais/relatorio-pdf
func (h *MaterialHandler) ReportPDF(w http.ResponseWriter, r *http.Request) {
	q, err := parseMaterialQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data, err := h.Service.ReportPDF(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeAttachment(w, "application/pdf", services.PDFFilename, data)
}

// FISPQ handles GET /materiais/{id}/fispq by redirecting to a presigned link
func (h *MaterialHandler) FISPQ(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.PathInt(mux.Vars(r), "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	url, err := h.Service.FISPQURL(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func parseMaterialQuery(r *http.Request) (catalog.MaterialQuery, error) {
	v := r.URL.Query()
	mode, err := catalog.ParseFilterMode(v.Get("filtro"))
	if err != nil {
		return catalog.MaterialQuery{}, apperr.Wrap(apperr.CodeValidation, err, "Filtro inválido").
			WithDetails(map[string]any{"filtro": "deve ser um de: all, low_stock, expired, near_expiry"})
	}
	sortKey, err := catalog.ParseSortKey(v.Get("ordenar"))
	if err != nil {
		return catalog.MaterialQuery{}, apperr.Wrap(apperr.CodeValidation, err, "Ordenação inválida").
			WithDetails(map[string]any{"ordenar": "deve ser um de: nome, estoque, validade, preco"})
	}
	return catalog.MaterialQuery{
		Search: v.Get("busca"),
		Type:   strings.TrimSpace(v.Get("tipo")),
		Mode:   mode,
		Sort:   sortKey,
	}, nil
}

// readMaterial decodes a material body. The returned cleanup releases any
// temporary files of a multipart form and is never nil.
func (h *MaterialHandler) readMaterial(w http.ResponseWriter, r *http.Request) (models.MaterialRequest, *services.Upload, func(), error) {
	var req models.MaterialRequest
	noop := func() {}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		err := httpjson.DecodeJSON(r, &req)
		return req, nil, noop, err
	}

	limit := h.Service.MaxUploadBytes
	if limit <= 0 {
		limit = services.DefaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+httpjson.MaxBodyBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return req, nil, noop, apperr.New(apperr.CodeValidation, "Arquivo FISPQ muito grande").
				WithDetails(map[string]any{"fispq": fmt.Sprintf("máximo %d MB", limit>>20)})
		}
		return req, nil, noop, apperr.Wrap(apperr.CodeValidation, err, "Formulário inválido")
	}
	cleanup := func() { r.MultipartForm.RemoveAll() }

	req, err := materialFromForm(r)
	if err != nil {
		cleanup()
		return req, nil, noop, err
	}
	if err := httpjson.Validate(req); err != nil {
		cleanup()
		return req, nil, noop, err
	}

	file, header, err := r.FormFile("fispq")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil, cleanup, nil
	}
	if err != nil {
		cleanup()
		return req, nil, noop, apperr.Wrap(apperr.CodeValidation, err, "Arquivo FISPQ inválido")
	}
	doc, err := sniffUpload(file, header)
	if err != nil {
		file.Close()
		cleanup()
		return req, nil, noop, apperr.Wrap(apperr.CodeValidation, err, "Arquivo FISPQ inválido")
	}
	return req, doc, func() {
		file.Close()
		cleanup()
	}, nil
}

// sniffUpload replaces the client-declared content type with the detected
// one.
func sniffUpload(file multipart.File, header *multipart.FileHeader) (*services.Upload, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	head = head[:n]
	return &services.Upload{
		Filename:    header.Filename,
		ContentType: http.DetectContentType(head),
		Size:        header.Size,
		Body:        io.MultiReader(bytes.NewReader(head), file),
	}, nil
}

func materialFromForm(r *http.Request) (models.MaterialRequest, error) {
	req := models.MaterialRequest{
		Name:         strings.TrimSpace(r.FormValue("nome")),
		Type:         strings.TrimSpace(r.FormValue("tipo")),
		Manufacturer: strings.TrimSpace(r.FormValue("fabricante")),
		Unit:         strings.TrimSpace(r.FormValue("unidade")),
		Code:         strings.TrimSpace(r.FormValue("codigo")),
	}

	details := map[string]any{}
	numeric := map[string]*decimal.NullDecimal{
		"quantidade":     &req.Quantity,
		"estoque_atual":  &req.CurrentStock,
		"estoque_minimo": &req.MinimumStock,
		"preco":          &req.Price,
	}
	for field, dest := range numeric {
		v, err := parseFormDecimal(r.FormValue(field))
		if err != nil {
			details[field] = "deve ser numérico"
			continue
		}
		*dest = v
	}

	expiry, err := models.ParseNullDate(strings.TrimSpace(r.FormValue("validade")))
	if err != nil {
		details["validade"] = "data inválida, use AAAA-MM-DD"
	}
	req.Expiry = expiry

	if len(details) > 0 {
		return req, apperr.New(apperr.CodeValidation, "Campos inválidos").WithDetails(details)
	}
	return req, nil
}

// parseFormDecimal accepts "12.5" and the comma form "12,5"; blank is absent.
func parseFormDecimal(raw string) (decimal.NullDecimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	if !strings.Contains(raw, ".") {
		raw = strings.Replace(raw, ",", ".", 1)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
