package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lab-backend/internal/logger"
	"lab-backend/internal/models"
	"lab-backend/internal/services"
)

func newEquipmentHandler() (*EquipmentHandler, *memEquipment) {
	repo := newMemEquipment(
		models.Equipment{ID: 1, Code: "CEN-01", Name: "Centrífuga", Category: "Centrífugas", Status: models.EquipmentActive},
		models.Equipment{ID: 2, Code: "BAL-02", Name: "Balança analítica", Category: "Balanças", Status: models.EquipmentDefective},
		models.Equipment{ID: 3, Code: "ANA-03", Name: "Agitador", Category: "Agitadores", Status: models.EquipmentActive},
	)
	return NewEquipmentHandler(services.NewEquipmentService(repo), logger.Nop()), repo
}

func TestEquipmentList_FilterAndSort(t *testing.T) {
	h, _ := newEquipmentHandler()

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/equipamentos?status=ativo&ordenar=nome", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var items []models.Equipment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "Agitador", items[0].Name)
	assert.Equal(t, "Centrífuga", items[1].Name)
}

func TestEquipmentList_SearchIgnoresAccents(t *testing.T) {
	h, _ := newEquipmentHandler()

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/equipamentos?busca=balanca", nil))

	var items []models.Equipment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "BAL-02", items[0].Code)
}

func TestEquipmentList_BadSort(t *testing.T) {
	h, _ := newEquipmentHandler()

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/equipamentos?ordenar=preco", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestEquipmentSummary(t *testing.T) {
	h, _ := newEquipmentHandler()

	rec := httptest.NewRecorder()
	h.Summary(rec, httptest.NewRequest(http.MethodGet, "/equipamentos/resumo", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ativo":2,"inativo":0,"manutencao":0,"defeito":1}`, rec.Body.String())
}

func TestEquipmentCreate_DefaultsStatus(t *testing.T) {
	h, repo := newEquipmentHandler()

	body := `{"codigo":"ESP-04","nome":"Espectrofotômetro","categoria":"Espectrofotômetros","valor_aquisicao":15000}`
	req := httptest.NewRequest(http.MethodPost, "/equipamentos", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"id":4`)
	assert.Equal(t, models.EquipmentActive, repo.items[4].Status)
	assert.Equal(t, "15000", repo.items[4].AcquisitionValue.Decimal.String())
}

func TestEquipmentCreate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing code", `{"nome":"Estufa","categoria":"Estufas"}`},
		{"unknown status", `{"codigo":"EST-05","nome":"Estufa","categoria":"Estufas","status":"quebrado"}`},
		{"negative value", `{"codigo":"EST-05","nome":"Estufa","categoria":"Estufas","valor_aquisicao":-1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, repo := newEquipmentHandler()
			req := httptest.NewRequest(http.MethodPost, "/equipamentos", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			h.Create(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Len(t, repo.items, 3)
		})
	}
}

func TestEquipmentGet_NotFound(t *testing.T) {
	h, _ := newEquipmentHandler()

	rec := httptest.NewRecorder()
	h.Get(rec, withID(httptest.NewRequest(http.MethodGet, "/equipamentos/42", nil), "42"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Equipamento não encontrado")
}

func TestEquipmentDelete(t *testing.T) {
	h, repo := newEquipmentHandler()

	rec := httptest.NewRecorder()
	h.Delete(rec, withID(httptest.NewRequest(http.MethodDelete, "/equipamentos/2", nil), "2"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, repo.items, 2)
}
