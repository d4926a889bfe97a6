package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lab-backend/internal/email"
	"lab-backend/internal/logger"
	"lab-backend/internal/models"
	"lab-backend/internal/services"
)

func TestSupplierRequestAndHistory(t *testing.T) {
	provider := email.NewSimulatedProvider([]string{"bloqueado.com"}, logger.Nop())
	h := NewSupplierHandler(services.NewSupplierService(provider, email.NewMemoryHistory(10)), logger.Nop())

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/solicitacoes", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.Request(rec, req)
		return rec
	}

	rec := send(`{"emailFornecedor":"vendas@fornecedor.com","mensagem":"Precisamos de 5 L de etanol"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sent models.EmailLog
	decodeBody(t, rec, &sent)
	assert.Equal(t, models.EmailStatusSent, sent.Status)
	assert.Equal(t, models.DefaultSupplierSubject, sent.Subject)

	rec = send(`{"emailFornecedor":"compras@bloqueado.com","mensagem":"Pedido"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"falhou"`)

	rec = send(`{"emailFornecedor":"não é email","mensagem":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.History(rec, httptest.NewRequest(http.MethodGet, "/emails/historico", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var history []models.EmailLog
	decodeBody(t, rec, &history)
	require.Len(t, history, 2)
	assert.Equal(t, "compras@bloqueado.com", history[0].Recipient)

	rec = httptest.NewRecorder()
	h.ClearHistory(rec, httptest.NewRequest(http.MethodDelete, "/emails/historico", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.History(rec, httptest.NewRequest(http.MethodGet, "/emails/historico", nil))
	assert.JSONEq(t, `[]`, rec.Body.String())
}
