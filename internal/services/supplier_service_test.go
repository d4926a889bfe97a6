package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lab-backend/internal/email"
	"lab-backend/internal/models"
)

func TestSupplierRequestAndHistory(t *testing.T) {
	svc := NewSupplierService(email.NewSimulatedProvider([]string{"bloqueado.com"}, nil), email.NewMemoryHistory(10))
	ctx := context.Background()

	sent, err := svc.Request(ctx, models.SupplierRequest{SupplierEmail: "vendas@fornecedor.com", Message: "Precisamos de etanol"})
	require.NoError(t, err)
	assert.Equal(t, models.EmailStatusSent, sent.Status)

	failed, err := svc.Request(ctx, models.SupplierRequest{SupplierEmail: "x@bloqueado.com", Message: "m"})
	require.NoError(t, err)
	assert.Equal(t, models.EmailStatusFailed, failed.Status)

	history, err := svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, failed.ID, history[0].ID)

	require.NoError(t, svc.ClearHistory(ctx))
	history, err = svc.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.NotNil(t, history)
}
