package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lab-backend/internal/catalog"
)

func TestExportCSV(t *testing.T) {
	svc, _, _, _ := newTestMaterialService(sampleMaterials()...)

	data, err := svc.ExportCSV(context.Background(), catalog.MaterialQuery{Sort: catalog.SortName})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, utf8BOM))

	rows, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "Acetona", rows[1][1])
	assert.Equal(t, "Ácido Clorídrico", rows[2][1])
	assert.Equal(t, "07/03/2026", rows[2][8])
	assert.Equal(t, "40.00", rows[2][9])
	assert.Equal(t, "Vencido", rows[2][11])
	assert.Equal(t, "ETH-01", rows[3][10])
}

func TestReportPDF(t *testing.T) {
	svc, _, _, _ := newTestMaterialService(sampleMaterials()...)

	data, err := svc.ReportPDF(context.Background(), catalog.MaterialQuery{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}
