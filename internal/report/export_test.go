package report

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportXLSX(t *testing.T) {
	res := sampleResult()
	data, err := ExportXLSX(res, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Invoice")
	assert.Contains(t, sheets, "Anomalies")

	vendor, err := f.GetCellValue("Invoice", "B5")
	require.NoError(t, err)
	assert.Equal(t, "Alpine Office Supplies", vendor)

	code, err := f.GetCellValue("Anomalies", "A2")
	require.NoError(t, err)
	assert.Equal(t, "SUBTOTAL_MISMATCH", code)
}
