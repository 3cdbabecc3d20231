package convert

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cpa005/internal/model"
)

func TestReadMetadata(t *testing.T) {
	meta, err := ReadMetadata(metadataRows())
	require.NoError(t, err)

	assert.Equal(t, "ACME WIDGETS INCORPORATED", meta.ClientName)
	assert.Equal(t, "0123456789", meta.ClientNumber)
	assert.Equal(t, model.CentreMontreal, meta.ProcessingCentre)
	assert.Equal(t, model.CurrencyCAD, meta.Currency)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), meta.PaymentDate)
	assert.Equal(t, "450", meta.TransactionCode)
}

func TestReadMetadata_DateForms(t *testing.T) {
	tests := []struct {
		cell model.Cell
		want time.Time
	}{
		{model.TextCell("2025-03-15"), time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{model.NumberCell(decimal.NewFromInt(45731)), time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{model.TextCell("2025/3/5"), time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)},
		{model.TextCell("2025-3-5"), time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)},
		{model.TextCell("2025/03/5"), time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		sheet := metadataRows()
		sheet[4] = model.Row{model.TextCell("Payment Date"), tt.cell}
		meta, err := ReadMetadata(sheet)
		require.NoError(t, err, "date %v", tt.cell)
		assert.Equal(t, tt.want, meta.PaymentDate)
	}
}

func TestReadMetadata_Invalid(t *testing.T) {
	tests := []struct {
		row   int
		cells []string
		label string
	}{
		{1, []string{"Client Number", "12345"}, LabelClientNumber},
		{1, []string{"Client Number", "01234X6789"}, LabelClientNumber},
		{2, []string{"Processing Centre", "999"}, LabelProcessingCentre},
		{3, []string{"Currency Code", "EUR"}, LabelCurrencyCode},
		{4, []string{"Payment Date", "15/03/2025"}, LabelPaymentDate},
		{5, []string{"Transaction Code", "45"}, LabelTransactionCode},
		{0, []string{"Client Name", "A Client Name Well Beyond Thirty Chars"}, LabelClientName},
		{0, []string{"Client Name", "ACME\nWIDGETS"}, LabelClientName},
		{0, []string{"Client Name", "Straße Holdings"}, LabelClientName},
	}
	for _, tt := range tests {
		sheet := metadataRows()
		sheet[tt.row] = textRow(tt.cells...)
		_, err := ReadMetadata(sheet)
		require.Error(t, err, "%v", tt.cells)
		assert.ErrorIs(t, err, ErrMetadataInvalid)

		var me *MetadataError
		require.ErrorAs(t, err, &me)
		assert.Equal(t, tt.label, me.Label)
		assert.Equal(t, tt.row+1, me.Row)
	}
}

func TestReadMetadata_WrongLabel(t *testing.T) {
	sheet := metadataRows()
	sheet[0] = textRow("Client", "ACME")
	_, err := ReadMetadata(sheet)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMetadataMissing)
	assert.Contains(t, err.Error(), `expected label "Client Name"`)
}

func TestReadMetadata_ReportsEveryProblem(t *testing.T) {
	_, err := ReadMetadata(model.Sheet{textRow("Client Name", "ACME")})
	require.Error(t, err)

	var joined interface{ Unwrap() []error }
	require.True(t, errors.As(err, &joined))
	assert.Len(t, joined.Unwrap(), 5, "five rows absent")
	assert.ErrorIs(t, err, ErrMetadataMissing)
}

func TestReadMetadata_CaseInsensitiveLabels(t *testing.T) {
	sheet := metadataRows()
	sheet[0] = textRow("client name", "ACME")
	meta, err := ReadMetadata(sheet)
	require.NoError(t, err)
	assert.Equal(t, "ACME", meta.ClientName)
}

func TestReadMetadata_FoldsAccentedClientName(t *testing.T) {
	sheet := metadataRows()
	sheet[0] = textRow("Client Name", "Société Générale Côté")
	meta, err := ReadMetadata(sheet)
	require.NoError(t, err)
	assert.Equal(t, "Societe Generale Cote", meta.ClientName)
}
