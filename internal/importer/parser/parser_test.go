package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/smallbiznis/churnlytics/internal/importer/domain"
	"github.com/smallbiznis/churnlytics/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestAllowedFile(t *testing.T) {
	assert.True(t, AllowedFile("members.csv"))
	assert.True(t, AllowedFile("Members.XLSX"))
	assert.True(t, AllowedFile("legacy.xls"))
	assert.False(t, AllowedFile("members.json"))
	assert.False(t, AllowedFile("members"))
	assert.False(t, AllowedFile(""))
}

func TestParseCSV(t *testing.T) {
	input := "\ufeff member_id ,location,is_active\nM1,Downtown,1\n\nM2,Uptown\n,,\n"
	batch, err := Parse("members.csv", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"member_id", "location", "is_active"}, batch.Columns)
	require.Len(t, batch.Rows, 2)
	assert.Equal(t, []string{"M1", "Downtown", "1"}, batch.Rows[0])
	assert.Equal(t, []string{"M2", "Uptown", ""}, batch.Rows[1])
	assert.Equal(t, domain.SourceCSV, batch.Source)
}

func TestParseCSVRejectsWideRows(t *testing.T) {
	_, err := Parse("members.csv", strings.NewReader("a,b\n1,2,3\n"))
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "row 2")
}

func TestParseCSVRejectsDuplicateHeaders(t *testing.T) {
	_, err := Parse("members.csv", strings.NewReader("a,a\n1,2\n"))
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestParseEmptyFile(t *testing.T) {
	_, err := Parse("members.csv", strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"member_id", "monthly_fee"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"M1", 49.99}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"M2"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	batch, err := Parse("members.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []string{"member_id", "monthly_fee"}, batch.Columns)
	require.Len(t, batch.Rows, 2)
	assert.Equal(t, "M1", batch.Rows[0][0])
	assert.Equal(t, "49.99", batch.Rows[0][1])
	assert.Equal(t, []string{"M2", ""}, batch.Rows[1])
	assert.Equal(t, domain.SourceSpreadsheet, batch.Source)
}

func TestParseLegacyXLSIsProcessingError(t *testing.T) {
	_, err := Parse("legacy.xls", bytes.NewReader([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}))
	require.Error(t, err)
	assert.True(t, apperror.IsProcessing(err))
}

func TestParseRejectsUnknownExtension(t *testing.T) {
	_, err := Parse("members.txt", strings.NewReader("a\n1\n"))
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}
