package ingest_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/punchaudit/punchaudit-backend/internal/audit/ingest"
)

var wantHeader = []string{"EECode", "Firstname", "Lastname", "InPunchTime", "OutPunchTime"}

func TestRead_CSV(t *testing.T) {
	body := "\ufeffEECode,Firstname,Lastname,InPunchTime,OutPunchTime\n" +
		"0903,JOHN,DOE,2025-11-30 09:00,2025-11-30 18:00\n" +
		"0904,\"MARY, ANN\",SMITH,2025-11-30 10:00,\n" +
		",,,,\n\n"

	table, err := ingest.Read("punches.CSV", strings.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, wantHeader, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "MARY, ANN", table.Rows[1][1])
	assert.Equal(t, "", table.Rows[1][4])
}

func TestRead_RowWrappedCSV(t *testing.T) {
	body := "\"EECode,Firstname,Lastname,InPunchTime,OutPunchTime\"\n" +
		"\"0903,JOHN,DOE,2025-11-30 09:00,2025-11-30 18:00\"\n" +
		"\"0904,\"\"MARY, ANN\"\",SMITH,2025-11-30 10:00,2025-11-30 12:00\"\n"

	table, err := ingest.Read("punches.csv", strings.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, wantHeader, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"0903", "JOHN", "DOE", "2025-11-30 09:00", "2025-11-30 18:00"}, table.Rows[0])
	assert.Equal(t, "MARY, ANN", table.Rows[1][1])
}

func TestRead_SingleColumnCSVIsNotUnwrapped(t *testing.T) {
	table, err := ingest.Read("codes.csv", strings.NewReader("EECode\n0903\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"EECode"}, table.Header)
	assert.Equal(t, [][]string{{"0903"}}, table.Rows)
}

func TestRead_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"EECode", "Firstname", "Lastname", "InPunchTime", "OutPunchTime"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"0903", "JOHN", "DOE", "2025-11-30 09:00", 45991.75}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	table, err := ingest.Read("punches.xlsx", &buf)
	require.NoError(t, err)

	assert.Equal(t, wantHeader, table.Header)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "2025-11-30 09:00", table.Rows[0][3])
	assert.Equal(t, "45991.75", table.Rows[0][4])
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		body     string
		wantErr  error
	}{
		{"unsupported extension", "punches.pdf", "x", ingest.ErrUnsupportedFile},
		{"no extension", "punches", "x", ingest.ErrUnsupportedFile},
		{"empty body", "punches.csv", "", ingest.ErrEmptyFile},
		{"whitespace only", "punches.csv", " \n\n", ingest.ErrEmptyFile},
		{"blank rows only", "punches.csv", ",,\n,,\n", ingest.ErrEmptyFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ingest.Read(tt.filename, strings.NewReader(tt.body))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRead_CorruptWorkbook(t *testing.T) {
	_, err := ingest.Read("punches.xlsx", strings.NewReader("not a zip archive"))
	assert.Error(t, err)
}

func TestSupported(t *testing.T) {
	for _, name := range []string{"a.csv", "a.XLSX", "a.xlsm", "a.xltx", "a.xltm", "a.xls"} {
		assert.True(t, ingest.Supported(name), name)
	}
	assert.False(t, ingest.Supported("a.txt"))
}
