package ingest

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

const sampleCSV = `fournisseur,produit,quantite,qualite,delai,prix,date_livraison
Acme Corp,Widget,100,8.5,5,150.50,2024-01-15
Beta Ltd,Gadget,50,4.0,20,800,2024-02-01
`

func TestParseFile_CSV(t *testing.T) {
	t.Parallel()

	rows, err := ParseFile([]byte(sampleCSV), "csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Acme Corp", rows[0]["fournisseur"])
	assert.Equal(t, "8.5", rows[0]["qualite"])
	assert.Equal(t, "2024-02-01", rows[1]["date_livraison"])
}

func TestParseFile_ExtensionVariants(t *testing.T) {
	t.Parallel()

	for _, ext := range []string{"csv", "CSV", ".csv", " .Csv"} {
		rows, err := ParseFile([]byte(sampleCSV), ext)
		require.NoError(t, err, "ext %q", ext)
		assert.Len(t, rows, 2)
	}
}

func TestParseFile_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	_, err := ParseFile([]byte("whatever"), "pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	// Legacy .xls workbooks are not readable.
	_, err = ParseFile([]byte("whatever"), "xls")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseFile_HeaderOnly(t *testing.T) {
	t.Parallel()

	_, err := ParseFile([]byte("fournisseur,produit,quantite,qualite,delai,prix,date_livraison\n"), "csv")
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestParseFile_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := ParseFile(nil, "csv")
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestParseCSV_SkipsBlankLines(t *testing.T) {
	t.Parallel()

	csv := "fournisseur,produit,quantite,qualite,delai,prix,date_livraison\n\n ,,,,,,\nAcme,Widget,1,5,0,10,2024-01-15\n"
	rows, err := ParseFile([]byte(csv), "csv")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme", rows[0]["fournisseur"])
}

func TestParseCSV_HeaderNormalization(t *testing.T) {
	t.Parallel()

	csv := "Fournisseur,PRODUIT,Quantite,Qualite,Delai,Prix,Date Livraison\nAcme,Widget,1,5,0,10,2024-01-15\n"
	rows, err := ParseFile([]byte(csv), "csv")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-01-15", rows[0]["date_livraison"])
	assert.Equal(t, "Widget", rows[0]["produit"])
}

func TestParseCSV_ShortRecordPadsEmpty(t *testing.T) {
	t.Parallel()

	csv := "fournisseur,produit,quantite,qualite,delai,prix,date_livraison\nAcme,Widget,1\n"
	rows, err := ParseFile([]byte(csv), "csv")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// Missing cells are present as empty strings, never absent keys.
	v, ok := rows[0]["date_livraison"]
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestParseCSV_BOMAndWindows1252(t *testing.T) {
	t.Parallel()

	withBOM := append([]byte{0xEF, 0xBB, 0xBF}, []byte(sampleCSV)...)
	rows, err := ParseFile(withBOM, "csv")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", rows[0]["fournisseur"])

	// "Société" in Windows-1252: é = 0xE9, invalid as UTF-8.
	latin := []byte("fournisseur,produit,quantite,qualite,delai,prix,date_livraison\nSoci\xe9t\xe9,Widget,1,5,0,10,2024-01-15\n")
	rows, err = ParseFile(latin, "csv")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Société", rows[0]["fournisseur"])
}

func TestParseFile_XLSX(t *testing.T) {
	t.Parallel()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Suppliers")
	require.NoError(t, err)

	header := sheet.AddRow()
	for _, h := range []string{"fournisseur", "produit", "quantite", "qualite", "delai", "prix", "date_livraison"} {
		header.AddCell().Value = h
	}
	data := sheet.AddRow()
	for _, v := range []string{"Acme Corp", "Widget", "100", "8.5", "5", "150.50", "2024-01-15"} {
		data.AddCell().Value = v
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	rows, err := ParseFile(buf.Bytes(), "xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme Corp", rows[0]["fournisseur"])
	assert.Equal(t, "150.50", rows[0]["prix"])
}

func TestParseNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"100", 100, false},
		{" 8.5 ", 8.5, false},
		{"8,5", 8.5, false},
		{"1,234.5", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseNumber(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.InDelta(t, tt.want, got, 0.0001, "input %q", tt.in)
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"15/01/2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2024/01/15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"15-01-2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := parseDate(tt.in)
		require.NoError(t, err, "input %q", tt.in)
		assert.True(t, got.Equal(tt.want), "input %q got %v", tt.in, got)
	}

	_, err := parseDate("not a date")
	assert.Error(t, err)
}
