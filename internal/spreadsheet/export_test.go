package spreadsheet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/ligaconv/internal/types"
)

func TestExport(t *testing.T) {
	files := []types.FileEntry{
		{
			ID:   "a.csv-1-10",
			Name: "a.csv",
			Records: []types.Record{
				{types.FieldQuantity: "4", types.FieldCardName: "Lightning Bolt", types.FieldEdition: "M10"},
				{types.FieldQuantity: "1", types.FieldCardName: "Counterspell", types.FieldEdition: "MH2", types.FieldExtras: "foil"},
			},
			Included: true,
		},
		{
			ID:       "b.csv-2-20",
			Name:     "b.csv",
			Records:  []types.Record{{types.FieldQuantity: "2", types.FieldCardName: "Opt", types.FieldEdition: "ELD"}},
			Included: false,
		},
	}

	path := filepath.Join(t.TempDir(), "out", "session.xlsx")
	require.NoError(t, Export(path, files, types.DefaultOptions()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetFiles, SheetRecords}, f.GetSheetList())

	t.Run("files_sheet", func(t *testing.T) {
		rows, err := f.GetRows(SheetFiles)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, FilesHeader, rows[0])
		assert.Equal(t, []string{"a.csv-1-10", "a.csv", "yes", "2"}, rows[1])
		assert.Equal(t, []string{"b.csv-2-20", "b.csv", "no", "1"}, rows[2])
	})

	t.Run("records_sheet", func(t *testing.T) {
		rows, err := f.GetRows(SheetRecords)
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, RecordsHeader, rows[0])
		assert.Equal(t, []string{"a.csv", "1", "4", "Lightning Bolt", "M10", "", "yes", "4 Lightning Bolt [EDICAO=M10]"}, rows[1])
		assert.Equal(t, []string{"a.csv", "2", "1", "Counterspell", "MH2", "foil", "yes", "1 Counterspell [EDICAO=MH2] [EXTRAS=foil]"}, rows[2])
		assert.Equal(t, []string{"b.csv", "1", "2", "Opt", "ELD", "", "no", "2 Opt [EDICAO=ELD]"}, rows[3])
	})
}

func TestExportEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, Export(path, nil, types.DefaultOptions()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetFiles)
	require.NoError(t, err)
	assert.Equal(t, [][]string{FilesHeader}, rows)
}
