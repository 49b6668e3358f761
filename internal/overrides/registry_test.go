package overrides

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/formbatch/internal/entity"
)

func writeWorkbook(t *testing.T, name string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for r, row := range rows {
		for c, v := range row {
			cellName, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cellName, v))
		}
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestRegistry_Granularity(t *testing.T) {
	r := NewRegistry(
		[]entity.IdentityKey{entity.NewIdentityKey("bob", "stone", "11111")},
		[]entity.IdentityKey{entity.NewIdentityKey("John", "Smith", "90210")},
	)

	assert.True(t, r.Ignored(entity.NewIdentityKey("Bob", "Stone", "")))
	assert.True(t, r.Ignored(entity.NewIdentityKey("BOB", "STONE", "22222")))
	assert.False(t, r.Ignored(entity.NewIdentityKey("Bob", "Stoner", "")))

	assert.True(t, r.Ordered(entity.NewIdentityKey("john", "smith", "90210-0001")))
	assert.False(t, r.Ordered(entity.NewIdentityKey("John", "Smith", "")))
	assert.False(t, r.Ordered(entity.NewIdentityKey("John", "Smith", "90211")))
}

func TestRegistry_OrderListIsACopyInDeclaredOrder(t *testing.T) {
	a := entity.NewIdentityKey("A", "One", "00001")
	b := entity.NewIdentityKey("B", "Two", "00002")
	r := NewRegistry(nil, []entity.IdentityKey{b, a, b})

	list := r.OrderList()
	assert.Equal(t, []entity.IdentityKey{b, a, b}, list)
	assert.Equal(t, 3, r.OrderCount())

	list[0] = a
	assert.Equal(t, b, r.OrderList()[0])
}

func TestLoad_MissingSourcesYieldEmptyRegistry(t *testing.T) {
	dir := t.TempDir()

	r, err := Load(context.Background(), filepath.Join(dir, "ignore.xlsx"), "", nil)

	require.NoError(t, err)
	assert.Equal(t, 0, r.IgnoreCount())
	assert.Equal(t, 0, r.OrderCount())
}

func TestLoad_Workbooks(t *testing.T) {
	ignorePath := writeWorkbook(t, "ignore.xlsx", [][]any{
		{"FIRST NAME", "LAST NAME"},
		{" jane ", "DOE"},
		{"", ""},
	})
	orderPath := writeWorkbook(t, "order.xlsx", [][]any{
		{"Report generated 2024-01-01"},
		{"first  name", "Last Name", "ZIP CODE"},
		{"Zed", "Last", 2134},
		{"Amy", "First", "90210-1234"},
		{"Mid", "Dle", ""},
	})

	r, err := Load(context.Background(), ignorePath, orderPath, nil)

	require.NoError(t, err)
	assert.True(t, r.Ignored(entity.NewIdentityKey("Jane", "Doe", "")))
	assert.Equal(t, 1, r.IgnoreCount())
	assert.Equal(t, []entity.IdentityKey{
		{First: "Zed", Last: "Last", Zip: "02134"},
		{First: "Amy", Last: "First", Zip: "90210"},
		{First: "Mid", Last: "Dle"},
	}, r.OrderList())
}

func TestLoad_MissingColumn(t *testing.T) {
	orderPath := writeWorkbook(t, "order.xlsx", [][]any{
		{"FIRST NAME", "LAST NAME"},
		{"Amy", "First"},
	})

	_, err := Load(context.Background(), "", orderPath, nil)

	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestNormalizeZipCell(t *testing.T) {
	cases := map[string]string{
		"":           "",
		"90210":      "90210",
		"90210.0":    "90210",
		"501":        "00501",
		"90210-1234": "90210",
		"902101234":  "90210",
		"12345678":   "01234",
		" 02134 ":    "02134",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeZipCell(in), in)
	}
}
