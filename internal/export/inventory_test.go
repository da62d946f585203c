package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/example/tintura/internal/models"
)

func TestInventoryWritesOneRowPerStyle(t *testing.T) {
	products := []models.Product{
		{
			StyleCode:   "1013",
			Name:        "Joggers Pant",
			Category:    "SPORTZ",
			GarmentType: "MENS",
			Features:    pq.StringArray{"frenchterry", "custom-tag"},
			ImageURLs:   pq.StringArray{"https://cdn.test/a.webp", "https://cdn.test/b.webp"},
			Color:       "Black",
		},
		{
			StyleCode:   "1004",
			Name:        "T-Shirts Printed",
			Category:    "CASUALS",
			GarmentType: "MENS",
			ImageURL:    "https://old.test/01.webp",
		},
	}
	products[0].CreatedAt = time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)

	data, err := Inventory(products)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Style Code", rows[0][0])
	assert.Equal(t, []string{
		"1013", "Joggers Pant", "SPORTZ", "MENS", "French Terry, custom-tag",
		"https://cdn.test/a.webp", "2", "Black", "", "", "", "2024-05-02 09:30",
	}, rows[1])
	assert.Equal(t, "https://old.test/01.webp", rows[2][5])
	assert.Equal(t, "1", rows[2][6])
}

func TestInventoryEmpty(t *testing.T) {
	data, err := Inventory(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
