package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/tintura/internal/catalog"
	"github.com/example/tintura/internal/gallery"
	"github.com/example/tintura/internal/models"
)

const (
	SheetName   = "Styles"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var header = []interface{}{
	"Style Code", "Name", "Category", "Target", "Features", "Cover Image", "Images",
	"Color", "Sizes", "Fabric", "Description", "Created At",
}

// Inventory renders the style inventory as an XLSX workbook, one row per
// product in the given order.
func Inventory(products []models.Product) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"1A1A1A"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return nil, fmt.Errorf("apply header style: %w", err)
	}

	for i, p := range products {
		g := gallery.FromRecord(p.ImageURLs, p.ImageURL)
		labels := make([]string, 0, len(p.Features))
		for _, tag := range p.Features {
			labels = append(labels, catalog.Label(tag))
		}
		created := ""
		if !p.CreatedAt.IsZero() {
			created = p.CreatedAt.UTC().Format("2006-01-02 15:04")
		}
		row := []interface{}{
			p.StyleCode, p.Name, p.Category, p.GarmentType, strings.Join(labels, ", "),
			g.Cover(), g.Len(), p.Color, p.AvailableSizes, p.FabricType, p.Description, created,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	for col, width := range map[string]float64{"A": 12, "B": 28, "E": 36, "F": 48, "K": 48, "L": 18} {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("set width %s: %w", col, err)
		}
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}
