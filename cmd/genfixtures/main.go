package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// Generates sample upload files for manual testing: a product list and a
// supplier list the way a retailer would actually export them, with
// Spanish headers, comma decimals and a few deliberate duplicates.
func main() {
	outDir := "testdata"
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Printf("Error creating output dir: %v\n", err)
		os.Exit(1)
	}

	if err := writeProductsWorkbook(filepath.Join(outDir, "productos.xlsx")); err != nil {
		fmt.Printf("Error writing products fixture: %v\n", err)
		os.Exit(1)
	}
	if err := writeSuppliersWorkbook(filepath.Join(outDir, "proveedores.xlsx")); err != nil {
		fmt.Printf("Error writing suppliers fixture: %v\n", err)
		os.Exit(1)
	}
	if err := writeProductsCSV(filepath.Join(outDir, "productos.csv")); err != nil {
		fmt.Printf("Error writing products CSV fixture: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Fixtures written to %s\n", outDir)
}

func writeProductsWorkbook(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Productos"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Descripción", "Código de Barras", "Código", "Cantidad",
		"Importe Total", "Rubro", "Proveedor", "Fecha",
	}
	writeHeaderRow(f, sheetName, headers)

	// Subtotal-style rows: unit price must come out as importe / cantidad.
	// The two Yerba rows share a barcode and should fold into one.
	rows := [][]interface{}{
		{"Yerba Mate Taragüi 1kg", "7790387000123", "YER-001", "2", "5.300,00", "Almacén", "Distribuidora Norte", "05/01/2025"},
		{"Yerba Mate Taragüi 1kg", "7790387000123", "YER-001", "4", "11.600,00", "Almacén", "Distribuidora Norte", "12/01/2025"},
		{"Aceite Girasol Cocinero 1.5L", "7790070411234", "ACE-014", "1", "2.850,50", "Almacén", "Distribuidora Norte", "05/01/2025"},
		{"Detergente Magistral 750ml", "7793253001115", "", "3", "5.178", "Limpieza", "Química Sur", "06/01/2025"},
		{"Galletitas Criollitas x3", "", "GAL-201", "5", "4.500", "Almacén", "", "07/01/2025"},
		{"", "", "", "", "", "", "", ""},
	}
	for i, row := range rows {
		for j, value := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	return f.SaveAs(path)
}

func writeSuppliersWorkbook(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Proveedores"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Razón Social", "CUIT", "Teléfono", "Email", "Dirección", "Contacto"}
	writeHeaderRow(f, sheetName, headers)

	rows := [][]interface{}{
		{"Distribuidora Norte", "30-61234567-8", "011-4555-0101", "ventas@disnorte.com.ar", "Av. Córdoba 1234, CABA", "Marta Gómez"},
		{"Química Sur", "30-59876543-2", "011-4555-0202", "", "Pringles 456, Avellaneda", ""},
		{"distribuidora norte", "", "", "pedidos@disnorte.com.ar", "", "Marta Gómez"},
	}
	for i, row := range rows {
		for j, value := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	return f.SaveAs(path)
}

func writeProductsCSV(path string) error {
	content := "Descripción,Código de Barras,Precio Unitario,Stock,Rubro\n" +
		"\"Arroz Gallo Oro 1kg\",7790070123456,\"1.890,50\",24,Almacén\n" +
		"\"Fideos Matarazzo 500g\",7790070654321,\"1.250\",36,Almacén\n" +
		"\"Lavandina Ayudín 1L\",7793253009998,\"980,00\",12,Limpieza\n"
	return os.WriteFile(path, []byte(content), 0o644)
}

func writeHeaderRow(f *excelize.File, sheetName string, headers []string) {
	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, style)
	}
}
