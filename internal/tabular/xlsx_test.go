package tabular

import (
	"archive/zip"
	"bytes"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWorkbookXML = `<?xml version="1.0" encoding="UTF-8"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"
          xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <sheets>
    <sheet name="Hoja1" sheetId="1" r:id="rId1"/>
  </sheets>
</workbook>`

const testRelsXML = `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>
</Relationships>`

// writeTestZip builds an archive with the given parts, all using the same
// compression method, so both the stored and the deflate paths get exercised.
func writeTestZip(t *testing.T, parts map[string]string, method uint16) []byte {
	t.Helper()

	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: method})
		require.NoError(t, err)
		_, err = w.Write([]byte(parts[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func sharedStringsWorkbook(t *testing.T, method uint16) []byte {
	return writeTestZip(t, map[string]string{
		"xl/workbook.xml":            testWorkbookXML,
		"xl/_rels/workbook.xml.rels": testRelsXML,
		"xl/sharedStrings.xml": `<?xml version="1.0"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="3" uniqueCount="3">
  <si><t>Nombre</t></si>
  <si><r><t>Pre</t></r><r><t>cio</t></r></si>
  <si><t>Yerba</t></si>
</sst>`,
		"xl/worksheets/sheet1.xml": `<?xml version="1.0"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <sheetData>
    <row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c></row>
    <row r="2"><c r="A2" t="s"><v>2</v></c><c r="B2"><v>5300.5</v></c></row>
  </sheetData>
</worksheet>`,
	}, method)
}

func TestDecodeXLSXSharedStrings(t *testing.T) {
	for name, method := range map[string]uint16{"deflate": zip.Deflate, "stored": zip.Store} {
		t.Run(name, func(t *testing.T) {
			rows, err := DecodeXLSX(sharedStringsWorkbook(t, method))
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, []string{"Nombre", "Precio"}, rows[0])
			assert.Equal(t, []string{"Yerba", "5300.5"}, rows[1])
		})
	}
}

func TestDecodeXLSXInlineStringsAndGapFill(t *testing.T) {
	data := writeTestZip(t, map[string]string{
		"xl/workbook.xml":            testWorkbookXML,
		"xl/_rels/workbook.xml.rels": testRelsXML,
		"xl/worksheets/sheet1.xml": `<?xml version="1.0"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <sheetData>
    <row r="1">
      <c r="A1" t="inlineStr"><is><t>nombre</t></is></c>
      <c r="C1" t="inlineStr"><is><t>stock</t></is></c>
    </row>
    <row r="2">
      <c r="A2" t="inlineStr"><is><t>Fideos</t></is></c>
      <c r="B2"><v>12</v></c>
    </row>
  </sheetData>
</worksheet>`,
	}, zip.Deflate)

	rows, err := DecodeXLSX(data)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// The gap at B1 is filled and every row is padded to the same width.
	assert.Equal(t, []string{"nombre", "", "stock"}, rows[0])
	assert.Equal(t, []string{"Fideos", "12", ""}, rows[1])
}

func TestDecodeXLSXWithoutCellRefs(t *testing.T) {
	data := writeTestZip(t, map[string]string{
		"xl/workbook.xml":            testWorkbookXML,
		"xl/_rels/workbook.xml.rels": testRelsXML,
		"xl/worksheets/sheet1.xml": `<?xml version="1.0"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <sheetData>
    <row><c t="inlineStr"><is><t>a</t></is></c><c><v>1</v></c></row>
  </sheetData>
</worksheet>`,
	}, zip.Deflate)

	rows, err := DecodeXLSX(data)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"a", "1"}, rows[0])
}

func TestDecodeXLSXOutOfRangeSharedIndex(t *testing.T) {
	data := writeTestZip(t, map[string]string{
		"xl/workbook.xml":            testWorkbookXML,
		"xl/_rels/workbook.xml.rels": testRelsXML,
		"xl/sharedStrings.xml":       `<sst><si><t>solo</t></si></sst>`,
		"xl/worksheets/sheet1.xml": `<worksheet><sheetData>
  <row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>99</v></c></row>
</sheetData></worksheet>`,
	}, zip.Deflate)

	rows, err := DecodeXLSX(data)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"solo", ""}, rows[0])
}

func TestDecodeXLSXNotAZip(t *testing.T) {
	_, err := DecodeXLSX([]byte("this is definitely not a spreadsheet, just text"))
	requireDecodeTag(t, err, TagZipEOCDNotFound)
}

func TestDecodeXLSXTruncatedArchive(t *testing.T) {
	data := sharedStringsWorkbook(t, zip.Deflate)
	_, err := DecodeXLSX(data[:60])
	requireDecodeTag(t, err, TagZipEOCDNotFound)
}

func TestDecodeXLSXMissingWorkbook(t *testing.T) {
	data := writeTestZip(t, map[string]string{
		"xl/other.xml": "<x/>",
	}, zip.Deflate)
	_, err := DecodeXLSX(data)
	requireDecodeTag(t, err, TagXLSXMissingWorkbook)
}

func TestDecodeXLSXNoSheetsDeclared(t *testing.T) {
	data := writeTestZip(t, map[string]string{
		"xl/workbook.xml": `<workbook><sheets></sheets></workbook>`,
	}, zip.Deflate)
	_, err := DecodeXLSX(data)
	requireDecodeTag(t, err, TagXLSXMissingSheet)
}

func TestDecodeXLSXMissingRelationship(t *testing.T) {
	data := writeTestZip(t, map[string]string{
		"xl/workbook.xml": testWorkbookXML,
		"xl/_rels/workbook.xml.rels": `<Relationships>
  <Relationship Id="rId9" Target="worksheets/sheet9.xml"/>
</Relationships>`,
	}, zip.Deflate)
	_, err := DecodeXLSX(data)
	requireDecodeTag(t, err, TagXLSXMissingRelationship)
}

func TestDecodeXLSXMissingSheetPart(t *testing.T) {
	data := writeTestZip(t, map[string]string{
		"xl/workbook.xml":            testWorkbookXML,
		"xl/_rels/workbook.xml.rels": testRelsXML,
	}, zip.Deflate)
	_, err := DecodeXLSX(data)
	requireDecodeTag(t, err, TagXLSXMissingSheetData)
}

func TestDecodeXLSXMalformedSheetXML(t *testing.T) {
	data := writeTestZip(t, map[string]string{
		"xl/workbook.xml":            testWorkbookXML,
		"xl/_rels/workbook.xml.rels": testRelsXML,
		"xl/worksheets/sheet1.xml":   "<worksheet><sheetData><row",
	}, zip.Deflate)
	_, err := DecodeXLSX(data)
	requireDecodeTag(t, err, TagXLSXMalformedXML)
}

func TestColumnIndex(t *testing.T) {
	cases := map[string]int{"A1": 0, "B2": 1, "Z9": 25, "AA10": 26, "AB1": 27, "c3": 2}
	for ref, want := range cases {
		got, ok := columnIndex(ref)
		require.True(t, ok, "ref=%q", ref)
		assert.Equal(t, want, got, "ref=%q", ref)
	}
	_, ok := columnIndex("123")
	assert.False(t, ok)
}

func requireDecodeTag(t *testing.T, err error, tag string) {
	t.Helper()
	require.Error(t, err)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, tag, de.Tag)
}
