package tabular

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Structural failure tags for the XLSX reader. Each anomaly gets its own tag
// so operators can tell a corrupt file from an unsupported feature.
const (
	TagZipEOCDNotFound           = "zip_eocd_not_found"
	TagZipHeaderMalformed        = "zip_header_malformed"
	TagZipCompressionUnsupported = "zip_compression_unsupported"
	TagZipInflateFailed          = "zip_inflate_failed"
	TagXLSXMissingWorkbook       = "xlsx_missing_workbook"
	TagXLSXMissingSheet          = "xlsx_missing_sheet"
	TagXLSXMissingRelationship   = "xlsx_missing_sheet_relationship"
	TagXLSXMissingSheetData      = "xlsx_missing_sheet_data"
	TagXLSXMalformedXML          = "xlsx_malformed_xml"
)

// DecodeError is a tagged structural decode failure. Decoding never returns
// a partial result: any anomaly fails the whole file.
type DecodeError struct {
	Tag     string
	Message string
}

func (e *DecodeError) Error() string {
	return e.Tag + ": " + e.Message
}

func decodeErrorf(tag, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Tag: tag, Message: fmt.Sprintf(format, args...)}
}

const (
	zipEOCDSignature    = 0x06054b50
	zipCentralSignature = 0x02014b50
	zipLocalSignature   = 0x04034b50

	// EOCD is 22 bytes plus an up-to-64KB trailing comment.
	zipEOCDScanWindow = 64*1024 + 22
)

// DecodeXLSX reads the first worksheet of an .xlsx buffer into rows of cell
// strings, the same shape DecodeCSV produces. Only stored and raw-deflate
// zip entries are supported; shared strings are optional.
func DecodeXLSX(data []byte) ([][]string, error) {
	files, err := readZip(data)
	if err != nil {
		return nil, err
	}

	workbookXML, ok := files["xl/workbook.xml"]
	if !ok {
		return nil, decodeErrorf(TagXLSXMissingWorkbook, "xl/workbook.xml not present in archive")
	}

	var workbook xlsxWorkbook
	if err := xml.Unmarshal(workbookXML, &workbook); err != nil {
		return nil, decodeErrorf(TagXLSXMalformedXML, "workbook: %v", err)
	}
	if len(workbook.Sheets.Sheet) == 0 {
		return nil, decodeErrorf(TagXLSXMissingSheet, "workbook declares no sheets")
	}
	first := workbook.Sheets.Sheet[0]

	relsXML, ok := files["xl/_rels/workbook.xml.rels"]
	if !ok {
		return nil, decodeErrorf(TagXLSXMissingRelationship, "xl/_rels/workbook.xml.rels not present in archive")
	}
	var rels xlsxRelationships
	if err := xml.Unmarshal(relsXML, &rels); err != nil {
		return nil, decodeErrorf(TagXLSXMalformedXML, "workbook relationships: %v", err)
	}

	target := ""
	for _, rel := range rels.Relationship {
		if rel.ID == first.RID {
			target = rel.Target
			break
		}
	}
	if target == "" {
		return nil, decodeErrorf(TagXLSXMissingRelationship, "no relationship for sheet %q (%s)", first.Name, first.RID)
	}

	sheetPath := resolveSheetPath(target)
	sheetXML, ok := files[sheetPath]
	if !ok {
		return nil, decodeErrorf(TagXLSXMissingSheetData, "sheet part %q not present in archive", sheetPath)
	}

	// Shared strings are optional; a workbook without repeated text omits
	// the part entirely.
	var shared []string
	if sstXML, ok := files["xl/sharedStrings.xml"]; ok {
		var sst xlsxSharedStrings
		if err := xml.Unmarshal(sstXML, &sst); err != nil {
			return nil, decodeErrorf(TagXLSXMalformedXML, "shared strings: %v", err)
		}
		shared = make([]string, len(sst.SI))
		for i, si := range sst.SI {
			shared[i] = si.text()
		}
	}

	var sheet xlsxWorksheet
	if err := xml.Unmarshal(sheetXML, &sheet); err != nil {
		return nil, decodeErrorf(TagXLSXMalformedXML, "sheet %q: %v", sheetPath, err)
	}

	return buildRows(sheet, shared), nil
}

func resolveSheetPath(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return "xl/" + target
}

func buildRows(sheet xlsxWorksheet, shared []string) [][]string {
	rows := make([][]string, 0, len(sheet.SheetData.Row))
	maxWidth := 0

	for _, xr := range sheet.SheetData.Row {
		row := []string{}
		next := 0
		for _, cell := range xr.Cells {
			idx := next
			if cell.Ref != "" {
				if parsed, ok := columnIndex(cell.Ref); ok {
					idx = parsed
				}
			}
			for len(row) <= idx {
				row = append(row, "")
			}
			row[idx] = cellValue(cell, shared)
			next = idx + 1
		}
		if len(row) > maxWidth {
			maxWidth = len(row)
		}
		rows = append(rows, row)
	}

	// Pad sparse rows so every row has the same width.
	for i := range rows {
		for len(rows[i]) < maxWidth {
			rows[i] = append(rows[i], "")
		}
	}
	return rows
}

func cellValue(cell xlsxCell, shared []string) string {
	switch cell.Type {
	case "s":
		idx, err := strconv.Atoi(strings.TrimSpace(cell.V))
		if err != nil || idx < 0 || idx >= len(shared) {
			return ""
		}
		return shared[idx]
	case "inlineStr":
		if cell.IS != nil {
			return cell.IS.text()
		}
		return ""
	default:
		return cell.V
	}
}

// columnIndex converts the letter part of an A1-style reference to a
// zero-based column index.
func columnIndex(ref string) (int, bool) {
	col := 0
	seen := false
	for _, ch := range ref {
		if ch >= 'A' && ch <= 'Z' {
			col = col*26 + int(ch-'A') + 1
			seen = true
			continue
		}
		if ch >= 'a' && ch <= 'z' {
			col = col*26 + int(ch-'a') + 1
			seen = true
			continue
		}
		break
	}
	if !seen {
		return 0, false
	}
	return col - 1, true
}

// readZip walks the archive through its central directory, cross-checking
// every entry against its local file header before trusting the offsets.
func readZip(data []byte) (map[string][]byte, error) {
	eocd := -1
	scanStart := len(data) - zipEOCDScanWindow
	if scanStart < 0 {
		scanStart = 0
	}
	for i := len(data) - 22; i >= scanStart; i-- {
		if binary.LittleEndian.Uint32(data[i:]) == zipEOCDSignature {
			eocd = i
			break
		}
	}
	if eocd < 0 {
		return nil, decodeErrorf(TagZipEOCDNotFound, "end of central directory signature not found")
	}

	entryCount := int(binary.LittleEndian.Uint16(data[eocd+10:]))
	cdOffset := int(binary.LittleEndian.Uint32(data[eocd+16:]))

	files := make(map[string][]byte, entryCount)
	pos := cdOffset
	for n := 0; n < entryCount; n++ {
		if pos+46 > len(data) || binary.LittleEndian.Uint32(data[pos:]) != zipCentralSignature {
			return nil, decodeErrorf(TagZipHeaderMalformed, "central directory entry %d out of bounds or bad signature", n)
		}

		method := int(binary.LittleEndian.Uint16(data[pos+10:]))
		compSize := int(binary.LittleEndian.Uint32(data[pos+20:]))
		nameLen := int(binary.LittleEndian.Uint16(data[pos+28:]))
		extraLen := int(binary.LittleEndian.Uint16(data[pos+30:]))
		commentLen := int(binary.LittleEndian.Uint16(data[pos+32:]))
		localOffset := int(binary.LittleEndian.Uint32(data[pos+42:]))

		if pos+46+nameLen > len(data) {
			return nil, decodeErrorf(TagZipHeaderMalformed, "central directory entry %d name out of bounds", n)
		}
		name := string(data[pos+46 : pos+46+nameLen])

		if localOffset+30 > len(data) || binary.LittleEndian.Uint32(data[localOffset:]) != zipLocalSignature {
			return nil, decodeErrorf(TagZipHeaderMalformed, "local header for %q out of bounds or bad signature", name)
		}
		localNameLen := int(binary.LittleEndian.Uint16(data[localOffset+26:]))
		localExtraLen := int(binary.LittleEndian.Uint16(data[localOffset+28:]))
		start := localOffset + 30 + localNameLen + localExtraLen
		if start+compSize > len(data) {
			return nil, decodeErrorf(TagZipHeaderMalformed, "data for %q out of bounds", name)
		}
		raw := data[start : start+compSize]

		switch method {
		case 0: // stored
			files[name] = raw
		case 8: // deflate, raw (no zlib header or trailer)
			inflated, err := io.ReadAll(flate.NewReader(bytes.NewReader(raw)))
			if err != nil {
				return nil, decodeErrorf(TagZipInflateFailed, "inflate %q: %v", name, err)
			}
			files[name] = inflated
		default:
			return nil, decodeErrorf(TagZipCompressionUnsupported, "entry %q uses compression method %d", name, method)
		}

		pos += 46 + nameLen + extraLen + commentLen
	}

	return files, nil
}

type xlsxWorkbook struct {
	Sheets struct {
		Sheet []struct {
			Name string `xml:"name,attr"`
			RID  string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
		} `xml:"sheet"`
	} `xml:"sheets"`
}

type xlsxRelationships struct {
	Relationship []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

type xlsxSharedStrings struct {
	SI []xlsxStringItem `xml:"si"`
}

// xlsxStringItem is either a plain <t> or a sequence of rich-text runs.
type xlsxStringItem struct {
	T *string `xml:"t"`
	R []struct {
		T string `xml:"t"`
	} `xml:"r"`
}

func (si xlsxStringItem) text() string {
	if si.T != nil {
		return *si.T
	}
	var b strings.Builder
	for _, run := range si.R {
		b.WriteString(run.T)
	}
	return b.String()
}

type xlsxWorksheet struct {
	SheetData struct {
		Row []xlsxRow `xml:"row"`
	} `xml:"sheetData"`
}

type xlsxRow struct {
	Cells []xlsxCell `xml:"c"`
}

type xlsxCell struct {
	Ref  string          `xml:"r,attr"`
	Type string          `xml:"t,attr"`
	V    string          `xml:"v"`
	IS   *xlsxStringItem `xml:"is"`
}
