package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCSVBasic(t *testing.T) {
	rows := DecodeCSV("a,b,c\n1,2,3\n")
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"a", "b", "c"}, rows[0])
	assert.Equal(t, []string{"1", "2", "3"}, rows[1])
}

func TestDecodeCSVQuotedFields(t *testing.T) {
	rows := DecodeCSV(`name,price
"Yerba, 1kg","5.300,00"
"dice ""hola""",10
`)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Yerba, 1kg", "5.300,00"}, rows[1])
	assert.Equal(t, []string{`dice "hola"`, "10"}, rows[2])
}

func TestDecodeCSVQuotedNewline(t *testing.T) {
	rows := DecodeCSV("a,b\n\"line one\nline two\",x\n")
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"line one\nline two", "x"}, rows[1])
}

func TestDecodeCSVCRLF(t *testing.T) {
	rows := DecodeCSV("a,b\r\n1,2\r\n")
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"a", "b"}, rows[0])
	assert.Equal(t, []string{"1", "2"}, rows[1])
}

func TestDecodeCSVSkipsBlankRows(t *testing.T) {
	rows := DecodeCSV("a,b\n,\n\n1,2\n,,\n")
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "2"}, rows[1])
}

func TestDecodeCSVFlushesTrailingRow(t *testing.T) {
	rows := DecodeCSV("a,b\n1,2")
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "2"}, rows[1])
}

func TestDecodeCSVEmptyInput(t *testing.T) {
	assert.Empty(t, DecodeCSV(""))
	assert.Empty(t, DecodeCSV("\n\n"))
}

func TestDecodeCSVPreservesEmptyCells(t *testing.T) {
	rows := DecodeCSV("a,b,c\n1,,3\n")
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "", "3"}, rows[1])
}
