package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() Table {
	return Table{
		Title:   "At-risk students",
		Columns: []string{"Student", "Risk Score", "Factors"},
		Rows: [][]string{
			{"Nguyen Van A", "85", "Low attendance; Declining grades"},
			{"Tran Thi B", "62"},
		},
	}
}

func TestRenderCSVPadsShortRows(t *testing.T) {
	out, err := Render(FormatCSV, sampleTable())
	require.NoError(t, err)
	assert.Equal(t, "Student,Risk Score,Factors\nNguyen Van A,85,Low attendance; Declining grades\nTran Thi B,62,\n", string(out))
}

func TestRenderPDF(t *testing.T) {
	out, err := Render(FormatPDF, sampleTable())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderRequiresColumns(t *testing.T) {
	_, err := Render(FormatCSV, Table{})
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}
