package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capacityDataset() Dataset {
	return Dataset{
		Title: "Course capacity 2025/26",
		Columns: []Column{
			{Key: "code", Title: "Course"},
			{Key: "active", Title: "Active", Align: "R"},
		},
		Rows: []map[string]string{
			{"code": "ITFND", "active": "5"},
			{"code": "NET01, evening", "active": "0"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(capacityDataset())
	require.NoError(t, err)
	assert.Equal(t, "Course,Active\nITFND,5\n\"NET01, evening\",0\n", string(out))
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(capacityDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestRenderRequiresColumns(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestForFormat(t *testing.T) {
	r, err := ForFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", r.ContentType())

	r, err = ForFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, "csv", r.Extension())

	_, err = ForFormat("xlsx")
	assert.Error(t, err)
}
