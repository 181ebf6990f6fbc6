package fmc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeCSV(t *testing.T, dir, site, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, site+".csv"), []byte(content), 0o600))
}

func writeXLSX(t *testing.T, dir, site string, rows [][]string) {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("export")
	require.NoError(t, err)
	for _, cells := range rows {
		row := sheet.AddRow()
		for _, v := range cells {
			row.AddCell().Value = v
		}
	}
	require.NoError(t, f.Save(filepath.Join(dir, site+".xlsx")))
}

func TestFileProvider_CSV(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "DTM1",
		"VR ID,Facility Sequence,Shipper Accounts,Carrier\n"+
			"V1,DTM1->VEEY,ACME,CARR\n"+
			"V2,WRO5_YWRO,,OTHER\n")

	p := NewFileProvider(dir)
	records, err := p.Records(context.Background(), "DTM1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "V1", records[0].VRID)
	assert.Equal(t, "DTM1_VEEY", records[0].FacilitySequence)
}

func TestFileProvider_XLSXPreferredOverCSV(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "DTM1", "VR ID\nFROMCSV\n")
	writeXLSX(t, dir, "DTM1", [][]string{
		{"VR ID", "Carrier"},
		{"FROMXLSX", "CARR"},
	})

	p := NewFileProvider(dir)
	records, err := p.Records(context.Background(), "DTM1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "FROMXLSX", records[0].VRID)
}

func TestFileProvider_MissingFileYieldsNoRows(t *testing.T) {
	p := NewFileProvider(t.TempDir())

	records, err := p.Records(context.Background(), "DTM1")
	assert.NoError(t, err)
	assert.Nil(t, records)
}

func TestFileProvider_EmptyCSV(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "DTM1", "")

	p := NewFileProvider(dir)
	records, err := p.Records(context.Background(), "DTM1")
	assert.NoError(t, err)
	assert.Empty(t, records)
}
