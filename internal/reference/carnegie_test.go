// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package reference_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/osg-htc/institutions/internal/reference"
)

// workbook builds an in-memory xlsx with the given rows on the named sheet.
func workbook(t *testing.T, sheet string, rows [][]any) *bytes.Reader {
	t.Helper()

	file := excelize.NewFile()
	defer file.Close()

	require.NoError(t, file.SetSheetName("Sheet1", sheet))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, file.SetSheetRow(sheet, cell, &row))
	}

	buffer, err := file.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buffer.Bytes())
}

/*
TestParseCarnegie_2021Workbook maps basic classification codes to labels.
*/
func TestParseCarnegie_2021Workbook(t *testing.T) {
	data := workbook(t, "Data", [][]any{
		{"unitid", "name", "basic2021"},
		{240444, "University of Wisconsin-Madison", 15},
		{100654, "Alabama A & M University", 16},
		{123456, "Unclassified College", 99},
	})

	classifications, err := reference.ParseCarnegie(data, "CCIHE2021-PublicData.xlsx", reference.Carnegie2021)
	require.NoError(t, err)

	assert.Equal(t, "Doctoral Universities: Very High Research Activity", classifications["240444"].Label)
	assert.Equal(t, "15", classifications["240444"].Code)
	assert.Equal(t, "Doctoral Universities: High Research Activity", classifications["100654"].Label)
	assert.NotContains(t, classifications, "123456")
}

/*
TestParseCarnegie_2025Text accepts releases that carry the designation text.
*/
func TestParseCarnegie_2025Text(t *testing.T) {
	data := workbook(t, "Data", [][]any{
		{"UNITID", "Institution", "2025 Research Activity Designation"},
		{240444, "University of Wisconsin-Madison", "R1: Very High Research Spending and Doctorate Production"},
		{100654, "Alabama A & M University", 2},
		{110000, "No Designation", ""},
	})

	classifications, err := reference.ParseCarnegie(data, "2025-RAD-Public-Data-File.xlsx", reference.Carnegie2025)
	require.NoError(t, err)

	assert.Equal(t, "R1: Very High Research Spending and Doctorate Production", classifications["240444"].Label)
	assert.Empty(t, classifications["240444"].Code)
	assert.Equal(t, "2", classifications["100654"].Code)
	assert.NotContains(t, classifications, "110000")
}

func TestParseCarnegie_MissingSheet(t *testing.T) {
	data := workbook(t, "Summary", [][]any{{"unitid", "basic2021"}})

	_, err := reference.ParseCarnegie(data, "carnegie.xlsx", reference.Carnegie2021)
	assert.ErrorContains(t, err, `"Data"`)
}

func TestParseCarnegie_CSV(t *testing.T) {
	data := strings.NewReader("unitid,basic2021\n240444.0,15\n")

	classifications, err := reference.ParseCarnegie(data, "carnegie.csv", reference.Carnegie2021)
	require.NoError(t, err)
	assert.Equal(t, "15", classifications["240444"].Code)
}

func TestParseCarnegie_MissingColumn(t *testing.T) {
	_, err := reference.ParseCarnegie(strings.NewReader("unitid,name\n1,x\n"), "carnegie.csv", reference.Carnegie2021)
	assert.ErrorContains(t, err, "basic2021")
}
