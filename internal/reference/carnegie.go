// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package reference

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/osg-htc/institutions/pkg/convert"
)

// CarnegieSheet is the worksheet holding the public data in every Carnegie release.
const CarnegieSheet = "Data"

// CarnegieLayout locates the unit id and classification columns of one release.
type CarnegieLayout struct {
	KeyColumn   string
	ValueColumn string
	labels      map[int]string
}

var (
	// Carnegie2021 is the 2021 basic classification release.
	Carnegie2021 = CarnegieLayout{KeyColumn: "unitid", ValueColumn: "basic2021", labels: basic2021Labels}

	// Carnegie2025 is the 2025 Research Activity Designation release.
	Carnegie2025 = CarnegieLayout{KeyColumn: "UNITID", ValueColumn: "2025 Research Activity Designation", labels: researchDesignation2025Labels}
)

// classify turns a raw cell into a classification.
func (layout CarnegieLayout) classify(raw string) (Classification, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Classification{}, false
	}

	if code, ok := convert.Int(raw); ok {
		label, known := layout.labels[code]
		if !known {
			return Classification{}, false
		}
		return Classification{Code: fmt.Sprint(code), Label: label}, true
	}

	// Text releases carry the label directly.
	return Classification{Label: raw}, true
}

// ParseCarnegie reads a Carnegie release. name selects the format by extension:
// .xlsx is read with excelize, anything else is treated as CSV.
func ParseCarnegie(r io.Reader, name string, layout CarnegieLayout) (map[string]Classification, error) {
	var (
		rows [][]string
		err  error
	)

	if strings.EqualFold(path.Ext(name), ".xlsx") {
		rows, err = readWorkbook(r)
	} else {
		rows, err = csv.NewReader(r).ReadAll()
	}
	if err != nil {
		return nil, fmt.Errorf("reference: read carnegie %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("reference: carnegie %s is empty", name)
	}

	keyIndex, valueIndex := -1, -1
	for i, column := range rows[0] {
		switch strings.TrimSpace(column) {
		case layout.KeyColumn:
			keyIndex = i
		case layout.ValueColumn:
			valueIndex = i
		}
	}
	if keyIndex < 0 || valueIndex < 0 {
		return nil, fmt.Errorf("reference: carnegie %s lacks %q or %q column", name, layout.KeyColumn, layout.ValueColumn)
	}

	classifications := make(map[string]Classification, len(rows)-1)
	for _, row := range rows[1:] {
		if keyIndex >= len(row) || valueIndex >= len(row) {
			continue
		}

		unitID := convert.Key(row[keyIndex])
		if unitID == "" {
			continue
		}
		if classification, ok := layout.classify(row[valueIndex]); ok {
			classifications[unitID] = classification
		}
	}

	return classifications, nil
}

func readWorkbook(r io.Reader) ([][]string, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer workbook.Close()

	rows, err := workbook.GetRows(CarnegieSheet)
	if err != nil {
		var missing excelize.ErrSheetNotExist
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("workbook has no %q sheet", CarnegieSheet)
		}
		return nil, err
	}
	return rows, nil
}
