// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package reference

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/osg-htc/institutions/pkg/convert"
)

// IPEDS column names consumed from hd20xx.csv.
const (
	colUnitID    = "UNITID"
	colName      = "INSTNM"
	colWebsite   = "WEBADDR"
	colHBCU      = "HBCU"
	colTribal    = "TRIBAL"
	colLevel     = "ICLEVEL"
	colControl   = "CONTROL"
	colState     = "STABBR"
	colSize      = "INSTSIZE"
	colLatitude  = "LATITUDE"
	colLongitude = "LONGITUD"
)

// ParseIPEDS reads a Latin-1 encoded IPEDS header file into records keyed by unit id.
func ParseIPEDS(r io.Reader) (map[string]IPEDSRecord, error) {
	reader := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reference: read ipeds header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		// Excel exports start with a UTF-8 BOM, which reads back as three Latin-1 runes.
		name = strings.TrimPrefix(strings.TrimSpace(name), "\u00ef\u00bb\u00bf")
		columns[strings.ToUpper(name)] = i
	}
	if _, ok := columns[colUnitID]; !ok {
		return nil, fmt.Errorf("reference: ipeds file has no %s column", colUnitID)
	}

	records := make(map[string]IPEDSRecord)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reference: read ipeds line %d: %w", line, err)
		}

		cell := func(column string) string {
			i, ok := columns[column]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		unitID := convert.Key(cell(colUnitID))
		if unitID == "" {
			continue
		}

		record := IPEDSRecord{
			UnitID:  unitID,
			Name:    cell(colName),
			Website: cell(colWebsite),
			HBCU:    codeIs(cell(colHBCU), 1),
			Tribal:  codeIs(cell(colTribal), 1),
			State:   cell(colState),
		}

		if code, ok := convert.Int(cell(colLevel)); ok {
			record.ProgramLength = programLengthCodes[code]
		}
		if code, ok := convert.Int(cell(colControl)); ok {
			record.Control = controlCodes[code]
		}
		if code, ok := convert.Int(cell(colSize)); ok {
			record.InstitutionSize = sizeCodes[code]
		}

		lat, latOK := convert.Float(cell(colLatitude))
		lon, lonOK := convert.Float(cell(colLongitude))
		if latOK && lonOK {
			record.Latitude, record.Longitude = &lat, &lon
		}

		records[unitID] = record
	}

	return records, nil
}

func codeIs(cell string, want int) bool {
	code, ok := convert.Int(cell)
	return ok && code == want
}
