// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/osg-htc/institutions/internal/institution"
	"github.com/osg-htc/institutions/internal/reference"
	"github.com/osg-htc/institutions/pkg/pointer"
)

func renderList(out io.Writer, institutions []institution.Institution) {
	table := newTable(out, []string{"ID", "Name", "ROR ID", "Unit ID", "State", "Latitude", "Longitude"})

	for _, inst := range institutions {
		table.Append([]string{
			inst.ShortID(),
			inst.Name,
			inst.IdentifierValue(institution.KindRORID),
			inst.IdentifierValue(institution.KindUnitID),
			pointer.Val(inst.State),
			formatCoordinate(inst.Latitude),
			formatCoordinate(inst.Longitude),
		})
	}

	table.Render()
	fmt.Fprintf(out, "%d valid institutions\n", len(institutions))
}

func renderInstitution(out io.Writer, inst institution.Institution) {
	status := color.New(color.FgGreen).Sprint("valid")
	if !inst.Valid {
		status = color.New(color.FgRed).Sprint("invalidated")
	}

	table := newTable(out, []string{"Field", "Value"})
	table.AppendBulk([][]string{
		{"id", inst.PublicID},
		{"name", inst.Name},
		{"status", status},
		{"ror_id", inst.IdentifierValue(institution.KindRORID)},
		{"unitid", inst.IdentifierValue(institution.KindUnitID)},
		{"state", pointer.Val(inst.State)},
		{"latitude", formatCoordinate(inst.Latitude)},
		{"longitude", formatCoordinate(inst.Longitude)},
		{"created", inst.CreatedAt.Format("2006-01-02 15:04:05Z07:00") + " by " + inst.CreatedBy},
	})
	if inst.UpdatedAt != nil {
		table.Append([]string{"updated", inst.UpdatedAt.Format("2006-01-02 15:04:05Z07:00") + " by " + pointer.Val(inst.UpdatedBy)})
	}

	if unitID, ok := inst.Identifier(institution.KindUnitID); ok {
		if ipeds := unitID.IPEDS; ipeds != nil {
			table.AppendBulk([][]string{
				{"ipeds.website", ipeds.Website},
				{"ipeds.control", string(ipeds.Control)},
				{"ipeds.program_length", string(ipeds.ProgramLength)},
				{"ipeds.size", string(ipeds.InstitutionSize)},
				{"ipeds.hbcu", strconv.FormatBool(ipeds.HBCU)},
				{"ipeds.tribal", strconv.FormatBool(ipeds.Tribal)},
			})
		}
		if carnegie := unitID.Carnegie; carnegie != nil {
			table.Append([]string{"carnegie.2021", pointer.Val(carnegie.Classification2021)})
			table.Append([]string{"carnegie.2025", pointer.Val(carnegie.Classification2025)})
		}
	}

	table.Render()
}

func renderLookup(ctx context.Context, out io.Writer, catalog institution.ReferenceData, unitID string) error {
	record, found, err := catalog.IPEDS(ctx, unitID)
	if err != nil {
		return err
	}
	if !found {
		color.New(color.FgYellow).Fprintf(out, "unit id %s is not in the IPEDS dataset\n", unitID)
		return nil
	}

	table := newTable(out, []string{"Field", "Value"})
	table.AppendBulk([][]string{
		{"unitid", record.UnitID},
		{"name", record.Name},
		{"website", record.Website},
		{"state", record.State},
		{"control", string(record.Control)},
		{"program_length", string(record.ProgramLength)},
		{"size", string(record.InstitutionSize)},
		{"latitude", formatCoordinate(record.Latitude)},
		{"longitude", formatCoordinate(record.Longitude)},
	})

	for _, lookup := range []struct {
		label string
		find  func(context.Context, string) (reference.Classification, bool, error)
	}{
		{"carnegie.2021", catalog.Carnegie2021},
		{"carnegie.2025", catalog.Carnegie2025},
	} {
		classification, ok, err := lookup.find(ctx, unitID)
		if err != nil {
			return err
		}
		if ok {
			table.Append([]string{lookup.label, classification.Label})
		}
	}

	table.Render()
	return nil
}

// newTable renders without wrapping so long names and labels stay on one line.
func newTable(out io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	return table
}

func formatCoordinate(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}
