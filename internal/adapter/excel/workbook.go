// Package excel exports a dashboard snapshot as an XLSX workbook.
package excel

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/crop-production-dashboard/internal/dashboard"
	"github.com/couchcryptid/crop-production-dashboard/internal/domain"
)

// Sheet names.
const (
	RankingSheet = "Ranking"
	SummarySheet = "Resumo"
)

var rankingHeaders = []string{"Posição", "Região", "UF", "Produção (t)", "Produção", "Participação (%)"}

// WriteWorkbook writes the ranking and the summary figures of snap to w.
func WriteWorkbook(w io.Writer, snap *dashboard.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RankingSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRanking(f, snap.Top); err != nil {
		return fmt.Errorf("write %s: %w", RankingSheet, err)
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create %s: %w", SummarySheet, err)
	}
	if err := writeSummary(f, snap); err != nil {
		return fmt.Errorf("write %s: %w", SummarySheet, err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRanking(f *excelize.File, top []domain.RankedEntry) error {
	for i, h := range rankingHeaders {
		if err := setCell(f, RankingSheet, i+1, 1, h); err != nil {
			return err
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(RankingSheet, col, col, 22); err != nil {
			return err
		}
	}

	for i, e := range top {
		row := []any{
			e.Position(),
			e.RegionName(),
			e.State(),
			e.Quantity,
			domain.FormatQuantity(e.Quantity),
			fmt.Sprintf("%.1f", e.Share),
		}
		for j, v := range row {
			if err := setCell(f, RankingSheet, j+1, i+2, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeSummary(f *excelize.File, snap *dashboard.Snapshot) error {
	rows := [][]any{
		{"Produção total (t)", snap.Total},
		{"Produção total", domain.FormatQuantity(snap.Total)},
		{"Regiões produtoras", snap.Regions},
		{"Maior produtor", snap.Leader},
		{"Ano", yearLabel(snap.Filter.Year)},
		{"Cultura", snap.Filter.Culture},
		{"Origem dos dados", string(snap.Status)},
		{"Gerado em", snap.GeneratedAt.Format(time.RFC3339)},
	}
	for i, r := range rows {
		for j, v := range r {
			if err := setCell(f, SummarySheet, j+1, i+1, v); err != nil {
				return err
			}
		}
	}
	return f.SetColWidth(SummarySheet, "A", "B", 28)
}

func setCell(f *excelize.File, sheet string, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, v)
}

func yearLabel(year int) string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}
