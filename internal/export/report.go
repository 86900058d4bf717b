// Package export produces the operator Excel report: reservations for a
// date range plus the current state of the sync queue and dead letters.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"voyago/internal/database"
	"voyago/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const (
	sheetReservations = "Reservations"
	sheetQueue        = "Pending Queue"
	sheetDeadLetters  = "Dead Letters"
)

type Reporter struct {
	db  *database.DB
	dir string
	log zerolog.Logger
}

func NewReporter(db *database.DB, dir string, logger *zerolog.Logger) *Reporter {
	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "export").Logger()
	}
	return &Reporter{db: db, dir: dir, log: base}
}

// Build assembles the workbook in memory. Callers own closing the file.
func (r *Reporter) Build(ctx context.Context, from, to time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := r.writeReservations(ctx, f, from, to); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := r.writeQueue(ctx, f); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := r.writeDeadLetters(ctx, f); err != nil {
		_ = f.Close()
		return nil, err
	}

	_ = f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex(sheetReservations); err == nil {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

// SaveReport builds the workbook and writes it under the export
// directory, returning the file path.
func (r *Reporter) SaveReport(ctx context.Context, from, to time.Time) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	f, err := r.Build(ctx, from, to)
	if err != nil {
		return "", err
	}
	defer f.Close()

	fileName := fmt.Sprintf("sync_report_%s_to_%s.xlsx",
		from.Format("2006-01-02"), to.Format("2006-01-02"))
	filePath := filepath.Join(r.dir, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}

	r.log.Info().Str("file_path", filePath).Msg("export report created")
	return filePath, nil
}

func (r *Reporter) writeReservations(ctx context.Context, f *excelize.File, from, to time.Time) error {
	if _, err := f.NewSheet(sheetReservations); err != nil {
		return fmt.Errorf("create reservations sheet: %w", err)
	}

	_ = f.SetCellValue(sheetReservations, "A1", fmt.Sprintf("Period: %s - %s",
		from.Format("02.01.2006"), to.Format("02.01.2006")))
	r.styleTitle(f, sheetReservations, "A1", "J1")

	headers := []string{
		"Offline ID", "Product", "Start Date", "Participants",
		"Customer", "Phone", "Email", "Origin", "Status", "Created",
	}
	r.writeHeaderRow(f, sheetReservations, 2, headers)

	reservations, err := r.db.ListReservations(ctx, from, to)
	if err != nil {
		return err
	}

	for i, res := range reservations {
		row := i + 3
		values := []interface{}{
			res.OfflineID,
			fmt.Sprintf("%s (%d)", res.ProductName, res.ProductID),
			res.StartDate.Format("02.01.2006"),
			res.Participants,
			res.CustomerName,
			res.CustomerPhone,
			res.CustomerEmail,
			res.Origin,
			res.Status,
			res.CreatedAt.Format("02.01.2006 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetReservations, cell, v)
		}
		if res.Status == models.StatusPending {
			r.fillRow(f, sheetReservations, row, len(values), "#FFEB9C")
		}
	}

	_ = f.SetColWidth(sheetReservations, "A", "B", 28)
	_ = f.SetColWidth(sheetReservations, "C", "J", 18)
	return nil
}

func (r *Reporter) writeQueue(ctx context.Context, f *excelize.File) error {
	if _, err := f.NewSheet(sheetQueue); err != nil {
		return fmt.Errorf("create queue sheet: %w", err)
	}

	r.writeHeaderRow(f, sheetQueue, 1, []string{
		"Item ID", "Type", "Enqueued", "Last Attempt", "Attempts",
	})

	items, err := r.db.ListAll(ctx)
	if err != nil {
		return err
	}
	for i, item := range items {
		row := i + 2
		lastAttempt := ""
		if !item.LastAttemptAt.IsZero() {
			lastAttempt = item.LastAttemptAt.Format("02.01.2006 15:04:05")
		}
		values := []interface{}{
			item.ID, item.Type,
			item.EnqueuedAt.Format("02.01.2006 15:04:05"),
			lastAttempt, item.Attempts,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetQueue, cell, v)
		}
	}

	_ = f.SetColWidth(sheetQueue, "A", "A", 40)
	_ = f.SetColWidth(sheetQueue, "B", "E", 22)
	return nil
}

func (r *Reporter) writeDeadLetters(ctx context.Context, f *excelize.File) error {
	if _, err := f.NewSheet(sheetDeadLetters); err != nil {
		return fmt.Errorf("create dead letters sheet: %w", err)
	}

	r.writeHeaderRow(f, sheetDeadLetters, 1, []string{
		"Item ID", "Type", "Reason", "Attempts", "Failed At",
	})

	letters, err := r.db.ListDeadLetters(ctx, 1000)
	if err != nil {
		return err
	}
	for i, letter := range letters {
		row := i + 2
		values := []interface{}{
			letter.ItemID, letter.Type, letter.Reason, letter.Attempts,
			letter.FailedAt.Format("02.01.2006 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetDeadLetters, cell, v)
		}
		r.fillRow(f, sheetDeadLetters, row, len(values), "#FFC7CE")
	}

	_ = f.SetColWidth(sheetDeadLetters, "A", "A", 40)
	_ = f.SetColWidth(sheetDeadLetters, "B", "E", 22)
	_ = f.SetColWidth(sheetDeadLetters, "C", "C", 60)
	return nil
}

func (r *Reporter) writeHeaderRow(f *excelize.File, sheet string, row int, headers []string) {
	style, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, header)
		_ = f.SetCellStyle(sheet, cell, cell, style)
	}
}

func (r *Reporter) styleTitle(f *excelize.File, sheet, from, to string) {
	_ = f.MergeCell(sheet, from, to)
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheet, from, from, style)
}

func (r *Reporter) fillRow(f *excelize.File, sheet string, row, cols int, color string) {
	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
	})
	if err != nil {
		return
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(cols, row)
	_ = f.SetCellStyle(sheet, first, last, style)
}
