package export

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/shrimpsizemoose/trekker/logger"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/shrimpsizemoose/zhurnal/internal/app"
	"github.com/shrimpsizemoose/zhurnal/internal/billing"
	"github.com/shrimpsizemoose/zhurnal/internal/metrics"
	"github.com/shrimpsizemoose/zhurnal/internal/models"
)

// valuesWriter is the part of the sheets API the exporter writes through.
type valuesWriter interface {
	Update(sheetID, cellRange string, values [][]interface{}) error
}

type sheetsWriter struct {
	svc *sheets.Service
}

func (w sheetsWriter) Update(sheetID, cellRange string, values [][]interface{}) error {
	_, err := w.svc.Spreadsheets.Values.Update(sheetID, cellRange,
		&sheets.ValueRange{Values: values}).ValueInputOption("RAW").Do()
	return err
}

type GSheetExporter struct {
	service   *app.Service
	scheduler *gocron.Scheduler
	writers   map[string]valuesWriter
}

func NewGSheetExporter(service *app.Service) (*GSheetExporter, error) {
	ctx := context.Background()
	e := &GSheetExporter{
		service:   service,
		scheduler: gocron.NewScheduler(time.UTC),
		writers:   make(map[string]valuesWriter),
	}

	for i := range service.Config.GSheet {
		cfg := service.Config.GSheet[i]
		svc, err := sheets.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath))
		if err != nil {
			return nil, fmt.Errorf("failed to create sheets service for %s: %w", cfg.SheetName, err)
		}
		e.writers[cfg.SheetID] = sheetsWriter{svc: svc}

		_, err = e.scheduler.Cron(cfg.Schedule).Do(func() {
			if err := e.Export(&cfg); err != nil {
				logger.Error.Printf("Export to %s failed: %v", cfg.SheetName, err)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("failed to schedule export: %w", err)
		}
		logger.Info.Printf("Scheduled export to %s/%s at %q", cfg.SheetID, cfg.SheetName, cfg.Schedule)
	}

	e.scheduler.StartAsync()
	return e, nil
}

func (e *GSheetExporter) Stop() {
	e.scheduler.Stop()
}

// Export writes the current month's bills starting at StartRow, the total
// goes right below the last student.
func (e *GSheetExporter) Export(cfg *app.GSheetConfig) error {
	writer, ok := e.writers[cfg.SheetID]
	if !ok {
		return fmt.Errorf("no writer for sheet %s", cfg.SheetID)
	}

	now := e.service.Now()
	m := billing.MonthOf(models.DateOf(now))

	students, err := e.service.Store.ListStudents()
	if err != nil {
		return fmt.Errorf("failed to list students: %w", err)
	}
	attendance, err := e.service.Store.ListAttendance(m.Start, m.End)
	if err != nil {
		return fmt.Errorf("failed to list attendance: %w", err)
	}
	bills, total := e.service.Ledger.Statement(students, attendance, m)

	startRow := cfg.StartRow
	if startRow < 1 {
		startRow = 2
	}
	rows := billRows(m, bills, total)
	updateRange := fmt.Sprintf("%s!A%d:D%d", cfg.SheetName, startRow, startRow+len(rows)-1)
	if err := writer.Update(cfg.SheetID, updateRange, rows); err != nil {
		return fmt.Errorf("failed to write bills: %w", err)
	}
	metrics.BillsExportedTotal.WithLabelValues(cfg.SheetName).Add(float64(len(bills)))

	if cfg.TimestampRange == "" {
		return nil
	}
	timestamp := fmt.Sprintf("UPD: %s %s", now.Format("2 January 15:04"), e.emoji())
	timestampRange := fmt.Sprintf("%s!%s", cfg.SheetName, cfg.TimestampRange)
	return writer.Update(cfg.SheetID, timestampRange, [][]interface{}{{timestamp}})
}

func (e *GSheetExporter) emoji() string {
	variants := e.service.Config.EmojiVariants
	if len(variants) == 0 {
		return ""
	}
	return variants[rand.Intn(len(variants))]
}

func billRows(m billing.Month, bills []billing.Bill, total int) [][]interface{} {
	rows := make([][]interface{}, 0, len(bills)+1)
	for _, b := range bills {
		rows = append(rows, []interface{}{m.String(), b.Name, b.Lessons, b.MonthSum})
	}
	rows = append(rows, []interface{}{m.String(), "Разом", "", total})
	return rows
}
