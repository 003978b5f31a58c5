package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cep-formacion/planner-api/internal/dto"
	"github.com/cep-formacion/planner-api/internal/models"
	"github.com/cep-formacion/planner-api/internal/planner"
	appErrors "github.com/cep-formacion/planner-api/pkg/errors"
	"github.com/cep-formacion/planner-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type weekBuilder interface {
	Week(ctx context.Context, query dto.WeekQuery) (*models.WeekView, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	RenderWithOptions(data export.Dataset, opts export.PDFOptions) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	Locale string
}

// ExportResult is a rendered timetable ready to stream.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders the weekly timetable of a site for download or printing.
type ExportService struct {
	weeks  weekBuilder
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	cfg    ExportConfig
}

type exportColumns struct {
	day, date, start, end, room, course, teacher, status, conflict string

	title, yes string
}

var exportHeaders = map[string]exportColumns{
	planner.LocaleES: {
		day: "Día", date: "Fecha", start: "Inicio", end: "Fin", room: "Aula",
		course: "Curso", teacher: "Docente", status: "Estado", conflict: "Conflicto",
		title: "Planificador de aulas", yes: "sí",
	},
	planner.LocaleEN: {
		day: "Day", date: "Date", start: "Start", end: "End", room: "Room",
		course: "Course", teacher: "Teacher", status: "Status", conflict: "Conflict",
		title: "Room planner", yes: "yes",
	},
}

// NewExportService constructs an ExportService.
func NewExportService(weeks weekBuilder, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, ok := exportHeaders[cfg.Locale]; !ok {
		cfg.Locale = planner.LocaleES
	}
	if csv == nil {
		opts := []export.CSVOption{export.WithBOM()}
		if cfg.Locale == planner.LocaleES {
			opts = append(opts, export.WithDelimiter(';'))
		}
		csv = export.NewCSVExporter(opts...)
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{weeks: weeks, csv: csv, pdf: pdf, logger: logger, cfg: cfg}
}

// Export renders the whole week of a site in the requested format. Format defaults to CSV.
func (s *ExportService) Export(ctx context.Context, query dto.ExportQuery) (*ExportResult, error) {
	format := strings.ToLower(strings.TrimSpace(query.Format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	view, err := s.weeks.Week(ctx, dto.WeekQuery{Site: query.Site, Offset: query.Offset})
	if err != nil {
		return nil, err
	}
	dataset := s.buildDataset(view)

	var payload []byte
	contentType := "text/csv; charset=utf-8"
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		contentType = "application/pdf"
		payload, err = s.pdf.RenderWithOptions(dataset, export.PDFOptions{
			Title:     exportHeaders[s.cfg.Locale].title,
			Subtitle:  fmt.Sprintf("%s · %s", view.Site, view.Window.Label),
			Landscape: true,
			Widths:    []float64{1.2, 1.1, 0.8, 0.8, 2, 3, 2.2, 1.3, 1},
		})
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
	}

	filename := fmt.Sprintf("planner_%s_%s.%s", sanitizeFilename(view.Site), view.Window.Start.Format("20060102"), format)
	s.logger.Info("timetable exported",
		zap.String("site", view.Site),
		zap.String("format", format),
		zap.Int("rows", len(dataset.Rows)),
		zap.Int("bytes", len(payload)),
	)
	return &ExportResult{Filename: filename, ContentType: contentType, Payload: payload}, nil
}

func (s *ExportService) buildDataset(view *models.WeekView) export.Dataset {
	cols := exportHeaders[s.cfg.Locale]
	roomNames := make(map[string]string, len(view.Rooms))
	for _, column := range view.Rooms {
		roomNames[column.Room.ID] = column.Room.Name
	}
	dayNames := make(map[models.Weekday]models.DayColumn, len(view.Window.Days))
	for _, day := range view.Window.Days {
		dayNames[day.Day] = day
	}

	rows := make([]map[string]string, 0, len(view.Blocks))
	for _, block := range view.Blocks {
		entry := block.Entry
		day := dayNames[entry.Day]
		conflict := ""
		if entry.HasConflict {
			conflict = cols.yes
		}
		rows = append(rows, map[string]string{
			cols.day:      day.Name,
			cols.date:     day.Date.Format("02/01/2006"),
			cols.start:    entry.StartTime.String(),
			cols.end:      entry.EndTime().String(),
			cols.room:     roomNames[entry.RoomID],
			cols.course:   entry.CourseLabel,
			cols.teacher:  entry.TeacherLabel,
			cols.status:   string(entry.Status),
			cols.conflict: conflict,
		})
	}
	return export.Dataset{
		Headers: []string{cols.day, cols.date, cols.start, cols.end, cols.room, cols.course, cols.teacher, cols.status, cols.conflict},
		Rows:    rows,
	}
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
