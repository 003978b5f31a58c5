package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cep-formacion/planner-api/internal/dto"
	"github.com/cep-formacion/planner-api/internal/models"
	"github.com/cep-formacion/planner-api/internal/planner"
	appErrors "github.com/cep-formacion/planner-api/pkg/errors"
)

type weekBuilderStub struct {
	view  *models.WeekView
	err   error
	query dto.WeekQuery
}

func (w *weekBuilderStub) Week(_ context.Context, query dto.WeekQuery) (*models.WeekView, error) {
	w.query = query
	return w.view, w.err
}

func sampleWeekView() *models.WeekView {
	monday := time.Date(2025, time.October, 13, 0, 0, 0, 0, time.UTC)
	window := planner.ResolveWindow(0, monday, planner.LocaleES)
	room := models.Room{ID: "r1", Name: "Aula 101", SiteID: "CEP Norte"}
	return &models.WeekView{
		Site:   "CEP Norte",
		Window: window,
		Rooms:  []models.RoomColumn{{Room: room}},
		Blocks: []models.PositionedBlock{
			{Entry: models.ScheduleEntry{ID: "e1", RoomID: "r1", Day: models.Monday, StartTime: mustClock("09:00"), DurationMinutes: 90, CourseLabel: "Excel avanzado", TeacherLabel: "Ana Ruiz", Status: models.EntryStatusInProgress}},
			{Entry: models.ScheduleEntry{ID: "e2", RoomID: "r1", Day: models.Saturday, StartTime: mustClock("10:00"), DurationMinutes: 60, CourseLabel: "Fotografía", TeacherLabel: "Eva Sanz", HasConflict: true}},
		},
	}
}

func TestExportServiceCSV(t *testing.T) {
	weeks := &weekBuilderStub{view: sampleWeekView()}
	svc := NewExportService(weeks, ExportConfig{Locale: "es"}, zap.NewNop(), nil, nil)

	result, err := svc.Export(context.Background(), dto.ExportQuery{Site: "CEP Norte", Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, dto.WeekQuery{Site: "CEP Norte", Offset: 2}, weeks.query)
	assert.Equal(t, "planner_CEP_Norte_20251013.csv", result.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", result.ContentType)

	lines := strings.Split(strings.TrimPrefix(string(result.Payload), "\ufeff"), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "Día;Fecha;Inicio;Fin;Aula;Curso;Docente;Estado;Conflicto", lines[0])
	assert.Equal(t, "Lunes;13/10/2025;09:00;10:30;Aula 101;Excel avanzado;Ana Ruiz;IN_PROGRESS;", lines[1])
	assert.Equal(t, "Sábado;18/10/2025;10:00;11:00;Aula 101;Fotografía;Eva Sanz;;sí", lines[2])
}

func TestExportServiceEnglishCSV(t *testing.T) {
	svc := NewExportService(&weekBuilderStub{view: sampleWeekView()}, ExportConfig{Locale: "en"}, nil, nil, nil)

	result, err := svc.Export(context.Background(), dto.ExportQuery{Format: "CSV"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(result.Payload, []byte("\ufeffDay,Date,Start,End,Room,Course,Teacher,Status,Conflict\n")))
}

func TestExportServicePDF(t *testing.T) {
	svc := NewExportService(&weekBuilderStub{view: sampleWeekView()}, ExportConfig{}, nil, nil, nil)

	result, err := svc.Export(context.Background(), dto.ExportQuery{Format: "pdf"})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))
	assert.True(t, bytes.HasPrefix(result.Payload, []byte("%PDF-")))
}

func TestExportServiceErrors(t *testing.T) {
	svc := NewExportService(&weekBuilderStub{view: sampleWeekView()}, ExportConfig{}, nil, nil, nil)
	_, err := svc.Export(context.Background(), dto.ExportQuery{Format: "xlsx"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	notFound := appErrors.Clone(appErrors.ErrNotFound, "site not found")
	svc = NewExportService(&weekBuilderStub{err: notFound}, ExportConfig{}, nil, nil, nil)
	_, err = svc.Export(context.Background(), dto.ExportQuery{Site: "CEP Este"})
	assert.True(t, errors.Is(err, notFound))
}
