package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/agency-pipeline/internal/service"
	"go.uber.org/zap"
)

type CalendarHandler struct {
	calendarService *service.CalendarService
	logger          *zap.Logger
}

func NewCalendarHandler(calendarService *service.CalendarService, logger *zap.Logger) *CalendarHandler {
	return &CalendarHandler{
		calendarService: calendarService,
		logger:          logger,
	}
}

// @Summary Production calendar
// @Description Month grid of deliverable due dates. Year and month default to the current UTC month.
// @Tags Calendar
// @Produce json
// @Param year query int false "Year (1-9999)"
// @Param month query int false "Month (1-12)"
// @Param jobId query string false "Restrict to one job"
// @Success 200 {object} domain.MonthCalendar
// @Router /calendar [get]
func (h *CalendarHandler) GetMonth(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	query := r.URL.Query()

	year := now.Year()
	if y := query.Get("year"); y != "" {
		v, err := strconv.Atoi(y)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid year: must be an integer")
			return
		}
		year = v
	}

	month := int(now.Month())
	if m := query.Get("month"); m != "" {
		v, err := strconv.Atoi(m)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid month: must be an integer")
			return
		}
		month = v
	}

	var jobID *uuid.UUID
	if j := query.Get("jobId"); j != "" {
		id, err := uuid.Parse(j)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid job ID: must be a valid UUID")
			return
		}
		jobID = &id
	}

	grid, err := h.calendarService.BuildMonthGrid(r.Context(), year, month, jobID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to build calendar",
			zap.Int("year", year), zap.Int("month", month))
		return
	}

	respondJSON(w, http.StatusOK, grid)
}
