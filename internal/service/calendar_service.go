package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/agency-pipeline/internal/calendar"
	"github.com/straye-as/agency-pipeline/internal/domain"
	"github.com/straye-as/agency-pipeline/internal/mapper"
	"github.com/straye-as/agency-pipeline/internal/repository"
	"go.uber.org/zap"
)

// CalendarService builds the month view of deliverable due dates
type CalendarService struct {
	deliverableRepo *repository.DeliverableRepository
	jobRepo         *repository.JobRepository
	weekStart       time.Weekday
	logger          *zap.Logger
}

func NewCalendarService(
	deliverableRepo *repository.DeliverableRepository,
	jobRepo *repository.JobRepository,
	weekStart time.Weekday,
	logger *zap.Logger,
) *CalendarService {
	return &CalendarService{
		deliverableRepo: deliverableRepo,
		jobRepo:         jobRepo,
		weekStart:       weekStart,
		logger:          logger,
	}
}

// BuildMonthGrid returns the week rows of the month and its deliverables keyed by
// day of month, optionally restricted to one job
func (s *CalendarService) BuildMonthGrid(ctx context.Context, year, month int, jobID *uuid.UUID) (*domain.MonthCalendar, error) {
	if month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}
	if year < 1 || year > 9999 {
		return nil, ErrInvalidYear
	}
	if jobID != nil {
		if _, err := s.jobRepo.GetByID(ctx, *jobID); err != nil {
			return nil, notFoundOr(err, ErrJobNotFound, "failed to get job")
		}
	}

	m := time.Month(month)
	first, last := calendar.MonthBounds(year, m)

	// Half-open on the day after last so a stored time of day cannot drop the final day
	deliverables, err := s.deliverableRepo.ListDueBetween(ctx, first, last.AddDate(0, 0, 1), jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliverables: %w", err)
	}

	byDay := make(map[int][]domain.DeliverableDTO)
	for i := range deliverables {
		day := deliverables[i].DueDate.UTC().Day()
		byDay[day] = append(byDay[day], mapper.ToDeliverableDTO(&deliverables[i]))
	}

	prevYear, prevMonth := calendar.Prev(year, m)
	nextYear, nextMonth := calendar.Next(year, m)

	return &domain.MonthCalendar{
		Year:              year,
		Month:             month,
		Weeks:             calendar.MonthGrid(year, m, s.weekStart),
		DeliverablesByDay: byDay,
		PrevMonth:         int(prevMonth),
		PrevYear:          prevYear,
		NextMonth:         int(nextMonth),
		NextYear:          nextYear,
	}, nil
}
