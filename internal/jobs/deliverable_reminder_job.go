package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/agency-pipeline/internal/domain"
	"github.com/straye-as/agency-pipeline/internal/logger"
	"go.uber.org/zap"
)

// DeliverableReminderJobName is the scheduler name of the due date sweep
const DeliverableReminderJobName = "deliverable_reminders"

// DueDeliverableSource lists open assigned deliverables due within the lookahead window.
// Overdue work is included.
type DueDeliverableSource interface {
	ListDueSoon(ctx context.Context, lookaheadDays int) ([]domain.DeliverableDTO, error)
}

// DeliverableReminderJob logs, per assignee, the deliverables that are due soon
type DeliverableReminderJob struct {
	source        DueDeliverableSource
	logger        *zap.Logger
	lookaheadDays int
	timeout       time.Duration
}

func NewDeliverableReminderJob(source DueDeliverableSource, log *zap.Logger, lookaheadDays int, timeout time.Duration) *DeliverableReminderJob {
	return &DeliverableReminderJob{
		source:        source,
		logger:        logger.ForJob(log, DeliverableReminderJobName),
		lookaheadDays: lookaheadDays,
		timeout:       timeout,
	}
}

// Run performs one sweep and returns the number of assignees reminded
func (j *DeliverableReminderJob) Run() int {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	due, err := j.source.ListDueSoon(ctx, j.lookaheadDays)
	if err != nil {
		j.logger.Error("deliverable reminder sweep failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return 0
	}

	// Group by assignee, keeping the soonest-first order of the source
	var order []uuid.UUID
	byAssignee := make(map[uuid.UUID][]domain.DeliverableDTO)
	for _, d := range due {
		if d.AssigneeID == nil {
			continue
		}
		id := *d.AssigneeID
		if _, ok := byAssignee[id]; !ok {
			order = append(order, id)
		}
		byAssignee[id] = append(byAssignee[id], d)
	}

	for _, id := range order {
		items := byAssignee[id]
		titles := make([]string, len(items))
		for i, d := range items {
			titles[i] = d.Title
		}
		j.logger.Info("deliverables due soon",
			zap.String("assignee_id", id.String()),
			zap.String("assignee", items[0].AssigneeName),
			zap.Int("count", len(items)),
			zap.Strings("titles", titles),
			zap.Stringp("next_due", items[0].DueDate))
	}

	j.logger.Info("deliverable reminder sweep completed",
		zap.Int("deliverables", len(due)),
		zap.Int("assignees", len(order)),
		zap.Duration("duration", time.Since(start)))
	return len(order)
}

// RegisterDeliverableReminderJob adds the reminder sweep to the scheduler
func RegisterDeliverableReminderJob(scheduler *Scheduler, source DueDeliverableSource, log *zap.Logger, cronExpr string, lookaheadDays int, timeout time.Duration) error {
	job := NewDeliverableReminderJob(source, log, lookaheadDays, timeout)
	return scheduler.AddJob(DeliverableReminderJobName, cronExpr, func() { job.Run() })
}
