package mapper

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/straye-as/agency-pipeline/internal/domain"
)

// ToClientDTO converts Client to ClientDTO
func ToClientDTO(client *domain.Client) domain.ClientDTO {
	return domain.ClientDTO{
		ID:        client.ID,
		Name:      client.Name,
		Industry:  client.Industry,
		Email:     client.Email,
		Phone:     client.Phone,
		CreatedAt: client.CreatedAt.Format(domain.TimestampLayout),
		UpdatedAt: client.UpdatedAt.Format(domain.TimestampLayout),
	}
}

// ToUserDTO converts User to UserDTO
func ToUserDTO(user *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.Name(),
		Role:        user.Role,
		CreatedAt:   user.CreatedAt.Format(domain.TimestampLayout),
	}
}

// ToDealDTO converts Deal to DealDTO, including the derived money fields
func ToDealDTO(deal *domain.Deal) domain.DealDTO {
	dto := domain.DealDTO{
		ID:           deal.ID,
		ClientID:     deal.ClientID,
		Title:        deal.Title,
		Value:        Money(deal.Value),
		CostInternal: Money(deal.CostInternal),
		CostExternal: Money(deal.CostExternal),
		TotalCost:    Money(deal.TotalCost()),
		Profit:       Money(deal.Profit()),
		ProfitMargin: Money(deal.ProfitMargin()),
		Stage:        deal.Stage,
		IsRecurring:  deal.IsRecurring,
		Notes:        deal.Notes,
		CreatedAt:    deal.CreatedAt.Format(domain.TimestampLayout),
		UpdatedAt:    deal.UpdatedAt.Format(domain.TimestampLayout),
	}
	if deal.Client != nil {
		dto.ClientName = deal.Client.Name
	}
	if deal.JobSpawnedAt != nil {
		spawned := deal.JobSpawnedAt.Format(domain.TimestampLayout)
		dto.JobSpawnedAt = &spawned
	}
	return dto
}

// ToDealStageHistoryDTO converts DealStageHistory to DealStageHistoryDTO
func ToDealStageHistoryDTO(h *domain.DealStageHistory) domain.DealStageHistoryDTO {
	return domain.DealStageHistoryDTO{
		ID:        h.ID,
		DealID:    h.DealID,
		FromStage: h.FromStage,
		ToStage:   h.ToStage,
		Notes:     h.Notes,
		ChangedAt: h.ChangedAt.Format(domain.TimestampLayout),
	}
}

// ToProfitShareDTO converts ProfitShare to ProfitShareDTO; profit is the owning deal's profit
func ToProfitShareDTO(share *domain.ProfitShare, profit decimal.Decimal) domain.ProfitShareDTO {
	dto := domain.ProfitShareDTO{
		ID:               share.ID,
		DealID:           share.DealID,
		UserID:           share.UserID,
		Percentage:       Money(share.Percentage),
		FlatAmount:       Money(share.FlatAmount),
		CalculatedAmount: Money(share.CalculatedAmount(profit)),
	}
	if share.User != nil {
		dto.UserName = share.User.Name()
	}
	return dto
}

// ToJobDTO converts Job to JobDTO. Preload Deal for the display title fallback.
func ToJobDTO(job *domain.Job) domain.JobDTO {
	dto := domain.JobDTO{
		ID:           job.ID,
		ClientID:     job.ClientID,
		DealID:       job.DealID,
		Title:        job.Title,
		DisplayTitle: job.DisplayTitle(),
		Status:       job.Status,
		StartDate:    job.StartDate.Format(domain.DateLayout),
		IsRetainer:   job.IsRetainer,
		CreatedAt:    job.CreatedAt.Format(domain.TimestampLayout),
		UpdatedAt:    job.UpdatedAt.Format(domain.TimestampLayout),
	}
	if job.Client != nil {
		dto.ClientName = job.Client.Name
	}
	return dto
}

// ToJobAssignmentDTO converts JobAssignment to JobAssignmentDTO
func ToJobAssignmentDTO(a *domain.JobAssignment) domain.JobAssignmentDTO {
	dto := domain.JobAssignmentDTO{
		ID:        a.ID,
		JobID:     a.JobID,
		UserID:    a.UserID,
		Role:      a.Role,
		CreatedAt: a.CreatedAt.Format(domain.TimestampLayout),
	}
	if a.User != nil {
		dto.UserName = a.User.Name()
	}
	return dto
}

// ToDeliverableDTO converts Deliverable to DeliverableDTO
func ToDeliverableDTO(d *domain.Deliverable) domain.DeliverableDTO {
	dto := domain.DeliverableDTO{
		ID:          d.ID,
		JobID:       d.JobID,
		Title:       d.Title,
		Description: d.Description,
		Status:      d.Status,
		AssigneeID:  d.AssigneeID,
		CreatedAt:   d.CreatedAt.Format(domain.TimestampLayout),
		UpdatedAt:   d.UpdatedAt.Format(domain.TimestampLayout),
	}
	if d.Assignee != nil {
		dto.AssigneeName = d.Assignee.Name()
	}
	if d.DueDate != nil {
		due := d.DueDate.Format(domain.DateLayout)
		dto.DueDate = &due
	}
	return dto
}

// ToDeliverableDTOs converts a slice, preserving order
func ToDeliverableDTOs(items []domain.Deliverable) []domain.DeliverableDTO {
	dtos := make([]domain.DeliverableDTO, len(items))
	for i := range items {
		dtos[i] = ToDeliverableDTO(&items[i])
	}
	return dtos
}

// Money rounds a decimal to cents for the float64 wire format
func Money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// ParseDate parses a YYYY-MM-DD string as a UTC midnight
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(domain.DateLayout, s, time.UTC)
}

// DateOnly truncates t to its UTC calendar date
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
