package mapper_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/agency-pipeline/internal/domain"
	"github.com/straye-as/agency-pipeline/internal/mapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	assert.Equal(t, 1234.57, mapper.Money(decimal.RequireFromString("1234.5678")))
	assert.Equal(t, -3.0, mapper.Money(decimal.NewFromInt(-3)))
	assert.Equal(t, 0.0, mapper.Money(decimal.Zero))
}

func TestParseDate(t *testing.T) {
	d, err := mapper.ParseDate("2024-05-17")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.May, 17, 0, 0, 0, 0, time.UTC), d)

	_, err = mapper.ParseDate("17.05.2024")
	assert.Error(t, err)
	_, err = mapper.ParseDate("2024-02-30")
	assert.Error(t, err)
}

func TestDateOnly(t *testing.T) {
	oslo := time.FixedZone("CEST", 2*60*60)
	// 01:30 local is still the previous day in UTC
	in := time.Date(2024, time.May, 17, 1, 30, 0, 0, oslo)
	assert.Equal(t, time.Date(2024, time.May, 16, 0, 0, 0, 0, time.UTC), mapper.DateOnly(in))
}

func TestToDealDTO(t *testing.T) {
	spawned := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	deal := &domain.Deal{
		BaseModel:    domain.BaseModel{ID: uuid.New()},
		ClientID:     uuid.New(),
		Client:       &domain.Client{Name: "Fjord Hotel"},
		Title:        "Summer brochure",
		Value:        decimal.NewFromInt(10000),
		CostInternal: decimal.NewFromInt(2000),
		CostExternal: decimal.NewFromInt(1000),
		Stage:        domain.DealStageWon,
		JobSpawnedAt: &spawned,
	}

	dto := mapper.ToDealDTO(deal)

	assert.Equal(t, "Fjord Hotel", dto.ClientName)
	assert.Equal(t, 3000.0, dto.TotalCost)
	assert.Equal(t, 7000.0, dto.Profit)
	assert.Equal(t, 70.0, dto.ProfitMargin)
	require.NotNil(t, dto.JobSpawnedAt)
	assert.Equal(t, "2024-03-01T12:00:00Z", *dto.JobSpawnedAt)
}

func TestToProfitShareDTO(t *testing.T) {
	share := &domain.ProfitShare{
		User:       &domain.User{Username: "ola"},
		Percentage: decimal.NewFromInt(20),
		FlatAmount: decimal.NewFromInt(100),
	}

	dto := mapper.ToProfitShareDTO(share, decimal.NewFromInt(5000))

	assert.Equal(t, "ola", dto.UserName)
	assert.Equal(t, 1100.0, dto.CalculatedAmount)
}

func TestToDeliverableDTO(t *testing.T) {
	due := time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)
	d := &domain.Deliverable{
		Title:    "Hero image",
		Status:   domain.DeliverableStatusEditing,
		Assignee: &domain.User{Username: "ola", DisplayName: "Ola"},
		DueDate:  &due,
	}

	dto := mapper.ToDeliverableDTO(d)

	assert.Equal(t, "Ola", dto.AssigneeName)
	require.NotNil(t, dto.DueDate)
	assert.Equal(t, "2024-06-03", *dto.DueDate)

	d.DueDate = nil
	assert.Nil(t, mapper.ToDeliverableDTO(d).DueDate)
}
