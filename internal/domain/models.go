package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an id when the caller has not chosen one
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Client is a customer of the agency. Deals and jobs reference it by ClientID.
type Client struct {
	BaseModel
	Name     string `gorm:"type:varchar(100);not null;index"`
	Industry string `gorm:"type:varchar(100)"`
	Email    string `gorm:"type:varchar(120)"`
	Phone    string `gorm:"type:varchar(20)"`
}

// UserRole is a free-form role label; these are the ones the studio uses
type UserRole string

const (
	UserRoleAdmin        UserRole = "Admin"
	UserRolePhotographer UserRole = "Photographer"
	UserRoleEditor       UserRole = "Editor"
)

// User is a member of staff who can hold profit shares, assignments and deliverables.
type User struct {
	BaseModel
	Username    string   `gorm:"type:varchar(80);not null;uniqueIndex"`
	DisplayName string   `gorm:"type:varchar(200);column:display_name"`
	Role        UserRole `gorm:"type:varchar(20);not null;default:'Photographer'"`
}

// Name returns the display name, falling back to the username
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// DealStage represents the stage of a deal in the sales pipeline
type DealStage string

const (
	DealStageNew         DealStage = "New"
	DealStageProposal    DealStage = "Proposal"
	DealStageNegotiation DealStage = "Negotiation"
	DealStageWon         DealStage = "Won"
	DealStageLost        DealStage = "Lost"
)

// DealStages lists every stage in board order
var DealStages = []DealStage{
	DealStageNew,
	DealStageProposal,
	DealStageNegotiation,
	DealStageWon,
	DealStageLost,
}

// IsValid checks if the DealStage is a valid enum value
func (s DealStage) IsValid() bool {
	switch s {
	case DealStageNew, DealStageProposal, DealStageNegotiation, DealStageWon, DealStageLost:
		return true
	}
	return false
}

// Deal represents a sales opportunity in the pipeline
type Deal struct {
	BaseModel
	ClientID     uuid.UUID       `gorm:"type:uuid;not null;index;column:client_id"`
	Client       *Client         `gorm:"foreignKey:ClientID"`
	Title        string          `gorm:"type:varchar(200);not null"`
	Value        decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	CostInternal decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:cost_internal"`
	CostExternal decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:cost_external"`
	Stage        DealStage       `gorm:"type:varchar(20);not null;default:'New';index"`
	IsRecurring  bool            `gorm:"not null;default:false;column:is_recurring"`
	Notes        string          `gorm:"type:text"`
	// JobSpawnedAt is stamped by the first transition into Won
	JobSpawnedAt *time.Time `gorm:"column:job_spawned_at"`
}

// TotalCost is internal plus external cost
func (d *Deal) TotalCost() decimal.Decimal {
	return d.CostInternal.Add(d.CostExternal)
}

// Profit is value minus total cost; it may be negative
func (d *Deal) Profit() decimal.Decimal {
	return d.Value.Sub(d.TotalCost())
}

// ProfitMargin returns profit as a percentage of value, or zero when value <= 0
func (d *Deal) ProfitMargin() decimal.Decimal {
	if !d.Value.IsPositive() {
		return decimal.Zero
	}
	return d.Profit().Div(d.Value).Mul(decimal.NewFromInt(100))
}

// DealStageHistory tracks stage changes
type DealStageHistory struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key"`
	DealID    uuid.UUID  `gorm:"type:uuid;not null;index;column:deal_id"`
	FromStage *DealStage `gorm:"type:varchar(20);column:from_stage"`
	ToStage   DealStage  `gorm:"type:varchar(20);not null;column:to_stage"`
	Notes     string     `gorm:"type:text"`
	ChangedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP;column:changed_at"`
}

// TableName overrides the default table name to match the migration
func (DealStageHistory) TableName() string {
	return "deal_stage_history"
}

func (h *DealStageHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// ProfitShare allocates part of a deal's profit to a user: a percentage of profit plus a flat amount.
type ProfitShare struct {
	BaseModel
	DealID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_profit_shares_deal_user;column:deal_id"`
	UserID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_profit_shares_deal_user;column:user_id"`
	User       *User           `gorm:"foreignKey:UserID"`
	Percentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	FlatAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:flat_amount"`
}

// CalculatedAmount is profit * percentage / 100 + flat amount
func (p *ProfitShare) CalculatedAmount(profit decimal.Decimal) decimal.Decimal {
	return profit.Mul(p.Percentage).Div(decimal.NewFromInt(100)).Add(p.FlatAmount)
}

// JobStatus represents the status of a production job
type JobStatus string

const (
	JobStatusActive    JobStatus = "Active"
	JobStatusCompleted JobStatus = "Completed"
)

// Job is a unit of production work for a client, optionally spawned by a won deal
type Job struct {
	BaseModel
	ClientID   uuid.UUID  `gorm:"type:uuid;not null;index;column:client_id"`
	Client     *Client    `gorm:"foreignKey:ClientID"`
	DealID     *uuid.UUID `gorm:"type:uuid;index;column:deal_id"`
	Deal       *Deal      `gorm:"foreignKey:DealID"`
	Title      string     `gorm:"type:varchar(200)"`
	Status     JobStatus  `gorm:"type:varchar(20);not null;default:'Active';index"`
	StartDate  time.Time  `gorm:"type:date;not null;column:start_date"`
	IsRetainer bool       `gorm:"not null;default:false;column:is_retainer"`
}

// DisplayTitle is the job title, else the linked deal's title, else a placeholder from the id.
// The deal is only consulted when preloaded.
func (j *Job) DisplayTitle() string {
	if j.Title != "" {
		return j.Title
	}
	if j.Deal != nil && j.Deal.Title != "" {
		return j.Deal.Title
	}
	return "Job #" + j.ID.String()[:8]
}

// JobAssignment places a user on a job's production roster
type JobAssignment struct {
	BaseModel
	JobID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_job_assignments_job_user;column:job_id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_job_assignments_job_user;column:user_id"`
	User   *User     `gorm:"foreignKey:UserID"`
	Role   string    `gorm:"type:varchar(50)"`
}

// DeliverableStatus is a kanban column; any status may follow any other
type DeliverableStatus string

const (
	DeliverableStatusToDo     DeliverableStatus = "To Do"
	DeliverableStatusShooting DeliverableStatus = "Shooting"
	DeliverableStatusEditing  DeliverableStatus = "Editing"
	DeliverableStatusReview   DeliverableStatus = "Review"
	DeliverableStatusDone     DeliverableStatus = "Done"
)

// DeliverableStatuses lists the board columns in display order
var DeliverableStatuses = []DeliverableStatus{
	DeliverableStatusToDo,
	DeliverableStatusShooting,
	DeliverableStatusEditing,
	DeliverableStatusReview,
	DeliverableStatusDone,
}

// IsValid checks if the DeliverableStatus is a valid enum value
func (s DeliverableStatus) IsValid() bool {
	switch s {
	case DeliverableStatusToDo, DeliverableStatusShooting, DeliverableStatusEditing, DeliverableStatusReview, DeliverableStatusDone:
		return true
	}
	return false
}

// Deliverable is a discrete output within a job
type Deliverable struct {
	BaseModel
	JobID       uuid.UUID         `gorm:"type:uuid;not null;index;column:job_id"`
	Title       string            `gorm:"type:varchar(200);not null"`
	Description string            `gorm:"type:text"`
	Status      DeliverableStatus `gorm:"type:varchar(20);not null;default:'To Do';index"`
	AssigneeID  *uuid.UUID        `gorm:"type:uuid;index;column:assignee_id"`
	Assignee    *User             `gorm:"foreignKey:AssigneeID"`
	DueDate     *time.Time        `gorm:"type:date;index;column:due_date"`
}
