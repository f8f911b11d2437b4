package domain

import (
	"github.com/google/uuid"
)

// DateLayout is the wire format for date-only fields (start and due dates)
const DateLayout = "2006-01-02"

// TimestampLayout is the wire format for created/updated timestamps
const TimestampLayout = "2006-01-02T15:04:05Z"

// Response DTOs

type ClientDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Industry  string    `json:"industry,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt string    `json:"createdAt"` // ISO 8601
	UpdatedAt string    `json:"updatedAt"` // ISO 8601
}

type UserDTO struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Role        UserRole  `json:"role"`
	CreatedAt   string    `json:"createdAt"`
}

type DealDTO struct {
	ID           uuid.UUID `json:"id"`
	ClientID     uuid.UUID `json:"clientId"`
	ClientName   string    `json:"clientName,omitempty"`
	Title        string    `json:"title"`
	Value        float64   `json:"value"`
	CostInternal float64   `json:"costInternal"`
	CostExternal float64   `json:"costExternal"`
	TotalCost    float64   `json:"totalCost"`
	Profit       float64   `json:"profit"`
	ProfitMargin float64   `json:"profitMargin"` // percent of value, 0 when value <= 0
	Stage        DealStage `json:"stage"`
	IsRecurring  bool      `json:"isRecurring"`
	Notes        string    `json:"notes,omitempty"`
	JobSpawnedAt *string   `json:"jobSpawnedAt,omitempty"`
	CreatedAt    string    `json:"createdAt"`
	UpdatedAt    string    `json:"updatedAt"`
}

type DealStageHistoryDTO struct {
	ID        uuid.UUID  `json:"id"`
	DealID    uuid.UUID  `json:"dealId"`
	FromStage *DealStage `json:"fromStage,omitempty"`
	ToStage   DealStage  `json:"toStage"`
	Notes     string     `json:"notes,omitempty"`
	ChangedAt string     `json:"changedAt"`
}

type ProfitShareDTO struct {
	ID               uuid.UUID `json:"id"`
	DealID           uuid.UUID `json:"dealId"`
	UserID           uuid.UUID `json:"userId"`
	UserName         string    `json:"userName,omitempty"`
	Percentage       float64   `json:"percentage"`
	FlatAmount       float64   `json:"flatAmount"`
	CalculatedAmount float64   `json:"calculatedAmount"`
}

// DealProfitSummary is the profit breakdown of a single deal
type DealProfitSummary struct {
	DealID              uuid.UUID        `json:"dealId"`
	Value               float64          `json:"value"`
	TotalCost           float64          `json:"totalCost"`
	Profit              float64          `json:"profit"`
	ProfitMargin        float64          `json:"profitMargin"`
	Shares              []ProfitShareDTO `json:"shares"`
	AllocatedTotal      float64          `json:"allocatedTotal"`
	AllocatedPercentage float64          `json:"allocatedPercentage"`
	// OverAllocated is informational; shares past 100% are never rejected
	OverAllocated bool `json:"overAllocated"`
}

type JobDTO struct {
	ID           uuid.UUID  `json:"id"`
	ClientID     uuid.UUID  `json:"clientId"`
	ClientName   string     `json:"clientName,omitempty"`
	DealID       *uuid.UUID `json:"dealId,omitempty"`
	Title        string     `json:"title,omitempty"`
	DisplayTitle string     `json:"displayTitle"`
	Status       JobStatus  `json:"status"`
	StartDate    string     `json:"startDate"`
	IsRetainer   bool       `json:"isRetainer"`
	CreatedAt    string     `json:"createdAt"`
	UpdatedAt    string     `json:"updatedAt"`
}

type JobAssignmentDTO struct {
	ID        uuid.UUID `json:"id"`
	JobID     uuid.UUID `json:"jobId"`
	UserID    uuid.UUID `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	Role      string    `json:"role,omitempty"`
	CreatedAt string    `json:"createdAt"`
}

type DeliverableDTO struct {
	ID           uuid.UUID         `json:"id"`
	JobID        uuid.UUID         `json:"jobId"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	Status       DeliverableStatus `json:"status"`
	AssigneeID   *uuid.UUID        `json:"assigneeId,omitempty"`
	AssigneeName string            `json:"assigneeName,omitempty"`
	DueDate      *string           `json:"dueDate,omitempty"`
	CreatedAt    string            `json:"createdAt"`
	UpdatedAt    string            `json:"updatedAt"`
}

// StageTransitionResult reports the deal after a stage change and the job the change spawned, if any
type StageTransitionResult struct {
	Deal       DealDTO `json:"deal"`
	Job        *JobDTO `json:"job,omitempty"`
	JobSpawned bool    `json:"jobSpawned"`
}

// AssignUserResult reports the roster entry; AlreadyAssigned is set when the pair existed
type AssignUserResult struct {
	Assignment      JobAssignmentDTO `json:"assignment"`
	AlreadyAssigned bool             `json:"alreadyAssigned"`
}

// PipelineStageColumn is one column of the deal pipeline board
type PipelineStageColumn struct {
	Stage      DealStage `json:"stage"`
	Count      int       `json:"count"`
	TotalValue float64   `json:"totalValue"`
	Deals      []DealDTO `json:"deals"`
}

// DeliverableColumn is one column of a kanban board
type DeliverableColumn struct {
	Status       DeliverableStatus `json:"status"`
	Deliverables []DeliverableDTO  `json:"deliverables"`
}

// JobBoard is the production board of a single job
type JobBoard struct {
	Job         JobDTO              `json:"job"`
	Columns     []DeliverableColumn `json:"columns"`
	Assignments []JobAssignmentDTO  `json:"assignments"`
}

// ClientBoard flattens the deliverables of every job belonging to a client
type ClientBoard struct {
	Client  ClientDTO           `json:"client"`
	Jobs    []JobDTO            `json:"jobs"`
	Columns []DeliverableColumn `json:"columns"`
}

// MonthCalendar is a month grid of deliverable due dates.
// Weeks holds rows of seven day numbers, zero for padding cells.
type MonthCalendar struct {
	Year              int                      `json:"year"`
	Month             int                      `json:"month"`
	Weeks             [][]int                  `json:"weeks"`
	DeliverablesByDay map[int][]DeliverableDTO `json:"deliverablesByDay"`
	PrevMonth         int                      `json:"prevMonth"`
	PrevYear          int                      `json:"prevYear"`
	NextMonth         int                      `json:"nextMonth"`
	NextYear          int                      `json:"nextYear"`
}

// DashboardMetrics contains the headline counters of the studio
type DashboardMetrics struct {
	TotalDeals           int64            `json:"totalDeals"`
	ActiveJobs           int64            `json:"activeJobs"`
	PendingDeliverables  int64            `json:"pendingDeliverables"` // status other than Done
	RecentDeals          []DealDTO        `json:"recentDeals"`
	UpcomingDeliverables []DeliverableDTO `json:"upcomingDeliverables"`
	WonValue             float64          `json:"wonValue"`
	WonProfit            float64          `json:"wonProfit"`
}

// API Response wrapper
type APIResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
}

// Request DTOs

type CreateClientRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Industry string `json:"industry,omitempty" validate:"max=100"`
	Email    string `json:"email,omitempty" validate:"omitempty,email,max=120"`
	Phone    string `json:"phone,omitempty" validate:"max=20"`
}

type CreateUserRequest struct {
	Username    string   `json:"username" validate:"required,max=80"`
	DisplayName string   `json:"displayName,omitempty" validate:"max=200"`
	Role        UserRole `json:"role,omitempty" validate:"max=20"`
}

// Deal request DTOs
type CreateDealRequest struct {
	ClientID     uuid.UUID `json:"clientId" validate:"required"`
	Title        string    `json:"title" validate:"required,max=200"`
	Value        float64   `json:"value" validate:"gte=0"`
	CostInternal float64   `json:"costInternal" validate:"gte=0"`
	CostExternal float64   `json:"costExternal" validate:"gte=0"`
	Stage        DealStage `json:"stage,omitempty"`
	IsRecurring  bool      `json:"isRecurring,omitempty"`
	Notes        string    `json:"notes,omitempty"`
}

// UpdateDealRequest edits deal fields; nil means unchanged. Stage is changed through TransitionStageRequest only.
type UpdateDealRequest struct {
	ClientID     *uuid.UUID `json:"clientId,omitempty"`
	Title        *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Value        *float64   `json:"value,omitempty" validate:"omitempty,gte=0"`
	CostInternal *float64   `json:"costInternal,omitempty" validate:"omitempty,gte=0"`
	CostExternal *float64   `json:"costExternal,omitempty" validate:"omitempty,gte=0"`
	IsRecurring  *bool      `json:"isRecurring,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
}

type TransitionStageRequest struct {
	Stage DealStage `json:"stage" validate:"required"`
	Notes string    `json:"notes,omitempty"`
}

type AddProfitShareRequest struct {
	UserID     uuid.UUID `json:"userId" validate:"required"`
	Percentage float64   `json:"percentage"`
	FlatAmount float64   `json:"flatAmount"`
}

// Job request DTOs
type CreateJobRequest struct {
	ClientID   uuid.UUID  `json:"clientId" validate:"required"`
	DealID     *uuid.UUID `json:"dealId,omitempty"`
	Title      string     `json:"title,omitempty" validate:"max=200"`
	StartDate  *string    `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IsRetainer bool       `json:"isRetainer,omitempty"`
}

type UpdateJobRequest struct {
	Title      *string `json:"title,omitempty" validate:"omitempty,max=200"`
	IsRetainer *bool   `json:"isRetainer,omitempty"`
}

type AssignUserRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
	Role   string    `json:"role,omitempty" validate:"max=50"`
}

// Deliverable request DTOs
type CreateDeliverableRequest struct {
	Title       string            `json:"title" validate:"required,max=200"`
	Description string            `json:"description,omitempty"`
	AssigneeID  *uuid.UUID        `json:"assigneeId,omitempty"`
	DueDate     *string           `json:"dueDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Status      DeliverableStatus `json:"status,omitempty"`
}

// UpdateDeliverableRequest edits deliverable fields; nil means unchanged.
// ClearAssignee and ClearDueDate null the respective field.
type UpdateDeliverableRequest struct {
	Title         *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description   *string    `json:"description,omitempty"`
	AssigneeID    *uuid.UUID `json:"assigneeId,omitempty"`
	ClearAssignee bool       `json:"clearAssignee,omitempty"`
	DueDate       *string    `json:"dueDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ClearDueDate  bool       `json:"clearDueDate,omitempty"`
}

type SetDeliverableStatusRequest struct {
	Status DeliverableStatus `json:"status" validate:"required"`
}
