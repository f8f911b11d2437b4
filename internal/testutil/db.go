// Package testutil opens throwaway databases and seeds fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/agency-pipeline/internal/database"
	"github.com/straye-as/agency-pipeline/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var dbCounter atomic.Int64

// SetupTestDB opens an isolated in-memory sqlite database with the schema migrated.
// The database is closed when the test finishes.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb_%d?mode=memory&cache=shared", dbCounter.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig())
	require.NoError(t, err, "failed to open sqlite test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

// CreateTestClient creates a client with the given name
func CreateTestClient(t *testing.T, db *gorm.DB, name string) *domain.Client {
	t.Helper()
	client := &domain.Client{
		Name:     name,
		Industry: "Hospitality",
		Email:    "hello@example.com",
	}
	require.NoError(t, db.Omit(clause.Associations).Create(client).Error)
	return client
}

// CreateTestUser creates a user with a unique username derived from displayName
func CreateTestUser(t *testing.T, db *gorm.DB, displayName string) *domain.User {
	t.Helper()
	user := &domain.User{
		Username:    fmt.Sprintf("%s-%s", strings.ToLower(strings.ReplaceAll(displayName, " ", "-")), uuid.NewString()[:8]),
		DisplayName: displayName,
		Role:        domain.UserRolePhotographer,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(user).Error)
	return user
}

// CreateTestDeal creates a deal for client at stage with the given money fields
func CreateTestDeal(t *testing.T, db *gorm.DB, client *domain.Client, title string, stage domain.DealStage, value, costInternal, costExternal float64) *domain.Deal {
	t.Helper()
	deal := &domain.Deal{
		ClientID:     client.ID,
		Title:        title,
		Value:        decimal.NewFromFloat(value),
		CostInternal: decimal.NewFromFloat(costInternal),
		CostExternal: decimal.NewFromFloat(costExternal),
		Stage:        stage,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(deal).Error)
	return deal
}

// CreateTestJob creates an active job for client starting today
func CreateTestJob(t *testing.T, db *gorm.DB, client *domain.Client, title string) *domain.Job {
	t.Helper()
	now := time.Now().UTC()
	job := &domain.Job{
		ClientID:  client.ID,
		Title:     title,
		Status:    domain.JobStatusActive,
		StartDate: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Omit(clause.Associations).Create(job).Error)
	return job
}

// CreateTestDeliverable creates a deliverable on job. dueDate and assignee may be nil.
func CreateTestDeliverable(t *testing.T, db *gorm.DB, job *domain.Job, title string, status domain.DeliverableStatus, dueDate *time.Time, assignee *domain.User) *domain.Deliverable {
	t.Helper()
	deliverable := &domain.Deliverable{
		JobID:   job.ID,
		Title:   title,
		Status:  status,
		DueDate: dueDate,
	}
	if assignee != nil {
		deliverable.AssigneeID = &assignee.ID
	}
	require.NoError(t, db.Omit(clause.Associations).Create(deliverable).Error)
	return deliverable
}

// Date returns midnight UTC of the given day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DatePtr is Date returned by pointer
func DatePtr(year int, month time.Month, day int) *time.Time {
	d := Date(year, month, day)
	return &d
}
