package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/crm-core/internal/auth"
	"github.com/straye-as/crm-core/internal/database"
	"github.com/straye-as/crm-core/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory SQLite database with the full schema.
// The pool is pinned to one connection, so code running inside a transaction
// must issue every query through that transaction.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:crm_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// NewTxRunner returns a transaction runner over db with the default retry budget
func NewTxRunner(db *gorm.DB) *database.TxRunner {
	return database.NewTxRunner(db, database.DefaultMaxTxRetries)
}

// StageFixture describes a stage created by CreatePipeline
type StageFixture struct {
	Name        string
	IsFinal     bool
	Probability int
}

// CreatePipeline inserts a pipeline with stages at positions 0..len(stages)-1
func CreatePipeline(t *testing.T, db *gorm.DB, name string, stages ...StageFixture) *domain.Pipeline {
	t.Helper()

	pipeline := &domain.Pipeline{Name: name, IsActive: true}
	require.NoError(t, db.Omit("Stages").Create(pipeline).Error)

	for i, f := range stages {
		stage := domain.Stage{
			PipelineID:  pipeline.ID,
			Name:        f.Name,
			Slug:        domain.Slugify(f.Name),
			SortOrder:   i,
			IsFinal:     f.IsFinal,
			Probability: f.Probability,
		}
		require.NoError(t, db.Create(&stage).Error)
		pipeline.Stages = append(pipeline.Stages, stage)
	}
	return pipeline
}

// DefaultStages is a typical sales pipeline ending in a won stage
func DefaultStages() []StageFixture {
	return []StageFixture{
		{Name: "Lead", Probability: 10},
		{Name: "Qualified", Probability: 30},
		{Name: "Proposal", Probability: 60},
		{Name: "Won", IsFinal: true, Probability: 100},
	}
}

// CreateClient inserts a client
func CreateClient(t *testing.T, db *gorm.DB, name string) *domain.Client {
	t.Helper()

	client := &domain.Client{Name: name, Email: "test@example.com"}
	require.NoError(t, db.Create(client).Error)
	return client
}

// CreateLead inserts an open lead in the given stage
func CreateLead(t *testing.T, db *gorm.DB, stage *domain.Stage, title string) *domain.Lead {
	t.Helper()

	lead := &domain.Lead{
		Title:       title,
		PipelineID:  stage.PipelineID,
		StageID:     stage.ID,
		Currency:    "NOK",
		Probability: stage.Probability,
	}
	require.NoError(t, db.Omit("Stage").Create(lead).Error)
	return lead
}

// CreateProject inserts a project with the given budget
func CreateProject(t *testing.T, db *gorm.DB, name string, budget float64) *domain.Project {
	t.Helper()

	project := &domain.Project{Name: name, BudgetAmount: budget, Currency: "NOK"}
	require.NoError(t, db.Create(project).Error)
	return project
}

// StageOrder returns the stage IDs of a pipeline in sort order
func StageOrder(t *testing.T, db *gorm.DB, pipelineID uuid.UUID) []uuid.UUID {
	t.Helper()

	var stages []domain.Stage
	require.NoError(t, db.Where("pipeline_id = ?", pipelineID).Order("sort_order ASC").Find(&stages).Error)

	ids := make([]uuid.UUID, len(stages))
	for i, s := range stages {
		require.Equal(t, i, s.SortOrder, "stage positions must be contiguous")
		ids[i] = s.ID
	}
	return ids
}

// ContextWithRoles returns a context carrying a user with the given roles
func ContextWithRoles(roles ...domain.UserRoleType) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: "Test User",
		Email:       "test@example.com",
		Roles:       roles,
	})
}

// EditorContext returns a context for a user allowed to change pipeline structure
func EditorContext() context.Context {
	return ContextWithRoles(domain.RoleManager)
}
