package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/crm-core/internal/domain"
	"github.com/straye-as/crm-core/internal/repository"
	"github.com/straye-as/crm-core/internal/service"
	"github.com/straye-as/crm-core/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPipelineService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewPipelineService(repository.NewPipelineRepository(db), testutil.NewTxRunner(db), zap.NewNop())
	ctx := testutil.EditorContext()

	inactive := false
	first, err := svc.Create(ctx, &domain.CreatePipelineRequest{Name: "Construction"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, &domain.CreatePipelineRequest{Name: "Archive", IsActive: &inactive})
	require.NoError(t, err)

	assert.Equal(t, 0, first.DisplayOrder)
	assert.Equal(t, 1, second.DisplayOrder)
	assert.True(t, first.IsActive)
	assert.False(t, second.IsActive)
	assert.Empty(t, first.Stages)

	t.Run("list all in display order", func(t *testing.T) {
		all, err := svc.List(ctx, false)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Construction", all[0].Name)
		assert.Equal(t, "Archive", all[1].Name)
	})

	t.Run("list active only", func(t *testing.T) {
		active, err := svc.List(ctx, true)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, first.ID, active[0].ID)
	})

	t.Run("get includes ordered stages", func(t *testing.T) {
		p := testutil.CreatePipeline(t, db, "Service", testutil.DefaultStages()...)

		got, err := svc.GetByID(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, got.Stages, 4)
		assert.Equal(t, "Lead", got.Stages[0].Name)
		assert.Equal(t, "Won", got.Stages[3].Name)
		assert.True(t, got.Stages[3].IsFinal)
	})

	t.Run("get unknown", func(t *testing.T) {
		_, err := svc.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("sales cannot create pipelines", func(t *testing.T) {
		_, err := svc.Create(testutil.ContextWithRoles(domain.RoleSales), &domain.CreatePipelineRequest{Name: "Nope"})
		assert.ErrorIs(t, err, service.ErrForbidden)
	})
}

func TestClientService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewClientService(repository.NewClientRepository(db), zap.NewNop())
	ctx := context.Background()

	created, err := svc.Create(ctx, &domain.CreateClientRequest{Name: "Fjord Bygg AS", Email: "post@fjordbygg.no"})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fjord Bygg AS", got.Name)
	assert.Equal(t, "post@fjordbygg.no", got.Email)

	_, err = svc.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
