package handler_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/crm-core/internal/domain"
	"github.com/straye-as/crm-core/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadHandler_Create(t *testing.T) {
	env := newTestEnv(t)
	pipeline := testutil.CreatePipeline(t, env.db, "Sales", testutil.DefaultStages()...)

	t.Run("creates lead in first stage", func(t *testing.T) {
		rr := serve(env.lead.Create, newRequest(t, http.MethodPost, "/leads", "", map[string]interface{}{
			"title":      "Office refit",
			"pipelineId": pipeline.ID,
			"value":      125000,
		}))

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		lead := decode[domain.LeadDTO](t, rr)
		assert.Equal(t, pipeline.Stages[0].ID, lead.StageID)
		assert.Equal(t, "Lead", lead.StageName)
		assert.Equal(t, 10, lead.Probability)
		assert.Equal(t, "NOK", lead.Currency)
		assert.Nil(t, lead.ClosedAt)
		assert.Equal(t, "/api/v1/leads/"+lead.ID.String(), rr.Header().Get("Location"))
	})

	t.Run("unknown pipeline", func(t *testing.T) {
		rr := serve(env.lead.Create, newRequest(t, http.MethodPost, "/leads", "", map[string]interface{}{
			"title":      "Orphan",
			"pipelineId": uuid.New(),
		}))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("currency must have three letters", func(t *testing.T) {
		rr := serve(env.lead.Create, newRequest(t, http.MethodPost, "/leads", "", map[string]interface{}{
			"title":      "Bad currency",
			"pipelineId": pipeline.ID,
			"currency":   "NO",
		}))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeError(t, rr).Errors, "currency")
	})
}

func TestLeadHandler_Move(t *testing.T) {
	env := newTestEnv(t)
	pipeline := testutil.CreatePipeline(t, env.db, "Sales", testutil.DefaultStages()...)
	lead := testutil.CreateLead(t, env.db, &pipeline.Stages[0], "Warehouse roof")
	won := pipeline.Stages[3]

	t.Run("move into final stage closes the lead", func(t *testing.T) {
		rr := serve(env.lead.Move, newRequest(t, http.MethodPost, "/", lead.ID.String(), map[string]interface{}{"stageId": won.ID}))

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		moved := decode[domain.LeadDTO](t, rr)
		assert.Equal(t, won.ID, moved.StageID)
		assert.Equal(t, 100, moved.Probability)
		assert.NotNil(t, moved.ClosedAt)
	})

	t.Run("activities record the transition", func(t *testing.T) {
		rr := serve(env.lead.ListActivities, newRequest(t, http.MethodGet, "/?limit=10", lead.ID.String(), nil))

		require.Equal(t, http.StatusOK, rr.Code)
		activities := decode[[]domain.ActivityDTO](t, rr)
		require.NotEmpty(t, activities)
		assert.Equal(t, domain.ActivityTypeLeadClosed, activities[0].ActivityType)
		require.NotNil(t, activities[0].ToStageID)
		assert.Equal(t, won.ID, *activities[0].ToStageID)
	})

	t.Run("unknown stage", func(t *testing.T) {
		rr := serve(env.lead.Move, newRequest(t, http.MethodPost, "/", lead.ID.String(), map[string]interface{}{"stageId": uuid.New()}))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("unknown lead", func(t *testing.T) {
		rr := serve(env.lead.Move, newRequest(t, http.MethodPost, "/", uuid.NewString(), map[string]interface{}{"stageId": won.ID}))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("stage id is required", func(t *testing.T) {
		rr := serve(env.lead.Move, newRequest(t, http.MethodPost, "/", lead.ID.String(), map[string]interface{}{}))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, domain.ErrorTypeValidation, decodeError(t, rr).Type)
	})
}

func TestLeadHandler_GetByID(t *testing.T) {
	env := newTestEnv(t)
	pipeline := testutil.CreatePipeline(t, env.db, "Sales", testutil.DefaultStages()...)
	lead := testutil.CreateLead(t, env.db, &pipeline.Stages[1], "School extension")

	rr := serve(env.lead.GetByID, newRequest(t, http.MethodGet, "/", lead.ID.String(), nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Qualified", decode[domain.LeadDTO](t, rr).StageName)

	rr = serve(env.lead.GetByID, newRequest(t, http.MethodGet, "/", uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
