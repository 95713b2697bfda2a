package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/crm-core/internal/database"
	"github.com/straye-as/crm-core/internal/domain"
	"github.com/straye-as/crm-core/internal/events"
	"github.com/straye-as/crm-core/internal/mapper"
	"github.com/straye-as/crm-core/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultCurrency      = "NOK"
	defaultActivityLimit = 50
	publishTimeout       = 2 * time.Second
)

type LeadService struct {
	leadRepo     *repository.LeadRepository
	stageRepo    *repository.StageRepository
	pipelineRepo *repository.PipelineRepository
	clientRepo   *repository.ClientRepository
	activityRepo *repository.ActivityRepository
	publisher    events.Publisher
	txRunner     *database.TxRunner
	logger       *zap.Logger
}

func NewLeadService(
	leadRepo *repository.LeadRepository,
	stageRepo *repository.StageRepository,
	pipelineRepo *repository.PipelineRepository,
	clientRepo *repository.ClientRepository,
	activityRepo *repository.ActivityRepository,
	publisher events.Publisher,
	txRunner *database.TxRunner,
	logger *zap.Logger,
) *LeadService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &LeadService{
		leadRepo:     leadRepo,
		stageRepo:    stageRepo,
		pipelineRepo: pipelineRepo,
		clientRepo:   clientRepo,
		activityRepo: activityRepo,
		publisher:    publisher,
		txRunner:     txRunner,
		logger:       logger,
	}
}

// Create opens a lead in the given stage, or in the first stage of the
// pipeline when none is given. A lead created in a final stage starts closed.
func (s *LeadService) Create(ctx context.Context, req *domain.CreateLeadRequest) (*domain.LeadDTO, error) {
	var lead *domain.Lead
	err := s.txRunner.Run(ctx, func(tx *gorm.DB) error {
		exists, err := s.pipelineRepo.Exists(ctx, tx, req.PipelineID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: pipeline", ErrNotFound)
		}

		var stage *domain.Stage
		if req.StageID != nil {
			stage, err = s.stageRepo.GetForShare(ctx, tx, *req.StageID)
			if err != nil {
				return notFound("stage", err)
			}
			if stage.PipelineID != req.PipelineID {
				return fmt.Errorf("%w: stage does not belong to pipeline", ErrInvalidInput)
			}
		} else {
			stage, err = s.stageRepo.FirstInPipeline(ctx, tx, req.PipelineID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: pipeline has no stages", ErrInvalidInput)
			}
			if err != nil {
				return err
			}
		}

		if req.ClientID != nil {
			ok, err := s.clientRepo.Exists(ctx, tx, *req.ClientID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: client", ErrNotFound)
			}
		}

		now := time.Now().UTC()
		lead = &domain.Lead{
			Title:       req.Title,
			PipelineID:  req.PipelineID,
			StageID:     stage.ID,
			ClientID:    req.ClientID,
			Value:       req.Value,
			Currency:    req.Currency,
			Probability: stage.Probability,
		}
		if lead.Currency == "" {
			lead.Currency = defaultCurrency
		}
		if req.Probability != nil {
			lead.Probability = *req.Probability
		}
		if stage.IsFinal {
			lead.ClosedAt = &now
		}
		if err := s.leadRepo.Create(ctx, tx, lead); err != nil {
			return err
		}

		actorID, actorName := actor(ctx)
		activity := &domain.Activity{
			LeadID:       lead.ID,
			ActivityType: domain.ActivityTypeLeadCreated,
			Title:        domain.ActivityTypeLeadCreated.Title(),
			Body:         fmt.Sprintf("Lead created in stage '%s'", stage.Name),
			ToStageID:    &stage.ID,
			ActorID:      actorID,
			ActorName:    actorName,
			OccurredAt:   now,
		}
		if err := s.activityRepo.Create(ctx, tx, activity); err != nil {
			return err
		}

		lead, err = s.leadRepo.GetByID(ctx, tx, lead.ID)
		return err
	})
	if err != nil {
		return nil, storageError("create lead", err)
	}

	s.logger.Info("lead created",
		zap.String("lead_id", lead.ID.String()),
		zap.String("stage_id", lead.StageID.String()),
	)

	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

// GetByID returns a lead with its current stage name
func (s *LeadService) GetByID(ctx context.Context, id uuid.UUID) (*domain.LeadDTO, error) {
	lead, err := s.leadRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, storageError("get lead", notFound("lead", err))
	}
	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

// Move transfers a lead to another stage, possibly in another pipeline.
// The lead update and its activity record commit together; the stage change
// event is published only after the commit. Moving to the current stage is a no-op.
func (s *LeadService) Move(ctx context.Context, leadID, targetStageID uuid.UUID) (*domain.LeadDTO, error) {
	var (
		lead  *domain.Lead
		event *events.LeadStageChanged
	)
	err := s.txRunner.Run(ctx, func(tx *gorm.DB) error {
		event = nil

		current, err := s.leadRepo.GetForUpdate(ctx, tx, leadID)
		if err != nil {
			return notFound("lead", err)
		}
		target, err := s.stageRepo.GetForShare(ctx, tx, targetStageID)
		if err != nil {
			return notFound("stage", err)
		}

		if current.StageID == target.ID {
			lead, err = s.leadRepo.GetByID(ctx, tx, leadID)
			return err
		}

		// The lead row lock plus the stage foreign key keep the current stage alive
		from, err := s.stageRepo.GetByID(ctx, tx, current.StageID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"stage_id":    target.ID,
			"pipeline_id": target.PipelineID,
			"probability": target.Probability,
			"closed_at":   nil,
		}
		if target.IsFinal {
			updates["closed_at"] = now
		}
		if err := s.leadRepo.Update(ctx, tx, leadID, updates); err != nil {
			return notFound("lead", err)
		}

		activityType := domain.TransitionActivityType(from.IsFinal, target.IsFinal)
		actorID, actorName := actor(ctx)
		activity := &domain.Activity{
			LeadID:       leadID,
			ActivityType: activityType,
			Title:        activityType.Title(),
			Body:         domain.TransitionBody(from, target),
			FromStageID:  &from.ID,
			ToStageID:    &target.ID,
			ActorID:      actorID,
			ActorName:    actorName,
			OccurredAt:   now,
		}
		if err := s.activityRepo.Create(ctx, tx, activity); err != nil {
			return err
		}

		event = &events.LeadStageChanged{
			LeadID:       leadID,
			PipelineID:   target.PipelineID,
			FromStageID:  &from.ID,
			StageID:      target.ID,
			StageName:    target.Name,
			StageIsFinal: target.IsFinal,
			ActorID:      actorID,
			OccurredAt:   now,
		}

		lead, err = s.leadRepo.GetByID(ctx, tx, leadID)
		return err
	})
	if err != nil {
		return nil, storageError("move lead", err)
	}

	if event != nil {
		s.logger.Info("lead moved",
			zap.String("lead_id", leadID.String()),
			zap.Stringp("from_stage_id", stringPtr(event.FromStageID)),
			zap.String("to_stage_id", event.StageID.String()),
		)
		s.publishStageChanged(ctx, *event)
	}

	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

// ListActivities returns the newest activities of a lead first
func (s *LeadService) ListActivities(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.ActivityDTO, error) {
	if _, err := s.leadRepo.GetByID(ctx, nil, leadID); err != nil {
		return nil, storageError("list activities", notFound("lead", err))
	}
	if limit <= 0 {
		limit = defaultActivityLimit
	}

	activities, err := s.activityRepo.ListByLead(ctx, leadID, limit)
	if err != nil {
		return nil, storageError("list activities", err)
	}
	dtos := make([]domain.ActivityDTO, len(activities))
	for i := range activities {
		dtos[i] = mapper.ToActivityDTO(&activities[i])
	}
	return dtos, nil
}

// publishStageChanged is best effort. The move has already committed, so a
// delivery failure is logged and never returned to the caller.
func (s *LeadService) publishStageChanged(ctx context.Context, event events.LeadStageChanged) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.PublishLeadStageChanged(pubCtx, event); err != nil {
		s.logger.Warn("failed to publish lead stage change",
			zap.String("lead_id", event.LeadID.String()),
			zap.String("stage_id", event.StageID.String()),
			zap.Error(err),
		)
	}
}

func stringPtr(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
