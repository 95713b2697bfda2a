package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/crm-core/internal/database"
	"github.com/straye-as/crm-core/internal/domain"
	"github.com/straye-as/crm-core/internal/mapper"
	"github.com/straye-as/crm-core/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StageService maintains the ordered stage list of each pipeline.
// Every mutation locks the owning pipeline row first, so writers on one
// pipeline are serialized while other pipelines proceed in parallel.
type StageService struct {
	pipelineRepo *repository.PipelineRepository
	stageRepo    *repository.StageRepository
	leadRepo     *repository.LeadRepository
	txRunner     *database.TxRunner
	logger       *zap.Logger
}

func NewStageService(
	pipelineRepo *repository.PipelineRepository,
	stageRepo *repository.StageRepository,
	leadRepo *repository.LeadRepository,
	txRunner *database.TxRunner,
	logger *zap.Logger,
) *StageService {
	return &StageService{
		pipelineRepo: pipelineRepo,
		stageRepo:    stageRepo,
		leadRepo:     leadRepo,
		txRunner:     txRunner,
		logger:       logger,
	}
}

// List returns the stages of a pipeline in position order
func (s *StageService) List(ctx context.Context, pipelineID uuid.UUID) ([]domain.StageDTO, error) {
	exists, err := s.pipelineRepo.Exists(ctx, nil, pipelineID)
	if err != nil {
		return nil, storageError("list stages", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: pipeline", ErrNotFound)
	}

	stages, err := s.stageRepo.ListByPipeline(ctx, nil, pipelineID)
	if err != nil {
		return nil, storageError("list stages", err)
	}
	dtos := make([]domain.StageDTO, len(stages))
	for i := range stages {
		dtos[i] = mapper.ToStageDTO(&stages[i])
	}
	return dtos, nil
}

// Create appends a stage at the end of the pipeline
func (s *StageService) Create(ctx context.Context, pipelineID uuid.UUID, req *domain.CreateStageRequest) (*domain.StageDTO, error) {
	if err := requireRole(ctx, domain.PipelineEditorRoles...); err != nil {
		return nil, err
	}

	var stage *domain.Stage
	err := s.txRunner.Run(ctx, func(tx *gorm.DB) error {
		if _, err := s.pipelineRepo.LockByID(ctx, tx, pipelineID); err != nil {
			return notFound("pipeline", err)
		}
		maxOrder, err := s.stageRepo.MaxSortOrder(ctx, tx, pipelineID)
		if err != nil {
			return err
		}
		stage = &domain.Stage{
			PipelineID:  pipelineID,
			Name:        req.Name,
			Slug:        domain.Slugify(req.Name),
			Color:       req.Color,
			SortOrder:   maxOrder + 1,
			IsFinal:     req.IsFinal,
			Probability: req.Probability,
		}
		return s.stageRepo.Create(ctx, tx, stage)
	})
	if err != nil {
		return nil, storageError("create stage", err)
	}

	s.logger.Info("stage created",
		zap.String("stage_id", stage.ID.String()),
		zap.String("pipeline_id", pipelineID.String()),
		zap.Int("position", stage.SortOrder),
	)

	dto := mapper.ToStageDTO(stage)
	return &dto, nil
}

// Update changes stage attributes. Flipping IsFinal closes or reopens every
// lead currently in the stage in the same transaction.
func (s *StageService) Update(ctx context.Context, stageID uuid.UUID, req *domain.UpdateStageRequest) (*domain.StageDTO, error) {
	if err := requireRole(ctx, domain.PipelineEditorRoles...); err != nil {
		return nil, err
	}

	var updated *domain.Stage
	err := s.txRunner.Run(ctx, func(tx *gorm.DB) error {
		stage, err := s.stageRepo.GetForUpdate(ctx, tx, stageID)
		if err != nil {
			return notFound("stage", err)
		}

		updates := map[string]interface{}{}
		if req.Name != nil {
			updates["name"] = *req.Name
			updates["slug"] = domain.Slugify(*req.Name)
		}
		if req.Color != nil {
			updates["color"] = *req.Color
		}
		if req.Probability != nil {
			updates["probability"] = *req.Probability
		}
		finalChanged := req.IsFinal != nil && *req.IsFinal != stage.IsFinal
		if finalChanged {
			updates["is_final"] = *req.IsFinal
		}
		if len(updates) > 0 {
			if err := s.stageRepo.Update(ctx, tx, stageID, updates); err != nil {
				return notFound("stage", err)
			}
		}

		if finalChanged {
			var affected int64
			if *req.IsFinal {
				affected, err = s.leadRepo.CloseAllInStage(ctx, tx, stageID, time.Now().UTC())
			} else {
				affected, err = s.leadRepo.ReopenAllInStage(ctx, tx, stageID)
			}
			if err != nil {
				return err
			}
			s.logger.Info("stage finality changed",
				zap.String("stage_id", stageID.String()),
				zap.Bool("is_final", *req.IsFinal),
				zap.Int64("leads_affected", affected),
			)
		}

		updated, err = s.stageRepo.GetByID(ctx, tx, stageID)
		return err
	})
	if err != nil {
		return nil, storageError("update stage", err)
	}

	dto := mapper.ToStageDTO(updated)
	return &dto, nil
}

// Reorder moves a stage to newPosition and shifts the stages in between by
// one so positions stay contiguous. Moving to the current position is a no-op.
// Returns the pipeline with its stages in the new order.
func (s *StageService) Reorder(ctx context.Context, stageID uuid.UUID, newPosition int) (*domain.PipelineDTO, error) {
	if err := requireRole(ctx, domain.PipelineEditorRoles...); err != nil {
		return nil, err
	}

	var (
		pipelineID  uuid.UUID
		oldPosition int
		moved       bool
	)
	err := s.txRunner.Run(ctx, func(tx *gorm.DB) error {
		moved = false

		stage, err := s.stageRepo.GetByID(ctx, tx, stageID)
		if err != nil {
			return notFound("stage", err)
		}
		pipelineID = stage.PipelineID

		if _, err := s.pipelineRepo.LockByID(ctx, tx, pipelineID); err != nil {
			return notFound("pipeline", err)
		}
		// Re-read under the pipeline lock; a writer that committed before we
		// acquired it may have moved this stage.
		stage, err = s.stageRepo.GetForUpdate(ctx, tx, stageID)
		if err != nil {
			return notFound("stage", err)
		}

		count, err := s.stageRepo.CountByPipeline(ctx, tx, pipelineID)
		if err != nil {
			return err
		}
		if newPosition < 0 || newPosition >= count {
			return fmt.Errorf("%w: position %d out of range [0, %d)", ErrInvalidInput, newPosition, count)
		}

		oldPosition = stage.SortOrder
		if oldPosition == newPosition {
			return nil
		}

		if oldPosition < newPosition {
			err = s.stageRepo.ShiftRange(ctx, tx, pipelineID, oldPosition+1, newPosition, -1, stageID)
		} else {
			err = s.stageRepo.ShiftRange(ctx, tx, pipelineID, newPosition, oldPosition-1, 1, stageID)
		}
		if err != nil {
			return err
		}
		if err := s.stageRepo.SetSortOrder(ctx, tx, stageID, newPosition); err != nil {
			return err
		}
		moved = true
		return nil
	})
	if err != nil {
		return nil, storageError("reorder stage", err)
	}

	if moved {
		s.logger.Info("stage reordered",
			zap.String("stage_id", stageID.String()),
			zap.String("pipeline_id", pipelineID.String()),
			zap.Int("from", oldPosition),
			zap.Int("to", newPosition),
		)
	}

	pipeline, err := s.pipelineRepo.GetByID(ctx, pipelineID)
	if err != nil {
		return nil, storageError("reorder stage", notFound("pipeline", err))
	}
	dto := mapper.ToPipelineDTO(pipeline)
	return &dto, nil
}

// Delete removes a stage no lead references and closes the gap it leaves
func (s *StageService) Delete(ctx context.Context, stageID uuid.UUID) error {
	if err := requireRole(ctx, domain.PipelineEditorRoles...); err != nil {
		return err
	}

	var stage *domain.Stage
	err := s.txRunner.Run(ctx, func(tx *gorm.DB) error {
		current, err := s.stageRepo.GetByID(ctx, tx, stageID)
		if err != nil {
			return notFound("stage", err)
		}
		if _, err := s.pipelineRepo.LockByID(ctx, tx, current.PipelineID); err != nil {
			return notFound("pipeline", err)
		}
		stage, err = s.stageRepo.GetForUpdate(ctx, tx, stageID)
		if err != nil {
			return notFound("stage", err)
		}

		leads, err := s.leadRepo.CountByStage(ctx, tx, stageID)
		if err != nil {
			return err
		}
		if leads > 0 {
			return fmt.Errorf("%w: stage is referenced by %d lead(s)", ErrConflict, leads)
		}

		deleted, err := s.stageRepo.DeleteUnreferenced(ctx, tx, stageID)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("%w: stage is referenced by leads", ErrConflict)
		}

		return s.stageRepo.ShiftRange(ctx, tx, stage.PipelineID, stage.SortOrder+1, math.MaxInt32, -1, stageID)
	})
	if err != nil {
		return storageError("delete stage", err)
	}

	s.logger.Info("stage deleted",
		zap.String("stage_id", stageID.String()),
		zap.String("pipeline_id", stage.PipelineID.String()),
		zap.Int("position", stage.SortOrder),
	)
	return nil
}
