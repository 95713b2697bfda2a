package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/crm-core/internal/database"
	"github.com/straye-as/crm-core/internal/domain"
	"github.com/straye-as/crm-core/internal/mapper"
	"github.com/straye-as/crm-core/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PipelineService struct {
	pipelineRepo *repository.PipelineRepository
	txRunner     *database.TxRunner
	logger       *zap.Logger
}

func NewPipelineService(
	pipelineRepo *repository.PipelineRepository,
	txRunner *database.TxRunner,
	logger *zap.Logger,
) *PipelineService {
	return &PipelineService{
		pipelineRepo: pipelineRepo,
		txRunner:     txRunner,
		logger:       logger,
	}
}

// Create adds an empty pipeline after the existing ones
func (s *PipelineService) Create(ctx context.Context, req *domain.CreatePipelineRequest) (*domain.PipelineDTO, error) {
	if err := requireRole(ctx, domain.PipelineEditorRoles...); err != nil {
		return nil, err
	}

	pipeline := &domain.Pipeline{
		Name:     req.Name,
		IsActive: true,
	}
	if req.IsActive != nil {
		pipeline.IsActive = *req.IsActive
	}

	err := s.txRunner.Run(ctx, func(tx *gorm.DB) error {
		maxOrder, err := s.pipelineRepo.MaxDisplayOrder(ctx, tx)
		if err != nil {
			return err
		}
		pipeline.ID = uuid.Nil
		pipeline.DisplayOrder = maxOrder + 1
		return s.pipelineRepo.Create(ctx, tx, pipeline)
	})
	if err != nil {
		return nil, storageError("create pipeline", err)
	}

	s.logger.Info("pipeline created",
		zap.String("pipeline_id", pipeline.ID.String()),
		zap.String("name", pipeline.Name),
	)

	dto := mapper.ToPipelineDTO(pipeline)
	return &dto, nil
}

// GetByID returns a pipeline with its stages in position order
func (s *PipelineService) GetByID(ctx context.Context, id uuid.UUID) (*domain.PipelineDTO, error) {
	pipeline, err := s.pipelineRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageError("get pipeline", notFound("pipeline", err))
	}
	dto := mapper.ToPipelineDTO(pipeline)
	return &dto, nil
}

// List returns pipelines in display order
func (s *PipelineService) List(ctx context.Context, activeOnly bool) ([]domain.PipelineDTO, error) {
	pipelines, err := s.pipelineRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, storageError("list pipelines", err)
	}
	dtos := make([]domain.PipelineDTO, len(pipelines))
	for i := range pipelines {
		dtos[i] = mapper.ToPipelineDTO(&pipelines[i])
	}
	return dtos, nil
}
