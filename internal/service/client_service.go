package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/crm-core/internal/domain"
	"github.com/straye-as/crm-core/internal/mapper"
	"github.com/straye-as/crm-core/internal/repository"
	"go.uber.org/zap"
)

type ClientService struct {
	clientRepo *repository.ClientRepository
	logger     *zap.Logger
}

func NewClientService(clientRepo *repository.ClientRepository, logger *zap.Logger) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		logger:     logger,
	}
}

func (s *ClientService) Create(ctx context.Context, req *domain.CreateClientRequest) (*domain.ClientDTO, error) {
	client := &domain.Client{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, storageError("create client", err)
	}

	s.logger.Info("client created", zap.String("client_id", client.ID.String()))

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ClientDTO, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageError("get client", notFound("client", err))
	}
	dto := mapper.ToClientDTO(client)
	return &dto, nil
}
