package documenttype

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/profaxno/admin-management/internal"
	"github.com/profaxno/admin-management/internal/core/database"
	documentTypeDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/documenttype"
	"github.com/profaxno/admin-management/internal/replication"
)

// RepositoryAPI defines the data access methods for document types. Lookups
// return (nil, nil) on a miss.
type RepositoryAPI interface {
	GetByID(id string) (*documentTypeDatamodel.DocumentType, error)
	GetByName(name string) (*documentTypeDatamodel.DocumentType, error)
	Search(name string, page, limit int) ([]documentTypeDatamodel.DocumentType, error)
	GetPage(page, limit int) ([]documentTypeDatamodel.DocumentType, error)
	Save(docType *documentTypeDatamodel.DocumentType) error
	SoftDelete(id string) error
}

type Replicator interface {
	Send(ctx context.Context, process replication.Process, payload string) error
	SendAsync(ctx context.Context, process replication.Process, payload string)
	Sweep(ctx context.Context, updateProcess, deleteProcess replication.Process, limit int, fetch replication.SweepPageFunc) string
}

// Service manages the document-type catalog consumed by the purchasing and
// sales systems.
type Service struct {
	repo         RepositoryAPI
	replicator   Replicator
	defaultLimit int
	logger       *slog.Logger
}

func NewService(repo RepositoryAPI, replicator Replicator, defaultLimit int, logger *slog.Logger) *Service {
	return &Service{
		repo:         repo,
		replicator:   replicator,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

func (s *Service) Upsert(ctx context.Context, dto UpsertDocumentTypeDTO) (*DocumentTypeDTO, error) {
	if dto.ID == "" {
		return s.Create(ctx, dto)
	}
	return s.Update(ctx, dto.ID, dto)
}

func (s *Service) Create(ctx context.Context, dto UpsertDocumentTypeDTO) (*DocumentTypeDTO, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	name := strings.ToUpper(strings.TrimSpace(dto.Name))

	existing, err := s.repo.GetByName(name)
	if err != nil {
		s.logger.Error("failed to check document type name", "name", name, "error", err)
		return nil, internal.NewInternalError("failed to check document type name", err)
	}
	if existing != nil && existing.Active {
		return nil, internal.NewAlreadyExistsError(fmt.Sprintf("document type with name %s already exists", name))
	}

	model := &documentTypeDatamodel.DocumentType{Name: name, Active: true}
	if err := s.repo.Save(model); err != nil {
		s.logger.Error("failed to create document type", "name", name, "error", err)
		return nil, internal.NewInternalError("failed to create document type", err)
	}

	out := toDTO(model)

	if err := s.replicate(ctx, replication.ProcessDocumentTypeUpdate, []DocumentTypeDTO{*out}); err != nil {
		// compensating rollback: do not keep a record downstream never saw
		if derr := s.repo.SoftDelete(model.ID); derr != nil {
			s.logger.Error("compensating delete failed", "document_type_id", model.ID, "error", derr)
		}
		return nil, err
	}

	s.logger.Info("document type created", "document_type_id", model.ID, "name", name)
	return out, nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpsertDocumentTypeDTO) (*DocumentTypeDTO, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	model, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to load document type", "document_type_id", id, "error", err)
		return nil, internal.NewInternalError("failed to load document type", err)
	}
	if model == nil || !model.Active {
		return nil, internal.NewNotFoundError(fmt.Sprintf("document type with id %s not found", id), internal.ErrCodeDocumentTypeNotFound)
	}

	previous := *toDTO(model)

	name := strings.ToUpper(strings.TrimSpace(dto.Name))
	if name != model.Name {
		existing, err := s.repo.GetByName(name)
		if err != nil {
			return nil, internal.NewInternalError("failed to check document type name", err)
		}
		if existing != nil && existing.Active && existing.ID != model.ID {
			return nil, internal.NewAlreadyExistsError(fmt.Sprintf("document type with name %s already exists", name))
		}
	}

	model.Name = name
	if err := s.repo.Save(model); err != nil {
		s.logger.Error("failed to update document type", "document_type_id", id, "error", err)
		return nil, internal.NewInternalError("failed to update document type", err)
	}

	out := toDTO(model)

	if err := s.replicate(ctx, replication.ProcessDocumentTypeUpdate, []DocumentTypeDTO{*out}); err != nil {
		// best-effort rollback signal carrying the pre-update snapshot
		s.resendSnapshot(ctx, previous)
		return nil, err
	}

	s.logger.Info("document type updated", "document_type_id", model.ID, "name", name)
	return out, nil
}

func (s *Service) UpdateBatch(ctx context.Context, dtos []UpsertDocumentTypeDTO) *internal.ProcessSummary {
	summary := internal.NewProcessSummary(len(dtos))

	for i, dto := range dtos {
		if _, err := s.Upsert(ctx, dto); err != nil {
			s.logger.Warn("document type batch item failed", "index", i+1, "name", dto.Name, "error", err)
			summary.AddKO(i+1, dto.Name, err)
			continue
		}
		summary.AddOK(i+1, dto.Name)
	}

	return summary
}

func (s *Service) Remove(ctx context.Context, id string) error {
	model, err := s.repo.GetByID(id)
	if err != nil {
		return internal.NewInternalError("failed to load document type", err)
	}
	if model == nil || !model.Active {
		return internal.NewNotFoundError(fmt.Sprintf("document type with id %s not found", id), internal.ErrCodeDocumentTypeNotFound)
	}

	if err := s.repo.SoftDelete(id); err != nil {
		if database.IsForeignKeyViolation(err) {
			return internal.NewIsBeingUsedError(fmt.Sprintf("document type with id %s is being used", id))
		}
		s.logger.Error("failed to remove document type", "document_type_id", id, "error", err)
		return internal.NewInternalError("failed to remove document type", err)
	}

	if err := s.replicate(ctx, replication.ProcessDocumentTypeDelete, []replication.JSONBasic{{ID: id}}); err != nil {
		return err
	}

	s.logger.Info("document type removed", "document_type_id", id)
	return nil
}

func (s *Service) Search(ctx context.Context, dto SearchDocumentTypesDTO) ([]DocumentTypeDTO, error) {
	page, limit := dto.Normalize(s.defaultLimit)

	models, err := s.repo.Search(strings.ToUpper(strings.TrimSpace(dto.Name)), page, limit)
	if err != nil {
		s.logger.Error("failed to search document types", "error", err)
		return nil, internal.NewInternalError("failed to search document types", err)
	}
	if len(models) == 0 {
		return nil, internal.NewNotFoundError("no document types found", internal.ErrCodeDocumentTypeNotFound)
	}

	return toDTOList(models), nil
}

// Synchronize re-emits replication messages for every catalog row, active and
// inactive, page by page.
func (s *Service) Synchronize(ctx context.Context, dto SynchronizeDocumentTypesDTO) string {
	_, limit := dto.Normalize(s.defaultLimit)

	return s.replicator.Sweep(ctx, replication.ProcessDocumentTypeUpdate, replication.ProcessDocumentTypeDelete, limit,
		func(ctx context.Context, page, limit int) (interface{}, interface{}, int, error) {
			models, err := s.repo.GetPage(page, limit)
			if err != nil {
				return nil, nil, 0, err
			}

			updates := make([]DocumentTypeDTO, 0, len(models))
			deletes := make([]replication.JSONBasic, 0)
			for i := range models {
				if models[i].Active {
					updates = append(updates, *toDTO(&models[i]))
				} else {
					deletes = append(deletes, replication.JSONBasic{ID: models[i].ID})
				}
			}
			return updates, deletes, len(models), nil
		})
}

func (s *Service) replicate(ctx context.Context, process replication.Process, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return internal.NewInternalError("failed to encode replication payload", err)
	}
	return s.replicator.Send(ctx, process, string(body))
}

func (s *Service) resendSnapshot(ctx context.Context, previous DocumentTypeDTO) {
	body, err := json.Marshal([]DocumentTypeDTO{previous})
	if err != nil {
		s.logger.Error("failed to encode rollback snapshot", "document_type_id", previous.ID, "error", err)
		return
	}
	s.replicator.SendAsync(ctx, replication.ProcessDocumentTypeUpdate, string(body))
}
