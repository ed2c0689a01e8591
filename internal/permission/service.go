package permission

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/profaxno/admin-management/internal"
	"github.com/profaxno/admin-management/internal/core/database"
	permissionDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/permission"
)

// RepositoryAPI defines the data access methods for the permission catalog.
// Lookups return (nil, nil) when no row matches; the service decides which
// error kind a miss means.
type RepositoryAPI interface {
	GetByID(id string) (*permissionDatamodel.Permission, error)
	GetByCode(code string) (*permissionDatamodel.Permission, error)
	GetByIDs(ids []string) ([]permissionDatamodel.Permission, error)
	Search(label, code string, page, limit int) ([]permissionDatamodel.Permission, error)
	Save(permission *permissionDatamodel.Permission) error
	SoftDelete(id string) error
}

// Service handles the global permission catalog. The catalog is tenant
// independent and is not replicated downstream.
type Service struct {
	repo         RepositoryAPI
	defaultLimit int
	logger       *slog.Logger
}

func NewService(repo RepositoryAPI, defaultLimit int, logger *slog.Logger) *Service {
	return &Service{
		repo:         repo,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// Upsert dispatches on id presence: absent creates, present updates.
func (s *Service) Upsert(ctx context.Context, dto UpsertPermissionDTO) (*PermissionDTO, error) {
	if dto.ID == "" {
		return s.Create(ctx, dto)
	}
	return s.Update(ctx, dto.ID, dto)
}

func (s *Service) Create(ctx context.Context, dto UpsertPermissionDTO) (*PermissionDTO, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(dto.Code))

	existing, err := s.repo.GetByCode(code)
	if err != nil {
		s.logger.Error("failed to check permission code", "code", code, "error", err)
		return nil, internal.NewInternalError("failed to check permission code", err)
	}
	if existing != nil && existing.Active {
		return nil, internal.NewAlreadyExistsError(fmt.Sprintf("permission with code %s already exists", code))
	}

	model := &permissionDatamodel.Permission{
		Label:  strings.TrimSpace(dto.Label),
		Code:   code,
		Active: true,
	}
	if err := s.repo.Save(model); err != nil {
		s.logger.Error("failed to create permission", "code", code, "error", err)
		return nil, internal.NewInternalError("failed to create permission", err)
	}

	s.logger.Info("permission created", "permission_id", model.ID, "code", code)
	return toDTO(model), nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpsertPermissionDTO) (*PermissionDTO, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	model, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to load permission", "permission_id", id, "error", err)
		return nil, internal.NewInternalError("failed to load permission", err)
	}
	if model == nil || !model.Active {
		return nil, internal.NewNotFoundError(fmt.Sprintf("permission with id %s not found", id), internal.ErrCodePermissionNotFound)
	}

	code := strings.ToUpper(strings.TrimSpace(dto.Code))
	if code != model.Code {
		existing, err := s.repo.GetByCode(code)
		if err != nil {
			return nil, internal.NewInternalError("failed to check permission code", err)
		}
		if existing != nil && existing.Active && existing.ID != model.ID {
			return nil, internal.NewAlreadyExistsError(fmt.Sprintf("permission with code %s already exists", code))
		}
	}

	model.Label = strings.TrimSpace(dto.Label)
	model.Code = code
	if err := s.repo.Save(model); err != nil {
		s.logger.Error("failed to update permission", "permission_id", id, "error", err)
		return nil, internal.NewInternalError("failed to update permission", err)
	}

	s.logger.Info("permission updated", "permission_id", model.ID, "code", code)
	return toDTO(model), nil
}

// UpdateBatch processes every item independently; the batch itself never
// fails.
func (s *Service) UpdateBatch(ctx context.Context, dtos []UpsertPermissionDTO) *internal.ProcessSummary {
	summary := internal.NewProcessSummary(len(dtos))

	for i, dto := range dtos {
		if _, err := s.Upsert(ctx, dto); err != nil {
			s.logger.Warn("permission batch item failed", "index", i+1, "code", dto.Code, "error", err)
			summary.AddKO(i+1, dto.Code, err)
			continue
		}
		summary.AddOK(i+1, dto.Code)
	}

	return summary
}

func (s *Service) Remove(ctx context.Context, id string) error {
	model, err := s.repo.GetByID(id)
	if err != nil {
		return internal.NewInternalError("failed to load permission", err)
	}
	if model == nil || !model.Active {
		return internal.NewNotFoundError(fmt.Sprintf("permission with id %s not found", id), internal.ErrCodePermissionNotFound)
	}

	if err := s.repo.SoftDelete(id); err != nil {
		if database.IsForeignKeyViolation(err) {
			return internal.NewIsBeingUsedError(fmt.Sprintf("permission with id %s is being used", id))
		}
		s.logger.Error("failed to remove permission", "permission_id", id, "error", err)
		return internal.NewInternalError("failed to remove permission", err)
	}

	s.logger.Info("permission removed", "permission_id", id)
	return nil
}

// Search lists active catalog rows. An empty result is a not-found condition
// at this layer; callers that tolerate empty lists go through the repository.
func (s *Service) Search(ctx context.Context, dto SearchPermissionsDTO) ([]PermissionDTO, error) {
	page, limit := dto.Normalize(s.defaultLimit)

	models, err := s.repo.Search(strings.TrimSpace(dto.Label), strings.ToUpper(strings.TrimSpace(dto.Code)), page, limit)
	if err != nil {
		s.logger.Error("failed to search permissions", "error", err)
		return nil, internal.NewInternalError("failed to search permissions", err)
	}
	if len(models) == 0 {
		return nil, internal.NewNotFoundError("no permissions found", internal.ErrCodePermissionNotFound)
	}

	return toDTOList(models), nil
}
