package role

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/profaxno/admin-management/internal"
	"github.com/profaxno/admin-management/internal/company"
	"github.com/profaxno/admin-management/internal/core/database"
	roleDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/role"
)

// RepositoryAPI defines the data access methods for roles. Reads preload the
// permission graph (RolePermission and its Permission) so DTO composition
// never needs a second round trip.
type RepositoryAPI interface {
	GetByID(id string) (*roleDatamodel.Role, error)
	GetActiveByName(companyID, name string) (*roleDatamodel.Role, error)
	GetByIDs(ids []string) ([]roleDatamodel.Role, error)
	Search(companyID, name string, page, limit int) ([]roleDatamodel.Role, error)
	Save(role *roleDatamodel.Role) error
	SoftDelete(id string) error
}

// CompanyAPI resolves the tenant reference before any role write.
type CompanyAPI interface {
	FindActiveByID(ctx context.Context, id string) (*company.CompanyDTO, error)
}

// PermissionReconcilerAPI wholesale-replaces a role's permission set.
type PermissionReconcilerAPI interface {
	Replace(ctx context.Context, roleID string, permissionIDs []string) ([]roleDatamodel.RolePermission, error)
}

type Service struct {
	repo         RepositoryAPI
	companies    CompanyAPI
	reconciler   PermissionReconcilerAPI
	defaultLimit int
	logger       *slog.Logger
}

func NewService(repo RepositoryAPI, companies CompanyAPI, reconciler PermissionReconcilerAPI, defaultLimit int, logger *slog.Logger) *Service {
	return &Service{
		repo:         repo,
		companies:    companies,
		reconciler:   reconciler,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

func (s *Service) Upsert(ctx context.Context, dto UpsertRoleDTO) (*RoleDTO, error) {
	if dto.ID == "" {
		return s.Create(ctx, dto)
	}
	return s.Update(ctx, dto.ID, dto)
}

func (s *Service) Create(ctx context.Context, dto UpsertRoleDTO) (*RoleDTO, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.companies.FindActiveByID(ctx, dto.CompanyID); err != nil {
		return nil, err
	}

	name := strings.ToUpper(strings.TrimSpace(dto.Name))

	existing, err := s.repo.GetActiveByName(dto.CompanyID, name)
	if err != nil {
		s.logger.Error("failed to check role name", "company_id", dto.CompanyID, "name", name, "error", err)
		return nil, internal.NewInternalError("failed to check role name", err)
	}
	if existing != nil {
		return nil, internal.NewAlreadyExistsError(fmt.Sprintf("role with name %s already exists in company %s", name, dto.CompanyID))
	}

	model := &roleDatamodel.Role{
		CompanyID: dto.CompanyID,
		Name:      name,
		Active:    true,
	}
	if err := s.repo.Save(model); err != nil {
		s.logger.Error("failed to create role", "company_id", dto.CompanyID, "name", name, "error", err)
		return nil, internal.NewInternalError("failed to create role", err)
	}

	links, err := s.reconciler.Replace(ctx, model.ID, dto.PermissionIDs)
	if err != nil {
		return nil, err
	}

	s.logger.Info("role created", "role_id", model.ID, "company_id", dto.CompanyID, "name", name, "permissions", len(links))
	return toDTO(model, links), nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpsertRoleDTO) (*RoleDTO, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	model, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to load role", "role_id", id, "error", err)
		return nil, internal.NewInternalError("failed to load role", err)
	}
	if model == nil || !model.Active {
		return nil, internal.NewNotFoundError(fmt.Sprintf("role with id %s not found", id), internal.ErrCodeRoleNotFound)
	}

	if _, err := s.companies.FindActiveByID(ctx, dto.CompanyID); err != nil {
		return nil, err
	}

	name := strings.ToUpper(strings.TrimSpace(dto.Name))
	if name != model.Name {
		existing, err := s.repo.GetActiveByName(dto.CompanyID, name)
		if err != nil {
			return nil, internal.NewInternalError("failed to check role name", err)
		}
		if existing != nil && existing.ID != model.ID {
			return nil, internal.NewAlreadyExistsError(fmt.Sprintf("role with name %s already exists in company %s", name, dto.CompanyID))
		}
	}

	model.CompanyID = dto.CompanyID
	model.Name = name
	model.Permissions = nil
	if err := s.repo.Save(model); err != nil {
		s.logger.Error("failed to update role", "role_id", id, "error", err)
		return nil, internal.NewInternalError("failed to update role", err)
	}

	links, err := s.reconciler.Replace(ctx, model.ID, dto.PermissionIDs)
	if err != nil {
		return nil, err
	}

	s.logger.Info("role updated", "role_id", model.ID, "name", name, "permissions", len(links))
	return toDTO(model, links), nil
}

func (s *Service) UpdateBatch(ctx context.Context, dtos []UpsertRoleDTO) *internal.ProcessSummary {
	summary := internal.NewProcessSummary(len(dtos))

	for i, dto := range dtos {
		if _, err := s.Upsert(ctx, dto); err != nil {
			s.logger.Warn("role batch item failed", "index", i+1, "name", dto.Name, "error", err)
			summary.AddKO(i+1, dto.Name, err)
			continue
		}
		summary.AddOK(i+1, dto.Name)
	}

	return summary
}

// Remove soft-deletes the role. Existing user assignments are not cascaded;
// if the store blocks the write because of them the caller gets an in-use
// error instead of the raw constraint failure.
func (s *Service) Remove(ctx context.Context, id string) error {
	model, err := s.repo.GetByID(id)
	if err != nil {
		return internal.NewInternalError("failed to load role", err)
	}
	if model == nil || !model.Active {
		return internal.NewNotFoundError(fmt.Sprintf("role with id %s not found", id), internal.ErrCodeRoleNotFound)
	}

	if err := s.repo.SoftDelete(id); err != nil {
		if database.IsForeignKeyViolation(err) {
			return internal.NewIsBeingUsedError(fmt.Sprintf("role with id %s is being used", id))
		}
		s.logger.Error("failed to remove role", "role_id", id, "error", err)
		return internal.NewInternalError("failed to remove role", err)
	}

	s.logger.Info("role removed", "role_id", id)
	return nil
}

func (s *Service) Search(ctx context.Context, dto SearchRolesDTO) ([]RoleDTO, error) {
	if dto.CompanyID == "" {
		return nil, internal.NewValidationError("companyId is required", internal.ErrCodeValidationFailed)
	}

	page, limit := dto.Normalize(s.defaultLimit)

	models, err := s.repo.Search(dto.CompanyID, strings.ToUpper(strings.TrimSpace(dto.Name)), page, limit)
	if err != nil {
		s.logger.Error("failed to search roles", "company_id", dto.CompanyID, "error", err)
		return nil, internal.NewInternalError("failed to search roles", err)
	}
	if len(models) == 0 {
		return nil, internal.NewNotFoundError("no roles found", internal.ErrCodeRoleNotFound)
	}

	dtos := make([]RoleDTO, 0, len(models))
	for i := range models {
		dtos = append(dtos, *toDTO(&models[i], models[i].Permissions))
	}
	return dtos, nil
}
