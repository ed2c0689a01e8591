package user

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/profaxno/admin-management/internal"
	"github.com/profaxno/admin-management/internal/company"
	"github.com/profaxno/admin-management/internal/core/database"
	userDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/user"
	"github.com/profaxno/admin-management/internal/replication"
)

// RepositoryAPI defines the data access methods for users. Reads preload the
// full role graph (UserRole, Role, RolePermission, Permission) so effective
// permissions can be composed without further queries.
type RepositoryAPI interface {
	GetByID(id string) (*userDatamodel.User, error)
	GetActiveByEmail(companyID, email string) (*userDatamodel.User, error)
	GetAvailableByEmail(email string) (*userDatamodel.User, error)
	Search(companyID, name, email string, page, limit int) ([]userDatamodel.User, error)
	GetPage(companyID string, page, limit int) ([]userDatamodel.User, error)
	Save(user *userDatamodel.User) error
	SoftDelete(id string) error
}

type CompanyAPI interface {
	FindActiveByID(ctx context.Context, id string) (*company.CompanyDTO, error)
}

// RoleReconcilerAPI wholesale-replaces a user's role set.
type RoleReconcilerAPI interface {
	Replace(ctx context.Context, userID string, roleIDs []string) ([]userDatamodel.UserRole, error)
}

type Replicator interface {
	Send(ctx context.Context, process replication.Process, payload string) error
	SendAsync(ctx context.Context, process replication.Process, payload string)
	Sweep(ctx context.Context, updateProcess, deleteProcess replication.Process, limit int, fetch replication.SweepPageFunc) string
}

type Service struct {
	repo         RepositoryAPI
	companies    CompanyAPI
	reconciler   RoleReconcilerAPI
	replicator   Replicator
	defaultLimit int
	logger       *slog.Logger
}

func NewService(repo RepositoryAPI, companies CompanyAPI, reconciler RoleReconcilerAPI, replicator Replicator, defaultLimit int, logger *slog.Logger) *Service {
	return &Service{
		repo:         repo,
		companies:    companies,
		reconciler:   reconciler,
		replicator:   replicator,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

func (s *Service) Upsert(ctx context.Context, dto UpsertUserDTO) (*UserDTO, error) {
	if dto.ID == "" {
		return s.Create(ctx, dto)
	}
	return s.Update(ctx, dto.ID, dto)
}

func (s *Service) Create(ctx context.Context, dto UpsertUserDTO) (*UserDTO, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if dto.Password == "" {
		return nil, internal.NewValidationError("password is required", internal.ErrCodeValidationFailed)
	}

	if _, err := s.companies.FindActiveByID(ctx, dto.CompanyID); err != nil {
		return nil, err
	}

	email := strings.ToUpper(strings.TrimSpace(dto.Email))

	existing, err := s.repo.GetActiveByEmail(dto.CompanyID, email)
	if err != nil {
		s.logger.Error("failed to check user email", "company_id", dto.CompanyID, "error", err)
		return nil, internal.NewInternalError("failed to check user email", err)
	}
	if existing != nil {
		return nil, internal.NewAlreadyExistsError(fmt.Sprintf("user with email %s already exists in company %s", email, dto.CompanyID))
	}

	status := dto.Status
	if status == "" {
		status = userDatamodel.StatusAvailable
	}

	// the password is stored as received; hashing belongs to the
	// authentication collaborator
	model := &userDatamodel.User{
		CompanyID: dto.CompanyID,
		Name:      strings.TrimSpace(dto.Name),
		Email:     email,
		Password:  dto.Password,
		Status:    status,
		Active:    true,
	}
	if err := s.repo.Save(model); err != nil {
		s.logger.Error("failed to create user", "company_id", dto.CompanyID, "error", err)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	links, err := s.reconciler.Replace(ctx, model.ID, dto.RoleIDs)
	if err != nil {
		return nil, err
	}

	out := toDTO(model, links)

	if err := s.replicate(ctx, replication.ProcessUserUpdate, []UserDTO{*out}); err != nil {
		// compensating rollback: do not keep a record downstream never saw
		if derr := s.repo.SoftDelete(model.ID); derr != nil {
			s.logger.Error("compensating delete failed", "user_id", model.ID, "error", derr)
		}
		return nil, err
	}

	s.logger.Info("user created", "user_id", model.ID, "company_id", dto.CompanyID, "roles", len(links))
	return out, nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpsertUserDTO) (*UserDTO, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	model, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to load user", "user_id", id, "error", err)
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if model == nil || !model.Active {
		return nil, internal.NewNotFoundError(fmt.Sprintf("user with id %s not found", id), internal.ErrCodeUserNotFound)
	}

	previous := *toDTO(model, model.Roles)

	if _, err := s.companies.FindActiveByID(ctx, dto.CompanyID); err != nil {
		return nil, err
	}

	email := strings.ToUpper(strings.TrimSpace(dto.Email))
	if email != model.Email {
		existing, err := s.repo.GetActiveByEmail(dto.CompanyID, email)
		if err != nil {
			return nil, internal.NewInternalError("failed to check user email", err)
		}
		if existing != nil && existing.ID != model.ID {
			return nil, internal.NewAlreadyExistsError(fmt.Sprintf("user with email %s already exists in company %s", email, dto.CompanyID))
		}
	}

	model.CompanyID = dto.CompanyID
	model.Name = strings.TrimSpace(dto.Name)
	model.Email = email
	if dto.Password != "" {
		model.Password = dto.Password
	}
	if dto.Status != "" {
		model.Status = dto.Status
	}
	model.Roles = nil
	if err := s.repo.Save(model); err != nil {
		s.logger.Error("failed to update user", "user_id", id, "error", err)
		return nil, internal.NewInternalError("failed to update user", err)
	}

	links, err := s.reconciler.Replace(ctx, model.ID, dto.RoleIDs)
	if err != nil {
		return nil, err
	}

	out := toDTO(model, links)

	if err := s.replicate(ctx, replication.ProcessUserUpdate, []UserDTO{*out}); err != nil {
		// best-effort rollback signal carrying the pre-update snapshot
		s.resendSnapshot(ctx, previous)
		return nil, err
	}

	s.logger.Info("user updated", "user_id", model.ID, "roles", len(links))
	return out, nil
}

func (s *Service) UpdateBatch(ctx context.Context, dtos []UpsertUserDTO) *internal.ProcessSummary {
	summary := internal.NewProcessSummary(len(dtos))

	for i, dto := range dtos {
		if _, err := s.Upsert(ctx, dto); err != nil {
			s.logger.Warn("user batch item failed", "index", i+1, "email", dto.Email, "error", err)
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
		return internal.NewInternalError("failed to load user", err)
	}
	if model == nil || !model.Active {
		return internal.NewNotFoundError(fmt.Sprintf("user with id %s not found", id), internal.ErrCodeUserNotFound)
	}

	if err := s.repo.SoftDelete(id); err != nil {
		if database.IsForeignKeyViolation(err) {
			return internal.NewIsBeingUsedError(fmt.Sprintf("user with id %s is being used", id))
		}
		s.logger.Error("failed to remove user", "user_id", id, "error", err)
		return internal.NewInternalError("failed to remove user", err)
	}

	if err := s.replicate(ctx, replication.ProcessUserDelete, []replication.JSONBasic{{ID: id}}); err != nil {
		return err
	}

	s.logger.Info("user removed", "user_id", id)
	return nil
}

// FindByID serves the authentication collaborator: only available, active
// users resolve. The returned DTO carries the stored password.
func (s *Service) FindByID(ctx context.Context, id string) (*UserDTO, error) {
	model, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if model == nil || !model.Active || model.Status != userDatamodel.StatusAvailable {
		return nil, internal.NewNotFoundError(fmt.Sprintf("user with id %s not found", id), internal.ErrCodeUserNotFound)
	}

	out := toDTO(model, model.Roles)
	out.Password = model.Password
	return out, nil
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*UserDTO, error) {
	normalized := strings.ToUpper(strings.TrimSpace(email))

	model, err := s.repo.GetAvailableByEmail(normalized)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if model == nil {
		return nil, internal.NewNotFoundError(fmt.Sprintf("user with email %s not found", normalized), internal.ErrCodeUserNotFound)
	}

	out := toDTO(model, model.Roles)
	out.Password = model.Password
	return out, nil
}

func (s *Service) Search(ctx context.Context, dto SearchUsersDTO) ([]UserDTO, error) {
	if dto.CompanyID == "" {
		return nil, internal.NewValidationError("companyId is required", internal.ErrCodeValidationFailed)
	}

	page, limit := dto.Normalize(s.defaultLimit)

	models, err := s.repo.Search(dto.CompanyID, strings.TrimSpace(dto.Name), strings.ToUpper(strings.TrimSpace(dto.Email)), page, limit)
	if err != nil {
		s.logger.Error("failed to search users", "company_id", dto.CompanyID, "error", err)
		return nil, internal.NewInternalError("failed to search users", err)
	}
	if len(models) == 0 {
		return nil, internal.NewNotFoundError("no users found", internal.ErrCodeUserNotFound)
	}

	dtos := make([]UserDTO, 0, len(models))
	for i := range models {
		dtos = append(dtos, *toDTO(&models[i], models[i].Roles))
	}
	return dtos, nil
}

// Synchronize re-emits replication messages for every user row of the scoped
// company (or all companies when unscoped), page by page.
func (s *Service) Synchronize(ctx context.Context, dto SynchronizeUsersDTO) string {
	_, limit := dto.Normalize(s.defaultLimit)

	return s.replicator.Sweep(ctx, replication.ProcessUserUpdate, replication.ProcessUserDelete, limit,
		func(ctx context.Context, page, limit int) (interface{}, interface{}, int, error) {
			models, err := s.repo.GetPage(dto.CompanyID, page, limit)
			if err != nil {
				return nil, nil, 0, err
			}

			updates := make([]UserDTO, 0, len(models))
			deletes := make([]replication.JSONBasic, 0)
			for i := range models {
				if models[i].Active {
					updates = append(updates, *toDTO(&models[i], models[i].Roles))
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

func (s *Service) resendSnapshot(ctx context.Context, previous UserDTO) {
	body, err := json.Marshal([]UserDTO{previous})
	if err != nil {
		s.logger.Error("failed to encode rollback snapshot", "user_id", previous.ID, "error", err)
		return
	}
	s.replicator.SendAsync(ctx, replication.ProcessUserUpdate, string(body))
}
