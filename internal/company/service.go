package company

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/profaxno/admin-management/internal"
	"github.com/profaxno/admin-management/internal/core/database"
	companyDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/company"
	"github.com/profaxno/admin-management/internal/replication"
)

// RepositoryAPI defines the data access methods for companies. Lookups return
// (nil, nil) on a miss.
type RepositoryAPI interface {
	GetByID(id string) (*companyDatamodel.Company, error)
	GetByName(name string) (*companyDatamodel.Company, error)
	Search(name string, page, limit int) ([]companyDatamodel.Company, error)
	GetPage(page, limit int) ([]companyDatamodel.Company, error)
	Save(company *companyDatamodel.Company) error
	SoftDelete(id string) error
}

// Replicator is the outbound propagation surface the service depends on.
type Replicator interface {
	Send(ctx context.Context, process replication.Process, payload string) error
	SendAsync(ctx context.Context, process replication.Process, payload string)
	Sweep(ctx context.Context, updateProcess, deleteProcess replication.Process, limit int, fetch replication.SweepPageFunc) string
}

// Service handles the tenant boundary: every role and user belongs to exactly
// one company. Committed mutations replicate downstream; replication failure
// rolls the local write back so the source of truth never silently retains an
// unreplicated record.
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

func (s *Service) Upsert(ctx context.Context, dto UpsertCompanyDTO) (*CompanyDTO, error) {
	if dto.ID == "" {
		return s.Create(ctx, dto)
	}
	return s.Update(ctx, dto.ID, dto)
}

func (s *Service) Create(ctx context.Context, dto UpsertCompanyDTO) (*CompanyDTO, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	name := strings.ToUpper(strings.TrimSpace(dto.Name))

	existing, err := s.repo.GetByName(name)
	if err != nil {
		s.logger.Error("failed to check company name", "name", name, "error", err)
		return nil, internal.NewInternalError("failed to check company name", err)
	}
	if existing != nil && existing.Active {
		return nil, internal.NewAlreadyExistsError(fmt.Sprintf("company with name %s already exists", name))
	}

	model := &companyDatamodel.Company{Active: true}
	dto.apply(model, name)

	if err := s.repo.Save(model); err != nil {
		s.logger.Error("failed to create company", "name", name, "error", err)
		return nil, internal.NewInternalError("failed to create company", err)
	}

	out := toDTO(model)

	if err := s.replicate(ctx, replication.ProcessCompanyUpdate, []CompanyDTO{*out}); err != nil {
		// compensating rollback: do not keep a record downstream never saw
		if derr := s.repo.SoftDelete(model.ID); derr != nil {
			s.logger.Error("compensating delete failed", "company_id", model.ID, "error", derr)
		}
		return nil, err
	}

	s.logger.Info("company created", "company_id", model.ID, "name", name)
	return out, nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpsertCompanyDTO) (*CompanyDTO, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	model, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to load company", "company_id", id, "error", err)
		return nil, internal.NewInternalError("failed to load company", err)
	}
	if model == nil || !model.Active {
		return nil, internal.NewNotFoundError(fmt.Sprintf("company with id %s not found", id), internal.ErrCodeCompanyNotFound)
	}

	previous := *toDTO(model)

	name := strings.ToUpper(strings.TrimSpace(dto.Name))
	if name != model.Name {
		existing, err := s.repo.GetByName(name)
		if err != nil {
			return nil, internal.NewInternalError("failed to check company name", err)
		}
		if existing != nil && existing.Active && existing.ID != model.ID {
			return nil, internal.NewAlreadyExistsError(fmt.Sprintf("company with name %s already exists", name))
		}
	}

	dto.apply(model, name)
	if err := s.repo.Save(model); err != nil {
		s.logger.Error("failed to update company", "company_id", id, "error", err)
		return nil, internal.NewInternalError("failed to update company", err)
	}

	out := toDTO(model)

	if err := s.replicate(ctx, replication.ProcessCompanyUpdate, []CompanyDTO{*out}); err != nil {
		// best-effort rollback signal carrying the pre-update snapshot
		s.resendSnapshot(ctx, previous)
		return nil, err
	}

	s.logger.Info("company updated", "company_id", model.ID, "name", name)
	return out, nil
}

func (s *Service) UpdateBatch(ctx context.Context, dtos []UpsertCompanyDTO) *internal.ProcessSummary {
	summary := internal.NewProcessSummary(len(dtos))

	for i, dto := range dtos {
		if _, err := s.Upsert(ctx, dto); err != nil {
			s.logger.Warn("company batch item failed", "index", i+1, "name", dto.Name, "error", err)
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
		return internal.NewInternalError("failed to load company", err)
	}
	if model == nil || !model.Active {
		return internal.NewNotFoundError(fmt.Sprintf("company with id %s not found", id), internal.ErrCodeCompanyNotFound)
	}

	if err := s.repo.SoftDelete(id); err != nil {
		if database.IsForeignKeyViolation(err) {
			return internal.NewIsBeingUsedError(fmt.Sprintf("company with id %s is being used", id))
		}
		s.logger.Error("failed to remove company", "company_id", id, "error", err)
		return internal.NewInternalError("failed to remove company", err)
	}

	if err := s.replicate(ctx, replication.ProcessCompanyDelete, []replication.JSONBasic{{ID: id}}); err != nil {
		return err
	}

	s.logger.Info("company removed", "company_id", id)
	return nil
}

func (s *Service) Search(ctx context.Context, dto SearchCompaniesDTO) ([]CompanyDTO, error) {
	page, limit := dto.Normalize(s.defaultLimit)

	models, err := s.repo.Search(strings.ToUpper(strings.TrimSpace(dto.Name)), page, limit)
	if err != nil {
		s.logger.Error("failed to search companies", "error", err)
		return nil, internal.NewInternalError("failed to search companies", err)
	}
	if len(models) == 0 {
		return nil, internal.NewNotFoundError("no companies found", internal.ErrCodeCompanyNotFound)
	}

	return toDTOList(models), nil
}

// FindActiveByID resolves a company reference for dependent services.
func (s *Service) FindActiveByID(ctx context.Context, id string) (*CompanyDTO, error) {
	model, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load company", err)
	}
	if model == nil || !model.Active {
		return nil, internal.NewNotFoundError(fmt.Sprintf("company with id %s not found", id), internal.ErrCodeCompanyNotFound)
	}
	return toDTO(model), nil
}

// Synchronize re-emits replication messages for every company row, active and
// inactive, page by page, to repair a diverged downstream read model.
func (s *Service) Synchronize(ctx context.Context, dto SynchronizeDTO) string {
	_, limit := dto.Normalize(s.defaultLimit)

	return s.replicator.Sweep(ctx, replication.ProcessCompanyUpdate, replication.ProcessCompanyDelete, limit,
		func(ctx context.Context, page, limit int) (interface{}, interface{}, int, error) {
			models, err := s.repo.GetPage(page, limit)
			if err != nil {
				return nil, nil, 0, err
			}

			updates := make([]CompanyDTO, 0, len(models))
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

func (s *Service) resendSnapshot(ctx context.Context, previous CompanyDTO) {
	body, err := json.Marshal([]CompanyDTO{previous})
	if err != nil {
		s.logger.Error("failed to encode rollback snapshot", "company_id", previous.ID, "error", err)
		return
	}
	s.replicator.SendAsync(ctx, replication.ProcessCompanyUpdate, string(body))
}
