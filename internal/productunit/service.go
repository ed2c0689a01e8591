package productunit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/profaxno/admin-management/internal"
	"github.com/profaxno/admin-management/internal/core/database"
	productUnitDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/productunit"
	"github.com/profaxno/admin-management/internal/replication"
)

// RepositoryAPI defines the data access methods for product units. Lookups
// return (nil, nil) on a miss.
type RepositoryAPI interface {
	GetByID(id string) (*productUnitDatamodel.ProductUnit, error)
	GetByName(name string) (*productUnitDatamodel.ProductUnit, error)
	Search(name string, page, limit int) ([]productUnitDatamodel.ProductUnit, error)
	GetPage(page, limit int) ([]productUnitDatamodel.ProductUnit, error)
	Save(unit *productUnitDatamodel.ProductUnit) error
	SoftDelete(id string) error
}

type Replicator interface {
	Send(ctx context.Context, process replication.Process, payload string) error
	SendAsync(ctx context.Context, process replication.Process, payload string)
	Sweep(ctx context.Context, updateProcess, deleteProcess replication.Process, limit int, fetch replication.SweepPageFunc) string
}

// Service manages the measurement-unit catalog. Committed mutations replicate
// to the products consumer with the same rollback choreography companies use.
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

func (s *Service) Upsert(ctx context.Context, dto UpsertProductUnitDTO) (*ProductUnitDTO, error) {
	if dto.ID == "" {
		return s.Create(ctx, dto)
	}
	return s.Update(ctx, dto.ID, dto)
}

func (s *Service) Create(ctx context.Context, dto UpsertProductUnitDTO) (*ProductUnitDTO, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	name := strings.ToUpper(strings.TrimSpace(dto.Name))

	existing, err := s.repo.GetByName(name)
	if err != nil {
		s.logger.Error("failed to check product unit name", "name", name, "error", err)
		return nil, internal.NewInternalError("failed to check product unit name", err)
	}
	if existing != nil && existing.Active {
		return nil, internal.NewAlreadyExistsError(fmt.Sprintf("product unit with name %s already exists", name))
	}

	model := &productUnitDatamodel.ProductUnit{Name: name, Active: true}
	if err := s.repo.Save(model); err != nil {
		s.logger.Error("failed to create product unit", "name", name, "error", err)
		return nil, internal.NewInternalError("failed to create product unit", err)
	}

	out := toDTO(model)

	if err := s.replicate(ctx, replication.ProcessProductUnitUpdate, []ProductUnitDTO{*out}); err != nil {
		// compensating rollback: do not keep a record downstream never saw
		if derr := s.repo.SoftDelete(model.ID); derr != nil {
			s.logger.Error("compensating delete failed", "product_unit_id", model.ID, "error", derr)
		}
		return nil, err
	}

	s.logger.Info("product unit created", "product_unit_id", model.ID, "name", name)
	return out, nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpsertProductUnitDTO) (*ProductUnitDTO, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	model, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to load product unit", "product_unit_id", id, "error", err)
		return nil, internal.NewInternalError("failed to load product unit", err)
	}
	if model == nil || !model.Active {
		return nil, internal.NewNotFoundError(fmt.Sprintf("product unit with id %s not found", id), internal.ErrCodeProductUnitNotFound)
	}

	previous := *toDTO(model)

	name := strings.ToUpper(strings.TrimSpace(dto.Name))
	if name != model.Name {
		existing, err := s.repo.GetByName(name)
		if err != nil {
			return nil, internal.NewInternalError("failed to check product unit name", err)
		}
		if existing != nil && existing.Active && existing.ID != model.ID {
			return nil, internal.NewAlreadyExistsError(fmt.Sprintf("product unit with name %s already exists", name))
		}
	}

	model.Name = name
	if err := s.repo.Save(model); err != nil {
		s.logger.Error("failed to update product unit", "product_unit_id", id, "error", err)
		return nil, internal.NewInternalError("failed to update product unit", err)
	}

	out := toDTO(model)

	if err := s.replicate(ctx, replication.ProcessProductUnitUpdate, []ProductUnitDTO{*out}); err != nil {
		// best-effort rollback signal carrying the pre-update snapshot
		s.resendSnapshot(ctx, previous)
		return nil, err
	}

	s.logger.Info("product unit updated", "product_unit_id", model.ID, "name", name)
	return out, nil
}

func (s *Service) UpdateBatch(ctx context.Context, dtos []UpsertProductUnitDTO) *internal.ProcessSummary {
	summary := internal.NewProcessSummary(len(dtos))

	for i, dto := range dtos {
		if _, err := s.Upsert(ctx, dto); err != nil {
			s.logger.Warn("product unit batch item failed", "index", i+1, "name", dto.Name, "error", err)
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
		return internal.NewInternalError("failed to load product unit", err)
	}
	if model == nil || !model.Active {
		return internal.NewNotFoundError(fmt.Sprintf("product unit with id %s not found", id), internal.ErrCodeProductUnitNotFound)
	}

	if err := s.repo.SoftDelete(id); err != nil {
		if database.IsForeignKeyViolation(err) {
			return internal.NewIsBeingUsedError(fmt.Sprintf("product unit with id %s is being used", id))
		}
		s.logger.Error("failed to remove product unit", "product_unit_id", id, "error", err)
		return internal.NewInternalError("failed to remove product unit", err)
	}

	if err := s.replicate(ctx, replication.ProcessProductUnitDelete, []replication.JSONBasic{{ID: id}}); err != nil {
		return err
	}

	s.logger.Info("product unit removed", "product_unit_id", id)
	return nil
}

func (s *Service) Search(ctx context.Context, dto SearchProductUnitsDTO) ([]ProductUnitDTO, error) {
	page, limit := dto.Normalize(s.defaultLimit)

	models, err := s.repo.Search(strings.ToUpper(strings.TrimSpace(dto.Name)), page, limit)
	if err != nil {
		s.logger.Error("failed to search product units", "error", err)
		return nil, internal.NewInternalError("failed to search product units", err)
	}
	if len(models) == 0 {
		return nil, internal.NewNotFoundError("no product units found", internal.ErrCodeProductUnitNotFound)
	}

	return toDTOList(models), nil
}

// Synchronize re-emits replication messages for every catalog row, active and
// inactive, page by page.
func (s *Service) Synchronize(ctx context.Context, dto SynchronizeProductUnitsDTO) string {
	_, limit := dto.Normalize(s.defaultLimit)

	return s.replicator.Sweep(ctx, replication.ProcessProductUnitUpdate, replication.ProcessProductUnitDelete, limit,
		func(ctx context.Context, page, limit int) (interface{}, interface{}, int, error) {
			models, err := s.repo.GetPage(page, limit)
			if err != nil {
				return nil, nil, 0, err
			}

			updates := make([]ProductUnitDTO, 0, len(models))
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

func (s *Service) resendSnapshot(ctx context.Context, previous ProductUnitDTO) {
	body, err := json.Marshal([]ProductUnitDTO{previous})
	if err != nil {
		s.logger.Error("failed to encode rollback snapshot", "product_unit_id", previous.ID, "error", err)
		return
	}
	s.replicator.SendAsync(ctx, replication.ProcessProductUnitUpdate, string(body))
}
