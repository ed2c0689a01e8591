package productunit_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/profaxno/admin-management/internal"
	productUnitDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/productunit"
	"github.com/profaxno/admin-management/internal/core/events"
	"github.com/profaxno/admin-management/internal/productunit"
	"github.com/profaxno/admin-management/internal/replication"
)

func TestProductUnitService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ProductUnitService Suite")
}

// Mock repository for testing
type mockProductUnitRepository struct {
	units  map[string]*productUnitDatamodel.ProductUnit
	order  []string
	nextID int
}

func newMockProductUnitRepository() *mockProductUnitRepository {
	return &mockProductUnitRepository{
		units:  make(map[string]*productUnitDatamodel.ProductUnit),
		nextID: 1,
	}
}

func (m *mockProductUnitRepository) GetByID(id string) (*productUnitDatamodel.ProductUnit, error) {
	model, exists := m.units[id]
	if !exists {
		return nil, nil
	}
	copied := *model
	return &copied, nil
}

func (m *mockProductUnitRepository) GetByName(name string) (*productUnitDatamodel.ProductUnit, error) {
	for _, model := range m.units {
		if model.Name == name {
			copied := *model
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockProductUnitRepository) Search(name string, page, limit int) ([]productUnitDatamodel.ProductUnit, error) {
	var out []productUnitDatamodel.ProductUnit
	for _, id := range m.order {
		model := m.units[id]
		if !model.Active {
			continue
		}
		if name != "" && !strings.Contains(model.Name, name) {
			continue
		}
		out = append(out, *model)
	}
	return out, nil
}

func (m *mockProductUnitRepository) GetPage(page, limit int) ([]productUnitDatamodel.ProductUnit, error) {
	start := (page - 1) * limit
	if start >= len(m.order) {
		return []productUnitDatamodel.ProductUnit{}, nil
	}
	end := start + limit
	if end > len(m.order) {
		end = len(m.order)
	}
	out := make([]productUnitDatamodel.ProductUnit, 0, end-start)
	for _, id := range m.order[start:end] {
		out = append(out, *m.units[id])
	}
	return out, nil
}

func (m *mockProductUnitRepository) Save(model *productUnitDatamodel.ProductUnit) error {
	if model.ID == "" {
		model.ID = fmt.Sprintf("unit-%d", m.nextID)
		m.nextID++
		m.order = append(m.order, model.ID)
	}
	copied := *model
	m.units[model.ID] = &copied
	return nil
}

func (m *mockProductUnitRepository) SoftDelete(id string) error {
	if model, ok := m.units[id]; ok {
		model.Active = false
	}
	return nil
}

// mockSink records every delivery attempt, including failed ones.
type mockSink struct {
	mu       sync.Mutex
	attempts []replication.Message
	failErr  error
}

func (m *mockSink) Send(ctx context.Context, msg replication.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, msg)
	if m.failErr != nil {
		return "", m.failErr
	}
	return "ack-1", nil
}

func (m *mockSink) attemptCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.attempts)
}

func (m *mockSink) attempt(i int) replication.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts[i]
}

func (m *mockSink) setFail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

var _ = Describe("ProductUnitService", func() {
	var (
		repo    *mockProductUnitRepository
		sink    *mockSink
		service *productunit.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		repo = newMockProductUnitRepository()
		sink = &mockSink{}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		bus := events.NewEventBus(logger)
		coordinator := replication.NewCoordinator(sink, bus, "api-admin", logger)
		service = productunit.NewService(repo, coordinator, 1000, logger)
		ctx = context.Background()
	})

	Describe("Create", func() {
		It("should store the name uppercase and reject a duplicate active name", func() {
			created, err := service.Create(ctx, productunit.UpsertProductUnitDTO{Name: "kilogram"})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.Name).To(Equal("KILOGRAM"))

			_, err = service.Create(ctx, productunit.UpsertProductUnitDTO{Name: "Kilogram"})
			Expect(internal.IsAlreadyExists(err)).To(BeTrue())
		})

		It("should replicate the created unit", func() {
			created, err := service.Create(ctx, productunit.UpsertProductUnitDTO{Name: "LITER"})
			Expect(err).NotTo(HaveOccurred())

			Expect(sink.attemptCount()).To(Equal(1))
			msg := sink.attempt(0)
			Expect(msg.Process).To(Equal(replication.ProcessProductUnitUpdate))
			Expect(msg.Payload).To(ContainSubstring(created.ID))
		})

		It("should soft delete the new unit when replication fails", func() {
			sink.setFail(errors.New("broker unavailable"))

			_, err := service.Create(ctx, productunit.UpsertProductUnitDTO{Name: "LITER"})
			Expect(err).To(HaveOccurred())

			stored, err := repo.GetByName("LITER")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).NotTo(BeNil())
			Expect(stored.Active).To(BeFalse())
		})
	})

	Describe("Update", func() {
		It("should re-send the pre-update snapshot when replication fails", func() {
			created, err := service.Create(ctx, productunit.UpsertProductUnitDTO{Name: "GRAM"})
			Expect(err).NotTo(HaveOccurred())

			sink.setFail(errors.New("broker unavailable"))

			_, err = service.Update(ctx, created.ID, productunit.UpsertProductUnitDTO{Name: "KILOGRAM"})
			Expect(err).To(HaveOccurred())

			// create send + failed update send + async snapshot resend
			Eventually(sink.attemptCount, time.Second).Should(Equal(3))
			Expect(sink.attempt(2).Payload).To(ContainSubstring(`"name":"GRAM"`))
		})
	})

	Describe("Remove", func() {
		It("should soft delete and send a delete message", func() {
			created, err := service.Create(ctx, productunit.UpsertProductUnitDTO{Name: "LITER"})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Remove(ctx, created.ID)).To(Succeed())
			Expect(repo.units[created.ID].Active).To(BeFalse())

			msg := sink.attempt(sink.attemptCount() - 1)
			Expect(msg.Process).To(Equal(replication.ProcessProductUnitDelete))
			Expect(msg.Payload).To(ContainSubstring(created.ID))
		})
	})

	Describe("UpdateBatch", func() {
		It("should report per-item outcomes without failing the batch", func() {
			_, err := service.Create(ctx, productunit.UpsertProductUnitDTO{Name: "TAKEN"})
			Expect(err).NotTo(HaveOccurred())

			summary := service.UpdateBatch(ctx, []productunit.UpsertProductUnitDTO{
				{Name: "FRESH"},
				{Name: "taken"},
			})

			Expect(summary.Total).To(Equal(2))
			Expect(summary.OKCount).To(Equal(1))
			Expect(summary.KOCount).To(Equal(1))
		})
	})

	Describe("Synchronize", func() {
		It("should partition active and inactive rows into one update and one delete message", func() {
			a, err := service.Create(ctx, productunit.UpsertProductUnitDTO{Name: "GRAM"})
			Expect(err).NotTo(HaveOccurred())
			b, err := service.Create(ctx, productunit.UpsertProductUnitDTO{Name: "LITER"})
			Expect(err).NotTo(HaveOccurred())
			Expect(service.Remove(ctx, b.ID)).To(Succeed())

			before := sink.attemptCount()

			result := service.Synchronize(ctx, productunit.SynchronizeProductUnitsDTO{})
			Expect(result).To(Equal("executed"))

			Expect(sink.attemptCount()).To(Equal(before + 2))

			update := sink.attempt(before)
			Expect(update.Process).To(Equal(replication.ProcessProductUnitUpdate))
			Expect(update.Payload).To(ContainSubstring(a.ID))
			Expect(update.Payload).NotTo(ContainSubstring(b.ID))

			del := sink.attempt(before + 1)
			Expect(del.Process).To(Equal(replication.ProcessProductUnitDelete))
			Expect(del.Payload).To(ContainSubstring(b.ID))
		})
	})
})
