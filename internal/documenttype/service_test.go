package documenttype_test

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
	documentTypeDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/documenttype"
	"github.com/profaxno/admin-management/internal/core/events"
	"github.com/profaxno/admin-management/internal/documenttype"
	"github.com/profaxno/admin-management/internal/replication"
)

func TestDocumentTypeService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "DocumentTypeService Suite")
}

// Mock repository for testing
type mockDocumentTypeRepository struct {
	types  map[string]*documentTypeDatamodel.DocumentType
	order  []string
	nextID int
}

func newMockDocumentTypeRepository() *mockDocumentTypeRepository {
	return &mockDocumentTypeRepository{
		types:  make(map[string]*documentTypeDatamodel.DocumentType),
		nextID: 1,
	}
}

func (m *mockDocumentTypeRepository) GetByID(id string) (*documentTypeDatamodel.DocumentType, error) {
	model, exists := m.types[id]
	if !exists {
		return nil, nil
	}
	copied := *model
	return &copied, nil
}

func (m *mockDocumentTypeRepository) GetByName(name string) (*documentTypeDatamodel.DocumentType, error) {
	for _, model := range m.types {
		if model.Name == name {
			copied := *model
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockDocumentTypeRepository) Search(name string, page, limit int) ([]documentTypeDatamodel.DocumentType, error) {
	var out []documentTypeDatamodel.DocumentType
	for _, id := range m.order {
		model := m.types[id]
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

func (m *mockDocumentTypeRepository) GetPage(page, limit int) ([]documentTypeDatamodel.DocumentType, error) {
	start := (page - 1) * limit
	if start >= len(m.order) {
		return []documentTypeDatamodel.DocumentType{}, nil
	}
	end := start + limit
	if end > len(m.order) {
		end = len(m.order)
	}
	out := make([]documentTypeDatamodel.DocumentType, 0, end-start)
	for _, id := range m.order[start:end] {
		out = append(out, *m.types[id])
	}
	return out, nil
}

func (m *mockDocumentTypeRepository) Save(model *documentTypeDatamodel.DocumentType) error {
	if model.ID == "" {
		model.ID = fmt.Sprintf("doctype-%d", m.nextID)
		m.nextID++
		m.order = append(m.order, model.ID)
	}
	copied := *model
	m.types[model.ID] = &copied
	return nil
}

func (m *mockDocumentTypeRepository) SoftDelete(id string) error {
	if model, ok := m.types[id]; ok {
		model.Active = false
	}
	return nil
}

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

var _ = Describe("DocumentTypeService", func() {
	var (
		repo    *mockDocumentTypeRepository
		sink    *mockSink
		service *documenttype.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		repo = newMockDocumentTypeRepository()
		sink = &mockSink{}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		bus := events.NewEventBus(logger)
		coordinator := replication.NewCoordinator(sink, bus, "api-admin", logger)
		service = documenttype.NewService(repo, coordinator, 1000, logger)
		ctx = context.Background()
	})

	Describe("Create", func() {
		It("should normalize the name and replicate the new type", func() {
			created, err := service.Create(ctx, documenttype.UpsertDocumentTypeDTO{Name: " invoice "})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.Name).To(Equal("INVOICE"))

			Expect(sink.attemptCount()).To(Equal(1))
			msg := sink.attempt(0)
			Expect(msg.Process).To(Equal(replication.ProcessDocumentTypeUpdate))
			Expect(msg.Payload).To(ContainSubstring(created.ID))
		})

		It("should reject a second type with the same name", func() {
			_, err := service.Create(ctx, documenttype.UpsertDocumentTypeDTO{Name: "INVOICE"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(ctx, documenttype.UpsertDocumentTypeDTO{Name: "invoice"})
			Expect(internal.IsAlreadyExists(err)).To(BeTrue())
		})

		It("should roll back the row when replication fails", func() {
			sink.setFail(errors.New("queue down"))

			_, err := service.Create(ctx, documenttype.UpsertDocumentTypeDTO{Name: "RECEIPT"})
			Expect(err).To(HaveOccurred())

			stored, err := repo.GetByName("RECEIPT")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).NotTo(BeNil())
			Expect(stored.Active).To(BeFalse())
		})
	})

	Describe("Update", func() {
		It("should asynchronously re-send the old snapshot on replication failure", func() {
			created, err := service.Create(ctx, documenttype.UpsertDocumentTypeDTO{Name: "INVOICE"})
			Expect(err).NotTo(HaveOccurred())

			sink.setFail(errors.New("queue down"))

			_, err = service.Update(ctx, created.ID, documenttype.UpsertDocumentTypeDTO{Name: "CREDIT_NOTE"})
			Expect(err).To(HaveOccurred())

			Eventually(sink.attemptCount, time.Second).Should(Equal(3))
			Expect(sink.attempt(2).Payload).To(ContainSubstring(`"name":"INVOICE"`))
		})

		It("should return not found for an inactive type", func() {
			created, err := service.Create(ctx, documenttype.UpsertDocumentTypeDTO{Name: "INVOICE"})
			Expect(err).NotTo(HaveOccurred())
			Expect(service.Remove(ctx, created.ID)).To(Succeed())

			_, err = service.Update(ctx, created.ID, documenttype.UpsertDocumentTypeDTO{Name: "RECEIPT"})
			Expect(internal.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("Remove", func() {
		It("should send a delete message carrying only the id", func() {
			created, err := service.Create(ctx, documenttype.UpsertDocumentTypeDTO{Name: "RECEIPT"})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Remove(ctx, created.ID)).To(Succeed())

			msg := sink.attempt(sink.attemptCount() - 1)
			Expect(msg.Process).To(Equal(replication.ProcessDocumentTypeDelete))
			Expect(msg.Payload).To(Equal(fmt.Sprintf(`[{"id":"%s"}]`, created.ID)))
		})
	})

	Describe("Synchronize", func() {
		It("should emit update and delete messages for the whole catalog", func() {
			active, err := service.Create(ctx, documenttype.UpsertDocumentTypeDTO{Name: "INVOICE"})
			Expect(err).NotTo(HaveOccurred())
			removed, err := service.Create(ctx, documenttype.UpsertDocumentTypeDTO{Name: "RECEIPT"})
			Expect(err).NotTo(HaveOccurred())
			Expect(service.Remove(ctx, removed.ID)).To(Succeed())

			before := sink.attemptCount()

			Expect(service.Synchronize(ctx, documenttype.SynchronizeDocumentTypesDTO{})).To(Equal("executed"))
			Expect(sink.attemptCount()).To(Equal(before + 2))

			Expect(sink.attempt(before).Process).To(Equal(replication.ProcessDocumentTypeUpdate))
			Expect(sink.attempt(before).Payload).To(ContainSubstring(active.ID))
			Expect(sink.attempt(before + 1).Process).To(Equal(replication.ProcessDocumentTypeDelete))
			Expect(sink.attempt(before + 1).Payload).To(ContainSubstring(removed.ID))
		})

		It("should report a failure when the sink rejects the sweep", func() {
			_, err := service.Create(ctx, documenttype.UpsertDocumentTypeDTO{Name: "INVOICE"})
			Expect(err).NotTo(HaveOccurred())

			sink.setFail(errors.New("queue down"))

			Expect(service.Synchronize(ctx, documenttype.SynchronizeDocumentTypesDTO{})).To(Equal("not executed (unexpected error)"))
		})
	})
})
