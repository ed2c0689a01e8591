package role_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/profaxno/admin-management/internal"
	"github.com/profaxno/admin-management/internal/company"
	roleDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/role"
	"github.com/profaxno/admin-management/internal/role"
)

func TestRoleService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "RoleService Suite")
}

// Mock repository for testing
type mockRoleRepository struct {
	roles       map[string]*roleDatamodel.Role
	deleteError error
	nextID      int
}

func newMockRoleRepository() *mockRoleRepository {
	return &mockRoleRepository{
		roles:  make(map[string]*roleDatamodel.Role),
		nextID: 1,
	}
}

func (m *mockRoleRepository) GetByID(id string) (*roleDatamodel.Role, error) {
	model, exists := m.roles[id]
	if !exists {
		return nil, nil
	}
	copied := *model
	return &copied, nil
}

func (m *mockRoleRepository) GetActiveByName(companyID, name string) (*roleDatamodel.Role, error) {
	for _, model := range m.roles {
		if model.CompanyID == companyID && model.Name == name && model.Active {
			copied := *model
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockRoleRepository) GetByIDs(ids []string) ([]roleDatamodel.Role, error) {
	var out []roleDatamodel.Role
	for _, id := range ids {
		if model, ok := m.roles[id]; ok && model.Active {
			out = append(out, *model)
		}
	}
	return out, nil
}

func (m *mockRoleRepository) Search(companyID, name string, page, limit int) ([]roleDatamodel.Role, error) {
	var out []roleDatamodel.Role
	for _, model := range m.roles {
		if model.CompanyID != companyID || !model.Active {
			continue
		}
		if name != "" && !strings.Contains(model.Name, name) {
			continue
		}
		out = append(out, *model)
	}
	return out, nil
}

func (m *mockRoleRepository) Save(model *roleDatamodel.Role) error {
	if model.ID == "" {
		model.ID = fmt.Sprintf("role-%d", m.nextID)
		m.nextID++
	}
	copied := *model
	m.roles[model.ID] = &copied
	return nil
}

func (m *mockRoleRepository) SoftDelete(id string) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	if model, ok := m.roles[id]; ok {
		model.Active = false
	}
	return nil
}

type mockCompanyAPI struct {
	known map[string]bool
}

func (m *mockCompanyAPI) FindActiveByID(ctx context.Context, id string) (*company.CompanyDTO, error) {
	if !m.known[id] {
		return nil, internal.NewNotFoundError(fmt.Sprintf("company with id %s not found", id), internal.ErrCodeCompanyNotFound)
	}
	return &company.CompanyDTO{ID: id, Active: true}, nil
}

type mockPermissionReconciler struct {
	replaced   map[string][]string
	replaceErr error
	calls      int
}

func (m *mockPermissionReconciler) Replace(ctx context.Context, roleID string, permissionIDs []string) ([]roleDatamodel.RolePermission, error) {
	if len(permissionIDs) == 0 {
		return nil, nil
	}
	m.calls++
	if m.replaceErr != nil {
		return nil, m.replaceErr
	}
	m.replaced[roleID] = permissionIDs
	links := make([]roleDatamodel.RolePermission, 0, len(permissionIDs))
	for _, id := range permissionIDs {
		link := roleDatamodel.RolePermission{RoleID: roleID, PermissionID: id}
		link.Permission.ID = id
		link.Permission.Label = "label " + id
		links = append(links, link)
	}
	return links, nil
}

var _ = Describe("RoleService", func() {
	var (
		repo       *mockRoleRepository
		companies  *mockCompanyAPI
		reconciler *mockPermissionReconciler
		service    *role.Service
		ctx        context.Context
	)

	BeforeEach(func() {
		repo = newMockRoleRepository()
		companies = &mockCompanyAPI{known: map[string]bool{"company-x": true, "company-y": true}}
		reconciler = &mockPermissionReconciler{replaced: make(map[string][]string)}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = role.NewService(repo, companies, reconciler, 1000, logger)
		ctx = context.Background()
	})

	Describe("Create", func() {
		It("should scope name uniqueness to the company", func() {
			_, err := service.Create(ctx, role.UpsertRoleDTO{CompanyID: "company-x", Name: "admin"})
			Expect(err).NotTo(HaveOccurred())

			// same name in another company is a different scope
			_, err = service.Create(ctx, role.UpsertRoleDTO{CompanyID: "company-y", Name: "ADMIN"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(ctx, role.UpsertRoleDTO{CompanyID: "company-x", Name: "Admin"})
			Expect(internal.IsAlreadyExists(err)).To(BeTrue())
		})

		It("should reject an unknown company", func() {
			_, err := service.Create(ctx, role.UpsertRoleDTO{CompanyID: "company-z", Name: "ADMIN"})
			Expect(internal.IsNotFound(err)).To(BeTrue())
		})

		It("should compose the permission list from reconciled links", func() {
			dto, err := service.Create(ctx, role.UpsertRoleDTO{
				CompanyID:     "company-x",
				Name:          "ADMIN",
				PermissionIDs: []string{"perm-1", "perm-2"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(dto.Permissions).To(HaveLen(2))
			Expect(dto.Permissions[0].ID).To(Equal("perm-1"))
			Expect(dto.Permissions[0].Label).To(Equal("label perm-1"))
		})

		It("should leave associations untouched when no permission list is supplied", func() {
			dto, err := service.Create(ctx, role.UpsertRoleDTO{CompanyID: "company-x", Name: "ADMIN"})
			Expect(err).NotTo(HaveOccurred())
			Expect(dto.Permissions).To(BeEmpty())
			Expect(reconciler.calls).To(BeZero())
		})

		It("should propagate missing permission references", func() {
			reconciler.replaceErr = internal.NewNotFoundError("permissions with id [perm-x] not found", internal.ErrCodePermissionNotFound)

			_, err := service.Create(ctx, role.UpsertRoleDTO{
				CompanyID:     "company-x",
				Name:          "ADMIN",
				PermissionIDs: []string{"perm-x"},
			})
			Expect(internal.IsNotFound(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("perm-x"))
		})
	})

	Describe("Update", func() {
		It("should return not found for a missing or inactive role", func() {
			_, err := service.Update(ctx, "missing", role.UpsertRoleDTO{CompanyID: "company-x", Name: "ADMIN"})
			Expect(internal.IsNotFound(err)).To(BeTrue())

			created, err := service.Create(ctx, role.UpsertRoleDTO{CompanyID: "company-x", Name: "ADMIN"})
			Expect(err).NotTo(HaveOccurred())
			Expect(service.Remove(ctx, created.ID)).To(Succeed())

			_, err = service.Update(ctx, created.ID, role.UpsertRoleDTO{CompanyID: "company-x", Name: "ADMIN"})
			Expect(internal.IsNotFound(err)).To(BeTrue())
		})

		It("should replace the permission set through the reconciler", func() {
			created, err := service.Create(ctx, role.UpsertRoleDTO{
				CompanyID:     "company-x",
				Name:          "ADMIN",
				PermissionIDs: []string{"perm-1"},
			})
			Expect(err).NotTo(HaveOccurred())

			updated, err := service.Update(ctx, created.ID, role.UpsertRoleDTO{
				CompanyID:     "company-x",
				Name:          "ADMIN",
				PermissionIDs: []string{"perm-2", "perm-3"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Permissions).To(HaveLen(2))
			Expect(reconciler.replaced[created.ID]).To(Equal([]string{"perm-2", "perm-3"}))
		})
	})

	Describe("UpdateBatch", func() {
		It("should report {total:2, okCount:1, koCount:1} for one valid and one duplicate item", func() {
			_, err := service.Create(ctx, role.UpsertRoleDTO{CompanyID: "company-x", Name: "TAKEN"})
			Expect(err).NotTo(HaveOccurred())

			summary := service.UpdateBatch(ctx, []role.UpsertRoleDTO{
				{CompanyID: "company-x", Name: "FRESH"},
				{CompanyID: "company-x", Name: "TAKEN"},
			})

			Expect(summary.Total).To(Equal(2))
			Expect(summary.OKCount).To(Equal(1))
			Expect(summary.KOCount).To(Equal(1))
			Expect(summary.KODetails[0]).To(ContainSubstring("TAKEN"))
		})
	})

	Describe("Remove", func() {
		It("should translate a foreign key failure to an in-use error", func() {
			created, err := service.Create(ctx, role.UpsertRoleDTO{CompanyID: "company-x", Name: "ADMIN"})
			Expect(err).NotTo(HaveOccurred())

			repo.deleteError = fmt.Errorf("FOREIGN KEY constraint failed")

			err = service.Remove(ctx, created.ID)
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeBeingUsed))
		})
	})

	Describe("Search", func() {
		It("should require a company scope and report empty results as not found", func() {
			_, err := service.Search(ctx, role.SearchRolesDTO{})
			Expect(err).To(HaveOccurred())

			_, err = service.Search(ctx, role.SearchRolesDTO{CompanyID: "company-x"})
			Expect(internal.IsNotFound(err)).To(BeTrue())
		})
	})
})
