package postgres

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/profaxno/admin-management/internal"
	permissionDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/permission"
	roleDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/role"
	userDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/user"
	"github.com/profaxno/admin-management/internal/reconcile"
	rolePostgres "github.com/profaxno/admin-management/internal/role/postgres"
)

func TestUserRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "UserRepository Suite")
}

var _ = Describe("UserRepository", func() {
	var (
		db   *gorm.DB
		repo *UserRepository
		rec  *reconcile.Reconciler[roleDatamodel.Role, userDatamodel.UserRole]
		ctx  context.Context

		roleAdmin  roleDatamodel.Role
		roleViewer roleDatamodel.Role
	)

	createUser := func(email string) *userDatamodel.User {
		model := &userDatamodel.User{
			CompanyID: "company-x",
			Name:      "Jo Doe",
			Email:     email,
			Password:  "opaque-secret",
			Status:    userDatamodel.StatusAvailable,
			Active:    true,
		}
		Expect(repo.Save(model)).To(Succeed())
		return model
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&permissionDatamodel.Permission{},
			&roleDatamodel.Role{},
			&roleDatamodel.RolePermission{},
			&userDatamodel.User{},
			&userDatamodel.UserRole{},
		)
		Expect(err).NotTo(HaveOccurred())

		repo = &UserRepository{db: db}
		roleRepo := rolePostgres.NewRoleRepository(db)
		rec = NewRoleReconciler(db, roleRepo)

		permRead := permissionDatamodel.Permission{Label: "Read", Code: "READ", Active: true}
		Expect(db.Create(&permRead).Error).NotTo(HaveOccurred())

		roleAdmin = roleDatamodel.Role{CompanyID: "company-x", Name: "ADMIN", Active: true}
		roleViewer = roleDatamodel.Role{CompanyID: "company-x", Name: "VIEWER", Active: true}
		Expect(db.Create(&roleAdmin).Error).NotTo(HaveOccurred())
		Expect(db.Create(&roleViewer).Error).NotTo(HaveOccurred())
		Expect(db.Create(&roleDatamodel.RolePermission{RoleID: roleAdmin.ID, PermissionID: permRead.ID}).Error).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).NotTo(HaveOccurred())
	})

	Describe("role reconciliation", func() {
		It("should replace the assigned set atomically and load it back with the permission graph", func() {
			model := createUser("JO@ACME.TEST")

			_, err := rec.Replace(ctx, model.ID, []string{roleViewer.ID})
			Expect(err).NotTo(HaveOccurred())

			_, err = rec.Replace(ctx, model.ID, []string{roleAdmin.ID})
			Expect(err).NotTo(HaveOccurred())

			loaded, err := repo.GetByID(model.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Roles).To(HaveLen(1))
			Expect(loaded.Roles[0].Role.Name).To(Equal("ADMIN"))
			Expect(loaded.Roles[0].Role.Permissions).To(HaveLen(1))
			Expect(loaded.Roles[0].Role.Permissions[0].Permission.Code).To(Equal("READ"))
		})

		It("should not resolve inactive roles", func() {
			model := createUser("JO@ACME.TEST")

			Expect(db.Model(&roleDatamodel.Role{}).Where("id = ?", roleViewer.ID).Update("active", false).Error).NotTo(HaveOccurred())

			_, err := rec.Replace(ctx, model.ID, []string{roleViewer.ID})
			Expect(internal.IsNotFound(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring(roleViewer.ID))
		})
	})

	Describe("soft delete non-cascade", func() {
		It("should keep existing user role links when the role goes inactive", func() {
			model := createUser("JO@ACME.TEST")

			_, err := rec.Replace(ctx, model.ID, []string{roleAdmin.ID})
			Expect(err).NotTo(HaveOccurred())

			// deactivate the role after assignment
			Expect(db.Model(&roleDatamodel.Role{}).Where("id = ?", roleAdmin.ID).Update("active", false).Error).NotTo(HaveOccurred())

			loaded, err := repo.GetByID(model.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Roles).To(HaveLen(1))
			Expect(loaded.Roles[0].RoleID).To(Equal(roleAdmin.ID))
			Expect(loaded.Roles[0].Role.Active).To(BeFalse())
		})
	})

	Describe("GetAvailableByEmail", func() {
		It("should skip disabled and inactive users", func() {
			model := createUser("JO@ACME.TEST")

			found, err := repo.GetAvailableByEmail("JO@ACME.TEST")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).NotTo(BeNil())

			Expect(db.Model(&userDatamodel.User{}).Where("id = ?", model.ID).Update("status", userDatamodel.StatusDisabled).Error).NotTo(HaveOccurred())

			found, err = repo.GetAvailableByEmail("JO@ACME.TEST")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())
		})
	})
})
