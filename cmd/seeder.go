package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/profaxno/admin-management/internal"
	"github.com/profaxno/admin-management/internal/company"
	"github.com/profaxno/admin-management/internal/permission"
	"github.com/profaxno/admin-management/internal/role"
	"github.com/profaxno/admin-management/internal/user"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with a default company, permission catalog and admin user",
	RunE:  runSeed,
}

var seedPermissions = []permission.UpsertPermissionDTO{
	{Label: "Full administrative access", Code: "ADMIN.ALL"},
	{Label: "Read companies", Code: "COMPANY.READ"},
	{Label: "Write companies", Code: "COMPANY.WRITE"},
	{Label: "Read roles", Code: "ROLE.READ"},
	{Label: "Write roles", Code: "ROLE.WRITE"},
	{Label: "Read users", Code: "USER.READ"},
	{Label: "Write users", Code: "USER.WRITE"},
}

func runSeed(_ *cobra.Command, _ []string) error {
	deps, err := initializeDependencies()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.DB.Close()

	ctx := context.Background()

	if clearData {
		slog.Info("Clearing existing data")
		for _, table := range []string{"adm_user_role", "adm_role_permission", "adm_user", "adm_role", "adm_permission", "adm_company"} {
			if err := deps.GormDB.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
		}
	}

	permissionIDs := make([]string, 0, len(seedPermissions))
	for _, dto := range seedPermissions {
		created, err := deps.PermissionService.Upsert(ctx, dto)
		if err != nil {
			if !internal.IsAlreadyExists(err) {
				return fmt.Errorf("failed to seed permission %s: %w", dto.Code, err)
			}
			existing, err := deps.PermissionService.Search(ctx, permission.SearchPermissionsDTO{Code: dto.Code})
			if err != nil {
				return fmt.Errorf("failed to look up permission %s: %w", dto.Code, err)
			}
			permissionIDs = append(permissionIDs, existing[0].ID)
			continue
		}
		permissionIDs = append(permissionIDs, created.ID)
	}
	slog.Info("Permission catalog seeded", "count", len(permissionIDs))

	companyID, err := seedCompany(ctx, deps)
	if err != nil {
		return err
	}

	roleID, err := seedAdminRole(ctx, deps, companyID, permissionIDs)
	if err != nil {
		return err
	}

	if err := seedAdminUser(ctx, deps, companyID, roleID); err != nil {
		return err
	}

	slog.Info("Seeding completed")
	return nil
}

func seedCompany(ctx context.Context, deps *Dependencies) (string, error) {
	const name = "PROFAXNO COMPANY"

	created, err := deps.CompanyService.Upsert(ctx, company.UpsertCompanyDTO{
		Name:        name,
		FantasyName: "Profaxno",
		Email:       "contact@profaxno.com",
	})
	if err == nil {
		slog.Info("Company seeded", "id", created.ID)
		return created.ID, nil
	}
	if !internal.IsAlreadyExists(err) {
		return "", fmt.Errorf("failed to seed company: %w", err)
	}

	existing, err := deps.CompanyService.Search(ctx, company.SearchCompaniesDTO{Name: name})
	if err != nil {
		return "", fmt.Errorf("failed to look up seeded company: %w", err)
	}
	return existing[0].ID, nil
}

func seedAdminRole(ctx context.Context, deps *Dependencies, companyID string, permissionIDs []string) (string, error) {
	const name = "ADMINISTRATOR"

	created, err := deps.RoleService.Upsert(ctx, role.UpsertRoleDTO{
		CompanyID:     companyID,
		Name:          name,
		PermissionIDs: permissionIDs,
	})
	if err == nil {
		slog.Info("Administrator role seeded", "id", created.ID, "permissions", len(permissionIDs))
		return created.ID, nil
	}
	if !internal.IsAlreadyExists(err) {
		return "", fmt.Errorf("failed to seed administrator role: %w", err)
	}

	existing, err := deps.RoleService.Search(ctx, role.SearchRolesDTO{CompanyID: companyID, Name: name})
	if err != nil {
		return "", fmt.Errorf("failed to look up administrator role: %w", err)
	}
	return existing[0].ID, nil
}

func seedAdminUser(ctx context.Context, deps *Dependencies, companyID, roleID string) error {
	created, err := deps.UserService.Upsert(ctx, user.UpsertUserDTO{
		CompanyID: companyID,
		Name:      "Administrator",
		Email:     "admin@profaxno.com",
		Password:  "changeme",
		RoleIDs:   []string{roleID},
	})
	if err != nil {
		if internal.IsAlreadyExists(err) {
			slog.Info("Admin user already present, skipping")
			return nil
		}
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	slog.Info("Admin user seeded", "id", created.ID)
	return nil
}
