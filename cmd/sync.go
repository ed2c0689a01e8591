package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/profaxno/admin-management/internal/company"
	"github.com/profaxno/admin-management/internal/user"
	"github.com/spf13/cobra"
)

var (
	syncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Re-emit replication messages for every company and user row",
		RunE:  runSync,
	}
	syncEntity    string
	syncCompanyID string
)

func init() {
	syncCmd.Flags().StringVarP(&syncEntity, "entity", "e", "all", "entity to synchronize: companies, users or all")
	syncCmd.Flags().StringVarP(&syncCompanyID, "company", "c", "", "restrict the user sweep to a single company id")
}

func runSync(_ *cobra.Command, _ []string) error {
	deps, err := initializeDependencies()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.DB.Close()

	ctx := context.Background()

	switch syncEntity {
	case "companies":
		result := deps.CompanyService.Synchronize(ctx, company.SynchronizeDTO{})
		slog.Info("Company sweep finished", "result", result)
	case "users":
		result := deps.UserService.Synchronize(ctx, user.SynchronizeUsersDTO{CompanyID: syncCompanyID})
		slog.Info("User sweep finished", "result", result)
	case "all":
		result := deps.CompanyService.Synchronize(ctx, company.SynchronizeDTO{})
		slog.Info("Company sweep finished", "result", result)
		result = deps.UserService.Synchronize(ctx, user.SynchronizeUsersDTO{CompanyID: syncCompanyID})
		slog.Info("User sweep finished", "result", result)
	default:
		return fmt.Errorf("unknown entity %q", syncEntity)
	}

	return nil
}
