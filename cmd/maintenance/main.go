// Command maintenance runs one-off data jobs against the marketplace database.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/marketplace_backend/config"
	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/repositories"
	"github.com/HSouheill/marketplace_backend/services"
)

type categoryJobs interface {
	PopulateCategories(ctx context.Context, taxonomy []services.SeedCategory) (int, error)
	CleanupCategoryNames(ctx context.Context) (int, error)
}

type vendorStatsJobs interface {
	RefreshVendorCounters(ctx context.Context, vendorUserID primitive.ObjectID) (models.VendorStats, error)
	RefreshAllVendorCounters(ctx context.Context) (int, error)
}

type invitationJobs interface {
	ExpireInvitations(ctx context.Context) (int64, error)
}

type jobs struct {
	categories  categoryJobs
	vendorStats vendorStatsJobs
	invitations invitationJobs
}

// connectFunc opens whatever the jobs need and returns a cleanup func.
type connectFunc func(ctx context.Context) (*jobs, func(), error)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(connect).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func connect(ctx context.Context) (*jobs, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	client, db, err := config.ConnectDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	redisClient := config.ConnectRedis(cfg)

	cleanup := func() {
		if redisClient != nil {
			redisClient.Close()
		}
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Printf("Error disconnecting MongoDB: %v", err)
		}
	}

	categoryRepo := repositories.NewCategoryRepository(db)
	productRepo := repositories.NewProductRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	vendorRepo := repositories.NewVendorRepository(db)
	userRepo := repositories.NewUserRepository(db)

	return &jobs{
		categories:  services.NewCategoryService(categoryRepo, services.NewTreeCache(redisClient, 10*time.Minute), nil),
		vendorStats: services.NewCommissionService(productRepo, orderRepo, vendorRepo, cfg.CommissionRate),
		invitations: services.NewVendorService(vendorRepo, userRepo, services.NewEmailService(cfg.SMTP), cfg.FrontendURL),
	}, cleanup, nil
}

func newRootCmd(connect connectFunc) *cobra.Command {
	root := &cobra.Command{
		Use:          "maintenance",
		Short:        "Marketplace data maintenance jobs",
		SilenceUsage: true,
	}

	root.AddCommand(
		newPopulateCategoriesCmd(connect),
		newCleanupCategoryNamesCmd(connect),
		newRefreshVendorStatsCmd(connect),
		newExpireInvitationsCmd(connect),
	)
	return root
}

func withJobs(cmd *cobra.Command, connect connectFunc, run func(ctx context.Context, j *jobs) error) error {
	ctx := cmd.Context()
	j, cleanup, err := connect(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer cleanup()
	return run(ctx, j)
}

func newPopulateCategoriesCmd(connect connectFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "populate-categories",
		Short: "Create the default category taxonomy; existing categories are kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withJobs(cmd, connect, func(ctx context.Context, j *jobs) error {
				created, err := j.categories.PopulateCategories(ctx, services.DefaultTaxonomy)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %d categories\n", created)
				return nil
			})
		},
	}
}

func newCleanupCategoryNamesCmd(connect connectFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup-category-names",
		Short: `Strip legacy "Parent > Child" prefixes from category names`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withJobs(cmd, connect, func(ctx context.Context, j *jobs) error {
				renamed, err := j.categories.CleanupCategoryNames(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Category name cleanup complete: %d renamed\n", renamed)
				return nil
			})
		},
	}
}

func newRefreshVendorStatsCmd(connect connectFunc) *cobra.Command {
	var vendor string
	cmd := &cobra.Command{
		Use:   "refresh-vendor-stats",
		Short: "Recompute the stored product and sales counters of vendors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var vendorID primitive.ObjectID
			if vendor != "" {
				id, err := primitive.ObjectIDFromHex(vendor)
				if err != nil {
					return fmt.Errorf("invalid --vendor %q: must be a user id", vendor)
				}
				vendorID = id
			}

			return withJobs(cmd, connect, func(ctx context.Context, j *jobs) error {
				if vendor == "" {
					n, err := j.vendorStats.RefreshAllVendorCounters(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Refreshed %d vendors\n", n)
					return nil
				}
				stats, err := j.vendorStats.RefreshVendorCounters(ctx, vendorID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Vendor %s: %d products, %d units sold, revenue %.2f, commission %.2f\n",
					vendor, stats.Products, stats.Sales.TotalSales, stats.Sales.TotalRevenue, stats.Sales.CommissionEarned)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&vendor, "vendor", "", "refresh a single vendor by user id")
	return cmd
}

func newExpireInvitationsCmd(connect connectFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "expire-invitations",
		Short: "Mark pending vendor invitations past their expiry as expired",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withJobs(cmd, connect, func(ctx context.Context, j *jobs) error {
				n, err := j.invitations.ExpireInvitations(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Expired %d invitations\n", n)
				return nil
			})
		},
	}
}
