// Package main seeds the database with a demo hierarchy and stock.
package main

import (
	"context"
	"fmt"
	"os"

	"telstock/internal/config"
	"telstock/internal/core/apperror"
	"telstock/internal/core/types"
	"telstock/internal/domain/catalogs/accessory"
	"telstock/internal/domain/catalogs/product"
	"telstock/internal/domain/hierarchy"
	"telstock/internal/domain/inventory"
	"telstock/internal/infrastructure/cache"
	"telstock/internal/infrastructure/storage/postgres"
	"telstock/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: "info", Development: true})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.Database.DSN()))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	snapshotCache := cache.NewSnapshotCache(nil, 0, log)

	users := hierarchy.NewService(postgres.NewUserRepo(txManager), snapshotCache)
	products := product.NewService(postgres.NewProductRepo(txManager))
	accessoryRepo := postgres.NewAccessoryRepo(txManager)
	accessories := accessory.NewService(accessoryRepo, accessoryRepo)
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}
	inventorySvc := inventory.NewService(postgres.NewInventoryRepo(txManager), auditService)

	if err := seedHierarchy(ctx, users, log); err != nil {
		log.Fatalw("failed to seed hierarchy", "error", err)
	}
	if err := seedStock(ctx, products, inventorySvc, accessories, accessoryRepo, log); err != nil {
		log.Fatalw("failed to seed stock", "error", err)
	}

	log.Info("seeding completed successfully")
}

func seedHierarchy(ctx context.Context, users *hierarchy.Service, log *logger.Logger) error {
	admin := &hierarchy.User{
		Name:  "Head Office Admin",
		Email: "admin@telstock.io",
		Role:  hierarchy.RoleAdmin,
	}
	if err := createUser(ctx, users, admin, envOr("ADMIN_PASSWORD", "Admin123!")); err != nil {
		return err
	}

	rm := &hierarchy.User{
		Name:   "Ruth Mwangi",
		Email:  "ruth.mwangi@telstock.io",
		Role:   hierarchy.RoleRegionalManager,
		Region: "Central",
	}
	if err := createUser(ctx, users, rm, "Password1!"); err != nil {
		return err
	}

	tl := &hierarchy.User{
		Name:              "Tom Leakey",
		Email:             "tom.leakey@telstock.io",
		Role:              hierarchy.RoleTeamLeader,
		Region:            "Central",
		RegionalManagerID: &rm.ID,
	}
	if err := createUser(ctx, users, tl, "Password1!"); err != nil {
		return err
	}

	fo := &hierarchy.User{
		Name:         "Faith Otieno",
		Email:        "faith.otieno@telstock.io",
		Role:         hierarchy.RoleFieldOfficer,
		Region:       "Central",
		TeamLeaderID: &tl.ID,
	}
	if err := createUser(ctx, users, fo, "Password1!"); err != nil {
		return err
	}

	log.Infow("hierarchy seeded", "admin", admin.Email, "rm", rm.Email, "tl", tl.Email, "fo", fo.Email)
	return nil
}

func createUser(ctx context.Context, users *hierarchy.Service, u *hierarchy.User, password string) error {
	err := users.CreateUser(ctx, u, password)
	if err == nil {
		return nil
	}
	// Re-running the seed must not fail on existing users.
	if appErr, ok := apperror.AsAppError(err); ok && appErr.Code == apperror.CodeDuplicate {
		existing, getErr := users.GetUserByEmail(ctx, u.Email)
		if getErr != nil {
			return getErr
		}
		*u = *existing
		return nil
	}
	return err
}

func seedStock(
	ctx context.Context,
	products *product.Service,
	inventorySvc *inventory.Service,
	accessories *accessory.Service,
	balances accessory.BalanceRepository,
	log *logger.Logger,
) error {
	phone := &product.Product{
		Name:      "Nokia G22",
		Category:  "smartphone",
		Brand:     "Nokia",
		BasePrice: types.FromMoney(types.NewMoney(179.99)),
		IsActive:  true,
	}
	if err := products.Create(ctx, phone); err != nil {
		return err
	}

	imeis := []string{
		"353912101234561",
		"353912101234579",
		"353912101234587",
	}
	units := make([]*inventory.IMEI, 0, len(imeis))
	for _, number := range imeis {
		units = append(units, &inventory.IMEI{
			Number:       number,
			ProductID:    phone.ID,
			Capacity:     "64GB",
			SellingPrice: phone.BasePrice,
			CommissionFO: types.NewMoney(5),
			CommissionTL: types.NewMoney(2.5),
			CommissionRM: types.NewMoney(1.5),
			Source:       inventory.SourceDirect,
		})
	}
	result, err := inventorySvc.BulkRegister(ctx, units)
	if err != nil {
		return err
	}
	log.Infow("imeis seeded", "registered", len(result.Success), "failed", len(result.Failed))

	charger := &accessory.Accessory{
		Name:  "USB-C Charger 20W",
		Price: types.FromMoney(types.NewMoney(12.50)),
	}
	if err := accessories.Create(ctx, charger); err != nil {
		return err
	}
	// Accessory quantities start in the unallocated pool.
	if err := balances.Adjust(ctx, charger.ID, nil, 100); err != nil {
		return err
	}
	log.Infow("accessories seeded", "accessory", charger.Name, "pool_quantity", 100)

	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
