package main

import (
	"context"
	"errors"
	"log"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	repo "app/internal/repository"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.Category{},
		&model.Service{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Review{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	profileRepo := infraRepo.NewProfileGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	serviceRepo := infraRepo.NewServiceGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	reviewRepo := infraRepo.NewReviewGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//初期管理者のシード
	if err := seedAdmin(cfg, userRepo); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	//Usecase生成
	catalogUC := usecase.NewCatalogUsecase(categoryRepo, serviceRepo)
	cartUC := usecase.NewCartUsecase(txManager, cartRepo, cartItemRepo, serviceRepo)
	orderUC := usecase.NewOrderUsecase(txManager, orderRepo, orderItemRepo)
	reviewUC := usecase.NewReviewUsecase(reviewRepo, orderRepo, orderItemRepo, serviceRepo)
	profileUC := usecase.NewProfileUsecase(profileRepo)

	//Handler生成
	h := server.Handlers{
		Catalog:      handler.NewCatalogHandler(catalogUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC),
		Review:       handler.NewReviewHandler(reviewUC),
		Profile:      handler.NewProfileHandler(profileUC),
		AdminCatalog: handler.NewAdminCatalogHandler(catalogUC),
		AdminOrder:   handler.NewAdminOrderHandler(orderUC),
	}

	//Server起動
	e := server.New(cfg, h)

	addr := ":" + cfg.Port
	if cfg.Port[0] == ':' {
		addr = cfg.Port
	}

	if err := server.Start(e, addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// ADMIN_EMAIL/ADMIN_PASSWORDが設定されていれば初期管理者を作る。
// 既にいれば何もしない。
func seedAdmin(cfg config.Config, users repo.UserRepository) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	ctx := context.Background()

	_, err := users.FindByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), 12)
	if err != nil {
		return err
	}

	_, err = users.Create(ctx, model.User{
		Email:        cfg.AdminEmail,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		IsActive:     true,
	})
	return err
}
