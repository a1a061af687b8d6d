package main

import (
	"inventory-service/internal/model"
	"inventory-service/pkg/config"
	"inventory-service/pkg/database"
	"inventory-service/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Seeds the initial admin account so the API is usable on a fresh database.
// Run once after the first migration; exits quietly when the admin exists.
func main() {
	appConfig, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	if err := database.InitDB(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.MigrateModels(&model.User{}); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	db := database.GetDB()

	var count int64
	db.Model(&model.User{}).Where("email = ?", appConfig.Seed.AdminEmail).Count(&count)
	if count > 0 {
		log.Info("Admin user already exists", zap.String("email", appConfig.Seed.AdminEmail))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(appConfig.Seed.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash admin password", zap.Error(err))
	}

	admin := model.User{
		Name:     appConfig.Seed.AdminName,
		Email:    appConfig.Seed.AdminEmail,
		Password: string(hash),
		Role:     model.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatal("Failed to seed admin user", zap.Error(err))
	}

	log.Info("Seeded admin user",
		zap.Uint("user_id", admin.ID),
		zap.String("email", admin.Email))
}
