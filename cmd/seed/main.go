// Seeds the initial admin account so the system is operable before any
// staff exist. Safe to run repeatedly; an existing account is left
// untouched.
package main

import (
	"context"
	"log"
	"os"

	"github.com/kietute/safevoice/internal/config"
	"github.com/kietute/safevoice/internal/models"
	"github.com/kietute/safevoice/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := storage.NewPostgresStorage(storage.BuildDSN(cfg.Database))
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	name := getEnv("ADMIN_NAME", "Admin User")
	phone := getEnv("ADMIN_SDT", "0123456789")
	password := getEnv("ADMIN_PASSWORD", "admin_password")

	ctx := context.Background()

	if existing, err := store.GetStaffByPhone(ctx, phone); err == nil {
		log.Printf("Admin account already exists: %s (%s, role=%s)", existing.Name, existing.Phone, existing.Role)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	admin, err := store.UpsertStaff(ctx, &models.Staff{
		Phone:    phone,
		Name:     name,
		Password: string(hash),
		Role:     models.RoleAdmin,
	})
	if err != nil {
		log.Fatalf("Failed to create admin account: %v", err)
	}

	log.Printf("Admin account created: %s (%s)", admin.Name, admin.Phone)
}
