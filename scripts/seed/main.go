//go:build ignore

// ===========================================================================
// Seed data for development/testing
// Run: go run scripts/seed/main.go
// ===========================================================================

package main

import (
	"fmt"
	"log"

	"dealerhub-gin/internal/config"
	"dealerhub-gin/internal/database"
	"dealerhub-gin/internal/models"
	"dealerhub-gin/pkg/logger"
)

func main() {
	fmt.Println("seeding development data...")

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLog, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	db, err := database.NewConnection(&cfg.Database, zapLog)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	fmt.Println("database connected and migrated")

	// =========================================================================
	// 1. Salespeople
	// =========================================================================
	salespeople := []*models.User{
		{Name: "Ana Souza", Email: "ana@dealerhub.local", Role: models.RoleSalesperson, IsActive: true},
		{Name: "Bruno Lima", Email: "bruno@dealerhub.local", Role: models.RoleSalesperson, IsActive: true},
		{Name: "Carla Mendes", Email: "carla@dealerhub.local", Role: models.RoleSalesperson, IsActive: true},
		{Name: "Diego Ferreira", Email: "diego@dealerhub.local", Role: models.RoleManager, IsActive: true},
	}
	for _, u := range salespeople {
		if err := db.Where("email = ?", u.Email).FirstOrCreate(u).Error; err != nil {
			log.Fatalf("failed to seed user %s: %v", u.Email, err)
		}
		fmt.Printf("user: %s (%s)\n", u.Name, u.ID)
	}

	// =========================================================================
	// 2. Round-robin pool (managers stay out)
	// =========================================================================
	capTen := 10
	pool := []*models.RoundRobinConfig{
		{SalespersonID: salespeople[0].ID, IsActive: true, MaxLeadsPerDay: &capTen},
		{SalespersonID: salespeople[1].ID, IsActive: true},
		{SalespersonID: salespeople[2].ID, IsActive: true},
	}
	for _, cfg := range pool {
		if err := db.Where("salesperson_id = ?", cfg.SalespersonID).FirstOrCreate(cfg).Error; err != nil {
			log.Fatalf("failed to seed round-robin row: %v", err)
		}
	}
	fmt.Printf("round-robin pool: %d salespeople enrolled\n", len(pool))

	// =========================================================================
	// 3. Development WhatsApp instance
	// =========================================================================
	instance := &models.WhatsAppInstance{
		InstanceName: "dev-line",
		Status:       models.InstanceDisconnected,
	}
	if err := db.Where("instance_name = ?", instance.InstanceName).FirstOrCreate(instance).Error; err != nil {
		log.Fatalf("failed to seed instance: %v", err)
	}
	fmt.Printf("instance: %s (%s)\n", instance.InstanceName, instance.ID)

	fmt.Println("seed completed")
}
