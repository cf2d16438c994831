package main

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/playmatatu/pongenv/internal/admin"
	"github.com/playmatatu/pongenv/internal/config"
	"github.com/playmatatu/pongenv/internal/database"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	name := os.Getenv("ADMIN_NAME")
	if name == "" {
		name = "admin"
		log.Printf("Using default operator name: %s", name)
	}

	adminToken := os.Getenv("ADMIN_TOKEN")
	if adminToken == "" {
		adminToken = "change-me-in-production"
		log.Printf("WARNING: Using default admin token. Set ADMIN_TOKEN env var in production!")
	}

	displayName := "Admin"
	roles := []string{"admin"}
	var allowedIPs []string // empty = allow from any IP
	if v := os.Getenv("ADMIN_ALLOWED_IPS"); v != "" {
		for _, ip := range strings.Split(v, ",") {
			if ip = strings.TrimSpace(ip); ip != "" {
				allowedIPs = append(allowedIPs, ip)
			}
		}
	}

	if err := admin.UpsertOperator(db, name, displayName, adminToken, roles, allowedIPs); err != nil {
		log.Fatalf("Failed to create operator: %v", err)
	}

	log.Printf("Operator created/updated successfully")
	log.Printf("  Name: %s", name)
	log.Printf("  Roles: %v", roles)
	log.Printf("  Allowed IPs: %v", allowedIPs)
	log.Println("Log in with POST /api/v1/admin/login {\"name\", \"token\"}")
}
