package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/glucolab/glucometer/internal/config"
)

func main() {
	fmt.Println("Validating configuration...")

	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Configuration is invalid:\n%v\n", err)
		os.Exit(1)
	}

	fmt.Println("Configuration is valid")
	fmt.Println("Details:")
	fmt.Printf("  - DB Driver: %s\n", cfg.DB.Driver)
	if cfg.DB.Driver == config.DriverPostgres {
		fmt.Printf("  - DB Host: %s\n", cfg.DB.Host)
		fmt.Printf("  - DB Port: %s\n", cfg.DB.Port)
		fmt.Printf("  - DB User: %s\n", cfg.DB.User)
		fmt.Printf("  - DB Password: %s\n", maskSecret(cfg.DB.Password))
		fmt.Printf("  - DB Name: %s\n", cfg.DB.DBName)
	} else {
		fmt.Printf("  - SQLite Path: %s\n", cfg.DB.SQLitePath)
	}
	fmt.Printf("  - Redis Enabled: %v\n", cfg.Redis.Enabled)
	if cfg.Redis.Enabled {
		fmt.Printf("  - Redis Host: %s\n", cfg.Redis.Host)
		fmt.Printf("  - Redis Port: %s\n", cfg.Redis.Port)
	}
	fmt.Printf("  - Log Level: %v\n", cfg.Logger.Level)
	fmt.Printf("  - Log Output: %s\n", cfg.Logger.OutputPath)
	fmt.Printf("  - Log Format: %s\n", cfg.Logger.Format)
	fmt.Printf("  - Stats Window Days: %d\n", cfg.Analysis.WindowDays)
}

func maskSecret(secret string) string {
	if secret == "" {
		return "<not set>"
	}
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
