// Seeds the database with the storefront catalog and bootstraps the
// admin account. Safe to run repeatedly: categories and products are
// upserted by name, live stock is never reduced.
package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/Shray90/YalaCarves-sub001/internal/domain"
	"github.com/Shray90/YalaCarves-sub001/internal/repository"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

type seedProduct struct {
	name          string
	description   string
	price         float64
	originalPrice float64
	artisan       string
	image         string
	stock         int
}

var catalog = map[string]struct {
	description string
	products    []seedProduct
}{
	"Wood Carvings": {
		description: "Hand-carved figures and panels in walnut and sal wood",
		products: []seedProduct{
			{"Walnut Ganesh Statue", "Hand-carved walnut Ganesh, 30cm", 12500, 15000, "Rajan Shakya", "/images/walnut-ganesh.jpg", 8},
			{"Peacock Window Panel", "Traditional carved peacock window replica", 18000, 22000, "Rajan Shakya", "/images/peacock-window.jpg", 3},
			{"Lokta Elephant Pair", "Carved elephant bookends, sal wood", 4200, 4800, "Mina Tamang", "/images/elephant-pair.jpg", 15},
		},
	},
	"Textiles": {
		description: "Handwoven shawls and fabrics",
		products: []seedProduct{
			{"Pashmina Shawl", "Pure pashmina, naturally dyed", 9500, 11000, "Sita Gurung", "/images/pashmina-shawl.jpg", 20},
			{"Dhaka Weave Scarf", "Classic dhaka pattern scarf", 2200, 2500, "Sita Gurung", "/images/dhaka-scarf.jpg", 30},
		},
	},
	"Pottery": {
		description: "Thrown and fired in the old quarter",
		products: []seedProduct{
			{"Black Clay Tea Set", "Five-piece tea set, black clay", 5600, 6400, "Hari Prajapati", "/images/tea-set.jpg", 10},
			{"Glazed Planter", "Indigo glazed planter, 25cm", 3100, 3500, "Hari Prajapati", "/images/glazed-planter.jpg", 12},
		},
	},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		log.Fatalf("Invalid DB_PORT: %v", err)
	}

	creds := &repository.Credentials{
		Host:              getEnv("DB_HOST", "localhost"),
		Port:              dbPort,
		User:              getEnv("DB_USER", "postgres"),
		Password:          getEnv("DB_PASSWORD", "postgres"),
		DBName:            getEnv("DB_NAME", "yalacarves"),
		MigrationsDirPath: getEnv("MIGRATIONS_PATH", "./internal/repository/migrations"),
	}

	repo, err := repository.NewRepository(creds)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(creds); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for name, cat := range catalog {
		categoryID, err := repo.UpsertCategory(ctx, &domain.Category{Name: name, Description: cat.description})
		if err != nil {
			log.Fatalf("Failed to seed category %q: %v", name, err)
		}

		for _, p := range cat.products {
			_, err := repo.UpsertProduct(ctx, &domain.Product{
				Name:          p.name,
				Description:   p.description,
				Price:         p.price,
				OriginalPrice: p.originalPrice,
				CategoryID:    categoryID,
				Artisan:       p.artisan,
				Image:         p.image,
				Stock:         p.stock,
				IsActive:      true,
			})
			if err != nil {
				log.Fatalf("Failed to seed product %q: %v", p.name, err)
			}
		}
		log.Printf("Seeded category %q with %d products", name, len(cat.products))
	}

	adminEmail := getEnv("ADMIN_EMAIL", "admin@yalacarves.com")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		log.Println("ADMIN_PASSWORD not set, skipping admin bootstrap")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}
	if err := repo.EnsureAdmin(ctx, "Store Admin", adminEmail, string(hashed)); err != nil {
		log.Fatalf("Failed to bootstrap admin: %v", err)
	}
	log.Printf("Admin account ensured for %s", adminEmail)
}
