package domain

import "time"

type Product struct {
	ID            int64
	Name          string
	Description   string
	Price         float64
	OriginalPrice float64
	CategoryID    int64
	Artisan       string
	Image         string
	Stock         int
	IsActive      bool
	CreatedAt     time.Time
}

type Category struct {
	ID          int64
	Name        string
	Description string
}
