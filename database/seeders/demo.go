package seeders

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/sampleapp/app/models"
	"github.com/shashiranjanraj/sampleapp/app/repositories"
	"github.com/shashiranjanraj/sampleapp/pkg/auth"
)

func init() {
	Register("admin", seedAdmin)
	Register("products", seedProducts)
}

const (
	adminEmail    = "admin@sampleapp.local"
	adminPassword = "password"
)

func seedAdmin(ctx context.Context, set *repositories.Set) error {
	_, err := set.Users.FindByEmail(ctx, adminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return err
	}
	return set.Users.Create(ctx, &models.User{
		Name:     "Admin",
		Email:    adminEmail,
		Password: hash,
		Role:     "admin",
	})
}

func seedProducts(ctx context.Context, set *repositories.Set) error {
	existing, err := set.Products.All(ctx)
	if err != nil || len(existing) > 0 {
		return err
	}
	for _, p := range []models.Product{
		{Name: "Notebook", Description: "A5, dotted", Price: 4.5, Stock: 120, SKU: "NB-A5"},
		{Name: "Fountain Pen", Description: "Medium nib", Price: 32, Stock: 15, SKU: "FP-M"},
		{Name: "Ink Bottle", Description: "Blue-black, 50ml", Price: 9.75, Stock: 40, SKU: "INK-BB"},
	} {
		p := p
		if err := set.Products.Create(ctx, &p); err != nil {
			return err
		}
	}
	return nil
}
