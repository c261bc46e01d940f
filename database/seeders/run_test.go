package seeders_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sampleapp/app/repositories"
	"github.com/shashiranjanraj/sampleapp/database/seeders"
	"github.com/shashiranjanraj/sampleapp/pkg/auth"
	"github.com/shashiranjanraj/sampleapp/pkg/cache"
	"github.com/shashiranjanraj/sampleapp/pkg/database"
	"github.com/shashiranjanraj/sampleapp/pkg/logger"
)

func TestRunAllIsRepeatable(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	set, err := repositories.Build(ctx, db, cache.Nop{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = set.Close() })

	require.NoError(t, seeders.RunAll(ctx, set, logger.Discard()))
	require.NoError(t, seeders.RunAll(ctx, set, logger.Discard()))

	products, err := set.Products.All(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 3)

	admin, err := set.Users.FindByEmail(ctx, "admin@sampleapp.local")
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Role)
	assert.True(t, auth.CheckPassword(admin.Password, "password"))
}
