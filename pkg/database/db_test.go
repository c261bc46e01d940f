package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/sampleapp/pkg/app"
	"github.com/shashiranjanraj/sampleapp/pkg/database"
	"github.com/shashiranjanraj/sampleapp/pkg/logger"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db, err := database.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Close())
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := database.Open(context.Background(), "oracle", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported DB_DRIVER")
}

func TestConnectorWrapsFailures(t *testing.T) {
	sc, err := app.InitializeTransport(8080, app.TransportConfig{}, nil)
	require.NoError(t, err)

	_, err = database.Connector{Driver: "oracle"}.CreateConnection(context.Background(), sc)
	var connErr *app.ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.Equal(t, "oracle", connErr.Driver)
}

func TestUnknownDriverFailsPersistenceStage(t *testing.T) {
	b := app.New(app.Config{Port: 8080}, logger.Discard()).
		Persistence(database.Connector{Driver: "oracle"}, func(context.Context, *gorm.DB) (app.DataAccess, error) {
			t.Fatal("models must not be built without a connection")
			return nil, nil
		})

	_, err := b.Bring(context.Background())

	require.Error(t, err)
	assert.Equal(t, app.StagePersistence, app.StageOf(err))
	var connErr *app.ConnectionError
	assert.True(t, errors.As(err, &connErr))
	assert.Equal(t, app.Failed, b.State())
}
