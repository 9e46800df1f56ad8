package services

import (
	"context"
	"testing"

	"github.com/localnerve/rentalmanager/internal/broker"
	"github.com/localnerve/rentalmanager/internal/config"
	"github.com/localnerve/rentalmanager/internal/database"
	"github.com/localnerve/rentalmanager/internal/logger"
	"github.com/localnerve/rentalmanager/internal/models"
	"github.com/localnerve/rentalmanager/internal/records"
	"github.com/localnerve/rentalmanager/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPostgresRedisStore runs the record store against real Postgres and Redis containers
func TestPostgresRedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	creds := testutil.PostgresCredentials{Database: "rentals", User: "rentals", Password: "rentals"}
	pg, err := testutil.StartPostgres(ctx, "", creds)
	require.NoError(t, err)
	defer pg.Terminate(ctx)

	rd, err := testutil.StartRedis(ctx, "")
	require.NoError(t, err)
	defer rd.Terminate(ctx)

	db, err := database.Connect(&config.Config{
		DBType:            "postgres",
		DBHost:            pg.Host,
		DBPort:            pg.Port,
		DBDatabase:        creds.Database,
		DBUser:            creds.User,
		DBPassword:        creds.Password,
		DBConnectionLimit: 4,
	})
	require.NoError(t, err)
	defer database.Close(db)
	require.NoError(t, database.AutoMigrate(db))

	b, err := broker.NewRedisBroker(rd.Address(), "", 0)
	require.NoError(t, err)
	defer b.Close()

	codec, err := records.NewCodec()
	require.NoError(t, err)
	store := NewRecordStore(db, b, codec)

	snapshots := make(chan Snapshot, 16)
	stop, err := store.Watch(ctx, "pg-user", models.Properties, func(s Snapshot, err error) {
		if err == nil {
			snapshots <- s
		}
	})
	require.NoError(t, err)
	defer stop()
	waitForSnapshot(t, snapshots, func(s Snapshot) bool { return true })

	id, version, err := store.Create(ctx, "pg-user", models.Properties, &models.Property{
		HouseNumber: "C3",
		HouseType:   models.HouseTypeTwoBedroom,
		RentAmount:  15000,
		UserID:      "pg-user",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), version)

	next := waitForSnapshot(t, snapshots, func(s Snapshot) bool { return len(s.Rows) == 1 })
	props := records.DecodeAll[models.Property](next.Rows, logger.Default())
	require.Len(t, props, 1)
	assert.Equal(t, id, props[0].ID)
	assert.Equal(t, 15000, props[0].RentAmount)

	saved, err := store.SaveProfile(ctx, "pg-user", models.UserProfile{Name: "Landlord"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), saved.Version.Uint64())
}
