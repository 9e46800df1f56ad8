package database

import (
	"path/filepath"
	"testing"

	"github.com/localnerve/rentalmanager/internal/config"
	"github.com/localnerve/rentalmanager/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestDialectorByType(t *testing.T) {
	cases := map[string]string{
		"mysql":      "mysql",
		"mariadb":    "mysql",
		"postgres":   "postgres",
		"postgresql": "postgres",
		"sqlite":     "sqlite",
		"sqlserver":  "sqlserver",
	}
	for dbType, name := range cases {
		d, err := Dialector(&config.Config{DBType: dbType, DBHost: "localhost", DBPort: "1", DBDatabase: "rental", DBUser: "u"})
		require.NoError(t, err, dbType)
		assert.Equal(t, name, d.Name(), dbType)
	}

	_, err := Dialector(&config.Config{DBType: "oracle"})
	assert.EqualError(t, err, "unsupported database type: oracle")
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, GormLogLevel("debug"))
	assert.Equal(t, logger.Warn, GormLogLevel("warn"))
	assert.Equal(t, logger.Error, GormLogLevel("error"))
	assert.Equal(t, logger.Silent, GormLogLevel("info"))
}

func TestConnectAndMigrateSQLite(t *testing.T) {
	cfg := &config.Config{
		DBType:            "sqlite",
		DBDatabase:        filepath.Join(t.TempDir(), "rental.db"),
		DBConnectionLimit: 5,
		LogLevel:          "info",
	}

	db, err := Connect(cfg)
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, AutoMigrate(db))
	for _, table := range []any{&models.UserCollection{}, &models.UserRecord{}, &models.UserProfileRecord{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}
	assert.True(t, db.Migrator().HasIndex(&models.UserRecord{}, "idx_user_records_collection"))
}
