package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"catalog.GO/config"
	"catalog.GO/core/cache"
	"catalog.GO/core/logger"
)

func testConfig(t *testing.T, env ...string) *config.Config {
	t.Helper()
	cfg, err := config.Load(env)
	require.NoError(t, err)
	return cfg
}

func TestBuildImageChain(t *testing.T) {
	cfg := testConfig(t)
	chain := BuildImageChain(cfg, cache.NewCache(), nil, nil)
	assert.Equal(t, []string{"google-drive", "onedrive-share"}, chain.Rules())

	cfg = testConfig(t, "ONEDRIVE_MODE=redirect", "GOOGLE_DRIVE_FOLDER_ID=f", "GOOGLE_DRIVE_API_KEY=k")
	chain = BuildImageChain(cfg, cache.NewCache(), nil, nil)
	assert.Equal(t, []string{"google-drive", "onedrive-redirect", "drive-folder"}, chain.Rules())
}

func TestNew_WiresPipeline(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, "CATALOG_LOCAL_FILE="+dir+"/products.csv", "CATALOG_DELIMITER=,")
	c := New(cfg, nil, nil)

	assert.Equal(t, cfg.GoogleSheetsURL, c.Pipeline.ResolveProductsURL(""))
	products, err := c.Pipeline.Parse(context.Background(), []byte("id,image\n1,https://drive.google.com/file/d/ABC/view\n"))
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "https://drive.google.com/uc?export=view&id=ABC", products[0].Image)
}

func TestPush_RetriesAfterDatabaseFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "push.db")
	calls := 0
	c := &Container{
		Config: testConfig(t),
		Logger: logger.NewNop(),
		OpenDB: func() (*gorm.DB, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("db temporarily down")
			}
			return gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
		},
	}

	_, err := c.Push()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db temporarily down")

	svc, err := c.Push()
	require.NoError(t, err)
	require.NotNil(t, svc)
	assert.Equal(t, 2, calls)

	again, err := c.Push()
	require.NoError(t, err)
	assert.Same(t, svc, again)
	_, err = c.DB()
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "an open database is kept")
}

func TestDB_RetriesAfterFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	calls := 0
	c := &Container{OpenDB: func() (*gorm.DB, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("refused")
		}
		return gorm.Open(sqlite.Open(path), &gorm.Config{})
	}}

	_, err := c.DB()
	require.Error(t, err)
	db, err := c.DB()
	require.NoError(t, err)
	assert.NotNil(t, db)
	assert.Equal(t, 2, calls)
}
