package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Ramchandran06/E-commerce-backend/pkg/pagination"
)

type probe struct {
	ID   int
	Name string
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:repo_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&probe{}))
	return conn
}

func TestBaseBindsContextAndTx(t *testing.T) {
	db := openDB(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	assert.Equal(t, ctx, base.DB(ctx).Statement.Context)
	assert.Same(t, db, base.DB(nil))

	tx := db.Begin()
	defer tx.Rollback()
	assert.Same(t, tx, base.WithTx(tx).db)
	assert.Same(t, db, base.WithTx(nil).db, "nil tx keeps the pool")
}

func TestForUpdateRegistersLock(t *testing.T) {
	stmt := NewBase(openDB(t)).ForUpdate(context.Background()).Statement
	assert.Contains(t, stmt.Clauses, "FOR")
}

func TestCountAndPaged(t *testing.T) {
	db := openDB(t)
	for i := 1; i <= 5; i++ {
		require.NoError(t, db.Create(&probe{ID: i, Name: "p"}).Error)
	}
	base := NewBase(db)

	total, err := base.Count(context.Background(), &probe{})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)

	var page []probe
	err = base.DB(context.Background()).Order("id").Scopes(Paged(pagination.Params{Page: 2, Limit: 2})).Find(&page).Error
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, 3, page[0].ID)
}
