package repo

import (
	"context"
	"testing"

	"github.com/angelmondragon/smartlist-backend/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type ctxKey struct{}

func TestBaseDBBindsContext(t *testing.T) {
	conn := dbtest.Open(t)
	base := NewBase(conn)

	ctx := context.WithValue(context.Background(), ctxKey{}, "household")
	bound := base.DB(ctx)
	require.NotNil(t, bound.Statement)
	assert.Equal(t, ctx, bound.Statement.Context)

	//nolint:staticcheck // nil context keeps the raw handle
	assert.Same(t, conn, base.DB(nil))
}

func TestBindSwapsConnectionForTransaction(t *testing.T) {
	conn := dbtest.Open(t)
	base := NewBase(conn)

	assert.Same(t, conn, base.Bind(nil).db, "nil tx keeps the current connection")

	err := conn.Transaction(func(tx *gorm.DB) error {
		bound := base.Bind(tx)
		assert.Same(t, tx, bound.db)
		assert.Same(t, conn, base.db, "original base is untouched")
		return nil
	})
	require.NoError(t, err)
}
