package extractor

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/gostage/internal/graph"
	"github.com/dbsmedya/gostage/internal/types"
)

func TestSQLWriter_TableExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	writer := NewSQLWriter(db)
	table := graph.ParseTableRef("company.orders")

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM information_schema.tables").
		WithArgs("company", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := writer.TableExists(context.Background(), table)
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM information_schema.tables").
		WithArgs("company", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	exists, err = writer.TableExists(context.Background(), table)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSQLWriter_DropAndTruncate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	writer := NewSQLWriter(db)
	staging := graph.ParseTableRef("company._stg_orders")

	mock.ExpectExec("DROP TABLE IF EXISTS `company`.`_stg_orders`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("TRUNCATE TABLE `company`.`_stg_orders`").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, writer.DropTableIfExists(context.Background(), staging))
	require.NoError(t, writer.TruncateTable(context.Background(), staging))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLWriter_BulkInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	writer := NewSQLWriter(db)
	staging := graph.ParseTableRef("company._stg_orders")

	mock.ExpectExec("INSERT INTO `company`.`_stg_orders` \\(`id`, `status`\\) VALUES \\(\\?, \\?\\), \\(\\?, \\?\\)").
		WithArgs(int64(1), "new", int64(2), "paid").
		WillReturnResult(sqlmock.NewResult(0, 2))

	rows := []types.Row{
		{int64(1), "new"},
		{int64(2), "paid"},
	}
	require.NoError(t, writer.BulkInsert(context.Background(), staging, []string{"id", "status"}, rows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLWriter_BulkInsert_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	writer := NewSQLWriter(db)

	// no rows, no statement
	require.NoError(t, writer.BulkInsert(context.Background(),
		graph.ParseTableRef("company._stg_orders"), []string{"id"}, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLWriter_BulkInsert_WidthMismatch(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	writer := NewSQLWriter(db)
	err = writer.BulkInsert(context.Background(),
		graph.ParseTableRef("company._stg_orders"), []string{"id", "status"},
		[]types.Row{{int64(1)}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "has 1 values, want 2")
}

func TestSQLWriter_MergeStaged(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	writer := NewSQLWriter(db)
	dest := graph.ParseTableRef("company.orders")
	staging := StagingTable(dest)

	mock.ExpectExec("REPLACE INTO `company`.`orders` \\(`id`, `status`\\) SELECT `id`, `status` FROM `company`.`_stg_orders`").
		WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := writer.MergeStaged(context.Background(), dest, staging, []string{"id", "status"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
}

func TestSQLWriter_MergeStaged_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	writer := NewSQLWriter(db)
	dest := graph.ParseTableRef("company.orders")

	mock.ExpectExec("REPLACE INTO `company`.`orders`").
		WillReturnError(fmt.Errorf("Cannot add or update a child row"))

	_, err = writer.MergeStaged(context.Background(), dest, StagingTable(dest), []string{"id"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to merge")
}

func TestSQLWriter_SetForeignKeyChecks(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	writer := NewSQLWriter(db)

	mock.ExpectExec("SET FOREIGN_KEY_CHECKS = 0").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SET FOREIGN_KEY_CHECKS = 1").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, writer.SetForeignKeyChecks(context.Background(), false))
	require.NoError(t, writer.SetForeignKeyChecks(context.Background(), true))
	assert.NoError(t, mock.ExpectationsWereMet())
}
