package migrate

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1, "expected one %s migration", suffix)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestMigrationDirIsValid(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestProductsMigrationGuardsStock(t *testing.T) {
	content := readMigration(t, "create_products")
	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS products",
		"price NUMERIC(10,2) NOT NULL",
		"CONSTRAINT products_stock_check CHECK (stock >= 0)",
		"DROP TABLE IF EXISTS products",
	} {
		require.Contains(t, content, sub)
	}
}

func TestOrdersMigrationFreezesPrice(t *testing.T) {
	content := readMigration(t, "create_orders")
	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE TABLE IF NOT EXISTS order_items",
		"price_at_order NUMERIC(10,2) NOT NULL",
		"'Return Requested'",
		"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
	} {
		require.Contains(t, content, sub)
	}
}

func TestReturnsMigrationHasUniqueOrderProduct(t *testing.T) {
	content := readMigration(t, "create_product_returns")
	require.Contains(t, content, "CONSTRAINT product_returns_order_product_key UNIQUE (order_id, product_id)")
	require.Contains(t, content, "CHECK (status IN ('Requested', 'Approved', 'Refunded', 'Rejected'))")
}

func TestPaymentIntentFailureMigrationAllowsFailed(t *testing.T) {
	content := readMigration(t, "payment_intent_failures")
	require.Contains(t, content, "CHECK (status IN ('created', 'consumed', 'expired', 'failed'))")
	require.Contains(t, content, "ADD COLUMN IF NOT EXISTS refund_id TEXT")
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	require.Error(t, ValidateDir(dir), "empty dir")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_bad.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, ValidateDir(dir))

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20250101000000_missing_down.sql"), []byte("-- +goose Up\n"), 0o644))
	err := ValidateDir(dir)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "goose Down"))
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Refund Index!")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_refund_index.sql"), path)
	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "!!!")
	require.Error(t, err)
}

func TestCreateAtRefusesExistingVersion(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	path, err := createAt(dir, "refund index", now)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "20250304050607_refund_index.sql"), path)

	_, err = createAt(dir, "refund index", now)
	require.ErrorContains(t, err, "already exists")
}

func TestEmbeddedSourceMatchesRepository(t *testing.T) {
	fsys, err := Source(DefaultDir)
	require.NoError(t, err)
	require.NoError(t, ValidateFS(fsys))

	embeddedNames, err := fs.Glob(fsys, "*.sql")
	require.NoError(t, err)
	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	require.NoError(t, err)
	require.Len(t, embeddedNames, len(onDisk))
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("20250101090300")
	require.NoError(t, err)
	require.EqualValues(t, 20250101090300, v)

	for _, bad := range []string{"", "2025", "2025010109030x"} {
		_, err := ParseVersion(bad)
		require.Errorf(t, err, "version %q", bad)
	}
}

func TestNewRunnerRequiresDB(t *testing.T) {
	_, err := NewRunner(nil, DefaultDir)
	require.Error(t, err)
}
