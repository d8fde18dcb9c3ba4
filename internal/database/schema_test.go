package database

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storefront/migrations"
)

// Feature: storefront, Property 40: Pending migrations are executed
// Validates: goose migrations directory
func TestMigrationFilesExist(t *testing.T) {
	migrationsDir := "../../migrations"

	// Check if migrations directory exists
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		t.Fatal("Migrations directory does not exist")
	}

	// Expected migration files
	expectedMigrations := []string{
		"00001_create_categories_table.sql",
		"00002_create_subcategories_table.sql",
		"00003_create_products_table.sql",
		"00004_create_faq_table.sql",
		"00005_create_users_table.sql",
		"00006_create_orders_table.sql",
		"00007_create_order_items_table.sql",
		"00008_create_outbox_table.sql",
		"00009_create_updated_at_trigger.sql",
	}

	for _, migration := range expectedMigrations {
		path := filepath.Join(migrationsDir, migration)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Migration file %s does not exist", migration)
		}
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	migrationsDir := "../../migrations"

	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		sqlFileCount++
		content, err := os.ReadFile(filepath.Join(migrationsDir, file.Name()))
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", file.Name(), err)
			continue
		}

		contentStr := string(content)

		// Check for goose Up directive
		if !strings.Contains(contentStr, "-- +goose Up") {
			t.Errorf("Migration file %s missing '-- +goose Up' directive", file.Name())
		}

		// Check for goose Down directive
		if !strings.Contains(contentStr, "-- +goose Down") {
			t.Errorf("Migration file %s missing '-- +goose Down' directive", file.Name())
		}

		// Check for StatementBegin/End
		if !strings.Contains(contentStr, "-- +goose StatementBegin") {
			t.Errorf("Migration file %s missing '-- +goose StatementBegin' directive", file.Name())
		}

		if !strings.Contains(contentStr, "-- +goose StatementEnd") {
			t.Errorf("Migration file %s missing '-- +goose StatementEnd' directive", file.Name())
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestMigrationFilesCreateExpectedTables(t *testing.T) {
	migrationsDir := "../../migrations"

	expectedTables := map[string]string{
		"categories":    "00001_create_categories_table.sql",
		"subcategories": "00002_create_subcategories_table.sql",
		"products":      "00003_create_products_table.sql",
		"faq":           "00004_create_faq_table.sql",
		"users":         "00005_create_users_table.sql",
		"orders":        "00006_create_orders_table.sql",
		"order_items":   "00007_create_order_items_table.sql",
		"outbox":        "00008_create_outbox_table.sql",
	}

	for tableName, migrationFile := range expectedTables {
		content, err := os.ReadFile(filepath.Join(migrationsDir, migrationFile))
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", migrationFile, err)
			continue
		}

		contentStr := string(content)

		if !strings.Contains(contentStr, "CREATE TABLE IF NOT EXISTS "+tableName+" (") {
			t.Errorf("Migration file %s does not create table %s", migrationFile, tableName)
		}

		if !strings.Contains(contentStr, "DROP TABLE IF EXISTS "+tableName+";") {
			t.Errorf("Migration file %s does not drop table %s in down section", migrationFile, tableName)
		}
	}
}

func TestProductsTableUsesFixedPointPrice(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("../../migrations", "00003_create_products_table.sql"))
	if err != nil {
		t.Fatalf("Failed to read products migration: %v", err)
	}

	contentStr := string(content)
	requiredColumns := []string{
		"id BIGSERIAL PRIMARY KEY",
		"subcategory_id BIGINT",
		"description TEXT",
		"price DECIMAL(10, 2)",
		"image_url VARCHAR",
	}

	for _, column := range requiredColumns {
		if !strings.Contains(contentStr, column) {
			t.Errorf("Products table missing required column definition: %s", column)
		}
	}

	if !strings.Contains(contentStr, "FOREIGN KEY (subcategory_id)") {
		t.Error("Products table missing foreign key constraint to subcategories")
	}
}

func TestOrdersTableHasStatusConstraint(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("../../migrations", "00006_create_orders_table.sql"))
	if err != nil {
		t.Fatalf("Failed to read orders migration: %v", err)
	}

	contentStr := string(content)

	for _, status := range []string{"'pending'", "'paid'", "'failed'"} {
		if !strings.Contains(contentStr, status) {
			t.Errorf("Orders table status constraint missing value: %s", status)
		}
	}

	if !strings.Contains(contentStr, "id UUID PRIMARY KEY") {
		t.Error("Orders table must be keyed by UUID")
	}
}

func TestUsersTableHasUniqueTelegramID(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("../../migrations", "00005_create_users_table.sql"))
	if err != nil {
		t.Fatalf("Failed to read users migration: %v", err)
	}

	if !strings.Contains(string(content), "telegram_id BIGINT UNIQUE NOT NULL") {
		t.Error("Users table missing unique telegram_id column")
	}
}

func TestMigrationsAreEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		t.Fatalf("Failed to read embedded migrations: %v", err)
	}

	onDisk, err := filepath.Glob("../../migrations/*.sql")
	if err != nil {
		t.Fatalf("Failed to glob migrations: %v", err)
	}

	if len(entries) != len(onDisk) {
		t.Errorf("Embedded %d migrations, found %d on disk", len(entries), len(onDisk))
	}
}
