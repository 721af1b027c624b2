package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

func New(databaseURL string) (*Database, error) {
	var db *gorm.DB
	var err error

	if strings.HasPrefix(databaseURL, "sqlite://") {
		// SQLite for development
		dbPath := strings.TrimPrefix(databaseURL, "sqlite://")
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	} else {
		// PostgreSQL for production
		db, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Create tables manually with raw SQL
	createTablesSQL := `
	CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		sku TEXT UNIQUE NOT NULL,
		ean TEXT,
		name TEXT NOT NULL,
		description TEXT,
		brand TEXT,
		active BOOLEAN DEFAULT true,
		price_net DECIMAL(10,2),
		price_gross DECIMAL(10,2),
		weight DECIMAL(10,3),
		width DECIMAL(10,3),
		height DECIMAL(10,3),
		depth DECIMAL(10,3),
		category_ids TEXT,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS product_shop_overrides (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		product_id UUID NOT NULL,
		shop_id UUID NOT NULL,
		name TEXT,
		description TEXT,
		category_ids TEXT,
		UNIQUE (product_id, shop_id)
	);

	CREATE TABLE IF NOT EXISTS product_prices (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		product_id UUID NOT NULL,
		price_group TEXT NOT NULL,
		net DECIMAL(10,2),
		gross DECIMAL(10,2),
		UNIQUE (product_id, price_group)
	);

	CREATE TABLE IF NOT EXISTS warehouse_stocks (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		product_id UUID NOT NULL,
		warehouse_id TEXT NOT NULL,
		quantity INTEGER DEFAULT 0,
		shop_ids TEXT,
		UNIQUE (product_id, warehouse_id)
	);

	CREATE TABLE IF NOT EXISTS product_images (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		product_id UUID NOT NULL,
		url TEXT NOT NULL,
		position INTEGER DEFAULT 0,
		cover BOOLEAN DEFAULT false
	);

	CREATE TABLE IF NOT EXISTS product_features (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		product_id UUID NOT NULL,
		name TEXT NOT NULL,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS vehicle_compatibilities (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		product_id UUID NOT NULL,
		make TEXT NOT NULL,
		model TEXT NOT NULL,
		year_from INTEGER,
		year_to INTEGER,
		engine_code TEXT
	);

	CREATE TABLE IF NOT EXISTS product_variants (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		product_id UUID NOT NULL,
		sku TEXT UNIQUE NOT NULL,
		attributes TEXT,
		price_delta DECIMAL(10,2) DEFAULT 0,
		quantity INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS categories (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		description TEXT,
		parent_id UUID,
		active BOOLEAN DEFAULT true,
		position INTEGER DEFAULT 0,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS shops (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		url TEXT NOT NULL,
		api_key TEXT NOT NULL,
		api_version TEXT DEFAULT '1.7',
		active BOOLEAN DEFAULT true,
		languages TEXT,
		root_category_remote_id INTEGER DEFAULT 2,
		last_sync TIMESTAMPTZ,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS sync_states (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		entity_type TEXT NOT NULL,
		entity_id UUID NOT NULL,
		shop_id UUID NOT NULL,
		status TEXT DEFAULT 'PENDING',
		remote_id INTEGER,
		checksum TEXT,
		snapshot TEXT,
		retry_count INTEGER DEFAULT 0,
		last_error TEXT,
		last_sync_at TIMESTAMPTZ,
		last_success_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW(),
		UNIQUE (entity_type, entity_id, shop_id)
	);

	CREATE TABLE IF NOT EXISTS identifier_mappings (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		shop_id UUID NOT NULL,
		entity_type TEXT NOT NULL,
		local_id TEXT NOT NULL,
		remote_id INTEGER NOT NULL,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW(),
		UNIQUE (shop_id, entity_type, local_id)
	);

	CREATE TABLE IF NOT EXISTS sync_log_entries (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		shop_id UUID NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		operation TEXT NOT NULL,
		direction TEXT DEFAULT 'PUSH',
		status TEXT NOT NULL,
		message TEXT,
		duration_ms BIGINT DEFAULT 0,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);
	`

	err = db.Exec(createTablesSQL).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
