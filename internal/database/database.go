package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/necatisahhin/zeroAiBackend/internal/config"
	"github.com/necatisahhin/zeroAiBackend/internal/database/migrations"
	"github.com/necatisahhin/zeroAiBackend/internal/models"
)

// DB bundles the GORM handle with the driver resources it was built on.
type DB struct {
	Gorm   *gorm.DB
	sql    *sql.DB
	pool   *pgxpool.Pool
	driver string
	log    zerolog.Logger
}

func Open(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*DB, error) {
	gormConfig := &gorm.Config{
		Logger: NewGormLogger(log),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db := &DB{driver: cfg.Driver, log: log}

	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := NewPostgresPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		db.pool = pool
		db.sql = stdlib.OpenDBFromPool(pool)

		gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db.sql}), gormConfig)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("open gorm postgres: %w", err)
		}
		db.Gorm = gdb

	case config.DriverSQLite:
		gdb, err := gorm.Open(sqlite.Open(cfg.DSN), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("open gorm sqlite: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite handle: %w", err)
		}
		// sqlite serializes writers; a single connection also keeps :memory:
		// databases alive and shared.
		sqlDB.SetMaxOpenConns(1)
		db.Gorm = gdb
		db.sql = sqlDB

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	return db, nil
}

// Migrate brings the schema up to date. Postgres runs the versioned SQL
// migrations; sqlite is migrated from the models.
func (d *DB) Migrate(ctx context.Context) error {
	switch d.driver {
	case config.DriverPostgres:
		goose.SetBaseFS(migrations.FS)
		if err := goose.SetDialect("pgx"); err != nil {
			return fmt.Errorf("goose dialect: %w", err)
		}
		if err := goose.UpContext(ctx, d.sql, "."); err != nil {
			return fmt.Errorf("goose up: %w", err)
		}
		return nil
	default:
		return AutoMigrate(d.Gorm.WithContext(ctx))
	}
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Restaurant{}, &models.RefreshToken{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

func (d *DB) Close() error {
	err := d.sql.Close()
	if d.pool != nil {
		d.pool.Close()
	}
	return err
}
