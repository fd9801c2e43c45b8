package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/puffbuddy/backend/internal/logger"
	"github.com/puffbuddy/backend/internal/models"
	"github.com/puffbuddy/backend/internal/telemetry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connection
var DB *gorm.DB

// sqliteDriverName is go-sqlite3 with lower() replaced by strings.ToLower.
// The built-in only folds ASCII, which would make LOWER(...) queries disagree
// with terms lowercased in Go.
const sqliteDriverName = "sqlite3_puffbuddy"

func init() {
	sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", sqliteLower, true)
		},
	})
}

// sqliteLower keeps NULL as NULL and leaves numbers alone
func sqliteLower(v interface{}) interface{} {
	switch s := v.(type) {
	case string:
		return strings.ToLower(s)
	case []byte:
		if s == nil {
			return nil
		}
		return strings.ToLower(string(s))
	default:
		return v
	}
}

// Options configures Open
type Options struct {
	Driver  string // "postgres" or "sqlite"
	DSN     string
	Verbose bool
}

// Open connects to the configured database and installs the telemetry plugin
func Open(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case "sqlite":
		dialector = sqlite.New(sqlite.Config{DriverName: sqliteDriverName, DSN: opts.DSN})
	case "postgres", "":
		dialector = postgres.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	logLevel := gormlogger.Warn
	if opts.Verbose {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	system := "postgresql"
	if opts.Driver == "sqlite" {
		system = "sqlite"
	}
	if err := db.Use(telemetry.GORMPlugin(system)); err != nil {
		return nil, fmt.Errorf("failed to install telemetry plugin: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if opts.Driver == "sqlite" {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return db, nil
}

// Initialize opens the database and stores it in DB
func Initialize(opts Options) error {
	db, err := Open(opts)
	if err != nil {
		return err
	}
	DB = db
	logger.Log.Info("Database connected", zap.String("driver", opts.Driver))
	return nil
}

// DSNFromEnv builds a postgres DSN from the DB_* variables when DATABASE_URL is empty
func DSNFromEnv(databaseURL string, lookup func(string) string) string {
	if databaseURL != "" {
		return databaseURL
	}
	get := func(key, def string) string {
		if v := lookup(key); v != "" {
			return v
		}
		return def
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		get("DB_HOST", "localhost"),
		get("DB_PORT", "5432"),
		get("DB_USER", "postgres"),
		get("DB_PASSWORD", ""),
		get("DB_NAME", "puffbuddy"),
		get("DB_SSLMODE", "disable"),
	)
}

// DefaultSQLitePath is used for the sqlite driver when no URL is set
const DefaultSQLitePath = "puffbuddy.db"

// ResolveOptions builds connection options from DATABASE_DRIVER and
// DATABASE_URL, falling back to the DB_* variables for postgres
func ResolveOptions(driver, databaseURL string, lookup func(string) string) Options {
	if driver == "" {
		driver = "postgres"
	}
	if driver == "sqlite" {
		if databaseURL == "" {
			databaseURL = DefaultSQLitePath
		}
		return Options{Driver: driver, DSN: databaseURL}
	}
	return Options{Driver: driver, DSN: DSNFromEnv(databaseURL, lookup)}
}

// Migrate runs auto-migration for all models and creates extra indexes
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	return MigrateDB(DB)
}

// MigrateDB runs migrations against db
func MigrateDB(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	if err := backfillFriendshipPairs(db); err != nil {
		return fmt.Errorf("failed to backfill friendship pairs: %w", err)
	}
	logger.Log.Info("Database migrations completed")
	return nil
}

// DropAll drops every table managed by the service
func DropAll(db *gorm.DB) error {
	all := models.All()
	// children first
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	return nil
}

// TableStatus describes one managed table
type TableStatus struct {
	Table  string
	Exists bool
	Rows   int64
}

// Status reports which managed tables exist and how many rows they hold
func Status(db *gorm.DB) ([]TableStatus, error) {
	all := models.All()
	statuses := make([]TableStatus, 0, len(all))
	for _, model := range all {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("failed to parse %T: %w", model, err)
		}
		status := TableStatus{Table: stmt.Schema.Table}
		if db.Migrator().HasTable(model) {
			status.Exists = true
			if err := db.Table(status.Table).Count(&status.Rows).Error; err != nil {
				return nil, fmt.Errorf("failed to count %s: %w", status.Table, err)
			}
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// createIndexes adds composite indexes GORM tags do not express.
// Statements are portable between Postgres and SQLite.
func createIndexes(db *gorm.DB) error {
	statements := []string{
		"CREATE INDEX IF NOT EXISTS idx_posts_user_created ON posts (user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_comments_post_created ON comments (post_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_friendships_pair ON friendships (requester_id, receiver_id)",
		"CREATE INDEX IF NOT EXISTS idx_friendships_receiver_status ON friendships (receiver_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_messages_conversation_created ON messages (conversation_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_strain_reviews_strain_created ON strain_reviews (strain_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_profiles_display_name_lower ON profiles (LOWER(display_name))",
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}

// backfillFriendshipPairs fills pair_key on rows created before the column existed
func backfillFriendshipPairs(db *gorm.DB) error {
	return db.Exec(`UPDATE friendships SET pair_key = CASE
		WHEN requester_id < receiver_id THEN requester_id || ':' || receiver_id
		ELSE receiver_id || ':' || requester_id END
		WHERE pair_key IS NULL OR pair_key = ''`).Error
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health checks database connectivity
func Health() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// OpenTest opens an isolated, migrated in-memory SQLite database
func OpenTest() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=off", uuid.New().String())
	db, err := Open(Options{Driver: "sqlite", DSN: dsn})
	if err != nil {
		return nil, err
	}
	db.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	if err := MigrateDB(db); err != nil {
		return nil, err
	}
	return db, nil
}
