package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"journal-api/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string
	LogLevel logger.LogLevel
}

func LoadDatabaseConfig() DatabaseConfig {
	cfg := DatabaseConfig{
		Driver:   strings.ToLower(os.Getenv("DB_DRIVER")),
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
		SSLMode:  os.Getenv("DB_SSLMODE"),
		Path:     os.Getenv("DB_PATH"),
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverPostgres
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if cfg.Path == "" {
		cfg.Path = "journal.db"
	}

	// In production SQL logs are suppressed unless DEBUG_SQL=true.
	cfg.LogLevel = logger.Info
	environment := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if environment == "production" && strings.ToLower(os.Getenv("DEBUG_SQL")) != "true" {
		cfg.LogLevel = logger.Warn
	}
	return cfg
}

func (cfg DatabaseConfig) dialector() (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverPostgres:
		port := cfg.Port
		if port == "" {
			port = "5432"
		}
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
		return postgres.Open(dsn), nil
	case DriverMySQL:
		port := cfg.Port
		if port == "" {
			port = "3306"
		}
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.User, cfg.Password, cfg.Host, port, cfg.Name)
		return mysql.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(cfg.Path), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

// OpenDatabase connects with duplicate-key errors translated to
// gorm.ErrDuplicatedKey, which the issue allocator depends on.
func OpenDatabase(cfg DatabaseConfig) (*gorm.DB, error) {
	dialector, err := cfg.dialector()
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if level == 0 {
		level = logger.Warn
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: logger.New(
			log.New(LogWriter, "\r\n", log.LstdFlags),
			logger.Config{LogLevel: level, IgnoreRecordNotFoundError: true},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == DriverSQLite {
		// One connection keeps an in-memory database alive and serializes writers.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func InitDB() *gorm.DB {
	cfg := LoadDatabaseConfig()
	db, err := OpenDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	log.Printf("Database connected successfully (%s)", cfg.Driver)
	return db
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.PasswordReset{},
		&models.Article{},
		&models.ReviewerAssignment{},
		&models.Issue{},
		&models.IssueCounter{},
		&models.Notification{},
		&models.NotificationRead{},
	)
}
