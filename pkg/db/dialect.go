package db

import (
	"fmt"
	"strings"

	"github.com/smallbiznis/clinicops/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const defaultDialect = "postgres"

// Dialect picks the gorm driver for cfg.DBType, case-insensitively. An empty
// type means postgres, the production store; mysql and sqlite are for local
// runs. Every dialect is pinned to UTC session time.
func Dialect(cfg config.Config) (gorm.Dialector, error) {
	kind := strings.ToLower(strings.TrimSpace(cfg.DBType))
	if kind == "" {
		kind = defaultDialect
	}

	switch kind {
	case "postgres":
		return postgres.Open(postgresDSN(cfg)), nil
	case "mysql":
		return mysql.Open(mysqlDSN(cfg)), nil
	case "sqlite":
		// sqlite keeps timestamps as text; invoices normalize created_at to
		// UTC before save so window bounds compare correctly.
		return sqlite.Open(sqliteFile(cfg.DBName)), nil
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.DBType)
	}
}

func postgresDSN(cfg config.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
}

func mysqlDSN(cfg config.Config) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
}

func sqliteFile(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "clinicops"
	}
	if strings.HasSuffix(name, ".db") {
		return name
	}
	return name + ".db"
}
