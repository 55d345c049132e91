package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type Config struct {
	AppPort string

	DBDriver   string
	DBLogLevel string
	SQLitePath string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	InterestDayBasis    int
	DefaultInterestRate decimal.Decimal
	BatchTimeoutSecs    int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func Load() *Config {
	c := &Config{
		AppPort:    getenv("APP_PORT", "8080"),
		DBDriver:   getenv("DB_DRIVER", DriverMySQL),
		DBLogLevel: getenv("DB_LOG_LEVEL", "warn"),
		SQLitePath: getenv("SQLITE_PATH", "backoffice.db"),
		MySQLHost:  getenv("MYSQL_HOST", "mysql"),
		MySQLPort:  getenv("MYSQL_PORT", "3306"),
		MySQLDB:    getenv("MYSQL_DB", "backoffice"),
		MySQLUser:  getenv("MYSQL_USER", "backoffice"),
		MySQLPass:  getenv("MYSQL_PASS", "backoffice"),

		// empty disables redis: no idempotency replay, no cross-process batch lock
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RedisDB:      getenvInt("REDIS_DB", 0),
		IdempTTLSecs: getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),

		InterestDayBasis:    getenvInt("INTEREST_DAY_BASIS", 360),
		DefaultInterestRate: decimal.RequireFromString("0.145"),
		BatchTimeoutSecs:    getenvInt("BATCH_TIMEOUT_SECONDS", 600),
	}
	if v := os.Getenv("DEFAULT_INTEREST_RATE"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			c.DefaultInterestRate = d
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case DriverMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want mysql or sqlite)", c.DBDriver)
	}
	if c.InterestDayBasis != 360 && c.InterestDayBasis != 365 {
		return fmt.Errorf("INTEREST_DAY_BASIS must be 360 or 365, got %d", c.InterestDayBasis)
	}
	if c.DefaultInterestRate.IsNegative() || c.DefaultInterestRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("DEFAULT_INTEREST_RATE must be within [0, 1], got %s", c.DefaultInterestRate)
	}
	if c.BatchTimeoutSecs <= 0 {
		return errors.New("BATCH_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) BatchTimeout() time.Duration { return time.Duration(c.BatchTimeoutSecs) * time.Second }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
