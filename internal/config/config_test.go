package config

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "DB_DRIVER", "REDIS_ADDR", "INTEREST_DAY_BASIS", "DEFAULT_INTEREST_RATE", "BATCH_TIMEOUT_SECONDS"} {
		t.Setenv(k, "")
	}
	c := Load()
	if c.AppPort != "8080" || c.DBDriver != DriverMySQL || c.RedisAddr != "" {
		t.Fatalf("defaults = %+v", c)
	}
	if c.InterestDayBasis != 360 || !c.DefaultInterestRate.Equal(decimal.RequireFromString("0.145")) {
		t.Fatalf("interest defaults = %d %s", c.InterestDayBasis, c.DefaultInterestRate)
	}
	if c.BatchTimeout().Minutes() != 10 || c.IdempotencyTTL().Seconds() != 300 {
		t.Fatalf("durations = %v %v", c.BatchTimeout(), c.IdempotencyTTL())
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("INTEREST_DAY_BASIS", "365")
	t.Setenv("DEFAULT_INTEREST_RATE", "0.12")
	t.Setenv("REDIS_DB", "not-a-number")

	c := Load()
	if c.DBDriver != DriverSQLite || c.SQLitePath != "/tmp/x.db" || c.InterestDayBasis != 365 {
		t.Fatalf("overrides = %+v", c)
	}
	if c.DefaultInterestRate.String() != "0.12" || c.RedisDB != 0 {
		t.Fatalf("rate=%s redisDB=%d", c.DefaultInterestRate, c.RedisDB)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"missing port", func(c *Config) { c.AppPort = "" }, "APP_PORT"},
		{"missing mysql host", func(c *Config) { c.MySQLHost = "" }, "MySQL"},
		{"bad mysql port", func(c *Config) { c.MySQLPort = "http-nope" }, "MYSQL_PORT"},
		{"sqlite ignores mysql", func(c *Config) { c.DBDriver = DriverSQLite; c.MySQLHost = "" }, ""},
		{"unknown driver", func(c *Config) { c.DBDriver = "postgres" }, "DB_DRIVER"},
		{"day basis", func(c *Config) { c.InterestDayBasis = 300 }, "INTEREST_DAY_BASIS"},
		{"rate above one", func(c *Config) { c.DefaultInterestRate = decimal.RequireFromString("14.5") }, "DEFAULT_INTEREST_RATE"},
		{"batch timeout", func(c *Config) { c.BatchTimeoutSecs = 0 }, "BATCH_TIMEOUT_SECONDS"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := Load()
			tc.mutate(c)
			err := c.Validate()
			if tc.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want mention of %s", err, tc.want)
			}
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	c := &Config{MySQLUser: "u", MySQLPass: "p", MySQLHost: "db", MySQLPort: "3307", MySQLDB: "ledger"}
	want := "u:p@tcp(db:3307)/ledger?multiStatements=true&parseTime=true&charset=utf8mb4,utf8"
	if got := c.MySQLDSN(); got != want {
		t.Fatalf("dsn = %q", got)
	}
}
