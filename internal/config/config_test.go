package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "")
	t.Setenv("JWT_TTL_MINUTES", "")

	c := Load()
	if c.AppPort != "8080" {
		t.Fatalf("AppPort = %q, want 8080", c.AppPort)
	}
	if c.DBDriver != DriverMySQL {
		t.Fatalf("DBDriver = %q, want mysql", c.DBDriver)
	}
	if c.IdempotencyTTL() != 300*time.Second {
		t.Fatalf("IdempotencyTTL = %v", c.IdempotencyTTL())
	}
	if c.JWTTTL != 30*time.Minute {
		t.Fatalf("JWTTTL = %v", c.JWTTTL)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "60")
	t.Setenv("JWT_TTL_MINUTES", "not-a-number")

	c := Load()
	if c.DSN() != "/tmp/x.db" {
		t.Fatalf("DSN = %q", c.DSN())
	}
	if c.RedisDB != 3 {
		t.Fatalf("RedisDB = %d, want 3", c.RedisDB)
	}
	if c.IdempTTLSecs != 60 {
		t.Fatalf("IdempTTLSecs = %d, want 60", c.IdempTTLSecs)
	}
	// garbage falls back to the default
	if c.JWTTTL != 30*time.Minute {
		t.Fatalf("JWTTTL = %v", c.JWTTTL)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			AppPort: "8080", DBDriver: DriverMySQL,
			MySQLHost: "db", MySQLPort: "3306", MySQLDB: "loansyncro", MySQLUser: "u",
			JWTSecret: strings.Repeat("s", 32), JWTTTL: time.Minute,
		}
	}
	if err := base().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	for name, mutate := range map[string]func(c *Config){
		"no port":         func(c *Config) { c.AppPort = "" },
		"bad driver":      func(c *Config) { c.DBDriver = "oracle" },
		"no mysql host":   func(c *Config) { c.MySQLHost = "" },
		"bad mysql port":  func(c *Config) { c.MySQLPort = "notaport" },
		"postgres no dsn": func(c *Config) { c.DBDriver = DriverPostgres },
		"short secret":    func(c *Config) { c.JWTSecret = "short" },
		"zero ttl":        func(c *Config) { c.JWTTTL = 0 },
	} {
		c := base()
		mutate(c)
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestMySQLDSN(t *testing.T) {
	c := &Config{MySQLUser: "u", MySQLPass: "p", MySQLHost: "h", MySQLPort: "3306", MySQLDB: "d"}
	dsn := c.MySQLDSN()
	if !strings.HasPrefix(dsn, "u:p@tcp(h:3306)/d?") || !strings.Contains(dsn, "parseTime=true") {
		t.Fatalf("unexpected dsn %q", dsn)
	}
	if c.DSN() != dsn {
		t.Fatalf("DSN() should default to mysql")
	}
}
