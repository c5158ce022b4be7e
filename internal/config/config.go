package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	AppPort string
	AppEnv  string

	DBDriver string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	PostgresDSN string
	SQLitePath  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	JWTTTL    time.Duration

	IdempTTLSecs       int
	NotificationStream string
	CORSOrigins        []string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("config: ignoring non-numeric %s=%q", k, v)
	}
	return d
}

// Load reads the environment, after merging a .env file from the working
// directory if one exists. Variables already set win over the file.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: .env not loaded: %v", err)
	}

	c := &Config{
		AppPort:  getenv("APP_PORT", "8080"),
		AppEnv:   getenv("APP_ENV", "development"),
		DBDriver: getenv("DB_DRIVER", DriverMySQL),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "loansyncro"),
		MySQLUser: getenv("MYSQL_USER", "loansyncro"),
		MySQLPass: getenv("MYSQL_PASS", "loansyncro"),

		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		SQLitePath:  getenv("SQLITE_PATH", "loansyncro.db"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getint("REDIS_DB", 0),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    time.Duration(getint("JWT_TTL_MINUTES", 30)) * time.Minute,

		IdempTTLSecs:       getint("IDEMPOTENCY_TTL_SECONDS", 300),
		NotificationStream: getenv("NOTIFICATION_STREAM", "loansyncro.notifications"),
		CORSOrigins:        []string{getenv("CORS_ORIGIN", "*")},
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
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("missing POSTGRES_DSN")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if len(c.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be set (at least 16 bytes)")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL_MINUTES must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case DriverPostgres:
		return c.PostgresDSN
	case DriverSQLite:
		return c.SQLitePath
	default:
		return c.MySQLDSN()
	}
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
