package postgres

import (
	"fmt"
	. "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
	Schema   string `json:"schema"`
	SSLMode  string `json:"ssl_mode"`

	// reported to the server as application_name
	ApplicationName string `json:"application_name"`

	MaxConns          int32         `json:"max_conns"`
	MinConns          int32         `json:"min_conns"`
	MaxConnLifetime   time.Duration `json:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `json:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `json:"health_check_period"`
	ConnectTimeout    time.Duration `json:"connect_timeout"`
	AcquireTimeout    time.Duration `json:"acquire_timeout"`
}

// DSN renders the config as a libpq keyword/value connection string.
func (c *Config) DSN() string {
	params := [][2]string{
		{"host", c.Host},
		{"port", strconv.Itoa(c.Port)},
		{"user", c.Username},
		{"password", c.Password},
		{"dbname", c.Database},
		{"sslmode", c.SSLMode},
	}

	// public is already on the default search_path
	if c.Schema != "" && c.Schema != "public" {
		params = append(params, [2]string{"search_path", c.Schema})
	}
	if c.ApplicationName != "" {
		params = append(params, [2]string{"application_name", c.ApplicationName})
	}
	if c.ConnectTimeout > 0 {
		params = append(params, [2]string{"connect_timeout", strconv.Itoa(int(c.ConnectTimeout.Seconds()))})
	}

	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p[0]+"="+quoteDSNValue(p[1]))
	}
	return strings.Join(parts, " ")
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// quoteDSNValue single-quotes values that are empty or contain a space,
// quote or backslash.
func quoteDSNValue(value string) string {
	if value != "" && !strings.ContainsAny(value, ` '\`) {
		return value
	}
	return "'" + dsnEscaper.Replace(value) + "'"
}

func (c *Config) Validate() error {
	return ValidateStruct(c,
		Field(&c.Host, Required, is.Host),
		Field(&c.Port, Required, Min(1), Max(65535)),
		Field(&c.Username, Required, Length(1, 63)),
		Field(&c.Password, Required, Length(0, 1000)),
		Field(&c.Schema, Length(0, 63)),
		Field(&c.ApplicationName, Length(0, 63)),
		Field(&c.Database, Required, Length(1, 63)),
		Field(&c.SSLMode, Required, In("disable", "allow", "prefer", "require", "verify-ca", "verify-full")),

		Field(&c.MaxConns, Required, Min(int32(1)), Max(int32(1000))),
		Field(&c.MinConns, Required, Min(int32(1)), By(c.validateMinConns)),
		Field(&c.MaxConnLifetime, Required, Min(time.Minute), Max(24*time.Hour)),
		Field(&c.MaxConnIdleTime, Required, Min(time.Second), Max(time.Hour)),
		Field(&c.HealthCheckPeriod, Required, Min(10*time.Second), Max(10*time.Minute)),
		Field(&c.ConnectTimeout, Min(time.Duration(0)), Max(time.Minute)),
		Field(&c.AcquireTimeout, Min(time.Duration(0)), Max(time.Minute)),
	)
}

func (c *Config) validateMinConns(value interface{}) error {
	minConns, ok := value.(int32)
	if !ok {
		return fmt.Errorf("min_conns must be an int32")
	}

	if minConns > c.MaxConns {
		return fmt.Errorf("min_conns (%d) cannot be greater than max_conns (%d)", minConns, c.MaxConns)
	}
	return nil
}
