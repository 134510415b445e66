package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// DBParams are the source database connection settings.
type DBParams struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// ParseDBParams reads a "key=value,key=value" string. Recognised keys are
// host, port, user, password and database (alias db). The port must be an
// integer.
func ParseDBParams(s string) (DBParams, error) {
	p := DBParams{Host: "localhost", Port: 3306}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return DBParams{}, fmt.Errorf("invalid DB_PARAMS entry %q: expected key=value", pair)
		}
		switch strings.TrimSpace(key) {
		case "host":
			p.Host = value
		case "port":
			port, err := strconv.Atoi(value)
			if err != nil {
				return DBParams{}, fmt.Errorf("invalid DB_PARAMS port %q: %w", value, err)
			}
			p.Port = port
		case "user":
			p.User = value
		case "password", "passwd":
			p.Password = value
		case "database", "db":
			p.Database = value
		default:
			return DBParams{}, fmt.Errorf("unknown DB_PARAMS key %q", key)
		}
	}
	if p.Database == "" {
		return DBParams{}, fmt.Errorf("DB_PARAMS database is required")
	}
	return p, nil
}

// DSN formats the parameters as a MySQL data source name. The character set
// is fixed to utf8 and DATETIME columns are read as UTC time.Time values.
func (p DBParams) DSN() string {
	c := mysql.NewConfig()
	c.User = p.User
	c.Passwd = p.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
	c.DBName = p.Database
	c.ParseTime = true
	c.Loc = time.UTC
	c.Params = map[string]string{"charset": "utf8"}
	return c.FormatDSN()
}

// String is the DSN with the password masked, for logging.
func (p DBParams) String() string {
	masked := p
	if masked.Password != "" {
		masked.Password = "****"
	}
	return masked.DSN()
}
