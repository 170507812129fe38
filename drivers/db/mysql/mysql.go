package mysql

import (
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/juju/errors"

	"ddlkit"
)

const (
	DriverName = "mysql"

	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 10
	defaultConnMaxLifetime = time.Hour
)

// Compile-time check that the returned handle can drive migrations.
var _ ddlkit.DBAdapter = (*sqlx.DB)(nil)

// Config describes a MySQL server connection.
type Config struct {
	User      string
	Password  string
	Addr      string // host:port, defaults to 127.0.0.1:3306
	DBName    string
	Collation string
	Params    map[string]string
}

// DSN formats cfg as a go-sql-driver/mysql data source name.
func DSN(cfg Config) string {
	c := gomysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = cfg.Addr
	if c.Addr == "" {
		c.Addr = "127.0.0.1:3306"
	}
	c.DBName = cfg.DBName
	c.Collation = cfg.Collation
	c.ParseTime = true
	c.Params = cfg.Params
	return c.FormatDSN()
}

// Open connects to MySQL and applies the default pool settings.
func Open(dsn string) (*sqlx.DB, error) {
	if _, err := gomysql.ParseDSN(dsn); err != nil {
		return nil, errors.NewNotValid(err, "mysql dsn")
	}
	db, err := sqlx.Connect(DriverName, dsn)
	if err != nil {
		return nil, errors.Annotate(err, "failed to connect to mysql")
	}
	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	return db, nil
}
