package riskmodel

import (
	"fmt"
	"os"
	"strings"
)

const defaultDriver = "ODBC Driver 18 for SQL Server"

// DBSettings is the database section of the config file. Password may be
// given directly or through the environment variable named by PasswordEnv.
type DBSettings struct {
	Driver                 string `yaml:"driver"`
	Server                 string `yaml:"server"`
	Database               string `yaml:"database"`
	User                   string `yaml:"user"`
	Password               string `yaml:"password"`
	PasswordEnv            string `yaml:"password_env"`
	Encrypt                *bool  `yaml:"encrypt"`
	TrustServerCertificate *bool  `yaml:"trust_server_certificate"`
}

// LoadDBSettings reads and resolves the database section of a config file.
func LoadDBSettings(path string) (*DBSettings, error) {
	fc, err := readConfig(path)
	if err != nil {
		return nil, err
	}
	if fc.Database == nil {
		return nil, fmt.Errorf("missing required database section")
	}
	db := *fc.Database
	if err := db.resolve(os.Getenv); err != nil {
		return nil, err
	}
	return &db, nil
}

func (s *DBSettings) resolve(getenv func(string) string) error {
	if s.Driver == "" {
		s.Driver = defaultDriver
	}
	if s.Password == "" && s.PasswordEnv != "" {
		s.Password = getenv(s.PasswordEnv)
	}
	if s.Server == "" || s.Database == "" || s.User == "" || s.Password == "" {
		return fmt.Errorf("database config incomplete: server, database, user and password (or password_env) are required")
	}
	return nil
}

// ConnectionString renders the ODBC connection string. Encrypt and
// TrustServerCertificate default to yes.
func (s *DBSettings) ConnectionString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "DRIVER={%s};", s.Driver)
	fmt.Fprintf(&b, "SERVER=%s;", s.Server)
	fmt.Fprintf(&b, "DATABASE=%s;", s.Database)
	fmt.Fprintf(&b, "UID=%s;", s.User)
	fmt.Fprintf(&b, "PWD=%s;", s.Password)
	fmt.Fprintf(&b, "Encrypt=%s;", yesNo(s.Encrypt))
	fmt.Fprintf(&b, "TrustServerCertificate=%s;", yesNo(s.TrustServerCertificate))
	return b.String()
}

// RedactedConnectionString is ConnectionString with the password masked,
// for logs.
func (s *DBSettings) RedactedConnectionString() string {
	masked := *s
	masked.Password = "****"
	return masked.ConnectionString()
}

func yesNo(b *bool) string {
	if b == nil || *b {
		return "yes"
	}
	return "no"
}
