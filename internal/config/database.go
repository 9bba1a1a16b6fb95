// internal/config/database.go
package config

import (
	"fmt"
)

// applicationName tags our sessions in pg_stat_activity.
const applicationName = "sneakers-backend"

// DSN builds a libpq keyword string. Sessions run in UTC so order and
// dashboard month boundaries do not depend on the server's zone.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC application_name=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode, applicationName,
	)
}

// Redacted describes the target without credentials, for logs.
func (d *DatabaseConfig) Redacted() string {
	return fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=%s", d.User, d.Host, d.Port, d.Database, d.SSLMode)
}
