// Package config loads the service configuration and the employee
// roster from a YAML file with environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/example/agency-crm/internal/application"
)

// envPrefix namespaces the override variables, e.g. CRM_HTTP_PORT.
const envPrefix = "crm"

// RosterAccount is one configured login account. Either Password or
// PasswordHash must be set; the hash wins when both are.
type RosterAccount struct {
	ID           string `yaml:"id"`
	FullName     string `yaml:"full_name"`
	Role         string `yaml:"role"`
	Password     string `yaml:"password"`
	PasswordHash string `yaml:"password_hash"`
}

// Config captures the service settings. YAML supplies the base values
// and CRM_-prefixed environment variables override scalar fields.
type Config struct {
	HTTPPort   int           `yaml:"http_port" envconfig:"HTTP_PORT"`
	SQLiteDSN  string        `yaml:"sqlite_dsn" envconfig:"SQLITE_DSN"`
	SessionTTL time.Duration `yaml:"session_ttl" envconfig:"SESSION_TTL"`
	// ReminderWindow bounds how far ahead a next-contact reminder fires.
	ReminderWindow time.Duration   `yaml:"reminder_window" envconfig:"REMINDER_WINDOW"`
	Roster         []RosterAccount `yaml:"roster" ignored:"true"`
}

// Default returns the built-in configuration. The roster stays empty;
// accounts must come from the file.
func Default() Config {
	return Config{
		HTTPPort:       8080,
		SQLiteDSN:      "file:agencycrm.db?_foreign_keys=on",
		SessionTTL:     24 * time.Hour,
		ReminderWindow: 5 * time.Minute,
	}
}

// Load reads the YAML file at path, applies environment overrides, and
// validates the result. An empty path skips the file and relies on the
// environment alone.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("не удалось разобрать файл конфигурации %s: %w", path, err)
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("не удалось прочитать переменные окружения: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	invalid := make([]string, 0, 2)

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		invalid = append(invalid, "http_port")
	}
	if strings.TrimSpace(c.SQLiteDSN) == "" {
		invalid = append(invalid, "sqlite_dsn")
	}
	if c.SessionTTL <= 0 {
		invalid = append(invalid, "session_ttl")
	}
	if c.ReminderWindow <= 0 {
		invalid = append(invalid, "reminder_window")
	}
	if len(invalid) > 0 {
		return fmt.Errorf("недопустимые значения конфигурации: %s", strings.Join(invalid, ", "))
	}

	if len(c.Roster) == 0 {
		return fmt.Errorf("в конфигурации не задано ни одной учётной записи")
	}

	owners := 0
	seenIDs := make(map[string]struct{}, len(c.Roster))
	seenNames := make(map[string]struct{}, len(c.Roster))
	for i, account := range c.Roster {
		label := fmt.Sprintf("roster[%d]", i)
		switch {
		case strings.TrimSpace(account.ID) == "":
			return fmt.Errorf("%s: не указан идентификатор учётной записи", label)
		case strings.TrimSpace(account.FullName) == "":
			return fmt.Errorf("%s: не указано ФИО", label)
		case account.Role != string(application.RoleOwner) && account.Role != string(application.RoleEmployee):
			return fmt.Errorf("%s: недопустимая роль %q", label, account.Role)
		case account.Password == "" && account.PasswordHash == "":
			return fmt.Errorf("%s: не задан пароль", label)
		}

		if _, dup := seenIDs[account.ID]; dup {
			return fmt.Errorf("%s: повторяющийся идентификатор %q", label, account.ID)
		}
		seenIDs[account.ID] = struct{}{}

		name := strings.TrimSpace(account.FullName)
		if _, dup := seenNames[name]; dup {
			return fmt.Errorf("%s: повторяющееся ФИО %q", label, name)
		}
		seenNames[name] = struct{}{}

		if account.Role == string(application.RoleOwner) {
			owners++
		}
	}
	if owners != 1 {
		return fmt.Errorf("в реестре должна быть ровно одна учётная запись владельца, найдено %d", owners)
	}

	return nil
}

// RosterEntries converts the configured accounts into the application
// roster form.
func (c Config) RosterEntries() []application.RosterEntry {
	entries := make([]application.RosterEntry, 0, len(c.Roster))
	for _, account := range c.Roster {
		entries = append(entries, application.RosterEntry{
			Profile: application.Profile{
				ID:       strings.TrimSpace(account.ID),
				FullName: strings.TrimSpace(account.FullName),
				Role:     application.Role(account.Role),
			},
			Password:     account.Password,
			PasswordHash: account.PasswordHash,
		})
	}
	return entries
}
