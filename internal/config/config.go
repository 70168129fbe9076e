package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/civiltime"
)

// RosterTemplate defines a recurring shift pattern the generate-shifts
// command expands into concrete shifts.
type RosterTemplate struct {
	ShiftType string `yaml:"shiftType" validate:"required"`
	Location  string `yaml:"location" validate:"required"`
	RRule     string `yaml:"rrule" validate:"required"`
	StartTime string `yaml:"startTime" validate:"required"`
	EndTime   string `yaml:"endTime" validate:"required"`
	Capacity  int    `yaml:"capacity" validate:"required,min=1"`
}

// CalendarConfig points roster publishing at a Google Calendar.
type CalendarConfig struct {
	CalendarID      string `yaml:"calendarID" validate:"required"`
	OAuthClientPath string `yaml:"oauthClientPath,omitempty"`
	TokenPath       string `yaml:"tokenPath,omitempty"`
}

// Config represents the application configuration
type Config struct {
	ListenAddr               string           `yaml:"listenAddr,omitempty"`
	Timezone                 string           `yaml:"timezone,omitempty"`
	NoShowGraceHours         int              `yaml:"noShowGraceHours,omitempty" validate:"omitempty,min=1"`
	SchedulerIntervalMinutes int              `yaml:"schedulerIntervalMinutes,omitempty" validate:"omitempty,min=1"`
	SurveyTokenTTLDays       int              `yaml:"surveyTokenTTLDays,omitempty" validate:"omitempty,min=1"`
	MealsPerShiftEstimate    int              `yaml:"mealsPerShiftEstimate,omitempty" validate:"omitempty,min=1"`
	RosterTemplates          []RosterTemplate `yaml:"rosterTemplates,omitempty" validate:"dive"`
	Calendar                 *CalendarConfig  `yaml:"calendar,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from volunteer_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = civiltime.DefaultTimezone
	}
}

// Validate validates the configuration struct, the timezone, and the rrule
// and clock-time syntax of every roster template.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	for i, tmpl := range cfg.RosterTemplates {
		if _, err := rrule.StrToRRule(tmpl.RRule); err != nil {
			return fmt.Errorf("invalid rrule in rosterTemplates[%d]: %w", i, err)
		}
		if _, err := time.Parse("15:04", tmpl.StartTime); err != nil {
			return fmt.Errorf("invalid startTime in rosterTemplates[%d]: %w", i, err)
		}
		if _, err := time.Parse("15:04", tmpl.EndTime); err != nil {
			return fmt.Errorf("invalid endTime in rosterTemplates[%d]: %w", i, err)
		}
	}

	return nil
}

// SchedulerInterval converts the configured minutes to a duration. Zero means
// the scheduler's own default.
func (c *Config) SchedulerInterval() time.Duration {
	return time.Duration(c.SchedulerIntervalMinutes) * time.Minute
}

// NoShowGrace converts the configured hours to a duration. Zero means the
// scheduler's own default.
func (c *Config) NoShowGrace() time.Duration {
	return time.Duration(c.NoShowGraceHours) * time.Hour
}

// SurveyTokenTTL converts the configured days to a duration. Zero means the
// survey engine's own default.
func (c *Config) SurveyTokenTTL() time.Duration {
	return time.Duration(c.SurveyTokenTTLDays) * 24 * time.Hour
}

// DatabaseURL resolves the Postgres connection string from the environment.
// A .env file in the working directory is loaded first when present, so
// local setups can keep credentials out of the yaml config.
func DatabaseURL() (string, error) {
	_ = godotenv.Load()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return "", fmt.Errorf("DATABASE_URL is not set")
	}
	return url, nil
}

// findConfigFile searches for volunteer_config.yaml in current directory and home directory
func findConfigFile() (string, error) {
	configFileName := "volunteer_config.yaml"

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
