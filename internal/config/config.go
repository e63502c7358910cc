package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"rekindle/internal/schedule"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "rekindle.db"
	DefaultLogName        = "rekindle.log"
	DefaultExportName     = "rekindle.ics"

	EnvConfigPath = "REKINDLE_CONFIG"
	EnvDBPath     = "REKINDLE_DB_PATH"
	EnvLogLevel   = "REKINDLE_LOG_LEVEL"
)

type Keymap struct {
	Quit      string `toml:"quit"`
	Add       string `toml:"add"`
	Edit      string `toml:"edit"`
	Left      string `toml:"left"`
	Right     string `toml:"right"`
	Up        string `toml:"up"`
	Down      string `toml:"down"`
	PrevMonth string `toml:"prev_month"`
	NextMonth string `toml:"next_month"`
	Today     string `toml:"today"`
	NextTask  string `toml:"next_task"`
	PrevTask  string `toml:"prev_task"`
	Toggle    string `toml:"toggle"`
	Delete    string `toml:"delete"`
	Search    string `toml:"search"`
	Export    string `toml:"export"`
	Confirm   string `toml:"confirm"`
	Cancel    string `toml:"cancel"`
}

type Horizon struct {
	DailyDays     int `toml:"daily_days"`
	WeeklyWeeks   int `toml:"weekly_weeks"`
	MonthlyMonths int `toml:"monthly_months"`
}

func (h Horizon) Schedule() schedule.Horizon {
	return schedule.Horizon{
		DailyDays:     h.DailyDays,
		WeeklyWeeks:   h.WeeklyWeeks,
		MonthlyMonths: h.MonthlyMonths,
	}
}

type Config struct {
	DBPath     string  `toml:"db_path"`
	LogPath    string  `toml:"log_path"`
	LogLevel   string  `toml:"log_level"`
	ExportPath string  `toml:"export_path"`
	AddedBy    string  `toml:"added_by"`
	Horizon    Horizon `toml:"horizon"`
	Keys       Keymap  `toml:"keys"`
}

// ResolveConfigPath prefers $REKINDLE_CONFIG, then the user config dir,
// then the working directory.
func ResolveConfigPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, "rekindle", DefaultConfigFileName)
}

// LoadEnv reads a .env file from the working directory if there is one.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// LoadOrCreate reads the config at path, writing the defaults there first
// when the file does not exist. Relative data paths are resolved against the
// config file's directory, and environment overrides are applied last.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return finalize(path, cfg), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return finalize(path, cfg), nil
}

func finalize(path string, cfg Config) Config {
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBName
	}
	if cfg.LogPath == "" {
		cfg.LogPath = DefaultLogName
	}
	if cfg.ExportPath == "" {
		cfg.ExportPath = DefaultExportName
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if v := strings.TrimSpace(os.Getenv(EnvDBPath)); v != "" {
		cfg.DBPath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}

	base := filepath.Dir(path)
	cfg.DBPath = relativeTo(base, cfg.DBPath)
	cfg.LogPath = relativeTo(base, cfg.LogPath)
	cfg.ExportPath = relativeTo(base, cfg.ExportPath)
	return cfg
}

func relativeTo(base, p string) string {
	if p == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "file:") {
		return p
	}
	return filepath.Join(base, p)
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		DBPath:     DefaultDBName,
		LogPath:    DefaultLogName,
		LogLevel:   "info",
		ExportPath: DefaultExportName,
		AddedBy:    "caregiver",
		Horizon: Horizon{
			DailyDays:     schedule.DefaultDailyDays,
			WeeklyWeeks:   schedule.DefaultWeeklyWeeks,
			MonthlyMonths: schedule.DefaultMonthlyMonths,
		},
		Keys: Keymap{
			Quit:      "q",
			Add:       "a",
			Edit:      "e",
			Left:      "h",
			Right:     "l",
			Up:        "k",
			Down:      "j",
			PrevMonth: "[",
			NextMonth: "]",
			Today:     "t",
			NextTask:  "n",
			PrevTask:  "p",
			Toggle:    " ",
			Delete:    "d",
			Search:    "/",
			Export:    "x",
			Confirm:   "enter",
			Cancel:    "esc",
		},
	}
}
