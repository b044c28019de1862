// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading layers defaults, an optional YAML file and the environment.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"time"

	"github.com/okian/avaliece/internal/domain/model"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects "text" or "json" log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8501".
	Addr string `koanf:"addr"`

	// Locale drives option sorting (collation), e.g. "pt-BR".
	Locale string `koanf:"locale"`

	Dataset Dataset `koanf:"dataset"`
	Auth    Auth    `koanf:"auth"`
	Session Session `koanf:"session"`
	Columns Columns `koanf:"columns"`
	Chart   Chart   `koanf:"chart"`
}

// Dataset configures the Dataset Loader.
type Dataset struct {
	// Path to a CSV file or a SQLite database (.db, .sqlite, .sqlite3).
	Path string `koanf:"path"`
	// Table is read from SQLite sources.
	Table string `koanf:"table"`
	// Delimiter for CSV sources; a single character.
	Delimiter string `koanf:"delimiter"`
	// Watch invalidates the cache on file system events.
	Watch bool `koanf:"watch"`
}

// Auth configures the credential gate. PasswordHash (bcrypt) wins over Password.
type Auth struct {
	Username     string `koanf:"username"`
	Password     string `koanf:"password"`
	PasswordHash string `koanf:"password_hash"`
}

// Session configures the cookie session store.
type Session struct {
	TTL        time.Duration `koanf:"ttl"`
	CookieName string        `koanf:"cookie_name"`
	Secure     bool          `koanf:"secure"`
}

// Columns maps logical fields to dataset column names.
type Columns struct {
	Entity           string `koanf:"entity"`
	Network          string `koanf:"network"`
	Stage            string `koanf:"stage"`
	Subject          string `koanf:"subject"`
	SkillCode        string `koanf:"skill_code"`
	SkillDescription string `koanf:"skill_description"`
	Rate             string `koanf:"rate"`
	Assessment       string `koanf:"assessment"`
}

// Chart sizes rendered charts in pixels.
type Chart struct {
	Width  int `koanf:"width"`
	Height int `koanf:"height"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Addr:      ":8501",
		Locale:    "pt-BR",
		Dataset: Dataset{
			Path:      "dados.csv",
			Table:     "dados",
			Delimiter: ",",
			Watch:     true,
		},
		Auth: Auth{
			Username: "Formace",
			Password: "Formace",
		},
		Session: Session{
			TTL:        8 * time.Hour,
			CookieName: "avaliece_session",
		},
		Columns: Columns{
			Entity:           "NM_ENTIDADE",
			Network:          "VL_FILTRO_REDE",
			Stage:            "VL_FILTRO_ETAPA",
			Subject:          "VL_FILTRO_DISCIPLINA",
			SkillCode:        "CD_HABILIDADE",
			SkillDescription: "DC_HABILIDADE",
			Rate:             "TX_ACERTO",
			Assessment:       "DC_FILTRO_AVALIACAO",
		},
		Chart: Chart{
			Width:  960,
			Height: 500,
		},
	}
}

// Schema converts the column mapping into the dataset schema.
func (c Columns) Schema() model.Schema {
	return model.Schema{
		Entity:           c.Entity,
		Network:          c.Network,
		Stage:            c.Stage,
		Subject:          c.Subject,
		SkillCode:        c.SkillCode,
		SkillDescription: c.SkillDescription,
		Rate:             c.Rate,
		Assessment:       c.Assessment,
	}
}

// DelimiterRune returns the CSV delimiter as a rune (',' when unset).
func (d Dataset) DelimiterRune() rune {
	for _, r := range d.Delimiter {
		return r
	}
	return ','
}
