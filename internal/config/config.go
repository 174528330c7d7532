// Package config loads server configuration from an optional YAML file and
// applies environment overrides on top, so a bare container can be configured
// entirely through env vars.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gastosmart/backend/internal/recommend"
	"github.com/gastosmart/backend/internal/regional"
)

// InsecureDefaultSecret is the out-of-the-box signing secret. Deployments
// must override it; the server logs a warning when it is still in use.
const InsecureDefaultSecret = "SUPER_SECRET_KEY_CHANGE_THIS"

type Server struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Storage struct {
	// ProjectID selects the Firestore project. Empty means no Firestore;
	// the binaries fall back to the in-memory store.
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
}

type Auth struct {
	SecretKey string `yaml:"secret_key"`
}

// Engine carries the recommendation engine tunables. Zero values defer to
// the engine's own defaults.
type Engine struct {
	FetchLimit            int     `yaml:"fetch_limit"`
	SmallExpenseThreshold float64 `yaml:"small_expense_threshold"`
	MaxResults            int     `yaml:"max_results"`
	GoalFraction          float64 `yaml:"goal_fraction"`
	FallbackGoalAmount    float64 `yaml:"fallback_goal_amount"`
}

type Config struct {
	Server   Server            `yaml:"server"`
	Storage  Storage           `yaml:"storage"`
	Auth     Auth              `yaml:"auth"`
	Engine   Engine            `yaml:"engine"`
	Regional regional.Settings `yaml:"regional"`
}

func Default() Config {
	return Config{
		Server: Server{
			Port:           "8080",
			AllowedOrigins: []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		},
		Auth: Auth{
			SecretKey: InsecureDefaultSecret,
		},
		Engine: Engine{
			FetchLimit:            recommend.DefaultFetchLimit,
			SmallExpenseThreshold: recommend.DefaultSmallExpenseThreshold,
			MaxResults:            recommend.DefaultMaxResults,
			GoalFraction:          recommend.DefaultGoalFraction,
			FallbackGoalAmount:    recommend.FallbackGoalAmount,
		},
		Regional: regional.Default(),
	}
}

// Load reads the YAML file at path over the defaults, then applies env
// overrides. An empty path skips the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if cfg.Server.Port == "" {
		return Config{}, fmt.Errorf("server port must not be empty")
	}
	return cfg, nil
}

// applyEnv layers environment variables over the loaded config. SECRET_KEY
// is the historical name; JWT_SECRET_KEY wins when both are set.
func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.AllowedOrigins = origins
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		cfg.Auth.SecretKey = v
	}
	if v := os.Getenv("JWT_SECRET_KEY"); v != "" {
		cfg.Auth.SecretKey = v
	}
	if v := os.Getenv("FIRESTORE_PROJECT_ID"); v != "" {
		cfg.Storage.ProjectID = v
	} else if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" && cfg.Storage.ProjectID == "" {
		cfg.Storage.ProjectID = v
	}
	if v := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); v != "" && cfg.Storage.CredentialsFile == "" {
		cfg.Storage.CredentialsFile = v
	}
}

// EngineOptions converts the tunables into engine options.
func (c Config) EngineOptions(format *regional.Formatter) recommend.Options {
	return recommend.Options{
		FetchLimit:            c.Engine.FetchLimit,
		SmallExpenseThreshold: c.Engine.SmallExpenseThreshold,
		MaxResults:            c.Engine.MaxResults,
		GoalFraction:          c.Engine.GoalFraction,
		FallbackGoalAmount:    c.Engine.FallbackGoalAmount,
		Formatter:             format,
	}
}
