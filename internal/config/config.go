package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Store    StoreConfig
	Log      LogConfig
	Tracing  TracingConfig
	Ops      OpsConfig
	Workflow WorkflowConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Version     string
}

// StoreConfig locates the two XML documents that hold all clinical state.
type StoreConfig struct {
	DataDir            string
	PatientsFile       string
	EncountersFile     string
	SlowWriteThreshold time.Duration
}

func (s StoreConfig) PatientsPath() string {
	return filepath.Join(s.DataDir, s.PatientsFile)
}

func (s StoreConfig) EncountersPath() string {
	return filepath.Join(s.DataDir, s.EncountersFile)
}

type LogConfig struct {
	Level      string
	Format     string
	OutputPath string
}

type TracingConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
	SampleRate   float64
}

// OpsConfig controls the read-only operations endpoint. An empty Addr disables it.
type OpsConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

func (o OpsConfig) Enabled() bool {
	return o.Addr != ""
}

type ClosePolicy string

const (
	// ClosePolicyFirst closes the first encounter in document order.
	ClosePolicyFirst ClosePolicy = "first"
	// ClosePolicyFirstOpen closes the first encounter with no outcome recorded.
	ClosePolicyFirstOpen ClosePolicy = "first-open"
)

func (p ClosePolicy) IsValid() bool {
	switch p {
	case ClosePolicyFirst, ClosePolicyFirstOpen:
		return true
	}
	return false
}

type WorkflowConfig struct {
	ClosePolicy        ClosePolicy
	UnknownPatientName string
}

// Load reads configuration from the environment. A .env file in the working
// directory, if present, is applied first without overriding variables that
// are already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "clinicdesk"),
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "0.0.0"),
		},
		Store: StoreConfig{
			DataDir:            getEnv("STORE_DATA_DIR", "."),
			PatientsFile:       getEnv("STORE_PATIENTS_FILE", "pacientes.xml"),
			EncountersFile:     getEnv("STORE_ENCOUNTERS_FILE", "atendimentos.xml"),
			SlowWriteThreshold: getEnvDuration("STORE_SLOW_WRITE_THRESHOLD", 200*time.Millisecond),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "console"),
			OutputPath: getEnv("LOG_OUTPUT", "stderr"),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvBool("TRACING_ENABLED", false),
			ServiceName:  getEnv("TRACING_SERVICE_NAME", "clinicdesk"),
			OTLPEndpoint: getEnv("OTLP_ENDPOINT", "http://localhost:4318"),
			SampleRate:   getEnvFloat("TRACING_SAMPLE_RATE", 1.0),
		},
		Ops: OpsConfig{
			Addr:            getEnv("OPS_ADDR", ""),
			ShutdownTimeout: getEnvDuration("OPS_SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Workflow: WorkflowConfig{
			ClosePolicy:        ClosePolicy(getEnv("WORKFLOW_CLOSE_POLICY", string(ClosePolicyFirst))),
			UnknownPatientName: getEnv("WORKFLOW_UNKNOWN_PATIENT_NAME", "Unknown"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	var errs []string

	if strings.TrimSpace(cfg.Store.PatientsFile) == "" {
		errs = append(errs, "STORE_PATIENTS_FILE is required")
	}
	if strings.TrimSpace(cfg.Store.EncountersFile) == "" {
		errs = append(errs, "STORE_ENCOUNTERS_FILE is required")
	}
	if cfg.Store.PatientsPath() == cfg.Store.EncountersPath() {
		errs = append(errs, "patients and encounters documents must be different files")
	}

	if !cfg.Workflow.ClosePolicy.IsValid() {
		errs = append(errs, fmt.Sprintf("WORKFLOW_CLOSE_POLICY %q is not one of first, first-open", cfg.Workflow.ClosePolicy))
	}

	if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
		errs = append(errs, "TRACING_SAMPLE_RATE must be between 0 and 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
