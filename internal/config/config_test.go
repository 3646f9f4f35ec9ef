package config

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

const (
	validConfigPath              = "testdata/valid_config.yaml"
	nonexistentConfigPath        = "testdata/nonexistent_config.yaml"
	expectedNoErrorLoadingConfig = "expected no error loading config, got %v"
	expectedNoErrorMsg           = "expected no error, got %v"
	expectedNonNilConfig         = "expected non-nil config"
	pitwallName                  = "pitwall-picks"
	developmentEnv               = "development"
	localhostHost                = "localhost"
	postgresPort                 = 5432
	testAppName                  = "test-app"
	testDBPassword               = "TEST_DB_PASSWORD"
	expandedSecretValue          = "expanded_secret_value"
)

func loadValid(t *testing.T) *Config {
	t.Helper()
	t.Setenv(testDBPassword, expandedSecretValue)

	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}
	if cfg == nil {
		t.Fatal(expectedNonNilConfig)
	}
	return cfg
}

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg := loadValid(t)

	if cfg.App.Name != pitwallName {
		t.Errorf("expected app name '%s', got '%s'", pitwallName, cfg.App.Name)
	}
	if cfg.App.Environment != developmentEnv {
		t.Errorf("expected environment '%s', got '%s'", developmentEnv, cfg.App.Environment)
	}
	if cfg.Database.Host != localhostHost {
		t.Errorf("expected database host '%s', got '%s'", localhostHost, cfg.Database.Host)
	}
	if cfg.Database.Port != postgresPort {
		t.Errorf("expected database port %d, got %d", postgresPort, cfg.Database.Port)
	}
	if cfg.Scoring.Workers != 4 {
		t.Errorf("expected 4 scoring workers, got %d", cfg.Scoring.Workers)
	}
}

// TestLoadConfigExpandsEnvironment tests ${VAR} placeholders in the YAML file
func TestLoadConfigExpandsEnvironment(t *testing.T) {
	cfg := loadValid(t)

	if cfg.Database.Password != expandedSecretValue {
		t.Errorf("expected expanded password '%s', got '%s'", expandedSecretValue, cfg.Database.Password)
	}
	if !strings.Contains(cfg.GetDatabaseDSN(), expandedSecretValue) {
		t.Errorf("expected DSN to contain the expanded password")
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	if _, err := Load(nonexistentConfigPath); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestLoadConfigEnvironmentVariables tests environment variable override
func TestLoadConfigEnvironmentVariables(t *testing.T) {
	t.Setenv("PITWALL_APP_NAME", testAppName)

	cfg := loadValid(t)
	if cfg.App.Name != testAppName {
		t.Errorf("expected app name '%s' from environment, got '%s'", testAppName, cfg.App.Name)
	}
}

// TestLoadWithDefaultsMissingFile tests that defaults apply without a file
func TestLoadWithDefaultsMissingFile(t *testing.T) {
	t.Setenv("PITWALL_DATABASE_PASSWORD", "secret")

	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Scoring.Workers != 8 {
		t.Errorf("expected default workers 8, got %d", cfg.Scoring.Workers)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	if err := Validate(loadValid(t)); err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

// TestValidateFailures tests the custom and cross-field rules
func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{"invalid environment", func(c *Config) { c.App.Environment = "invalid" }, "development, staging, production"},
		{"invalid log level", func(c *Config) { c.App.LogLevel = "trace" }, "debug, info, warn, error"},
		{"missing password", func(c *Config) { c.Database.Password = "" }, "is required"},
		{"production without ssl", func(c *Config) { c.App.Environment = "production" }, "SSL mode"},
		{"idle above max", func(c *Config) { c.Database.MaxIdleConnections = 20 }, "max_idle_connections"},
		{"workers above pool", func(c *Config) { c.Scoring.Workers = 12 }, "scoring.workers"},
		{"zero workers", func(c *Config) { c.Scoring.Workers = 0 }, "Workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadValid(t)
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("expected error containing %q, got %v", tt.message, err)
			}
		})
	}
}

type fakeSecrets struct {
	output *secretsmanager.GetSecretValueOutput
	err    error
}

func (f *fakeSecrets) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	return f.output, f.err
}

// TestFetchSecretsOverlay tests decoding and applying a secret payload
func TestFetchSecretsOverlay(t *testing.T) {
	client := &fakeSecrets{output: &secretsmanager.GetSecretValueOutput{
		SecretString: aws.String(`{"database_password":"from-aws","database_user":"svc"}`),
	}}

	secrets, err := FetchSecrets(context.Background(), client, "pitwall/db")
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	cfg := loadValid(t)
	ApplySecrets(cfg, secrets)

	if cfg.Database.Password != "from-aws" {
		t.Errorf("expected password from secrets, got '%s'", cfg.Database.Password)
	}
	if cfg.Database.User != "svc" {
		t.Errorf("expected user from secrets, got '%s'", cfg.Database.User)
	}
	if cfg.Database.Host != localhostHost {
		t.Errorf("expected host to stay '%s', got '%s'", localhostHost, cfg.Database.Host)
	}
}

// TestFetchSecretsErrors tests the empty and failing secret paths
func TestFetchSecretsErrors(t *testing.T) {
	_, err := FetchSecrets(context.Background(), &fakeSecrets{output: &secretsmanager.GetSecretValueOutput{}}, "x")
	if !errors.Is(err, errNoSecretDataFound) {
		t.Errorf("expected errNoSecretDataFound, got %v", err)
	}

	_, err = FetchSecrets(context.Background(), &fakeSecrets{err: errors.New("denied")}, "x")
	if err == nil {
		t.Error("expected error from failing client")
	}
}
