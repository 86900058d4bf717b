package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"voyago/internal/models"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
app:
  name: "voyago-test"
  environment: "test"
database:
  path: "test.db"
sync:
  interval_seconds: 30
  probe_endpoints:
    - "https://example.com/generate_204"
api:
  enabled: true
  auth:
    api_keys:
      - key: "k1"
        extra: "e1"
        name: "storefront"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "voyago-test" {
		t.Errorf("expected app name voyago-test, got %s", cfg.App.Name)
	}
	if cfg.Sync.Interval() != 30*time.Second {
		t.Errorf("expected sync interval 30s, got %s", cfg.Sync.Interval())
	}
	if len(cfg.Sync.ProbeEndpoints) != 1 {
		t.Errorf("expected 1 probe endpoint, got %d", len(cfg.Sync.ProbeEndpoints))
	}
	if !cfg.API.HTTP.Enabled {
		t.Error("expected http api to be enabled by default when api is enabled")
	}
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("VOYAGO_DB_PATH", filepath.Join(tmpDir, "env.db"))
	yamlContent := `
database:
  path: "${VOYAGO_DB_PATH}"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Database.Path != filepath.Join(tmpDir, "env.db") {
		t.Errorf("expected expanded db path, got %s", cfg.Database.Path)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid config",
			cfg:     Config{Database: DatabaseConfig{Path: "path"}},
			wantErr: false,
		},
		{
			name:    "missing database path",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name: "api enabled without keys",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				API:      APIConfig{Enabled: true, Auth: APIAuthConfig{Enabled: true}},
			},
			wantErr: true,
		},
		{
			name: "api key with empty key field",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				API: APIConfig{Auth: APIAuthConfig{
					APIKeys: []APIClientKey{{Name: "broken"}},
				}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.Sync.Interval() != models.DefaultSyncInterval {
		t.Errorf("expected default sync interval %s, got %s", models.DefaultSyncInterval, cfg.Sync.Interval())
	}
	if cfg.Sync.MaxAttempts != models.MaxSyncAttempts {
		t.Errorf("expected default max attempts %d, got %d", models.MaxSyncAttempts, cfg.Sync.MaxAttempts)
	}
	if cfg.API.HTTP.Port != 8080 {
		t.Errorf("expected default HTTP port 8080, got %d", cfg.API.HTTP.Port)
	}
	if cfg.API.Auth.HeaderAPIKey != "x-api-key" {
		t.Errorf("expected default api key header, got %s", cfg.API.Auth.HeaderAPIKey)
	}
	if cfg.API.RateLimit.RPS != 10 {
		t.Errorf("expected default rate limit 10 rps, got %f", cfg.API.RateLimit.RPS)
	}
}

func TestLoadProducts(t *testing.T) {
	tmpDir := t.TempDir()
	catalogPath := filepath.Join(tmpDir, "products.yaml")

	yamlContent := `
products:
  - id: 42
    name: "Coastal Kayak Tour"
    capacity: 10
    price: 59.90
    is_active: true
  - id: 7
    name: "Old Town Walk"
    capacity: 25
    price: 19
    is_active: true
`
	if err := os.WriteFile(catalogPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}

	products, err := LoadProducts(catalogPath)
	if err != nil {
		t.Fatalf("failed to load products: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].ID != 42 || products[0].Price != 59.90 {
		t.Errorf("unexpected first product: %+v", products[0])
	}
}

func TestValidateProducts(t *testing.T) {
	tests := []struct {
		name     string
		products []models.Product
		wantErr  bool
	}{
		{
			name: "Valid products",
			products: []models.Product{
				{ID: 1, Name: "Tour A", Capacity: 5},
				{ID: 2, Name: "Tour B", Capacity: 10},
			},
			wantErr: false,
		},
		{
			name: "Duplicate ID",
			products: []models.Product{
				{ID: 1, Name: "Tour A"},
				{ID: 1, Name: "Tour B"},
			},
			wantErr: true,
		},
		{
			name:     "ID 0",
			products: []models.Product{{ID: 0, Name: "Tour A"}},
			wantErr:  true,
		},
		{
			name:     "Negative price",
			products: []models.Product{{ID: 1, Name: "Tour A", Price: -1}},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProducts(tt.products)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProducts() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
