package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFile(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	content := `# Test env file
KEY1=value1
KEY2="quoted value"
KEY3='single quoted'
# Comment
KEY4=value4
`
	if err := os.WriteFile(envFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	os.Unsetenv("KEY1")
	os.Unsetenv("KEY2")
	os.Unsetenv("KEY3")
	os.Unsetenv("KEY4")

	if err := loadEnvFile(envFile); err != nil {
		t.Fatalf("loadEnvFile failed: %v", err)
	}

	if os.Getenv("KEY1") != "value1" {
		t.Errorf("KEY1 not set correctly: %s", os.Getenv("KEY1"))
	}
	if os.Getenv("KEY2") != "quoted value" {
		t.Errorf("KEY2 not set correctly: %s", os.Getenv("KEY2"))
	}
	if os.Getenv("KEY3") != "single quoted" {
		t.Errorf("KEY3 not set correctly: %s", os.Getenv("KEY3"))
	}
	if os.Getenv("KEY4") != "value4" {
		t.Errorf("KEY4 not set correctly: %s", os.Getenv("KEY4"))
	}
}

func TestLoadEnvFile_DoesNotOverride(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	content := `EXISTING_KEY=new_value`
	if err := os.WriteFile(envFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	os.Setenv("EXISTING_KEY", "original_value")
	defer os.Unsetenv("EXISTING_KEY")

	if err := loadEnvFile(envFile); err != nil {
		t.Fatalf("loadEnvFile failed: %v", err)
	}

	if os.Getenv("EXISTING_KEY") != "original_value" {
		t.Error("loadEnvFile should not override existing env vars")
	}
}

func TestGetEnvWithFallback(t *testing.T) {
	os.Unsetenv("FALLBACK_KEY1")
	os.Unsetenv("FALLBACK_KEY2")

	result := GetEnvWithFallback("FALLBACK_KEY1", "FALLBACK_KEY2")
	if result != "" {
		t.Error("Expected empty string when no keys set")
	}

	os.Setenv("FALLBACK_KEY2", "value2")
	defer os.Unsetenv("FALLBACK_KEY2")

	result = GetEnvWithFallback("FALLBACK_KEY1", "FALLBACK_KEY2")
	if result != "value2" {
		t.Errorf("Expected value2, got %s", result)
	}

	os.Setenv("FALLBACK_KEY1", "value1")
	defer os.Unsetenv("FALLBACK_KEY1")

	result = GetEnvWithFallback("FALLBACK_KEY1", "FALLBACK_KEY2")
	if result != "value1" {
		t.Errorf("Expected value1 (first priority), got %s", result)
	}
}

func TestGetEnvDefault(t *testing.T) {
	os.Unsetenv("DEFAULT_KEY")

	result := GetEnvDefault("DEFAULT_KEY", "fallback")
	if result != "fallback" {
		t.Errorf("Expected fallback, got %s", result)
	}

	os.Setenv("DEFAULT_KEY", "actual")
	defer os.Unsetenv("DEFAULT_KEY")

	result = GetEnvDefault("DEFAULT_KEY", "fallback")
	if result != "actual" {
		t.Errorf("Expected actual, got %s", result)
	}
}

func TestResolveEnvWithAliases(t *testing.T) {
	os.Unsetenv("DOSEPILOT_WEARABLE_API_TOKEN")
	os.Unsetenv("WHOOP_API_TOKEN")
	os.Unsetenv("OURA_API_TOKEN")

	result := ResolveEnvWithAliases("DOSEPILOT_WEARABLE_API_TOKEN")
	if result != "" {
		t.Error("Expected empty when no keys set")
	}

	os.Setenv("OURA_API_TOKEN", "oura_value")
	defer os.Unsetenv("OURA_API_TOKEN")

	result = ResolveEnvWithAliases("DOSEPILOT_WEARABLE_API_TOKEN")
	if result != "oura_value" {
		t.Errorf("Expected oura_value from alias, got %s", result)
	}

	os.Setenv("WHOOP_API_TOKEN", "whoop_value")
	defer os.Unsetenv("WHOOP_API_TOKEN")

	result = ResolveEnvWithAliases("DOSEPILOT_WEARABLE_API_TOKEN")
	if result != "whoop_value" {
		t.Errorf("Expected whoop_value from first alias, got %s", result)
	}

	os.Setenv("DOSEPILOT_WEARABLE_API_TOKEN", "canonical_value")
	defer os.Unsetenv("DOSEPILOT_WEARABLE_API_TOKEN")

	result = ResolveEnvWithAliases("DOSEPILOT_WEARABLE_API_TOKEN")
	if result != "canonical_value" {
		t.Errorf("Expected canonical_value, got %s", result)
	}
}

func TestMissingEnvError(t *testing.T) {
	err := &MissingEnvError{Key: "TEST_KEY"}

	if err.Error() != "required environment variable not set: TEST_KEY" {
		t.Errorf("Unexpected error message: %s", err.Error())
	}
}

func TestGetRequiredEnv(t *testing.T) {
	os.Unsetenv("REQUIRED_TEST_KEY")

	_, err := GetRequiredEnv("REQUIRED_TEST_KEY")
	if err == nil {
		t.Error("Expected error for missing required env var")
	}

	os.Setenv("REQUIRED_TEST_KEY", "required_value")
	defer os.Unsetenv("REQUIRED_TEST_KEY")

	val, err := GetRequiredEnv("REQUIRED_TEST_KEY")
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if val != "required_value" {
		t.Errorf("Expected required_value, got %s", val)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input    string
		expected string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
	}

	for _, test := range tests {
		result := expandPath(test.input)
		if result != test.expected {
			t.Errorf("expandPath(%s) = %s, expected %s", test.input, result, test.expected)
		}
	}
}

func TestLoad_DefaultsAndValidation(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load("", dataDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Wearable.Provider != "mock" {
		t.Errorf("Expected default wearable provider mock, got %s", cfg.Wearable.Provider)
	}
	if cfg.Auth.JWTSecret == "" {
		t.Error("Expected a generated JWT secret")
	}
	if cfg.Storage.SQLitePath == "" {
		t.Error("Expected sqlite path to be derived from the data dir")
	}
}

func TestLoad_RejectsBadProvider(t *testing.T) {
	dataDir := t.TempDir()

	os.Setenv("DOSEPILOT_WEARABLE_PROVIDER", "carrier_pigeon")
	defer os.Unsetenv("DOSEPILOT_WEARABLE_PROVIDER")

	if _, err := Load("", dataDir); err == nil {
		t.Error("Expected an error for an unsupported wearable provider")
	}
}
