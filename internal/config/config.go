// Package config manages configuration for the Pixotope settings panel.
//
// Handles loading config from INI files, environment variables,
// and provides default values for all settings.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// Configuration struct
// =============================================================================

// Config holds all runtime configuration values.
type Config struct {
	// Logging
	LogFile        string
	LogMaxBytes    int
	LogBackupCount int
	LogToStdout    bool

	// Gateway
	GatewayEndpoint  string
	GatewayTimeoutMS int
	PollIntervalMS   int

	// Pixotope installation
	Installation   string
	OCIOConfigPath string // relative to Installation unless absolute

	// Color space cache
	CacheEnabled bool
	CacheDir     string

	// Window
	WindowWidth  int
	WindowHeight int
}

// =============================================================================
// Defaults
// =============================================================================

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		// Logging
		LogFile:        "./logs/pixotope_settings.log",
		LogMaxBytes:    5 * 1024 * 1024, // 5 MB
		LogBackupCount: 3,
		LogToStdout:    true,

		// Gateway
		GatewayEndpoint:  "http://127.0.0.1:16208/gateway/25.1.1",
		GatewayTimeoutMS: 2000,
		PollIntervalMS:   100,

		// Pixotope installation
		Installation:   `C:\Pixotope\25.1.1.13725`,
		OCIOConfigPath: "Services/VideoIO/ocio-configs/aces_1.1/config.ocio",

		// Cache
		CacheEnabled: true,
		CacheDir:     defaultCacheDir(),

		// Window
		WindowWidth:  420,
		WindowHeight: 260,
	}
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".", "cache")
	}
	return filepath.Join(dir, "pixotope-settings")
}

// =============================================================================
// INI parser (minimal, no external deps)
// =============================================================================

// iniData stores parsed INI sections and their key-value pairs.
type iniData map[string]map[string]string

// parseINI reads an INI file and returns its sections and key-value pairs.
// Supports comments (# and ;), sections ([name]), and key = value lines.
func parseINI(path string) (iniData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseINIString(string(data)), nil
}

func parseINIString(data string) iniData {
	result := make(iniData)
	currentSection := ""

	for _, rawLine := range strings.Split(data, "\n") {
		line := strings.TrimSpace(rawLine)

		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			if _, ok := result[currentSection]; !ok {
				result[currentSection] = make(map[string]string)
			}
			continue
		}

		if idx := strings.IndexByte(line, '='); idx > 0 {
			key := strings.ToLower(strings.TrimSpace(line[:idx]))
			value := strings.TrimSpace(line[idx+1:])
			if currentSection != "" {
				result[currentSection][key] = value
			}
		}
	}
	return result
}

// get returns a value from the parsed INI data.
func (d iniData) get(section, key string) (string, bool) {
	if sec, ok := d[section]; ok {
		if val, ok := sec[key]; ok {
			return val, true
		}
	}
	return "", false
}

// =============================================================================
// Type parsing helpers
// =============================================================================

// asBool parses a string as boolean. Truthy: "1","true","yes","on".
// Falsy: "0","false","no","off". Returns fallback on empty/unrecognised.
func asBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// asInt parses a string as int clamped to [minVal, maxVal]. A zero maxVal
// means unbounded above. Returns fallback on parse error.
func asInt(value string, fallback, minVal, maxVal int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	if parsed < minVal {
		parsed = minVal
	}
	if maxVal > 0 && parsed > maxVal {
		parsed = maxVal
	}
	return parsed
}

// =============================================================================
// Load + Apply
// =============================================================================

// ConfigPath returns the INI file path to use, respecting env vars.
func ConfigPath() string {
	if p := os.Getenv("PIXOTOPE_SETTINGS_CONFIG"); p != "" {
		return p
	}
	return "./config.ini"
}

// Load reads the INI file at the given path (or the default/env path)
// and returns a fully populated Config. Missing sections or keys
// fall back to DefaultConfig() values. Environment variables win over
// the file.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		ini, err := parseINI(path)
		if err != nil {
			applyEnv(cfg)
			return cfg, fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
		applyINI(cfg, ini)
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PIXOTOPE_ENDPOINT"); v != "" {
		cfg.GatewayEndpoint = v
	}
	if v := os.Getenv("PIXOTOPE_INSTALLATION"); v != "" {
		cfg.Installation = v
	}
	if v := os.Getenv("PIXOTOPE_SETTINGS_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
}

// applyINI maps INI key-value pairs onto the Config struct.
func applyINI(cfg *Config, ini iniData) {
	// [logging]
	if v, ok := ini.get("logging", "file"); ok {
		cfg.LogFile = v
	}
	if v, ok := ini.get("logging", "max_bytes"); ok {
		cfg.LogMaxBytes = asInt(v, cfg.LogMaxBytes, 1024, 0)
	}
	if v, ok := ini.get("logging", "backup_count"); ok {
		cfg.LogBackupCount = asInt(v, cfg.LogBackupCount, 0, 50)
	}
	if v, ok := ini.get("logging", "stdout"); ok {
		cfg.LogToStdout = asBool(v, cfg.LogToStdout)
	}

	// [gateway]
	if v, ok := ini.get("gateway", "endpoint"); ok && v != "" {
		cfg.GatewayEndpoint = v
	}
	if v, ok := ini.get("gateway", "timeout_ms"); ok {
		cfg.GatewayTimeoutMS = asInt(v, cfg.GatewayTimeoutMS, 0, 60000)
	}
	if v, ok := ini.get("gateway", "poll_interval_ms"); ok {
		cfg.PollIntervalMS = asInt(v, cfg.PollIntervalMS, 20, 60000)
	}

	// [pixotope]
	if v, ok := ini.get("pixotope", "installation"); ok && v != "" {
		cfg.Installation = v
	}
	if v, ok := ini.get("pixotope", "ocio_config"); ok && v != "" {
		cfg.OCIOConfigPath = v
	}

	// [cache]
	if v, ok := ini.get("cache", "enabled"); ok {
		cfg.CacheEnabled = asBool(v, cfg.CacheEnabled)
	}
	if v, ok := ini.get("cache", "dir"); ok && v != "" {
		cfg.CacheDir = v
	}

	// [window]
	if v, ok := ini.get("window", "width"); ok {
		cfg.WindowWidth = asInt(v, cfg.WindowWidth, 200, 4096)
	}
	if v, ok := ini.get("window", "height"); ok {
		cfg.WindowHeight = asInt(v, cfg.WindowHeight, 120, 4096)
	}
}

// =============================================================================
// Derived values
// =============================================================================

// OCIOConfigFile returns the full path of the OCIO config to enumerate.
func (c *Config) OCIOConfigFile() string {
	p := filepath.FromSlash(c.OCIOConfigPath)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Installation, p)
}

// PollInterval returns the gateway poll period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// GatewayTimeout returns the per-request gateway timeout.
func (c *Config) GatewayTimeout() time.Duration {
	return time.Duration(c.GatewayTimeoutMS) * time.Millisecond
}

// =============================================================================
// Validate
// =============================================================================

// Validate checks whether the Config values are reasonable and returns
// warnings. Returns ok=false if any setting is critically problematic.
func (c *Config) Validate() (ok bool, warnings []string) {
	ok = true

	u, err := url.Parse(c.GatewayEndpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		ok = false
		warnings = append(warnings, fmt.Sprintf("Gateway endpoint %q is not an absolute URL", c.GatewayEndpoint))
	}

	if _, err := os.Stat(c.OCIOConfigFile()); err != nil {
		warnings = append(warnings, fmt.Sprintf("OCIO config not readable: %v", err))
	}

	if c.GatewayTimeoutMS == 0 {
		warnings = append(warnings, "Gateway timeout disabled; a hung gateway stalls polling")
	}

	if c.PollIntervalMS < 50 {
		warnings = append(warnings, fmt.Sprintf("Poll interval %dms is aggressive for the gateway", c.PollIntervalMS))
	}

	return ok, warnings
}
