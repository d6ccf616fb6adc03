package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppEnv          = "local"
	defaultAppPort         = "8080"
	defaultRedisAddr       = "localhost:6379"
	defaultSessionDriver   = "redis"
	defaultSessionTTL      = "2h"
	defaultUpstreamTimeout = "15s"

	defaultOAuthDomain      = "https://ap-southeast-2usngbi9wi.auth.ap-southeast-2.amazoncognito.com"
	defaultOAuthClientID    = "4nko3uuuls303nefg9b9ot9g9p"
	defaultOAuthRedirectURI = "https://shop.yuimaru-ship.box-pals.com/"
	defaultOAuthScopes      = "email openid profile"

	defaultAPIGateway     = "https://9xylwit7o5.execute-api.ap-southeast-2.amazonaws.com/prod"
	defaultOrdersURL      = defaultAPIGateway + "/shipments"
	defaultLinkStoreURL   = defaultAPIGateway + "/register-store/link-user-to-store"
	defaultUpdateOrderURL = defaultLinkStoreURL
	defaultLabelSourceURL = "https://getorders-kjphqelq6a-uc.a.run.app"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load reads config/app.json and .env once. Process environment variables
// win over both files.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_ENV":            defaultAppEnv,
		"APP_PORT":           defaultAppPort,
		"REDIS_ADDR":         defaultRedisAddr,
		"REDIS_PASSWORD":     "",
		"SESSION_DRIVER":     defaultSessionDriver,
		"SESSION_TTL":        defaultSessionTTL,
		"SESSION_SECURE":     "false",
		"TRUST_PROXY":        "false",
		"UPSTREAM_TIMEOUT":   defaultUpstreamTimeout,
		"OAUTH_DOMAIN":       defaultOAuthDomain,
		"OAUTH_CLIENT_ID":    defaultOAuthClientID,
		"OAUTH_REDIRECT_URI": defaultOAuthRedirectURI,
		"OAUTH_SCOPES":       defaultOAuthScopes,
		"ORDERS_URL":         defaultOrdersURL,
		"UPDATE_ORDER_URL":   defaultUpdateOrderURL,
		"LINK_STORE_URL":     defaultLinkStoreURL,
		"LABEL_SOURCE_URL":   defaultLabelSourceURL,
	}
}

func AppEnv() string  { _ = Load(); return get("APP_ENV", defaultAppEnv) }
func AppPort() string { _ = Load(); return get("APP_PORT", defaultAppPort) }

func IsProduction() bool {
	switch strings.ToLower(AppEnv()) {
	case "production", "prod":
		return true
	}
	return false
}

func RedisAddr() string     { _ = Load(); return get("REDIS_ADDR", defaultRedisAddr) }
func RedisPassword() string { _ = Load(); return get("REDIS_PASSWORD", "") }

// SessionDriver is "redis" or "memory". Unknown values fall back to redis.
func SessionDriver() string {
	_ = Load()
	switch d := strings.ToLower(get("SESSION_DRIVER", defaultSessionDriver)); d {
	case "redis", "memory":
		return d
	default:
		return defaultSessionDriver
	}
}

func SessionTTL() time.Duration {
	_ = Load()
	return duration("SESSION_TTL", defaultSessionTTL)
}

func SessionSecure() bool {
	_ = Load()
	return get("SESSION_SECURE", "false") == "true"
}

// TrustProxy reports whether X-Forwarded-For names the real client. Enable
// it only when the app runs behind a proxy that overwrites the header.
func TrustProxy() bool {
	_ = Load()
	return get("TRUST_PROXY", "false") == "true"
}

// UpstreamTimeout bounds a single call to the identity provider or the
// order API. Zero disables the bound.
func UpstreamTimeout() time.Duration {
	_ = Load()
	return duration("UPSTREAM_TIMEOUT", defaultUpstreamTimeout)
}

// ── Identity provider ────────────────────────────────────────────────────────

func OAuthDomain() string {
	_ = Load()
	return strings.TrimRight(get("OAUTH_DOMAIN", defaultOAuthDomain), "/")
}
func OAuthClientID() string    { _ = Load(); return get("OAUTH_CLIENT_ID", defaultOAuthClientID) }
func OAuthRedirectURI() string { _ = Load(); return get("OAUTH_REDIRECT_URI", defaultOAuthRedirectURI) }
func OAuthScopes() []string {
	_ = Load()
	return strings.Fields(get("OAUTH_SCOPES", defaultOAuthScopes))
}

// ── Order API ────────────────────────────────────────────────────────────────

func OrdersURL() string      { _ = Load(); return get("ORDERS_URL", defaultOrdersURL) }
func UpdateOrderURL() string { _ = Load(); return get("UPDATE_ORDER_URL", defaultUpdateOrderURL) }
func LinkStoreURL() string   { _ = Load(); return get("LINK_STORE_URL", defaultLinkStoreURL) }
func LabelSourceURL() string { _ = Load(); return get("LABEL_SOURCE_URL", defaultLabelSourceURL) }

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil && !os.IsNotExist(err) {
		return err
	}

	env, err := godotenv.Read(envPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", envPath, err)
	}
	for k, v := range env {
		loaded[strings.ToUpper(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}

	for k := range loaded {
		if v, ok := os.LookupEnv(k); ok {
			loaded[k] = v
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		s, ok := val.(string)
		if !ok {
			continue
		}
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}
	return fallback
}

func duration(key, fallback string) time.Duration {
	d, err := time.ParseDuration(get(key, fallback))
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// Set overrides a key for the lifetime of the process. Tests use it to point
// the service at httptest servers.
func Set(key, value string) {
	_ = Load()
	mu.Lock()
	values[strings.ToUpper(key)] = value
	mu.Unlock()
}
