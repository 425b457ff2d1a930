// Package config carga la configuración del servicio: config.yaml, luego
// variables de entorno MULTILOGIN_* (que pisan al YAML) y por último Validate.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/multilogin/internal/catalog"
	"github.com/dropDatabas3/multilogin/internal/validation"
)

// EnvPrefix es el prefijo de todas las variables de entorno.
const EnvPrefix = "MULTILOGIN_"

type Config struct {
	App struct {
		// dev | staging | prod
		Env     string `yaml:"env"`
		Name    string `yaml:"name"`
		BaseURL string `yaml:"base_url"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Addr               string        `yaml:"addr"`
		MetricsAddr        string        `yaml:"metrics_addr"` // vacío = /metrics en el listener principal
		CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
		ReadTimeout        time.Duration `yaml:"read_timeout"`
		WriteTimeout       time.Duration `yaml:"write_timeout"`
		ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Storage struct {
		Driver       string `yaml:"driver"` // fs | postgres | sqlite
		DSN          string `yaml:"dsn"`
		FSRoot       string `yaml:"fs_root"`
		MaxOpenConns int    `yaml:"max_open_conns"`
		MaxIdleConns int    `yaml:"max_idle_conns"`
	} `yaml:"storage"`

	Cache struct {
		Kind   string        `yaml:"kind"` // none | memory | redis
		TTL    time.Duration `yaml:"ttl"`
		Prefix string        `yaml:"prefix"`
		Redis  RedisConfig   `yaml:"redis"`
	} `yaml:"cache"`

	Rate struct {
		Enabled     bool          `yaml:"enabled"`
		Backend     string        `yaml:"backend"` // memory | redis
		PublicLimit int           `yaml:"public_limit"`
		AdminLimit  int           `yaml:"admin_limit"`
		Window      time.Duration `yaml:"window"`
		Prefix      string        `yaml:"prefix"`
		Redis       RedisConfig   `yaml:"redis"`
	} `yaml:"rate"`

	Admin struct {
		JWTSecret string        `yaml:"jwt_secret"`
		Issuer    string        `yaml:"issuer"`
		TokenTTL  time.Duration `yaml:"token_ttl"`
		Enforce   bool          `yaml:"enforce"`
		Subs      []string      `yaml:"subs"`
	} `yaml:"admin"`

	SocialAuth struct {
		// Enabled registra la ruta social_auth.network.redirect.
		Enabled      bool   `yaml:"enabled"`
		RoutePattern string `yaml:"route_pattern"`
		// Networks: network key -> authorize URL del proveedor.
		Networks map[string]string `yaml:"networks"`
	} `yaml:"social_auth"`

	Modules struct {
		File string   `yaml:"file"`
		Seed []string `yaml:"seed"`
	} `yaml:"modules"`

	StandardLogin struct {
		Action string `yaml:"action"`
	} `yaml:"standard_login"`

	Help struct {
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"help"`

	UI struct {
		EditableLabels bool     `yaml:"editable_labels"`
		DefaultLocale  string   `yaml:"default_locale"`
		Locales        []string `yaml:"locales"`
	} `yaml:"ui"`

	Log struct {
		Env   string `yaml:"env"`
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// RedisConfig es la conexión a Redis de cache y rate limit.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Default devuelve la configuración por defecto (un nodo, FS, cache en memoria).
func Default() *Config {
	c := &Config{}
	c.App.Env = "dev"
	c.App.Name = "multilogin"

	c.Server.Addr = ":8080"
	c.Server.ReadTimeout = 10 * time.Second
	c.Server.WriteTimeout = 30 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second

	c.Storage.Driver = "fs"
	c.Storage.FSRoot = "data"

	c.Cache.Kind = "memory"
	c.Cache.TTL = 2 * time.Minute
	c.Cache.Prefix = "ml:"

	c.Rate.Enabled = true
	c.Rate.Backend = "memory"
	c.Rate.PublicLimit = 120
	c.Rate.AdminLimit = 30
	c.Rate.Window = time.Minute
	c.Rate.Prefix = "rl:"

	c.Admin.Issuer = "multilogin"
	c.Admin.TokenTTL = time.Hour

	c.SocialAuth.Enabled = true
	c.SocialAuth.RoutePattern = "/user/login/{network}"
	c.SocialAuth.Networks = map[string]string{}

	c.Modules.File = "data/modules.yaml"

	c.StandardLogin.Action = "/user/login"

	c.Help.Timeout = 5 * time.Second

	c.UI.EditableLabels = true
	c.UI.DefaultLocale = "en"
	c.UI.Locales = []string{"en"}

	c.Log.Level = "info"
	return c
}

// Load lee path (si no está vacío) sobre los defaults y aplica el entorno.
// No valida: llamar a Validate.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := c.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if c.Log.Env == "" {
		c.Log.Env = c.App.Env
	}
	if c.SocialAuth.Networks == nil {
		c.SocialAuth.Networks = map[string]string{}
	}
	return c, nil
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(EnvPrefix + key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool, error) {
	s, ok := getEnvStr(key)
	if !ok {
		return 0, false, nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false, fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
	}
	return i, true, nil
}

func getEnvBool(key string) (bool, bool, error) {
	s, ok := getEnvStr(key)
	if !ok {
		return false, false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, false, fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
	}
	return b, true, nil
}

func getEnvDur(key string) (time.Duration, bool, error) {
	s, ok := getEnvStr(key)
	if !ok {
		return 0, false, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, false, fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
	}
	return d, true, nil
}

func getEnvCSV(key string) ([]string, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return nil, false
	}
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true
}

// parseKVList parsea "k1=v1<sep>k2=v2".
func parseKVList(s, sep string) map[string]string {
	out := map[string]string{}
	for _, it := range strings.Split(strings.TrimSpace(s), sep) {
		k, v, ok := strings.Cut(strings.TrimSpace(it), "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if ok && k != "" && v != "" {
			out[k] = v
		}
	}
	return out
}

// applyEnvOverrides pisa config.yaml con MULTILOGIN_*.
func (c *Config) applyEnvOverrides() error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := getEnvStr(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		v, ok, err := getEnvInt(key)
		if err != nil {
			errs = append(errs, err)
		} else if ok {
			*dst = v
		}
	}
	flag := func(key string, dst *bool) {
		v, ok, err := getEnvBool(key)
		if err != nil {
			errs = append(errs, err)
		} else if ok {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		v, ok, err := getEnvDur(key)
		if err != nil {
			errs = append(errs, err)
		} else if ok {
			*dst = v
		}
	}
	csv := func(key string, dst *[]string) {
		if v, ok := getEnvCSV(key); ok {
			*dst = v
		}
	}

	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	str("APP_BASE_URL", &c.App.BaseURL)
	str("APP_VERSION", &c.App.Version)

	// SERVER
	str("SERVER_ADDR", &c.Server.Addr)
	str("SERVER_METRICS_ADDR", &c.Server.MetricsAddr)
	csv("SERVER_CORS_ALLOWED_ORIGINS", &c.Server.CORSAllowedOrigins)
	dur("SERVER_SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)

	// STORAGE
	str("STORAGE_DRIVER", &c.Storage.Driver)
	str("STORAGE_DSN", &c.Storage.DSN)
	str("STORAGE_FS_ROOT", &c.Storage.FSRoot)
	num("STORAGE_MAX_OPEN_CONNS", &c.Storage.MaxOpenConns)

	// CACHE
	str("CACHE_KIND", &c.Cache.Kind)
	dur("CACHE_TTL", &c.Cache.TTL)
	str("CACHE_REDIS_ADDR", &c.Cache.Redis.Addr)
	str("CACHE_REDIS_PASSWORD", &c.Cache.Redis.Password)
	num("CACHE_REDIS_DB", &c.Cache.Redis.DB)

	// RATE
	flag("RATE_ENABLED", &c.Rate.Enabled)
	str("RATE_BACKEND", &c.Rate.Backend)
	num("RATE_PUBLIC_LIMIT", &c.Rate.PublicLimit)
	num("RATE_ADMIN_LIMIT", &c.Rate.AdminLimit)
	dur("RATE_WINDOW", &c.Rate.Window)
	str("RATE_REDIS_ADDR", &c.Rate.Redis.Addr)
	str("RATE_REDIS_PASSWORD", &c.Rate.Redis.Password)

	// ADMIN
	str("ADMIN_JWT_SECRET", &c.Admin.JWTSecret)
	str("ADMIN_ISSUER", &c.Admin.Issuer)
	dur("ADMIN_TOKEN_TTL", &c.Admin.TokenTTL)
	flag("ADMIN_ENFORCE", &c.Admin.Enforce)
	csv("ADMIN_SUBS", &c.Admin.Subs)

	// SOCIAL AUTH
	flag("SOCIAL_AUTH_ENABLED", &c.SocialAuth.Enabled)
	str("SOCIAL_AUTH_ROUTE_PATTERN", &c.SocialAuth.RoutePattern)
	if v, ok := getEnvStr("SOCIAL_AUTH_NETWORKS"); ok {
		c.SocialAuth.Networks = parseKVList(v, ";")
	}

	// MODULES
	str("MODULES_FILE", &c.Modules.File)
	csv("MODULES_SEED", &c.Modules.Seed)

	// UI / HELP / LOGIN
	str("STANDARD_LOGIN_ACTION", &c.StandardLogin.Action)
	str("HELP_URL", &c.Help.URL)
	dur("HELP_TIMEOUT", &c.Help.Timeout)
	flag("UI_EDITABLE_LABELS", &c.UI.EditableLabels)
	str("UI_DEFAULT_LOCALE", &c.UI.DefaultLocale)
	csv("UI_LOCALES", &c.UI.Locales)

	// LOG
	str("LOG_ENV", &c.Log.Env)
	str("LOG_LEVEL", &c.Log.Level)

	return errors.Join(errs...)
}

// IsProd reporta si app.env es prod.
func (c *Config) IsProd() bool { return strings.EqualFold(c.App.Env, "prod") }

// Locales devuelve los locales con el default primero (fallback de i18n).
func (c *Config) Locales() []string {
	out := []string{c.UI.DefaultLocale}
	for _, l := range c.UI.Locales {
		if !slices.Contains(out, l) {
			out = append(out, l)
		}
	}
	return out
}

// Validate junta todos los errores de configuración.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	if c.Server.Addr == "" {
		add("server.addr is required")
	}

	switch c.Storage.Driver {
	case "fs":
		if c.Storage.FSRoot == "" {
			add("storage.fs_root is required for driver fs")
		}
	case "postgres", "sqlite":
		if c.Storage.DSN == "" {
			add("storage.dsn is required for driver %s", c.Storage.Driver)
		}
	default:
		add("storage.driver %q not supported (fs|postgres|sqlite)", c.Storage.Driver)
	}

	switch c.Cache.Kind {
	case "none", "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			add("cache.redis.addr is required for cache kind redis")
		}
	default:
		add("cache.kind %q not supported (none|memory|redis)", c.Cache.Kind)
	}
	if c.Cache.Kind != "none" && c.Cache.TTL <= 0 {
		add("cache.ttl must be positive")
	}

	if c.Rate.Enabled {
		switch c.Rate.Backend {
		case "memory":
		case "redis":
			if c.Rate.Redis.Addr == "" && c.Cache.Redis.Addr == "" {
				add("rate.redis.addr (or cache.redis.addr) is required for backend redis")
			}
		default:
			add("rate.backend %q not supported (memory|redis)", c.Rate.Backend)
		}
		if c.Rate.PublicLimit <= 0 || c.Rate.AdminLimit <= 0 {
			add("rate limits must be positive")
		}
		if c.Rate.Window <= 0 {
			add("rate.window must be positive")
		}
	}

	if c.Admin.Enforce || c.Admin.JWTSecret != "" {
		if len(c.Admin.JWTSecret) < 32 {
			add("admin.jwt_secret must be at least 32 bytes")
		}
	}
	if c.IsProd() && !c.Admin.Enforce {
		add("admin.enforce must be true in prod")
	}

	if c.SocialAuth.Enabled && !strings.Contains(c.SocialAuth.RoutePattern, "{network}") {
		add("social_auth.route_pattern must contain {network}")
	}
	for network, raw := range c.SocialAuth.Networks {
		if !validation.ValidNetworkKey(network) {
			add("social_auth.networks: invalid network key %q", network)
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
			add("social_auth.networks.%s: authorize URL must be absolute http(s)", network)
		}
	}

	for _, id := range c.Modules.Seed {
		if _, ok := catalog.Lookup(id); !ok {
			add("modules.seed: unknown provider module %q", id)
		}
	}
	if c.Modules.File == "" {
		add("modules.file is required")
	}

	if c.Help.URL != "" && c.Help.Timeout <= 0 {
		add("help.timeout must be positive")
	}
	if c.UI.DefaultLocale == "" {
		add("ui.default_locale is required")
	}

	return errors.Join(errs...)
}
