package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	DB        DBConfig
	JWT       JWTConfig
	HTTP      HTTPConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
	Reminders RemindersConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	URL      string // base pública del frontend (links de invitación)
	LogLevel string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL    string
	Host           string
	Port           int
	User           string
	Password       string
	DBName         string
	SSLMode        string
	ConnectRetries int
	MaxConns       int32
	ForceIPv4      bool // Docker/Supabase sin IPv6
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT e invitaciones.
type JWTConfig struct {
	Secret          string
	Expiration      int // minutos
	Issuer          string
	InviteExpiresIn int // horas
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
	UploadDir   string
	UploadMaxMB int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RateLimitConfig límites de peticiones. RedisAddr vacío usa almacenamiento en memoria.
type RateLimitConfig struct {
	Window        time.Duration
	Max           int
	AuthWindow    time.Duration
	AuthMax       int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// MetricsConfig exposición de métricas Prometheus.
type MetricsConfig struct {
	Enabled bool
	Prefix  string
}

// RemindersConfig worker de recordatorios de reuniones.
type RemindersConfig struct {
	Enabled  bool
	Interval time.Duration
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, JWT_SECRET, REDIS_ADDR, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "crm-api"),
			URL:      strings.TrimRight(getString(v, "APP_URL", "http://localhost:5173"), "/"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL:    getString(v, "DATABASE_URL", ""),
			Host:           getString(v, "DB_HOST", "localhost"),
			Port:           getInt(v, "DB_PORT", 5432),
			User:           getString(v, "DB_USER", "postgres"),
			Password:       getString(v, "DB_PASSWORD", ""),
			DBName:         getString(v, "DB_NAME", "crm"),
			SSLMode:        getString(v, "DB_SSLMODE", "disable"),
			ConnectRetries: getInt(v, "DB_CONNECT_RETRIES", 5),
			MaxConns:       int32(getInt(v, "DB_MAX_CONNS", 25)),
			ForceIPv4:      v.GetBool("DB_FORCE_IPV4"),
		},
		JWT: JWTConfig{
			Secret:          getString(v, "JWT_SECRET", ""),
			Expiration:      getInt(v, "JWT_EXPIRATION_MINUTES", 7*24*60),
			Issuer:          getString(v, "JWT_ISSUER", "crm-api"),
			InviteExpiresIn: getInt(v, "INVITE_EXPIRATION_HOURS", 168),
		},
		HTTP: HTTPConfig{
			Host:        getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:        getInt(v, "HTTP_PORT", 4000),
			CORSOrigins: splitList(getString(v, "CORS_ORIGIN", "http://localhost:5173")),
			UploadDir:   getString(v, "UPLOAD_DIR", "uploads"),
			UploadMaxMB: getInt(v, "UPLOAD_MAX_MB", 25),
		},
		RateLimit: RateLimitConfig{
			Window:        time.Duration(getInt(v, "RATE_WINDOW_SECONDS", 15*60)) * time.Second,
			Max:           getInt(v, "RATE_MAX", 200),
			AuthWindow:    time.Duration(getInt(v, "AUTH_RATE_WINDOW_SECONDS", 60)) * time.Second,
			AuthMax:       getInt(v, "AUTH_RATE_MAX", 10),
			RedisAddr:     getString(v, "REDIS_ADDR", ""),
			RedisPassword: getString(v, "REDIS_PASSWORD", ""),
			RedisDB:       getInt(v, "REDIS_DB", 0),
		},
		Metrics: MetricsConfig{
			Enabled: getBool(v, "METRICS_ENABLED", true),
			Prefix:  getString(v, "METRICS_PREFIX", "crm_"),
		},
		Reminders: RemindersConfig{
			Enabled:  getBool(v, "REMINDERS_ENABLED", true),
			Interval: time.Duration(getInt(v, "REMINDERS_INTERVAL_SECONDS", 60)) * time.Second,
		},
	}
}

// Validate comprueba los valores obligatorios para arrancar el servidor.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("config: JWT_SECRET es obligatorio")
	}
	if c.HTTP.Port <= 0 {
		return fmt.Errorf("config: HTTP_PORT inválido")
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if !v.IsSet(key) {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return def
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
