package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración del servicio (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App         AppConfig
	DB          DBConfig
	JWT         JWTConfig
	HTTP        HTTPConfig
	Redis       RedisConfig
	NATS        NATSConfig
	PublicAPI   PublicAPIConfig
	Reservation ReservationConfig
	Inventory   InventoryConfig
	Fiscal      FiscalConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	Driver      string // postgres | memory
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	Migrate     bool // aplica el esquema embebido al arrancar

	MaxConns      int
	MinConns      int
	LockTimeoutMs int // espera máxima por un bloqueo de fila
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

// JWTConfig configuración de JWT para la superficie administrativa.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig conexión usada por el limitador de la API pública. Addr vacío lo desactiva.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled indica si hay Redis configurado.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// NATSConfig publicación de eventos de inventario. URL vacía desactiva la publicación.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

// Enabled indica si hay NATS configurado.
func (c NATSConfig) Enabled() bool { return c.URL != "" }

// PublicAPIConfig claves opacas y límite de peticiones de canales externos.
type PublicAPIConfig struct {
	Keys          []string
	RateLimit     int
	RateWindowSec int
}

// RateWindow devuelve la ventana del limitador.
func (c PublicAPIConfig) RateWindow() time.Duration {
	return time.Duration(c.RateWindowSec) * time.Second
}

// ReservationConfig TTL de reservas y periodicidad del barrido de expiración.
type ReservationConfig struct {
	TTLMinutes       int
	SweepIntervalSec int
	SweepBatch       int
}

// TTL devuelve la duración de una reserva.
func (c ReservationConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// SweepInterval devuelve el intervalo entre barridos.
func (c ReservationConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSec) * time.Second
}

// InventoryConfig reglas de negocio configurables del motor.
type InventoryConfig struct {
	DefaultStoreID string // tienda usada cuando un ajuste no indica storeId
	MinNotesLength int
}

// FiscalConfig emisor externo de documentos fiscales notificado en ventas de mostrador.
// URL vacía desactiva la notificación.
type FiscalConfig struct {
	URL        string
	Token      string
	TimeoutSec int
}

// Enabled indica si hay emisor fiscal configurado.
func (c FiscalConfig) Enabled() bool { return c.URL != "" }

// Timeout devuelve el timeout de red del emisor.
func (c FiscalConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.MergeInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "inventory-ledger"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			Driver:      getString(v, "DB_DRIVER", "postgres"),
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "inventory_ledger"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			Migrate:     getBool(v, "DB_MIGRATE", false),

			MaxConns:      getInt(v, "DB_MAX_CONNS", 25),
			MinConns:      getInt(v, "DB_MIN_CONNS", 2),
			LockTimeoutMs: getInt(v, "DB_LOCK_TIMEOUT_MS", 5000),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "inventory-ledger"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR", ""),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL:           getString(v, "NATS_URL", ""),
			SubjectPrefix: getString(v, "NATS_SUBJECT_PREFIX", "inventory"),
		},
		PublicAPI: PublicAPIConfig{
			Keys:          getList(v, "PUBLIC_API_KEYS"),
			RateLimit:     getInt(v, "PUBLIC_API_RATE_LIMIT", 120),
			RateWindowSec: getInt(v, "PUBLIC_API_RATE_WINDOW_SECONDS", 60),
		},
		Reservation: ReservationConfig{
			TTLMinutes:       getInt(v, "RESERVATION_TTL_MINUTES", 15),
			SweepIntervalSec: getInt(v, "RESERVATION_SWEEP_INTERVAL_SECONDS", 30),
			SweepBatch:       getInt(v, "RESERVATION_SWEEP_BATCH", 200),
		},
		Inventory: InventoryConfig{
			DefaultStoreID: getString(v, "INVENTORY_DEFAULT_STORE_ID", ""),
			MinNotesLength: getInt(v, "ADJUSTMENT_MIN_NOTES", 10),
		},
		Fiscal: FiscalConfig{
			URL:        getString(v, "FISCAL_URL", ""),
			Token:      getString(v, "FISCAL_TOKEN", ""),
			TimeoutSec: getInt(v, "FISCAL_TIMEOUT_SECONDS", 15),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("config: DB_DRIVER desconocido %q", c.DB.Driver)
	}
	if c.Reservation.TTLMinutes <= 0 {
		return fmt.Errorf("config: RESERVATION_TTL_MINUTES debe ser positivo")
	}
	if c.Reservation.SweepIntervalSec <= 0 {
		return fmt.Errorf("config: RESERVATION_SWEEP_INTERVAL_SECONDS debe ser positivo")
	}
	if c.PublicAPI.RateLimit <= 0 || c.PublicAPI.RateWindowSec <= 0 {
		return fmt.Errorf("config: límite de la API pública inválido")
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
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}

// getList separa por comas y descarta vacíos.
func getList(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v.GetString(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
