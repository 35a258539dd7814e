package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // America/Sao_Paulo aunque la imagen no tenga zoneinfo

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	JWT     JWTConfig
	Backend BackendConfig
	Review  ReviewConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// JWTConfig configuración de JWT. Los tokens los emite el servicio de login;
// aquí solo se verifican.
type JWTConfig struct {
	Secret string
	Issuer string
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

// BackendConfig backend REST que procesa y guarda las notas fiscales.
type BackendConfig struct {
	BaseURL        string // ej. https://api.notascan.com.br/api/v1
	TimeoutSeconds int
}

// Timeout duración del timeout HTTP.
func (c BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ReviewConfig sesiones de revisión.
type ReviewConfig struct {
	SessionTTLMinutes int
	Timezone          string // zona usada para decidir si la fecha de emisión es futura
}

// SessionTTL inactividad máxima de una sesión.
func (c ReviewConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// Location zona horaria de las reglas de fecha.
func (c ReviewConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: REVIEW_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, HTTP_PORT, JWT_SECRET, BACKEND_BASE_URL, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
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

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "notascan-api"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		JWT: JWTConfig{
			Secret: getString(v, "JWT_SECRET", ""),
			Issuer: getString(v, "JWT_ISSUER", ""),
		},
		Backend: BackendConfig{
			BaseURL:        strings.TrimRight(getString(v, "BACKEND_BASE_URL", ""), "/"),
			TimeoutSeconds: getInt(v, "BACKEND_TIMEOUT_SECONDS", 30),
		},
		Review: ReviewConfig{
			SessionTTLMinutes: getInt(v, "REVIEW_SESSION_TTL_MINUTES", 60),
			Timezone:          getString(v, "REVIEW_TIMEZONE", "America/Sao_Paulo"),
		},
	}
	return cfg, nil
}

// Validate exige lo necesario para levantar la API.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET requerido"))
	}
	if c.Backend.BaseURL == "" {
		errs = append(errs, errors.New("BACKEND_BASE_URL requerido"))
	} else if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("BACKEND_BASE_URL inválida: %q", c.Backend.BaseURL))
	}
	if c.Backend.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("BACKEND_TIMEOUT_SECONDS debe ser positivo"))
	}
	if c.Review.SessionTTLMinutes <= 0 {
		errs = append(errs, errors.New("REVIEW_SESSION_TTL_MINUTES debe ser positivo"))
	}
	if _, err := c.Review.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
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
