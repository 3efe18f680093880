package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa de la consola.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Channel ChannelConfig `yaml:"channel"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig contiene los endpoints y credenciales del auction house.
type APIConfig struct {
	BaseURL     string `yaml:"base_url"`     // REST, http(s)://
	WSBase      string `yaml:"ws_base"`      // websocket, ws(s)://; derivado de base_url si falta
	AdminToken  string `yaml:"admin_token"`  // bearer para la superficie de admin
	InviteToken string `yaml:"invite_token"` // token de participante para el canal público
}

// ChannelConfig controla el comportamiento del canal websocket.
type ChannelConfig struct {
	ReconnectDelayMS int `yaml:"reconnect_delay_ms"`
}

// StorageConfig controla dónde se archiva el bid log.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si
// existe. Los valores del entorno sobreescriben los del YAML. Si path está
// vacío o el archivo no existe, se parte de la configuración por defecto:
// la consola funciona sin archivo de config.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
			}
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// ReconnectDelay devuelve el delay de reconexión como time.Duration.
func (c *Config) ReconnectDelay() time.Duration {
	return time.Duration(c.Channel.ReconnectDelayMS) * time.Millisecond
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("WS_BASE"); v != "" {
		cfg.API.WSBase = v
	}
	if v := os.Getenv("ADMIN_TOKEN"); v != "" {
		cfg.API.AdminToken = v
	}
	if v := os.Getenv("INVITE_TOKEN"); v != "" {
		cfg.API.InviteToken = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8000"
	}
	if cfg.API.WSBase == "" {
		cfg.API.WSBase = deriveWSBase(cfg.API.BaseURL)
	}
	if cfg.Channel.ReconnectDelayMS <= 0 {
		cfg.Channel.ReconnectDelayMS = 500
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "martillo.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// deriveWSBase traduce el base URL HTTP a su equivalente websocket.
func deriveWSBase(base string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	return u.String()
}
