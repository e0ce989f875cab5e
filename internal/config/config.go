package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel          string `yaml:"log-level" env-default:"info"`
	HTTPPort          string `yaml:"http-port" env-default:"9090"`
	SocketPort        string `yaml:"socket-port" env-default:"8080"`
	Redis             Redis  `yaml:"redis"`
	SQLiteStoragePath string `yaml:"sqlite-storage-path" env-default:"./gomoku.db"`
	Game              Game   `yaml:"game"`
	Advice            Advice `yaml:"advice"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

type Game struct {
	GracePeriodSeconds int `yaml:"grace-period-seconds" env-default:"30"`
}

// Advice configures the two best-effort advisers. Empty URLs disable the
// corresponding adviser. Timeouts are per decision, keyed by difficulty.
type Advice struct {
	OracleURL     string `yaml:"oracle-url" env-default:""`
	SuggesterURL  string `yaml:"suggester-url" env-default:""`
	LowTimeoutMS  int    `yaml:"low-timeout-ms" env-default:"250"`
	MidTimeoutMS  int    `yaml:"mid-timeout-ms" env-default:"600"`
	HighTimeoutMS int    `yaml:"high-timeout-ms" env-default:"1200"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

func (that *Game) GracePeriod() time.Duration {
	return time.Duration(that.GracePeriodSeconds) * time.Second
}
