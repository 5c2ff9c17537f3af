package config

import (
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации загрузчика зон.
type Config struct {
	Assets    AssetsConfig    `yaml:"assets"`
	Loader    LoaderConfig    `yaml:"loader"`
	Cache     CacheConfig     `yaml:"cache"`
	Server    ServerConfig    `yaml:"server"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type AssetsConfig struct {
	Root     string `yaml:"root"`      // каталог с распакованными данными
	Pack     string `yaml:"pack"`      // badger-архив; если задан, имеет приоритет над Root
	ZoneList string `yaml:"zone_list"` // путь к списку зон внутри репозитория
}

type LoaderConfig struct {
	MaxParallelBlocks int `yaml:"max_parallel_blocks"`
	SettleTicks       int `yaml:"settle_ticks"`
	AssetTimeoutTicks int `yaml:"asset_timeout_ticks"`
	TickRate          int `yaml:"tick_rate"`
	AssetWorkers      int `yaml:"asset_workers"`
}

type CacheConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTL      int    `yaml:"ttl_seconds"`
}

type ServerConfig struct {
	DebugPort int `yaml:"debug_port"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
	Endpoint    string `yaml:"endpoint"` // host:port OTLP/HTTP; если пусто, OTEL_EXPORTER_OTLP_ENDPOINT или localhost:4318
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	return &Config{
		Assets: AssetsConfig{
			Root:     "assets",
			ZoneList: "3DDATA/STB/LIST_ZONE.YAML",
		},
		EventBus: EventBusConfig{Stream: "ZONES", Retention: 24},
		Telemetry: TelemetryConfig{
			ServiceName: "zone-streamer",
		},
		Logging: LoggingConfig{Level: "info", Dir: "logs"},
	}
}

// GetDebugPort возвращает порт отладочного API с поддержкой fallback значений
func (s *ServerConfig) GetDebugPort() int {
	return getPortWithEnvFallback(s.DebugPort, "ZONE_DEBUG_PORT", 8089)
}

// GetMaxParallelBlocks возвращает ограничение параллельной загрузки блоков.
// 0 означает "число логических CPU × 4": загрузка блоков упирается в I/O.
func (l *LoaderConfig) GetMaxParallelBlocks() int {
	if l.MaxParallelBlocks > 0 {
		return l.MaxParallelBlocks
	}
	return logicalCPUs() * 4
}

// GetSettleTicks возвращает задержку стабилизации после загрузки ассетов
func (l *LoaderConfig) GetSettleTicks() int {
	return getIntWithEnvFallback(l.SettleTicks, "ZONE_SETTLE_TICKS", 2)
}

// GetAssetTimeoutTicks возвращает предельное число тиков ожидания ассетов
func (l *LoaderConfig) GetAssetTimeoutTicks() int {
	return getIntWithEnvFallback(l.AssetTimeoutTicks, "ZONE_ASSET_TIMEOUT_TICKS", 1800)
}

// GetTickInterval возвращает длительность одного тика
func (l *LoaderConfig) GetTickInterval() time.Duration {
	rate := getIntWithEnvFallback(l.TickRate, "ZONE_TICK_RATE", 60)
	return time.Second / time.Duration(rate)
}

// GetAssetWorkers возвращает число воркеров потоковой загрузки ассетов
func (l *LoaderConfig) GetAssetWorkers() int {
	if l.AssetWorkers > 0 {
		return l.AssetWorkers
	}
	return logicalCPUs()
}

// GetTTL возвращает время жизни записей горячего кэша
func (c *CacheConfig) GetTTL() time.Duration {
	return time.Duration(getIntWithEnvFallback(c.TTL, "ZONE_CACHE_TTL", 600)) * time.Second
}

func logicalCPUs() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	return getIntWithEnvFallback(configPort, envVar, defaultPort)
}

func getIntWithEnvFallback(configValue int, envVar string, defaultValue int) int {
	// Если значение задано в конфиге и больше 0, используем его
	if configValue > 0 {
		return configValue
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v > 0 {
			return v
		}
	}

	return defaultValue
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV ZONE_CONFIG, иначе возвращает Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("ZONE_CONFIG")
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
