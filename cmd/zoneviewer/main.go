package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/zone-streamer/internal/api"
	"github.com/annel0/zone-streamer/internal/config"
	"github.com/annel0/zone-streamer/internal/eventbus"
	"github.com/annel0/zone-streamer/internal/logging"
	"github.com/annel0/zone-streamer/internal/observability"
	"github.com/annel0/zone-streamer/internal/physics"
	"github.com/annel0/zone-streamer/internal/render"
	"github.com/annel0/zone-streamer/internal/scene"
	"github.com/annel0/zone-streamer/internal/streaming"
	"github.com/annel0/zone-streamer/internal/zone"
)

func main() {
	var (
		configPath = flag.String("config", "", "путь к YAML конфигурации (или ENV ZONE_CONFIG)")
		startZone  = flag.Int("zone", 1, "зона, загружаемая при старте (0: не загружать)")
		devSeed    = flag.Int64("devdata", 0, "сгенерировать синтетические зоны в памяти с этим seed вместо чтения assets")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка чтения конфигурации: %v", err)
	}

	if err := logging.InitDefaultLoggerIn(cfg.Logging.Dir, "zoneviewer"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	logging.SetConsoleLevel(logging.ParseLevel(cfg.Logging.Level))

	logging.Info("🗺️ Запуск просмотрщика зон...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.InitTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		logging.Warn("⚠️ OpenTelemetry не инициализирован: %v", err)
		shutdownTelemetry = func(context.Context) error { return nil }
	}
	defer func() { _ = shutdownTelemetry(context.Background()) }()

	// === РЕПОЗИТОРИЙ ДАННЫХ ===
	repo, closeRepo, err := openRepository(ctx, cfg, *devSeed)
	if err != nil {
		logging.Error("❌ Не удалось открыть данные зон: %v", err)
		os.Exit(1)
	}
	defer closeRepo()

	list, err := zone.LoadList(ctx, repo, cfg.Assets.ZoneList)
	if err != nil {
		logging.Error("❌ Не удалось прочитать список зон: %v", err)
		os.Exit(1)
	}
	logging.Info("📋 Список зон: %d записей", list.Len())

	// === ШИНА СОБЫТИЙ ===
	bus, closeBus := openEventBus(cfg)
	defer closeBus()
	eventbus.Init(bus)

	if _, err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("⚠️ Не удалось подписать логгер событий: %v", err)
	}
	exporter := eventbus.NewMetricsExporter(bus, prometheus.DefaultRegisterer)
	exporter.Start()
	defer exporter.Stop()

	// === КОНТРОЛЛЕР ЗОН ===
	assembler := zone.NewAssembler(repo, list,
		zone.WithMaxParallel(cfg.Loader.GetMaxParallelBlocks()),
		zone.WithMetrics(zone.NewMetrics(prometheus.DefaultRegisterer)),
	)
	graph := scene.NewWorld()
	registry := render.NewStreamingRegistry(ctx, repo, cfg.Loader.GetAssetWorkers())
	colliders := physics.NewWorld(registry, graph)

	ctrl := streaming.NewController(ctx, assembler, graph, registry, colliders,
		streaming.WithSettleTicks(cfg.Loader.GetSettleTicks()),
		streaming.WithAssetTimeoutTicks(cfg.Loader.GetAssetTimeoutTicks()),
		streaming.WithEventBus(bus, "zoneviewer"),
		streaming.WithMetrics(streaming.NewMetrics(prometheus.DefaultRegisterer)),
	)

	if *startZone > 0 {
		if err := ctrl.Enqueue(streaming.Command{Zone: zone.ID(*startZone), DespawnOthers: true}); err != nil {
			logging.Warn("⚠️ Не удалось запросить стартовую зону: %v", err)
		}
	}

	interval := cfg.Loader.GetTickInterval()
	go ctrl.Run(ctx, interval)
	logging.Info("⏱️ Цикл симуляции запущен (тик %s)", interval)

	// === ОТЛАДОЧНЫЙ API ===
	gin.SetMode(gin.ReleaseMode)
	server := api.NewRestServer(api.Config{
		Port:       cfg.Server.GetDebugPort(),
		Controller: ctrl,
		Assets:     registry,
		Registerer: prometheus.DefaultRegisterer,
		Tracing:    cfg.Telemetry.Enabled,
	})
	go func() {
		if err := server.Start(); err != nil {
			logging.Error("❌ %v", err)
			stop()
		}
	}()

	port := cfg.Server.GetDebugPort()
	logging.Info("✅ Просмотрщик зон запущен")
	logging.Info("   🌐 Зоны: http://localhost:%d/api/zones", port)
	logging.Info("   📈 Метрики: http://localhost:%d/metrics", port)
	logging.Info("💡 Загрузка зоны: curl -X POST 'http://localhost:%d/api/zones/2/load?despawn_others=true'", port)

	<-ctx.Done()
	logging.Info("📡 Получен сигнал завершения, останавливаемся...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки API: %v", err)
	}
	registry.Wait()

	logging.Info("👋 Просмотрщик зон остановлен")
}
