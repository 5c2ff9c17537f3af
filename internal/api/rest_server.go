package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/zone-streamer/internal/logging"
	"github.com/annel0/zone-streamer/internal/middleware"
	"github.com/annel0/zone-streamer/internal/render"
	"github.com/annel0/zone-streamer/internal/streaming"
	"github.com/annel0/zone-streamer/internal/zone"
)

// ZoneController часть контроллера активации, доступная из HTTP-горутин
type ZoneController interface {
	List() *zone.List
	Status() streaming.Status
	Enqueue(cmd streaming.Command) error
	CurrentZone() (*streaming.CurrentZone, bool)
}

// AssetStats источник статистики загрузки ресурсов
type AssetStats interface {
	Stats() map[string]render.Stats
}

// RestServer отладочный HTTP API просмотрщика зон
type RestServer struct {
	router     *gin.Engine
	controller ZoneController
	assets     AssetStats
	addr       string
	metrics    *ServerMetrics
	httpServer *http.Server
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port       int                   // порт отладочного API
	Controller ZoneController        // контроллер активации зон
	Assets     AssetStats            // реестр ресурсов, может быть nil
	Registerer prometheus.Registerer // регистр HTTP-метрик; nil: без регистрации
	Gatherer   prometheus.Gatherer   // источник для /metrics; nil: глобальный
	Tracing    bool                  // включить otelgin
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == 0 {
		config.Port = 8089
	}

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	if config.Tracing {
		router.Use(otelgin.Middleware("zone_debug_api"))
	}
	router.Use(middleware.NewRequestLogger().Handler())

	promMw := middleware.NewPrometheusMiddleware("zone_debug_api", config.Registerer)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, config.Gatherer)

	server := &RestServer{
		router:     router,
		controller: config.Controller,
		assets:     config.Assets,
		addr:       fmt.Sprintf(":%d", config.Port),
		metrics:    NewServerMetrics(),
	}
	server.setupRoutes()
	return server
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	rs.router.Use(corsMiddleware())

	api := rs.router.Group("/api")
	{
		api.GET("/server", rs.handleServerInfo)
		api.GET("/requests", rs.handleRequests)
		api.GET("/assets", rs.handleAssets)

		zones := api.Group("/zones")
		zones.GET("", rs.handleListZones)
		zones.GET("/current", rs.handleCurrentZone)
		zones.GET("/current/height", rs.handleHeight)
		zones.GET("/current/tile", rs.handleTile)

		byID := zones.Group("/:id")
		byID.Use(rs.zoneIDMiddleware())
		{
			byID.GET("", rs.handleGetZone)
			byID.POST("/load", rs.handleLoadZone)
		}
	}

	rs.router.GET("/health", rs.handleHealth)
}

// Handler возвращает http.Handler сервера (для тестов и встраивания)
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// handleServerInfo возвращает информацию о процессе
func (rs *RestServer) handleServerInfo(c *gin.Context) {
	memoryMB, _ := rs.metrics.GetMemoryUsage()
	cpuPercent, _ := rs.metrics.GetCPUUsage()

	info := map[string]interface{}{
		"name":           "Zone Streamer",
		"status":         "running",
		"uptime":         rs.metrics.GetUptime(),
		"memory_mb":      fmt.Sprintf("%.1f", memoryMB),
		"cpu_percent":    fmt.Sprintf("%.1f", cpuPercent),
		"memory_details": rs.metrics.GetDetailedMemoryStats(),
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Информация о сервере",
		Data:    info,
	})
}

// handleAssets возвращает статистику ресурсов по видам
func (rs *RestServer) handleAssets(c *gin.Context) {
	if rs.assets == nil {
		c.JSON(http.StatusNotFound, GenericResponse{
			Success: false,
			Message: "Реестр ресурсов не подключён",
		})
		return
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Статистика ресурсов",
		Data:    rs.assets.Stats(),
	})
}

// handleHealth проверка состояния сервера
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"tick":   rs.controller.Status().Tick,
		"time":   time.Now().Unix(),
	})
}

// Start запускает HTTP сервер и блокируется до остановки.
// После Shutdown возвращает nil.
func (rs *RestServer) Start() error {
	rs.httpServer = &http.Server{
		Addr:              rs.addr,
		Handler:           rs.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logging.GetAPILogger().Info("🌐 Отладочный API запущен на %s", rs.addr)

	if err := rs.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("отладочный API: %w", err)
	}
	return nil
}

// Shutdown плавно останавливает сервер
func (rs *RestServer) Shutdown(ctx context.Context) error {
	if rs.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return rs.httpServer.Shutdown(ctx)
}
