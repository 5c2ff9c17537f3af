package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/annel0/zone-streamer/internal/zone"
)

const zoneIDKey = "zone_id"

// zoneIDMiddleware разбирает :id и проверяет, что зона есть в списке
func (rs *RestServer) zoneIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := strconv.Atoi(c.Param("id"))
		if err != nil || raw <= 0 {
			c.JSON(http.StatusBadRequest, GenericResponse{
				Success: false,
				Message: "Неверный ID зоны",
			})
			c.Abort()
			return
		}

		id := zone.ID(raw)
		entry, err := rs.controller.List().Get(id)
		if err != nil {
			c.JSON(http.StatusNotFound, GenericResponse{
				Success: false,
				Message: "Зона не найдена",
			})
			c.Abort()
			return
		}

		c.Set(zoneIDKey, entry)
		c.Next()
	}
}

func zoneEntry(c *gin.Context) zone.CatalogEntry {
	entry, _ := c.Get(zoneIDKey)
	return entry.(zone.CatalogEntry)
}

// corsMiddleware разрешает запросы отладочного UI с любого origin
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
