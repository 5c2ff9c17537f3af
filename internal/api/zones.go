package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/annel0/zone-streamer/internal/streaming"
)

// ZoneView зона в ответах API
type ZoneView struct {
	streaming.ZoneStatus
	Zon    string `json:"zon"`
	Deco   string `json:"deco,omitempty"`
	Cnst   string `json:"cnst,omitempty"`
	Skybox string `json:"skybox,omitempty"`
}

// LoadZoneResponse ответ на постановку зоны в очередь
type LoadZoneResponse struct {
	Zone          int  `json:"zone"`
	DespawnOthers bool `json:"despawn_others"`
}

// ProbeResponse результат запроса высоты или тайла текущей зоны
type ProbeResponse struct {
	Zone   int     `json:"zone"`
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	Height *float32 `json:"height,omitempty"`
	Tile   *int    `json:"tile,omitempty"`
}

func (rs *RestServer) handleListZones(c *gin.Context) {
	status := rs.controller.Status()
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Список зон",
		Data: gin.H{
			"zones":   status.Zones,
			"current": status.Current,
			"tick":    status.Tick,
			"total":   len(status.Zones),
		},
	})
}

func (rs *RestServer) handleGetZone(c *gin.Context) {
	entry := zoneEntry(c)
	view := ZoneView{Zon: entry.Zon, Deco: entry.Deco, Cnst: entry.Cnst, Skybox: entry.Skybox}
	for _, zs := range rs.controller.Status().Zones {
		if zs.ID == int(entry.ID) {
			view.ZoneStatus = zs
			break
		}
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Зона найдена",
		Data:    view,
	})
}

// handleLoadZone ставит запрос загрузки в очередь контроллера.
// Запрос обрабатывается на следующем тике, поэтому ответ 202.
func (rs *RestServer) handleLoadZone(c *gin.Context) {
	entry := zoneEntry(c)

	despawnOthers := false
	if raw := c.Query("despawn_others"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, GenericResponse{
				Success: false,
				Message: "despawn_others должен быть true или false",
			})
			return
		}
		despawnOthers = v
	}

	err := rs.controller.Enqueue(streaming.Command{Zone: entry.ID, DespawnOthers: despawnOthers})
	if errors.Is(err, streaming.ErrInboxFull) {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{
			Success: false,
			Message: "Очередь запросов переполнена, повторите позже",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, GenericResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, GenericResponse{
		Success: true,
		Message: "Загрузка зоны запрошена",
		Data:    LoadZoneResponse{Zone: int(entry.ID), DespawnOthers: despawnOthers},
	})
}

func (rs *RestServer) handleCurrentZone(c *gin.Context) {
	current, ok := rs.controller.CurrentZone()
	if !ok {
		c.JSON(http.StatusNotFound, GenericResponse{
			Success: false,
			Message: "Нет активной зоны",
		})
		return
	}

	data := gin.H{"id": int(current.ID), "root": uint64(current.Root)}
	if entry, err := rs.controller.List().Get(current.ID); err == nil {
		data["name"] = entry.Name
	}
	if current.Bundle != nil {
		data["blocks"] = len(current.Bundle.PresentBlocks())
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Текущая зона",
		Data:    data,
	})
}

func (rs *RestServer) handleHeight(c *gin.Context) {
	current, x, y, ok := rs.probe(c)
	if !ok {
		return
	}
	height := current.HeightAt(x, y)
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Высота",
		Data:    ProbeResponse{Zone: int(current.ID), X: x, Y: y, Height: &height},
	})
}

func (rs *RestServer) handleTile(c *gin.Context) {
	current, x, y, ok := rs.probe(c)
	if !ok {
		return
	}
	tile := current.TileAt(x, y)
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Тайл",
		Data:    ProbeResponse{Zone: int(current.ID), X: x, Y: y, Tile: &tile},
	})
}

// probe разбирает координаты x, y (см) и возвращает текущую зону
func (rs *RestServer) probe(c *gin.Context) (*streaming.CurrentZone, float32, float32, bool) {
	x, errX := strconv.ParseFloat(c.Query("x"), 32)
	y, errY := strconv.ParseFloat(c.Query("y"), 32)
	if errX != nil || errY != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Параметры x и y обязательны и должны быть числами",
		})
		return nil, 0, 0, false
	}

	current, ok := rs.controller.CurrentZone()
	if !ok {
		c.JSON(http.StatusNotFound, GenericResponse{
			Success: false,
			Message: "Нет активной зоны",
		})
		return nil, 0, 0, false
	}
	return current, float32(x), float32(y), true
}

func (rs *RestServer) handleRequests(c *gin.Context) {
	status := rs.controller.Status()
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Активные запросы",
		Data: gin.H{
			"requests": status.Requests,
			"total":    len(status.Requests),
		},
	})
}
