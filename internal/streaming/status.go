package streaming

import "github.com/annel0/zone-streamer/internal/zone"

// ZoneStatus состояние зоны для отладочного API
type ZoneStatus struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	State   string `json:"state"`
	Root    uint64 `json:"root,omitempty"`
	Blocks  int    `json:"blocks,omitempty"`
	Current bool   `json:"current"`
}

// RequestStatus состояние активного запроса
type RequestStatus struct {
	ID            string `json:"id"`
	Zone          int    `json:"zone"`
	State         string `json:"state"`
	DespawnOthers bool   `json:"despawn_others"`
	Degraded      bool   `json:"degraded"`
	SpawnedTicks  int    `json:"spawned_ticks"`
	PendingAssets int    `json:"pending_assets"`
	Settle        int    `json:"settle"`
}

// Status снимок состояния контроллера на конец тика
type Status struct {
	Tick     uint64          `json:"tick"`
	Current  *int            `json:"current,omitempty"`
	Zones    []ZoneStatus    `json:"zones"`
	Requests []RequestStatus `json:"requests"`
}

// Status возвращает последний снимок. Безопасен для вызова из любой горутины.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// refreshStatus пересобирает снимок. Снимок не разделяет срезы с предыдущим.
func (c *Controller) refreshStatus() {
	c.mu.RLock()
	current := c.current
	c.mu.RUnlock()

	status := Status{Tick: c.tick, Requests: make([]RequestStatus, 0, len(c.requests))}
	if current != nil {
		id := int(current.ID)
		status.Current = &id
	}

	for _, entry := range c.list.Entries() {
		zs := ZoneStatus{
			ID:      int(entry.ID),
			Name:    entry.Name,
			State:   c.cache.State(entry.ID).String(),
			Current: current != nil && current.ID == entry.ID,
		}
		if root, ok := c.cache.Root(entry.ID); ok {
			zs.Root = uint64(root)
		}
		if bundle, ok := c.cache.Bundle(entry.ID); ok {
			zs.Blocks = len(bundle.PresentBlocks())
		}
		status.Zones = append(status.Zones, zs)
	}

	for _, req := range c.requests {
		status.Requests = append(status.Requests, RequestStatus{
			ID:            req.ID.String(),
			Zone:          int(req.Zone),
			State:         req.State.String(),
			DespawnOthers: req.DespawnOthers,
			Degraded:      req.Degraded,
			SpawnedTicks:  req.spawnedTicks,
			PendingAssets: req.pending,
			Settle:        req.settle,
		})
	}

	c.metrics.requestsInflight.Set(float64(len(c.requests)))
	c.metrics.spawnedZones.Set(float64(len(c.cache.Spawned())))

	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
}

// ZoneState состояние слота зоны в кэше
func (c *Controller) ZoneState(id zone.ID) SlotState {
	return c.cache.State(id)
}
