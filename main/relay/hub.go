package relay

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v5"
	"github.com/rs/zerolog/log"
)

// Hub owns the registry and the routing components shared by every connection.
type Hub struct {
	Registry    *Registry
	Broadcaster *Broadcaster
	Dispatcher  *Dispatcher
	opts        SocketOptions
	upgrader    websocket.Upgrader
}

func NewHub(opts SocketOptions) *Hub {
	registry := NewRegistry()
	trackRegistry(registry)
	broadcaster := NewBroadcaster(registry)

	return &Hub{
		Registry:    registry,
		Broadcaster: broadcaster,
		Dispatcher:  NewDispatcher(registry, broadcaster),
		opts:        opts.withDefaults(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWebSocket upgrades the request and blocks until the participant disconnects.
func (h *Hub) HandleWebSocket(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already answered the request
		log.Err(err).Msg("websocket upgrade failed")
		return nil
	}

	newSocket(ws, h.opts).serve(h.Dispatcher)
	return nil
}

// Mount registers the websocket endpoint and the read-only status routes on g.
func (h *Hub) Mount(g *echo.Group) {
	g.GET("/ws", h.HandleWebSocket)

	g.GET("/status", func(c echo.Context) error {
		return c.JSON(http.StatusOK, h.Registry.Status())
	})

	g.GET("/cameras", func(c echo.Context) error {
		return c.JSON(http.StatusOK, h.Registry.ListCameras())
	})
}
