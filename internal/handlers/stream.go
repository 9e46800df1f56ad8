package handlers

import (
	"bufio"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/rentalmanager/internal/gateway"
	"github.com/localnerve/rentalmanager/internal/logger"
	"github.com/localnerve/rentalmanager/internal/middleware"
	"github.com/localnerve/rentalmanager/internal/models"
	"github.com/localnerve/rentalmanager/internal/utils"
)

// SessionStream is the stream name of the session state
const SessionStream = "session"

// DefaultHeartbeat is the interval of keep-alive comments on idle streams
const DefaultHeartbeat = 15 * time.Second

// StreamHandler serves observables as Server-Sent Events. Each event carries the whole
// current value; a client that falls behind only sees the latest one.
type StreamHandler struct {
	Heartbeat time.Duration
	// Done ends every open stream when closed
	Done <-chan struct{}
}

// latest keeps only the newest pending value
type latest chan interface{}

func (l latest) push(v interface{}) {
	for {
		select {
		case l <- v:
			return
		default:
		}
		select {
		case <-l:
		default:
		}
	}
}

// Stream handles GET /api/stream/:collection
// @Summary Stream a collection or the session
// @Description Server-Sent Events; every event is the full snapshot. Use "session" for session state.
// @Tags Stream
// @Produce text/event-stream
// @Param collection path string true "tenants, properties, payments, occupancies or session"
// @Success 200 {string} string "event stream"
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /stream/{collection} [get]
func (h *StreamHandler) Stream(c *fiber.Ctx) error {
	gw := middleware.GatewayFrom(c)
	name := c.Params("collection")
	updates := make(latest, 1)

	var sub *gateway.Subscription
	if name == SessionStream {
		sub = gw.Session().Subscribe(func(s gateway.SessionState) { updates.push(s) })
	} else {
		collection, err := models.ParseCollection(name)
		if err != nil {
			return utils.NotFoundResponse(c, err.Error())
		}
		if sub, err = gw.Observe(collection, updates.push); err != nil {
			return utils.NotFoundResponse(c, err.Error())
		}
	}

	heartbeat := h.Heartbeat
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	log := logger.FromFiber(c).WithField("stream", name)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer sub.Unsubscribe()
		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()

		for {
			select {
			case v := <-updates:
				data, err := json.Marshal(v)
				if err != nil {
					log.WithError(err).Warn("cannot encode stream event")
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
			case <-ticker.C:
				gw.Touch()
				fmt.Fprint(w, ": ping\n\n")
			case <-h.Done:
				return
			}
			if err := w.Flush(); err != nil {
				// client went away
				return
			}
		}
	})
	return nil
}
