package httpapi

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// heartbeatInterval keeps idle connections alive through proxies and lets
// the server notice a gone client between events.
const heartbeatInterval = 15 * time.Second

// streamNotifications serves the event stream. A userId query scopes the
// stream to one volunteer's events plus broadcasts; without it the
// connection is an admin firehose receiving everything.
func (s *Server) streamNotifications(c *fiber.Ctx) error {
	userID := c.Query("userId")

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	sub := s.registry.Register(userID)
	s.logger.Info("Notification stream opened", zap.String("user_id", userID))

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer func() {
			s.registry.Remove(sub)
			s.logger.Info("Notification stream closed", zap.String("user_id", userID))
		}()

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()
		for {
			select {
			case event, ok := <-sub.Events():
				if !ok {
					return
				}
				payload, err := json.Marshal(event)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
				if err := w.Flush(); err != nil {
					return
				}
			case <-heartbeat.C:
				fmt.Fprint(w, ": keep-alive\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}
