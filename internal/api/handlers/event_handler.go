package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/internal/api/presenters"
	"AgriWaste-Marketplace/pkg/events"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

const heartbeatInterval = 15 * time.Second

type (
	EventHandler interface {
		Stream(c *fiber.Ctx) error
	}

	eventHandler struct {
		broker events.Broker
		log    *logrus.Logger
	}
)

func NewEventHandler(broker events.Broker, logger *logrus.Logger) EventHandler {
	return &eventHandler{
		broker: broker,
		log:    logger,
	}
}

// Stream pushes the caller's events as server-sent events. The optional
// search and status parameters narrow listing events the same way the
// listing query does; every other event type passes through.
func (h *eventHandler) Stream(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	role := c.Locals("role").(string)

	filter, err := domain.NewListingFilter(c.Query("search"), c.Query("status", domain.ListingStatusAll))
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetListings, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	sub := h.broker.Subscribe(userID, role)
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer h.broker.Unsubscribe(sub)

		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		fmt.Fprintf(w, ": connected %s\n\n", sub.ID)
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case event, ok := <-sub.C:
				if !ok {
					return
				}
				if !eventVisible(event, filter) {
					continue
				}
				if err := writeEvent(w, event); err != nil {
					h.log.WithError(err).WithField("user_id", userID).Debug("event stream closed")
					return
				}
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}

func eventVisible(event domain.Event, filter domain.ListingFilter) bool {
	if event.Type != domain.EventListingCreated && event.Type != domain.EventListingUpdated {
		return true
	}
	listing, ok := event.Payload.(*domain.Listing)
	if !ok || listing == nil {
		return true
	}
	return filter.Matches(*listing)
}

func writeEvent(w *bufio.Writer, event domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Type, data)
	return w.Flush()
}
