package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-card/internal/location"
	"github.com/i474232898/weather-card/internal/presentation"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app. Fixes posted
// to the API are pushed into feed; state is read from store.
func RegisterRoutes(app *fiber.App, store *presentation.Store, feed *location.Feed) {
	v1 := app.Group("/api/v1")

	v1.Get("/card", func(c *fiber.Ctx) error {
		card, err := store.Latest()
		if err != nil {
			if errors.Is(err, presentation.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather data loaded yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read weather card")
		}

		return c.JSON(card)
	})

	v1.Get("/state", func(c *fiber.Ctx) error {
		return c.JSON(store.Current())
	})

	v1.Post("/fixes", func(c *fiber.Ctx) error {
		var req fixRequest
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if feed.Subscribers() == 0 {
			return fiber.NewError(fiber.StatusServiceUnavailable, "location updates are not active")
		}

		fix := location.NewFix(*req.Latitude, *req.Longitude)
		feed.Push(fix)

		return c.Status(fiber.StatusAccepted).JSON(fix)
	})
}

// fixRequest is the body of POST /fixes. Pointers make zero coordinates
// distinguishable from missing ones.
type fixRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

func (r *fixRequest) bind(c *fiber.Ctx) error {
	if err := c.BodyParser(r); err != nil {
		return errors.New("invalid request body")
	}
	return validate.Struct(r)
}
