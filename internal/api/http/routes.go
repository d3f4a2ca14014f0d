package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weatherboard/internal/autocomplete"
	"github.com/i474232898/weatherboard/internal/chess"
	"github.com/i474232898/weatherboard/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	if deps.Weather != nil {
		registerWeather(v1, deps)
	}
	if deps.Sessions != nil {
		registerSessions(v1, deps)
	}
	if deps.Chess != nil {
		registerChess(v1, deps.Chess)
	}
}

// queryRequest is the body of synchronous and asynchronous lookups.
type queryRequest struct {
	Query string `json:"query" validate:"required,max=200"`
}

// listQuery holds query parameters for the record list.
type listQuery struct {
	Order string `query:"order" validate:"omitempty,oneof=newest oldest"`
	Units string `query:"units" validate:"omitempty,oneof=metric imperial"`
}

func (q listQuery) units() units {
	if q.Units == string(unitsImperial) {
		return unitsImperial
	}
	return unitsMetric
}

func registerWeather(v1 fiber.Router, deps Deps) {
	svc := deps.Weather

	v1.Post("/weather", func(c *fiber.Ctx) error {
		var req queryRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		record, err := svc.FetchWeather(c.UserContext(), weather.PlaceQuery(req.Query))
		if err != nil {
			return pipelineError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(present(record, unitsFromQuery(c)))
	})

	v1.Get("/weather", func(c *fiber.Ctx) error {
		var q listQuery
		if err := c.QueryParser(&q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(fiber.Map{
			"capacity": svc.Capacity(),
			"records":  presentAll(svc.Records(), q.Order, q.units()),
		})
	})

	v1.Delete("/weather/:id", func(c *fiber.Ctx) error {
		svc.Remove(c.Params("id"))
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Post("/lookups", func(c *fiber.Ctx) error {
		var req queryRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		attempt := svc.Begin(weather.PlaceQuery(req.Query), deps.LookupTimeout)
		c.Location("/api/v1/lookups/" + attempt.ID)
		return c.Status(fiber.StatusAccepted).JSON(attempt)
	})

	v1.Get("/lookups/:id", func(c *fiber.Ctx) error {
		attempt, err := svc.Attempt(c.Params("id"))
		if err != nil {
			if errors.Is(err, weather.ErrAttemptNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "lookup not found")
			}
			return err
		}
		return c.JSON(attempt)
	})
}

type textRequest struct {
	Text string `json:"text" validate:"max=200"`
}

type selectRequest struct {
	Index *int `json:"index" validate:"required,min=0"`
}

func registerSessions(v1 fiber.Router, deps Deps) {
	sessions := deps.Sessions

	lookup := func(c *fiber.Ctx) (*autocomplete.Controller, error) {
		ctrl, err := sessions.Get(c.Params("id"))
		if err != nil {
			return nil, fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		return ctrl, nil
	}

	v1.Post("/sessions", func(c *fiber.Ctx) error {
		id, _ := sessions.Open()
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
	})

	v1.Put("/sessions/:id/query", func(c *fiber.Ctx) error {
		ctrl, err := lookup(c)
		if err != nil {
			return err
		}
		var req textRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		ctrl.QueryChanged(req.Text)
		return c.Status(fiber.StatusAccepted).JSON(ctrl.Suggestions())
	})

	v1.Get("/sessions/:id/suggestions", func(c *fiber.Ctx) error {
		ctrl, err := lookup(c)
		if err != nil {
			return err
		}
		return c.JSON(ctrl.Suggestions())
	})

	v1.Post("/sessions/:id/select", func(c *fiber.Ctx) error {
		ctrl, err := lookup(c)
		if err != nil {
			return err
		}
		var req selectRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		record, err := ctrl.Select(c.UserContext(), *req.Index)
		if err != nil {
			return sessionError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(present(record, unitsFromQuery(c)))
	})

	v1.Post("/sessions/:id/search", func(c *fiber.Ctx) error {
		ctrl, err := lookup(c)
		if err != nil {
			return err
		}
		record, err := ctrl.Submit(c.UserContext())
		if err != nil {
			return sessionError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(present(record, unitsFromQuery(c)))
	})

	v1.Delete("/sessions/:id", func(c *fiber.Ctx) error {
		sessions.Close(c.Params("id"))
		return c.SendStatus(fiber.StatusNoContent)
	})
}

type moveRequest struct {
	From      string `json:"from" validate:"required,len=2"`
	To        string `json:"to" validate:"required,len=2"`
	Promotion string `json:"promotion" validate:"omitempty,oneof=q r b n"`
}

func registerChess(v1 fiber.Router, game *chess.Game) {
	v1.Get("/chess", func(c *fiber.Ctx) error {
		return c.JSON(game.Snapshot())
	})

	v1.Post("/chess/start", func(c *fiber.Ctx) error {
		game.Start()
		return c.JSON(game.Snapshot())
	})

	v1.Post("/chess/reset", func(c *fiber.Ctx) error {
		game.Reset()
		return c.JSON(game.Snapshot())
	})

	v1.Post("/chess/move", func(c *fiber.Ctx) error {
		var req moveRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		if err := game.Move(req.From, req.To, req.Promotion); err != nil {
			if errors.Is(err, chess.ErrIllegalMove) {
				return fiber.NewError(fiber.StatusUnprocessableEntity, "illegal move")
			}
			return err
		}
		return c.JSON(game.Snapshot())
	})
}

func bindJSON(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func unitsFromQuery(c *fiber.Ctx) units {
	if c.Query("units") == string(unitsImperial) {
		return unitsImperial
	}
	return unitsMetric
}

// pipelineError maps a resolution failure to a status and its user message.
func pipelineError(err error) error {
	msg := weather.UserMessage(err)
	switch {
	case weather.IsCancelled(err):
		return fiber.NewError(fiber.StatusRequestTimeout, "request cancelled")
	case errors.Is(err, weather.ErrLocationNotFound):
		return fiber.NewError(fiber.StatusNotFound, msg)
	case errors.Is(err, weather.ErrWeatherUnavailable):
		return fiber.NewError(fiber.StatusBadGateway, msg)
	case errors.Is(err, weather.ErrNetwork):
		return fiber.NewError(fiber.StatusServiceUnavailable, msg)
	default:
		return fiber.NewError(fiber.StatusInternalServerError, msg)
	}
}

func sessionError(err error) error {
	switch {
	case errors.Is(err, autocomplete.ErrNoSuggestion):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, autocomplete.ErrNotSearchable):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, autocomplete.ErrClosed):
		return fiber.NewError(fiber.StatusGone, err.Error())
	default:
		return pipelineError(err)
	}
}
