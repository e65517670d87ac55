package handler

import (
	"strconv"

	"fmcg-admin-api/internal/model"
	"fmcg-admin-api/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// envelope is the body every /api endpoint answers with.
type envelope struct {
	Success        bool                 `json:"success"`
	Data           interface{}          `json:"data,omitempty"`
	Error          string               `json:"error,omitempty"`
	Message        string               `json:"message,omitempty"`
	InactiveOffers *[]model.Offer       `json:"inactive_offers,omitempty"`
	Overlaps       []model.OfferSummary `json:"overlaps,omitempty"`
}

// offerList makes inactive_offers present as a list, empty included.
func offerList(offers []model.Offer) *[]model.Offer {
	if offers == nil {
		offers = []model.Offer{}
	}
	return &offers
}

func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(envelope{Success: true, Data: data})
}

func okMessage(c *fiber.Ctx, data interface{}, msg string) error {
	return c.JSON(envelope{Success: true, Data: data, Message: msg})
}

func created(c *fiber.Ctx, data interface{}, msg string) error {
	return c.Status(fiber.StatusCreated).JSON(envelope{Success: true, Data: data, Message: msg})
}

// paramID reads a positive integer path parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return nil
}

// pageQuery reads ?page=&limit= for history listings.
func pageQuery(c *fiber.Ctx) repository.Page {
	return repository.Page{Page: c.QueryInt("page", 1), Limit: c.QueryInt("limit", 0)}
}
