package handler

import (
	"fmcg-admin-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ExternalItemHandler covers the catalog side of external items. Their
// quantity routes go through a LedgerHandler.
type ExternalItemHandler struct {
	service service.ExternalItemService
}

func NewExternalItemHandler(s service.ExternalItemService) *ExternalItemHandler {
	return &ExternalItemHandler{service: s}
}

func (h *ExternalItemHandler) Create(c *fiber.Ctx) error {
	var req service.ExternalItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	image, done, err := singleImage(c, "item_image")
	if err != nil {
		return err
	}
	defer done()

	item, err := h.service.Create(c.UserContext(), req, image)
	if err != nil {
		return err
	}
	return created(c, item, "External item added successfully")
}

func (h *ExternalItemHandler) List(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, items)
}

func (h *ExternalItemHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	item, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, item)
}

type adminPINRequest struct {
	PIN string `json:"admin_pin"`
}

func (h *ExternalItemHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req adminPINRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	if err := h.service.Delete(c.UserContext(), id, req.PIN); err != nil {
		return err
	}
	return c.JSON(envelope{Success: true, Message: "External item deleted successfully"})
}
