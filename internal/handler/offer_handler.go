package handler

import (
	"fmcg-admin-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type OfferHandler struct {
	service service.OfferService
}

func NewOfferHandler(s service.OfferService) *OfferHandler {
	return &OfferHandler{service: s}
}

// Create answers 201 with any overlapping active offers as a warning.
func (h *OfferHandler) Create(c *fiber.Ctx) error {
	var req service.CreateOfferRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	msg := "Offer added successfully"
	if res.Message != "" {
		msg = res.Message
	}
	return c.Status(fiber.StatusCreated).JSON(envelope{
		Success:  true,
		Data:     res.Offer,
		Message:  msg,
		Overlaps: res.Overlaps,
	})
}

func (h *OfferHandler) List(c *fiber.Ctx) error {
	offers, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, offers)
}

func (h *OfferHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	offer, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, offer)
}

// Update toggles is_active.
func (h *OfferHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req service.UpdateOfferRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	offer, err := h.service.SetActive(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return okMessage(c, offer, "Offer updated successfully")
}

func (h *OfferHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(envelope{Success: true, Message: "Offer deleted successfully"})
}

// CheckOverlaps lists active offers on a product; ?exclude= skips one offer.
func (h *OfferHandler) CheckOverlaps(c *fiber.Ctx) error {
	productID, err := paramID(c, "productId")
	if err != nil {
		return err
	}
	var exclude *uint
	if v := c.QueryInt("exclude", 0); v > 0 {
		id := uint(v)
		exclude = &id
	}
	overlaps, err := h.service.FindOverlaps(c.UserContext(), productID, exclude)
	if err != nil {
		return err
	}
	return ok(c, fiber.Map{"has_overlaps": len(overlaps) > 0, "overlaps": overlaps})
}
