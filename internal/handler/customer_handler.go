package handler

import (
	"fmcg-admin-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CustomerHandler struct {
	service service.CustomerService
}

func NewCustomerHandler(s service.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: s}
}

func (h *CustomerHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterCustomerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	customer, err := h.service.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	return created(c, customer, "Customer registered successfully!")
}

func (h *CustomerHandler) List(c *fiber.Ctx) error {
	customers, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, customers)
}

// Nearby takes ?latitude=&longitude=&radius= (meters).
func (h *CustomerHandler) Nearby(c *fiber.Ctx) error {
	var q service.NearbyQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}
	customers, err := h.service.Nearby(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(envelope{Success: true, Data: customers})
}
