package handler

import (
	"fmt"

	"fmcg-admin-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CompanyHandler struct {
	service service.CompanyService
}

func NewCompanyHandler(s service.CompanyService) *CompanyHandler {
	return &CompanyHandler{service: s}
}

// Create accepts multipart (company_name + optional company_logo) or JSON.
func (h *CompanyHandler) Create(c *fiber.Ctx) error {
	var req service.CompanyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	logo, done, err := singleImage(c, "company_logo")
	if err != nil {
		return err
	}
	defer done()

	company, err := h.service.Create(c.UserContext(), req, logo)
	if err != nil {
		return err
	}
	return created(c, company, "Company added successfully")
}

func (h *CompanyHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req service.CompanyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	logo, done, err := singleImage(c, "company_logo")
	if err != nil {
		return err
	}
	defer done()

	company, err := h.service.Update(c.UserContext(), id, req, logo)
	if err != nil {
		return err
	}
	return okMessage(c, company, "Company updated successfully")
}

func (h *CompanyHandler) List(c *fiber.Ctx) error {
	companies, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, companies)
}

func (h *CompanyHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	company, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, company)
}

type deleteRequest struct {
	PIN string `json:"pin"`
}

// Delete cascades to the company's products, stock rows and offers.
func (h *CompanyHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req deleteRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	company, err := h.service.Delete(c.UserContext(), id, req.PIN)
	if err != nil {
		return err
	}
	return c.JSON(envelope{
		Success: true,
		Message: fmt.Sprintf("Company %q and all associated products/offers deleted successfully", company.CompanyName),
	})
}
