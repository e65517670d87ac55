package handler

import (
	"fmt"

	"fmcg-admin-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	service service.ProductService
}

func NewProductHandler(s service.ProductService) *ProductHandler {
	return &ProductHandler{service: s}
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req service.ProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	images, done, err := multiImages(c, "product_images")
	if err != nil {
		return err
	}
	defer done()

	product, err := h.service.Create(c.UserContext(), req, images)
	if err != nil {
		return err
	}
	return created(c, product, "Product added successfully")
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req service.ProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	images, done, err := multiImages(c, "product_images")
	if err != nil {
		return err
	}
	defer done()

	product, err := h.service.Update(c.UserContext(), id, req, images)
	if err != nil {
		return err
	}
	return okMessage(c, product, "Product updated successfully")
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, products)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	product, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, product)
}

func (h *ProductHandler) ToggleOffer(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req service.ToggleHasOfferRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	product, err := h.service.SetHasOffer(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return okMessage(c, product, "Product updated successfully")
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	product, err := h.service.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(envelope{
		Success: true,
		Message: fmt.Sprintf("Product %q and all associated offers deleted successfully", product.ProductName),
	})
}
