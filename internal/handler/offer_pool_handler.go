package handler

import (
	"fmt"

	"fmcg-admin-api/internal/model"
	"fmcg-admin-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type OfferPoolHandler struct {
	service service.OfferPoolService
}

func NewOfferPoolHandler(s service.OfferPoolService) *OfferPoolHandler {
	return &OfferPoolHandler{service: s}
}

func (h *OfferPoolHandler) List(c *fiber.Ctx) error {
	pools, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, pools)
}

func (h *OfferPoolHandler) History(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	rows, err := h.service.History(c.UserContext(), id, pageQuery(c))
	if err != nil {
		return err
	}
	return ok(c, rows)
}

// Transfer moves pooled units into regular or free stock.
func (h *OfferPoolHandler) Transfer(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req service.PoolTransferRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.service.Transfer(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	out := envelope{
		Success: true,
		Data:    res,
		Message: fmt.Sprintf("Transferred %d items to %s stock", *req.Quantity, req.TransferTo),
	}
	if req.TransferTo == string(model.DestinationFree) {
		out.InactiveOffers = offerList(res.InactiveOffers)
	}
	return c.JSON(out)
}

func (h *OfferPoolHandler) Deduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req service.PoolDeductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.service.Deduct(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return okMessage(c, res, fmt.Sprintf("Deducted %d items from pool", *req.Quantity))
}

func (h *OfferPoolHandler) Accumulate(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req service.PoolAccumulateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.service.Accumulate(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return okMessage(c, res, fmt.Sprintf("Accumulated %d items in pool", *req.Quantity))
}
