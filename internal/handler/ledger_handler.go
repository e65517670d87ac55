package handler

import (
	"fmt"

	"fmcg-admin-api/internal/model"
	"fmcg-admin-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

// LedgerHandler serves one quantity ledger. The stock, free stock and
// external item routes each get their own instance.
type LedgerHandler struct {
	service service.LedgerService
	kind    model.LedgerKind
}

func NewLedgerHandler(s service.LedgerService, kind model.LedgerKind) *LedgerHandler {
	return &LedgerHandler{service: s, kind: kind}
}

func (h *LedgerHandler) List(c *fiber.Ctx) error {
	var (
		data interface{}
		err  error
	)
	switch h.kind {
	case model.LedgerFreeStock:
		data, err = h.service.ListFreeStock(c.UserContext())
	default:
		data, err = h.service.ListStock(c.UserContext())
	}
	if err != nil {
		return err
	}
	return ok(c, data)
}

// Get returns the ledger row of one product.
func (h *LedgerHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var data interface{}
	switch h.kind {
	case model.LedgerFreeStock:
		data, err = h.service.GetFreeStock(c.UserContext(), id)
	default:
		data, err = h.service.GetStock(c.UserContext(), id)
	}
	if err != nil {
		return err
	}
	return ok(c, data)
}

func (h *LedgerHandler) Add(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req service.AdjustRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.service.Add(c.UserContext(), h.kind, id, req)
	if err != nil {
		return err
	}

	out := envelope{Success: true, Data: res, Message: fmt.Sprintf("Added %d units successfully", *req.Quantity)}
	if h.kind == model.LedgerFreeStock {
		out.Message = fmt.Sprintf("Added %d units to free stock", *req.Quantity)
		out.InactiveOffers = offerList(res.InactiveOffers)
	}
	return c.JSON(out)
}

// Update overwrites the quantity. Requires the admin PIN.
func (h *LedgerHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req service.AdjustRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.service.Set(c.UserContext(), h.kind, id, req)
	if err != nil {
		return err
	}
	return okMessage(c, res, "Stock updated successfully")
}

type thresholdRequest struct {
	LowStockThreshold *int `json:"low_stock_threshold"`
}

func (h *LedgerHandler) Threshold(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req thresholdRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.service.SetThreshold(c.UserContext(), h.kind, id, req.LowStockThreshold); err != nil {
		return err
	}
	return okMessage(c, fiber.Map{"low_stock_threshold": *req.LowStockThreshold}, "Threshold updated successfully")
}

// History lists every entry of the ledger, newest first.
func (h *LedgerHandler) History(c *fiber.Ctx) error {
	var (
		data interface{}
		err  error
	)
	switch h.kind {
	case model.LedgerFreeStock:
		data, err = h.service.FreeStockHistory(c.UserContext(), nil, pageQuery(c))
	default:
		data, err = h.service.StockHistory(c.UserContext(), nil, pageQuery(c))
	}
	if err != nil {
		return err
	}
	return ok(c, data)
}

// HistoryFor lists the entries of one subject, newest first.
func (h *LedgerHandler) HistoryFor(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var data interface{}
	switch h.kind {
	case model.LedgerFreeStock:
		data, err = h.service.FreeStockHistory(c.UserContext(), &id, pageQuery(c))
	case model.LedgerExternalItem:
		data, err = h.service.ExternalItemHistory(c.UserContext(), id, pageQuery(c))
	default:
		data, err = h.service.StockHistory(c.UserContext(), &id, pageQuery(c))
	}
	if err != nil {
		return err
	}
	return ok(c, data)
}
