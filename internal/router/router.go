// Package router builds the fiber app: global middleware and every route.
package router

import (
	"fmcg-admin-api/internal/config"
	"fmcg-admin-api/internal/handler"
	"fmcg-admin-api/internal/middleware"
	"fmcg-admin-api/internal/model"
	"fmcg-admin-api/internal/service"
	"fmcg-admin-api/internal/ws"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services is everything the routes call into.
type Services struct {
	Ledger    service.LedgerService
	Pools     service.OfferPoolService
	Offers    service.OfferService
	Companies service.CompanyService
	Products  service.ProductService
	Items     service.ExternalItemService
	Customers service.CustomerService
	Dashboard service.DashboardService
}

// New wires middleware and routes. hub and health may be nil.
func New(cfg *config.Config, svc Services, hub *ws.Hub, health fiber.Handler) *fiber.App {
	bodyLimit := cfg.BodyLimitMB
	if bodyLimit <= 0 {
		bodyLimit = 60
	}
	app := fiber.New(fiber.Config{
		AppName:      "FMCG Admin API",
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    bodyLimit << 20,
	})

	// Order matters: request id first so every log line carries it
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(middleware.Metrics())
	app.Use(middleware.RequestLogger())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins(),
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	if health != nil {
		app.Get("/health", health)
	}
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	if hub != nil {
		app.Use("/ws", ws.Upgrade)
		app.Get("/ws", hub.Handler())
	}

	api := app.Group("/api")
	api.Get("/test", handler.Test)

	// Quantity ledgers
	stockH := handler.NewLedgerHandler(svc.Ledger, model.LedgerStock)
	stock := api.Group("/stock")
	stock.Get("/", stockH.List)
	stock.Get("/history", stockH.History)
	stock.Get("/history/:id", stockH.HistoryFor)
	stock.Get("/product/:id", stockH.Get)
	stock.Post("/:id/add", stockH.Add)
	stock.Put("/:id/update", stockH.Update)
	stock.Put("/:id/threshold", stockH.Threshold)

	freeH := handler.NewLedgerHandler(svc.Ledger, model.LedgerFreeStock)
	free := api.Group("/free-stock")
	free.Get("/", freeH.List)
	free.Get("/history", freeH.History)
	free.Get("/history/:id", freeH.HistoryFor)
	free.Get("/product/:id", freeH.Get)
	free.Post("/:id/add", freeH.Add)
	free.Put("/:id/update", freeH.Update)

	itemH := handler.NewExternalItemHandler(svc.Items)
	itemLedgerH := handler.NewLedgerHandler(svc.Ledger, model.LedgerExternalItem)
	items := api.Group("/external-items")
	items.Post("/", itemH.Create)
	items.Get("/", itemH.List)
	items.Get("/history/:id", itemLedgerH.HistoryFor)
	items.Get("/:id", itemH.Get)
	items.Post("/:id/add", itemLedgerH.Add)
	items.Put("/:id/update", itemLedgerH.Update)
	items.Put("/:id/threshold", itemLedgerH.Threshold)
	items.Delete("/:id", itemH.Delete)

	// Offers and their pools
	poolH := handler.NewOfferPoolHandler(svc.Pools)
	pools := api.Group("/offer-pool")
	pools.Get("/", poolH.List)
	pools.Get("/history/:id", poolH.History)
	pools.Post("/:id/transfer", poolH.Transfer)
	pools.Post("/:id/deduct", poolH.Deduct)
	pools.Post("/:id/accumulate", poolH.Accumulate)

	offerH := handler.NewOfferHandler(svc.Offers)
	offers := api.Group("/offers")
	offers.Post("/", offerH.Create)
	offers.Get("/", offerH.List)
	offers.Get("/check-overlaps/:productId", offerH.CheckOverlaps)
	offers.Get("/:id", offerH.Get)
	offers.Put("/:id", offerH.Update)
	offers.Delete("/:id", offerH.Delete)

	// Catalog
	companyH := handler.NewCompanyHandler(svc.Companies)
	companies := api.Group("/companies")
	companies.Post("/", companyH.Create)
	companies.Get("/", companyH.List)
	companies.Get("/:id", companyH.Get)
	companies.Put("/:id", companyH.Update)
	companies.Delete("/:id", companyH.Delete)

	productH := handler.NewProductHandler(svc.Products)
	products := api.Group("/products")
	products.Post("/", productH.Create)
	products.Get("/", productH.List)
	products.Get("/:id", productH.Get)
	products.Put("/:id/toggle-offer", productH.ToggleOffer)
	products.Put("/:id", productH.Update)
	products.Delete("/:id", productH.Delete)

	customerH := handler.NewCustomerHandler(svc.Customers)
	customers := api.Group("/customers")
	customers.Post("/", customerH.Register)
	customers.Get("/", customerH.List)
	customers.Get("/nearby", customerH.Nearby)

	dashH := handler.NewDashboardHandler(svc.Dashboard)
	api.Get("/dashboard/stats", dashH.GetDashboardStats)
	api.Get("/dashboard/stock-movement", dashH.GetStockMovement)

	return app
}
