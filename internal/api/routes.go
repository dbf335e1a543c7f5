package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/commodity-desk/pricer/internal/store"
)

// RegisterRoutes wires the market-data API onto the fiber app. nc may be nil
// when event publishing is disabled; the health check then skips it.
func RegisterRoutes(app *fiber.App, nc *nats.Conn, st store.Store, handler *MarketDataHandler) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		checks := map[string]string{
			"store": "ok",
		}
		status := "ok"
		code := fiber.StatusOK

		if nc != nil {
			checks["nats"] = "ok"
			if !nc.IsConnected() {
				checks["nats"] = "disconnected"
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			}
		}

		healthCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := st.HealthCheck(healthCtx); err != nil {
			checks["store"] = err.Error()
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	})

	// API routes
	app.Post("/market_data", handler.CreateMarketDataHandler)
	app.Get("/market_data", handler.ListMarketDataHandler)
	app.Get("/market_data/:id", handler.GetMarketDataHandler)
	app.Get("/market_data/:id/expiry", handler.ExpiryHandler)
	app.Post("/option_pricing/:id", handler.PriceHandler)
}
