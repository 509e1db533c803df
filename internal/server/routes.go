package server

import (
	"errors"
	"strings"

	"starpos-backend/internal/audit"
	"starpos-backend/internal/auth"
	"starpos-backend/internal/checkout"
	"starpos-backend/internal/inventory"
	"starpos-backend/internal/ledger"
	"starpos-backend/internal/notification"
	"starpos-backend/internal/product"
	"starpos-backend/internal/profile"
	"starpos-backend/internal/receipt"
	"starpos-backend/internal/report"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Options struct {
	CORSOrigins string
	JWTSecret   string
	// Gatherer serves /metrics when set.
	Gatherer prometheus.Gatherer
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var e *fiber.Error
		if errors.As(err, &e) {
			return c.Status(e.Code).JSON(fiber.Map{
				"error": e.Message,
			})
		}
		log.Error("unexpected error", zap.String("method", c.Method()), zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed, please try again",
		})
	}
}

func NewApp(s *Services, opts Options, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler(log),
	})

	corsOrigins := strings.Split(opts.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if opts.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/signup", auth.SignUpHandler(s.Auth))
	api.Post("/auth/login", auth.LoginHandler(s.Auth))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(opts.JWTSecret))

	protected.Get("/auth/me", auth.MeHandler(s.Auth))
	protected.Put("/auth/password", auth.ChangePasswordHandler(s.Auth))

	protected.Get("/profile", profile.GetProfileHandler(s.Profile))
	protected.Put("/profile", profile.UpdateProfileHandler(s.Profile))

	// Inventory
	protected.Get("/ingredients", inventory.ListIngredientsHandler(s.Ingredients, s.Evaluator))
	protected.Get("/ingredients/low-stock", inventory.LowStockHandler(s.Ingredients, s.Evaluator))
	protected.Post("/ingredients", inventory.CreateIngredientHandler(s.Ingredients, s.Evaluator))
	protected.Put("/ingredients/:id/quantity", inventory.UpdateQuantityHandler(s.Ingredients, s.Evaluator))
	protected.Post("/ingredients/:id/restock", inventory.RestockHandler(s.Ingredients, s.Evaluator))
	protected.Delete("/ingredients/:id", inventory.DeleteIngredientHandler(s.Ingredients, s.Products))
	protected.Get("/ingredients/:id/movements", audit.ListMovementsHandler(s.Journal))
	protected.Get("/stock-movements", audit.ListAllMovementsHandler(s.Journal))

	// Products
	protected.Get("/products", product.ListProductsHandler(s.Products))
	protected.Post("/products", product.CreateProductHandler(s.Products))
	protected.Get("/products/:id", product.GetProductHandler(s.Products))
	protected.Put("/products/:id", product.UpdateProductHandler(s.Products))
	protected.Delete("/products/:id", product.DeleteProductHandler(s.Products))

	// Checkout
	protected.Post("/checkout/quote", checkout.QuoteHandler(s.Checkout))
	protected.Post("/checkout/complete", checkout.CompleteHandler(s.Checkout))

	// Transactions
	protected.Get("/transactions", ledger.ListTransactionsHandler(s.Ledger))
	protected.Get("/transactions/next-receipt", ledger.NextReceiptHandler(s.Ledger))
	protected.Get("/transactions/:id", ledger.GetTransactionHandler(s.Ledger))
	protected.Delete("/transactions/:id", ledger.DeleteTransactionHandler(s.Ledger))
	protected.Get("/transactions/:id/receipt.pdf", ledger.ReceiptHandler(s.Ledger, s.Profile, receipt.Render))

	// Notifications
	protected.Get("/notifications", notification.ListNotificationsHandler(s.Notifications))
	protected.Get("/notifications/unread-count", notification.UnreadCountHandler(s.Notifications))
	protected.Put("/notifications/:id/read", notification.MarkAsReadHandler(s.Notifications))
	protected.Delete("/notifications/:id", notification.DeleteNotificationHandler(s.Notifications))

	// Reports
	protected.Get("/reports/sales", report.SalesReportHandler(s.Ledger, s.Clock))
	protected.Get("/reports/sales.xlsx", report.SalesReportXLSXHandler(s.Ledger, s.Clock))

	return app
}
