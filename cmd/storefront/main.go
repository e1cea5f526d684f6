package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/digitalhat/storefront/internal/api"
	"github.com/digitalhat/storefront/internal/app"
	"github.com/digitalhat/storefront/internal/config"
	"github.com/digitalhat/storefront/internal/events"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg.Log)

	application, err := app.New(cfg, log)
	if err != nil {
		log.Error("failed to build application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer application.Close()

	// Render toasts to stdout; a UI would subscribe the same way.
	application.Bus.SubscribeNotification(func(n events.Notification) {
		fmt.Printf("[%s] %s\n", n.Level, n.Message)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	application.Hydrate(ctx)

	if err := runDemo(ctx, application, log); err != nil {
		log.Error("demo flow failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runDemo walks the storefront flow end to end against the configured
// backend: browse, sign in, fill the cart, check out.
func runDemo(ctx context.Context, a *app.App, log *slog.Logger) error {
	list, err := a.Catalog.FetchProducts(ctx, api.SearchParams{})
	if err != nil {
		return fmt.Errorf("fetch products: %w", err)
	}
	log.Info("catalog loaded", slog.Int("products", len(list.Products)))
	if len(list.Products) == 0 {
		return nil
	}

	email := os.Getenv("DEMO_EMAIL")
	password := os.Getenv("DEMO_PASSWORD")
	if email == "" {
		log.Info("no DEMO_EMAIL set, stopping after catalog browse")
		return nil
	}

	if err := a.Login(ctx, email, password); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	user := a.Session.Current()
	log.Info("signed in", slog.String("user", user.FullName), slog.String("role", string(user.Role)))

	first := list.Products[0]
	if err := a.Cart.Add(ctx, first.ID, 2); err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	log.Info("cart updated", slog.Int("itemCount", a.Cart.Cart().ItemCount()))

	snapshot, err := a.Checkout.ProceedToCheckout(ctx, nil)
	if err != nil {
		return fmt.Errorf("proceed to checkout: %w", err)
	}
	log.Info("checkout ready",
		slog.String("subtotal", snapshot.Totals.Subtotal.String()),
		slog.String("total", snapshot.Totals.Total.String()))

	order, err := a.Checkout.PlaceOrder(ctx)
	if err != nil {
		return fmt.Errorf("place order: %w", err)
	}
	log.Info("order placed", slog.String("orderId", order.ID), slog.String("status", order.Status.String()))

	a.Logout()
	return nil
}

func newLogger(cfg config.Log) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
