package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/digitalhat/storefront/internal/api"
	"github.com/digitalhat/storefront/internal/cart"
	"github.com/digitalhat/storefront/internal/catalog"
	"github.com/digitalhat/storefront/internal/checkout"
	"github.com/digitalhat/storefront/internal/config"
	"github.com/digitalhat/storefront/internal/events"
	"github.com/digitalhat/storefront/internal/notify"
	"github.com/digitalhat/storefront/internal/session"
	"github.com/digitalhat/storefront/internal/storage"
)

// App is the explicit application-state container. Every component gets
// its collaborators through the constructor; there are no ambient
// singletons.
type App struct {
	Config   *config.Config
	Log      *slog.Logger
	Store    storage.Store
	Bus      *events.Bus
	Notifier notify.Notifier
	Session  *session.Manager
	API      *api.Client
	Catalog  *catalog.Cache
	Cart     *cart.Synchronizer
	Checkout *checkout.Manager

	redisClient *redis.Client
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Log:    log,
		Bus:    events.NewBus(),
	}

	if cfg.Redis.Addr != "" {
		a.redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.Store = storage.NewRedisStore(a.redisClient, cfg.Redis.Namespace)
	} else {
		a.Store = storage.NewMemoryStore()
	}

	a.Notifier = notify.NewBusNotifier(a.Bus, log)
	a.Session = session.NewManager(a.Store, a.Bus, a.Notifier, log)
	a.API = api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, a.Session.Token, log)

	a.Catalog = catalog.NewCache(a.API, a.Notifier, clockwork.NewRealClock(), log)
	a.Catalog.SetDebounce(cfg.Search.Debounce)

	a.Cart = cart.NewSynchronizer(a.API, a.Session, a.Bus, a.Notifier, log)

	shipping, err := decimal.NewFromString(cfg.Checkout.ShippingFlatRate)
	if err != nil {
		return nil, fmt.Errorf("invalid shipping flat rate %q: %w", cfg.Checkout.ShippingFlatRate, err)
	}
	a.Checkout = checkout.NewManager(a.Store, a.API, a.Session, a.Cart, a.Notifier, shipping, log)

	// A session going anonymous (sign-out, expiry, another tab) drops
	// the local cart; it is a member-only concept.
	a.Bus.SubscribeSession(func(ev events.SessionChanged) {
		if ev.User == nil {
			a.Cart.Reset()
		}
	})

	return a, nil
}

// Hydrate restores state from persisted storage at app start: the
// session first, then the cart for member sessions.
func (a *App) Hydrate(ctx context.Context) {
	a.Session.Hydrate()

	user := a.Session.Current()
	if user != nil && user.Role.CanOwnCart() {
		if err := a.Cart.Fetch(ctx); err != nil {
			a.Log.Warn("cart hydration failed", slog.String("error", err.Error()))
		}
	}
}

// Login authenticates against the backend, persists the credentials and
// loads the member's cart.
func (a *App) Login(ctx context.Context, email, password string) error {
	resp, err := a.API.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		a.Notifier.Error("Sign in failed")
		return err
	}
	if err := a.Session.SignIn(&resp.User, resp.Token); err != nil {
		return err
	}
	if resp.User.Role.CanOwnCart() {
		if err := a.Cart.Fetch(ctx); err != nil {
			a.Log.Warn("cart fetch after login failed", slog.String("error", err.Error()))
		}
	}
	return nil
}

// Register starts signup; the returned response has no token until the
// OTP is verified.
func (a *App) Register(ctx context.Context, fullName, email, password string) error {
	_, err := a.API.Register(ctx, api.RegisterRequest{FullName: fullName, Email: email, Password: password})
	if err != nil {
		a.Notifier.Error("Registration failed")
		return err
	}
	a.Notifier.Info("Check your email for the verification code")
	return nil
}

// VerifyOTP completes signup and signs the new user in.
func (a *App) VerifyOTP(ctx context.Context, email, code string) error {
	resp, err := a.API.VerifyOTP(ctx, api.VerifyOTPRequest{Email: email, Code: code})
	if err != nil {
		a.Notifier.Error("Verification failed")
		return err
	}
	return a.Session.SignIn(&resp.User, resp.Token)
}

// Logout tears down the session: in-memory and persisted state both go.
func (a *App) Logout() {
	a.Session.SignOut()
	a.Cart.Reset()
	a.Checkout.Clear()
}

func (a *App) Close() error {
	a.Session.Close()
	if a.redisClient != nil {
		return a.redisClient.Close()
	}
	return nil
}
