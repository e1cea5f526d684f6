package config

import "time"

type Config struct {
	Environment Environment
	Log         Log

	API      API      `envPrefix:"API_"`
	Redis    Redis    `envPrefix:"REDIS_"`
	Search   Search   `envPrefix:"SEARCH_"`
	Checkout Checkout `envPrefix:"CHECKOUT_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

type API struct {
	BaseURL string        `env:"BASE_URL" envDefault:"http://localhost:8080"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// Redis is optional; with no Addr the in-memory store is used.
type Redis struct {
	Addr      string `env:"ADDR"`
	Password  string `env:"PASSWORD"`
	DB        int    `env:"DB" envDefault:"0"`
	Namespace string `env:"NAMESPACE" envDefault:"default"`
}

type Search struct {
	Debounce time.Duration `env:"DEBOUNCE" envDefault:"300ms"`
}

type Checkout struct {
	// ShippingFlatRate is a decimal string, e.g. "4.99".
	ShippingFlatRate string `env:"SHIPPING_FLAT_RATE" envDefault:"4.99"`
}
