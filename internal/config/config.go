package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	FrontendURL string `env:"FRONTEND_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	Stripe Stripe `envPrefix:"STRIPE_"`
	Shippo Shippo `envPrefix:"SHIPPO_"`
	Clerk  Clerk  `envPrefix:"CLERK_"`
	SMTP   SMTP   `envPrefix:"SMTP_"`
	Store  Store  `envPrefix:"STORE_"`
}

type Stripe struct {
	BaseApiURL    string `env:"BASE_API_URL" envDefault:"https://api.stripe.com"`
	SecretKey     string `env:"SECRET_KEY"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

type Shippo struct {
	BaseApiURL string `env:"BASE_API_URL" envDefault:"https://api.goshippo.com"`
	APIKey     string `env:"API_KEY"`
}

type Clerk struct {
	JWKSURL string `env:"JWKS_URL"`
}

type SMTP struct {
	Host     string `env:"HOST"`
	Port     string `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
}

type Store struct {
	OwnerEmail string `env:"OWNER_EMAIL"`
	// Ship-from address for rate quoting.
	ShipFromName    string `env:"SHIP_FROM_NAME"`
	ShipFromStreet  string `env:"SHIP_FROM_STREET"`
	ShipFromCity    string `env:"SHIP_FROM_CITY"`
	ShipFromState   string `env:"SHIP_FROM_STATE"`
	ShipFromZip     string `env:"SHIP_FROM_ZIP"`
	ShipFromCountry string `env:"SHIP_FROM_COUNTRY" envDefault:"US"`
	ShipFromPhone   string `env:"SHIP_FROM_PHONE"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
