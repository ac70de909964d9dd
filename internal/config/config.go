package config

import "github.com/kelseyhightower/envconfig"

// App is the full environment surface of the server. main loads .env via
// godotenv first, then processes this struct.
type App struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	Port        string `envconfig:"PORT" default:"3333"`

	// QRSecretKey must decode to 32 bytes (base64) for AES-256.
	QRSecretKey string `envconfig:"QR_SECRET_KEY" required:"true"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	WompiEventsSecret string `envconfig:"WOMPI_EVENTS_SECRET"`
	// WompiStrict flips invalid-signature handling from the default 200
	// acknowledgment to a 403.
	WompiStrict bool `envconfig:"WOMPI_STRICT" default:"false"`

	MetricsUser string `envconfig:"METRICS_USER"`
	MetricsPass string `envconfig:"METRICS_PASS"`

	CartTTLMinutes   int `envconfig:"CART_TTL_MIN" default:"60"`
	CartSweepMinutes int `envconfig:"CART_SWEEP_MIN" default:"15"`

	FCMServiceAccountJSON string `envconfig:"FCM_SERVICE_ACCOUNT_JSON"`
	FCMCredentialsFile    string `envconfig:"FCM_CREDENTIALS_FILE" default:"./serviceAccountKey.json"`
}

func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
