package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs, bools for policy switches.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	PaystackSecret  string // API secret for the payment gateway
	PaystackBaseURL string // gateway base URL override (empty = production API)
	WebhookSecret   string // shared secret for webhook signature verification
	GatewayTimeout  int    // payment gateway HTTP timeout in seconds

	// AllowCheckedInCancel permits administrators to cancel a booking
	// that has already checked in.  Off by default.
	AllowCheckedInCancel bool
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Payment settings
// are required because booking creation initialises online payments; the
// base URL and timeout have sensible defaults.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),       // environment (dev/test/prod)
		Port:           must("APP_PORT"),      // port to bind the HTTP server
		DBUser:         must("DB_USER"),       // database user
		DBPass:         os.Getenv("DB_PASS"),  // database password (empty allowed)
		DBHost:         must("DB_HOST"),       // database host
		DBPort:         must("DB_PORT"),       // database port
		DBName:         must("DB_NAME"),       // database name
		JWTSecret:      must("JWT_SECRET"),    // secret used for signing JWTs
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),   // TTL for access tokens in minutes
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"), // TTL for refresh tokens in days
		BcryptCost:     mustInt("BCRYPT_COST"),            // bcrypt cost factor

		PaystackSecret:  must("PAYSTACK_SECRET_KEY"),          // gateway API secret
		PaystackBaseURL: os.Getenv("PAYSTACK_BASE_URL"),       // override for tests/sandboxes
		WebhookSecret:   must("PAYMENT_WEBHOOK_SECRET"),       // webhook signature secret
		GatewayTimeout:  intOr("GATEWAY_TIMEOUT_SEC", 10),     // bounded gateway timeout

		AllowCheckedInCancel: boolOr("ALLOW_CHECKED_IN_CANCEL", false), // admin override policy
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// intOr reads an optional integer variable, falling back to def when
// unset or malformed.
func intOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

// boolOr reads an optional boolean variable, falling back to def.
func boolOr(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return def
}
