// Package config reads the settings of the caravan tools from the
// environment and sets up logging.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/etnz/caravan"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Environment variables.
const (
	EnvGeminiAPIKey       = "GEMINI_API_KEY"
	EnvGeminiModel        = "GEMINI_MODEL"
	EnvRedisAddress       = "CARAVAN_REDIS_ADDRESS"
	EnvRedisPrefix        = "CARAVAN_REDIS_PREFIX"
	EnvDataDir            = "CARAVAN_DATA_DIR"
	EnvListen             = "CARAVAN_LISTEN"
	EnvLogLevel           = "CARAVAN_LOG_LEVEL"
	EnvLogFormat          = "CARAVAN_LOG_FORMAT"
	EnvAdviceLanguage     = "CARAVAN_ADVICE_LANGUAGE"
	EnvFallbackUSDPerGold = "CARAVAN_FALLBACK_USD_PER_GOLD"
	EnvLocalPerUSD        = "CARAVAN_LOCAL_PER_USD"
	EnvLocalCurrency      = "CARAVAN_LOCAL_CURRENCY"
)

// Defaults.
const (
	DefaultDataDir        = ".caravan"
	DefaultListen         = ":8080"
	DefaultLogLevel       = "warning"
	DefaultAdviceLanguage = "Russian"
)

// Settings holds the whole configuration.
type Settings struct {
	GeminiAPIKey   string
	GeminiModel    string // empty selects the advisor default
	RedisAddress   string // when set, records are stored in Redis instead of DataDir
	RedisPrefix    string
	DataDir        string
	Listen         string
	LogLevel       string
	LogFormat      string // "json" or "text"
	AdviceLanguage string
	Rates          caravan.Rates
}

// Load reads the .env files (".env" by default, missing files are ignored)
// into the process environment then returns the settings from the environment.
//
// Variables already set in the environment take precedence over .env files.
func Load(files ...string) (Settings, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, fmt.Errorf("cannot load environment file: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv returns the settings read with getenv.
func FromEnv(getenv func(string) string) (Settings, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	s := Settings{
		GeminiAPIKey:   get(EnvGeminiAPIKey, ""),
		GeminiModel:    get(EnvGeminiModel, ""),
		RedisAddress:   get(EnvRedisAddress, ""),
		RedisPrefix:    get(EnvRedisPrefix, ""),
		DataDir:        get(EnvDataDir, DefaultDataDir),
		Listen:         get(EnvListen, DefaultListen),
		LogLevel:       get(EnvLogLevel, DefaultLogLevel),
		LogFormat:      get(EnvLogFormat, "text"),
		AdviceLanguage: get(EnvAdviceLanguage, DefaultAdviceLanguage),
		Rates:          caravan.DefaultRates,
	}

	var errs []error
	if v := get(EnvFallbackUSDPerGold, ""); v != "" {
		d, err := positive(EnvFallbackUSDPerGold, v)
		errs = append(errs, err)
		s.Rates.FallbackUSDPerGold = d
	}
	if v := get(EnvLocalPerUSD, ""); v != "" {
		d, err := positive(EnvLocalPerUSD, v)
		errs = append(errs, err)
		s.Rates.LocalPerUSD = d
	}
	s.Rates.LocalCurrency = strings.ToUpper(get(EnvLocalCurrency, s.Rates.LocalCurrency))

	if err := errors.Join(errs...); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func positive(name, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("invalid %s %q: must be positive", name, value)
	}
	return d, nil
}
