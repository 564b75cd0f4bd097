package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/caravan"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	s, err := FromEnv(env(nil))
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if s.DataDir != DefaultDataDir || s.Listen != DefaultListen || s.AdviceLanguage != DefaultAdviceLanguage {
		t.Errorf("FromEnv() = %+v, want defaults", s)
	}
	if !s.Rates.FallbackUSDPerGold.Equal(caravan.DefaultRates.FallbackUSDPerGold) {
		t.Errorf("fallback rate = %v, want %v", s.Rates.FallbackUSDPerGold, caravan.DefaultRates.FallbackUSDPerGold)
	}
}

func TestFromEnv(t *testing.T) {
	s, err := FromEnv(env(map[string]string{
		EnvGeminiAPIKey:       "secret",
		EnvRedisAddress:       "localhost:6379",
		EnvDataDir:            " /tmp/caravan ",
		EnvFallbackUSDPerGold: "0.01",
		EnvLocalPerUSD:        "90",
		EnvLocalCurrency:      "rub",
		EnvAdviceLanguage:     "English",
	}))
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if s.GeminiAPIKey != "secret" || s.RedisAddress != "localhost:6379" || s.DataDir != "/tmp/caravan" {
		t.Errorf("FromEnv() = %+v", s)
	}
	if !s.Rates.FallbackUSDPerGold.Equal(decimal.RequireFromString("0.01")) || !s.Rates.LocalPerUSD.Equal(decimal.NewFromInt(90)) {
		t.Errorf("rates = %+v", s.Rates)
	}
	if s.Rates.LocalCurrency != "RUB" {
		t.Errorf("local currency = %q, want RUB", s.Rates.LocalCurrency)
	}
	if s.AdviceLanguage != "English" {
		t.Errorf("advice language = %q", s.AdviceLanguage)
	}
}

func TestFromEnv_InvalidRates(t *testing.T) {
	_, err := FromEnv(env(map[string]string{
		EnvFallbackUSDPerGold: "abc",
		EnvLocalPerUSD:        "-1",
	}))
	if err == nil {
		t.Fatal("FromEnv() error = nil, want an error")
	}
	for _, name := range []string{EnvFallbackUSDPerGold, EnvLocalPerUSD} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not mention %s", err, name)
		}
	}
}

func TestLoad_DotEnv(t *testing.T) {
	file := filepath.Join(t.TempDir(), "test.env")
	content := "CARAVAN_DATA_DIR=/from/dotenv\nCARAVAN_LISTEN=:9999\n"
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvListen, ":7000")
	// godotenv sets the variables in the process environment, t.Setenv
	// restores them at the end of the test.
	t.Setenv(EnvDataDir, "")
	os.Unsetenv(EnvDataDir)

	s, err := Load(file)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.DataDir != "/from/dotenv" {
		t.Errorf("DataDir = %q, want the .env value", s.DataDir)
	}
	if s.Listen != ":7000" {
		t.Errorf("Listen = %q, want the environment to win over .env", s.Listen)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("Load() error = %v, want missing files ignored", err)
	}
}

func TestSetupLogger(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)
	defer logrus.SetLevel(logrus.InfoLevel)

	var buf bytes.Buffer
	if err := SetupLogger(&buf, "debug", "json"); err != nil {
		t.Fatalf("SetupLogger() error = %v", err)
	}
	logrus.WithField("key", "aoc_trades").Debug("saved")
	if got := buf.String(); !strings.Contains(got, `"key":"aoc_trades"`) || !strings.Contains(got, `"level":"debug"`) {
		t.Errorf("log output = %q", got)
	}

	if err := SetupLogger(&buf, "loud", "text"); err == nil {
		t.Error("SetupLogger(loud) error = nil, want an error")
	}
	if err := SetupLogger(&buf, "info", "xml"); err == nil {
		t.Error("SetupLogger(xml) error = nil, want an error")
	}
}
