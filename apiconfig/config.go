package apiconfig

import (
	"os"
	"strings"

	"contest-platform/logging"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Api      ApiConfig      `koanf:"api"`
	Network  NetworkConfig  `koanf:"network"`
	Platform PlatformConfig `koanf:"platform"`
	Database DatabaseConfig `koanf:"database"`
	Genesis  []GenesisFund  `koanf:"genesis"`
	Tokens   []PrizeToken   `koanf:"tokens"`
}

type ApiConfig struct {
	PublicPort int `koanf:"public_port"`
	AdminPort  int `koanf:"admin_port"`
}

type NetworkConfig struct {
	Id   uint64 `koanf:"id"`
	Name string `koanf:"name"`
}

// PlatformConfig names the privileged addresses. Owner drives admin
// operations, Treasury receives withdrawn fees, Recovery receives emergency
// sweeps.
type PlatformConfig struct {
	Owner    string `koanf:"owner"`
	Treasury string `koanf:"treasury"`
	Recovery string `koanf:"recovery"`
}

type DatabaseConfig struct {
	Url string `koanf:"url"`
}

// GenesisFund seeds a ledger balance at startup. Amount is a decimal string
// so yaml never mangles big integers.
type GenesisFund struct {
	Account string `koanf:"account"`
	Asset   string `koanf:"asset"`
	Amount  string `koanf:"amount"`
}

// PrizeToken pre-registers an asset with the token validator at startup.
type PrizeToken struct {
	Asset        string `koanf:"asset"`
	Name         string `koanf:"name"`
	Symbol       string `koanf:"symbol"`
	Decimals     int    `koanf:"decimals"`
	IsStablecoin bool   `koanf:"is_stablecoin"`
	PriceUSD     string `koanf:"price_usd"`
	LiquidityUSD string `koanf:"liquidity_usd"`
}

func defaultConfig() Config {
	return Config{
		Api: ApiConfig{
			PublicPort: 8080,
			AdminPort:  9200,
		},
		Network: NetworkConfig{
			Id:   31337,
			Name: "localhost",
		},
		Platform: PlatformConfig{
			Owner:    "platform-owner",
			Treasury: "platform-treasury",
			Recovery: "platform-recovery",
		},
	}
}

const envPrefix = "CONTEST_"

// ReadConfig loads config.yaml (or CONTEST_CONFIG_PATH) over the defaults and
// then applies CONTEST_* environment variables on top. A double underscore in
// an env var name separates config sections, so CONTEST_API__ADMIN_PORT maps
// to api.admin_port.
func ReadConfig() (Config, error) {
	configPath := os.Getenv("CONTEST_CONFIG_PATH")
	if configPath == "" {
		logging.Info("CONTEST_CONFIG_PATH not set, using default config.yaml", logging.Config)
		configPath = "config.yaml"
	}
	return readConfig(configPath)
}

func readConfig(configPath string) (Config, error) {
	k := koanf.New(".")

	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return Config{}, err
		}
		logging.Info("Loaded config file", logging.Config, "path", configPath)
	} else {
		logging.Warn("Config file not found, using defaults and environment", logging.Config,
			"path", configPath)
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return Config{}, err
	}

	config := defaultConfig()
	if err := k.Unmarshal("", &config); err != nil {
		return Config{}, err
	}
	return config, nil
}
