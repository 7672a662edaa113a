// Package params holds client configuration: node endpoint, contract
// address, and the signing profile. Values come from defaults, an
// optional .env file, environment variables, and an optional yaml
// profile file, in increasing priority.
package params

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Profile struct {
	PrivateKey string `yaml:"private_key"`
	Account    string `yaml:"account"`
}

type Config struct {
	NodeURL         string
	ContractAddress string
	Profile         Profile
}

func Default() Config {
	return Config{
		NodeURL: "http://localhost:8080",
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and
// environment variables. Priority: ENV > .env file > defaults.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load() // loads .env from current directory
	}

	if v := os.Getenv("LAMINAR_NODE_URL"); v != "" {
		cfg.NodeURL = v
	}
	if v := os.Getenv("LAMINAR_CONTRACT_ADDRESS"); v != "" {
		cfg.ContractAddress = v
	}
	if v := os.Getenv("LAMINAR_PRIVATE_KEY"); v != "" {
		cfg.Profile.PrivateKey = v
	}
	if v := os.Getenv("LAMINAR_ACCOUNT"); v != "" {
		cfg.Profile.Account = v
	}
	return cfg
}

type profileFile struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// LoadProfile reads one named profile from a yaml config file in the
// ledger CLI's default format:
//
//	profiles:
//	  default:
//	    private_key: "0x..."
//	    account: "0x..."
func LoadProfile(path, name string) (Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var file profileFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Profile{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	profile, ok := file.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("config %s: no profile %q", path, name)
	}
	return profile, nil
}
