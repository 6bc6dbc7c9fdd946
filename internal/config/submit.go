package config

import (
	"time"

	"github.com/spf13/pflag"
)

// SubmitConfig holds configuration for gas simulation and submission.
type SubmitConfig struct {
	RPCURL           string
	NetworkID        uint64
	From             string
	Contract         string
	Data             string
	Value            string
	GasPrice         string
	GasMultiplier    float64
	Mode             string
	MinConfirmations uint64
	PollInterval     time.Duration
	LogLevel         string
}

// LoadSubmit merges config file, environment variables, and flags into SubmitConfig.
func LoadSubmit(cfgFile string, flags *pflag.FlagSet) (SubmitConfig, error) {
	v := newViper()

	v.SetDefault("network", uint64(1))
	v.SetDefault("gas-multiplier", 1.4)
	v.SetDefault("mode", "hash")
	v.SetDefault("poll-interval", 3*time.Second)
	v.SetDefault("log-level", "info")

	if err := bindAndRead(v, cfgFile, flags); err != nil {
		return SubmitConfig{}, err
	}

	cfg := SubmitConfig{
		RPCURL:           v.GetString("rpc"),
		NetworkID:        v.GetUint64("network"),
		From:             v.GetString("from"),
		Contract:         v.GetString("contract"),
		Data:             v.GetString("data"),
		Value:            v.GetString("value"),
		GasPrice:         v.GetString("gas-price"),
		GasMultiplier:    v.GetFloat64("gas-multiplier"),
		Mode:             v.GetString("mode"),
		MinConfirmations: v.GetUint64("min-confirmations"),
		PollInterval:     v.GetDuration("poll-interval"),
		LogLevel:         v.GetString("log-level"),
	}

	return cfg, nil
}
