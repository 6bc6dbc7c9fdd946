package config

import (
	"github.com/spf13/pflag"
)

// DecodeConfig holds configuration for the decode command.
type DecodeConfig struct {
	RPCURL    string
	NetworkID uint64
	TxHash    string
	Out       string
	LogLevel  string
}

// LoadDecode merges config file, environment variables, and flags into DecodeConfig.
func LoadDecode(cfgFile string, flags *pflag.FlagSet) (DecodeConfig, error) {
	v := newViper()

	v.SetDefault("network", uint64(1))
	v.SetDefault("log-level", "info")

	if err := bindAndRead(v, cfgFile, flags); err != nil {
		return DecodeConfig{}, err
	}

	cfg := DecodeConfig{
		RPCURL:    v.GetString("rpc"),
		NetworkID: v.GetUint64("network"),
		TxHash:    v.GetString("tx"),
		Out:       v.GetString("out"),
		LogLevel:  v.GetString("log-level"),
	}

	return cfg, nil
}
