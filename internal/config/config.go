// Package config provides Viper-based hierarchical configuration: defaults,
// an optional YAML config file, then JOBRECON_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"treeworks/jobrecon/internal/match"
	"treeworks/jobrecon/internal/normalize"
)

// Config is the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Recon struct {
		// KeyTag is the fixed tag every normalized job key carries.
		KeyTag string `mapstructure:"key_tag" yaml:"key_tag"`
		// CostTolerance is the relative tolerance for cost comparison.
		CostTolerance float64 `mapstructure:"cost_tolerance" yaml:"cost_tolerance"`
		// DefaultExclusions are contractor names removed from every run
		// unless overridden on the command line.
		DefaultExclusions []string `mapstructure:"default_exclusions" yaml:"default_exclusions"`
	} `mapstructure:"recon" yaml:"recon"`

	Matcher struct {
		TokenSetThreshold    int     `mapstructure:"token_set_threshold" yaml:"token_set_threshold"`
		PartialThreshold     int     `mapstructure:"partial_threshold" yaml:"partial_threshold"`
		RatioThreshold       int     `mapstructure:"ratio_threshold" yaml:"ratio_threshold"`
		SubstringMinTokens   int     `mapstructure:"substring_min_tokens" yaml:"substring_min_tokens"`
		SubstringLengthRatio float64 `mapstructure:"substring_length_ratio" yaml:"substring_length_ratio"`
	} `mapstructure:"matcher" yaml:"matcher"`

	Names struct {
		// Suffixes and Prefixes are stripped (at most one each) when
		// canonicalizing contractor names. Order matters.
		Suffixes []string `mapstructure:"suffixes" yaml:"suffixes"`
		Prefixes []string `mapstructure:"prefixes" yaml:"prefixes"`
	} `mapstructure:"names" yaml:"names"`

	Columns struct {
		// AliasFile optionally points at a YAML file overriding the
		// default header aliases per source.
		AliasFile string `mapstructure:"alias_file" yaml:"alias_file"`
	} `mapstructure:"columns" yaml:"columns"`
}

// Load initializes configuration with hierarchical loading: defaults, then
// an optional config file, then environment variables.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.jobrecon")
	v.AddConfigPath(".jobrecon")
	v.AddConfigPath(".")

	v.SetEnvPrefix("JOBRECON")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file %s: %w", v.ConfigFileUsed(), err)
		}
		// No config file is fine; defaults and env vars apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling configuration: %w", err)
	}
	return &cfg, nil
}

// Thresholds converts the matcher section into cascade thresholds.
func (c *Config) Thresholds() match.Thresholds {
	return match.Thresholds{
		TokenSet:             c.Matcher.TokenSetThreshold,
		Partial:              c.Matcher.PartialThreshold,
		Ratio:                c.Matcher.RatioThreshold,
		SubstringMinTokens:   c.Matcher.SubstringMinTokens,
		SubstringLengthRatio: c.Matcher.SubstringLengthRatio,
	}
}

// Normalizer builds a field normalizer from the configured tag and name
// strip lists.
func (c *Config) Normalizer() *normalize.Normalizer {
	return normalize.New(c.Recon.KeyTag, c.Names.Suffixes, c.Names.Prefixes)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("recon.key_tag", normalize.DefaultKeyTag)
	v.SetDefault("recon.cost_tolerance", 0.01)
	v.SetDefault("recon.default_exclusions", []string{
		"Peter Dubiez Tree Solutions",
		"Auger",
		"Zane Dubiez Tree Solutions",
		"Jorden Pontin Tree Solutions",
	})

	t := match.DefaultThresholds()
	v.SetDefault("matcher.token_set_threshold", t.TokenSet)
	v.SetDefault("matcher.partial_threshold", t.Partial)
	v.SetDefault("matcher.ratio_threshold", t.Ratio)
	v.SetDefault("matcher.substring_min_tokens", t.SubstringMinTokens)
	v.SetDefault("matcher.substring_length_ratio", t.SubstringLengthRatio)

	v.SetDefault("names.suffixes", normalize.DefaultNameSuffixes)
	v.SetDefault("names.prefixes", normalize.DefaultNamePrefixes)

	v.SetDefault("columns.alias_file", "")
}
