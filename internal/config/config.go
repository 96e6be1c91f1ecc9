// Package config resolves tool configuration from flags, FUTORESULTS_*
// environment variables, and an optional config file.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Defaults for the reconciled dataset and the per-log summaries.
const (
	DefaultCSVPath    = "results/results_dataset.csv"
	DefaultSummaryDir = "results/parsed_summaries"
	DefaultLogLevel   = "info"
)

// Config holds one invocation's resolved settings. Both output destinations
// are explicit values carried with the invocation, so two invocations with
// different destinations can coexist in one process.
type Config struct {
	CSVPath    string
	SummaryDir string
	LogLevel   string
	Quiet      bool
}

// Resolve builds a Config from viper, with flag values (when non-empty)
// taking precedence over environment/config-file values, which take
// precedence over defaults.
func Resolve(v *viper.Viper, csvFlag, summaryDirFlag, logLevelFlag string, quiet bool) Config {
	cfg := Config{
		CSVPath:    firstNonEmpty(csvFlag, v.GetString("csv"), DefaultCSVPath),
		SummaryDir: firstNonEmpty(summaryDirFlag, v.GetString("summary-dir"), DefaultSummaryDir),
		LogLevel:   firstNonEmpty(logLevelFlag, v.GetString("log-level"), DefaultLogLevel),
		Quiet:      quiet || v.GetBool("quiet"),
	}
	return cfg
}

func firstNonEmpty(values ...string) string {
	for _, val := range values {
		if strings.TrimSpace(val) != "" {
			return val
		}
	}
	return ""
}
