package wordfreq

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

func loadConfig() {
	viper.SetConfigName("wordfreqrc")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.wordfreq")

	setupDefaults()

	err := viper.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); err != nil && !ok {
		log.Warnf("Unable to read config file: %s", err)
	}

	viper.SetEnvPrefix("wordfreq")
	viper.AutomaticEnv()
}

func setupDefaults() {
	defaultSettings := map[string]interface{}{
		"word_to_query":        "efficitur", // Word whose count is reported after aggregation
		"default_input":        "lorem.txt", // Input used when none is given
		"max_concurrency":      0,           // Maximum number of concurrent counting workers (0 = number of CPUs)
		"chunk_size":           0,           // Maximum tokens per chunk (0 = spread evenly over workers)
		"output":               "",          // Report location (empty = stdout)
		"format":               "text",
		"top_n":                0,
		"verbose":              false,
		"progress":             true,
		"cache_size":           16, // Tables kept by warm lambda containers
		"lambda_function_name": "wordfreq_function",
		"lambda_memory":        1500,
		"lambda_timeout":       180,
		"lambda_manage_role":   true,
		"lambda_role_name":     "WordfreqLambdaRole",
		"lambda_role_arn":      "",
	}
	for key, value := range defaultSettings {
		viper.SetDefault(key, value)
	}

	aliases := map[string]string{
		"v": "verbose",
		"o": "output",
	}
	for alias, key := range aliases {
		viper.RegisterAlias(alias, key)
	}
}
