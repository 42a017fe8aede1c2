package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/satvikdua06/server/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	membersLimit = configVar[int]{
		envKey:       "SERVER_MEMBERS_LIMIT",
		flagKey:      "members-limit",
		defaultValue: 16,
	}
	authorityPolicy = configVar[string]{
		envKey:       "SERVER_AUTHORITY_POLICY",
		flagKey:      "authority-policy",
		defaultValue: "staleness",
	}
	stalenessSec = configVar[int]{
		envKey:       "SERVER_STALENESS_SEC",
		flagKey:      "staleness-sec",
		defaultValue: 10,
	}
	searchCacheTTLSec = configVar[int]{
		envKey:       "SERVER_SEARCH_CACHE_TTL_SEC",
		flagKey:      "search-cache-ttl-sec",
		defaultValue: 3600,
	}
	searchResultsLimit = configVar[int]{
		envKey:       "SERVER_SEARCH_RESULTS_LIMIT",
		flagKey:      "search-results-limit",
		defaultValue: 10,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.Int(membersLimit.flagKey, membersLimit.defaultValue, "Maximum number of members in a room")
	pflag.String(authorityPolicy.flagKey, authorityPolicy.defaultValue, "Playback authority policy: open, host-only or staleness")
	pflag.Int(stalenessSec.flagKey, stalenessSec.defaultValue, "Seconds before playback state goes stale under the staleness policy")
	pflag.Int(searchCacheTTLSec.flagKey, searchCacheTTLSec.defaultValue, "Search cache TTL in seconds")
	pflag.Int(searchResultsLimit.flagKey, searchResultsLimit.defaultValue, "Maximum number of search results")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(membersLimit.flagKey, membersLimit.envKey)
	viper.BindEnv(authorityPolicy.flagKey, authorityPolicy.envKey)
	viper.BindEnv(stalenessSec.flagKey, stalenessSec.envKey)
	viper.BindEnv(searchCacheTTLSec.flagKey, searchCacheTTLSec.envKey)
	viper.BindEnv(searchResultsLimit.flagKey, searchResultsLimit.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)

	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(membersLimit.flagKey, membersLimit.defaultValue)
	viper.SetDefault(authorityPolicy.flagKey, authorityPolicy.defaultValue)
	viper.SetDefault(stalenessSec.flagKey, stalenessSec.defaultValue)
	viper.SetDefault(searchCacheTTLSec.flagKey, searchCacheTTLSec.defaultValue)
	viper.SetDefault(searchResultsLimit.flagKey, searchResultsLimit.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)

	return &app.AppConfig{
		Host:               viper.GetString(host.flagKey),
		Port:               viper.GetInt(port.flagKey),
		LogLevel:           viper.GetString(logLevel.flagKey),
		MembersLimit:       viper.GetInt(membersLimit.flagKey),
		AuthorityPolicy:    viper.GetString(authorityPolicy.flagKey),
		StalenessSec:       viper.GetInt(stalenessSec.flagKey),
		SearchCacheTTLSec:  viper.GetInt(searchCacheTTLSec.flagKey),
		SearchResultsLimit: viper.GetInt(searchResultsLimit.flagKey),
		RedisHost:          viper.GetString(redisHost.flagKey),
		RedisPort:          viper.GetInt(redisPort.flagKey),
		RedisPassword:      viper.GetString(redisPassword.flagKey),
	}
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()
	if err := appConfig.Validate(); err != nil {
		log.Fatal(err)
	}

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
