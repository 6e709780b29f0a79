package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Archive  ArchiveConfig
	Resolver ResolverConfig
	Ytdlp    YtdlpConfig

	LogLevel  log.Level
	LogFormat LogFormat
}

type ArchiveConfig struct {
	ListingURL     string
	BrowserTimeout time.Duration
}

type ResolverConfig struct {
	Attempts      int
	BackoffFactor time.Duration
	Timeout       time.Duration
}

type YtdlpConfig struct {
	Binary      string
	AudioFormat string
}

type LogFormat string

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

type EnvfileKey string

const (
	// Court page hosting the archived-video viewer
	EnvfileKeyArchiveURL = "ARCHIVE_URL"
	// Upper bound for each browser operation, in seconds
	EnvfileKeyBrowserTimeout = "BROWSER_TIMEOUT"

	// Total attempts per media player request, first attempt included
	EnvfileKeyResolverAttempts = "RESOLVER_ATTEMPTS"
	// Base of the exponential retry backoff, in milliseconds
	EnvfileKeyResolverBackoff = "RESOLVER_BACKOFF_MS"
	// Per-request timeout for media player fetches, in seconds
	EnvfileKeyResolverTimeout = "RESOLVER_TIMEOUT"

	// Path to the yt-dlp binary (default: found on PATH)
	EnvfileKeyYtdlpBinary = "YTDLP_BINARY"
	// Audio format yt-dlp transcodes to (e.g. "mp3", "opus")
	EnvfileKeyYtdlpAudioFormat = "YTDLP_AUDIO_FORMAT"

	// Log level (e.g. "debug", "info", "warn", "error")
	EnvfileKeyLogLevel = "LOG_LEVEL"
	// Log output format (e.g. "text", "json")
	EnvfileKeyLogFormat = "LOG_FORMAT"
)

// FromEnvfile reads configuration from an optional .env file in the working
// directory, with real environment variables taking precedence. Everything
// has a working default; the CLI runs fine with no config at all.
func FromEnvfile() Config {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("dotenv")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			log.Fatalf("error reading config: %v", err)
		}
	}

	logLevel := log.InfoLevel
	if raw := getConfigString(EnvfileKeyLogLevel); raw != "" {
		parsed, err := log.ParseLevel(raw)
		if err != nil {
			log.Warnf("unable to parse log level: %v", err)
		} else {
			logLevel = parsed
		}
	}

	logFormat := LogFormat(LogFormatText)
	if raw := getConfigString(EnvfileKeyLogFormat); raw != "" {
		parsed, err := parseLogFormat(raw)
		if err != nil {
			log.Warnf("unable to parse log format: %v", err)
		} else {
			logFormat = parsed
		}
	}

	return Config{
		Archive: ArchiveConfig{
			ListingURL:     getConfigString(EnvfileKeyArchiveURL),
			BrowserTimeout: time.Duration(getConfigIntDefault(EnvfileKeyBrowserTimeout, 30)) * time.Second,
		},
		Resolver: ResolverConfig{
			Attempts:      getConfigIntDefault(EnvfileKeyResolverAttempts, 3),
			BackoffFactor: time.Duration(getConfigIntDefault(EnvfileKeyResolverBackoff, 300)) * time.Millisecond,
			Timeout:       time.Duration(getConfigIntDefault(EnvfileKeyResolverTimeout, 10)) * time.Second,
		},
		Ytdlp: YtdlpConfig{
			Binary:      getConfigString(EnvfileKeyYtdlpBinary),
			AudioFormat: getConfigString(EnvfileKeyYtdlpAudioFormat),
		},
		LogLevel:  logLevel,
		LogFormat: logFormat,
	}
}

func parseLogFormat(raw string) (LogFormat, error) {
	switch strings.ToLower(raw) {
	case LogFormatJSON:
		return LogFormatJSON, nil
	case LogFormatText:
		return LogFormatText, nil
	default:
		return "", fmt.Errorf("unidentified log format: %s", raw)
	}
}

// Gets a config value as a string from env vars or a .env file
func getConfigString(key string) string {
	value := os.Getenv(key)
	if value == "" {
		value = viper.GetString(key)
	}
	return value
}

// Gets a config value as an int from env vars or a .env file, falling back
// to def when unset or unparseable
func getConfigIntDefault(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		if !viper.IsSet(key) {
			return def
		}
		return viper.GetInt(key)
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Warnf("unable to parse %s: %v", key, err)
		return def
	}
	return value
}
