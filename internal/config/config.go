package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// DefaultQueryURL is the pre-encoded Socrata SoQL query for 2024 elevator
// complaints in the NYC 311 dataset (erm2-nwe9).
const DefaultQueryURL = "https://data.cityofnewyork.us/api/v3/views/erm2-nwe9/query.csv?query=SELECT%0A%20%20%60unique_key%60%2C%0A%20%20%60created_date%60%2C%0A%20%20%60closed_date%60%2C%0A%20%20%60agency%60%2C%0A%20%20%60agency_name%60%2C%0A%20%20%60complaint_type%60%2C%0A%20%20%60descriptor%60%2C%0A%20%20%60location_type%60%2C%0A%20%20%60incident_zip%60%2C%0A%20%20%60incident_address%60%2C%0A%20%20%60street_name%60%2C%0A%20%20%60cross_street_1%60%2C%0A%20%20%60cross_street_2%60%2C%0A%20%20%60intersection_street_1%60%2C%0A%20%20%60intersection_street_2%60%2C%0A%20%20%60address_type%60%2C%0A%20%20%60city%60%2C%0A%20%20%60landmark%60%2C%0A%20%20%60facility_type%60%2C%0A%20%20%60status%60%2C%0A%20%20%60due_date%60%2C%0A%20%20%60resolution_description%60%2C%0A%20%20%60resolution_action_updated_date%60%2C%0A%20%20%60community_board%60%2C%0A%20%20%60bbl%60%2C%0A%20%20%60borough%60%2C%0A%20%20%60x_coordinate_state_plane%60%2C%0A%20%20%60y_coordinate_state_plane%60%2C%0A%20%20%60open_data_channel_type%60%2C%0A%20%20%60park_facility_name%60%2C%0A%20%20%60park_borough%60%2C%0A%20%20%60vehicle_type%60%2C%0A%20%20%60taxi_company_borough%60%2C%0A%20%20%60taxi_pick_up_location%60%2C%0A%20%20%60bridge_highway_name%60%2C%0A%20%20%60bridge_highway_direction%60%2C%0A%20%20%60road_ramp%60%2C%0A%20%20%60bridge_highway_segment%60%2C%0A%20%20%60latitude%60%2C%0A%20%20%60longitude%60%2C%0A%20%20%60location%60%0AWHERE%0A%20%20%60created_date%60%0A%20%20%20%20BETWEEN%20%222024-01-01T09%3A42%3A31%22%20%3A%3A%20floating_timestamp%0A%20%20%20%20AND%20%222024-12-31T09%3A42%3A31%22%20%3A%3A%20floating_timestamp%0A%20%20AND%20caseless_one_of(%60complaint_type%60%2C%20%22Elevator%22)%0AORDER%20BY%20%60created_date%60%20DESC%20NULL%20FIRST"

// ErrMissingCredential is returned when a stage needs a token that is not set.
var ErrMissingCredential = errors.New("missing credential")

// Stage names accepted by Validate.
const (
	StageIngest = "ingest"
	StageExport = "export"
	StageGeo    = "geo"
)

// sampleTableRe accepts one to three dot-separated SQL identifiers.
var sampleTableRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*){0,2}$`)

// Config holds all pipeline settings, populated from environment variables.
type Config struct {
	SocrataToken    string
	SocrataQueryURL string

	MotherDuckToken    string
	MotherDuckDatabase string
	UseMotherDuck      bool
	DuckDBPath         string

	OutputDir string

	ComplaintFilter string
	FilterYear      int
	CleanTable      string

	GeoBorough       string
	GeoComplaintType string
	RadiusMiles      float64
	SortYear         string
	SampleTable      string

	LogLevel  string
	LogFormat string

	// Optional integrations; empty values disable them.
	MapboxToken      string
	MapboxTimeout    time.Duration
	KafkaBrokers     []string
	KafkaReportTopic string
	PushgatewayURL   string
}

// Load reads configuration from environment variables, applying defaults where unset.
// A dotenv file (ENV_FILE, default ".env") is loaded first when it exists; it never
// overrides variables already present in the environment.
func Load() (*Config, error) {
	if err := loadEnvFile(sharedcfg.EnvOrDefault("ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	useMotherDuck, err := parseBool("USE_MOTHERDUCK", false)
	if err != nil {
		return nil, err
	}

	filterYear, err := strconv.Atoi(sharedcfg.EnvOrDefault("FILTER_YEAR", "2024"))
	if err != nil || filterYear < 1900 || filterYear > 9999 {
		return nil, errors.New("invalid FILTER_YEAR: must be a four-digit year")
	}

	radius, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("RADIUS_MILES", "1.0"), 64)
	if err != nil || radius <= 0 {
		return nil, errors.New("invalid RADIUS_MILES: must be a positive number")
	}

	mapboxTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s"))
	if err != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	cfg := &Config{
		SocrataToken:    os.Getenv("SOCRATA_APP_TOKEN"),
		SocrataQueryURL: sharedcfg.EnvOrDefault("SOCRATA_QUERY_URL", DefaultQueryURL),

		MotherDuckToken:    os.Getenv("MOTHERDUCK_TOKEN"),
		MotherDuckDatabase: sharedcfg.EnvOrDefault("MOTHERDUCK_DATABASE", "elt_pipeline_motherduck"),
		UseMotherDuck:      useMotherDuck,
		DuckDBPath:         sharedcfg.EnvOrDefault("DUCKDB_PATH", "nyc_elevator_elt.duckdb"),

		OutputDir: sharedcfg.EnvOrDefault("OUTPUT_DIR", "."),

		ComplaintFilter: sharedcfg.EnvOrDefault("COMPLAINT_FILTER", "Elevator"),
		FilterYear:      filterYear,
		CleanTable:      sharedcfg.EnvOrDefault("CLEAN_TABLE", "clean_elevator_2024"),

		GeoBorough:       sharedcfg.EnvOrDefault("GEO_BOROUGH", "MANHATTAN"),
		GeoComplaintType: sharedcfg.EnvOrDefault("GEO_COMPLAINT_TYPE", "elevator"),
		RadiusMiles:      radius,
		SortYear:         sharedcfg.EnvOrDefault("SORT_YEAR", "2022"),
		SampleTable:      sharedcfg.EnvOrDefault("SAMPLE_TABLE", "sample_data.nyc.service_requests"),

		LogLevel:  sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),

		MapboxToken:      os.Getenv("MAPBOX_TOKEN"),
		MapboxTimeout:    mapboxTimeout,
		KafkaBrokers:     sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaReportTopic: sharedcfg.EnvOrDefault("KAFKA_REPORT_TOPIC", "complaint-trends"),
		PushgatewayURL:   os.Getenv("PUSHGATEWAY_URL"),
	}

	if strings.TrimSpace(cfg.ComplaintFilter) == "" {
		return nil, errors.New("COMPLAINT_FILTER must not be blank")
	}
	if !sampleTableRe.MatchString(cfg.SampleTable) {
		return nil, errors.New("invalid SAMPLE_TABLE: expected [catalog.][schema.]table")
	}
	if _, err := strconv.Atoi(cfg.SortYear); err != nil {
		return nil, errors.New("invalid SORT_YEAR: must be a year")
	}

	return cfg, nil
}

// Validate checks that the credentials a stage depends on are present.
func (c *Config) Validate(stage string) error {
	if c.UseMotherDuck && c.MotherDuckToken == "" {
		return fmt.Errorf("%w: USE_MOTHERDUCK is true but MOTHERDUCK_TOKEN is not set", ErrMissingCredential)
	}
	switch stage {
	case StageIngest:
		if c.SocrataToken == "" {
			return fmt.Errorf("%w: SOCRATA_APP_TOKEN is required", ErrMissingCredential)
		}
	case StageGeo:
		if c.MotherDuckToken == "" {
			return fmt.Errorf("%w: MOTHERDUCK_TOKEN is required", ErrMissingCredential)
		}
	case StageExport:
	default:
		return fmt.Errorf("unknown stage %q", stage)
	}
	return nil
}

// MapboxEnabled reports whether HQ reverse geocoding is configured.
func (c *Config) MapboxEnabled() bool { return c.MapboxToken != "" }

// KafkaEnabled reports whether trend reports are published.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func parseBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return false, fmt.Errorf("invalid %s: must be true or false", key)
	}
	return b, nil
}
