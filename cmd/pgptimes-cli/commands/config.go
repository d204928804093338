package commands

import (
	"os"
	"time"
	"pgptimes-backend/lib/configutil"
	"pgptimes-backend/lib/restyutil"
	"pgptimes-backend/lib/scrapers/clubspeed"
	"pgptimes-backend/lib/serviceutil"
)

type Config struct {
	BaseUrl string `json:"base_url"`
	// the heat number to start backfilling from when the database has
	// no cursor yet
	StartHeat int `json:"start_heat"`
	// sessions dated before this year are fetched but not persisted
	StartYear        int      `json:"start_year"`
	ExcludeHeatTypes []string `json:"exclude_heat_types"`
	// consecutive unavailable heat pages before the backfill assumes it
	// has run off the end of the track's history
	MaxConsecutiveMisses int     `json:"max_consecutive_misses"`
	PolitenessSeconds    float64 `json:"politeness_seconds"`
	Roster               string  `json:"roster"`
	DebugDumpDir         string  `json:"debug_dump_dir"`
}

func loadConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to read config", err)
	}

	if cfg.BaseUrl == "" {
		cfg.BaseUrl = "https://pgpkent.clubspeedtiming.com"
	}
	if cfg.StartHeat == 0 {
		cfg.StartHeat = 1
	}
	if cfg.MaxConsecutiveMisses == 0 {
		cfg.MaxConsecutiveMisses = 50
	}
	if cfg.PolitenessSeconds == 0 {
		cfg.PolitenessSeconds = 1
	}
	if cfg.Roster == "" {
		cfg.Roster = "drivers.csv"
	}
	return cfg
}

func newClient(cfg Config) *clubspeed.Client {
	var debug restyutil.Output
	if cfg.DebugDumpDir != "" {
		debug = restyutil.NewFilesystemOutput(cfg.DebugDumpDir)
	}

	client, err := clubspeed.NewClient(clubspeed.ClientOptions{
		BaseUrl:     cfg.BaseUrl,
		Politeness:  time.Duration(cfg.PolitenessSeconds * float64(time.Second)),
		RetryCount:  2,
		DebugOutput: debug,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize clubspeed client", err)
	}
	return client
}
