// Package config is the configuration shared by the command line tools,
// read from rodent-genomes.json5 and filled with defaults.
package config

import (
	"errors"
	"os"
	"time"

	"rodent-genomes/internal/fetch"
	"rodent-genomes/lib/configutil"
	"rodent-genomes/lib/restyutil"
)

const FileName = "rodent-genomes.json5"

// Request rates allowed by the entrez usage policy, without and with an api key.
const (
	NcbiRequestsPerSecond      = 3
	NcbiKeyedRequestsPerSecond = 10
)

type HttpConfig struct {
	TimeoutSeconds int `json:"timeout_seconds"`
	// RetryCount is a pointer so that an explicit 0 (no retries) survives defaults.
	RetryCount     *int `json:"retry_count"`
	RetryWaitMs    int  `json:"retry_wait_ms"`
	RetryMaxWaitMs int  `json:"retry_max_wait_ms"`
}

type NcbiConfig struct {
	BaseUrl           string  `json:"base_url"`
	Tool              string  `json:"tool"`
	ApiKey            string  `json:"api_key"`
	MaxResults        int     `json:"max_results"`
	RequestsPerSecond float64 `json:"requests_per_second"`
}

// Rate is the request rate to use against entrez, an api key raises the
// default rate unless a rate was configured explicitly.
func (c NcbiConfig) Rate() float64 {
	if c.ApiKey != "" && c.RequestsPerSecond == NcbiRequestsPerSecond {
		return NcbiKeyedRequestsPerSecond
	}
	return c.RequestsPerSecond
}

type TolidConfig struct {
	BaseUrl string `json:"base_url"`
}

type IucnConfig struct {
	BaseUrl string `json:"base_url"`
}

type Config struct {
	Http  HttpConfig  `json:"http"`
	Ncbi  NcbiConfig  `json:"ncbi"`
	Tolid TolidConfig `json:"tolid"`
	Iucn  IucnConfig  `json:"iucn"`
}

func Default() Config {
	retries := 3
	return Config{
		Http: HttpConfig{
			TimeoutSeconds: 60,
			RetryCount:     &retries,
			RetryWaitMs:    1000,
			RetryMaxWaitMs: 20000,
		},
		Ncbi: NcbiConfig{
			BaseUrl:    "https://eutils.ncbi.nlm.nih.gov/entrez/eutils",
			Tool:       "rodent-genomes",
			MaxResults:        500,
			RequestsPerSecond: NcbiRequestsPerSecond,
		},
		Tolid: TolidConfig{
			BaseUrl: "https://id.tol.sanger.ac.uk",
		},
		Iucn: IucnConfig{
			BaseUrl: "https://apiv3.iucnredlist.org",
		},
	}
}

// Load reads the config at path, or when path is empty, the closest
// rodent-genomes.json5 up from the working directory. A missing config
// file is only an error when path was given explicitly.
func Load(path string) (Config, error) {
	var cfg Config
	var err error
	if path != "" {
		cfg, err = configutil.ReadConfig[Config](path)
	} else {
		cfg, err = configutil.ReadRecursively[Config](FileName)
		if errors.Is(err, os.ErrNotExist) {
			err = nil
		}
	}
	if err != nil {
		return Config{}, err
	}
	return configutil.WithDefaults(cfg, Default())
}

// ClientOptions derives the options of an upstream http client.
func (c Config) ClientOptions(name, baseUrl string, dump restyutil.InstrumentOutput) fetch.Options {
	retries := 0
	if c.Http.RetryCount != nil {
		retries = *c.Http.RetryCount
	}
	return fetch.Options{
		Name:         name,
		BaseUrl:      baseUrl,
		Timeout:      time.Duration(c.Http.TimeoutSeconds) * time.Second,
		RetryCount:   retries,
		RetryWait:    time.Duration(c.Http.RetryWaitMs) * time.Millisecond,
		RetryMaxWait: time.Duration(c.Http.RetryMaxWaitMs) * time.Millisecond,
		Dump:         dump,
	}
}
