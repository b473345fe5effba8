// Package config loads sweep and runner settings from an optional YAML file,
// a .env file and the environment.
package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/dyncast/abi"
	"github.com/wippyai/dyncast/errors"
	"github.com/wippyai/dyncast/remote"
)

var validate = validator.New()

// Artifact store kinds.
const (
	ArtifactsNone  = "none"
	ArtifactsDir   = "dir"
	ArtifactsMinio = "minio"
)

// Config is the complete tool configuration.
type Config struct {
	Wandbox   ServiceConfig  `yaml:"wandbox"`
	Rextester ServiceConfig  `yaml:"rextester"`
	Artifacts ArtifactConfig `yaml:"artifacts"`

	CXXFlags    string `yaml:"cxxflags"`
	MetricsAddr string `yaml:"metrics_addr"`
	// Findings is the JSONL report path; empty disables the report.
	Findings string `yaml:"findings"`

	IncludeDirs []string `yaml:"include_dirs"`
	// SupportSources are compiled with every generated harness.
	SupportSources []string           `yaml:"support_sources" validate:"dive,required"`
	Toolchains     []remote.Toolchain `yaml:"toolchains" validate:"min=1,dive"`

	StartSeed uint64 `yaml:"start_seed"`
	// MaxSeeds bounds the sweep; zero runs until interrupted.
	MaxSeeds    uint64        `yaml:"max_seeds"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	Classes     int `yaml:"classes" validate:"min=1,max=256"`
	PointerSize int `yaml:"pointer_size" validate:"oneof=4 8"`
	CacheSize   int `yaml:"cache_size" validate:"min=1"`
	Parallelism int `yaml:"parallelism" validate:"min=1"`
}

// ServiceConfig addresses one compile service.
type ServiceConfig struct {
	URL string `yaml:"url" validate:"omitempty,url"`
}

// ArtifactConfig selects where failing reproducers are kept.
type ArtifactConfig struct {
	Kind      string `yaml:"kind" validate:"oneof=none dir minio"`
	Dir       string `yaml:"dir" validate:"required_if=Kind dir"`
	Endpoint  string `yaml:"endpoint" validate:"required_if=Kind minio"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key" validate:"required_if=Kind minio"`
	SecretKey string `yaml:"secret_key" validate:"required_if=Kind minio"`
	Bucket    string `yaml:"bucket" validate:"required_if=Kind minio"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Wandbox:        ServiceConfig{URL: remote.DefaultWandboxURL},
		Rextester:      ServiceConfig{URL: remote.DefaultRextesterURL},
		Artifacts:      ArtifactConfig{Kind: ArtifactsNone, Region: "us-east-1", Bucket: "dyncast-reproducers"},
		CXXFlags:       "-DFREE_USE_OF_CXX17",
		IncludeDirs:    []string{"."},
		SupportSources: []string{"dynamicast.cc"},
		Toolchains:     remote.DefaultToolchains(),
		StartSeed:      1,
		HTTPTimeout:    2 * time.Minute,
		Classes:        10,
		PointerSize:    abi.DefaultPointerSize,
		CacheSize:      512,
		Parallelism:    3,
	}
}

// Load reads .env (if present), then the YAML file at path (if path is not
// empty), then environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindDecode, err, ".env")
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				return nil, errors.NotFound(errors.PhaseConfig, "config file", path)
			}
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindIO, err, path)
		}
		if err := Decode(data, &cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Decode overlays YAML data onto cfg. Unknown keys are rejected.
func Decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return errors.Wrap(errors.PhaseConfig, errors.KindDecode, err, "config yaml")
	}
	return nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv("CXXFLAGS"); ok {
		c.CXXFlags = v
	}
	setString(&c.Wandbox.URL, "DYNCAST_WANDBOX_URL")
	setString(&c.Rextester.URL, "DYNCAST_REXTESTER_URL")
	setString(&c.MetricsAddr, "DYNCAST_METRICS_ADDR")
	setString(&c.Findings, "DYNCAST_FINDINGS")

	a := &c.Artifacts
	setString(&a.Kind, "DYNCAST_ARTIFACT_KIND")
	setString(&a.Dir, "DYNCAST_ARTIFACT_DIR")
	setString(&a.Endpoint, "DYNCAST_ARTIFACT_ENDPOINT")
	setString(&a.Region, "DYNCAST_ARTIFACT_REGION")
	setString(&a.Bucket, "DYNCAST_ARTIFACT_BUCKET")
	setString(&a.AccessKey, "MINIO_ROOT_USER", "DYNCAST_ARTIFACT_ACCESS_KEY")
	setString(&a.SecretKey, "MINIO_ROOT_PASSWORD", "DYNCAST_ARTIFACT_SECRET_KEY")
	if raw := strings.TrimSpace(os.Getenv("DYNCAST_ARTIFACT_USE_SSL")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Path("DYNCAST_ARTIFACT_USE_SSL").
				Value(raw).
				Cause(err).
				Detail("not a boolean").
				Build()
		}
		a.UseSSL = v
	}
	return nil
}

// setString assigns the last non-empty variable among names.
func setString(dst *string, names ...string) {
	for _, n := range names {
		if v := strings.TrimSpace(os.Getenv(n)); v != "" {
			*dst = v
		}
	}
}

// Validate checks field constraints and that every toolchain names a known ABI.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "config")
	}
	seen := make(map[string]bool)
	for _, tc := range c.Toolchains {
		if seen[tc.Name] {
			return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Path("toolchains", tc.Name).
				Detail("duplicate toolchain").
				Build()
		}
		seen[tc.Name] = true
	}
	return nil
}

// Target returns the ABI target for mode with the configured pointer size.
func (c *Config) Target(mode abi.Mode) abi.Target {
	return abi.Target{Mode: mode, PointerSize: c.PointerSize}
}

// Flags splits CXXFlags into individual compiler flags.
func (c *Config) Flags() []string {
	return remote.SplitFlags(c.CXXFlags)
}
