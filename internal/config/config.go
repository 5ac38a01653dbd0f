package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv  = "ARTICLE_ARCHIVER_CONFIG"
	logLevelEnv    = "ARTICLE_ARCHIVER_LOG_LEVEL"
	userAgentEnv   = "ARTICLE_ARCHIVER_USER_AGENT"
	proxyEnv       = "ARTICLE_ARCHIVER_PROXY"
	archiveRootEnv = "ARTICLE_ARCHIVER_ROOT"
	formatEnv      = "ARTICLE_ARCHIVER_FORMAT"
	fontPathEnv    = "ARTICLE_ARCHIVER_FONT_PATH"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Extract  ExtractConfig  `yaml:"extract"`
	Images   ImagesConfig   `yaml:"images"`
	Document DocumentConfig `yaml:"document"`
	Archive  ArchiveConfig  `yaml:"archive"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// FetchConfig controls how the article page is retrieved.
type FetchConfig struct {
	UserAgent          string        `yaml:"userAgent"`
	AcceptLanguage     string        `yaml:"acceptLanguage"`
	Timeout            time.Duration `yaml:"timeout"`
	BrowserFingerprint *bool         `yaml:"browserFingerprint"`
	Proxy              string        `yaml:"proxy"`
	MaxBytes           int64         `yaml:"maxBytes"`
	// ReadyMarker is a CSS selector the page is re-fetched for until it
	// matches. After the last attempt the page is used as is. Empty disables
	// the check.
	ReadyMarker   *string       `yaml:"readyMarker"`
	ReadyAttempts int           `yaml:"readyAttempts"`
	ReadyInterval time.Duration `yaml:"readyInterval"`
}

// ExtractConfig toggles optional extraction behaviour.
type ExtractConfig struct {
	ReadabilityFallback bool `yaml:"readabilityFallback"`
}

// ImagesConfig tunes the image downloader.
type ImagesConfig struct {
	Attempts    int           `yaml:"attempts"`
	Timeout     time.Duration `yaml:"timeout"`
	Backoff     time.Duration `yaml:"backoff"`
	Concurrency int           `yaml:"concurrency"`
	Referer     string        `yaml:"referer"`
	Verify      bool          `yaml:"verify"`
	MaxBytes    int64         `yaml:"maxBytes"`
}

// DocumentConfig describes the rendered document.
type DocumentConfig struct {
	Format          string  `yaml:"format"`
	FontFace        string  `yaml:"fontFace"`
	FontSize        float64 `yaml:"fontSize"`
	SpaceAfter      float64 `yaml:"spaceAfter"`
	EmptyParagraphs string  `yaml:"emptyParagraphs"`
	// FontPath points at a TTF with CJK glyphs; required for pdf output.
	FontPath string `yaml:"fontPath"`
	// BoldFontPath is the face used for bold runs in pdf output.
	BoldFontPath string `yaml:"boldFontPath"`
	Lang         string `yaml:"lang"`
}

// ArchiveConfig describes the on-disk layout.
type ArchiveConfig struct {
	Root         string `yaml:"root"`
	DocumentName string `yaml:"documentName"`
	ImageDir     string `yaml:"imageDir"`
}

// Fingerprint reports whether the browser TLS fingerprint is enabled.
func (f FetchConfig) Fingerprint() bool {
	return f.BrowserFingerprint == nil || *f.BrowserFingerprint
}

// Marker returns the readiness selector.
func (f FetchConfig) Marker() string {
	if f.ReadyMarker == nil {
		return defaultReadyMarker
	}
	return *f.ReadyMarker
}

const defaultReadyMarker = "#js_content, .rich_media_content"

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Fetch: FetchConfig{
			AcceptLanguage: "zh-CN,zh;q=0.9,en;q=0.8",
			Timeout:        30 * time.Second,
			MaxBytes:       16 << 20,
			ReadyAttempts:  3,
			ReadyInterval:  2 * time.Second,
		},
		Images: ImagesConfig{
			Attempts:    3,
			Timeout:     20 * time.Second,
			Backoff:     time.Second,
			Concurrency: 1,
			MaxBytes:    32 << 20,
		},
		Document: DocumentConfig{
			Format:          "docx",
			FontFace:        "宋体",
			FontSize:        12,
			EmptyParagraphs: "drop",
			Lang:            "zh-CN",
		},
		Archive: ArchiveConfig{
			Root:         ".",
			DocumentName: "article",
			ImageDir:     "images",
		},
	}
}

// Load reads YAML configuration (if present) and applies environment overrides.
// Unreadable files are logged and ignored.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		fileCfg, err := readFile(path)
		if err != nil {
			log.Printf("config: %v (falling back to defaults)", err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// LoadFile is Load with an explicit path; unlike Load it fails on a bad file.
func LoadFile(path string) (Config, error) {
	cfg := defaultConfig()
	fileCfg, err := readFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg = mergeConfig(cfg, fileCfg)
	cfg.applyEnvOverrides()
	return cfg, nil
}

func readFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return Config{}, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return fileCfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(userAgentEnv); v != "" {
		c.Fetch.UserAgent = v
	}

	if v := os.Getenv(proxyEnv); v != "" {
		c.Fetch.Proxy = v
	}

	if v := os.Getenv(archiveRootEnv); v != "" {
		c.Archive.Root = v
	}

	if v := os.Getenv(formatEnv); v != "" {
		c.Document.Format = strings.ToLower(v)
	}

	if v := os.Getenv(fontPathEnv); v != "" {
		c.Document.FontPath = v
	}
}

// Validate rejects values the application cannot run with.
func (c Config) Validate() error {
	if c.Images.Attempts < 1 {
		return fmt.Errorf("images.attempts must be positive, got %d", c.Images.Attempts)
	}
	if c.Document.FontSize <= 0 {
		return fmt.Errorf("document.fontSize must be positive, got %s", strconv.FormatFloat(c.Document.FontSize, 'g', -1, 64))
	}
	if strings.ContainsAny(c.Archive.DocumentName, `\/`) || strings.ContainsAny(c.Archive.ImageDir, `\/`) {
		return fmt.Errorf("archive.documentName and archive.imageDir must be plain names")
	}
	return nil
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Fetch.UserAgent != "" {
		base.Fetch.UserAgent = override.Fetch.UserAgent
	}
	if override.Fetch.AcceptLanguage != "" {
		base.Fetch.AcceptLanguage = override.Fetch.AcceptLanguage
	}
	if override.Fetch.Timeout > 0 {
		base.Fetch.Timeout = override.Fetch.Timeout
	}
	if override.Fetch.BrowserFingerprint != nil {
		base.Fetch.BrowserFingerprint = override.Fetch.BrowserFingerprint
	}
	if override.Fetch.Proxy != "" {
		base.Fetch.Proxy = override.Fetch.Proxy
	}
	if override.Fetch.MaxBytes > 0 {
		base.Fetch.MaxBytes = override.Fetch.MaxBytes
	}
	if override.Fetch.ReadyMarker != nil {
		base.Fetch.ReadyMarker = override.Fetch.ReadyMarker
	}
	if override.Fetch.ReadyAttempts > 0 {
		base.Fetch.ReadyAttempts = override.Fetch.ReadyAttempts
	}
	if override.Fetch.ReadyInterval > 0 {
		base.Fetch.ReadyInterval = override.Fetch.ReadyInterval
	}

	if override.Extract.ReadabilityFallback {
		base.Extract.ReadabilityFallback = true
	}

	if override.Images.Attempts > 0 {
		base.Images.Attempts = override.Images.Attempts
	}
	if override.Images.Timeout > 0 {
		base.Images.Timeout = override.Images.Timeout
	}
	if override.Images.Backoff > 0 {
		base.Images.Backoff = override.Images.Backoff
	}
	if override.Images.Concurrency > 0 {
		base.Images.Concurrency = override.Images.Concurrency
	}
	if override.Images.Referer != "" {
		base.Images.Referer = override.Images.Referer
	}
	if override.Images.Verify {
		base.Images.Verify = true
	}
	if override.Images.MaxBytes > 0 {
		base.Images.MaxBytes = override.Images.MaxBytes
	}

	if override.Document.Format != "" {
		base.Document.Format = strings.ToLower(override.Document.Format)
	}
	if override.Document.FontFace != "" {
		base.Document.FontFace = override.Document.FontFace
	}
	if override.Document.FontSize > 0 {
		base.Document.FontSize = override.Document.FontSize
	}
	if override.Document.SpaceAfter > 0 {
		base.Document.SpaceAfter = override.Document.SpaceAfter
	}
	if override.Document.EmptyParagraphs != "" {
		base.Document.EmptyParagraphs = override.Document.EmptyParagraphs
	}
	if override.Document.FontPath != "" {
		base.Document.FontPath = override.Document.FontPath
	}
	if override.Document.BoldFontPath != "" {
		base.Document.BoldFontPath = override.Document.BoldFontPath
	}
	if override.Document.Lang != "" {
		base.Document.Lang = override.Document.Lang
	}

	if override.Archive.Root != "" {
		base.Archive.Root = override.Archive.Root
	}
	if override.Archive.DocumentName != "" {
		base.Archive.DocumentName = override.Archive.DocumentName
	}
	if override.Archive.ImageDir != "" {
		base.Archive.ImageDir = override.Archive.ImageDir
	}

	return base
}
