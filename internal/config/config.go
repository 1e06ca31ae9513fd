package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"

	"github.com/circleous/cistatus/pkg/ci"
	"github.com/circleous/cistatus/pkg/git"
)

const (
	// ExecBackend asks the git binary for remotes
	ExecBackend = "exec"
	// GoGitBackend reads remotes with go-git
	GoGitBackend = "go-git"

	// DefaultBrowser opens urls with the OS default handler
	DefaultBrowser = "default"
)

var (
	defaultMaxWorker = 4
	defaultDebounce  = Duration(time.Second)
)

// Duration is a time.Duration decoded from strings like "1s" or "250ms"
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for toml
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// RepoOverride redirects the CI lookup of a local repository to another
// remote, e.g. the upstream of a fork
type RepoOverride struct {
	Remote string `toml:"remote" yaml:"remote"`
}

// RepoOverrides maps a locally resolved slug to its override
type RepoOverrides map[string]RepoOverride

// BrowserCommands maps an OS name (windows, darwin, linux) to a command
// template, "{url}" is replaced with the page to open
type BrowserCommands map[string]string

// Config is the configuration struct. It can be created with ParseConfig or
// Default and must not be modified once handed to the resolver.
type Config struct {
	// DefaultRemote is the remote used to resolve the local slug
	DefaultRemote string `toml:"default_remote" yaml:"default_remote"`

	// Repos overrides keyed by local slug
	Repos RepoOverrides `toml:"repos" yaml:"repos"`

	// StatusPrefix, StatusPassing and StatusFailing build the status label
	StatusPrefix  string `toml:"status_prefix" yaml:"status_prefix"`
	StatusPassing string `toml:"status_passing" yaml:"status_passing"`
	StatusFailing string `toml:"status_failing" yaml:"status_failing"`

	// DebugEnable turns on debug logging
	DebugEnable bool `toml:"debug_enable" yaml:"debug_enable"`

	// Provider is the CI provider, "travis" or "github"
	Provider string `toml:"provider" yaml:"provider"`
	// APIURL and WebURL override the provider endpoints
	APIURL string `toml:"api_url" yaml:"api_url"`
	WebURL string `toml:"web_url" yaml:"web_url"`
	// GithubToken
	GithubToken string `toml:"github_token" yaml:"github_token"`

	// GitBackend is either "exec" or "go-git"
	GitBackend string `toml:"git_backend" yaml:"git_backend"`

	// Browser selects an entry of Browsers, "default" uses the OS handler
	Browser  string                     `toml:"browser" yaml:"browser"`
	Browsers map[string]BrowserCommands `toml:"browsers" yaml:"browsers"`

	// MaxWorker is the max concurrent status checks while watching
	MaxWorker int `toml:"max_worker" yaml:"max_worker"`
	// Debounce collapses bursts of file events per directory
	Debounce Duration `toml:"debounce" yaml:"debounce"`

	// HistoryPath is the sqlite file checks are recorded to, empty disables
	HistoryPath string `toml:"history_path" yaml:"history_path"`
	// StatusFile receives the current label, empty prints to stdout
	StatusFile string `toml:"status_file" yaml:"status_file"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		DefaultRemote: string(git.DefaultRemote),
		Repos:         RepoOverrides{},
		StatusPrefix:  "Travis: ",
		StatusPassing: "Passing",
		StatusFailing: "Failing",
		Provider:      ci.TRAVIS,
		GitBackend:    ExecBackend,
		Browser:       DefaultBrowser,
		Browsers:      map[string]BrowserCommands{},
		MaxWorker:     defaultMaxWorker,
		Debounce:      defaultDebounce,
	}
}

// ParseConfig builds a Config from a toml file, or a yaml file when the
// extension is .yaml or .yml
func ParseConfig(configPath string) (*Config, error) {
	var (
		config *Config
		err    error
	)

	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		config, err = parseYAML(configPath)
	default:
		config, err = parseTOML(configPath)
	}
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func parseTOML(configPath string) (*Config, error) {
	var config Config

	meta, err := toml.DecodeFile(configPath, &config)
	if err != nil {
		return nil, err
	}

	def := Default()

	if !meta.IsDefined("default_remote") {
		config.DefaultRemote = def.DefaultRemote
	}

	if !meta.IsDefined("status_prefix") {
		config.StatusPrefix = def.StatusPrefix
	}

	if !meta.IsDefined("status_passing") {
		config.StatusPassing = def.StatusPassing
	}

	if !meta.IsDefined("status_failing") {
		config.StatusFailing = def.StatusFailing
	}

	if !meta.IsDefined("provider") {
		config.Provider = def.Provider
	}

	if !meta.IsDefined("git_backend") {
		config.GitBackend = def.GitBackend
	}

	if !meta.IsDefined("browser") {
		config.Browser = def.Browser
	}

	if !meta.IsDefined("max_worker") {
		config.MaxWorker = def.MaxWorker
	}

	if !meta.IsDefined("debounce") {
		config.Debounce = def.Debounce
	}

	if config.Repos == nil {
		config.Repos = RepoOverrides{}
	}

	if config.Browsers == nil {
		config.Browsers = map[string]BrowserCommands{}
	}

	return &config, nil
}

func parseYAML(configPath string) (*Config, error) {
	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// keys missing from the file keep their default
	config := Default()
	if err := yaml.UnmarshalStrict(b, config); err != nil {
		return nil, err
	}

	if config.Repos == nil {
		config.Repos = RepoOverrides{}
	}

	if config.Browsers == nil {
		config.Browsers = map[string]BrowserCommands{}
	}

	return config, nil
}

// Validate checks the option values
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DefaultRemote) == "" {
		return errors.New("default_remote can't be empty")
	}

	if c.Provider != ci.TRAVIS && c.Provider != ci.GITHUB {
		return fmt.Errorf("invalid provider %q choose either \"travis\" or \"github\"", c.Provider)
	}

	if c.GitBackend != ExecBackend && c.GitBackend != GoGitBackend {
		return fmt.Errorf("invalid git_backend %q choose either \"exec\" or \"go-git\"", c.GitBackend)
	}

	if c.MaxWorker < 1 {
		return errors.New("max_worker needs to be at least 1")
	}

	if c.Debounce < 0 {
		return errors.New("debounce can't be negative")
	}

	if c.Browser != DefaultBrowser {
		if _, ok := c.Browsers[c.Browser]; !ok {
			return fmt.Errorf("browser %q has no [browsers.%s] entry", c.Browser, c.Browser)
		}
	}

	return nil
}

// Remote returns the remote configured for slug, if any
func (o RepoOverrides) Remote(slug git.Slug) (git.RemoteName, bool) {
	override, ok := o[string(slug)]
	if !ok || strings.TrimSpace(override.Remote) == "" {
		return "", false
	}
	return git.RemoteName(override.Remote), true
}
