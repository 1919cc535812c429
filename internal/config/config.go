package config

import (
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vango-dev/ducks/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "ducks.json"

	// DefaultAddr is the default development server address.
	DefaultAddr = ":4000"

	// DefaultRegion is the default S3 region.
	DefaultRegion = "us-east-1"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"
)

// Transports.
const (
	TransportHTTP = "http"
	TransportS3   = "s3"
)

// Delete modes, see resource.DeleteMode.
const (
	DeleteModeNoop   = "noop"
	DeleteModeCompat = "compat"
)

// Param search modes, see resource.ParamSearch.
const (
	ParamSearchDeep     = "deep"
	ParamSearchFirstKey = "firstKey"
)

// Config represents the complete ducks.json configuration.
type Config struct {
	// Server contains development server configuration.
	Server ServerConfig `json:"server"`

	// Log contains logging configuration.
	Log LogConfig `json:"log"`

	// Resources are the remote resources to bind.
	Resources []ResourceConfig `json:"resources"`

	// S3 configures the object store used by resources with the s3 transport.
	S3 S3Config `json:"s3,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains development server settings.
type ServerConfig struct {
	// Addr is the host:port to listen on.
	Addr string `json:"addr,omitempty"`

	// Devtools serves the store devtools socket at /_ducks/devtools.
	Devtools bool `json:"devtools"`

	// Metrics serves Prometheus metrics at /metrics.
	Metrics bool `json:"metrics"`

	// Tracing wraps resource requests in OpenTelemetry spans.
	Tracing bool `json:"tracing,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty"`
}

// ResourceConfig describes one resource.
type ResourceConfig struct {
	// Name is the resource name. It is upper-cased for action types.
	Name string `json:"name"`

	// URL is the base URL of the collection. For s3 resources only the path
	// is used; it defaults to "/<name>".
	URL string `json:"url,omitempty"`

	// Headers are sent with every request.
	Headers map[string]string `json:"headers,omitempty"`

	// Transport is "http" (default) or "s3".
	Transport string `json:"transport,omitempty"`

	// Seed is the initial data. The dev server also serves it.
	Seed []map[string]any `json:"seed,omitempty"`

	// DeleteMode is "noop" (default) or "compat".
	DeleteMode string `json:"deleteMode,omitempty"`

	// ParamSearch is "deep" (default) or "firstKey".
	ParamSearch string `json:"paramSearch,omitempty"`
}

// Path returns the path component of the resource URL.
func (r ResourceConfig) Path() string {
	u := r.URL
	if i := strings.Index(u, "://"); i >= 0 {
		rest := u[i+3:]
		j := strings.Index(rest, "/")
		if j < 0 {
			return "/"
		}
		u = rest[j:]
	}
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	if u == "" {
		return "/"
	}
	return u
}

// S3Config contains object store settings.
type S3Config struct {
	// Bucket is the bucket holding resource data.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is prepended to every object key.
	Prefix string `json:"prefix,omitempty"`

	// Region is the AWS region.
	Region string `json:"region,omitempty"`

	// Endpoint overrides the S3 endpoint, e.g. for MinIO.
	Endpoint string `json:"endpoint,omitempty"`

	// UsePathStyle addresses buckets by path instead of subdomain.
	UsePathStyle bool `json:"usePathStyle,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:     DefaultAddr,
			Devtools: true,
			Metrics:  true,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: "text",
		},
		S3: S3Config{
			Region: DefaultRegion,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for ducks.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("D101").
				WithDetail("No " + filepath.Base(path) + " found in " + filepath.Dir(path)).
				WithSuggestion("Create ducks.json or pass --config")
		}
		return nil, errors.New("D101").Wrap(err)
	}

	cfg, err := Parse(data)
	if err != nil {
		var e *errors.Error
		if stderrors.As(err, &e) && e.Location != nil {
			e.Location.File = path
		}
		return nil, err
	}

	cfg.configPath = path
	return cfg, nil
}

// Parse decodes configuration from JSON and applies defaults.
func Parse(data []byte) (*Config, error) {
	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		e := errors.New("D102").
			WithDetail("Failed to parse config: " + err.Error()).
			WithSuggestion("Check that the file is valid JSON")

		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case stderrors.As(err, &syntaxErr):
			e.WithOffset(ConfigFileName, data, syntaxErr.Offset)
		case stderrors.As(err, &typeErr):
			e.WithOffset(ConfigFileName, data, typeErr.Offset)
			if typeErr.Field != "" {
				e.WithField(typeErr.Field)
			}
		}
		return nil, e
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("D102").Wrap(err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Newf(errors.CategoryConfig, "write %s", path).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.S3.Region == "" {
		c.S3.Region = DefaultRegion
	}

	for i := range c.Resources {
		r := &c.Resources[i]
		if r.Transport == "" {
			r.Transport = TransportHTTP
		}
		if r.DeleteMode == "" {
			r.DeleteMode = DeleteModeNoop
		}
		if r.ParamSearch == "" {
			r.ParamSearch = ParamSearchDeep
		}
		if r.Transport == TransportS3 && r.URL == "" && r.Name != "" {
			r.URL = "/" + strings.ToLower(r.Name)
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return errors.New("D103").
			WithField("server.addr").
			WithSuggestion(`Use a value such as ":4000"`).
			Wrap(err)
	}

	seen := make(map[string]int, len(c.Resources))
	usesS3 := false

	for i, r := range c.Resources {
		field := fmt.Sprintf("resources[%d]", i)

		name := strings.ToUpper(strings.TrimSpace(r.Name))
		if name == "" {
			return errors.New("D104").WithField(field + ".name")
		}
		if prev, ok := seen[name]; ok {
			return errors.New("D105").
				WithField(field + ".name").
				WithDetail(fmt.Sprintf("%q is already used by resources[%d].", r.Name, prev))
		}
		seen[name] = i

		switch r.Transport {
		case TransportHTTP:
			if r.URL == "" {
				return errors.New("D106").
					WithField(field + ".url").
					WithExample(`{"name": "widget", "url": "http://localhost:4000/widgets"}`)
			}
		case TransportS3:
			usesS3 = true
		default:
			return errors.New("D107").
				WithField(field + ".transport").
				WithDetail(fmt.Sprintf("Got %q; transport must be \"http\" or \"s3\".", r.Transport))
		}

		for j, entity := range r.Seed {
			if _, ok := entity["id"]; !ok {
				return errors.New("D109").WithField(fmt.Sprintf("%s.seed[%d]", field, j))
			}
		}

		switch r.DeleteMode {
		case DeleteModeNoop, DeleteModeCompat:
		default:
			return errors.New("D110").WithField(field + ".deleteMode")
		}

		switch r.ParamSearch {
		case ParamSearchDeep, ParamSearchFirstKey:
		default:
			return errors.Newf(errors.CategoryConfig, "paramSearch must be %q or %q", ParamSearchDeep, ParamSearchFirstKey).
				WithField(field + ".paramSearch")
		}
	}

	if usesS3 && c.S3.Bucket == "" {
		return errors.New("D108").WithField("s3.bucket")
	}
	return nil
}

// Resource returns the resource with the given name. Names compare
// case-insensitively.
func (c *Config) Resource(name string) (ResourceConfig, bool) {
	for _, r := range c.Resources {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return ResourceConfig{}, false
}

// ResourceNames returns the configured resource names in file order.
func (c *Config) ResourceNames() []string {
	names := make([]string, 0, len(c.Resources))
	for _, r := range c.Resources {
		names = append(names, r.Name)
	}
	return names
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing ducks.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("D101").
				WithDetail("No ducks.json found in " + startDir + " or any parent directory").
				WithSuggestion("Create ducks.json or pass --config")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or the nearest parent that has a ducks.json.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
