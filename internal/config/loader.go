package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/juju/loggo/v2"
	"gopkg.in/yaml.v3"

	"github.com/hemantobora/cloud-inventory/internal/models"
)

var logger = loggo.GetLogger("cloudinventory.config")

// ErrCloudNotFound is returned (inside a models.LoaderError) when a named
// cloud is not present in any configuration source.
var ErrCloudNotFound = errors.New("cloud not found")

// cloudsDocument is the top level shape of clouds.yaml and secure.yaml.
type cloudsDocument struct {
	Clouds map[string]map[string]any `yaml:"clouds"`
}

// cloudEntry is one decoded cloud before region expansion.
type cloudEntry struct {
	Type            string            `yaml:"type"`
	RegionName      string            `yaml:"region_name"`
	Regions         []regionEntry     `yaml:"regions"`
	Auth            models.AuthConfig `yaml:"auth"`
	IdentityVersion flexInt           `yaml:"identity_api_version"`
	AWSProfile      string            `yaml:"aws_profile"`
	Interface       string            `yaml:"interface"`
	Private         bool              `yaml:"private"`
	APIRateLimit    float64           `yaml:"api_rate_limit"`
	Extra           map[string]any    `yaml:",inline"`
}

// regionEntry accepts both `- RegionOne` and `- {name: RegionOne, values: {...}}`.
type regionEntry struct {
	Name   string
	Values map[string]any
}

func (r *regionEntry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		r.Name = value.Value
		return nil
	}
	var aux struct {
		Name   string         `yaml:"name"`
		Values map[string]any `yaml:"values"`
	}
	if err := value.Decode(&aux); err != nil {
		return err
	}
	if aux.Name == "" {
		return errors.New("region entry requires a name")
	}
	r.Name, r.Values = aux.Name, aux.Values
	return nil
}

// flexInt decodes identity_api_version written as 3, "3" or "2.0".
type flexInt int

func (f *flexInt) UnmarshalYAML(value *yaml.Node) error {
	s := strings.TrimSpace(value.Value)
	if s == "" {
		return nil
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid identity_api_version %q", value.Value)
	}
	*f = flexInt(n)
	return nil
}

// Loader resolves cloud configurations. Files are read lazily on the first
// lookup and cached for the lifetime of the Loader.
type Loader struct {
	files     []string
	lookupEnv func(string) (string, bool)

	mu       sync.Mutex
	loaded   bool
	path     string
	envCloud string
	clouds   map[string]map[string]any
}

// Option configures a Loader.
type Option func(*Loader)

// WithLookupEnv replaces os.LookupEnv, mainly for tests.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(l *Loader) { l.lookupEnv = fn }
}

// NewLoader creates a loader that reads the first existing file in files.
// A nil or empty list falls back to DefaultConfigFiles.
func NewLoader(files []string, opts ...Option) *Loader {
	if len(files) == 0 {
		files = DefaultConfigFiles()
	}
	l := &Loader{
		files:     append([]string(nil), files...),
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the clouds file that was actually read, if any.
func (l *Loader) Path() (string, error) {
	if err := l.load(); err != nil {
		return "", err
	}
	return l.path, nil
}

// CloudNames returns the configured cloud names: file clouds sorted by
// name, then the environment cloud.
func (l *Loader) CloudNames() ([]string, error) {
	if err := l.load(); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(l.clouds))
	for name := range l.clouds {
		if name == l.envCloud {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	if l.envCloud != "" {
		names = append(names, l.envCloud)
	}
	return names, nil
}

// GetAllCloudConfigs returns one CloudConfig per cloud and region.
func (l *Loader) GetAllCloudConfigs() ([]models.CloudConfig, error) {
	names, err := l.CloudNames()
	if err != nil {
		return nil, err
	}

	var configs []models.CloudConfig
	for _, name := range names {
		entry, err := l.decode(name, l.clouds[name])
		if err != nil {
			return nil, err
		}
		if len(entry.Regions) == 0 {
			configs = append(configs, entry.toConfig(name, entry.RegionName))
			continue
		}
		for _, region := range entry.Regions {
			cfg, err := l.regionConfig(name, region)
			if err != nil {
				return nil, err
			}
			configs = append(configs, cfg)
		}
	}
	logger.Debugf("resolved %d cloud configs from %d clouds", len(configs), len(names))
	return configs, nil
}

// GetOneCloudConfig resolves a single named cloud. The region is region_name
// when set, otherwise the first entry of regions.
func (l *Loader) GetOneCloudConfig(name string) (models.CloudConfig, error) {
	if err := l.load(); err != nil {
		return models.CloudConfig{}, err
	}
	raw, ok := l.clouds[name]
	if !ok {
		return models.CloudConfig{}, &models.LoaderError{Cloud: name, Path: l.path, Cause: ErrCloudNotFound}
	}
	entry, err := l.decode(name, raw)
	if err != nil {
		return models.CloudConfig{}, err
	}

	if entry.RegionName == "" && len(entry.Regions) > 0 {
		return l.regionConfig(name, entry.Regions[0])
	}
	for _, region := range entry.Regions {
		if region.Name == entry.RegionName {
			return l.regionConfig(name, region)
		}
	}
	return entry.toConfig(name, entry.RegionName), nil
}

// regionConfig overlays a region's values on its cloud and decodes the result.
func (l *Loader) regionConfig(name string, region regionEntry) (models.CloudConfig, error) {
	raw := l.clouds[name]
	if len(region.Values) > 0 {
		raw = mergeMaps(copyMap(raw), region.Values)
	}
	entry, err := l.decode(name, raw)
	if err != nil {
		return models.CloudConfig{}, err
	}
	return entry.toConfig(name, region.Name), nil
}

func (l *Loader) decode(name string, raw map[string]any) (cloudEntry, error) {
	var entry cloudEntry
	data, err := yaml.Marshal(raw)
	if err == nil {
		err = yaml.Unmarshal(data, &entry)
	}
	if err != nil {
		return cloudEntry{}, &models.LoaderError{Cloud: name, Path: l.path, Cause: err}
	}
	return entry, nil
}

func (e cloudEntry) toConfig(name, region string) models.CloudConfig {
	cfg := models.CloudConfig{
		Name:            name,
		Region:          region,
		Type:            e.Type,
		Auth:            e.Auth,
		IdentityVersion: int(e.IdentityVersion),
		AWSProfile:      e.AWSProfile,
		Interface:       e.Interface,
		Private:         e.Private,
		APIRateLimit:    e.APIRateLimit,
	}
	if cfg.Type == "" {
		cfg.Type = models.CloudTypeOpenStack
	}
	if len(e.Extra) > 0 {
		cfg.Extra = copyMap(e.Extra)
	}
	return cfg
}

// load reads the clouds file, merges secure.yaml and adds the environment cloud.
func (l *Loader) load() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loaded {
		return nil
	}

	clouds := map[string]map[string]any{}
	if path := firstExisting(l.files); path != "" {
		doc, err := readDocument(path)
		if err != nil {
			return err
		}
		clouds = doc.Clouds
		if clouds == nil {
			clouds = map[string]map[string]any{}
		}

		securePath := SecureFileFor(path)
		if firstExisting([]string{securePath}) != "" {
			secure, err := readDocument(securePath)
			if err != nil {
				return err
			}
			for name, values := range secure.Clouds {
				if base, ok := clouds[name]; ok {
					clouds[name] = mergeMaps(base, values)
				}
			}
			logger.Debugf("merged secrets from %s", securePath)
		}
		l.path = path
		logger.Debugf("loaded %d clouds from %s", len(clouds), path)
	} else {
		logger.Debugf("no clouds file found in %v", l.files)
	}

	if name, raw, ok := l.environmentCloud(); ok {
		if _, exists := clouds[name]; exists {
			logger.Warningf("cloud %q from environment shadowed by %s", name, l.path)
		} else {
			clouds[name] = raw
			l.envCloud = name
		}
	}

	l.clouds = clouds
	l.loaded = true
	return nil
}

func readDocument(path string) (*cloudsDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.LoaderError{Path: path, Cause: err}
	}
	var doc cloudsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &models.LoaderError{Path: path, Cause: fmt.Errorf("parsing: %w", err)}
	}
	return &doc, nil
}

// copyMap returns a deep copy of nested string-keyed maps.
func copyMap(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		if m, ok := v.(map[string]any); ok {
			dst[k] = copyMap(m)
			continue
		}
		dst[k] = v
	}
	return dst
}

// mergeMaps deep-merges src into dst; src wins on conflicts.
func mergeMaps(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = map[string]any{}
	}
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[k] = mergeMaps(dstMap, srcMap)
			continue
		}
		dst[k] = v
	}
	return dst
}
