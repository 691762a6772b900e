// Package config handles apimodel validator configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/roach88/apimodel/internal/model"
	"github.com/roach88/apimodel/internal/validator"
)

// CurrentConfigVersion is the current version of the config file format.
const CurrentConfigVersion = 1

// EnvFailFast overrides FailFast when set to a boolean value.
const EnvFailFast = "APIMODEL_FAIL_FAST"

// Config represents the apimodel.yaml configuration file.
type Config struct {
	Version    int    `yaml:"version"`
	FailFast   bool   `yaml:"fail_fast"`
	JSONEvents bool   `yaml:"json_events"`
	Routing    string `yaml:"routing,omitempty"`
	Policy     Policy `yaml:"policy"`
}

// Policy is the file form of validator.Policy. Type names are written as
// "namespace:Name".
type Policy struct {
	RequestBase             string              `yaml:"request_base"`
	ResponseBase            string              `yaml:"response_base"`
	Roots                   []string            `yaml:"roots"`
	ReuseBases              map[string]string   `yaml:"reuse_bases,omitempty"`
	DisambiguatedNamespaces map[string]string   `yaml:"disambiguated_namespaces,omitempty"`
	DiscriminatedParents    map[string]string   `yaml:"discriminated_parents,omitempty"`
	ScalarEvents            map[string][]string `yaml:"scalar_events,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	p := validator.DefaultPolicy()
	cfg := &Config{
		Version:    CurrentConfigVersion,
		JSONEvents: true,
		Policy: Policy{
			RequestBase:             p.RequestBase.String(),
			ResponseBase:            p.ResponseBase.String(),
			ReuseBases:              stringKeys(p.ReuseBases),
			DisambiguatedNamespaces: p.DisambiguatedNamespaces,
			DiscriminatedParents:    stringKeys(p.DiscriminatedParents),
		},
	}
	for _, r := range p.Roots {
		cfg.Policy.Roots = append(cfg.Policy.Roots, r.String())
	}
	return cfg
}

func stringKeys(m map[model.TypeName]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k.String()] = v
	}
	return out
}

// Load reads a Config from a file path. Values in the file are applied over
// the defaults: maps are merged, lists and scalars replaced.
func Load(path string) (*Config, error) {
	f, err := os.Open(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the Config to a file path.
func (c *Config) Save(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return enc.Encode(c)
}

// ApplyEnv applies environment overrides.
func (c *Config) ApplyEnv() error {
	raw, ok := os.LookupEnv(EnvFailFast)
	if !ok || raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid boolean %q", EnvFailFast, raw)
	}
	c.FailFast = v
	return nil
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	if c.Version != CurrentConfigVersion {
		return errors.New("unsupported config version")
	}
	_, err := c.Policy.convert()
	return err
}

// ValidatorPolicy converts the file form into a validator.Policy.
func (c *Config) ValidatorPolicy() (validator.Policy, error) {
	return c.Policy.convert()
}

func (p Policy) convert() (validator.Policy, error) {
	var errs []error
	parse := func(field, s string) model.TypeName {
		n, err := model.ParseTypeName(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("policy.%s: %w", field, err))
		}
		return n
	}
	parseMap := func(field string, m map[string]string) map[model.TypeName]string {
		out := make(map[model.TypeName]string, len(m))
		for _, k := range sortedKeys(m) {
			out[parse(field, k)] = m[k]
		}
		return out
	}

	out := validator.Policy{
		RequestBase:             parse("request_base", p.RequestBase),
		ResponseBase:            parse("response_base", p.ResponseBase),
		ReuseBases:              parseMap("reuse_bases", p.ReuseBases),
		DisambiguatedNamespaces: make(map[string]string, len(p.DisambiguatedNamespaces)),
		DiscriminatedParents:    parseMap("discriminated_parents", p.DiscriminatedParents),
		ScalarEvents:            make(map[model.TypeName][]validator.JSONEvent, len(p.ScalarEvents)),
	}
	for _, r := range p.Roots {
		out.Roots = append(out.Roots, parse("roots", r))
	}
	for ns, reason := range p.DisambiguatedNamespaces {
		if ns == "" {
			errs = append(errs, errors.New("policy.disambiguated_namespaces: empty namespace"))
		}
		out.DisambiguatedNamespaces[ns] = reason
	}
	for _, k := range sortedKeys(p.ScalarEvents) {
		name := parse("scalar_events", k)
		for _, raw := range p.ScalarEvents[k] {
			e, err := validator.ParseJSONEvent(raw)
			if err != nil {
				errs = append(errs, fmt.Errorf("policy.scalar_events[%s]: %w", k, err))
				continue
			}
			out.ScalarEvents[name] = append(out.ScalarEvents[name], e)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return validator.Policy{}, err
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Options assembles validator options from the configuration.
func (c *Config) Options() (validator.Options, error) {
	policy, err := c.ValidatorPolicy()
	if err != nil {
		return validator.Options{}, err
	}
	return validator.Options{
		Policy:     policy,
		FailFast:   c.FailFast,
		JSONEvents: c.JSONEvents,
	}, nil
}
