// Package manifest declares container services in YAML.
//
//	services:
//	  - name: db
//	    lifecycle: singleton
//	    factory: postgres
//	    depends_on: [config, logger]
//	aliases:
//	  database: db
//
// A manifest only names factories; the Go functions behind those names are
// supplied by a Catalog when the manifest is applied to a container.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-container/framework/container"
)

// ErrUnknownFactory is returned by Apply when a service names a factory the
// catalog does not provide.
var ErrUnknownFactory = errors.New("manifest: unknown factory")

// Manifest is a parsed service declaration file.
type Manifest struct {
	Services []Service        `yaml:"services"`
	Aliases  map[string]string `yaml:"aliases,omitempty"`
}

// Service declares one descriptor.
type Service struct {
	Name      string   `yaml:"name"`
	Lifecycle string   `yaml:"lifecycle,omitempty"` // default: singleton
	Factory   string   `yaml:"factory,omitempty"`   // default: the service name
	DependsOn []string `yaml:"depends_on,omitempty"`
}

// Catalog maps factory keys to constructors.
type Catalog map[string]container.Factory

// Load reads and parses path from fsys.
//
//	m, err := manifest.Load(os.DirFS("."), "services.yaml")
func Load(fsys fs.FS, path string) (*Manifest, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a manifest. Unknown keys are rejected.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if err := m.check(); err != nil {
		return nil, err
	}
	return &m, nil
}

// check catches mistakes that do not need a container: missing names,
// unknown lifecycles, repeated names and blank dependencies.
func (m *Manifest) check() error {
	var errs []error
	seen := make(map[string]bool, len(m.Services))
	for i, svc := range m.Services {
		if strings.TrimSpace(svc.Name) == "" {
			errs = append(errs, fmt.Errorf("services[%d]: missing required field: name", i))
			continue
		}
		if seen[svc.Name] {
			errs = append(errs, fmt.Errorf("services[%d]: %w: [%s]", i, container.ErrDuplicateService, svc.Name))
		}
		seen[svc.Name] = true
		if _, err := svc.lifecycle(); err != nil {
			errs = append(errs, fmt.Errorf("service [%s]: %w", svc.Name, err))
		}
		for _, dep := range svc.DependsOn {
			if strings.TrimSpace(dep) == "" {
				errs = append(errs, fmt.Errorf("service [%s]: blank dependency", svc.Name))
			}
		}
	}
	return errors.Join(errs...)
}

func (s Service) lifecycle() (container.Lifecycle, error) {
	if s.Lifecycle == "" {
		return container.Singleton, nil
	}
	return container.ParseLifecycle(s.Lifecycle)
}

func (s Service) factoryKey() string {
	if s.Factory == "" {
		return s.Name
	}
	return s.Factory
}

// Descriptor converts s into a container descriptor using factories from catalog.
func (s Service) Descriptor(catalog Catalog) (container.Descriptor, error) {
	lifecycle, err := s.lifecycle()
	if err != nil {
		return container.Descriptor{}, fmt.Errorf("service [%s]: %w", s.Name, err)
	}
	factory, ok := catalog[s.factoryKey()]
	if !ok {
		return container.Descriptor{}, fmt.Errorf("%w %q for service [%s]", ErrUnknownFactory, s.factoryKey(), s.Name)
	}
	return container.Descriptor{
		Name:         s.Name,
		Lifecycle:    lifecycle,
		Dependencies: s.DependsOn,
		Factory:      factory,
	}, nil
}

// Apply registers every service and alias in declaration order. It stops at
// the first failure; services registered before it stay registered.
func (m *Manifest) Apply(c *container.Container, catalog Catalog) error {
	for _, svc := range m.Services {
		d, err := svc.Descriptor(catalog)
		if err != nil {
			return err
		}
		if err := c.Register(d); err != nil {
			return err
		}
	}
	for _, alias := range m.aliasNames() {
		if err := c.Alias(m.Aliases[alias], alias); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manifest) aliasNames() []string {
	out := make([]string, 0, len(m.Aliases))
	for alias := range m.Aliases {
		out = append(out, alias)
	}
	sort.Strings(out)
	return out
}

// StubCatalog returns a catalog with a placeholder for every factory key m
// uses. Each placeholder returns the service's factory key, which is enough
// to register the graph, validate it and resolve through it.
func StubCatalog(m *Manifest) Catalog {
	catalog := make(Catalog, len(m.Services))
	for _, svc := range m.Services {
		key := svc.factoryKey()
		catalog[key] = func([]any) (any, error) { return key, nil }
	}
	return catalog
}
