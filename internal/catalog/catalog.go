package catalog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed scenarios/*.yaml
var builtin embed.FS

// Catalog maps scenario ids to immutable scenarios. Lookups return deep
// copies so callers can never mutate catalog data.
type Catalog struct {
	clusters  map[string]*ClusterSnapshot
	pipelines map[string]*Pipeline
}

// scenarioFile is one YAML document of a scenario file.
type scenarioFile struct {
	Kind     Family           `yaml:"kind"`
	Cluster  *ClusterSnapshot `yaml:"cluster,omitempty"`
	Pipeline *Pipeline        `yaml:"pipeline,omitempty"`
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		clusters:  make(map[string]*ClusterSnapshot),
		pipelines: make(map[string]*Pipeline),
	}
}

// Default returns a catalog with the built-in scenarios.
func Default() (*Catalog, error) {
	c := New()
	if err := c.LoadFS(builtin, "scenarios"); err != nil {
		return nil, fmt.Errorf("load built-in scenarios: %w", err)
	}
	return c, nil
}

// LoadDir merges every *.yaml and *.yml file of dir into the catalog.
func (c *Catalog) LoadDir(dir string) error {
	return c.LoadFS(os.DirFS(dir), ".")
}

// LoadFS merges every *.yaml and *.yml file under root of fsys into the catalog.
func (c *Catalog) LoadFS(fsys fs.FS, root string) error {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return fmt.Errorf("read scenario dir %q: %w", root, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.ToSlash(filepath.Join(root, entry.Name()))
		raw, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read scenario file %q: %w", path, err)
		}
		if err := c.Parse(raw); err != nil {
			return fmt.Errorf("parse scenario file %q: %w", path, err)
		}
	}
	return nil
}

// Parse decodes one or more YAML scenario documents and adds them.
func (c *Catalog) Parse(raw []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	for {
		var doc scenarioFile
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch doc.Kind {
		case FamilyCluster:
			if doc.Cluster == nil {
				return fmt.Errorf("cluster document without cluster body")
			}
			if err := c.AddCluster(doc.Cluster); err != nil {
				return err
			}
		case FamilyPipeline:
			if doc.Pipeline == nil {
				return fmt.Errorf("pipeline document without pipeline body")
			}
			if err := c.AddPipeline(doc.Pipeline); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported scenario kind %q", doc.Kind)
		}
	}
}

// AddCluster validates and stores a copy of s, replacing any scenario with the same id.
func (c *Catalog) AddCluster(s *ClusterSnapshot) error {
	if err := ValidateCluster(s); err != nil {
		return err
	}
	c.clusters[s.ID] = s.Clone()
	return nil
}

// AddPipeline validates and stores a copy of p, replacing any pipeline with the same id.
func (c *Catalog) AddPipeline(p *Pipeline) error {
	if err := ValidatePipeline(p); err != nil {
		return err
	}
	c.pipelines[p.ID] = p.Clone()
	return nil
}

// Cluster returns a copy of the cluster scenario with the given id.
func (c *Catalog) Cluster(id string) (*ClusterSnapshot, error) {
	s, ok := c.clusters[id]
	if !ok {
		return nil, &NotFoundError{Kind: "cluster scenario", Name: id}
	}
	return s.Clone(), nil
}

// Pipeline returns a copy of the pipeline with the given id.
func (c *Catalog) Pipeline(id string) (*Pipeline, error) {
	p, ok := c.pipelines[id]
	if !ok {
		return nil, &NotFoundError{Kind: "pipeline", Name: id}
	}
	return p.Clone(), nil
}

// ClusterIDs returns the cluster scenario ids in sorted order.
func (c *Catalog) ClusterIDs() []string {
	return sortedKeys(c.clusters)
}

// PipelineIDs returns the pipeline ids in sorted order.
func (c *Catalog) PipelineIDs() []string {
	return sortedKeys(c.pipelines)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
