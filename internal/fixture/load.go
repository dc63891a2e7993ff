package fixture

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/paiml/decy-sub003/internal/hir"
)

// Parse decodes one fixture document. Unknown keys are rejected.
func Parse(data []byte) ([]*hir.Func, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return f.Build()
}

// Loader reads fixtures through afs, so locations may be local paths or
// any URL scheme afs supports (file://, mem://, gs://, s3://...).
type Loader struct {
	fs afs.Service
}

// NewLoader creates a Loader backed by the default afs service.
func NewLoader() *Loader {
	return &Loader{fs: afs.New()}
}

// Load reads the fixture at location. When location is a directory every
// *.yaml or *.yml file directly inside it is loaded in name order.
func (l *Loader) Load(ctx context.Context, location string) ([]*hir.Func, error) {
	obj, err := l.fs.Object(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", location, err)
	}
	if obj.IsDir() {
		return l.LoadDir(ctx, location)
	}
	return l.loadFile(ctx, location)
}

func (l *Loader) loadFile(ctx context.Context, location string) ([]*hir.Func, error) {
	data, err := l.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", location, err)
	}
	fns, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	return fns, nil
}

// LoadDir loads every fixture file in dir. Function names must be unique
// across files.
func (l *Loader) LoadDir(ctx context.Context, dir string) ([]*hir.Func, error) {
	objects, err := l.fs.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var urls []string
	for _, obj := range objects {
		if obj.IsDir() {
			continue
		}
		switch strings.ToLower(path.Ext(obj.Name())) {
		case ".yaml", ".yml":
			urls = append(urls, obj.URL())
		}
	}
	sort.Strings(urls)

	var out []*hir.Func
	origin := make(map[string]string)
	for _, u := range urls {
		fns, err := l.loadFile(ctx, u)
		if err != nil {
			return nil, err
		}
		for _, fn := range fns {
			if prev, dup := origin[fn.Name]; dup {
				return nil, fmt.Errorf("%s: function %q already defined in %s", u, fn.Name, prev)
			}
			origin[fn.Name] = u
		}
		out = append(out, fns...)
	}
	return out, nil
}

// Load reads location with a default Loader.
func Load(ctx context.Context, location string) ([]*hir.Func, error) {
	return NewLoader().Load(ctx, location)
}

// LoadDir reads every fixture in dir with a default Loader.
func LoadDir(ctx context.Context, dir string) ([]*hir.Func, error) {
	return NewLoader().LoadDir(ctx, dir)
}
