package filesystem

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/revelaction/phascan/category"
	"github.com/revelaction/phascan/storage"
)

// RuleStore keeps the rule table in one YAML file.
type RuleStore struct {
	path string
}

var _ storage.RuleRepository = (*RuleStore)(nil)

func NewRuleStore(path string) *RuleStore {
	return &RuleStore{path: path}
}

// ReadAll returns an empty table if the file does not exist yet.
func (rs *RuleStore) ReadAll() (category.Table, error) {
	f, err := os.Open(rs.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return category.Table{}, nil
		}
		return nil, err
	}
	defer f.Close()

	t, err := category.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rs.path, err)
	}

	return t, nil
}

func (rs *RuleStore) Read(name string) (category.Rule, error) {
	t, err := rs.ReadAll()
	if err != nil {
		return category.Rule{}, err
	}

	r, ok := t.Rule(name)
	if !ok {
		return category.Rule{}, fmt.Errorf("category %q: %w", name, storage.ErrNotFound)
	}

	return r, nil
}

func (rs *RuleStore) Write(r category.Rule) error {
	t, err := rs.ReadAll()
	if err != nil {
		return err
	}

	return rs.WriteAll(t.With(r))
}

func (rs *RuleStore) Delete(name string) error {
	t, err := rs.ReadAll()
	if err != nil {
		return err
	}

	if _, ok := t.Rule(name); !ok {
		return fmt.Errorf("category %q: %w", name, storage.ErrNotFound)
	}

	return rs.WriteAll(t.Without(name))
}

// WriteAll replaces the whole table. The file is replaced atomically.
func (rs *RuleStore) WriteAll(t category.Table) error {
	if err := t.Validate(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := category.Encode(&buf, t); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(rs.path), ".rules-*.yaml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), rs.path)
}
