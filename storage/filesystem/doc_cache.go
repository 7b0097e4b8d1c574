package filesystem

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	sent "github.com/revelaction/phascan/sentence"
	"github.com/revelaction/phascan/storage"
)

// DocCache keeps one JSON file per parsed text in a directory.
type DocCache struct {
	dir string
}

var _ storage.DocCache = (*DocCache)(nil)

// NewDocCache creates dir if needed.
func NewDocCache(dir string) (*DocCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &DocCache{dir: dir}, nil
}

func (c *DocCache) path(text string) string {
	return filepath.Join(c.dir, storage.Key(text)+".json")
}

func (c *DocCache) Get(text string) (sent.Doc, bool, error) {
	content, err := os.ReadFile(c.path(text))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return sent.Doc{}, false, nil
		}
		return sent.Doc{}, false, err
	}

	var doc sent.Doc
	if err := json.Unmarshal(content, &doc); err != nil {
		return sent.Doc{}, false, err
	}

	return doc, true, nil
}

func (c *DocCache) Put(text string, doc sent.Doc) error {
	if doc.Title == "" {
		doc.Title = text
	}

	content, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	return os.WriteFile(c.path(text), content, 0644)
}
