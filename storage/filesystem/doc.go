package filesystem

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/revelaction/phascan/parse"
	sent "github.com/revelaction/phascan/sentence"
)

// ReadDoc reads a pre-parsed doc JSON file. A doc without title gets the
// file name.
func ReadDoc(path string) (sent.Doc, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return sent.Doc{}, err
	}

	var doc sent.Doc
	if err := json.Unmarshal(content, &doc); err != nil {
		return sent.Doc{}, fmt.Errorf("JSON decoding error in %s: %w", filepath.Base(path), err)
	}

	if doc.Title == "" {
		doc.Title = filepath.Base(path)
	}

	return doc, nil
}

// ReadDocs reads all .json docs of dir into a parser keyed by doc title,
// the text each doc was parsed from.
func ReadDocs(dir string) (parse.Docs, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	docs := parse.Docs{}
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}

		doc, err := ReadDoc(filepath.Join(dir, file.Name()))
		if err != nil {
			return nil, err
		}

		docs[doc.Title] = doc
	}

	return docs, nil
}
