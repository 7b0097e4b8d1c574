package manifest

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const stringRef = "@string/"

// ServiceConfig is the accessibility-service element of a service
// configuration file.
type ServiceConfig struct {
	XMLName     xml.Name `xml:"accessibility-service"`
	Description string   `xml:"http://schemas.android.com/apk/res/android description,attr"`
	EventTypes  string   `xml:"http://schemas.android.com/apk/res/android accessibilityEventTypes,attr"`
}

// ReadConfig parses a service configuration file.
func ReadConfig(path string) (ServiceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ServiceConfig{}, fmt.Errorf("IO error: %w", err)
	}

	var c ServiceConfig
	if err := xml.Unmarshal(data, &c); err != nil {
		return ServiceConfig{}, fmt.Errorf("XML decoding error in %s: %w", filepath.Base(path), err)
	}

	return c, nil
}

// Configs reads the configuration of every accessibility service of the
// decoded package. Services whose configuration file is missing are skipped.
func Configs(dir string, m *Manifest) ([]ServiceConfig, error) {
	paths, err := ConfigPaths(dir, m)
	if err != nil {
		return nil, err
	}

	var configs []ServiceConfig
	for _, p := range paths {
		c, err := ReadConfig(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}

		configs = append(configs, c)
	}

	return configs, nil
}

type resources struct {
	Strings []stringRes `xml:"string"`
}

type stringRes struct {
	Name string `xml:"name,attr"`
	Text string `xml:",chardata"`
}

// Strings reads the default string table res/values/strings.xml. Several
// entries may share a name.
func Strings(dir string) (map[string][]string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "res", "values", "strings.xml"))
	if err != nil {
		return nil, fmt.Errorf("IO error: %w", err)
	}

	var r resources
	if err := xml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("XML decoding error in strings.xml: %w", err)
	}

	table := make(map[string][]string, len(r.Strings))
	for _, s := range r.Strings {
		table[s.Name] = append(table[s.Name], unescape(s.Text))
	}

	return table, nil
}

// Descriptions returns the descriptions of all accessibility services of the
// decoded package, in service order. A description is either a reference to
// the string table or literal text.
//
// No description is not an error: the result is empty.
func Descriptions(dir string, m *Manifest) ([]string, error) {
	configs, err := Configs(dir, m)
	if err != nil {
		return nil, err
	}

	return ConfigDescriptions(dir, configs)
}

// ConfigDescriptions resolves the descriptions of already read service
// configurations; the string table of dir is read only when referenced.
func ConfigDescriptions(dir string, configs []ServiceConfig) ([]string, error) {
	var (
		table map[string][]string
		err   error
	)
	descriptions := []string{}

	for _, c := range configs {
		if c.Description == "" {
			continue
		}

		if !strings.HasPrefix(c.Description, stringRef) {
			descriptions = append(descriptions, c.Description)
			continue
		}

		if table == nil {
			table, err = Strings(dir)
			if err != nil {
				return nil, err
			}
		}

		for _, text := range table[strings.TrimPrefix(c.Description, stringRef)] {
			if strings.TrimSpace(text) != "" {
				descriptions = append(descriptions, text)
			}
		}
	}

	return descriptions, nil
}

// unescape resolves the backslash escapes apktool keeps in string
// resources.
func unescape(s string) string {
	r := strings.NewReplacer(`\'`, `'`, `\"`, `"`, `\n`, "\n", `\t`, "\t", `\@`, `@`, `\?`, `?`)
	s = strings.TrimSpace(r.Replace(s))

	// quoted resources keep their inner text
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = s[1 : len(s)-1]
	}

	return s
}
