// Package manifest reads the accessibility service declarations of an
// application package decoded by apktool.
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

const (
	androidNS = "http://schemas.android.com/apk/res/android"

	// BindPermission is the permission an accessibility service declares.
	BindPermission = "android.permission.BIND_ACCESSIBILITY_SERVICE"

	metaDataName = "android.accessibilityservice"

	manifestFile = "AndroidManifest.xml"
)

var (
	ErrNoManifest             = errors.New("no AndroidManifest.xml")
	ErrNoAccessibilityService = errors.New("no accessibility service")
)

// Manifest is the part of AndroidManifest.xml read by the scanner.
type Manifest struct {
	XMLName     xml.Name    `xml:"manifest"`
	Package     string      `xml:"package,attr"`
	Application Application `xml:"application"`
}

type Application struct {
	Services []Service `xml:"service"`
}

type Service struct {
	Name       string     `xml:"http://schemas.android.com/apk/res/android name,attr"`
	Permission string     `xml:"http://schemas.android.com/apk/res/android permission,attr"`
	MetaData   []MetaData `xml:"meta-data"`
}

type MetaData struct {
	Name     string `xml:"http://schemas.android.com/apk/res/android name,attr"`
	Resource string `xml:"http://schemas.android.com/apk/res/android resource,attr"`
}

// Read parses the AndroidManifest.xml of the decoded package in dir.
func Read(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w in %s", ErrNoManifest, dir)
		}
		return nil, fmt.Errorf("IO error: %w", err)
	}

	var m Manifest
	if err := xml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("XML decoding error: %w", err)
	}

	return &m, nil
}

// AccessibilityServices returns the services bound by the accessibility
// permission.
func (m *Manifest) AccessibilityServices() []Service {
	var services []Service
	for _, s := range m.Application.Services {
		if s.Permission == BindPermission {
			services = append(services, s)
		}
	}

	return services
}

// ConfigResource returns the resource reference of the service
// configuration, like "@xml/accessibility_config". The meta-data named
// android.accessibilityservice is preferred; otherwise the first meta-data
// with a resource is used.
func (s Service) ConfigResource() (string, bool) {
	for _, md := range s.MetaData {
		if md.Name == metaDataName && md.Resource != "" {
			return md.Resource, true
		}
	}

	for _, md := range s.MetaData {
		if md.Resource != "" {
			return md.Resource, true
		}
	}

	return "", false
}

// ConfigPaths returns the paths of the configuration files of all
// accessibility services, in declaration order.
func ConfigPaths(dir string, m *Manifest) ([]string, error) {
	services := m.AccessibilityServices()
	if len(services) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoAccessibilityService, m.Package)
	}

	var paths []string
	for _, s := range services {
		res, ok := s.ConfigResource()
		if !ok {
			continue
		}

		paths = append(paths, resourcePath(dir, res))
	}

	return paths, nil
}

// resourcePath maps "@xml/name" to dir/res/xml/name.xml.
func resourcePath(dir, res string) string {
	res = strings.TrimPrefix(res, "@")
	return filepath.Join(dir, "res", filepath.FromSlash(res)+".xml")
}
