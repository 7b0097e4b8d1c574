package pipeline

import (
	"github.com/revelaction/phascan/manifest"
)

// LoadApp reads the package name, the accessibility service descriptions
// and event types of an apktool decoded directory.
func LoadApp(dir string) (App, error) {
	m, err := manifest.Read(dir)
	if err != nil {
		return App{}, err
	}

	configs, err := manifest.Configs(dir, m)
	if err != nil {
		return App{}, err
	}

	descriptions, err := manifest.ConfigDescriptions(dir, configs)
	if err != nil {
		return App{}, err
	}

	return App{
		Package:      m.Package,
		Source:       dir,
		Descriptions: descriptions,
		EventTypes:   manifest.EventTypes(configs),
	}, nil
}
