package regions

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
)

//go:embed aliases.yaml
var aliasesYAML []byte

type aliasFile struct {
	Provinces map[string]string `yaml:"provinces"`
}

var (
	aliasOnce sync.Once
	aliases   map[string]string
	aliasErr  error
)

func loadAliases() (map[string]string, error) {
	aliasOnce.Do(func() {
		var f aliasFile
		if err := yaml.Unmarshal(aliasesYAML, &f); err != nil {
			aliasErr = err
			return
		}
		aliases = make(map[string]string, len(f.Provinces))
		for k, v := range f.Provinces {
			aliases[strings.ToLower(k)] = v
		}
	})
	return aliases, aliasErr
}

// NormalizeProvince maps a province name to its canonical spelling. Names
// without an alias are returned trimmed but otherwise unchanged.
func NormalizeProvince(name string) string {
	name = strings.TrimSpace(name)
	m, err := loadAliases()
	if err != nil {
		return name
	}
	if v, ok := m[strings.ToLower(name)]; ok {
		return v
	}
	return name
}
