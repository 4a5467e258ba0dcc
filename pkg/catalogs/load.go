package catalogs

import (
	"os"

	"github.com/goccy/go-yaml"

	pkgerrors "github.com/aecstation/costmap/pkg/errors"
)

// modelTypeYAML is the on-disk shape of a model type. Properties are
// decoded loosely and coerced into typed values afterwards.
type modelTypeYAML struct {
	ID            string         `yaml:"id"`
	Tag           string         `yaml:"tag"`
	Name          string         `yaml:"name"`
	ClassName     string         `yaml:"class_name"`
	FamilyName    string         `yaml:"family_name"`
	TypeName      string         `yaml:"type_name"`
	Properties    map[string]any `yaml:"properties"`
	InstanceCount int            `yaml:"instance_count"`
}

// modelCatalogYAML is the on-disk shape of an extracted model catalog.
type modelCatalogYAML struct {
	Project string          `yaml:"project"`
	Types   []modelTypeYAML `yaml:"types"`
}

// LoadModelCatalog reads an extracted model catalog from a YAML file.
// The file is the hand-off format of the external model extractor; the
// engine does not care how the types were derived.
func LoadModelCatalog(path string) (*ModelCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkgerrors.NewNotFoundError("model catalog", path)
		}
		return nil, pkgerrors.WrapIO("read", path, err)
	}
	return ParseModelCatalog(data, path)
}

// ParseModelCatalog decodes model catalog YAML. name is used in error
// messages only.
func ParseModelCatalog(data []byte, name string) (*ModelCatalog, error) {
	var file modelCatalogYAML
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, pkgerrors.WrapParse("yaml", name, err)
	}

	catalog := NewModelCatalog()
	for _, raw := range file.Types {
		t := &ModelType{
			ID:            raw.ID,
			Tag:           raw.Tag,
			Name:          raw.Name,
			ClassName:     raw.ClassName,
			FamilyName:    raw.FamilyName,
			TypeName:      raw.TypeName,
			Properties:    PropertiesFromAny(raw.Properties),
			InstanceCount: raw.InstanceCount,
		}
		if err := catalog.Add(t); err != nil {
			return nil, pkgerrors.NewParseError("yaml", name, "model type without id", err)
		}
	}
	return catalog, nil
}
