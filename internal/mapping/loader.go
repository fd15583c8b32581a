package mapping

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/google/jsonschema-go/jsonschema"

	"go.jacobcolvin.com/graphdoc/internal/model"
)

// ErrMissingFile indicates a version folder was missing its schema or
// mapping file.
var ErrMissingFile = errors.New("missing required file")

const (
	schemaFileName  = "schema.json"
	mappingFileName = "mapping.yaml"
	styleFileName   = "style.css"
)

var versionDirPattern = regexp.MustCompile(`^v(\d+)$`)

// LoadFromFolder reads typeDir/v<N>/ subfolders and returns one GraphType
// per version folder found. Each version folder must contain schema.json
// and mapping.yaml; style.css is optional.
func LoadFromFolder(typeDir string) ([]*model.GraphType, error) {
	entries, err := os.ReadDir(typeDir)
	if err != nil {
		return nil, fmt.Errorf("read graph type folder %s: %w", typeDir, err)
	}

	typeName := filepath.Base(typeDir)

	var types []*model.GraphType

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		m := versionDirPattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}

		version, convErr := strconv.Atoi(m[1])
		if convErr != nil {
			continue
		}

		versionDir := filepath.Join(typeDir, entry.Name())

		gt, loadErr := loadVersion(typeName, version, versionDir)
		if loadErr != nil {
			return nil, loadErr
		}

		types = append(types, gt)
	}

	return types, nil
}

func loadVersion(typeName string, version int, versionDir string) (*model.GraphType, error) {
	schemaPath := filepath.Join(versionDir, schemaFileName)

	schemaData, err := os.ReadFile(schemaPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, schemaPath)
		}

		return nil, fmt.Errorf("read %s: %w", schemaPath, err)
	}

	var s jsonschema.Schema

	if err := json.Unmarshal(schemaData, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", schemaPath, err)
	}

	mappingPath := filepath.Join(versionDir, mappingFileName)

	mappingData, err := os.ReadFile(mappingPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, mappingPath)
		}

		return nil, fmt.Errorf("read %s: %w", mappingPath, err)
	}

	gm, err := Parse(mappingData)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", mappingPath, err)
	}

	if gm.Map.Version != version {
		return nil, fmt.Errorf("%s: map.version %d does not match folder v%d", mappingPath, gm.Map.Version, version)
	}

	style := ""

	stylePath := filepath.Join(versionDir, styleFileName)
	if data, err := os.ReadFile(stylePath); err == nil {
		style = string(data)
	}

	patterns := gm.Map.FilePatterns
	if len(patterns) == 0 {
		patterns = []string{fmt.Sprintf("**/*.%s.yaml", typeName)}
	}

	return &model.GraphType{
		ID:           typeName,
		Version:      version,
		FilePatterns: patterns,
		Schema:       &s,
		Mapping:      gm,
		StyleSheet:   style,
	}, nil
}
