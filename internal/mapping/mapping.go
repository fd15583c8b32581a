package mapping

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"

	"go.jacobcolvin.com/graphdoc/internal/model"
)

// ErrUnsupportedVersion indicates a mapping file declared a map.version this
// package has no parser for.
var ErrUnsupportedVersion = errors.New("unsupported mapping version")

// ErrParse indicates the mapping file's YAML could not be decoded.
var ErrParse = errors.New("parse mapping file")

// SupportedVersions lists every map.version this package can parse, in
// ascending order.
var SupportedVersions = []int{1}

// fileV1 is the on-disk shape of a version-1 mapping file.
type fileV1 struct {
	Map struct {
		ID               string   `yaml:"id"`
		Version          int      `yaml:"version"`
		FilePatterns     []string `yaml:"file-patterns"`
		MermaidType      string   `yaml:"mermaid-type"`
		DirectionField   string   `yaml:"direction-field"`
		DefaultDirection string   `yaml:"default-direction"`
	} `yaml:"map"`

	NodeShapes struct {
		SourcePath       string            `yaml:"source-path"`
		IDField          string            `yaml:"id-field"`
		LabelField       string            `yaml:"label-field"`
		ShapeField       string            `yaml:"shape-field"`
		DefaultShapes    map[string]string `yaml:"default-shapes"`
		Shapes           map[string]string `yaml:"shapes"`
		InitialConnector string            `yaml:"initial-connector"`
		FinalConnector   string            `yaml:"final-connector"`
	} `yaml:"node-shapes"`

	EdgeLinks struct {
		SourcePath    string            `yaml:"source-path"`
		FromField     string            `yaml:"from-field"`
		FromImplicit  string            `yaml:"from-implicit"`
		ToField       string            `yaml:"to-field"`
		LabelField    string            `yaml:"label-field"`
		LinkStyles    map[string]string `yaml:"link-styles"`
		LabelTemplate string            `yaml:"label-template"`
	} `yaml:"edge-links"`

	StyleRules *struct {
		Field string `yaml:"field"`
		Rules map[string]struct {
			Fill   string `yaml:"fill"`
			Stroke string `yaml:"stroke"`
			Color  string `yaml:"color"`
		} `yaml:"rules"`
	} `yaml:"style-rules"`

	Transforms []struct {
		Scope string `yaml:"scope"`
		Match struct {
			Field   string `yaml:"field"`
			Exists  *bool  `yaml:"exists"`
			Equals  any    `yaml:"equals"`
			Pattern string `yaml:"pattern"`
		} `yaml:"match"`
		JS string `yaml:"js"`
	} `yaml:"transforms"`
}

// peekVersion decodes only the map.version field, so the loader can select
// the right versioned parser before fully decoding the file.
func peekVersion(data []byte) (int, error) {
	var v struct {
		Map struct {
			Version int `yaml:"version"`
		} `yaml:"map"`
	}

	if err := yaml.Unmarshal(data, &v); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrParse, err)
	}

	return v.Map.Version, nil
}

// Parse decodes a mapping file's bytes into a [model.GraphMapping],
// dispatching on its declared map.version.
func Parse(data []byte) (*model.GraphMapping, error) {
	version, err := peekVersion(data)
	if err != nil {
		return nil, err
	}

	switch version {
	case 1:
		return parseV1(data)
	default:
		return nil, fmt.Errorf("%w: %d (supported: %v)", ErrUnsupportedVersion, version, SupportedVersions)
	}
}

func parseV1(data []byte) (*model.GraphMapping, error) {
	var f fileV1

	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	gm := &model.GraphMapping{
		Map: model.MapSection{
			ID:               f.Map.ID,
			Version:          f.Map.Version,
			FilePatterns:     f.Map.FilePatterns,
			MermaidType:      f.Map.MermaidType,
			DirectionField:   f.Map.DirectionField,
			DefaultDirection: f.Map.DefaultDirection,
		},
		NodeShapes: model.NodeShapesSection{
			SourcePath:       f.NodeShapes.SourcePath,
			IDField:          f.NodeShapes.IDField,
			LabelField:       f.NodeShapes.LabelField,
			ShapeField:       f.NodeShapes.ShapeField,
			DefaultShapes:    f.NodeShapes.DefaultShapes,
			Shapes:           f.NodeShapes.Shapes,
			InitialConnector: f.NodeShapes.InitialConnector,
			FinalConnector:   f.NodeShapes.FinalConnector,
		},
		EdgeLinks: model.EdgeLinksSection{
			SourcePath:    f.EdgeLinks.SourcePath,
			FromField:     f.EdgeLinks.FromField,
			FromImplicit:  f.EdgeLinks.FromImplicit,
			ToField:       f.EdgeLinks.ToField,
			LabelField:    f.EdgeLinks.LabelField,
			LinkStyles:    f.EdgeLinks.LinkStyles,
			LabelTemplate: f.EdgeLinks.LabelTemplate,
		},
	}

	if f.StyleRules != nil {
		rules := make(map[string]model.StyleRuleEntry, len(f.StyleRules.Rules))
		for k, v := range f.StyleRules.Rules {
			rules[k] = model.StyleRuleEntry{Fill: v.Fill, Stroke: v.Stroke, Color: v.Color}
		}

		gm.StyleRules = &model.StyleRulesSection{Field: f.StyleRules.Field, Rules: rules}
	}

	for _, t := range f.Transforms {
		gm.Transforms = append(gm.Transforms, model.TransformRule{
			Scope: model.TransformScope(t.Scope),
			Match: model.TransformMatch{
				Field:   t.Match.Field,
				Exists:  t.Match.Exists,
				Equals:  t.Match.Equals,
				Pattern: t.Match.Pattern,
			},
			JS: t.JS,
		})
	}

	return gm, nil
}
