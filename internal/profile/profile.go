package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/pizza-dough/internal/calculator"
)

// Format selects the serialization used for a profile document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

var (
	// ErrInvalidDocument is returned when a profile document cannot be parsed or fails validation.
	ErrInvalidDocument = errors.New("invalid profile document")
	// ErrUnsupportedFormat is returned for file extensions or content types other than JSON and YAML.
	ErrUnsupportedFormat = errors.New("unsupported profile format")
)

// Profile is the validated content of a configuration document.
type Profile struct {
	Recipe calculator.Recipe
	Eaters []calculator.EaterType
	Lang   language.Tag
	Theme  string
}

// Default returns the built-in recipe and eater types.
func Default() Profile {
	return Profile{
		Recipe: calculator.DefaultRecipe(),
		Eaters: calculator.DefaultEaterTypes(),
		Lang:   language.English,
		Theme:  ThemeLight,
	}
}

// document mirrors the on-disk shape. Recipe fields are pointers so that a
// partial recipe can be merged over the current one.
type document struct {
	Recipe *recipeDocument `json:"recipe,omitempty" yaml:"recipe,omitempty"`
	Eaters []eaterDocument `json:"eaters,omitempty" yaml:"eaters,omitempty"`
	Lang   string          `json:"lang,omitempty" yaml:"lang,omitempty"`
	Theme  string          `json:"theme,omitempty" yaml:"theme,omitempty"`
}

type recipeDocument struct {
	PizzasPerKg           *float64 `json:"pizzasPerKg,omitempty" yaml:"pizzasPerKg,omitempty"`
	YeastPerKg            *float64 `json:"yeastPerKg,omitempty" yaml:"yeastPerKg,omitempty"`
	SaltPerKg             *float64 `json:"saltPerKg,omitempty" yaml:"saltPerKg,omitempty"`
	ReferencePizzaWeightG *float64 `json:"referencePizzaWeightG,omitempty" yaml:"referencePizzaWeightG,omitempty"`
}

type eaterDocument struct {
	Name   string   `json:"name" yaml:"name"`
	Factor *float64 `json:"factor" yaml:"factor"`
}

// Decode reads a document and merges it over base. Recipe fields and the
// eater list that the document omits keep their values from base.
func Decode(r io.Reader, format Format, base Profile) (Profile, error) {
	var doc document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return Profile{}, fmt.Errorf("%w: parse JSON: %v", ErrInvalidDocument, err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return Profile{}, fmt.Errorf("%w: empty document", ErrInvalidDocument)
			}
			return Profile{}, fmt.Errorf("%w: parse YAML: %v", ErrInvalidDocument, err)
		}
	default:
		return Profile{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	return merge(doc, base)
}

// Encode writes p in the requested format.
func Encode(w io.Writer, format Format, p Profile) error {
	doc := toDocument(p)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode YAML: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// LoadFile decodes the document at path, picking the format from its extension.
func LoadFile(path string, base Profile) (Profile, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Profile{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return Profile{}, fmt.Errorf("open profile: %w", err)
	}
	defer f.Close()

	return Decode(f, format, base)
}

// FormatFromPath maps .json, .yaml and .yml extensions to a Format.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// FormatFromContentType maps a Content-Type header to a Format. An empty
// header is treated as JSON.
func FormatFromContentType(contentType string) (Format, error) {
	if strings.TrimSpace(contentType) == "" {
		return FormatJSON, nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	switch mediaType {
	case "application/json":
		return FormatJSON, nil
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mediaType)
}

// ContentType returns the MIME type used when serving a Format.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

func merge(doc document, base Profile) (Profile, error) {
	out := Profile{
		Recipe: base.Recipe,
		Eaters: base.Eaters,
		Lang:   base.Lang,
		Theme:  base.Theme,
	}

	if doc.Recipe != nil {
		setIfPresent(&out.Recipe.PizzasPerKg, doc.Recipe.PizzasPerKg)
		setIfPresent(&out.Recipe.YeastPerKg, doc.Recipe.YeastPerKg)
		setIfPresent(&out.Recipe.SaltPerKg, doc.Recipe.SaltPerKg)
		setIfPresent(&out.Recipe.ReferencePizzaWeightG, doc.Recipe.ReferencePizzaWeightG)
	}
	if err := calculator.ValidateRecipe(out.Recipe); err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if len(doc.Eaters) > 0 {
		eaters := make([]calculator.EaterType, 0, len(doc.Eaters))
		seen := make(map[string]struct{}, len(doc.Eaters))
		for i, e := range doc.Eaters {
			if e.Factor == nil {
				return Profile{}, fmt.Errorf("%w: eaters[%d] is missing a factor", ErrInvalidDocument, i)
			}
			eater := calculator.EaterType{Name: strings.TrimSpace(e.Name), Factor: *e.Factor}
			if err := calculator.ValidateEaterType(eater); err != nil {
				return Profile{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
			}
			if _, dup := seen[eater.Name]; dup {
				return Profile{}, fmt.Errorf("%w: duplicate eater name %q", ErrInvalidDocument, eater.Name)
			}
			seen[eater.Name] = struct{}{}
			eaters = append(eaters, eater)
		}
		out.Eaters = eaters
	}
	out.Eaters = append([]calculator.EaterType(nil), out.Eaters...)

	if doc.Lang != "" {
		tag, err := language.Parse(doc.Lang)
		if err != nil {
			return Profile{}, fmt.Errorf("%w: lang %q: %v", ErrInvalidDocument, doc.Lang, err)
		}
		if tag.String() != base.Lang.String() {
			out.Eaters = LocalizeEaterNames(out.Eaters, tag)
		}
		out.Lang = tag
	}
	if out.Lang == language.Und {
		out.Lang = language.English
	}

	switch doc.Theme {
	case "":
	case ThemeLight, ThemeDark:
		out.Theme = doc.Theme
	default:
		return Profile{}, fmt.Errorf("%w: theme must be %q or %q, got %q", ErrInvalidDocument, ThemeLight, ThemeDark, doc.Theme)
	}
	if out.Theme == "" {
		out.Theme = ThemeLight
	}

	return out, nil
}

func setIfPresent(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func toDocument(p Profile) document {
	r := p.Recipe
	doc := document{
		Recipe: &recipeDocument{
			PizzasPerKg:           &r.PizzasPerKg,
			YeastPerKg:            &r.YeastPerKg,
			SaltPerKg:             &r.SaltPerKg,
			ReferencePizzaWeightG: &r.ReferencePizzaWeightG,
		},
		Eaters: make([]eaterDocument, 0, len(p.Eaters)),
		Lang:   p.Lang.String(),
		Theme:  p.Theme,
	}
	for _, e := range p.Eaters {
		factor := e.Factor
		doc.Eaters = append(doc.Eaters, eaterDocument{Name: e.Name, Factor: &factor})
	}
	return doc
}
