package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reglet-dev/pkgreg/internal/domain/entities"
)

// Recognized build-command placeholders.
const (
	KeyRoot         = "root"
	KeyInstall      = "install"
	KeyBuildPath    = "build_path"
	KeySourcePath   = "source_path"
	KeyName         = "name"
	KeyVersion      = "version"
	KeyVariantIndex = "variant_index"
)

// recognizedKeys maps each placeholder to whether it is late-bound.
// Late-bound keys are filled in by the external build launcher, so they are
// left as written when the caller has no value for them.
var recognizedKeys = map[string]bool{
	KeyRoot:         false,
	KeyInstall:      true,
	KeyBuildPath:    true,
	KeySourcePath:   false,
	KeyName:         false,
	KeyVersion:      false,
	KeyVariantIndex: false,
}

// RecognizedKeys returns the placeholder names a build command may use, sorted.
func RecognizedKeys() []string {
	keys := make([]string, 0, len(recognizedKeys))
	for k := range recognizedKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BuildContext supplies placeholder values for one render.
type BuildContext struct {
	Values map[string]string
	// Strict makes missing late-bound keys an error instead of leaving them verbatim.
	Strict bool
}

// CommandRenderer substitutes build-command placeholders.
type CommandRenderer struct{}

// NewCommandRenderer creates a new command renderer service
func NewCommandRenderer() *CommandRenderer {
	return &CommandRenderer{}
}

// Render substitutes the package's build command.
//
// name and version come from the package; root falls back to the directory the
// package was loaded from. Values in ctx override all of these.
// Unknown placeholders and missing values fail with *TemplateSubstitutionError.
// Render is pure: the same inputs always produce the same string.
func (r *CommandRenderer) Render(pkg *entities.Package, ctx BuildContext) (string, error) {
	tmpl := pkg.BuildCommand()
	if tmpl.String() == "" {
		return "", &entities.TemplateSubstitutionError{
			Template: "",
			Reason:   fmt.Sprintf("package %s has no build_command", pkg),
		}
	}

	values := map[string]string{
		KeyName:    pkg.Name().String(),
		KeyVersion: pkg.Version().String(),
	}
	if pkg.Root() != "" {
		values[KeyRoot] = pkg.Root()
	}
	for k, v := range ctx.Values {
		values[k] = v
	}

	return tmpl.Execute(func(key string) (string, bool, error) {
		lateBound, known := recognizedKeys[key]
		if !known {
			return "", false, &entities.TemplateSubstitutionError{
				Template:    tmpl.String(),
				Placeholder: key,
				Reason:      "unknown placeholder (recognized: " + strings.Join(RecognizedKeys(), ", ") + ")",
			}
		}
		if v, ok := values[key]; ok {
			return v, false, nil
		}
		if lateBound && !ctx.Strict {
			return "", true, nil
		}
		return "", false, &entities.TemplateSubstitutionError{
			Template:    tmpl.String(),
			Placeholder: key,
			Reason:      "no value supplied",
		}
	})
}

// UnknownPlaceholders lists placeholders in the package's build command that
// Render would reject regardless of context.
func UnknownPlaceholders(pkg *entities.Package) []string {
	var unknown []string
	for _, key := range pkg.BuildCommand().Placeholders() {
		if _, ok := recognizedKeys[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	return unknown
}
