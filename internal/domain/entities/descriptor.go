// Package entities contains the package descriptor aggregate and the
// registry that holds it.
package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Descriptor is the document form of a package definition, as stored on disk.
// It carries no validation; NewPackage turns it into an immutable Package.
type Descriptor struct {
	Name         string     `yaml:"name" json:"name"`
	Version      string     `yaml:"version" json:"version"`
	Authors      []string   `yaml:"authors,omitempty" json:"authors,omitempty"`
	Author       StringList `yaml:"author,omitempty" json:"author,omitempty"`
	UUID         string     `yaml:"uuid,omitempty" json:"uuid,omitempty"`
	Description  string     `yaml:"description,omitempty" json:"description,omitempty"`
	Requires     []string   `yaml:"requires,omitempty" json:"requires,omitempty"`
	Variants     [][]string `yaml:"variants,omitempty" json:"variants,omitempty"`
	BuildCommand string     `yaml:"build_command,omitempty" json:"build_command,omitempty"`
	Commands     []EnvOp    `yaml:"commands,omitempty" json:"commands,omitempty"`
}

// Clone returns a deep copy.
func (d Descriptor) Clone() Descriptor {
	out := d
	out.Authors = cloneStrings(d.Authors)
	out.Author = StringList(cloneStrings(d.Author))
	out.Requires = cloneStrings(d.Requires)
	if d.Variants != nil {
		out.Variants = make([][]string, len(d.Variants))
		for i, v := range d.Variants {
			out.Variants[i] = cloneStrings(v)
		}
	}
	if d.Commands != nil {
		out.Commands = make([]EnvOp, len(d.Commands))
		copy(out.Commands, d.Commands)
	}
	return out
}

// AuthorList returns `authors`, falling back to the rez-style `author` key.
func (d Descriptor) AuthorList() []string {
	if len(d.Authors) > 0 {
		return cloneStrings(d.Authors)
	}
	return cloneStrings(d.Author)
}

// Digest returns "sha256:<hex>" over the canonical JSON encoding.
// It changes whenever any field of the descriptor changes.
func (d Descriptor) Digest() (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("encoding descriptor %s-%s: %w", d.Name, d.Version, err)
	}
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:]), nil
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// StringList decodes from either a single string or a list of strings.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler
func (s *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = StringList{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("expected a string or a list of strings: %w", err)
	}
	*s = list
	return nil
}

// UnmarshalYAML implements the goccy/go-yaml InterfaceUnmarshaler.
func (s *StringList) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		*s = StringList{single}
		return nil
	}
	var list []string
	if err := unmarshal(&list); err != nil {
		return fmt.Errorf("expected a string or a list of strings: %w", err)
	}
	*s = list
	return nil
}
