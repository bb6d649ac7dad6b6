// Package config provides infrastructure for loading package descriptors.
// This package handles YAML parsing, file I/O, and package tree discovery.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/reglet-dev/pkgreg/internal/application/ports"
	"github.com/reglet-dev/pkgreg/internal/domain/entities"
)

// maxDescriptorSize bounds a single descriptor file.
const maxDescriptorSize = 1 << 20

// ParseDocuments splits a YAML stream into descriptor documents.
//
// Every non-empty document becomes one RawDescriptor re-encoded as JSON.
// A stream that is not valid YAML yields a single entry with Err set;
// a document that is not a mapping yields an entry with Err set and
// the remaining documents are still returned.
func ParseDocuments(source, root string, data []byte) []ports.RawDescriptor {
	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return []ports.RawDescriptor{{
			Source: source,
			Root:   root,
			Err: &entities.MalformedDescriptorError{
				Source: source,
				Field:  "document",
				Reason: "invalid YAML",
				Cause:  fmt.Errorf("%s", yaml.FormatError(err, false, true)),
			},
		}}
	}

	multi := len(file.Docs) > 1
	var docs []ports.RawDescriptor
	for i, doc := range file.Docs {
		if doc == nil || isEmptyBody(doc.Body) {
			continue
		}

		name := source
		if multi {
			name = fmt.Sprintf("%s#%d", source, i+1)
		}
		raw := ports.RawDescriptor{Source: name, Root: root}
		if tok := doc.Body.GetToken(); tok != nil && tok.Position != nil {
			raw.Line = tok.Position.Line
		}

		raw.JSON, raw.Err = documentJSON(name, doc.Body)
		docs = append(docs, raw)
	}
	return docs
}

func isEmptyBody(body ast.Node) bool {
	switch body.(type) {
	case nil, *ast.NullNode, *ast.CommentGroupNode:
		return true
	}
	return false
}

// documentJSON converts one document body to JSON.
func documentJSON(source string, body ast.Node) ([]byte, error) {
	var value any
	if err := yaml.NodeToValue(body, &value); err != nil {
		return nil, &entities.MalformedDescriptorError{Source: source, Field: "document", Reason: "cannot decode", Cause: err}
	}

	mapping, ok := value.(map[string]any)
	if !ok {
		return nil, &entities.MalformedDescriptorError{
			Source: source,
			Field:  "document",
			Reason: fmt.Sprintf("expected a mapping, got %T", value),
		}
	}

	// An unquoted version such as 3.10 is a YAML float; keep the text as written.
	if text, ok := scalarText(body, "version"); ok {
		mapping["version"] = text
	}
	keepCommandValueText(body, mapping)

	data, err := json.Marshal(mapping)
	if err != nil {
		return nil, &entities.MalformedDescriptorError{Source: source, Field: "document", Reason: "cannot encode", Cause: err}
	}
	return data, nil
}

// keepCommandValueText rewrites unquoted scalar hook values (value: 2,
// value: 0.5, value: true) to their source text, since variables hold strings.
func keepCommandValueText(body ast.Node, mapping map[string]any) {
	ops, ok := mapping["commands"].([]any)
	if !ok {
		return
	}
	seq, ok := valueOf(body, "commands").(*ast.SequenceNode)
	if !ok {
		return
	}
	for i, node := range seq.Values {
		if i >= len(ops) {
			break
		}
		op, ok := ops[i].(map[string]any)
		if !ok {
			continue
		}
		if text, ok := scalarText(node, "value"); ok {
			op["value"] = text
		}
	}
}

// scalarText returns the source text of a numeric or boolean value under key.
func scalarText(body ast.Node, key string) (string, bool) {
	switch v := valueOf(body, key).(type) {
	case *ast.IntegerNode:
		return v.GetToken().Value, true
	case *ast.FloatNode:
		return v.GetToken().Value, true
	case *ast.BoolNode:
		return v.GetToken().Value, true
	}
	return "", false
}

// valueOf returns the node stored under key in a mapping node, or nil.
func valueOf(body ast.Node, key string) ast.Node {
	var values []*ast.MappingValueNode
	switch n := body.(type) {
	case *ast.MappingNode:
		values = n.Values
	case *ast.MappingValueNode:
		values = []*ast.MappingValueNode{n}
	default:
		return nil
	}

	for _, mv := range values {
		if mv.Key != nil && mv.Key.GetToken() != nil && mv.Key.GetToken().Value == key {
			return mv.Value
		}
	}
	return nil
}

// readFile reads path through os.OpenRoot so the read cannot escape its directory.
func readFile(path string) ([]byte, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open descriptor directory: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	file, err := root.Open(base)
	if err != nil {
		return nil, fmt.Errorf("failed to open descriptor: %w", err)
	}
	defer func() {
		_ = file.Close() // Best-effort cleanup
	}()

	return readLimited(file, path)
}

func readLimited(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDescriptorSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(data) > maxDescriptorSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", name, maxDescriptorSize)
	}
	return data, nil
}
