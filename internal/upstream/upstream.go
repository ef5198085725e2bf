// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/staranto/cerch/internal/depcache"
)

// Supported formats. An empty format means detect from content.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnsupportedShape is returned for documents that are neither a list of
// cookbooks nor a universe keyed by name and version.
var ErrUnsupportedShape = errors.New("upstream document must be a list or an object")

// ReadFile parses the listing at path. The format is chosen by extension and
// detected from content when the extension is not recognized.
func ReadFile(path string) ([]depcache.RemoteCookbook, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is user input by design of the CLI
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream listing: %w", err)
	}
	return Parse(data, FormatFor(path))
}

// FormatFor maps a file extension to a format name.
func FormatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	return ""
}

// Parse decodes an upstream listing. Two shapes are accepted:
//
//	[{"name": "nginx", "version": "1.0.0", "location_type": "supermarket", "location_path": "..."}]
//	{"nginx": {"1.0.0": {"location_type": "supermarket", "location_path": "..."}}}
//
// Entries without a string name and version are logged and skipped.
func Parse(data []byte, format string) ([]depcache.RemoteCookbook, error) {
	if format == "" {
		format = FormatYAML
		if gjson.ValidBytes(data) {
			format = FormatJSON
		}
	}

	switch format {
	case FormatJSON:
		if !gjson.ValidBytes(data) {
			return nil, errors.New("upstream listing is not valid JSON")
		}
	case FormatYAML:
		converted, err := yamlToJSON(data)
		if err != nil {
			return nil, err
		}
		data = converted
	default:
		return nil, fmt.Errorf("unsupported upstream format %q", format)
	}

	root := gjson.ParseBytes(data)
	switch {
	case root.Type == gjson.Null:
		return nil, nil
	case root.IsArray():
		return fromList(root), nil
	case root.IsObject():
		return fromUniverse(root), nil
	}
	return nil, ErrUnsupportedShape
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("upstream listing is not valid YAML: %w", err)
	}
	v, err := nodeValue(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize YAML listing: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize YAML listing: %w", err)
	}
	return out, nil
}

// nodeValue converts a YAML node into JSON-encodable values. Mapping keys and
// numeric scalars keep their source text, so an unquoted version such as 1.0
// or 1.10 is not rewritten by a float round trip.
func nodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeValue(n.Content[0])
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeValue(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := nodeValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[n.Content[i].Value] = v
		}
		return out, nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!int", "!!float":
			return n.Value, nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, fmt.Errorf("unexpected YAML node kind %d", n.Kind)
}

func fromList(root gjson.Result) []depcache.RemoteCookbook {
	var out []depcache.RemoteCookbook
	root.ForEach(func(key, value gjson.Result) bool {
		name := value.Get("name")
		version := value.Get("version")
		if name.Type != gjson.String || version.Type != gjson.String {
			log.WithField("index", key.Int()).Warn("skipping upstream entry without name and version")
			return true
		}
		cb := depcache.NewRemoteCookbook(name.String(), version.String(),
			value.Get("location_type").String(), value.Get("location_path").String())
		if !cb.Valid() {
			log.WithField("index", key.Int()).Warn("skipping upstream entry without name and version")
			return true
		}
		out = append(out, cb)
		return true
	})
	return out
}

func fromUniverse(root gjson.Result) []depcache.RemoteCookbook {
	var out []depcache.RemoteCookbook
	root.ForEach(func(name, versions gjson.Result) bool {
		if name.String() == "" || !versions.IsObject() {
			log.WithField("name", name.String()).Warn("skipping malformed upstream cookbook")
			return true
		}
		versions.ForEach(func(version, loc gjson.Result) bool {
			if version.String() == "" || !loc.IsObject() {
				log.WithFields(log.Fields{
					"name":    name.String(),
					"version": version.String(),
				}).Warn("skipping malformed upstream version")
				return true
			}
			out = append(out, depcache.NewRemoteCookbook(name.String(), version.String(),
				loc.Get("location_type").String(), loc.Get("location_path").String()))
			return true
		})
		return true
	})
	return out
}
