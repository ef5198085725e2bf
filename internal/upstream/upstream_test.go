// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package upstream

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/cerch/internal/depcache"
)

const supermarket = "https://supermarket.chef.io"

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		format  string
		want    []depcache.RemoteCookbook
		wantErr bool
	}{
		{
			name:   "json list",
			data:   `[{"name":"nginx","version":"1.0.0","location_type":"supermarket","location_path":"` + supermarket + `"}]`,
			format: FormatJSON,
			want:   []depcache.RemoteCookbook{depcache.NewRemoteCookbook("nginx", "1.0.0", "supermarket", supermarket)},
		},
		{
			name:   "json list keeps order",
			data:   `[{"name":"b","version":"1"},{"name":"a","version":"1"}]`,
			format: "",
			want: []depcache.RemoteCookbook{
				depcache.NewRemoteCookbook("b", "1", "", ""),
				depcache.NewRemoteCookbook("a", "1", "", ""),
			},
		},
		{
			name:   "json universe",
			data:   `{"nginx":{"1.0.0":{"location_type":"supermarket","location_path":"` + supermarket + `"}}}`,
			format: FormatJSON,
			want:   []depcache.RemoteCookbook{depcache.NewRemoteCookbook("nginx", "1.0.0", "supermarket", supermarket)},
		},
		{
			name:   "json list skips malformed",
			data:   `[{"name":"","version":"1"},{"name":"ok","version":"1"},{"name":"x"},"scalar",{"name":"n","version":2}]`,
			format: FormatJSON,
			want:   []depcache.RemoteCookbook{depcache.NewRemoteCookbook("ok", "1", "", "")},
		},
		{
			name:   "yaml list",
			data:   "- name: apt\n  version: 7.4.0\n  location_type: supermarket\n",
			format: FormatYAML,
			want:   []depcache.RemoteCookbook{depcache.NewRemoteCookbook("apt", "7.4.0", "supermarket", "")},
		},
		{
			name:   "yaml detected",
			data:   "- name: apt\n  version: 7.4.0\n",
			format: "",
			want:   []depcache.RemoteCookbook{depcache.NewRemoteCookbook("apt", "7.4.0", "", "")},
		},
		{
			name:   "yaml numeric version key",
			data:   "apt:\n  1.5:\n    location_type: supermarket\n",
			format: FormatYAML,
			want:   []depcache.RemoteCookbook{depcache.NewRemoteCookbook("apt", "1.5", "supermarket", "")},
		},
		{
			name:   "yaml version keys keep trailing zeros",
			data:   "nginx:\n  1.0:\n    location_type: supermarket\n  1.10:\n    location_type: supermarket\n",
			format: FormatYAML,
			want: []depcache.RemoteCookbook{
				depcache.NewRemoteCookbook("nginx", "1.0", "supermarket", ""),
				depcache.NewRemoteCookbook("nginx", "1.10", "supermarket", ""),
			},
		},
		{
			name:   "yaml list numeric version",
			data:   "- name: nginx\n  version: 1.0\n  location_type: supermarket\n- name: redis\n  version: 2\n",
			format: FormatYAML,
			want: []depcache.RemoteCookbook{
				depcache.NewRemoteCookbook("nginx", "1.0", "supermarket", ""),
				depcache.NewRemoteCookbook("redis", "2", "", ""),
			},
		},
		{
			name:   "yaml anchors",
			data:   "base: &loc\n  location_type: supermarket\napt:\n  7.4.0: *loc\n",
			format: FormatYAML,
			want: []depcache.RemoteCookbook{
				depcache.NewRemoteCookbook("apt", "7.4.0", "supermarket", ""),
			},
		},
		{
			name:   "empty document",
			data:   "",
			format: FormatYAML,
			want:   nil,
		},
		{
			name:    "scalar document",
			data:    `"just a string"`,
			format:  FormatJSON,
			wantErr: true,
		},
		{
			name:    "invalid json",
			data:    `[{"name":`,
			format:  FormatJSON,
			wantErr: true,
		},
		{
			name:    "invalid yaml",
			data:    "key: [unclosed",
			format:  FormatYAML,
			wantErr: true,
		},
		{
			name:    "unknown format",
			data:    `[]`,
			format:  "toml",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.data), tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadFile(t *testing.T) {
	tests := []struct {
		file string
		want []depcache.RemoteCookbook
	}{
		{
			file: "list.json",
			want: []depcache.RemoteCookbook{
				depcache.NewRemoteCookbook("nginx", "2.7.6", "supermarket", supermarket),
				depcache.NewRemoteCookbook("apt", "7.4.0", "supermarket", supermarket),
			},
		},
		{
			file: "universe.yml",
			want: []depcache.RemoteCookbook{
				depcache.NewRemoteCookbook("apt", "7.4.0", "supermarket", supermarket),
				depcache.NewRemoteCookbook("nginx", "2.7.4", "chef_server", "https://chef.example.com"),
				depcache.NewRemoteCookbook("nginx", "2.7.6", "supermarket", supermarket),
			},
		},
		{
			file: "listing.txt",
			want: []depcache.RemoteCookbook{
				depcache.NewRemoteCookbook("build-essential", "8.2.1", "file_store", "/srv/cookbooks"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got, err := ReadFile(filepath.Join("testdata", tt.file))
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFor("a/b.JSON"))
	assert.Equal(t, FormatYAML, FormatFor("b.yaml"))
	assert.Equal(t, FormatYAML, FormatFor("b.yml"))
	assert.Empty(t, FormatFor("b"))
}
