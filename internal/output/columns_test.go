// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package output

import (
	"embed"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

//go:embed testdata/*.yaml
var testDataFS embed.FS

type columnsSetCase struct {
	Name    string  `yaml:"name"`
	Initial Columns `yaml:"initial"`
	Value   string  `yaml:"value"`
	Want    Columns `yaml:"want"`
	WantErr bool    `yaml:"wantErr"`
}

type transformCase struct {
	Name          string `yaml:"name"`
	TransformSpec string `yaml:"transformSpec"`
	Input         any    `yaml:"input"`
	Want          any    `yaml:"want"`
}

func loadTestData(t *testing.T, filename string, v any) {
	t.Helper()
	data, err := testDataFS.ReadFile("testdata/" + filename)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, v))
}

func TestColumns_Set(t *testing.T) {
	var cases []columnsSetCase
	loadTestData(t, "columns.yaml", &cases)
	require.NotEmpty(t, cases)

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			cols := append(Columns{}, tc.Initial...)
			err := cols.Set(tc.Value)
			if tc.WantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.Want, cols)
		})
	}
}

func TestColumn_Transform(t *testing.T) {
	var cases []transformCase
	loadTestData(t, "transforms.yaml", &cases)
	require.NotEmpty(t, cases)

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			col := Column{Key: "k", TransformSpec: tc.TransformSpec}
			assert.Equal(t, tc.Want, col.Transform(tc.Input))
		})
	}
}

func TestColumns_StringAndTitles(t *testing.T) {
	cols := NewColumns("name", "version")
	require.NoError(t, cols.Set("!version,name:NAME:u"))

	assert.Equal(t, "name:NAME:u,version:version:", cols.String())
	assert.Equal(t, []string{"NAME"}, cols.Titles())
}
