// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/staranto/cerch/internal/depcache"
)

func TestBuild(t *testing.T) {
	entries := depcache.Entries{
		depcache.NewRemoteCookbook("nginx", "2.7.4", "opscode", "https://supermarket.example/api/v1"): depcache.Metadata(
			`{"name":"nginx","dependencies":{"build-essential":">= 0.0.0","ohai":"~> 1.1"},"platforms":{"ubuntu":">= 0.0.0"}}`),
		depcache.NewRemoteCookbook("nginx", "2.7.4", "zzz", "mirror"): depcache.Metadata(`{"dependencies":{"other":"= 1.0"}}`),
		depcache.NewRemoteCookbook("redis", "1.0.0", "chef_server", "https://chef.example"): depcache.Metadata("opaque"),
		depcache.NewRemoteCookbook("mysql", "5.0.0", "opscode", "x"): depcache.Metadata(`{"dependencies":{"n":1},"platforms":[]}`),
	}

	u := Build(entries)

	require.Contains(t, u, "nginx")
	nginx := u["nginx"]["2.7.4"]
	assert.Equal(t, "opscode", nginx.LocationType, "lowest sorting location wins")
	assert.Equal(t, map[string]string{"build-essential": ">= 0.0.0", "ohai": "~> 1.1"}, nginx.Dependencies)
	assert.Equal(t, map[string]string{"ubuntu": ">= 0.0.0"}, nginx.Platforms)

	redis := u["redis"]["1.0.0"]
	assert.Equal(t, "chef_server", redis.LocationType)
	assert.Empty(t, redis.Dependencies)
	assert.NotNil(t, redis.Dependencies)

	mysql := u["mysql"]["5.0.0"]
	assert.Equal(t, map[string]string{"n": "1"}, mysql.Dependencies)
	assert.Empty(t, mysql.Platforms)
}

func TestRender(t *testing.T) {
	entries := depcache.Entries{
		depcache.NewRemoteCookbook("nginx", "1.0", "opscode", "siteA"): depcache.Metadata(`{"dependencies":{"apt":">= 1.0"}}`),
	}

	data, err := Render(entries)
	require.NoError(t, err)

	doc := gjson.ParseBytes(data)
	assert.Equal(t, "opscode", doc.Get("nginx.1\\.0.location_type").String())
	assert.Equal(t, "siteA", doc.Get("nginx.1\\.0.location_path").String())
	assert.Equal(t, ">= 1.0", doc.Get("nginx.1\\.0.dependencies.apt").String())
	assert.True(t, doc.Get("nginx.1\\.0.platforms").IsObject())
}

func TestRender_Empty(t *testing.T) {
	data, err := Render(depcache.Entries{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}
