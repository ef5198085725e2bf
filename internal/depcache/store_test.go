// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package depcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	nginxA = NewRemoteCookbook("nginx", "1.0", "supermarket", "siteA")
	nginxB = NewRemoteCookbook("nginx", "1.0", "supermarket", "siteB")
	redisA = NewRemoteCookbook("redis", "2.0", "supermarket", "siteA")
	mysqlA = NewRemoteCookbook("mysql", "5.6", "supermarket", "siteA")
)

func TestStore_AddOverwrites(t *testing.T) {
	s := New()

	_, err := s.Add(nginxA, Metadata(`{"v":1}`))
	require.NoError(t, err)
	entries, err := s.Add(nginxA, Metadata(`{"v":2}`))
	require.NoError(t, err)

	assert.Len(t, entries, 1)
	md, ok := s.Get(nginxA)
	assert.True(t, ok)
	assert.Equal(t, `{"v":2}`, string(md))
}

func TestStore_AddCopiesMetadata(t *testing.T) {
	s := New()
	md := Metadata(`{"v":1}`)

	_, err := s.Add(nginxA, md)
	require.NoError(t, err)
	md[2] = 'x'

	got, _ := s.Get(nginxA)
	assert.Equal(t, `{"v":1}`, string(got))
}

func TestStore_AddRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		cb   RemoteCookbook
	}{
		{name: "missing name", cb: NewRemoteCookbook("", "1.0", "supermarket", "siteA")},
		{name: "missing version", cb: NewRemoteCookbook("nginx", "", "supermarket", "siteA")},
		{name: "zero value", cb: RemoteCookbook{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			_, err := s.Add(tt.cb, nil)
			assert.ErrorIs(t, err, ErrInvalidCookbook)
			assert.Equal(t, 0, s.Len())
		})
	}
}

func TestStore_RemoveMatchesEveryLocation(t *testing.T) {
	s := New()
	for _, cb := range []RemoteCookbook{nginxA, nginxB, redisA} {
		_, err := s.Add(cb, nil)
		require.NoError(t, err)
	}

	got := s.Remove("nginx", "1.0")

	assert.Same(t, s, got)
	assert.Equal(t, []RemoteCookbook{redisA}, s.Cookbooks())
}

func TestStore_RemoveUnknownIsNoop(t *testing.T) {
	s := New()
	_, err := s.Add(redisA, nil)
	require.NoError(t, err)

	s.Remove("nginx", "1.0").Remove("redis", "9.9")

	assert.Equal(t, []RemoteCookbook{redisA}, s.Cookbooks())
}

func TestStore_Clear(t *testing.T) {
	s := New()
	_, err := s.Add(redisA, nil)
	require.NoError(t, err)

	entries := s.Clear()

	assert.Empty(t, entries)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Cookbooks())
}

func TestStore_EntriesIsDeepCopy(t *testing.T) {
	s := New()
	_, err := s.Add(redisA, Metadata("abc"))
	require.NoError(t, err)

	entries := s.Entries()
	entries[redisA][0] = 'z'
	delete(entries, redisA)

	assert.True(t, s.Has(redisA))
	md, _ := s.Get(redisA)
	assert.Equal(t, "abc", string(md))
}

func TestStore_CookbooksSorted(t *testing.T) {
	s := New()
	for _, cb := range []RemoteCookbook{redisA, nginxB, mysqlA, nginxA} {
		_, err := s.Add(cb, nil)
		require.NoError(t, err)
	}

	assert.Equal(t, []RemoteCookbook{mysqlA, nginxA, nginxB, redisA}, s.Cookbooks())
}

func TestRemoteCookbook_String(t *testing.T) {
	assert.Equal(t, "nginx (1.0) [supermarket:siteA]", nginxA.String())
}
