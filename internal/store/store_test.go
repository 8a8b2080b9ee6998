package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "typecore.sqlite")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadEntryRoundTrips(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveEntry(Entry{Layer: "globals", Key: "pkg.mod", Value: []byte("payload"), Generation: "gen-1"}))

	got, ok, err := s.LoadEntry("globals", "pkg.mod")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), got.Value)
	assert.Equal(t, "gen-1", got.Generation)
}

func TestLoadEntryMissingReportsNotOk(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.LoadEntry("globals", "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveEntryUpsertsOnConflict(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveEntry(Entry{Layer: "globals", Key: "pkg.mod", Value: []byte("v1"), Generation: "gen-1"}))
	require.NoError(t, s.SaveEntry(Entry{Layer: "globals", Key: "pkg.mod", Value: []byte("v2"), Generation: "gen-2"}))

	got, ok, err := s.LoadEntry("globals", "pkg.mod")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), got.Value)
	assert.Equal(t, "gen-2", got.Generation)
}

func TestDeleteEntryRemovesIt(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.SaveEntry(Entry{Layer: "globals", Key: "pkg.mod", Value: []byte("v1"), Generation: "gen-1"}))

	require.NoError(t, s.DeleteEntry("globals", "pkg.mod"))

	_, ok, err := s.LoadEntry("globals", "pkg.mod")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEdgesForReturnsSavedDependents(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveEdge(Edge{Layer: "globals", Key: "pkg.mod", DepLayer: "class_hierarchy", DepKey: "*"}))
	require.NoError(t, s.SaveEdge(Edge{Layer: "globals", Key: "pkg.mod", DepLayer: "class_metadata", DepKey: "pkg.mod.Dog"}))

	edges, err := s.EdgesFor("globals", "pkg.mod")
	require.NoError(t, err)
	require.Len(t, edges, 2)
}

func TestSaveEdgeIgnoresDuplicate(t *testing.T) {
	s := openTestStore(t)

	edge := Edge{Layer: "globals", Key: "pkg.mod", DepLayer: "class_hierarchy", DepKey: "*"}
	require.NoError(t, s.SaveEdge(edge))
	require.NoError(t, s.SaveEdge(edge))

	edges, err := s.EdgesFor("globals", "pkg.mod")
	require.NoError(t, err)
	assert.Len(t, edges, 1)
}

func TestAllEntriesReturnsEveryEntryInLayer(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveEntry(Entry{Layer: "globals", Key: "pkg.a", Value: []byte("a"), Generation: "g1"}))
	require.NoError(t, s.SaveEntry(Entry{Layer: "globals", Key: "pkg.b", Value: []byte("b"), Generation: "g1"}))
	require.NoError(t, s.SaveEntry(Entry{Layer: "aliases", Key: "pkg.a", Value: []byte("x"), Generation: "g1"}))

	entries, err := s.AllEntries("globals")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestEncodeDecodeRoundTripsStruct(t *testing.T) {
	type payload struct {
		Name  string
		Count int
	}
	RegisterType(payload{})

	encoded, err := Encode(payload{Name: "Dog", Count: 3})
	require.NoError(t, err)

	decoded, err := Decode[payload](encoded)
	require.NoError(t, err)
	assert.Equal(t, payload{Name: "Dog", Count: 3}, decoded)
}
