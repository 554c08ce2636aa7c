package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FieldOrder(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	var names []string
	for _, f := range catalog.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"PERSON_NAME",
		"MOVIE_TITLE",
		"SERIES_TITLE",
		"COMPANY_NAME",
		"NETWORK_NAME",
		"TOPIC_NAME",
		"ITEM_NAME",
	}, names)
}

func TestColumnFor_LocaleMapping(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	movie, ok := catalog.ByName("MOVIE_TITLE")
	require.True(t, ok)
	assert.Equal(t, "MOVIE_TITLE", movie.ColumnFor("en"))
	assert.Equal(t, "MOVIE_TITLE_FR", movie.ColumnFor("fr"))
	assert.Equal(t, "MOVIE_TITLE_ORIGINAL", movie.ColumnFor("ja"))

	person, ok := catalog.ByName("PERSON_NAME")
	require.True(t, ok)
	assert.Equal(t, "ID_PERSON", person.ColumnFor("en"))
	assert.Equal(t, "ID_PERSON", person.ColumnFor("fr"))

	item, ok := catalog.ByName("ITEM_NAME")
	require.True(t, ok)
	assert.Equal(t, "ID_ITEM", item.ColumnFor("en"))
	assert.Equal(t, "ID_ITEM", item.ColumnFor("anything"))
}

func TestCollectionNames(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	person, _ := catalog.ByName("PERSON_NAME")
	assert.Equal(t, "people", person.Collection())

	company, _ := catalog.ByName("COMPANY_NAME")
	assert.Equal(t, "companies", company.Collection())

	movie, _ := catalog.ByName("MOVIE_TITLE")
	assert.Equal(t, "movies", movie.Collection())
}

func TestDecodeRecordID(t *testing.T) {
	kind, rowID, locale, err := DecodeRecordID("movie_118_fr")
	require.NoError(t, err)
	assert.Equal(t, "movie", kind)
	assert.Equal(t, "118", rowID)
	assert.Equal(t, "fr", locale)

	for _, bad := range []string{"", "movie", "movie_118", "movie__fr", "a_b_c_d"} {
		_, _, _, err := DecodeRecordID(bad)
		assert.Error(t, err, "id %q should not decode", bad)
	}
}
