package domain

import (
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchFilters_Valid(t *testing.T) {
	f, err := ParseSearchFilters(map[string]string{
		"type":     "land",
		"city":     " Berlin ",
		"minPrice": "100",
		"maxPrice": "200.5",
		"rooms":    "3",
		"minSize":  "",
	})
	require.NoError(t, err)

	assert.Equal(t, "land", f.Type)
	assert.Equal(t, "Berlin", f.City)
	require.NotNil(t, f.MinPrice)
	assert.Equal(t, 100.0, *f.MinPrice)
	require.NotNil(t, f.MaxPrice)
	assert.Equal(t, 200.5, *f.MaxPrice)
	require.NotNil(t, f.Rooms)
	assert.Equal(t, 3.0, *f.Rooms)
	assert.Nil(t, f.MinSize)
	assert.Nil(t, f.MaxSize)
}

func TestParseSearchFilters_InvalidNumber(t *testing.T) {
	for _, value := range []string{"abc", "NaN", "Inf", "12,5"} {
		t.Run(value, func(t *testing.T) {
			_, err := ParseSearchFilters(map[string]string{"maxSize": value})

			var filterErr *InvalidFilterError
			require.True(t, errors.As(err, &filterErr))
			assert.Equal(t, "maxSize", filterErr.Filter)
			assert.Equal(t, value, filterErr.Value)
		})
	}
}

func TestParseSearchFilters_InvalidUTF8(t *testing.T) {
	for _, name := range []string{"city", "type"} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSearchFilters(map[string]string{name: "Berl\xffin"})

			var filterErr *InvalidFilterError
			require.True(t, errors.As(err, &filterErr))
			assert.Equal(t, name, filterErr.Filter)
			assert.True(t, utf8.ValidString(filterErr.Value))
		})
	}
}

func TestParseSearchFilters_Empty(t *testing.T) {
	f, err := ParseSearchFilters(nil)
	require.NoError(t, err)
	assert.Equal(t, SearchFilters{}, f)
}
