package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringList_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		list StringList
	}{
		{"empty", StringList{}},
		{"single", StringList{"/data/images/a.png"}},
		{"multiple", StringList{"a.png", "b.jpg", "c.webp"}},
		{"comma and quotes", StringList{`pa,th"with`, "sec'ond"}},
		{"json-ish elements", StringList{`{"k":"v"}`, `["nested"]`}},
		{"unicode", StringList{"画像/スクショ.png", "фото.jpg"}},
		{"newlines and tabs", StringList{"a\nb", "c\td"}},
		{"empty element", StringList{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := tt.list.Value()
			require.NoError(t, err)

			var decoded StringList
			require.NoError(t, decoded.Scan(value))
			assert.Equal(t, tt.list, decoded)
		})
	}
}

func TestStringList_ScanNullAndEmpty(t *testing.T) {
	var fromNil StringList
	require.NoError(t, fromNil.Scan(nil))
	assert.Equal(t, StringList{}, fromNil)

	var fromEmpty StringList
	require.NoError(t, fromEmpty.Scan(""))
	assert.Equal(t, StringList{}, fromEmpty)

	var fromBytes StringList
	require.NoError(t, fromBytes.Scan([]byte(`["x"]`)))
	assert.Equal(t, StringList{"x"}, fromBytes)

	var fromJSONNull StringList
	require.NoError(t, fromJSONNull.Scan("null"))
	assert.Equal(t, StringList{}, fromJSONNull)
}

func TestStringList_ScanInvalid(t *testing.T) {
	var l StringList
	assert.Error(t, l.Scan("not json"))
	assert.Error(t, l.Scan(42))
}

func TestNote_FolderRef(t *testing.T) {
	n := &Note{}
	assert.EqualValues(t, 0, n.FolderRef())

	n.SetFolder(7)
	require.True(t, n.FolderID.Valid)
	assert.EqualValues(t, 7, n.FolderRef())

	n.SetFolder(0)
	assert.False(t, n.FolderID.Valid)
	assert.EqualValues(t, 0, n.FolderRef())
}
