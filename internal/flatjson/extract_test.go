package flatjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		key   string
		want  string
		found bool
	}{
		{"string value", `{"a":"x","b":5}`, "a", "x", true},
		{"number value", `{"a":"x","b":5}`, "b", "5", true},
		{"absent key", `{"a":"x","b":5}`, "c", "", false},
		{"whitespace before value", `{"a":   "spaced"}`, "a", "spaced", true},
		{"boolean value", `{"ok":true}`, "ok", "true", true},
		{"null value", `{"v":null}`, "v", "null", true},
		{"number at end of object", `{"n":42}`, "n", "42", true},
		{"escaped quote preserved", `{"a":"he said \"hi\""}`, "a", `he said \"hi\"`, true},
		{"truncated string value", `{"a":"never ends`, "a", "", false},
		{"no colon after key", `{"a"`, "a", "", false},
		{"first occurrence wins", `{"a":"one","a":"two"}`, "a", "one", true},
		{"empty string value", `{"a":""}`, "a", "", true},
		{"empty input", ``, "a", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := Extract(tt.text, tt.key)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractArray(t *testing.T) {
	text := `{"enabled":["111","222"],"other":{}}`

	got, found := ExtractArray(text, "enabled")
	require.True(t, found)
	assert.Equal(t, `["111","222"]`, got)

	_, found = ExtractArray(text, "missing")
	assert.False(t, found)

	// nested brackets are matched by depth
	nested := `{"grid":[[1,2],[3,4]]}`
	got, found = ExtractArray(nested, "grid")
	require.True(t, found)
	assert.Equal(t, `[[1,2],[3,4]]`, got)

	// unterminated array
	_, found = ExtractArray(`{"a":[1,2`, "a")
	assert.False(t, found)
}

func TestExtractObject(t *testing.T) {
	text := `{"ids":{"k1":"v1","k2":"v2"},"tail":1}`

	got, found := ExtractObject(text, "ids")
	require.True(t, found)
	assert.Equal(t, `{"k1":"v1","k2":"v2"}`, got)

	nested := `{"outer":{"inner":{"x":1}}}`
	got, found = ExtractObject(nested, "outer")
	require.True(t, found)
	assert.Equal(t, `{"inner":{"x":1}}`, got)

	_, found = ExtractObject(`{"a":{`, "a")
	assert.False(t, found)
}

func TestStrings(t *testing.T) {
	assert.Equal(t, []string{"111", "222"}, Strings(`["111","222"]`))
	assert.Equal(t, []string{"k", "v"}, Strings(`{"k":"v"}`))
	assert.Nil(t, Strings(`[]`))
	assert.Nil(t, Strings(`[1,2,3]`))
}

func TestUnescape(t *testing.T) {
	assert.Equal(t, `{"content":"hello"}`, Unescape(`{\"content\":\"hello\"}`))
	assert.Equal(t, `back\slash`, Unescape(`back\\slash`))
	assert.Equal(t, `plain`, Unescape(`plain`))
}
