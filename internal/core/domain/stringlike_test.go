package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringLike_UnmarshalShapes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		present bool
	}{
		{"plain string", `"Revenue"`, "Revenue", true},
		{"wrapped qv", `{"qv": "Revenue"}`, "Revenue", true},
		{"empty string", `""`, "", true},
		{"null", `null`, "", false},
		{"number", `42`, "", false},
		{"object without qv", `{"other": "x"}`, "", false},
		{"array", `["a", "b"]`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s StringLike
			require.NoError(t, json.Unmarshal([]byte(tt.input), &s))
			v, ok := s.Unwrap()
			assert.Equal(t, tt.present, ok)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestStringLike_OrEmpty(t *testing.T) {
	assert.Equal(t, "x", PlainString("x").OrEmpty())
	assert.Equal(t, "x", WrappedValue("x").OrEmpty())
	assert.Empty(t, Absent.OrEmpty())
	assert.False(t, Absent.IsPresent())
}

func TestStringLike_MarshalWritesPlain(t *testing.T) {
	out, err := json.Marshal(WrappedValue("Revenue"))
	require.NoError(t, err)
	assert.Equal(t, `"Revenue"`, string(out))

	out, err = json.Marshal(Absent)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestUnwrapStrings_SkipsAbsentAndEmpty(t *testing.T) {
	got := UnwrapStrings([]StringLike{
		PlainString("a"),
		Absent,
		PlainString(""),
		WrappedValue("b"),
	})
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestDefinition_UnmarshalShapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain string", `"Sum(Sales)"`, "Sum(Sales)"},
		{"qv object", `{"qv": "Sum(Sales)"}`, "Sum(Sales)"},
		{"nested qDef string", `{"qDef": "Sum(Sales)"}`, "Sum(Sales)"},
		{"nested qDef qv", `{"qDef": {"qv": "Sum(Sales)"}}`, "Sum(Sales)"},
		{"doubly nested qDef", `{"qDef": {"qDef": "Sum(Sales)"}}`, "Sum(Sales)"},
		{"doubly nested qDef qv", `{"qDef": {"qDef": {"qv": "Sum(Sales)"}}}`, "Sum(Sales)"},
		{"nesting beyond one extra level", `{"qDef": {"qDef": {"qDef": "Sum(Sales)"}}}`, ""},
		{"qDef falls back to field defs", `{"qDef": {"x": 1}, "qFieldDefs": ["[Region]"]}`, "[Region]"},
		{"field defs joined", `{"qFieldDefs": ["[Region]", "[Country]"]}`, "[Region] [Country]"},
		{"qv wins over qDef", `{"qv": "A", "qDef": "B"}`, "A"},
		{"unexpected object", `{"color": "red"}`, ""},
		{"number", `7`, ""},
		{"null", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Definition
			require.NoError(t, json.Unmarshal([]byte(tt.input), &d))
			assert.Equal(t, tt.want, d.String())
			assert.Equal(t, tt.want == "", d.IsZero())
		})
	}
}

func TestDefinition_NeverStringifiesObjects(t *testing.T) {
	// Objects nested past the supported depth degrade to empty, never
	// to a Go-syntax dump of the value.
	var d Definition
	require.NoError(t, json.Unmarshal([]byte(`{"qDef": {"qDef": {"qDef": {"qv": "x"}}}}`), &d))
	assert.Empty(t, d.String())
}

func TestDefinition_MarshalWritesPlain(t *testing.T) {
	out, err := json.Marshal(DefinitionOf("Sum(Sales)"))
	require.NoError(t, err)
	assert.Equal(t, `"Sum(Sales)"`, string(out))
}
