package commonconfig

import (
	"reflect"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestMergeJSON(t *testing.T) {
	common := map[string]any{
		"includeCoAuthoredBy": false,
		"env":                 map[string]any{"DISABLE_TELEMETRY": "1", "ANTHROPIC_MODEL": "common-model"},
		"permissions":         map[string]any{"allow": []any{"Bash"}},
	}
	specific := map[string]any{
		"env":         map[string]any{"ANTHROPIC_MODEL": "own-model", "ANTHROPIC_AUTH_TOKEN": "sk"},
		"permissions": map[string]any{"allow": []any{"Read"}},
	}

	merged := MergeJSON(common, specific)

	want := map[string]any{
		"includeCoAuthoredBy": false,
		"env": map[string]any{
			"DISABLE_TELEMETRY":    "1",
			"ANTHROPIC_MODEL":      "own-model",
			"ANTHROPIC_AUTH_TOKEN": "sk",
		},
		"permissions": map[string]any{"allow": []any{"Read"}},
	}
	if !reflect.DeepEqual(merged, want) {
		t.Errorf("MergeJSON = %v, want %v", merged, want)
	}
	if common["env"].(map[string]any)["ANTHROPIC_MODEL"] != "common-model" {
		t.Error("MergeJSON modified its common input")
	}
}

func TestStripJSON(t *testing.T) {
	tests := []struct {
		name   string
		target map[string]any
		common map[string]any
		want   map[string]any
	}{
		{
			name:   "equal scalar removed",
			target: map[string]any{"a": "x", "b": "y"},
			common: map[string]any{"a": "x"},
			want:   map[string]any{"b": "y"},
		},
		{
			name:   "different scalar kept",
			target: map[string]any{"a": "x"},
			common: map[string]any{"a": "z"},
			want:   map[string]any{"a": "x"},
		},
		{
			name:   "numbers compare by value",
			target: map[string]any{"n": float64(3)},
			common: map[string]any{"n": 3},
			want:   map[string]any{},
		},
		{
			name:   "nested emptied object dropped",
			target: map[string]any{"env": map[string]any{"A": "1"}, "k": true},
			common: map[string]any{"env": map[string]any{"A": "1"}},
			want:   map[string]any{"k": true},
		},
		{
			name:   "nested partially stripped",
			target: map[string]any{"env": map[string]any{"A": "1", "B": "2"}},
			common: map[string]any{"env": map[string]any{"A": "1"}},
			want:   map[string]any{"env": map[string]any{"B": "2"}},
		},
		{
			name:   "arrays compared element by element",
			target: map[string]any{"l": []any{"a", "b"}, "m": []any{"a"}},
			common: map[string]any{"l": []any{"a", "b"}, "m": []any{"a", "b"}},
			want:   map[string]any{"m": []any{"a"}},
		},
		{
			name:   "object versus scalar kept",
			target: map[string]any{"env": map[string]any{"A": "1"}},
			common: map[string]any{"env": "1"},
			want:   map[string]any{"env": map[string]any{"A": "1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripJSON(tt.target, tt.common)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("StripJSON = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeStripTOML(t *testing.T) {
	var common, specific map[string]any
	if _, err := toml.Decode(`
disable_response_storage = true

[mcp_servers.fetch]
command = "uvx"
args = ["mcp-server-fetch"]
`, &common); err != nil {
		t.Fatal(err)
	}
	if _, err := toml.Decode(`
model = "gpt-5"
[mcp_servers.local]
command = "node"
`, &specific); err != nil {
		t.Fatal(err)
	}

	merged := MergeTOML(common, specific)
	servers := merged["mcp_servers"].(map[string]any)
	if _, ok := servers["fetch"]; !ok {
		t.Error("common table lost in merge")
	}
	if _, ok := servers["local"]; !ok {
		t.Error("specific table lost in merge")
	}

	stripped := StripTOML(merged, common)
	if !reflect.DeepEqual(stripped, specific) {
		t.Errorf("StripTOML(MergeTOML) = %v, want %v", stripped, specific)
	}
}

func TestTOMLEqualKeepsIntegerAndFloatDistinct(t *testing.T) {
	tree := TOMLTree{}
	if tree.Equal(int64(1), float64(1)) {
		t.Error("TOML integer 1 and float 1.0 should differ")
	}
	if !tree.Equal([]map[string]any{{"a": int64(1)}}, []any{map[string]any{"a": 1}}) {
		t.Error("array of tables should equal the same plain array")
	}
}

// For any provider fragment P and common fragment C with disjoint keys,
// strip(merge(C, P), C) == P.
func TestPropertyStripUndoesMerge(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	keyGen := gen.Identifier()
	valueGen := gen.AlphaString()

	properties.Property("json strip undoes merge", prop.ForAll(
		func(pTop, cTop, pEnv, cEnv map[string]string) bool {
			p := buildFragment("p_", pTop, pEnv)
			c := buildFragment("c_", cTop, cEnv)
			got := StripJSON(MergeJSON(c, p), c)
			return reflect.DeepEqual(got, p)
		},
		gen.MapOf(keyGen, valueGen),
		gen.MapOf(keyGen, valueGen),
		gen.MapOf(keyGen, valueGen),
		gen.MapOf(keyGen, valueGen),
	))

	properties.Property("toml strip undoes merge", prop.ForAll(
		func(pTop, cTop, pEnv, cEnv map[string]string) bool {
			p := buildFragment("p_", pTop, pEnv)
			c := buildFragment("c_", cTop, cEnv)
			got := StripTOML(MergeTOML(c, p), c)
			return reflect.DeepEqual(got, p)
		},
		gen.MapOf(keyGen, valueGen),
		gen.MapOf(keyGen, valueGen),
		gen.MapOf(keyGen, valueGen),
		gen.MapOf(keyGen, valueGen),
	))

	properties.TestingRun(t)
}

// buildFragment prefixes every key so fragments built with different
// prefixes never collide; the shared "env" object is only set when non-empty.
func buildFragment(prefix string, top, env map[string]string) map[string]any {
	out := map[string]any{}
	for k, v := range top {
		out[prefix+k] = v
	}
	if len(env) > 0 {
		nested := map[string]any{}
		for k, v := range env {
			nested[prefix+k] = v
		}
		out["env"] = nested
	}
	return out
}
