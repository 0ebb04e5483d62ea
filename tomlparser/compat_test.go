package tomlparser

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// The fixtures in testdata pair TOML documents with the plain tree they
// should decode to. Both sides are round-tripped through YAML so the
// comparison is free of Go type noise (int vs int64 and friends).
func TestValidDocuments(t *testing.T) {
	data, err := os.ReadFile("testdata/valid.yaml")
	require.NoError(t, err)

	var cases []struct {
		Name string      `yaml:"name"`
		TOML string      `yaml:"toml"`
		Want interface{} `yaml:"want"`
	}
	require.NoError(t, yaml.Unmarshal(data, &cases))
	require.NotEmpty(t, cases)

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			value, err := Parse(tc.TOML)
			require.NoError(t, err)

			marshalled, err := yaml.Marshal(value)
			require.NoError(t, err)
			var got interface{}
			require.NoError(t, yaml.Unmarshal(marshalled, &got))

			wantBytes, err := yaml.Marshal(tc.Want)
			require.NoError(t, err)
			var want interface{}
			require.NoError(t, yaml.Unmarshal(wantBytes, &want))

			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
