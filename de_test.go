package tomlspan_test

import (
	"testing"

	tomlspan "github.com/EmbarkStudios/toml-span"
	"github.com/EmbarkStudios/toml-span/tomlparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type boop struct {
	S     string
	OS    uint32
	OSSet bool
}

func (b *boop) DeserializeTOML(value *tomlspan.Value) error {
	th, err := tomlspan.NewTableHelper(value)
	if err != nil {
		return err
	}

	b.S = tomlspan.Required[string](th, "s")
	b.OS, b.OSSet = tomlspan.Optional[uint32](th, "os")

	return th.Finalize(nil)
}

func TestDeserializeBasicTable(t *testing.T) {
	var b boop
	require.NoError(t, tomlspan.Deserialize("s = 'boop string'\nos = 20", &b))
	assert.Equal(t, "boop string", b.S)
	assert.Equal(t, uint32(20), b.OS)
	assert.True(t, b.OSSet)

	b = boop{}
	require.NoError(t, tomlspan.Deserialize("s = 'only'", &b))
	assert.Equal(t, "only", b.S)
	assert.False(t, b.OSSet)
}

func TestDeserializeMissingField(t *testing.T) {
	var b boop
	err := tomlspan.Deserialize("os = 20", &b)
	var de *tomlspan.DeserError
	require.ErrorAs(t, err, &de)
	require.Len(t, de.Errors, 1)
	assert.Equal(t, tomlparser.MissingField, de.Errors[0].Kind)
	assert.Equal(t, "s", de.Errors[0].Key)
}

func TestDeserializeCollectsEveryError(t *testing.T) {
	// a wrong type, a missing field and two unexpected keys arrive
	// together instead of one at a time
	var b boop
	err := tomlspan.Deserialize("os = 'nope'\nextra = 1\nmore = 2", &b)
	var de *tomlspan.DeserError
	require.ErrorAs(t, err, &de)

	kinds := make([]tomlparser.ErrorKind, 0, len(de.Errors))
	for _, e := range de.Errors {
		kinds = append(kinds, e.Kind)
	}
	assert.Contains(t, kinds, tomlparser.MissingField)
	assert.Contains(t, kinds, tomlparser.Wanted)
	assert.Contains(t, kinds, tomlparser.UnexpectedKeys)

	for _, e := range de.Errors {
		if e.Kind == tomlparser.UnexpectedKeys {
			require.Len(t, e.Keys, 2)
			assert.Equal(t, "extra", e.Keys[0].Name)
			assert.Equal(t, "more", e.Keys[1].Name)
			assert.NotZero(t, e.Keys[0].Span)
		}
	}
}

func TestDeserializeParseError(t *testing.T) {
	var b boop
	err := tomlspan.Deserialize("s = ", &b)
	var de *tomlspan.DeserError
	require.ErrorAs(t, err, &de)
	require.Len(t, de.Errors, 1)
	assert.Equal(t, tomlparser.UnexpectedEof, de.Errors[0].Kind)
}

type server struct {
	Name  string
	Ports []int64
	Tags  []string
}

func (s *server) DeserializeTOML(value *tomlspan.Value) error {
	th, err := tomlspan.NewTableHelper(value)
	if err != nil {
		return err
	}

	s.Name = tomlspan.Required[string](th, "name")
	s.Tags, _ = tomlspan.Optional[[]string](th, "tags")

	if ports, ok := th.Take("ports"); ok {
		arr, ok := ports.AsArray()
		if !ok {
			th.PushError(&tomlparser.Error{
				Kind: tomlparser.Wanted, Span: ports.Span,
				Expected: "an array", Found: ports.Inner().TypeString(),
			})
		} else {
			for _, elem := range *arr {
				n, ok := elem.AsInteger()
				if !ok {
					th.PushError(&tomlparser.Error{
						Kind: tomlparser.Wanted, Span: elem.Span,
						Expected: "an integer", Found: elem.Inner().TypeString(),
					})
					continue
				}
				s.Ports = append(s.Ports, n)
			}
		}
	}

	return th.Finalize(nil)
}

func TestDeserializeNested(t *testing.T) {
	var s server
	err := tomlspan.Deserialize("name = \"alpha\"\nports = [8001, 8002]\ntags = [\"web\", \"edge\"]", &s)
	require.NoError(t, err)
	assert.Equal(t, "alpha", s.Name)
	assert.Equal(t, []int64{8001, 8002}, s.Ports)
	assert.Equal(t, []string{"web", "edge"}, s.Tags)
}
