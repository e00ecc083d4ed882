package uri

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInputUriRoundTrip(t *testing.T) {
	cases := []string{
		"storage:local:foo",
		"iota:message:abc",
		"literal:string:a:b:c",
		"https://example.com/x",
	}

	for _, c := range cases {
		u, err := ParseInputUri(c)
		require.NoError(t, err, c)
		require.Equal(t, c, u.String(), c)
	}
}

func TestInputUriLiteralKeepsColons(t *testing.T) {
	u, err := ParseInputUri("literal:string:a:b:c")
	require.NoError(t, err)
	require.Equal(t, InputLiteral, u.Kind)
	require.Equal(t, "a:b:c", u.Literal)
}

func TestOutputUriNoneVariants(t *testing.T) {
	for _, s := range []string{"", "none"} {
		u, err := ParseOutputUri(s)
		require.NoError(t, err)
		require.Equal(t, OutputNone, u.Kind)
		require.Equal(t, "none", u.String())
	}
}

func TestOutputUriRoundTrip(t *testing.T) {
	u, err := ParseOutputUri("iota:index:mytag")
	require.NoError(t, err)
	require.Equal(t, OutputIota, u.Kind)
	require.Equal(t, "iota:index:mytag", u.String())

	u, err = ParseOutputUri("storage:local:k1")
	require.NoError(t, err)
	require.Equal(t, OutputLocal, u.Kind)
	require.Equal(t, "storage:local:k1", u.String())
}

func TestStorageUriRoundTrip(t *testing.T) {
	for _, s := range []string{"", "none"} {
		u, err := ParseStorageUri(s)
		require.NoError(t, err)
		require.Equal(t, StorageNone, u.Kind)
	}

	u, err := ParseStorageUri("storage:local:k1")
	require.NoError(t, err)
	require.Equal(t, StorageLocal, u.Kind)
	require.Equal(t, "storage:local:k1", u.String())
}

func TestInvalidUrisRejected(t *testing.T) {
	_, err := ParseInputUri("not a uri at all")
	require.Error(t, err)

	_, err = ParseOutputUri("bogus:thing:x")
	require.Error(t, err)

	_, err = ParseStorageUri("iota:message:x")
	require.Error(t, err)
}
