package record_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aberic/george/pkg/record"
)

func TestLocatorEncodeDecodeRoundTrip(t *testing.T) {
	cases := []record.Locator{
		{},
		{Version: 1, Length: 42, Offset: 0},
		{Version: 65535, Length: 4294967295, Offset: (1 << 48) - 1},
		{Version: 7, Length: 128, Offset: 1 << 32},
	}
	for _, want := range cases {
		encoded := want.Encode()
		got, err := record.DecodeLocator(encoded[:])
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestLocatorIsZero(t *testing.T) {
	require.True(t, record.Locator{}.IsZero())
	require.False(t, record.Locator{Version: 1}.IsZero())
}

func TestDecodeLocatorRejectsWrongLength(t *testing.T) {
	_, err := record.DecodeLocator([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestDataRealEncodeDecodeRoundTrip(t *testing.T) {
	want := record.DataReal{Increment: 7, Key: "alice", Value: []byte(`{"age":30}`)}
	encoded, err := record.Encode(want)
	require.NoError(t, err)

	got, err := record.Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, want.Increment, got.Increment)
	require.Equal(t, want.Key, got.Key)
	require.JSONEq(t, string(want.Value), string(got.Value))
}

func TestDecodeRejectsShortBuffer(t *testing.T) {
	_, err := record.Decode([]byte{0, 0})
	require.Error(t, err)
}
