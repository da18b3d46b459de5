package procsig

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	valid := map[string]Kind{
		"terminate": Terminate,
		"SIGTERM":   Terminate,
		"term":      Terminate,
		"kill":      Kill,
		"SIGKILL":   Kill,
		"Stop":      Stop,
		"sigstop":   Stop,
		"continue":  Continue,
		" SIGCONT ": Continue,
	}
	for in, want := range valid {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "hup", "SIGUSR1", "9"} {
		_, err := ParseKind(in)
		require.ErrorIs(t, err, ErrUnknownKind, in)
	}
}

func TestKind_Text(t *testing.T) {
	for _, k := range Kinds {
		b, err := k.MarshalText()
		require.NoError(t, err)
		var back Kind
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, k, back)
	}

	_, err := Kind(0).MarshalText()
	require.ErrorIs(t, err, ErrUnknownKind)
	assert.Equal(t, "kind(9)", Kind(9).String())

	var body struct {
		Signal Kind `json:"signal"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"signal":"stop"}`), &body))
	assert.Equal(t, Stop, body.Signal)
	require.Error(t, json.Unmarshal([]byte(`{"signal":"hup"}`), &body))
}
