package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexInt(t *testing.T) {
	var in struct {
		A FlexInt `json:"a"`
		B FlexInt `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 7, "b": "12"}`), &in))
	assert.Equal(t, FlexInt(7), in.A)
	assert.Equal(t, FlexInt(12), in.B)

	assert.Error(t, json.Unmarshal([]byte(`{"a": "seven"}`), &in))
	assert.Error(t, json.Unmarshal([]byte(`{"a": 1.5}`), &in))
}
