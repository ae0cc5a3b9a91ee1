package completion

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) interface{} {
	t.Helper()
	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestValidateAcceptsWellFormedBody(t *testing.T) {
	body := decode(t, `{"messages":[{"role":"system","content":"be nice"},{"role":"user","content":"hi"},{"role":"assistant","content":""}]}`)
	assert.NoError(t, Validate(body))
}

func TestValidateRejections(t *testing.T) {
	cases := map[string]string{
		"null body":          `null`,
		"array body":         `[1,2]`,
		"missing messages":   `{}`,
		"messages not array": `{"messages":"hi"}`,
		"empty messages":     `{"messages":[]}`,
		"element not object": `{"messages":["hi"]}`,
		"missing role":       `{"messages":[{"content":"hi"}]}`,
		"missing content":    `{"messages":[{"role":"user"}]}`,
		"bad role":           `{"messages":[{"role":"tool","content":"hi"}]}`,
		"content not string": `{"messages":[{"role":"user","content":42}]}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			err := Validate(decode(t, raw))
			require.Error(t, err)
			ce := Classify(err)
			assert.Equal(t, CodeValidation, ce.Code)
			assert.Equal(t, 400, ce.Status)
		})
	}
}

func TestDecodeRequestErrors(t *testing.T) {
	_, ce := DecodeRequest([]byte(`{not json`))
	require.NotNil(t, ce)
	assert.Equal(t, CodeParse, ce.Code)
	assert.Equal(t, "Invalid JSON in request body", ce.Message)

	_, ce = DecodeRequest([]byte(`{"messages":[{"role":"user","content":"hi"}],"temperature":"hot"}`))
	require.NotNil(t, ce)
	assert.Equal(t, CodeValidation, ce.Code)

	req, ce := DecodeRequest([]byte(`{"messages":[{"role":"user","content":"hi"}],"stop":"END"}`))
	require.Nil(t, ce)
	assert.Equal(t, StopSequences{"END"}, req.Stop)

	req, ce = DecodeRequest([]byte(`{"messages":[{"role":"user","content":"hi"}],"stop":["a","b"]}`))
	require.Nil(t, ce)
	assert.Equal(t, StopSequences{"a", "b"}, req.Stop)
}
