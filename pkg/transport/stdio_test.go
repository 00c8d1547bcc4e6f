package transport

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/richard-senior/knockouts/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRequestSplitsConcatenatedObjects(t *testing.T) {
	input := `  {"jsonrpc":"2.0","id":1,"method":"ping"}{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"x","arguments":{"text":"} not the end {"}}}
`
	tr := NewStreamTransport(strings.NewReader(input), io.Discard)

	first, err := tr.ReadRequest()
	require.NoError(t, err)
	assert.Equal(t, "ping", first.Method)

	second, err := tr.ReadRequest()
	require.NoError(t, err)
	assert.Equal(t, "tools/call", second.Method)
	assert.Contains(t, string(second.Params), `"} not the end {"`)

	_, err = tr.ReadRequest()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadRequestEscapedQuotes(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"text":"a \"quoted}\" word"}}`
	tr := NewStreamTransport(strings.NewReader(input), io.Discard)

	req, err := tr.ReadRequest()
	require.NoError(t, err)
	assert.Equal(t, "tools/call", req.Method)
}

func TestReadRequestMalformed(t *testing.T) {
	tr := NewStreamTransport(strings.NewReader(`{"jsonrpc":"2.0","id":1}{"jsonrpc":"2.0","id":2,"method":"ping"}`), io.Discard)

	_, err := tr.ReadRequest()
	assert.ErrorIs(t, err, ErrMalformedRequest)

	req, err := tr.ReadRequest()
	require.NoError(t, err)
	assert.Equal(t, "ping", req.Method)
}

func TestWriteResponse(t *testing.T) {
	var out bytes.Buffer
	tr := NewStreamTransport(strings.NewReader(""), &out)

	resp, err := protocol.NewJsonRpcResponse(map[string]int{"answer": 42}, 3)
	require.NoError(t, err)
	require.NoError(t, tr.WriteResponse(resp))

	assert.Equal(t, `{"jsonrpc":"2.0","result":{"answer":42},"id":3}`+"\n", out.String())
}
