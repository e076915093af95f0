package envfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndSerializeRoundTrip(t *testing.T) {
	input := "# SYSTEM CONFIGURATION\nLOG_DIRECTORY=/opt/monay/logs\n\nDATABASE_URL=sqlite:////opt/monay/data/monay.db\nCPU_LIMIT=50%\n"

	doc, err := Parse([]byte(input))
	require.NoError(t, err)

	assert.Equal(t, 3, doc.Len())
	assert.Equal(t, []string{"LOG_DIRECTORY", "DATABASE_URL", "CPU_LIMIT"}, doc.Keys())

	reparsed, err := Parse(doc.Serialize())
	require.NoError(t, err)
	assert.Equal(t, doc.Pairs(), reparsed.Pairs())
	assert.Equal(t, doc.Keys(), reparsed.Keys())
}

func TestValueIsLiteralAfterFirstEquals(t *testing.T) {
	doc, err := Parse([]byte("WAN_API_URL=http://localhost:8000?a=b=c\n"))
	require.NoError(t, err)

	v, ok := doc.Get("WAN_API_URL")
	require.True(t, ok)
	assert.Equal(t, "http://localhost:8000?a=b=c", v)
}

func TestEmptyValue(t *testing.T) {
	doc, err := Parse([]byte("EXE_SUFFIX=\n"))
	require.NoError(t, err)

	v, ok := doc.Get("EXE_SUFFIX")
	require.True(t, ok)
	assert.Equal(t, "", v)
}

func TestParseRejectsMalformedLine(t *testing.T) {
	_, err := Parse([]byte("this is not a pair\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestAppendRejectsDuplicateKey(t *testing.T) {
	doc := New()
	require.NoError(t, doc.Append("CPU_LIMIT", "50%"))

	err := doc.Append("CPU_LIMIT", "75%")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CPU_LIMIT")
}

func TestCommentsAreNotPairs(t *testing.T) {
	doc, err := Parse([]byte("# CPU_LIMIT=90%\nCPU_LIMIT=50%\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Len())

	v, _ := doc.Get("CPU_LIMIT")
	assert.Equal(t, "50%", v)
}

func TestSerializeIsStable(t *testing.T) {
	doc := New()
	doc.AppendComment("monay production configuration")
	require.NoError(t, doc.Append("DEBUG", "false"))
	doc.AppendBlank()
	require.NoError(t, doc.Append("SSL_VERIFY", "true"))

	first := doc.Serialize()
	second := doc.Serialize()
	assert.Equal(t, first, second)
	assert.Equal(t, "# monay production configuration\nDEBUG=false\n\nSSL_VERIFY=true\n", string(first))
}
