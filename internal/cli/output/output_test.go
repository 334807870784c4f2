package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeJSON, ParseMode("json"))
	assert.Equal(t, ModeMarkdown, ParseMode("md"))
	assert.Equal(t, ModeMarkdown, ParseMode("markdown"))
	assert.Equal(t, ModeText, ParseMode("text"))
	assert.Equal(t, ModeText, ParseMode(""))
	assert.Equal(t, ModeText, ParseMode("bogus"))
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, &buf, ModeJSON)

	require.NoError(t, r.JSON(map[string]int{"tables": 3}))

	var decoded map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 3, decoded["tables"])
}

func TestTableMarkdown(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, &buf, ModeMarkdown)

	r.Table([]string{"Name", "Role"}, [][]string{{"Sales", "fact"}, {"Date", "dimension"}})

	out := buf.String()
	assert.Contains(t, out, "| Name | Role |")
	assert.Contains(t, out, "| Sales | fact |")
}

func TestTableText(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, &buf, ModeText)

	r.Table([]string{"Name"}, [][]string{{"Sales"}})

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Sales")
}

func TestErrorGoesToErrStream(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRenderer(&out, &errOut, ModeJSON)

	r.Error("boom")
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "boom")
}

func TestStatusLine(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, &buf, ModeMarkdown)

	r.StatusLine("tables.md", "success", "412 bytes")
	assert.Contains(t, buf.String(), "tables.md")
	assert.Contains(t, buf.String(), "412 bytes")
}
