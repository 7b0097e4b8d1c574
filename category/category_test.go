package category

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tableYAML = `
categories:
  - name: sms
    triggers: [messag, "read sms"]
  - name: clicker
    triggers:
      - click
`

func TestDecodeKeepsOrder(t *testing.T) {
	table, err := Decode(strings.NewReader(tableYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"sms", "clicker"}, table.Names())
	assert.Equal(t, []string{"messag", "read sms"}, table[0].Triggers)
}

func TestDecodeEmpty(t *testing.T) {
	table, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.NotNil(t, table)
	assert.Empty(t, table)
}

func TestDecodeRejectsInvalidTables(t *testing.T) {
	_, err := Decode(strings.NewReader("categories:\n  - name: a\n  - name: a\n"))
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = Decode(strings.NewReader("categories:\n  - name: uncategorized\n"))
	assert.ErrorIs(t, err, ErrReserved)

	_, err = Decode(strings.NewReader("categories:\n  - name: \"\"\n"))
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("categories:\n  - name: a\n    triggers: [\" \"]\n"))
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("categories: {"))
	assert.Error(t, err)
}

func TestEncodeDecode(t *testing.T) {
	table := Table{{Name: "b", Triggers: []string{"x y"}}, {Name: "a", Triggers: []string{"z"}}}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, table))

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, table, got)
}

func TestDefaultTable(t *testing.T) {
	table := Default()
	require.NotEmpty(t, table)
	require.NoError(t, table.Validate())

	r, ok := table.Rule("message_access")
	require.True(t, ok)
	assert.True(t, r.HasTrigger("messag"))
}

func TestWithReplacesInPlaceAndAppends(t *testing.T) {
	table := Table{{Name: "a"}, {Name: "b"}}

	replaced := table.With(Rule{Name: "a", Triggers: []string{"t"}})
	assert.Equal(t, []string{"a", "b"}, replaced.Names())
	assert.Equal(t, []string{"t"}, replaced[0].Triggers)
	// the original is untouched
	assert.Empty(t, table[0].Triggers)

	appended := table.With(Rule{Name: "c"})
	assert.Equal(t, []string{"a", "b", "c"}, appended.Names())

	assert.Equal(t, []string{"b"}, table.Without("a").Names())
}

func TestRuleTriggers(t *testing.T) {
	r := Rule{Name: "a", Triggers: []string{"x"}}

	added := r.WithTrigger("y")
	assert.Equal(t, []string{"x", "y"}, added.Triggers)
	assert.Equal(t, []string{"x"}, r.Triggers)

	assert.Equal(t, []string{"y"}, added.WithoutTrigger("x").Triggers)
	assert.False(t, r.HasTrigger("y"))
}

func TestParseTrigger(t *testing.T) {
	trim := func(w string) string { return strings.TrimSuffix(strings.ToLower(w), "s") }

	tr, err := ParseTrigger([]string{"Reads", "text messages"}, trim)
	require.NoError(t, err)
	assert.Equal(t, "read text message", tr)

	_, err = ParseTrigger([]string{" "}, trim)
	assert.Error(t, err)
}
