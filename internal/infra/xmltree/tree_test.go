package xmltree_test

import (
	"errors"
	"testing"

	"djnml-feed/internal/domain/markup"
	"djnml-feed/internal/infra/xmltree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `<?xml version="1.0" encoding="UTF-8"?>
<doc msize="42" md5="abc">
  <djnml publisher="DJN" seq="7">
    <body>
      <headline brand-display="DJ">Caf&eacute; opens</headline>
      <text><p>first</p><p>second</p></text>
    </body>
  </djnml>
</doc>`

func TestParser_Parse(t *testing.T) {
	root, err := xmltree.NewParser().ParseString(sample)
	require.NoError(t, err)

	doc := markup.First(root, "/doc")
	require.NotNil(t, doc)

	size, ok := doc.Attr("msize")
	assert.True(t, ok)
	assert.Equal(t, "42", size)

	_, ok = doc.Attr("sysId")
	assert.False(t, ok)

	headline := markup.First(root, "/doc/djnml/body/headline")
	require.NotNil(t, headline)
	assert.Equal(t, "Café opens", headline.Text())

	text := markup.First(root, "/doc/djnml/body/text")
	require.NotNil(t, text)
	assert.Equal(t, "firstsecond", text.Text())
	assert.Equal(t, "<p>first</p><p>second</p>", text.InnerXML())
}

func TestNode_FindRelative(t *testing.T) {
	root, err := xmltree.NewParser().ParseString(sample)
	require.NoError(t, err)

	djnml := markup.First(root, "/doc/djnml")
	require.NotNil(t, djnml)

	assert.Len(t, djnml.Find(".//p"), 2)
	assert.Len(t, djnml.Find("body/headline"), 1)
	assert.Empty(t, djnml.Find("head"))
	assert.Empty(t, djnml.Find("[[[not an expression"))
	assert.Nil(t, markup.First(djnml, "missing"))
}

func TestParser_Malformed(t *testing.T) {
	tests := map[string]string{
		"unclosed":  "<doc><djnml>",
		"plaintext": "this is not markup",
		"empty":     "",
		"mismatch":  "<doc><a></b></doc>",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := xmltree.NewParser().ParseString(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, xmltree.ErrMalformed))
		})
	}
}
