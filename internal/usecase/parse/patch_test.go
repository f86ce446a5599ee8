package parse_test

import (
	"encoding/json"
	"testing"

	"djnml-feed/internal/domain/codes"
	"djnml-feed/internal/domain/entity"
	"djnml-feed/internal/domain/markup"
	"djnml-feed/internal/infra/xmltree"
	"djnml-feed/internal/usecase/parse"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const replaceFragments = `<doc-modify>
  <modify-replace xpath="djnml/head/docdata/djn/djn-newswires/djn-mdata">
    <djn-mdata>
      <djn-coding>
        <djn-company><c> ADEN.VX </c></djn-company>
        <djn-isin><c>CH0012138605</c></djn-isin>
        <djn-subject><c>N/DJCB</c></djn-subject>
        <djn-geo><c>R/SZ</c></djn-geo>
        <djn-function><c>N/GEN</c></djn-function>
      </djn-coding>
    </djn-mdata>
  </modify-replace>
  <modify-replace xpath="djnml/body"><headline> New headline </headline><text><p>new <b>body</b></p></text><summary>short</summary><djn-urgency> 2 </djn-urgency></modify-replace>
</doc-modify>`

func fragments(t *testing.T) []markup.Node {
	t.Helper()
	root, err := xmltree.NewParser().ParseString(replaceFragments)
	require.NoError(t, err)
	nodes := root.Find("//modify-replace")
	require.Len(t, nodes, 2)
	return nodes
}

func header() parse.ModifyHeader {
	publisher, docDate, product, seq := "DJN", "20120720", "DN", "4101"
	return parse.ModifyHeader{Publisher: &publisher, DocDate: &docDate, Product: &product, Seq: &seq}
}

func ptr[T any](v T) *T { return &v }

func TestBuildModification_TreeAndRecordAgree(t *testing.T) {
	e, _ := newEngine(t)
	nodes := fragments(t)

	tests := []struct {
		name   string
		node   markup.Node
		record parse.PatchRecord
	}{
		{
			name: "metadata",
			node: nodes[0],
			record: parse.PatchRecord{
				Publisher: ptr("DJN"), DocDate: ptr("20120720"), Product: ptr("DN"), Seq: ptr(4101),
				Path: ptr("djnml/head/docdata/djn/djn-newswires/djn-mdata"),
				Metadata: &parse.CodingRecord{
					Company:  []string{"ADEN.VX"},
					ISIN:     []string{"CH0012138605"},
					Subject:  []parse.CodeRecord{{Symbol: "N/DJCB"}},
					Geo:      []parse.CodeRecord{{Symbol: "R/SZ"}},
					Function: []parse.CodeRecord{{Symbol: "N/GEN"}},
				},
			},
		},
		{
			name: "body fields",
			node: nodes[1],
			record: parse.PatchRecord{
				Publisher: ptr("DJN"), DocDate: ptr("20120720"), Product: ptr("DN"), Seq: ptr(4101),
				Path:     ptr("djnml/body"),
				Headline: ptr("New headline"),
				Text:     &parse.TextRecord{Text: "new body", HTML: "<p>new <b>body</b></p>"},
				Summary:  &parse.TextRecord{Text: "short", HTML: "short"},
				Urgency:  ptr("2"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fromTree, err := e.BuildModification(parse.TreeFragment{Header: header(), Node: tt.node})
			require.NoError(t, err)
			fromRecord, err := e.BuildModification(tt.record)
			require.NoError(t, err)

			if diff := cmp.Diff(fromTree, fromRecord); diff != "" {
				t.Fatalf("tree and record disagree (-tree +record):\n%s", diff)
			}
		})
	}
}

func TestBuildModification_RecordRoundTrip(t *testing.T) {
	e, _ := newEngine(t)

	for _, node := range fragments(t) {
		mod, err := e.BuildModification(parse.TreeFragment{Header: header(), Node: node})
		require.NoError(t, err)

		b, err := json.Marshal(parse.RecordOf(mod))
		require.NoError(t, err)
		var rec parse.PatchRecord
		require.NoError(t, json.Unmarshal(b, &rec))

		again, err := e.BuildModification(&rec)
		require.NoError(t, err)
		if diff := cmp.Diff(mod, again); diff != "" {
			t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestBuildModification_OnlyPresentFields(t *testing.T) {
	e, _ := newEngine(t)

	mod, err := e.BuildModification(parse.PatchRecord{PressCutout: ptr("")})
	require.NoError(t, err)

	assert.Equal(t, []entity.Field{entity.FieldPressCutout}, mod.FieldsToModify())
	assert.Nil(t, mod.Publisher)
	assert.Nil(t, mod.DocDate)
	assert.Nil(t, mod.Seq)
}

func TestBuildModification_Errors(t *testing.T) {
	e, _ := newEngine(t)

	t.Run("unknown symbol in record", func(t *testing.T) {
		_, err := e.BuildModification(parse.PatchRecord{
			Metadata: &parse.CodingRecord{Industry: []parse.CodeRecord{{Symbol: "I/NOPE"}}},
		})
		assert.ErrorIs(t, err, codes.ErrInvalidCode)
	})

	t.Run("blank symbol in record", func(t *testing.T) {
		_, err := e.BuildModification(parse.PatchRecord{
			Metadata: &parse.CodingRecord{Geo: []parse.CodeRecord{{}}},
		})
		assert.ErrorIs(t, err, codes.ErrInvalidCode)
	})

	t.Run("nil source", func(t *testing.T) {
		_, err := e.BuildModification(nil)
		assert.Error(t, err)
	})
}

func TestBuildModification_BadDocDateKeepsPatch(t *testing.T) {
	e, m := newEngine(t)
	h := header()
	h.DocDate = ptr("tomorrow-ish")

	fromTree, err := e.BuildModification(parse.TreeFragment{Header: h, Node: fragments(t)[1]})
	require.NoError(t, err)
	assert.Nil(t, fromTree.DocDate)
	assert.Equal(t, "New headline", deref(t, fromTree.Headline))
	assert.Equal(t, 4101, deref(t, fromTree.Seq))

	fromRecord, err := e.BuildModification(parse.PatchRecord{DocDate: ptr("tomorrow-ish"), Headline: ptr("New headline")})
	require.NoError(t, err)
	assert.Nil(t, fromRecord.DocDate)
	assert.Equal(t, []entity.Field{entity.FieldHeadline}, fromRecord.FieldsToModify())

	assert.Equal(t, []string{"modification", "modification"}, m.misses)
}

func TestRecordOf_KeepsTimeOfDay(t *testing.T) {
	e, _ := newEngine(t)
	h := header()
	h.DocDate = ptr("20120720T141502Z")

	mod, err := e.BuildModification(parse.TreeFragment{Header: h})
	require.NoError(t, err)

	rec := parse.RecordOf(mod)
	assert.Equal(t, "20120720T141502Z", deref(t, rec.DocDate))

	again, err := e.BuildModification(rec)
	require.NoError(t, err)
	assert.True(t, mod.DocDate.Equal(*again.DocDate))
}

func TestBuildModification_TreeSeqCoercion(t *testing.T) {
	e, _ := newEngine(t)
	h := header()
	h.Seq = ptr("not-a-number")

	mod, err := e.BuildModification(parse.TreeFragment{Header: h})
	require.NoError(t, err)
	assert.Equal(t, 0, *mod.Seq)
	assert.Empty(t, mod.FieldsToModify())
}
