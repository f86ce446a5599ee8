package djnml_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"djnml-feed/internal/domain/codes"
	"djnml-feed/internal/usecase/parse"
	"djnml-feed/pkg/djnml"
	"djnml-feed/tests/fixtures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_NotFound(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.nml")

	_, err := djnml.Load(missing)
	assert.ErrorIs(t, err, djnml.ErrNotFound)

	_, err = djnml.New().Load(missing)
	assert.ErrorIs(t, err, djnml.ErrNotFound)
}

func TestLoad_Story(t *testing.T) {
	path := fixtures.WriteFile(t, t.TempDir(), "story.nml", fixtures.GenerateStory(fixtures.DefaultStory()))

	doc, err := djnml.Load(path)
	require.NoError(t, err)

	require.NotNil(t, doc.Headline)
	assert.Equal(t, "Adidas 1Q Net Profit Rises, Confirms Outlook", *doc.Headline)
	require.NotNil(t, doc.Publisher)
	assert.Equal(t, "DJN", *doc.Publisher)
	assert.Equal(t, 785, doc.Seq)
	assert.Equal(t, []string{"ADDYY", "ADS.XE"}, doc.CompanyCodes)
}

func TestNewWithRegistry_InvalidCode(t *testing.T) {
	reg := codes.NewRegistry(map[string]string{"N/ERN": "Earnings"})
	path := fixtures.WriteFile(t, t.TempDir(), "story.nml", fixtures.GenerateStory(fixtures.DefaultStory()))

	_, err := djnml.NewWithRegistry(reg).Load(path)
	assert.ErrorIs(t, err, djnml.ErrInvalidCode)
}

func TestLoader_Read(t *testing.T) {
	doc, err := djnml.New().Read(context.Background(),
		strings.NewReader(fixtures.GenerateDeletes("LL", "20120720", 10, 2)))
	require.NoError(t, err)

	assert.Len(t, doc.Deletes, 2)
	assert.False(t, doc.HasContent())
}

func TestLoader_FromRecord(t *testing.T) {
	path := fixtures.WriteFile(t, t.TempDir(), "story.nml", fixtures.GenerateStory(fixtures.DefaultStory()))
	loader := djnml.New()

	doc, err := loader.Load(path)
	require.NoError(t, err)

	again, err := loader.FromRecord(context.Background(), djnml.RecordOf(doc))
	require.NoError(t, err)
	assert.Equal(t, *doc.Headline, *again.Headline)
	assert.Equal(t, doc.CompanyCodes, again.CompanyCodes)
	assert.True(t, doc.DocDate.Equal(*again.DocDate))

	rec := djnml.RecordOf(doc)
	rec.Subject = append(rec.Subject, parse.CodeRecord{Symbol: "N/NOSUCH"})
	_, err = loader.FromRecord(context.Background(), rec)
	assert.ErrorIs(t, err, djnml.ErrInvalidCode)
}
