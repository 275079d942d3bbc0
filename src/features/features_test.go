package features

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/esteinig/sketchy/src/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTemplate = Template{
	Name:       "test",
	Lineage:    "ST",
	Resistance: []string{"Rif", "Tet", "Bla"},
	Binary:     []string{"Bla"},
	Genotype:   []string{"meca", "pvl"},
}

const testIndex = "UUID\tst\trif\ttet\tbla\tmecA\tpvl\textra\n" +
	"g1\t9\tR\tsusceptible\tblaKPC\tR\t-\tx\n" +
	"g2\t3\t-\tmaybe\t-\t-\t+\tx\n"

func TestReadIndex(t *testing.T) {
	idx, err := ReadIndex(strings.NewReader(testIndex), testTemplate, "-")
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())

	ann, ok := idx.Annotate("g1")
	require.True(t, ok)
	assert.Equal(t, "9", ann.Lineage)
	assert.Equal(t, "RSR", ann.Resistance)
	assert.Equal(t, feed.Genotype{"meca": "R"}, ann.Genotype)

	ann, ok = idx.Annotate("g2")
	require.True(t, ok)
	assert.Equal(t, "-US", ann.Resistance)
	assert.Equal(t, feed.Genotype{"pvl": "+"}, ann.Genotype)

	_, ok = idx.Annotate("g3")
	assert.False(t, ok)
}

func TestReadIndexErrors(t *testing.T) {
	_, err := ReadIndex(strings.NewReader("uuid\tst\trif\n"), testTemplate, "-")
	assert.Error(t, err)
	_, err = ReadIndex(strings.NewReader(""), testTemplate, "-")
	assert.Error(t, err)
	_, err = ReadIndex(strings.NewReader(testIndex+"g1\t9\tR\tS\t-\t-\t-\tx\n"), testTemplate, "-")
	assert.Error(t, err)
	_, err = ReadIndex(strings.NewReader(testIndex), testTemplate, "NA")
	assert.Error(t, err)
}

func TestIndexAnnotatesFeed(t *testing.T) {
	idx, err := ReadIndex(strings.NewReader(testIndex), testTemplate, "-")
	require.NoError(t, err)
	table := "read_index\trank\tgenome_id\tshared_hashes\n1\t1\tg1\t500\n1\t2\tg2\t400\n"
	rows, err := feed.ReadTable(strings.NewReader(table), feed.TableOptions{Missing: "-", Annotator: idx})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "9", rows[0].Hit.Lineage)
	assert.Equal(t, "RSR", rows[0].Hit.Resistance)
	assert.Equal(t, "3", rows[1].Hit.Lineage)
}

func TestTemplates(t *testing.T) {
	assert.Equal(t, []string{"kpneumoniae", "mtuberculosis", "saureus"}, Templates())
	for _, name := range Templates() {
		tmpl, err := GetTemplate(name)
		require.NoError(t, err)
		assert.NoError(t, tmpl.Validate(), name)
	}
	sa, err := GetTemplate("SAureus")
	require.NoError(t, err)
	assert.Equal(t, "mlst", sa.Lineage)
	assert.Len(t, sa.Resistance, 12)
	sa.Resistance[0] = "changed"
	again, _ := GetTemplate("saureus")
	assert.Equal(t, "clindamycin", again.Resistance[0])

	_, err = GetTemplate("ecoli")
	assert.Error(t, err)
}

func TestLoadTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.yaml")
	data := "name: custom\nlineage: ST\nresistance: [Rif, Tet]\nbinary: [Tet]\ngenotype: [meca]\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	tmpl, err := LoadTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, "st", tmpl.Lineage)
	assert.Equal(t, []string{"rif", "tet"}, tmpl.Resistance)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("lineage: st\nresistance: [rif]\nbinary: [tet]\n"), 0644))
	_, err = LoadTemplate(bad)
	assert.Error(t, err)
}
