package clinic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeCommas_RoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"no commas here",
		"one, two, three",
		",,,",
		"trailing,",
		"mixed; with | other, delimiters",
		"unicode, café, 猫",
	}
	for _, in := range inputs {
		esc := EscapeCommas(in)
		assert.NotContains(t, esc, ",", "escaped %q", in)
		assert.Equal(t, in, UnescapeCommas(esc))
	}
}

func TestEscapeCommas_Token(t *testing.T) {
	assert.Equal(t, "a[comma]b", EscapeCommas("a,b"))
	assert.Len(t, commaToken, 7)
	assert.Equal(t, "12 High St, Leeds", UnescapeCommas("12 High St[comma] Leeds"))
}

func TestEntryText_RoundTrip(t *testing.T) {
	in := "x-ray; left leg | fracture, minor"
	esc := escapeEntryText(in)
	assert.False(t, strings.ContainsAny(esc, ",;|"), esc)
	assert.Equal(t, in, unescapeEntryText(esc))
}

func TestEntryText_LiteralTokens(t *testing.T) {
	inputs := []string{
		"see [pipe] and [semicolon] notes",
		"[comma] is not a comma",
		"[lbracket] [[]] [",
		"mixed [pipe]|[semicolon];[comma],",
	}
	for _, in := range inputs {
		assert.Equal(t, in, unescapeEntryText(escapeEntryText(in)), in)
	}
}

func TestEntryText_LegacyTokens(t *testing.T) {
	assert.Equal(t, "Ear infection, drops [left]", unescapeEntryText("Ear infection[comma] drops [left]"))
}

func TestSplitFields(t *testing.T) {
	assert.Equal(t, []string{"1", "a", "b,c"}, splitFields("1,a,b,c", 3))
	assert.Equal(t, []string{"1", "", ""}, splitFields("1", 3))
	assert.Equal(t, []string{"", ""}, splitFields("", 2))
}

func TestSplitEntries(t *testing.T) {
	assert.Nil(t, splitEntries(""))
	assert.Equal(t, []string{"3", "5"}, splitEntries("3;;5;"))
}

func TestDecodeRecords_SkipsBadIDs(t *testing.T) {
	rs := NewRecordStore(RecordKindOwner)
	var bad []string
	decodeRecords("1|2025-01-01|Checkup;x|2025-01-02|Bad;|2025-01-03|NoID;4|2025-01-04|Follow up[comma] fine",
		rs, func(entry string, err error) { bad = append(bad, entry) })

	assert.Equal(t, []string{"x|2025-01-02|Bad", "|2025-01-03|NoID"}, bad)
	assert.Equal(t, 2, rs.Len())
	r, ok := rs.Get(4)
	assert.True(t, ok)
	assert.Equal(t, "Follow up, fine", r.Details)
	assert.Equal(t, 5, rs.NextID())
}

func TestEncodeRecords(t *testing.T) {
	rs := NewRecordStore(RecordKindPet)
	rs.AddWithID(2, "2025-02-01", "second")
	rs.AddWithID(1, "2025-01-01", "first, with comma")
	assert.Equal(t, "1|2025-01-01|first[comma] with comma;2|2025-02-01|second", encodeRecords(rs))
}

func TestDecodeVaccinations_ReportsMissingID(t *testing.T) {
	vs := NewVaccinationStore()
	var bad []string
	decodeVaccinations("|Rabies|2024-05-01|completed;2|Lepto|2024-06-01|pending", vs,
		func(entry string, err error) {
			assert.ErrorIs(t, err, errMissingEntryID)
			bad = append(bad, entry)
		})

	assert.Equal(t, []string{"|Rabies|2024-05-01|completed"}, bad)
	assert.Equal(t, 1, vs.Len())
}

func TestVaccinationCodec(t *testing.T) {
	vs := NewVaccinationStore()
	decodeVaccinations("1|Rabies|2024-05-01|completed;2|Lepto|2024-06-01|booster required", vs,
		func(string, error) { t.Fatal("unexpected bad entry") })

	assert.Equal(t, 2, vs.Len())
	assert.Equal(t, "1|Rabies|2024-05-01|completed;2|Lepto|2024-06-01|booster required", encodeVaccinations(vs))
}
