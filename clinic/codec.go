package clinic

import (
	"errors"
	"strconv"
	"strings"
)

// Tokens written in place of delimiters inside free text.
const (
	commaToken     = "[comma]"
	semicolonToken = "[semicolon]"
	pipeToken      = "[pipe]"
	bracketToken   = "[lbracket]"
)

const (
	entrySep = ";"
	fieldSep = "|"
)

// EscapeCommas replaces every literal comma in s with the [comma] token.
func EscapeCommas(s string) string {
	return strings.ReplaceAll(s, ",", commaToken)
}

// UnescapeCommas turns every [comma] token back into a literal comma.
func UnescapeCommas(s string) string {
	return strings.ReplaceAll(s, commaToken, ",")
}

// Entry text escapes "[" first so that literal token text inside a
// detail survives. Legacy files hold only [comma] tokens and decode the same.
var (
	entryEscaper = strings.NewReplacer(
		"[", bracketToken,
		",", commaToken,
		entrySep, semicolonToken,
		fieldSep, pipeToken,
	)
	entryUnescaper = strings.NewReplacer(
		bracketToken, "[",
		commaToken, ",",
		semicolonToken, entrySep,
		pipeToken, fieldSep,
	)
)

var errMissingEntryID = errors.New("missing id")

// escapeEntryText escapes free text stored inside a ;/| sub-record list.
func escapeEntryText(s string) string { return entryEscaper.Replace(s) }

func unescapeEntryText(s string) string { return entryUnescaper.Replace(s) }

// splitFields splits a data line into exactly n comma-separated fields. The
// last field keeps the remainder of the line; missing fields come back empty.
func splitFields(line string, n int) []string {
	parts := strings.SplitN(line, ",", n)
	for len(parts) < n {
		parts = append(parts, "")
	}
	return parts
}

// splitEntries splits a ;-joined list, dropping empty entries.
func splitEntries(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, entrySep)
	out := raw[:0]
	for _, e := range raw {
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, entrySep)
}

// encodeRecords renders a record store as id|date|details entries.
func encodeRecords(rs *RecordStore) string {
	entries := rs.All()
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = strconv.Itoa(e.ID) + fieldSep + e.Date + fieldSep + escapeEntryText(e.Details)
	}
	return strings.Join(parts, entrySep)
}

// decodeRecords fills rs from id|date|details entries. Entries with a missing
// or bad id are reported through onBad and skipped.
func decodeRecords(s string, rs *RecordStore, onBad func(entry string, err error)) {
	for _, entry := range splitEntries(s) {
		f := strings.SplitN(entry, fieldSep, 3)
		for len(f) < 3 {
			f = append(f, "")
		}
		if strings.TrimSpace(f[0]) == "" {
			onBad(entry, errMissingEntryID)
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(f[0]))
		if err != nil {
			onBad(entry, err)
			continue
		}
		rs.AddWithID(id, f[1], unescapeEntryText(f[2]))
	}
}

func encodeVaccinations(vs *VaccinationStore) string {
	all := vs.All()
	parts := make([]string, len(all))
	for i, v := range all {
		parts[i] = strconv.Itoa(v.ID) + fieldSep + escapeEntryText(v.Name) + fieldSep + v.Date + fieldSep + v.Status
	}
	return strings.Join(parts, entrySep)
}

func decodeVaccinations(s string, vs *VaccinationStore, onBad func(entry string, err error)) {
	for _, entry := range splitEntries(s) {
		f := strings.SplitN(entry, fieldSep, 4)
		for len(f) < 4 {
			f = append(f, "")
		}
		if strings.TrimSpace(f[0]) == "" {
			onBad(entry, errMissingEntryID)
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(f[0]))
		if err != nil {
			onBad(entry, err)
			continue
		}
		vs.AddWithID(id, unescapeEntryText(f[1]), f[2], f[3])
	}
}
