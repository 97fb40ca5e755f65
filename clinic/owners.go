package clinic

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

const ownersHeader = "owner_id,name,address,phone_number,email,pet_ids,records"

// ReadOwners parses an owners file. The first line is a header; malformed
// lines are logged and skipped.
func ReadOwners(r io.Reader, log *slog.Logger) []*Owner {
	log = orDiscard(log)
	var owners []*Owner
	eachDataLine(r, log, func(lineNo int, line string) {
		f := splitFields(line, 7)
		if f[0] == "" {
			log.Warn("skipping malformed owner line", slog.Int("line", lineNo), slog.String("reason", "missing owner id"))
			return
		}
		id, err := strconv.Atoi(strings.TrimSpace(f[0]))
		if err != nil {
			log.Warn("skipping malformed owner line", slog.Int("line", lineNo), slog.String("reason", "invalid owner id"), slog.String("value", f[0]))
			return
		}

		o := NewOwner(id, UnescapeCommas(f[1]), UnescapeCommas(f[2]), f[3], f[4])
		for _, s := range splitEntries(f[5]) {
			petID, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				log.Warn("skipping invalid pet id", slog.Int("owner_id", id), slog.String("value", s))
				continue
			}
			o.PetIDs = append(o.PetIDs, petID)
		}
		decodeRecords(f[6], o.Records, func(entry string, err error) {
			log.Warn("skipping invalid owner record", slog.Int("owner_id", id), slog.String("entry", entry))
		})
		owners = append(owners, o)
	})
	return owners
}

// LoadOwners reads the owners file at path. A missing file yields no owners.
func LoadOwners(path string, log *slog.Logger) []*Owner {
	var owners []*Owner
	log = orDiscard(log).With(slog.String("file", path))
	loadFile(path, log, func(r io.Reader) { owners = ReadOwners(r, log) })
	return owners
}

func WriteOwners(w io.Writer, owners []*Owner) error {
	if _, err := fmt.Fprintln(w, ownersHeader); err != nil {
		return err
	}
	for _, o := range owners {
		_, err := fmt.Fprintf(w, "%d,%s,%s,%s,%s,%s,%s\n",
			o.ID, EscapeCommas(o.Name), EscapeCommas(o.Address), o.Phone, o.Email,
			joinInts(o.PetIDs), encodeRecords(o.Records))
		if err != nil {
			return err
		}
	}
	return nil
}

// SaveOwners rewrites the owners file at path in full.
func SaveOwners(path string, owners []*Owner) error {
	return writeFileAtomic(path, func(w io.Writer) error { return WriteOwners(w, owners) })
}

// FindOwner returns the first owner with id, or nil.
func FindOwner(owners []*Owner, id int) *Owner {
	for _, o := range owners {
		if o.ID == id {
			return o
		}
	}
	return nil
}
