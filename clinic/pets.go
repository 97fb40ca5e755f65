package clinic

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

const petsHeader = "pet_id,name,breed,age,owner_id,vaccination_status,vaccinations,medical_history,pet_records"

// ReadPets parses a pets file. An empty or "-1" owner id means unassigned.
func ReadPets(r io.Reader, log *slog.Logger) []*Pet {
	log = orDiscard(log)
	var pets []*Pet
	eachDataLine(r, log, func(lineNo int, line string) {
		f := splitFields(line, 9)
		if f[0] == "" || f[3] == "" {
			log.Warn("skipping malformed pet line", slog.Int("line", lineNo), slog.String("reason", "missing pet id or age"))
			return
		}
		id, err := strconv.Atoi(strings.TrimSpace(f[0]))
		if err != nil {
			log.Warn("skipping malformed pet line", slog.Int("line", lineNo), slog.String("reason", "invalid pet id"), slog.String("value", f[0]))
			return
		}
		age, err := strconv.Atoi(strings.TrimSpace(f[3]))
		if err != nil {
			log.Warn("skipping malformed pet line", slog.Int("line", lineNo), slog.String("reason", "invalid age"), slog.String("value", f[3]))
			return
		}
		ownerID := NoOwner
		if s := strings.TrimSpace(f[4]); s != "" && s != "-1" {
			if ownerID, err = strconv.Atoi(s); err != nil {
				log.Warn("skipping malformed pet line", slog.Int("line", lineNo), slog.String("reason", "invalid owner id"), slog.String("value", f[4]))
				return
			}
		}

		p := NewPet(id, UnescapeCommas(f[1]), UnescapeCommas(f[2]), age, ownerID)
		p.VaccinationStatus = f[5]
		bad := func(what string) func(string, error) {
			return func(entry string, err error) {
				log.Warn("skipping invalid "+what, slog.Int("pet_id", id), slog.String("entry", entry))
			}
		}
		decodeVaccinations(f[6], p.Vaccinations, bad("vaccination"))
		decodeRecords(f[7], p.MedicalHistory, bad("medical record"))
		decodeRecords(f[8], p.GeneralRecords, bad("pet record"))
		pets = append(pets, p)
	})
	return pets
}

func LoadPets(path string, log *slog.Logger) []*Pet {
	var pets []*Pet
	log = orDiscard(log).With(slog.String("file", path))
	loadFile(path, log, func(r io.Reader) { pets = ReadPets(r, log) })
	return pets
}

// WritePets writes the pets with their vaccination status recomputed from the
// live entries.
func WritePets(w io.Writer, pets []*Pet) error {
	if _, err := fmt.Fprintln(w, petsHeader); err != nil {
		return err
	}
	for _, p := range pets {
		_, err := fmt.Fprintf(w, "%d,%s,%s,%d,%d,%s,%s,%s,%s\n",
			p.ID, EscapeCommas(p.Name), EscapeCommas(p.Breed), p.Age, p.OwnerID,
			p.VaccinationOverview(), encodeVaccinations(p.Vaccinations),
			encodeRecords(p.MedicalHistory), encodeRecords(p.GeneralRecords))
		if err != nil {
			return err
		}
	}
	return nil
}

func SavePets(path string, pets []*Pet) error {
	return writeFileAtomic(path, func(w io.Writer) error { return WritePets(w, pets) })
}

func FindPet(pets []*Pet, id int) *Pet {
	for _, p := range pets {
		if p.ID == id {
			return p
		}
	}
	return nil
}
