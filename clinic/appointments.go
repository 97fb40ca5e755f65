package clinic

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

const appointmentsHeader = "appointment_id,owner_id,pet_id,date,time,purpose,status"

// ReadAppointments parses an appointments file. Status is the text after the
// last comma; everything between time and status is the purpose.
func ReadAppointments(r io.Reader, log *slog.Logger) []*Appointment {
	log = orDiscard(log)
	var appts []*Appointment
	eachDataLine(r, log, func(lineNo int, line string) {
		f := splitFields(line, 6)
		if f[0] == "" || f[1] == "" || f[2] == "" || f[5] == "" {
			log.Warn("skipping malformed appointment line", slog.Int("line", lineNo), slog.String("reason", "missing fields"))
			return
		}
		rest := f[5]
		cut := strings.LastIndex(rest, ",")
		if cut < 0 {
			log.Warn("skipping malformed appointment line", slog.Int("line", lineNo), slog.String("reason", "missing status"))
			return
		}

		var ids [3]int
		for i := range ids {
			n, err := strconv.Atoi(strings.TrimSpace(f[i]))
			if err != nil {
				log.Warn("skipping malformed appointment line", slog.Int("line", lineNo), slog.String("reason", "invalid id"), slog.String("value", f[i]))
				return
			}
			ids[i] = n
		}
		appts = append(appts, &Appointment{
			ID:      ids[0],
			OwnerID: ids[1],
			PetID:   ids[2],
			Date:    f[3],
			Time:    f[4],
			Purpose: UnescapeCommas(rest[:cut]),
			Status:  strings.TrimSpace(rest[cut+1:]),
		})
	})
	return appts
}

func LoadAppointments(path string, log *slog.Logger) []*Appointment {
	var appts []*Appointment
	log = orDiscard(log).With(slog.String("file", path))
	loadFile(path, log, func(r io.Reader) { appts = ReadAppointments(r, log) })
	return appts
}

func WriteAppointments(w io.Writer, appts []*Appointment) error {
	if _, err := fmt.Fprintln(w, appointmentsHeader); err != nil {
		return err
	}
	for _, a := range appts {
		_, err := fmt.Fprintf(w, "%d,%d,%d,%s,%s,%s,%s\n",
			a.ID, a.OwnerID, a.PetID, a.Date, a.Time, EscapeCommas(a.Purpose), a.Status)
		if err != nil {
			return err
		}
	}
	return nil
}

func SaveAppointments(path string, appts []*Appointment) error {
	return writeFileAtomic(path, func(w io.Writer) error { return WriteAppointments(w, appts) })
}

func FindAppointment(appts []*Appointment, id int) *Appointment {
	for _, a := range appts {
		if a.ID == id {
			return a
		}
	}
	return nil
}
