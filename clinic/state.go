package clinic

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
)

// Default data file names.
const (
	OwnersFile       = "owners.csv"
	PetsFile         = "pets.csv"
	AppointmentsFile = "appointments.csv"
	UsersFile        = "users.csv"
)

// Paths locates the four data files.
type Paths struct {
	Owners       string
	Pets         string
	Appointments string
	Users        string
}

// DefaultPaths places the default file names under dir.
func DefaultPaths(dir string) Paths {
	return Paths{
		Owners:       filepath.Join(dir, OwnersFile),
		Pets:         filepath.Join(dir, PetsFile),
		Appointments: filepath.Join(dir, AppointmentsFile),
		Users:        filepath.Join(dir, UsersFile),
	}
}

// State is the whole in-memory dataset of a session together with the id
// sequences of each collection.
type State struct {
	Owners       []*Owner
	Pets         []*Pet
	Appointments []*Appointment
	Users        []*User

	ownerIDs       idSequence
	petIDs         idSequence
	appointmentIDs idSequence
	userIDs        idSequence
}

// LoadState reads all four files. Missing files load as empty collections.
func LoadState(paths Paths, log *slog.Logger) *State {
	log = orDiscard(log)
	s := &State{
		Owners:       LoadOwners(paths.Owners, log),
		Pets:         LoadPets(paths.Pets, log),
		Appointments: LoadAppointments(paths.Appointments, log),
		Users:        LoadUsers(paths.Users, log),
	}
	s.Reindex()
	return s
}

// Reindex advances every id sequence past the ids present and rebuilds the
// owners' appointment lists.
func (s *State) Reindex() {
	for _, o := range s.Owners {
		s.ownerIDs.observe(o.ID)
	}
	for _, p := range s.Pets {
		s.petIDs.observe(p.ID)
	}
	for _, a := range s.Appointments {
		s.appointmentIDs.observe(a.ID)
	}
	for _, u := range s.Users {
		s.userIDs.observe(u.ID)
	}
	s.relinkAppointments()
}

func (s *State) relinkAppointments() {
	byOwner := make(map[int]*Owner, len(s.Owners))
	for _, o := range s.Owners {
		o.appointments = nil
		if _, dup := byOwner[o.ID]; !dup {
			byOwner[o.ID] = o
		}
	}
	for _, a := range s.Appointments {
		if o, ok := byOwner[a.OwnerID]; ok {
			o.appointments = append(o.appointments, a)
		}
	}
}

func (s *State) NextOwnerID() int       { return s.ownerIDs.peek() }
func (s *State) NextPetID() int         { return s.petIDs.peek() }
func (s *State) NextAppointmentID() int { return s.appointmentIDs.peek() }
func (s *State) NextUserID() int        { return s.userIDs.peek() }

// Save rewrites all four files and returns every failure joined.
func (s *State) Save(paths Paths) error {
	var errs []error
	if err := SaveOwners(paths.Owners, s.Owners); err != nil {
		errs = append(errs, fmt.Errorf("save owners: %w", err))
	}
	if err := SavePets(paths.Pets, s.Pets); err != nil {
		errs = append(errs, fmt.Errorf("save pets: %w", err))
	}
	if err := SaveAppointments(paths.Appointments, s.Appointments); err != nil {
		errs = append(errs, fmt.Errorf("save appointments: %w", err))
	}
	if err := SaveUsers(paths.Users, s.Users); err != nil {
		errs = append(errs, fmt.Errorf("save users: %w", err))
	}
	return errors.Join(errs...)
}
