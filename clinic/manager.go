package clinic

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// collection selects which data files a mutation rewrites.
type collection uint8

const (
	ownersFile collection = 1 << iota
	petsFile
	appointmentsFile
	usersFile
)

// ClinicManager applies every change to the in-memory state, keeps owners,
// pets and appointments pointing at each other, and rewrites the touched
// files after each change.
type ClinicManager struct {
	paths         Paths
	state         *State
	log           *slog.Logger
	hasher        PasswordHasher
	validate      Validator
	allowWeekends bool
}

type Option func(*ClinicManager)

func WithLogger(log *slog.Logger) Option {
	return func(m *ClinicManager) { m.log = log }
}

func WithHasher(h PasswordHasher) Option {
	return func(m *ClinicManager) { m.hasher = h }
}

// WithClock sets the clock used by date validation.
func WithClock(now func() time.Time) Option {
	return func(m *ClinicManager) { m.validate.Now = now }
}

func WithWeekendAppointments(allow bool) Option {
	return func(m *ClinicManager) { m.allowWeekends = allow }
}

// NewClinicManager loads the data files named by paths.
func NewClinicManager(paths Paths, opts ...Option) *ClinicManager {
	m := &ClinicManager{paths: paths, hasher: SHA256Hasher{}}
	for _, opt := range opts {
		opt(m)
	}
	m.log = orDiscard(m.log)
	m.state = LoadState(paths, m.log)
	m.log.Debug("data loaded",
		slog.Int("owners", len(m.state.Owners)),
		slog.Int("pets", len(m.state.Pets)),
		slog.Int("appointments", len(m.state.Appointments)),
		slog.Int("users", len(m.state.Users)))
	return m
}

// SetLogger replaces the logger, e.g. with one tagged for a login session.
func (m *ClinicManager) SetLogger(log *slog.Logger) { m.log = orDiscard(log) }

func (m *ClinicManager) State() *State { return m.state }
func (m *ClinicManager) Paths() Paths { return m.paths }
func (m *ClinicManager) Validator() Validator { return m.validate }

// ReplaceState swaps in a whole dataset and rewrites every file.
func (m *ClinicManager) ReplaceState(s *State) error {
	s.Reindex()
	m.state = s
	return m.persist(ownersFile | petsFile | appointmentsFile | usersFile)
}

func (m *ClinicManager) persist(c collection) error {
	var errs []error
	save := func(which collection, name string, fn func() error) {
		if c&which == 0 {
			return
		}
		if err := fn(); err != nil {
			m.log.Error("failed to save data file", slog.String("collection", name), slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("save %s: %w", name, err))
		}
	}
	save(ownersFile, "owners", func() error { return SaveOwners(m.paths.Owners, m.state.Owners) })
	save(petsFile, "pets", func() error { return SavePets(m.paths.Pets, m.state.Pets) })
	save(appointmentsFile, "appointments", func() error { return SaveAppointments(m.paths.Appointments, m.state.Appointments) })
	save(usersFile, "users", func() error { return SaveUsers(m.paths.Users, m.state.Users) })
	return errors.Join(errs...)
}

func notFound(kind string, id int) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, kind, id)
}

// ------------------ Owners ------------------

type OwnerInput struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

func (in OwnerInput) validate() error {
	return errors.Join(
		ValidateName(in.Name),
		ValidateAddress(in.Address),
		ValidatePhone(in.Phone),
		ValidateEmail(in.Email),
	)
}

func (m *ClinicManager) Owners() []*Owner { return m.state.Owners }

func (m *ClinicManager) Owner(id int) (*Owner, error) {
	if o := FindOwner(m.state.Owners, id); o != nil {
		return o, nil
	}
	return nil, notFound("owner", id)
}

// checkContactUnique rejects a phone or email already used by another owner.
func (m *ClinicManager) checkContactUnique(in OwnerInput, selfID int) error {
	phone := strings.TrimSpace(in.Phone)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	for _, o := range m.state.Owners {
		if o.ID == selfID {
			continue
		}
		if strings.TrimSpace(o.Phone) == phone {
			return fmt.Errorf("%w: phone %s is used by owner %d", ErrAlreadyExists, phone, o.ID)
		}
		if strings.ToLower(strings.TrimSpace(o.Email)) == email {
			return fmt.Errorf("%w: email %s is used by owner %d", ErrAlreadyExists, email, o.ID)
		}
	}
	return nil
}

func (m *ClinicManager) AddOwner(in OwnerInput) (*Owner, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := m.checkContactUnique(in, NoOwner); err != nil {
		return nil, err
	}
	o := NewOwner(m.state.ownerIDs.take(), in.Name, in.Address, in.Phone, in.Email)
	m.state.Owners = append(m.state.Owners, o)
	m.log.Info("owner added", slog.Int("owner_id", o.ID))
	return o, m.persist(ownersFile)
}

func (m *ClinicManager) UpdateOwner(id int, in OwnerInput) error {
	o, err := m.Owner(id)
	if err != nil {
		return err
	}
	if err := in.validate(); err != nil {
		return err
	}
	if err := m.checkContactUnique(in, id); err != nil {
		return err
	}
	o.Name, o.Address, o.Phone, o.Email = in.Name, in.Address, in.Phone, in.Email
	return m.persist(ownersFile)
}

// DeleteOwner removes the owner and unassigns its pets and appointments.
// Nothing else is deleted.
func (m *ClinicManager) DeleteOwner(id int) error {
	o, err := m.Owner(id)
	if err != nil {
		return err
	}
	for _, p := range m.state.Pets {
		if p.OwnerID == id || o.HasPet(p.ID) {
			p.OwnerID = NoOwner
		}
	}
	for _, a := range m.state.Appointments {
		if a.OwnerID == id {
			a.OwnerID = NoOwner
		}
	}
	m.state.Owners = removeWhere(m.state.Owners, func(x *Owner) bool { return x.ID == id })
	m.state.relinkAppointments()
	m.log.Info("owner deleted", slog.Int("owner_id", id))
	return m.persist(ownersFile | petsFile | appointmentsFile)
}

// PetsOf resolves an owner's pet ids. Ids with no matching pet are skipped.
func (m *ClinicManager) PetsOf(ownerID int) ([]*Pet, error) {
	o, err := m.Owner(ownerID)
	if err != nil {
		return nil, err
	}
	var pets []*Pet
	for _, id := range o.PetIDs {
		if p := FindPet(m.state.Pets, id); p != nil {
			pets = append(pets, p)
		}
	}
	return pets, nil
}

// ------------------ Records ------------------

func (m *ClinicManager) checkRecord(date, details string) error {
	return errors.Join(m.validate.ValidateDate(date, false), ValidateDetails(details))
}

func (m *ClinicManager) addRecord(rs *RecordStore, file collection, date, details string) (int, error) {
	if err := m.checkRecord(date, details); err != nil {
		return 0, err
	}
	id := rs.Add(date, details)
	return id, m.persist(file)
}

func (m *ClinicManager) updateRecord(rs *RecordStore, file collection, label string, id int, date, details string) error {
	if err := m.checkRecord(date, details); err != nil {
		return err
	}
	if !rs.Update(id, date, details) {
		m.log.Warn("record not found", slog.String("kind", label), slog.Int("id", id))
		return notFound(label, id)
	}
	return m.persist(file)
}

func (m *ClinicManager) removeRecord(rs *RecordStore, file collection, label string, id int) error {
	if !rs.Remove(id) {
		m.log.Warn("record not found", slog.String("kind", label), slog.Int("id", id))
		return notFound(label, id)
	}
	return m.persist(file)
}

func (m *ClinicManager) AddOwnerRecord(ownerID int, date, details string) (int, error) {
	o, err := m.Owner(ownerID)
	if err != nil {
		return 0, err
	}
	return m.addRecord(o.Records, ownersFile, date, details)
}

func (m *ClinicManager) UpdateOwnerRecord(ownerID, recordID int, date, details string) error {
	o, err := m.Owner(ownerID)
	if err != nil {
		return err
	}
	return m.updateRecord(o.Records, ownersFile, "owner record", recordID, date, details)
}

func (m *ClinicManager) RemoveOwnerRecord(ownerID, recordID int) error {
	o, err := m.Owner(ownerID)
	if err != nil {
		return err
	}
	return m.removeRecord(o.Records, ownersFile, "owner record", recordID)
}

func (m *ClinicManager) AddMedicalRecord(petID int, date, details string) (int, error) {
	p, err := m.Pet(petID)
	if err != nil {
		return 0, err
	}
	return m.addRecord(p.MedicalHistory, petsFile, date, details)
}

func (m *ClinicManager) UpdateMedicalRecord(petID, recordID int, date, details string) error {
	p, err := m.Pet(petID)
	if err != nil {
		return err
	}
	return m.updateRecord(p.MedicalHistory, petsFile, "medical record", recordID, date, details)
}

func (m *ClinicManager) RemoveMedicalRecord(petID, recordID int) error {
	p, err := m.Pet(petID)
	if err != nil {
		return err
	}
	return m.removeRecord(p.MedicalHistory, petsFile, "medical record", recordID)
}

func (m *ClinicManager) AddPetRecord(petID int, date, details string) (int, error) {
	p, err := m.Pet(petID)
	if err != nil {
		return 0, err
	}
	return m.addRecord(p.GeneralRecords, petsFile, date, details)
}

func (m *ClinicManager) UpdatePetRecord(petID, recordID int, date, details string) error {
	p, err := m.Pet(petID)
	if err != nil {
		return err
	}
	return m.updateRecord(p.GeneralRecords, petsFile, "pet record", recordID, date, details)
}

func (m *ClinicManager) RemovePetRecord(petID, recordID int) error {
	p, err := m.Pet(petID)
	if err != nil {
		return err
	}
	return m.removeRecord(p.GeneralRecords, petsFile, "pet record", recordID)
}

// ------------------ Pets ------------------

type PetInput struct {
	Name    string
	Breed   string
	Age     int
	OwnerID int
}

func (m *ClinicManager) Pets() []*Pet { return m.state.Pets }

func (m *ClinicManager) Pet(id int) (*Pet, error) {
	if p := FindPet(m.state.Pets, id); p != nil {
		return p, nil
	}
	return nil, notFound("pet", id)
}

func (m *ClinicManager) UnassignedPets() []*Pet {
	var out []*Pet
	for _, p := range m.state.Pets {
		if !p.HasOwner() {
			out = append(out, p)
		}
	}
	return out
}

func validatePetDetails(name, breed string, age int) error {
	return errors.Join(ValidateName(name), ValidateBreed(breed), ValidateAge(age))
}

// AddPet creates a pet, linking it to in.OwnerID unless that is NoOwner.
func (m *ClinicManager) AddPet(in PetInput) (*Pet, error) {
	if err := validatePetDetails(in.Name, in.Breed, in.Age); err != nil {
		return nil, err
	}
	var owner *Owner
	if in.OwnerID != NoOwner {
		o, err := m.Owner(in.OwnerID)
		if err != nil {
			return nil, err
		}
		owner = o
	}
	p := NewPet(m.state.petIDs.take(), in.Name, in.Breed, in.Age, in.OwnerID)
	m.state.Pets = append(m.state.Pets, p)
	touched := petsFile
	if owner != nil {
		owner.AddPetID(p.ID)
		touched |= ownersFile
	}
	m.log.Info("pet added", slog.Int("pet_id", p.ID), slog.Int("owner_id", p.OwnerID))
	return p, m.persist(touched)
}

func (m *ClinicManager) UpdatePet(id int, name, breed string, age int) error {
	p, err := m.Pet(id)
	if err != nil {
		return err
	}
	if err := validatePetDetails(name, breed, age); err != nil {
		return err
	}
	p.Name, p.Breed, p.Age = name, breed, age
	return m.persist(petsFile)
}

// ChangePetOwner moves a pet to newOwnerID. NoOwner unassigns it.
func (m *ClinicManager) ChangePetOwner(petID, newOwnerID int) error {
	p, err := m.Pet(petID)
	if err != nil {
		return err
	}
	var next *Owner
	if newOwnerID != NoOwner {
		if next, err = m.Owner(newOwnerID); err != nil {
			return err
		}
	}
	if p.OwnerID != NoOwner {
		if prev := FindOwner(m.state.Owners, p.OwnerID); prev != nil {
			prev.RemovePetID(petID)
		}
	}
	if next != nil {
		next.AddPetID(petID)
	}
	p.OwnerID = newOwnerID
	m.log.Info("pet owner changed", slog.Int("pet_id", petID), slog.Int("owner_id", newOwnerID))
	return m.persist(petsFile | ownersFile)
}

// LinkPetToOwner assigns an unassigned pet to an owner.
func (m *ClinicManager) LinkPetToOwner(petID, ownerID int) error {
	p, err := m.Pet(petID)
	if err != nil {
		return err
	}
	if p.HasOwner() {
		return fmt.Errorf("%w: pet %d belongs to owner %d", ErrPetAssigned, petID, p.OwnerID)
	}
	o, err := m.Owner(ownerID)
	if err != nil {
		return err
	}
	p.OwnerID = ownerID
	o.AddPetID(petID)
	m.log.Info("pet linked", slog.Int("pet_id", petID), slog.Int("owner_id", ownerID))
	return m.persist(petsFile | ownersFile)
}

// DeletePet removes the pet, every appointment for it and its id from every owner.
func (m *ClinicManager) DeletePet(id int) error {
	if _, err := m.Pet(id); err != nil {
		return err
	}
	m.state.Pets = removeWhere(m.state.Pets, func(p *Pet) bool { return p.ID == id })
	before := len(m.state.Appointments)
	m.state.Appointments = removeWhere(m.state.Appointments, func(a *Appointment) bool { return a.PetID == id })
	for _, o := range m.state.Owners {
		o.RemovePetID(id)
	}
	m.state.relinkAppointments()
	m.log.Info("pet deleted", slog.Int("pet_id", id), slog.Int("appointments_removed", before-len(m.state.Appointments)))
	return m.persist(petsFile | ownersFile | appointmentsFile)
}

// ------------------ Vaccinations ------------------

func (m *ClinicManager) checkVaccination(name, date, status string) (string, error) {
	st, err := NormalizeVaccinationStatus(status)
	return st, errors.Join(ValidateVaccineName(name), m.validate.ValidateDate(date, false), err)
}

func (m *ClinicManager) AddVaccination(petID int, name, date, status string) (int, error) {
	p, err := m.Pet(petID)
	if err != nil {
		return 0, err
	}
	st, err := m.checkVaccination(name, date, status)
	if err != nil {
		return 0, err
	}
	id := p.Vaccinations.Add(name, date, st)
	return id, m.persist(petsFile)
}

func (m *ClinicManager) UpdateVaccination(petID, vaccinationID int, name, date, status string) error {
	p, err := m.Pet(petID)
	if err != nil {
		return err
	}
	st, err := m.checkVaccination(name, date, status)
	if err != nil {
		return err
	}
	if !p.Vaccinations.Update(vaccinationID, name, date, st) {
		m.log.Warn("vaccination not found", slog.Int("pet_id", petID), slog.Int("id", vaccinationID))
		return notFound("vaccination", vaccinationID)
	}
	return m.persist(petsFile)
}

func (m *ClinicManager) RemoveVaccination(petID, vaccinationID int) error {
	p, err := m.Pet(petID)
	if err != nil {
		return err
	}
	if !p.Vaccinations.Remove(vaccinationID) {
		m.log.Warn("vaccination not found", slog.Int("pet_id", petID), slog.Int("id", vaccinationID))
		return notFound("vaccination", vaccinationID)
	}
	return m.persist(petsFile)
}

// ------------------ Appointments ------------------

type AppointmentInput struct {
	OwnerID int
	PetID   int
	Date    string
	Time    string
	Purpose string
}

func (m *ClinicManager) Appointments() []*Appointment { return m.state.Appointments }

func (m *ClinicManager) Appointment(id int) (*Appointment, error) {
	if a := FindAppointment(m.state.Appointments, id); a != nil {
		return a, nil
	}
	return nil, notFound("appointment", id)
}

func (m *ClinicManager) AppointmentsForPet(petID int) []*Appointment {
	var out []*Appointment
	for _, a := range m.state.Appointments {
		if a.PetID == petID {
			out = append(out, a)
		}
	}
	return out
}

func (m *ClinicManager) checkSlot(date, clock, purpose string) error {
	return errors.Join(
		m.validate.ValidateAppointmentDate(date, m.allowWeekends),
		ValidateTime(clock),
		ValidatePurpose(purpose),
	)
}

// ScheduleAppointment books a pet listed among the owner's pet ids.
func (m *ClinicManager) ScheduleAppointment(in AppointmentInput) (*Appointment, error) {
	o, err := m.Owner(in.OwnerID)
	if err != nil {
		return nil, err
	}
	p, err := m.Pet(in.PetID)
	if err != nil {
		return nil, err
	}
	if !o.HasPet(p.ID) {
		return nil, fmt.Errorf("%w: pet %d, owner %d", ErrPetNotLinked, p.ID, o.ID)
	}
	if err := m.checkSlot(in.Date, in.Time, in.Purpose); err != nil {
		return nil, err
	}
	a := &Appointment{
		ID:      m.state.appointmentIDs.take(),
		OwnerID: o.ID,
		PetID:   p.ID,
		Date:    in.Date,
		Time:    in.Time,
		Purpose: in.Purpose,
		Status:  StatusScheduled,
	}
	m.state.Appointments = append(m.state.Appointments, a)
	m.state.relinkAppointments()
	m.log.Info("appointment scheduled", slog.Int("appointment_id", a.ID), slog.Int("pet_id", a.PetID))
	return a, m.persist(appointmentsFile)
}

func (m *ClinicManager) RescheduleAppointment(id int, date, clock, purpose string) error {
	a, err := m.Appointment(id)
	if err != nil {
		return err
	}
	if err := m.checkSlot(date, clock, purpose); err != nil {
		return err
	}
	a.Date, a.Time, a.Purpose = date, clock, purpose
	return m.persist(appointmentsFile)
}

func (m *ClinicManager) SetAppointmentStatus(id int, status string) error {
	a, err := m.Appointment(id)
	if err != nil {
		return err
	}
	st, err := NormalizeAppointmentStatus(status)
	if err != nil {
		return err
	}
	a.Status = st
	return m.persist(appointmentsFile)
}

func (m *ClinicManager) DeleteAppointment(id int) error {
	if _, err := m.Appointment(id); err != nil {
		return err
	}
	m.state.Appointments = removeWhere(m.state.Appointments, func(a *Appointment) bool { return a.ID == id })
	m.state.relinkAppointments()
	return m.persist(appointmentsFile)
}

// ------------------ Users ------------------

func (m *ClinicManager) Users() []*User { return m.state.Users }

func (m *ClinicManager) User(id int) (*User, error) {
	if u := FindUser(m.state.Users, id); u != nil {
		return u, nil
	}
	return nil, notFound("user", id)
}

func (m *ClinicManager) checkUsernameFree(username string, selfID int) error {
	if u := FindUserByName(m.state.Users, username); u != nil && u.ID != selfID {
		return fmt.Errorf("%w: username %q", ErrAlreadyExists, username)
	}
	return nil
}

func (m *ClinicManager) AddUser(username, password, roleName string) (*User, error) {
	role, roleErr := ParseRole(roleName)
	if err := errors.Join(ValidateUsername(username), ValidatePassword(password), roleErr); err != nil {
		return nil, err
	}
	if err := m.checkUsernameFree(username, 0); err != nil {
		return nil, err
	}
	hash, err := m.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u := NewUser(m.state.userIDs.take(), username, hash, role)
	m.state.Users = append(m.state.Users, u)
	m.log.Info("user added", slog.Int("user_id", u.ID), slog.String("role", role.String()))
	return u, m.persist(usersFile)
}

// UserUpdate carries the fields to change. Empty fields are left as they are.
type UserUpdate struct {
	Username string
	Password string
	Role     string
}

// UpdateUser applies changes to a user. A new role replaces the user value
// with one built for that role.
func (m *ClinicManager) UpdateUser(id int, upd UserUpdate) (*User, error) {
	u, err := m.User(id)
	if err != nil {
		return nil, err
	}
	username, hash, role := u.Username, u.PasswordHash, u.Role()
	if upd.Username != "" {
		if err := ValidateUsername(upd.Username); err != nil {
			return nil, err
		}
		if err := m.checkUsernameFree(upd.Username, id); err != nil {
			return nil, err
		}
		username = upd.Username
	}
	if upd.Password != "" {
		if err := ValidatePassword(upd.Password); err != nil {
			return nil, err
		}
		if hash, err = m.hasher.Hash(upd.Password); err != nil {
			return nil, err
		}
	}
	if upd.Role != "" {
		if role, err = ParseRole(upd.Role); err != nil {
			return nil, err
		}
	}
	nu := NewUser(id, username, hash, role)
	for i, x := range m.state.Users {
		if x == u {
			m.state.Users[i] = nu
		}
	}
	m.log.Info("user updated", slog.Int("user_id", id), slog.String("role", role.String()))
	return nu, m.persist(usersFile)
}

func (m *ClinicManager) DeleteUser(id int) error {
	if _, err := m.User(id); err != nil {
		return err
	}
	m.state.Users = removeWhere(m.state.Users, func(u *User) bool { return u.ID == id })
	m.log.Info("user deleted", slog.Int("user_id", id))
	return m.persist(usersFile)
}

// Authenticate checks credentials against the loaded users.
func (m *ClinicManager) Authenticate(username, password string) (*User, error) {
	u, err := Authenticate(m.state.Users, username, password)
	if err != nil {
		m.log.Warn("login failed", slog.String("username", username))
		return nil, err
	}
	m.log.Info("login succeeded", slog.String("username", u.Username), slog.String("role", u.Role().String()))
	return u, nil
}

func removeWhere[T any](items []T, drop func(T) bool) []T {
	kept := items[:0]
	for _, it := range items {
		if !drop(it) {
			kept = append(kept, it)
		}
	}
	var zero T
	for i := len(kept); i < len(items); i++ {
		items[i] = zero
	}
	return kept
}
