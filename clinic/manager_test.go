package clinic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newManager returns a ClinicManager over an empty data directory with the
// clock fixed at 2025-06-01.
func newManager(t *testing.T) *ClinicManager {
	t.Helper()
	return NewClinicManager(DefaultPaths(t.TempDir()), WithClock(fixedClock))
}

// reload reads the manager's files back into a fresh manager.
func reload(t *testing.T, m *ClinicManager) *ClinicManager {
	t.Helper()
	return NewClinicManager(m.Paths(), WithClock(fixedClock))
}

func addOwner(t *testing.T, m *ClinicManager, name, phone, email string) *Owner {
	t.Helper()
	o, err := m.AddOwner(OwnerInput{Name: name, Address: "1 Main Street", Phone: phone, Email: email})
	if err != nil {
		t.Fatalf("AddOwner: %v", err)
	}
	return o
}

func addPet(t *testing.T, m *ClinicManager, name string, ownerID int) *Pet {
	t.Helper()
	p, err := m.AddPet(PetInput{Name: name, Breed: "Beagle", Age: 3, OwnerID: ownerID})
	if err != nil {
		t.Fatalf("AddPet: %v", err)
	}
	return p
}

func schedule(t *testing.T, m *ClinicManager, ownerID, petID int) *Appointment {
	t.Helper()
	a, err := m.ScheduleAppointment(AppointmentInput{
		OwnerID: ownerID, PetID: petID, Date: "2025-06-10", Time: "09:30", Purpose: "Check-up",
	})
	if err != nil {
		t.Fatalf("ScheduleAppointment: %v", err)
	}
	return a
}

func TestAddOwnerAndPet(t *testing.T) {
	m := newManager(t)
	o := addOwner(t, m, "Alice Smith", "07123456789", "alice@example.com")
	p := addPet(t, m, "Rex", o.ID)

	assert.Equal(t, 1, o.ID)
	assert.Equal(t, 1, p.ID)
	assert.Equal(t, []int{p.ID}, o.PetIDs)

	m2 := reload(t, m)
	o2, err := m2.Owner(o.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{p.ID}, o2.PetIDs)
	p2, err := m2.Pet(p.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, p2.OwnerID)
	assert.Equal(t, 2, m2.State().NextOwnerID())
}

func TestAddOwner_Validation(t *testing.T) {
	m := newManager(t)
	_, err := m.AddOwner(OwnerInput{Name: "Al1ce", Address: "", Phone: "123", Email: "bad"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, m.Owners())
}

func TestAddOwner_UniqueContact(t *testing.T) {
	m := newManager(t)
	addOwner(t, m, "Alice Smith", "07123456789", "alice@example.com")

	_, err := m.AddOwner(OwnerInput{Name: "Other", Address: "2 Road", Phone: "07123456789", Email: "other@example.com"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = m.AddOwner(OwnerInput{Name: "Other", Address: "2 Road", Phone: "07000000000", Email: "ALICE@example.com"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	// an owner may keep its own contact details on update
	require.NoError(t, m.UpdateOwner(1, OwnerInput{Name: "Alice Jones", Address: "3 Road", Phone: "07123456789", Email: "alice@example.com"}))
}

func TestAddPet_UnknownOwner(t *testing.T) {
	m := newManager(t)
	_, err := m.AddPet(PetInput{Name: "Rex", Breed: "Beagle", Age: 3, OwnerID: 42})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, m.Pets())
}

func TestDeletePet_Cascade(t *testing.T) {
	m := newManager(t)
	o := addOwner(t, m, "Alice Smith", "07123456789", "alice@example.com")
	rex := addPet(t, m, "Rex", o.ID)
	tom := addPet(t, m, "Tom", o.ID)
	schedule(t, m, o.ID, rex.ID)
	keep := schedule(t, m, o.ID, tom.ID)

	require.NoError(t, m.DeletePet(rex.ID))

	for _, mm := range []*ClinicManager{m, reload(t, m)} {
		_, err := mm.Pet(rex.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Empty(t, mm.AppointmentsForPet(rex.ID))
		require.Len(t, mm.Appointments(), 1)
		assert.Equal(t, keep.ID, mm.Appointments()[0].ID)
		owner, err := mm.Owner(o.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{tom.ID}, owner.PetIDs)
		assert.Len(t, owner.Appointments(), 1)
	}

	// pet ids are never reused
	assert.Equal(t, 3, addPet(t, m, "Ziggy", NoOwner).ID)
}

func TestDeleteOwner_Cascade(t *testing.T) {
	m := newManager(t)
	o := addOwner(t, m, "Alice Smith", "07123456789", "alice@example.com")
	other := addOwner(t, m, "Bob Jones", "07987654321", "bob@example.com")
	rex := addPet(t, m, "Rex", o.ID)
	fido := addPet(t, m, "Fido", other.ID)
	a := schedule(t, m, o.ID, rex.ID)

	require.NoError(t, m.DeleteOwner(o.ID))

	for _, mm := range []*ClinicManager{m, reload(t, m)} {
		_, err := mm.Owner(o.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		p, err := mm.Pet(rex.ID)
		require.NoError(t, err)
		assert.Equal(t, NoOwner, p.OwnerID)

		appt, err := mm.Appointment(a.ID)
		require.NoError(t, err)
		assert.Equal(t, NoOwner, appt.OwnerID)
		assert.Equal(t, rex.ID, appt.PetID)

		f, err := mm.Pet(fido.ID)
		require.NoError(t, err)
		assert.Equal(t, other.ID, f.OwnerID)
		assert.Len(t, mm.Pets(), 2)
	}
	assert.Equal(t, []*Pet{m.Pets()[0]}, m.UnassignedPets())
}

func TestLinkPetToOwner(t *testing.T) {
	m := newManager(t)
	o := addOwner(t, m, "Alice Smith", "07123456789", "alice@example.com")
	stray := addPet(t, m, "Stray", NoOwner)

	require.NoError(t, m.LinkPetToOwner(stray.ID, o.ID))
	assert.Equal(t, o.ID, stray.OwnerID)
	assert.Equal(t, []int{stray.ID}, o.PetIDs)

	err := m.LinkPetToOwner(stray.ID, o.ID)
	assert.ErrorIs(t, err, ErrPetAssigned)

	m2 := reload(t, m)
	p, err := m2.Pet(stray.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, p.OwnerID)
}

func TestChangePetOwner(t *testing.T) {
	m := newManager(t)
	alice := addOwner(t, m, "Alice Smith", "07123456789", "alice@example.com")
	bob := addOwner(t, m, "Bob Jones", "07987654321", "bob@example.com")
	rex := addPet(t, m, "Rex", alice.ID)

	require.NoError(t, m.ChangePetOwner(rex.ID, bob.ID))
	assert.Nil(t, alice.PetIDs)
	assert.Equal(t, []int{rex.ID}, bob.PetIDs)
	assert.Equal(t, bob.ID, rex.OwnerID)

	require.NoError(t, m.ChangePetOwner(rex.ID, NoOwner))
	assert.Nil(t, bob.PetIDs)
	assert.False(t, rex.HasOwner())

	assert.ErrorIs(t, m.ChangePetOwner(rex.ID, 99), ErrNotFound)
}

func TestScheduleAppointment(t *testing.T) {
	m := newManager(t)
	alice := addOwner(t, m, "Alice Smith", "07123456789", "alice@example.com")
	bob := addOwner(t, m, "Bob Jones", "07987654321", "bob@example.com")
	rex := addPet(t, m, "Rex", alice.ID)

	_, err := m.ScheduleAppointment(AppointmentInput{OwnerID: bob.ID, PetID: rex.ID, Date: "2025-06-10", Time: "09:30", Purpose: "x"})
	assert.ErrorIs(t, err, ErrPetNotLinked)

	_, err = m.ScheduleAppointment(AppointmentInput{OwnerID: alice.ID, PetID: rex.ID, Date: "2025-06-08", Time: "09:30", Purpose: "x"})
	assert.ErrorIs(t, err, ErrValidation)

	a := schedule(t, m, alice.ID, rex.ID)
	assert.Equal(t, StatusScheduled, a.Status)
	assert.Equal(t, []*Appointment{a}, alice.Appointments())

	require.NoError(t, m.SetAppointmentStatus(a.ID, "Completed"))
	require.NoError(t, m.RescheduleAppointment(a.ID, "2025-06-11", "14:00", "Follow up, bloods"))

	m2 := reload(t, m)
	got, err := m2.Appointment(a.ID)
	require.NoError(t, err)
	assert.Equal(t, Appointment{ID: a.ID, OwnerID: alice.ID, PetID: rex.ID, Date: "2025-06-11", Time: "14:00", Purpose: "Follow up, bloods", Status: StatusCompleted}, *got)

	require.NoError(t, m.DeleteAppointment(a.ID))
	assert.Empty(t, alice.Appointments())
	assert.ErrorIs(t, m.DeleteAppointment(a.ID), ErrNotFound)
}

func TestScheduleAppointment_FollowsOwnerPetList(t *testing.T) {
	dir := t.TempDir()
	paths := DefaultPaths(dir)
	writeFixture(t, paths.Owners, ownersHeader+"\n1,Alice Smith,1 Main Street,07123456789,alice@example.com,2,\n")
	writeFixture(t, paths.Pets, petsHeader+"\n2,Rex,Labrador,3,-1,none,,,\n3,Tom,Tabby,2,1,none,,,\n")
	m := NewClinicManager(paths, WithClock(fixedClock))

	pets, err := m.PetsOf(1)
	require.NoError(t, err)
	require.Len(t, pets, 1)
	assert.Equal(t, 2, pets[0].ID)

	a, err := m.ScheduleAppointment(AppointmentInput{OwnerID: 1, PetID: 2, Date: "2025-06-10", Time: "09:30", Purpose: "Check-up"})
	require.NoError(t, err)
	assert.Equal(t, 2, a.PetID)

	// pet 3 names owner 1, but the owner does not list it
	_, err = m.ScheduleAppointment(AppointmentInput{OwnerID: 1, PetID: 3, Date: "2025-06-10", Time: "10:30", Purpose: "Check-up"})
	assert.ErrorIs(t, err, ErrPetNotLinked)
}

func TestWeekendAppointmentsOption(t *testing.T) {
	m := NewClinicManager(DefaultPaths(t.TempDir()), WithClock(fixedClock), WithWeekendAppointments(true))
	o := addOwner(t, m, "Alice Smith", "07123456789", "alice@example.com")
	p := addPet(t, m, "Rex", o.ID)
	_, err := m.ScheduleAppointment(AppointmentInput{OwnerID: o.ID, PetID: p.ID, Date: "2025-06-07", Time: "10:00", Purpose: "Saturday clinic"})
	assert.NoError(t, err)
}

func TestRecordsLifecycle(t *testing.T) {
	m := newManager(t)
	o := addOwner(t, m, "Alice Smith", "07123456789", "alice@example.com")
	p := addPet(t, m, "Rex", o.ID)

	id, err := m.AddMedicalRecord(p.ID, "2025-05-01", "Ear infection; drops | 7 days")
	require.NoError(t, err)
	assert.Equal(t, 1, id)
	_, err = m.AddMedicalRecord(p.ID, "2025-07-01", "future")
	assert.ErrorIs(t, err, ErrValidation)

	gid, err := m.AddPetRecord(p.ID, "2025-05-02", "Groomed")
	require.NoError(t, err)
	assert.Equal(t, 1, gid)

	oid, err := m.AddOwnerRecord(o.ID, "2025-05-03", "Prefers morning slots, no calls")
	require.NoError(t, err)

	require.NoError(t, m.UpdateMedicalRecord(p.ID, id, "2025-05-02", "Ear infection cleared"))
	assert.ErrorIs(t, m.UpdateMedicalRecord(p.ID, 9, "2025-05-02", "x"), ErrNotFound)
	assert.ErrorIs(t, m.RemovePetRecord(p.ID, 9), ErrNotFound)

	m2 := reload(t, m)
	p2, err := m2.Pet(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ear infection cleared", mustRecord(t, p2.MedicalHistory, id).Details)
	assert.Equal(t, "Groomed", mustRecord(t, p2.GeneralRecords, gid).Details)
	o2, err := m2.Owner(o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Prefers morning slots, no calls", mustRecord(t, o2.Records, oid).Details)

	require.NoError(t, m.RemoveMedicalRecord(p.ID, id))
	require.NoError(t, m.RemoveOwnerRecord(o.ID, oid))
	// removed ids are not handed out again
	id, err = m.AddMedicalRecord(p.ID, "2025-05-04", "Booster due")
	require.NoError(t, err)
	assert.Equal(t, 2, id)
}

func TestRecordText_SurvivesReload(t *testing.T) {
	m := newManager(t)
	o := addOwner(t, m, "Alice Smith", "07123456789", "alice@example.com")
	p := addPet(t, m, "Rex", o.ID)

	details := "see [pipe] and [semicolon] notes, [comma] too | done; ok"
	mid, err := m.AddMedicalRecord(p.ID, "2025-05-01", details)
	require.NoError(t, err)
	gid, err := m.AddPetRecord(p.ID, "2025-05-01", "[lbracket]")
	require.NoError(t, err)
	oid, err := m.AddOwnerRecord(o.ID, "2025-05-01", details)
	require.NoError(t, err)
	vid, err := m.AddVaccination(p.ID, "Lepto [pipe] L4", "2025-05-01", "completed")
	require.NoError(t, err)

	m2 := reload(t, m)
	p2, err := m2.Pet(p.ID)
	require.NoError(t, err)
	assert.Equal(t, details, mustRecord(t, p2.MedicalHistory, mid).Details)
	assert.Equal(t, "[lbracket]", mustRecord(t, p2.GeneralRecords, gid).Details)
	v, ok := p2.Vaccinations.Get(vid)
	require.True(t, ok)
	assert.Equal(t, "Lepto [pipe] L4", v.Name)
	o2, err := m2.Owner(o.ID)
	require.NoError(t, err)
	assert.Equal(t, details, mustRecord(t, o2.Records, oid).Details)
}

func TestVaccinationsLifecycle(t *testing.T) {
	m := newManager(t)
	p := addPet(t, m, "Rex", NoOwner)

	id, err := m.AddVaccination(p.ID, "Rabies", "2025-05-01", "Completed")
	require.NoError(t, err)
	assert.Equal(t, VaccinationCompleted, p.VaccinationOverview())

	_, err = m.AddVaccination(p.ID, "Lepto", "2025-05-01", "overdue")
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, m.UpdateVaccination(p.ID, id, "Rabies", "2025-05-01", "booster required"))
	assert.Equal(t, VaccinationPending, p.VaccinationOverview())

	m2 := reload(t, m)
	p2, err := m2.Pet(p.ID)
	require.NoError(t, err)
	assert.Equal(t, VaccinationPending, p2.VaccinationStatus)

	require.NoError(t, m.RemoveVaccination(p.ID, id))
	assert.Equal(t, VaccinationNone, p.VaccinationOverview())
	assert.ErrorIs(t, m.RemoveVaccination(p.ID, id), ErrNotFound)
}

func TestUsers(t *testing.T) {
	m := newManager(t)
	admin, err := m.AddUser("admin", "Adm1n!pass", "Admin")
	require.NoError(t, err)

	_, err = m.AddUser("ADMIN", "Adm1n!pass", "Staff")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = m.AddUser("clerk", "Cl3rk!pass", "Janitor")
	assert.ErrorIs(t, err, ErrUnknownRole)

	clerk, err := m.AddUser("clerk", "Cl3rk!pass", "staff")
	require.NoError(t, err)
	assert.Equal(t, RoleStaff, clerk.Role())

	u, err := m.Authenticate("Clerk", "Cl3rk!pass")
	require.NoError(t, err)
	assert.Equal(t, clerk.ID, u.ID)

	promoted, err := m.UpdateUser(clerk.ID, UserUpdate{Role: "Veterinarian"})
	require.NoError(t, err)
	assert.Equal(t, RoleVeterinarian, promoted.Role())
	assert.True(t, promoted.Can(ManageMedicalRecords))
	assert.False(t, promoted.Can(ManageAppointments))

	_, err = m.UpdateUser(clerk.ID, UserUpdate{Username: "admin"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	m2 := reload(t, m)
	u, err = m2.Authenticate("clerk", "Cl3rk!pass")
	require.NoError(t, err)
	assert.Equal(t, RoleVeterinarian, u.Role())

	require.NoError(t, m.DeleteUser(admin.ID))
	_, err = m.Authenticate("admin", "Adm1n!pass")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestBcryptHasherOption(t *testing.T) {
	m := NewClinicManager(DefaultPaths(t.TempDir()), WithHasher(BcryptHasher{Cost: 4}))
	u, err := m.AddUser("vet", "V3t!secret", "Veterinarian")
	require.NoError(t, err)
	assert.Contains(t, u.PasswordHash, "$2")

	_, err = reload(t, m).Authenticate("vet", "V3t!secret")
	assert.NoError(t, err)
}

func TestReplaceState(t *testing.T) {
	m := newManager(t)
	s := &State{Owners: []*Owner{NewOwner(5, "Ann Lee", "1 Road", "07111111111", "ann@example.com")}}

	require.NoError(t, m.ReplaceState(s))
	assert.Equal(t, 6, m.State().NextOwnerID())
	assert.Len(t, reload(t, m).Owners(), 1)
}
