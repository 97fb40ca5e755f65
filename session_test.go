package main

import (
	"bufio"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetsys/clinic"
	"vetsys/logging"
)

func newTestSession(t *testing.T, role clinic.Role, input string) *session {
	t.Helper()
	clock := func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	mgr := clinic.NewClinicManager(clinic.DefaultPaths(t.TempDir()), clinic.WithClock(clock))
	return &session{
		sc:   bufio.NewScanner(strings.NewReader(input)),
		mgr:  mgr,
		user: clinic.NewUser(1, "tester", "", role),
		log:  logging.Discard(),
	}
}

func TestCommandsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range commands {
		assert.False(t, seen[c.name], "duplicate command %q", c.name)
		seen[c.name] = true
		assert.NotNil(t, c.allowed, c.name)
		assert.NotNil(t, c.run, c.name)
	}
}

func TestCommandGates(t *testing.T) {
	tests := []struct {
		command string
		allowed map[clinic.Role]bool
	}{
		{"add medical record", map[clinic.Role]bool{clinic.RoleAdmin: true, clinic.RoleVeterinarian: true}},
		{"add appointment", map[clinic.Role]bool{clinic.RoleAdmin: true, clinic.RoleStaff: true}},
		{"delete pet", map[clinic.Role]bool{clinic.RoleAdmin: true}},
		{"delete owner", map[clinic.Role]bool{clinic.RoleAdmin: true}},
		{"update pet", map[clinic.Role]bool{clinic.RoleAdmin: true, clinic.RoleVeterinarian: true, clinic.RoleStaff: true}},
		{"link pet", map[clinic.Role]bool{clinic.RoleAdmin: true, clinic.RoleStaff: true}},
		{"add user", map[clinic.Role]bool{clinic.RoleAdmin: true}},
		{"list pets", map[clinic.Role]bool{clinic.RoleAdmin: true, clinic.RoleVeterinarian: true, clinic.RoleStaff: true}},
	}
	for _, tt := range tests {
		cmd := findCommand(tt.command)
		require.NotNil(t, cmd, tt.command)
		for _, role := range clinic.Roles {
			u := clinic.NewUser(1, "u", "", role)
			assert.Equal(t, tt.allowed[role], cmd.allowed(u), "%s as %s", tt.command, role)
		}
	}
}

func TestSessionAddOwner(t *testing.T) {
	s := newTestSession(t, clinic.RoleStaff,
		"add owner\nAlice Smith\n12 High St, Leeds\n07123456789\nalice@example.com\nlogout\n")

	assert.True(t, s.run())
	owners := s.mgr.Owners()
	require.Len(t, owners, 1)
	assert.Equal(t, "12 High St, Leeds", owners[0].Address)
}

// seedPetWithAppointment gives s one owner with one pet and one appointment.
func seedPetWithAppointment(t *testing.T, s *session) (*clinic.Owner, *clinic.Pet, *clinic.Appointment) {
	t.Helper()
	o, err := s.mgr.AddOwner(clinic.OwnerInput{Name: "Alice Smith", Address: "1 Main Street", Phone: "07123456789", Email: "alice@example.com"})
	require.NoError(t, err)
	p, err := s.mgr.AddPet(clinic.PetInput{Name: "Rex", Breed: "Beagle", Age: 3, OwnerID: o.ID})
	require.NoError(t, err)
	a, err := s.mgr.ScheduleAppointment(clinic.AppointmentInput{OwnerID: o.ID, PetID: p.ID, Date: "2025-06-10", Time: "09:30", Purpose: "Check-up"})
	require.NoError(t, err)
	return o, p, a
}

func TestSessionDeletePet(t *testing.T) {
	s := newTestSession(t, clinic.RoleAdmin, "delete pet\n1\ny\nlogout\n")
	o, p, _ := seedPetWithAppointment(t, s)

	assert.True(t, s.run())

	reloaded := clinic.NewClinicManager(s.mgr.Paths())
	assert.Empty(t, reloaded.Pets())
	assert.Empty(t, reloaded.Appointments())
	owner, err := reloaded.Owner(o.ID)
	require.NoError(t, err)
	assert.NotContains(t, owner.PetIDs, p.ID)
}

func TestSessionDeletePetCancelled(t *testing.T) {
	s := newTestSession(t, clinic.RoleAdmin, "delete pet\n1\nn\nexit\n")
	seedPetWithAppointment(t, s)

	assert.False(t, s.run())
	assert.Len(t, s.mgr.Pets(), 1)
	assert.Len(t, s.mgr.Appointments(), 1)
}

func TestSessionDeleteOwner(t *testing.T) {
	s := newTestSession(t, clinic.RoleAdmin, "delete owner\n1\ny\nlogout\n")
	_, p, a := seedPetWithAppointment(t, s)

	assert.True(t, s.run())

	reloaded := clinic.NewClinicManager(s.mgr.Paths())
	assert.Empty(t, reloaded.Owners())
	pet, err := reloaded.Pet(p.ID)
	require.NoError(t, err)
	assert.Equal(t, clinic.NoOwner, pet.OwnerID)
	appt, err := reloaded.Appointment(a.ID)
	require.NoError(t, err)
	assert.Equal(t, clinic.NoOwner, appt.OwnerID)
}

func TestSessionDeleteOwnerDeniedForStaff(t *testing.T) {
	s := newTestSession(t, clinic.RoleStaff, "delete owner\n1\ny\nlogout\n")
	seedPetWithAppointment(t, s)

	assert.True(t, s.run())
	assert.Len(t, s.mgr.Owners(), 1)
}

func TestSessionDeniedCommand(t *testing.T) {
	s := newTestSession(t, clinic.RoleVeterinarian,
		"add owner\nAlice Smith\n12 High St\n07123456789\nalice@example.com\nexit\n")

	// the denied command leaves its answers to be read as unknown commands
	assert.False(t, s.run())
	assert.Empty(t, s.mgr.Owners())
}

func TestSessionEOFEndsProgram(t *testing.T) {
	s := newTestSession(t, clinic.RoleAdmin, "whoami\n")
	assert.False(t, s.run())
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcdefg...", truncateString("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncateString("abcdef", 2))
}
