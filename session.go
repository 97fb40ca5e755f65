package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"vetsys/clinic"
)

type session struct {
	sc   *bufio.Scanner
	mgr  *clinic.ClinicManager
	user *clinic.User
	log  *slog.Logger
}

type command struct {
	name    string
	group   string
	allowed func(*clinic.User) bool
	run     func(*session)
}

func anyone(*clinic.User) bool { return true }

func can(c clinic.Capability) func(*clinic.User) bool {
	return func(u *clinic.User) bool { return u.Can(c) }
}

var commands = []command{
	{"add pet", "Pets", anyone, handleAddPet},
	{"list pets", "Pets", anyone, handleListPets},
	{"view pet", "Pets", anyone, handleViewPet},
	{"update pet", "Pets", (*clinic.User).CanUpdatePet, handleUpdatePet},
	{"change owner", "Pets", (*clinic.User).CanUpdatePet, handleChangeOwner},
	{"unassigned pets", "Pets", anyone, handleUnassignedPets},
	{"link pet", "Pets", (*clinic.User).CanLinkPet, handleLinkPet},
	{"delete pet", "Pets", can(clinic.DeletePet), handleDeletePet},

	{"add medical record", "Medical records", can(clinic.ManageMedicalRecords), handleAddMedicalRecord},
	{"update medical record", "Medical records", can(clinic.ManageMedicalRecords), handleUpdateMedicalRecord},
	{"remove medical record", "Medical records", can(clinic.ManageMedicalRecords), handleRemoveMedicalRecord},

	{"add pet record", "General pet records", can(clinic.ManageGeneralPetRecords), handleAddPetRecord},
	{"update pet record", "General pet records", can(clinic.ManageGeneralPetRecords), handleUpdatePetRecord},
	{"remove pet record", "General pet records", can(clinic.ManageGeneralPetRecords), handleRemovePetRecord},

	{"add vaccination", "Vaccinations", can(clinic.ManageVaccinations), handleAddVaccination},
	{"update vaccination", "Vaccinations", can(clinic.ManageVaccinations), handleUpdateVaccination},
	{"remove vaccination", "Vaccinations", can(clinic.ManageVaccinations), handleRemoveVaccination},

	{"add owner", "Owners", can(clinic.ManageOwnerRecords), handleAddOwner},
	{"list owners", "Owners", anyone, handleListOwners},
	{"view owner", "Owners", anyone, handleViewOwner},
	{"update owner", "Owners", can(clinic.ManageOwnerRecords), handleUpdateOwner},
	{"delete owner", "Owners", can(clinic.DeleteOwner), handleDeleteOwner},
	{"owner pets", "Owners", anyone, handleOwnerPets},
	{"add owner record", "Owners", can(clinic.ManageOwnerRecords), handleAddOwnerRecord},
	{"update owner record", "Owners", can(clinic.ManageOwnerRecords), handleUpdateOwnerRecord},
	{"remove owner record", "Owners", can(clinic.ManageOwnerRecords), handleRemoveOwnerRecord},

	{"list appointments", "Appointments", anyone, handleListAppointments},
	{"view appointment", "Appointments", anyone, handleViewAppointment},
	{"owner appointments", "Appointments", anyone, handleOwnerAppointments},
	{"pet appointments", "Appointments", anyone, handlePetAppointments},
	{"add appointment", "Appointments", can(clinic.ManageAppointments), handleAddAppointment},
	{"reschedule appointment", "Appointments", can(clinic.ManageAppointments), handleRescheduleAppointment},
	{"appointment status", "Appointments", can(clinic.ManageAppointments), handleAppointmentStatus},
	{"delete appointment", "Appointments", can(clinic.DeletePet), handleDeleteAppointment},

	{"list users", "Users", can(clinic.ManageUsers), handleListUsers},
	{"add user", "Users", can(clinic.ManageUsers), handleAddUser},
	{"update user", "Users", can(clinic.ManageUsers), handleUpdateUser},
	{"delete user", "Users", can(clinic.ManageUsers), handleDeleteUser},
}

func findCommand(name string) *command {
	for i := range commands {
		if commands[i].name == name {
			return &commands[i]
		}
	}
	return nil
}

// run reads commands until logout or exit. It reports false on exit.
func (s *session) run() bool {
	s.printHelp()
	for {
		fmt.Print("\n> ")
		if !s.sc.Scan() {
			return false
		}
		name := strings.ToLower(strings.Join(strings.Fields(s.sc.Text()), " "))

		switch name {
		case "":
			continue
		case "help":
			s.printHelp()
			continue
		case "whoami":
			fmt.Printf("%s (%s)\n", s.user.Username, s.user.Role())
			continue
		case "logout":
			fmt.Println("Logged out.")
			s.log.Info("logout")
			return true
		case "exit":
			s.log.Info("exit")
			return false
		}

		cmd := findCommand(name)
		if cmd == nil {
			fmt.Println("Unknown command. Type 'help' to see the available commands.")
			continue
		}
		if !cmd.allowed(s.user) {
			fmt.Printf("Access denied: %s cannot use '%s'.\n", s.user.Role(), cmd.name)
			s.log.Warn("command denied", slog.String("command", cmd.name))
			continue
		}
		s.log.Debug("command", slog.String("command", cmd.name))
		cmd.run(s)
	}
}

func (s *session) printHelp() {
	fmt.Println("Available commands:")
	group := ""
	var line []string
	flush := func() {
		if group != "" && len(line) > 0 {
			fmt.Printf("  %s: %s\n", group, strings.Join(line, ", "))
		}
		line = nil
	}
	for _, c := range commands {
		if c.group != group {
			flush()
			group = c.group
		}
		if c.allowed(s.user) {
			line = append(line, c.name)
		}
	}
	flush()
	fmt.Println("  System: help, whoami, logout, exit")
}

// ------------------ Prompt helpers ------------------

func (s *session) prompt(label string) (string, bool) {
	fmt.Print(label)
	if !s.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.sc.Text()), true
}

func (s *session) promptInt(label string) (int, bool) {
	text, ok := s.prompt(label)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		fmt.Printf("Invalid number: %s\n", text)
		return 0, false
	}
	return n, true
}

// promptOptional returns current when the answer is empty.
func (s *session) promptOptional(label, current string) (string, bool) {
	text, ok := s.prompt(fmt.Sprintf("%s [%s]: ", label, current))
	if !ok {
		return "", false
	}
	if text == "" {
		return current, true
	}
	return text, true
}

func (s *session) confirm(question string) bool {
	text, ok := s.prompt(question + " (y/n): ")
	return ok && strings.EqualFold(text, "y")
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func ownerName(mgr *clinic.ClinicManager, ownerID int) string {
	if ownerID == clinic.NoOwner {
		return "None"
	}
	if o, err := mgr.Owner(ownerID); err == nil {
		return o.Name
	}
	return "Unknown"
}

func printRecords(title string, entries []clinic.RecordEntry) {
	if len(entries) == 0 {
		fmt.Printf("No %s.\n", strings.ToLower(title))
		return
	}
	fmt.Printf("\n--- %s ---\n", title)
	fmt.Printf("%-8s %-12s %s\n", "Rec ID", "Date", "Details")
	fmt.Println(strings.Repeat("-", 70))
	for _, e := range entries {
		fmt.Printf("%-8d %-12s %s\n", e.ID, e.Date, truncateString(e.Details, 48))
	}
}
