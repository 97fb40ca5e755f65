package main

import (
	"fmt"
	"strings"

	"vetsys/clinic"
)

func printAppointments(mgr *clinic.ClinicManager, appts []*clinic.Appointment, empty string) {
	if len(appts) == 0 {
		fmt.Println(empty)
		return
	}
	fmt.Printf("%-6s %-20s %-15s %-12s %-6s %-30s %s\n", "ID", "Owner", "Pet", "Date", "Time", "Purpose", "Status")
	fmt.Println(strings.Repeat("-", 110))
	for _, a := range appts {
		petName := "not found"
		if p, err := mgr.Pet(a.PetID); err == nil {
			petName = p.Name
		}
		fmt.Printf("%-6d %-20s %-15s %-12s %-6s %-30s %s\n",
			a.ID,
			truncateString(ownerName(mgr, a.OwnerID), 20),
			truncateString(petName, 15),
			a.Date, a.Time,
			truncateString(a.Purpose, 30),
			a.Status)
	}
}

func handleListAppointments(s *session) {
	printAppointments(s.mgr, s.mgr.Appointments(), "No appointments.")
}

func handleViewAppointment(s *session) {
	id, ok := s.promptInt("Appointment ID: ")
	if !ok {
		return
	}
	a, err := s.mgr.Appointment(id)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	printAppointments(s.mgr, []*clinic.Appointment{a}, "")
}

func handleOwnerAppointments(s *session) {
	id, ok := s.promptInt("Owner ID: ")
	if !ok {
		return
	}
	o, err := s.mgr.Owner(id)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	printAppointments(s.mgr, o.Appointments(), fmt.Sprintf("No appointments for %s.", o.Name))
}

func handlePetAppointments(s *session) {
	id, ok := s.promptInt("Pet ID: ")
	if !ok {
		return
	}
	printAppointments(s.mgr, s.mgr.AppointmentsForPet(id), fmt.Sprintf("No appointments for pet %d.", id))
}

func handleAddAppointment(s *session) {
	ownerID, ok := s.promptInt("Owner ID: ")
	if !ok {
		return
	}
	pets, err := s.mgr.PetsOf(ownerID)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(pets) == 0 {
		fmt.Println("This owner has no pets to book.")
		return
	}
	for _, p := range pets {
		fmt.Printf("  %-6d %s\n", p.ID, p.Name)
	}
	petID, ok := s.promptInt("Pet ID: ")
	if !ok {
		return
	}
	date, ok := s.prompt("Date (YYYY-MM-DD): ")
	if !ok {
		return
	}
	clock, ok := s.prompt("Time (HH:MM): ")
	if !ok {
		return
	}
	purpose, ok := s.prompt("Purpose: ")
	if !ok {
		return
	}
	a, err := s.mgr.ScheduleAppointment(clinic.AppointmentInput{
		OwnerID: ownerID, PetID: petID, Date: date, Time: clock, Purpose: purpose,
	})
	if err != nil {
		fmt.Printf("Error adding appointment: %v\n", err)
		return
	}
	fmt.Printf("Appointment %d booked for %s at %s\n", a.ID, a.Date, a.Time)
}

func handleRescheduleAppointment(s *session) {
	id, ok := s.promptInt("Appointment ID: ")
	if !ok {
		return
	}
	a, err := s.mgr.Appointment(id)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	date, ok := s.promptOptional("Date", a.Date)
	if !ok {
		return
	}
	clock, ok := s.promptOptional("Time", a.Time)
	if !ok {
		return
	}
	purpose, ok := s.promptOptional("Purpose", a.Purpose)
	if !ok {
		return
	}
	if err := s.mgr.RescheduleAppointment(id, date, clock, purpose); err != nil {
		fmt.Printf("Error updating appointment: %v\n", err)
		return
	}
	fmt.Printf("Appointment %d updated.\n", id)
}

func handleAppointmentStatus(s *session) {
	id, ok := s.promptInt("Appointment ID: ")
	if !ok {
		return
	}
	status, ok := s.prompt("Status (scheduled, completed, cancelled): ")
	if !ok {
		return
	}
	if err := s.mgr.SetAppointmentStatus(id, status); err != nil {
		fmt.Printf("Error updating status: %v\n", err)
		return
	}
	fmt.Printf("Appointment %d is now %s.\n", id, strings.ToLower(status))
}

func handleDeleteAppointment(s *session) {
	id, ok := s.promptInt("Appointment ID: ")
	if !ok {
		return
	}
	if !s.confirm(fmt.Sprintf("Delete appointment %d?", id)) {
		fmt.Println("Cancelled.")
		return
	}
	if err := s.mgr.DeleteAppointment(id); err != nil {
		fmt.Printf("Error deleting appointment: %v\n", err)
		return
	}
	fmt.Printf("Appointment %d deleted.\n", id)
}
