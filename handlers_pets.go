package main

import (
	"fmt"
	"strconv"
	"strings"

	"vetsys/clinic"
)

func handleAddPet(s *session) {
	name, ok := s.prompt("Name: ")
	if !ok {
		return
	}
	breed, ok := s.prompt("Breed: ")
	if !ok {
		return
	}
	age, ok := s.promptInt("Age: ")
	if !ok {
		return
	}
	ownerText, ok := s.prompt("Owner ID (Enter for none): ")
	if !ok {
		return
	}
	ownerID := clinic.NoOwner
	if ownerText != "" {
		n, err := strconv.Atoi(ownerText)
		if err != nil {
			fmt.Printf("Invalid owner ID: %s\n", ownerText)
			return
		}
		ownerID = n
	}

	p, err := s.mgr.AddPet(clinic.PetInput{Name: name, Breed: breed, Age: age, OwnerID: ownerID})
	if err != nil {
		fmt.Printf("Error adding pet: %v\n", err)
		return
	}
	fmt.Printf("Added pet '%s' with ID %d\n", p.Name, p.ID)
}

func handleListPets(s *session) {
	printPets(s.mgr, s.mgr.Pets(), "No pets registered.")
}

func handleUnassignedPets(s *session) {
	printPets(s.mgr, s.mgr.UnassignedPets(), "No unassigned pets.")
}

func printPets(mgr *clinic.ClinicManager, pets []*clinic.Pet, empty string) {
	if len(pets) == 0 {
		fmt.Println(empty)
		return
	}
	fmt.Printf("%-7s %-20s %-20s %-5s %-20s %s\n", "Pet ID", "Name", "Breed", "Age", "Owner", "Vaccinations")
	fmt.Println(strings.Repeat("-", 90))
	for _, p := range pets {
		fmt.Printf("%-7d %-20s %-20s %-5d %-20s %s\n",
			p.ID,
			truncateString(p.Name, 20),
			truncateString(p.Breed, 20),
			p.Age,
			truncateString(ownerName(mgr, p.OwnerID), 20),
			p.VaccinationOverview())
	}
}

func handleViewPet(s *session) {
	id, ok := s.promptInt("Pet ID: ")
	if !ok {
		return
	}
	p, err := s.mgr.Pet(id)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("\nPet %d: %s\n", p.ID, p.Name)
	fmt.Printf("Breed : %s\n", p.Breed)
	fmt.Printf("Age   : %d\n", p.Age)
	switch {
	case !p.HasOwner():
		fmt.Println("Owner : none linked")
	default:
		if o, err := s.mgr.Owner(p.OwnerID); err == nil {
			fmt.Printf("Owner : %s (ID: %d)\n", o.Name, o.ID)
		} else {
			fmt.Printf("Owner : Unknown (ID %d not found)\n", p.OwnerID)
		}
	}
	fmt.Printf("Vaccination status: %s\n", p.VaccinationOverview())

	if vs := p.Vaccinations.All(); len(vs) > 0 {
		fmt.Println("\n--- Vaccinations ---")
		fmt.Printf("%-8s %-25s %-12s %s\n", "ID", "Name", "Date", "Status")
		fmt.Println(strings.Repeat("-", 65))
		for _, v := range vs {
			fmt.Printf("%-8d %-25s %-12s %s\n", v.ID, truncateString(v.Name, 25), v.Date, v.Status)
		}
	} else {
		fmt.Println("No vaccinations.")
	}
	printRecords("Medical history", p.MedicalHistory.All())
	printRecords("General records", p.GeneralRecords.All())
}

func handleUpdatePet(s *session) {
	id, ok := s.promptInt("Pet ID: ")
	if !ok {
		return
	}
	p, err := s.mgr.Pet(id)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	name, ok := s.promptOptional("Name", p.Name)
	if !ok {
		return
	}
	breed, ok := s.promptOptional("Breed", p.Breed)
	if !ok {
		return
	}
	ageText, ok := s.promptOptional("Age", fmt.Sprint(p.Age))
	if !ok {
		return
	}
	age, err := strconv.Atoi(ageText)
	if err != nil {
		fmt.Printf("Invalid age: %s\n", ageText)
		return
	}
	if err := s.mgr.UpdatePet(id, name, breed, age); err != nil {
		fmt.Printf("Error updating pet: %v\n", err)
		return
	}
	fmt.Printf("Pet %d updated.\n", id)
}

func handleChangeOwner(s *session) {
	petID, ok := s.promptInt("Pet ID: ")
	if !ok {
		return
	}
	ownerID, ok := s.promptInt("New owner ID (-1 to unassign): ")
	if !ok {
		return
	}
	if err := s.mgr.ChangePetOwner(petID, ownerID); err != nil {
		fmt.Printf("Error changing owner: %v\n", err)
		return
	}
	fmt.Printf("Pet %d now belongs to %s.\n", petID, ownerName(s.mgr, ownerID))
}

func handleLinkPet(s *session) {
	unassigned := s.mgr.UnassignedPets()
	if len(unassigned) == 0 {
		fmt.Println("No unassigned pets.")
		return
	}
	printPets(s.mgr, unassigned, "")
	petID, ok := s.promptInt("Pet ID: ")
	if !ok {
		return
	}
	ownerID, ok := s.promptInt("Owner ID: ")
	if !ok {
		return
	}
	if err := s.mgr.LinkPetToOwner(petID, ownerID); err != nil {
		fmt.Printf("Error linking pet: %v\n", err)
		return
	}
	fmt.Printf("Pet %d linked to %s.\n", petID, ownerName(s.mgr, ownerID))
}

func handleDeletePet(s *session) {
	id, ok := s.promptInt("Pet ID: ")
	if !ok {
		return
	}
	p, err := s.mgr.Pet(id)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	n := len(s.mgr.AppointmentsForPet(id))
	if !s.confirm(fmt.Sprintf("Delete '%s' and %d appointment(s)?", p.Name, n)) {
		fmt.Println("Cancelled.")
		return
	}
	if err := s.mgr.DeletePet(id); err != nil {
		fmt.Printf("Error deleting pet: %v\n", err)
		return
	}
	fmt.Printf("Pet %d deleted.\n", id)
}

// ------------------ Pet records ------------------

type recordOps struct {
	label  string
	add    func(petID int, date, details string) (int, error)
	update func(petID, recID int, date, details string) error
	remove func(petID, recID int) error
}

func medicalOps(m *clinic.ClinicManager) recordOps {
	return recordOps{"medical record", m.AddMedicalRecord, m.UpdateMedicalRecord, m.RemoveMedicalRecord}
}

func petRecordOps(m *clinic.ClinicManager) recordOps {
	return recordOps{"pet record", m.AddPetRecord, m.UpdatePetRecord, m.RemovePetRecord}
}

func ownerRecordOps(m *clinic.ClinicManager) recordOps {
	return recordOps{"owner record", m.AddOwnerRecord, m.UpdateOwnerRecord, m.RemoveOwnerRecord}
}

func (s *session) addRecord(ops recordOps, idLabel string) {
	id, ok := s.promptInt(idLabel)
	if !ok {
		return
	}
	date, ok := s.prompt("Date (YYYY-MM-DD): ")
	if !ok {
		return
	}
	details, ok := s.prompt("Details: ")
	if !ok {
		return
	}
	recID, err := ops.add(id, date, details)
	if err != nil {
		fmt.Printf("Error adding %s: %v\n", ops.label, err)
		return
	}
	fmt.Printf("Added %s with ID %d\n", ops.label, recID)
}

func (s *session) updateRecord(ops recordOps, idLabel string) {
	id, ok := s.promptInt(idLabel)
	if !ok {
		return
	}
	recID, ok := s.promptInt("Record ID: ")
	if !ok {
		return
	}
	date, ok := s.prompt("New date (YYYY-MM-DD): ")
	if !ok {
		return
	}
	details, ok := s.prompt("New details: ")
	if !ok {
		return
	}
	if err := ops.update(id, recID, date, details); err != nil {
		fmt.Printf("Error updating %s: %v\n", ops.label, err)
		return
	}
	fmt.Printf("Updated %s %d\n", ops.label, recID)
}

func (s *session) removeRecord(ops recordOps, idLabel string) {
	id, ok := s.promptInt(idLabel)
	if !ok {
		return
	}
	recID, ok := s.promptInt("Record ID: ")
	if !ok {
		return
	}
	if err := ops.remove(id, recID); err != nil {
		fmt.Printf("Error removing %s: %v\n", ops.label, err)
		return
	}
	fmt.Printf("Removed %s %d\n", ops.label, recID)
}

func handleAddMedicalRecord(s *session)    { s.addRecord(medicalOps(s.mgr), "Pet ID: ") }
func handleUpdateMedicalRecord(s *session) { s.updateRecord(medicalOps(s.mgr), "Pet ID: ") }
func handleRemoveMedicalRecord(s *session) { s.removeRecord(medicalOps(s.mgr), "Pet ID: ") }
func handleAddPetRecord(s *session)        { s.addRecord(petRecordOps(s.mgr), "Pet ID: ") }
func handleUpdatePetRecord(s *session)     { s.updateRecord(petRecordOps(s.mgr), "Pet ID: ") }
func handleRemovePetRecord(s *session)     { s.removeRecord(petRecordOps(s.mgr), "Pet ID: ") }

// ------------------ Vaccinations ------------------

func handleAddVaccination(s *session) {
	petID, ok := s.promptInt("Pet ID: ")
	if !ok {
		return
	}
	name, ok := s.prompt("Vaccine name: ")
	if !ok {
		return
	}
	date, ok := s.prompt("Date (YYYY-MM-DD): ")
	if !ok {
		return
	}
	status, ok := s.prompt("Status (completed, pending, booster required): ")
	if !ok {
		return
	}
	id, err := s.mgr.AddVaccination(petID, name, date, status)
	if err != nil {
		fmt.Printf("Error adding vaccination: %v\n", err)
		return
	}
	fmt.Printf("Vaccination '%s' added with ID %d\n", name, id)
}

func handleUpdateVaccination(s *session) {
	petID, ok := s.promptInt("Pet ID: ")
	if !ok {
		return
	}
	p, err := s.mgr.Pet(petID)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	vaccID, ok := s.promptInt("Vaccination ID: ")
	if !ok {
		return
	}
	v, found := p.Vaccinations.Get(vaccID)
	if !found {
		fmt.Printf("Vaccination with ID %d not found.\n", vaccID)
		return
	}
	name, ok := s.promptOptional("Vaccine name", v.Name)
	if !ok {
		return
	}
	date, ok := s.promptOptional("Date", v.Date)
	if !ok {
		return
	}
	status, ok := s.promptOptional("Status", v.Status)
	if !ok {
		return
	}
	if err := s.mgr.UpdateVaccination(petID, vaccID, name, date, status); err != nil {
		fmt.Printf("Error updating vaccination: %v\n", err)
		return
	}
	fmt.Printf("Vaccination %d updated.\n", vaccID)
}

func handleRemoveVaccination(s *session) {
	petID, ok := s.promptInt("Pet ID: ")
	if !ok {
		return
	}
	vaccID, ok := s.promptInt("Vaccination ID: ")
	if !ok {
		return
	}
	if err := s.mgr.RemoveVaccination(petID, vaccID); err != nil {
		fmt.Printf("Error removing vaccination: %v\n", err)
		return
	}
	fmt.Printf("Vaccination %d removed.\n", vaccID)
}
