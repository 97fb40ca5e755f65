package main

import (
	"fmt"
	"strings"

	"vetsys/clinic"
)

// promptOwner asks for owner details. When current is set, an empty answer keeps its value.
func (s *session) promptOwner(current *clinic.Owner) (clinic.OwnerInput, bool) {
	var cur clinic.OwnerInput
	if current != nil {
		cur = clinic.OwnerInput{Name: current.Name, Address: current.Address, Phone: current.Phone, Email: current.Email}
	}
	ask := func(label, value string, dst *string) bool {
		var ok bool
		if current == nil {
			*dst, ok = s.prompt(label + ": ")
		} else {
			*dst, ok = s.promptOptional(label, value)
		}
		return ok
	}
	var in clinic.OwnerInput
	ok := ask("Name", cur.Name, &in.Name) &&
		ask("Address", cur.Address, &in.Address) &&
		ask("Phone (11 digits, starting 07)", cur.Phone, &in.Phone) &&
		ask("Email", cur.Email, &in.Email)
	return in, ok
}

func handleAddOwner(s *session) {
	in, ok := s.promptOwner(nil)
	if !ok {
		return
	}
	o, err := s.mgr.AddOwner(in)
	if err != nil {
		fmt.Printf("Error adding owner: %v\n", err)
		return
	}
	fmt.Printf("Added owner '%s' with ID %d\n", o.Name, o.ID)
}

func handleListOwners(s *session) {
	owners := s.mgr.Owners()
	if len(owners) == 0 {
		fmt.Println("No owners registered.")
		return
	}
	fmt.Printf("%-9s %-25s %-13s %-30s %s\n", "Owner ID", "Name", "Phone", "Email", "Pets")
	fmt.Println(strings.Repeat("-", 90))
	for _, o := range owners {
		fmt.Printf("%-9d %-25s %-13s %-30s %d\n",
			o.ID, truncateString(o.Name, 25), o.Phone, truncateString(o.Email, 30), len(o.PetIDs))
	}
}

func handleViewOwner(s *session) {
	id, ok := s.promptInt("Owner ID: ")
	if !ok {
		return
	}
	o, err := s.mgr.Owner(id)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("\nOwner %d: %s\n", o.ID, o.Name)
	fmt.Printf("Address : %s\n", o.Address)
	fmt.Printf("Phone   : %s\n", o.Phone)
	fmt.Printf("Email   : %s\n", o.Email)
	printOwnerPets(s.mgr, o)
	printRecords("Owner records", o.Records.All())
	fmt.Printf("Appointments: %d\n", len(o.Appointments()))
}

// printOwnerPets lists the owner's pet ids, flagging ids with no pet behind them.
func printOwnerPets(mgr *clinic.ClinicManager, o *clinic.Owner) {
	if len(o.PetIDs) == 0 {
		fmt.Println("No pets linked.")
		return
	}
	fmt.Println("Pets:")
	for _, id := range o.PetIDs {
		if p, err := mgr.Pet(id); err == nil {
			fmt.Printf("  %-6d %-20s %s\n", p.ID, p.Name, p.Breed)
		} else {
			fmt.Printf("  %-6d not found\n", id)
		}
	}
}

func handleOwnerPets(s *session) {
	id, ok := s.promptInt("Owner ID: ")
	if !ok {
		return
	}
	o, err := s.mgr.Owner(id)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	printOwnerPets(s.mgr, o)
}

func handleUpdateOwner(s *session) {
	id, ok := s.promptInt("Owner ID: ")
	if !ok {
		return
	}
	o, err := s.mgr.Owner(id)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	in, ok := s.promptOwner(o)
	if !ok {
		return
	}
	if err := s.mgr.UpdateOwner(id, in); err != nil {
		fmt.Printf("Error updating owner: %v\n", err)
		return
	}
	fmt.Printf("Owner %d updated.\n", id)
}

func handleDeleteOwner(s *session) {
	id, ok := s.promptInt("Owner ID: ")
	if !ok {
		return
	}
	o, err := s.mgr.Owner(id)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if !s.confirm(fmt.Sprintf("Delete '%s'? Their pets and appointments will be unassigned", o.Name)) {
		fmt.Println("Cancelled.")
		return
	}
	if err := s.mgr.DeleteOwner(id); err != nil {
		fmt.Printf("Error deleting owner: %v\n", err)
		return
	}
	fmt.Printf("Owner %d deleted.\n", id)
}

func handleAddOwnerRecord(s *session)    { s.addRecord(ownerRecordOps(s.mgr), "Owner ID: ") }
func handleUpdateOwnerRecord(s *session) { s.updateRecord(ownerRecordOps(s.mgr), "Owner ID: ") }
func handleRemoveOwnerRecord(s *session) { s.removeRecord(ownerRecordOps(s.mgr), "Owner ID: ") }
