package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"vetsys/clinic"
	"vetsys/logging"
)

type demoOwner struct {
	in   clinic.OwnerInput
	pets []clinic.PetInput
}

func main() {
	dataDir := pflag.String("data-dir", ".", "directory to write the CSV data files into")
	adminPassword := pflag.String("admin-password", "ChangeMe#2025", "password for the admin account")
	scheme := pflag.String("password-scheme", clinic.SchemeSHA256, "sha256 or bcrypt")
	pflag.Parse()

	paths := clinic.DefaultPaths(*dataDir)

	// Clean up any existing data files
	fmt.Println("Cleaning up existing data files...")
	for _, file := range []string{paths.Owners, paths.Pets, paths.Appointments, paths.Users} {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			fmt.Printf("Warning: Could not remove %s: %v\n", file, err)
		}
	}
	fmt.Println("Data cleanup complete.")

	log, err := logging.New(os.Stderr, "warn", "text")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	hasher, err := clinic.NewHasher(*scheme)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	mgr := clinic.NewClinicManager(paths, clinic.WithLogger(log), clinic.WithHasher(hasher))

	successCount := 0
	errorCount := 0
	report := func(what string, err error) {
		if err != nil {
			fmt.Printf("ERROR - %s: %v\n", what, err)
			errorCount++
			return
		}
		successCount++
	}

	for _, u := range []struct{ name, password, role string }{
		{"admin", *adminPassword, "Admin"},
		{"vet", "Vet#Pass2025", "Veterinarian"},
		{"reception", "Desk#Pass2025", "Staff"},
	} {
		_, err := mgr.AddUser(u.name, u.password, u.role)
		report("user "+u.name, err)
	}

	owners := []demoOwner{
		{
			in: clinic.OwnerInput{Name: "Alice Morgan", Address: "12 High Street, Leeds", Phone: "07700900001", Email: "alice.morgan@example.com"},
			pets: []clinic.PetInput{
				{Name: "Biscuit", Breed: "Beagle", Age: 4},
				{Name: "Pepper", Breed: "Domestic Shorthair", Age: 2},
			},
		},
		{
			in:   clinic.OwnerInput{Name: "Tom O'Neill", Address: "Flat 3/2, 8 Mill Lane, York", Phone: "07700900002", Email: "tom.oneill@example.com"},
			pets: []clinic.PetInput{{Name: "Rex", Breed: "German Shepherd", Age: 7}},
		},
	}

	today := time.Now()
	recordDate := today.AddDate(0, 0, -14).Format("2006-01-02")
	apptDate := nextWeekday(today.AddDate(0, 0, 1)).Format("2006-01-02")

	for _, d := range owners {
		fmt.Printf("Adding owner: %s... ", d.in.Name)
		o, err := mgr.AddOwner(d.in)
		if err != nil {
			fmt.Println()
			report("owner "+d.in.Name, err)
			continue
		}
		fmt.Printf("SUCCESS (ID: %d)\n", o.ID)
		successCount++

		_, err = mgr.AddOwnerRecord(o.ID, recordDate, "Registered at front desk, prefers email contact")
		report("owner record", err)

		for _, in := range d.pets {
			in.OwnerID = o.ID
			p, err := mgr.AddPet(in)
			if err != nil {
				report("pet "+in.Name, err)
				continue
			}
			successCount++
			_, err = mgr.AddMedicalRecord(p.ID, recordDate, "Annual check, weight stable, teeth clean")
			report("medical record", err)
			_, err = mgr.AddVaccination(p.ID, "Rabies", recordDate, clinic.VaccinationCompleted)
			report("vaccination", err)
			_, err = mgr.ScheduleAppointment(clinic.AppointmentInput{
				OwnerID: o.ID, PetID: p.ID, Date: apptDate, Time: "10:30", Purpose: "Booster, general check",
			})
			report("appointment", err)
		}
	}

	stray, err := mgr.AddPet(clinic.PetInput{Name: "Mittens", Breed: "Tabby", Age: 1, OwnerID: clinic.NoOwner})
	report("unassigned pet", err)
	if stray != nil {
		_, err = mgr.AddVaccination(stray.ID, "Feline Leukaemia", recordDate, clinic.VaccinationBoosterRequired)
		report("vaccination", err)
	}

	fmt.Printf("\nSeeding complete!\n")
	fmt.Printf("Successfully created: %d items\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)

	fmt.Println("\nPets:")
	fmt.Printf("%-3s %-20s %-25s %-20s %s\n", "ID", "Name", "Breed", "Owner", "Vaccinations")
	fmt.Println(strings.Repeat("-", 85))
	for _, p := range mgr.Pets() {
		owner := "None"
		if o, err := mgr.Owner(p.OwnerID); err == nil {
			owner = o.Name
		}
		fmt.Printf("%-3d %-20s %-25s %-20s %s\n", p.ID, truncateString(p.Name, 20), truncateString(p.Breed, 25), truncateString(owner, 20), p.VaccinationOverview())
	}

	if errorCount > 0 {
		os.Exit(1)
	}
}

func nextWeekday(t time.Time) time.Time {
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, 1)
	}
	return t
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
