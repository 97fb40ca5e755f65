package main

import (
	"fmt"
	"strings"

	"vetsys/clinic"
)

func handleListUsers(s *session) {
	users := s.mgr.Users()
	fmt.Printf("%-8s %-22s %s\n", "User ID", "Username", "Role")
	fmt.Println(strings.Repeat("-", 45))
	for _, u := range users {
		fmt.Printf("%-8d %-22s %s\n", u.ID, u.Username, u.Role())
	}
}

func handleAddUser(s *session) {
	username, ok := s.prompt("Username: ")
	if !ok {
		return
	}
	password, err := readPassword(s.sc, fmt.Sprintf("Enter password for %s: ", username))
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}
	role, ok := s.prompt("Role (Admin, Veterinarian, Staff): ")
	if !ok {
		return
	}
	u, err := s.mgr.AddUser(username, password, role)
	if err != nil {
		fmt.Printf("Error adding user: %v\n", err)
		return
	}
	fmt.Printf("Added user '%s' (%s) with ID %d\n", u.Username, u.Role(), u.ID)
}

func handleUpdateUser(s *session) {
	id, ok := s.promptInt("User ID: ")
	if !ok {
		return
	}
	u, err := s.mgr.User(id)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	username, ok := s.promptOptional("Username", u.Username)
	if !ok {
		return
	}
	password, err := readPassword(s.sc, "New password (Enter to keep): ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}
	role, ok := s.promptOptional("Role", u.Role().String())
	if !ok {
		return
	}
	if u.ID == s.user.ID && !strings.EqualFold(role, u.Role().String()) {
		fmt.Println("You cannot change your own role.")
		return
	}

	upd := clinic.UserUpdate{Password: password, Role: role}
	if username != u.Username {
		upd.Username = username
	}
	nu, err := s.mgr.UpdateUser(id, upd)
	if err != nil {
		fmt.Printf("Error updating user: %v\n", err)
		return
	}
	if nu.ID == s.user.ID {
		s.user = nu
	}
	fmt.Printf("User %d updated (%s).\n", nu.ID, nu.Role())
}

func handleDeleteUser(s *session) {
	id, ok := s.promptInt("User ID: ")
	if !ok {
		return
	}
	if id == s.user.ID {
		fmt.Println("You cannot delete your own account.")
		return
	}
	if !s.confirm(fmt.Sprintf("Delete user %d?", id)) {
		fmt.Println("Cancelled.")
		return
	}
	if err := s.mgr.DeleteUser(id); err != nil {
		fmt.Printf("Error deleting user: %v\n", err)
		return
	}
	fmt.Printf("User %d deleted.\n", id)
}
