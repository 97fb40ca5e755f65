package clinic

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles.
type Role int

const (
	RoleAdmin Role = iota + 1
	RoleVeterinarian
	RoleStaff
)

// Roles lists every role in display order.
var Roles = []Role{RoleAdmin, RoleVeterinarian, RoleStaff}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleVeterinarian:
		return "Veterinarian"
	case RoleStaff:
		return "Staff"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// ParseRole matches a role name, ignoring case and surrounding space.
func ParseRole(name string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "admin":
		return RoleAdmin, nil
	case "veterinarian":
		return RoleVeterinarian, nil
	case "staff":
		return RoleStaff, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRole, name)
	}
}

// Capability is a single permission checked by the menus.
type Capability int

const (
	ManageUsers Capability = iota
	ManageMedicalRecords
	ManageGeneralPetRecords
	ManageVaccinations
	ManageAppointments
	DeletePet
	DeleteOwner
	ManageOwnerRecords
)

func (c Capability) String() string {
	switch c {
	case ManageUsers:
		return "manage users"
	case ManageMedicalRecords:
		return "manage medical records"
	case ManageGeneralPetRecords:
		return "manage general pet records"
	case ManageVaccinations:
		return "manage vaccinations"
	case ManageAppointments:
		return "manage appointments"
	case DeletePet:
		return "delete pets"
	case DeleteOwner:
		return "delete owners"
	case ManageOwnerRecords:
		return "manage owner records"
	default:
		return fmt.Sprintf("Capability(%d)", int(c))
	}
}

// Permissions is the capability vector attached to a role.
type Permissions struct {
	ManageUsers             bool
	ManageMedicalRecords    bool
	ManageGeneralPetRecords bool
	ManageVaccinations      bool
	ManageAppointments      bool
	DeletePet               bool
	DeleteOwner             bool
	ManageOwnerRecords      bool
}

// PermissionsFor returns the fixed permission vector of a role. Unknown roles get none.
func PermissionsFor(r Role) Permissions {
	switch r {
	case RoleAdmin:
		return Permissions{
			ManageUsers:             true,
			ManageMedicalRecords:    true,
			ManageGeneralPetRecords: true,
			ManageVaccinations:      true,
			ManageAppointments:      true,
			DeletePet:               true,
			DeleteOwner:             true,
			ManageOwnerRecords:      true,
		}
	case RoleVeterinarian:
		return Permissions{
			ManageMedicalRecords: true,
			ManageVaccinations:   true,
		}
	case RoleStaff:
		return Permissions{
			ManageGeneralPetRecords: true,
			ManageAppointments:      true,
			ManageOwnerRecords:      true,
		}
	default:
		return Permissions{}
	}
}

func (p Permissions) Allows(c Capability) bool {
	switch c {
	case ManageUsers:
		return p.ManageUsers
	case ManageMedicalRecords:
		return p.ManageMedicalRecords
	case ManageGeneralPetRecords:
		return p.ManageGeneralPetRecords
	case ManageVaccinations:
		return p.ManageVaccinations
	case ManageAppointments:
		return p.ManageAppointments
	case DeletePet:
		return p.DeletePet
	case DeleteOwner:
		return p.DeleteOwner
	case ManageOwnerRecords:
		return p.ManageOwnerRecords
	default:
		return false
	}
}

// CanUpdatePet covers editing a pet's details. Veterinarians may do it
// without holding the general-records capability.
func (u *User) CanUpdatePet() bool {
	return u.perms.ManageGeneralPetRecords || u.role == RoleVeterinarian
}

// CanLinkPet covers attaching an unassigned pet to an owner.
func (u *User) CanLinkPet() bool {
	return u.perms.DeletePet || u.role == RoleStaff
}
