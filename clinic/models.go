package clinic

// NoOwner marks a pet or appointment that has no owner.
const NoOwner = -1

// Appointment statuses.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Owner is a pet owner with contact details, a list of pet ids and general records.
// PetIDs may reference pets that no longer exist.
type Owner struct {
	ID      int          `json:"id"`
	Name    string       `json:"name"`
	Address string       `json:"address"`
	Phone   string       `json:"phone_number"`
	Email   string       `json:"email"`
	PetIDs  []int        `json:"pet_ids"`
	Records *RecordStore `json:"-"`

	// rebuilt from the appointment collection, never persisted
	appointments []*Appointment
}

func NewOwner(id int, name, address, phone, email string) *Owner {
	return &Owner{
		ID:      id,
		Name:    name,
		Address: address,
		Phone:   phone,
		Email:   email,
		Records: NewRecordStore(RecordKindOwner),
	}
}

// Appointments returns the owner's appointments as of the last relink.
func (o *Owner) Appointments() []*Appointment { return o.appointments }

func (o *Owner) HasPet(petID int) bool {
	for _, id := range o.PetIDs {
		if id == petID {
			return true
		}
	}
	return false
}

// AddPetID appends petID unless it is already listed.
func (o *Owner) AddPetID(petID int) {
	if !o.HasPet(petID) {
		o.PetIDs = append(o.PetIDs, petID)
	}
}

// RemovePetID drops every occurrence of petID and reports whether any was found.
func (o *Owner) RemovePetID(petID int) bool {
	kept := o.PetIDs[:0]
	found := false
	for _, id := range o.PetIDs {
		if id == petID {
			found = true
			continue
		}
		kept = append(kept, id)
	}
	if len(kept) == 0 {
		kept = nil
	}
	o.PetIDs = kept
	return found
}

// Pet is an animal with its vaccinations and two independent record spaces.
type Pet struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Breed   string `json:"breed"`
	Age     int    `json:"age"`
	OwnerID int    `json:"owner_id"`

	// VaccinationStatus is the value read from file, kept for display only.
	VaccinationStatus string `json:"vaccination_status"`

	Vaccinations   *VaccinationStore `json:"-"`
	MedicalHistory *RecordStore      `json:"-"`
	GeneralRecords *RecordStore      `json:"-"`
}

func NewPet(id int, name, breed string, age, ownerID int) *Pet {
	return &Pet{
		ID:             id,
		Name:           name,
		Breed:          breed,
		Age:            age,
		OwnerID:        ownerID,
		Vaccinations:   NewVaccinationStore(),
		MedicalHistory: NewRecordStore(RecordKindPet),
		GeneralRecords: NewRecordStore(RecordKindPet),
	}
}

func (p *Pet) HasOwner() bool { return p.OwnerID != NoOwner }

// VaccinationOverview recomputes the aggregate status from live entries.
func (p *Pet) VaccinationOverview() string { return p.Vaccinations.OverallStatus() }

// Appointment ties an owner and a pet to a date and time.
type Appointment struct {
	ID      int    `json:"id"`
	OwnerID int    `json:"owner_id"`
	PetID   int    `json:"pet_id"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Purpose string `json:"purpose"`
	Status  string `json:"status"`
}

// User is a staff account. Its role is fixed at construction.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`

	role  Role
	perms Permissions
}

// NewUser builds a user for role, resolving its permissions once.
func NewUser(id int, username, passwordHash string, role Role) *User {
	return &User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		role:         role,
		perms:        PermissionsFor(role),
	}
}

// NewUserFromRoleName is NewUser for a role given by name. It fails with
// ErrUnknownRole when the name matches no role.
func NewUserFromRoleName(id int, username, passwordHash, roleName string) (*User, error) {
	role, err := ParseRole(roleName)
	if err != nil {
		return nil, err
	}
	return NewUser(id, username, passwordHash, role), nil
}

func (u *User) Role() Role               { return u.role }
func (u *User) Permissions() Permissions { return u.perms }
func (u *User) Can(c Capability) bool    { return u.perms.Allows(c) }
