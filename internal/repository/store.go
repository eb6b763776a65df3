package repository

// Store bundles the repositories behind one handle for wiring.
type Store struct {
	Users        *UsersRepository
	Sessions     *SessionsRepository
	Specialties  *SpecialtiesRepository
	Schedules    *SchedulesRepository
	Appointments *AppointmentsRepository
	Records      *RecordsRepository
}

// NewStore creates an empty store with all repositories wired.
func NewStore() *Store {
	users := NewUsersRepository()
	specialties := NewSpecialtiesRepository()
	return &Store{
		Users:        users,
		Sessions:     NewSessionsRepository(),
		Specialties:  specialties,
		Schedules:    NewSchedulesRepository(),
		Appointments: NewAppointmentsRepository(users, specialties),
		Records:      NewRecordsRepository(),
	}
}
