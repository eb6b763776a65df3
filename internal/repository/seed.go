package repository

import (
	"context"
	"time"

	idomain "github.com/medsched/medsched/internal/domain"
	"github.com/medsched/medsched/pkg/domain"
)

// Demo credentials for the seeded accounts.
const (
	SeedAdminEmail    = "admin@hospital.com"
	SeedAdminPassword = "admin123"

	SeedDoctorPassword  = "doctor123"
	SeedPatientPassword = "patient123"
)

type seedUser struct {
	id          int64
	firstName   string
	lastName    string
	email       string
	role        domain.Role
	specialtyID int64
	document    string
}

var seedSpecialties = []domain.Specialty{
	{ID: 1, Name: "Cardiología", Active: true},
	{ID: 2, Name: "Dermatología", Active: true},
	{ID: 3, Name: "Neurología", Active: true},
	{ID: 4, Name: "Pediatría", Active: true},
	{ID: 5, Name: "Traumatología", Active: true},
	{ID: 6, Name: "Oncología", Active: true},
}

var seedDoctors = []seedUser{
	{id: 101, firstName: "Ana", lastName: "Ruiz", email: "ana.ruiz@hospital.com", role: domain.RoleDoctor, specialtyID: 1},
	{id: 102, firstName: "Mateo", lastName: "Serrano", email: "mateo.serrano@hospital.com", role: domain.RoleDoctor, specialtyID: 2},
	{id: 103, firstName: "Laura", lastName: "Pérez", email: "laura.perez@hospital.com", role: domain.RoleDoctor, specialtyID: 3},
	{id: 104, firstName: "Bruno", lastName: "Cáceres", email: "bruno.caceres@hospital.com", role: domain.RoleDoctor, specialtyID: 4},
	{id: 105, firstName: "Ivanna", lastName: "Cortés", email: "ivanna.cortes@hospital.com", role: domain.RoleDoctor, specialtyID: 5},
	{id: 106, firstName: "Fernando", lastName: "Pardo", email: "fernando.pardo@hospital.com", role: domain.RoleDoctor, specialtyID: 6},
}

var seedPatients = []seedUser{
	{id: 201, firstName: "Carlos", lastName: "Mendez", email: "carlos.mendez@patients.com", role: domain.RolePatient, document: "DNI 10203040"},
	{id: 202, firstName: "Mariana", lastName: "López", email: "mariana.lopez@patients.com", role: domain.RolePatient, document: "DNI 11223344"},
	{id: 203, firstName: "Pedro", lastName: "Sánchez", email: "pedro.sanchez@patients.com", role: domain.RolePatient, document: "DNI 22334455"},
	{id: 204, firstName: "Lucía", lastName: "Romero", email: "lucia.romero@patients.com", role: domain.RolePatient, document: "DNI 33445566"},
	{id: 205, firstName: "Andrés", lastName: "Núñez", email: "andres.nunez@patients.com", role: domain.RolePatient, document: "DNI 44556677"},
	{id: 206, firstName: "Sofía", lastName: "Herrera", email: "sofia.herrera@patients.com", role: domain.RolePatient, document: "DNI 55667788"},
	{id: 207, firstName: "Miguel", lastName: "Torres", email: "miguel.torres@patients.com", role: domain.RolePatient, document: "DNI 66778899"},
	{id: 208, firstName: "Camila", lastName: "Díaz", email: "camila.diaz@patients.com", role: domain.RolePatient, document: "DNI 77889900"},
	{id: 209, firstName: "Julio", lastName: "Estévez", email: "julio.estevez@patients.com", role: domain.RolePatient, document: "DNI 88990011"},
	{id: 210, firstName: "Valentina", lastName: "Ríos", email: "valentina.rios@patients.com", role: domain.RolePatient, document: "DNI 99001122"},
	{id: 211, firstName: "Esteban", lastName: "Vega", email: "esteban.vega@patients.com", role: domain.RolePatient, document: "DNI 10111213"},
	{id: 212, firstName: "Daniela", lastName: "Pizarro", email: "daniela.pizarro@patients.com", role: domain.RolePatient, document: "DNI 12131415"},
	{id: 213, firstName: "Gonzalo", lastName: "Rivera", email: "gonzalo.rivera@patients.com", role: domain.RolePatient, document: "DNI 13141516"},
	{id: 214, firstName: "Renata", lastName: "Flores", email: "renata.flores@patients.com", role: domain.RolePatient, document: "DNI 14151617"},
	{id: 215, firstName: "Sebastián", lastName: "Prado", email: "sebastian.prado@patients.com", role: domain.RolePatient, document: "DNI 15161718"},
	{id: 216, firstName: "Adriana", lastName: "Quispe", email: "adriana.quispe@patients.com", role: domain.RolePatient, document: "DNI 16171819"},
}

var seedSlots = [][2]string{
	{"08:00", "08:30"},
	{"08:30", "09:00"},
	{"09:00", "09:30"},
	{"09:30", "10:00"},
	{"10:00", "10:30"},
	{"10:30", "11:00"},
	{"11:00", "11:30"},
	{"11:30", "12:00"},
	{"12:00", "12:30"},
	{"12:30", "13:00"},
}

var seedStatuses = []domain.AppointmentStatus{
	domain.StatusPending,
	domain.StatusConfirmed,
	domain.StatusCancelled,
	domain.StatusCompleted,
}

// Seed fills the store with the demo hospital data set: one admin, six
// doctors with weekly availability, sixteen patients and forty
// appointments spread around the current date. The hash function is
// passed in so this package stays independent of the auth package.
func Seed(ctx context.Context, store *Store, hashPassword func(string) (string, error)) error {
	adminHash, err := hashPassword(SeedAdminPassword)
	if err != nil {
		return err
	}
	doctorHash, err := hashPassword(SeedDoctorPassword)
	if err != nil {
		return err
	}
	patientHash, err := hashPassword(SeedPatientPassword)
	if err != nil {
		return err
	}

	for i := range seedSpecialties {
		if _, err := store.Specialties.Create(ctx, &seedSpecialties[i]); err != nil {
			return err
		}
	}

	admin := &domain.User{
		ID:        1,
		Email:     SeedAdminEmail,
		Role:      domain.RoleAdmin,
		FirstName: "Administrador",
		Active:    true,
	}
	if _, err := store.Users.Create(ctx, admin, adminHash); err != nil {
		return err
	}

	for _, d := range seedDoctors {
		sp, err := store.Specialties.GetByID(ctx, d.specialtyID)
		if err != nil {
			return err
		}
		user := &domain.User{
			ID:          d.id,
			Email:       d.email,
			Role:        d.role,
			FirstName:   d.firstName,
			LastName:    d.lastName,
			Active:      true,
			SpecialtyID: d.specialtyID,
			Specialty:   sp.Name,
		}
		if _, err := store.Users.Create(ctx, user, doctorHash); err != nil {
			return err
		}
	}

	for _, p := range seedPatients {
		user := &domain.User{
			ID:        p.id,
			Email:     p.email,
			Role:      p.role,
			FirstName: p.firstName,
			LastName:  p.lastName,
			Active:    true,
			Document:  p.document,
		}
		if _, err := store.Users.Create(ctx, user, patientHash); err != nil {
			return err
		}
	}

	if err := seedSchedules(ctx, store); err != nil {
		return err
	}
	if err := seedAppointments(ctx, store); err != nil {
		return err
	}
	return seedRecords(ctx, store)
}

// seedSchedules gives every doctor a Monday-to-Friday morning block.
// Doctor 103's block starts disabled, matching the demo data set.
func seedSchedules(ctx context.Context, store *Store) error {
	for i, d := range seedDoctors {
		for day := 0; day < 5; day++ {
			s := &domain.WeeklySchedule{
				DoctorID:        d.id,
				DayOfWeek:       day,
				StartTime:       "08:00",
				EndTime:         "13:00",
				IntervalMinutes: 30,
				Active:          i != 2,
			}
			if _, err := store.Schedules.Create(ctx, s); err != nil {
				return err
			}
		}
	}
	return nil
}

// seedAppointments creates forty appointments cycling through doctors,
// patients, dates and slots. Dates span roughly a week either side of
// today so listings and the dashboard have data immediately.
func seedAppointments(ctx context.Context, store *Store) error {
	dates := make([]string, 16)
	base := time.Now().AddDate(0, 0, -7)
	for i := range dates {
		dates[i] = base.AddDate(0, 0, i).Format("2006-01-02")
	}

	for i := 0; i < 40; i++ {
		doctor := seedDoctors[i%len(seedDoctors)]
		patient := seedPatients[i%len(seedPatients)]
		slot := seedSlots[i%len(seedSlots)]
		rec := &idomain.AppointmentRecord{
			PatientID:   patient.id,
			DoctorID:    doctor.id,
			SpecialtyID: doctor.specialtyID,
			Date:        dates[i%len(dates)],
			StartTime:   slot[0],
			EndTime:     slot[1],
			Status:      seedStatuses[i%len(seedStatuses)],
		}
		if _, err := store.Appointments.Create(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// seedRecords attaches clinical notes to the completed appointments.
func seedRecords(ctx context.Context, store *Store) error {
	all, err := store.Appointments.All(ctx)
	if err != nil {
		return err
	}

	notes := []struct {
		symptoms     string
		vitals       string
		diagnosis    string
		prescription string
	}{
		{"Dolor torácico leve", "TA 120/80, FC 72", "Control cardiológico normal", "Control en 6 meses"},
		{"Erupción cutánea en brazos", "TA 118/76", "Dermatitis de contacto", "Crema con corticoides, 7 días"},
		{"Cefalea recurrente", "TA 125/82, FC 68", "Migraña sin aura", "Sumatriptán según necesidad"},
	}

	n := 0
	for _, appt := range all {
		if appt.Status != domain.StatusCompleted || n >= len(notes) {
			continue
		}
		note := notes[n]
		rec := &domain.MedicalRecord{
			PatientID:     appt.PatientID,
			DoctorID:      appt.DoctorID,
			AppointmentID: appt.ID,
			Date:          appt.Date,
			Symptoms:      note.symptoms,
			Vitals:        note.vitals,
			Diagnosis:     note.diagnosis,
			Prescription:  note.prescription,
		}
		if _, err := store.Records.Create(ctx, rec); err != nil {
			return err
		}
		n++
	}
	return nil
}
