package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	idomain "github.com/medsched/medsched/internal/domain"
	"github.com/medsched/medsched/pkg/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	store := NewStore()

	if _, err := store.Specialties.Create(ctx, &domain.Specialty{ID: 1, Name: "Cardiología"}); err != nil {
		t.Fatal(err)
	}

	fixtures := []domain.User{
		{ID: 101, Email: "carlos.perez@hospital.com", Role: domain.RoleDoctor, FirstName: "Carlos", LastName: "Pérez", Active: true, SpecialtyID: 1},
		{ID: 102, Email: "lucia.moreno@hospital.com", Role: domain.RoleDoctor, FirstName: "Lucía", LastName: "Moreno", Active: true, SpecialtyID: 1},
		{ID: 201, Email: "maria.garcia@mail.com", Role: domain.RolePatient, FirstName: "María", LastName: "García", Active: true, Document: "30111222"},
		{ID: 202, Email: "jose.lopez@mail.com", Role: domain.RolePatient, FirstName: "José", LastName: "López", Active: true, Document: "30333444"},
	}
	for i := range fixtures {
		if _, err := store.Users.Create(ctx, &fixtures[i], "unused"); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func mustCreateAppointment(t *testing.T, store *Store, rec idomain.AppointmentRecord) *domain.Appointment {
	t.Helper()
	appt, err := store.Appointments.Create(context.Background(), &rec)
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return appt
}

func TestAppointmentsListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	mustCreateAppointment(t, store, idomain.AppointmentRecord{
		PatientID: 201, DoctorID: 101, SpecialtyID: 1,
		Date: "2026-09-01", StartTime: "09:00", EndTime: "09:30", Status: domain.StatusPending,
	})
	mustCreateAppointment(t, store, idomain.AppointmentRecord{
		PatientID: 202, DoctorID: 101, SpecialtyID: 1,
		Date: "2026-09-02", StartTime: "08:00", EndTime: "08:30", Status: domain.StatusPending,
	})
	mustCreateAppointment(t, store, idomain.AppointmentRecord{
		PatientID: 201, DoctorID: 102, SpecialtyID: 1,
		Date: "2026-09-01", StartTime: "10:00", EndTime: "10:30", Status: domain.StatusConfirmed,
	})

	page, err := store.Appointments.List(context.Background(), AppointmentQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if page.Meta.Total != 3 {
		t.Fatalf("total = %d, want 3", page.Meta.Total)
	}
	got := make([]string, 0, len(page.Items))
	for _, a := range page.Items {
		got = append(got, a.Date+" "+a.StartTime)
	}
	want := []string{"2026-09-02 08:00", "2026-09-01 10:00", "2026-09-01 09:00"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestAppointmentsListFilters(t *testing.T) {
	store := newTestStore(t)
	mustCreateAppointment(t, store, idomain.AppointmentRecord{
		PatientID: 201, DoctorID: 101, SpecialtyID: 1,
		Date: "2026-09-01", StartTime: "09:00", Status: domain.StatusPending, Reason: "Control anual",
	})
	mustCreateAppointment(t, store, idomain.AppointmentRecord{
		PatientID: 202, DoctorID: 102, SpecialtyID: 1,
		Date: "2026-09-05", StartTime: "09:00", Status: domain.StatusConfirmed, Reason: "Dolor de cabeza",
	})

	tests := []struct {
		name  string
		query AppointmentQuery
		want  int
	}{
		{"all", AppointmentQuery{}, 2},
		{"status ALL is no filter", AppointmentQuery{AppointmentFilters: domain.AppointmentFilters{Status: "ALL"}}, 2},
		{"by status", AppointmentQuery{AppointmentFilters: domain.AppointmentFilters{Status: "CONFIRMED"}}, 1},
		{"by doctor", AppointmentQuery{AppointmentFilters: domain.AppointmentFilters{DoctorID: 101}}, 1},
		{"by patient", AppointmentQuery{PatientID: 202}, 1},
		{"date window", AppointmentQuery{AppointmentFilters: domain.AppointmentFilters{From: "2026-09-02", To: "2026-09-30"}}, 1},
		{"date window empty", AppointmentQuery{AppointmentFilters: domain.AppointmentFilters{From: "2026-10-01"}}, 0},
		{"query accent-insensitive on patient", AppointmentQuery{AppointmentFilters: domain.AppointmentFilters{Query: "garcia"}}, 1},
		{"query accent-insensitive on doctor", AppointmentQuery{AppointmentFilters: domain.AppointmentFilters{Query: "PEREZ"}}, 1},
		{"query accented input", AppointmentQuery{AppointmentFilters: domain.AppointmentFilters{Query: "Pérez"}}, 1},
		{"query on document", AppointmentQuery{AppointmentFilters: domain.AppointmentFilters{Query: "30333444"}}, 1},
		{"query on reason", AppointmentQuery{AppointmentFilters: domain.AppointmentFilters{Query: "dolor"}}, 1},
		{"query no match", AppointmentQuery{AppointmentFilters: domain.AppointmentFilters{Query: "ramirez"}}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			page, err := store.Appointments.List(context.Background(), tc.query)
			if err != nil {
				t.Fatal(err)
			}
			if page.Meta.Total != tc.want {
				t.Errorf("total = %d, want %d", page.Meta.Total, tc.want)
			}
		})
	}
}

func TestAppointmentsListPaging(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 25; i++ {
		mustCreateAppointment(t, store, idomain.AppointmentRecord{
			PatientID: 201, DoctorID: 101, SpecialtyID: 1,
			Date: "2026-09-01", StartTime: slotAt(i), Status: domain.StatusPending,
		})
	}

	ctx := context.Background()
	page, err := store.Appointments.List(ctx, AppointmentQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != DefaultPageSize {
		t.Errorf("default page size = %d, want %d", len(page.Items), DefaultPageSize)
	}
	if page.Meta.Total != 25 {
		t.Errorf("total = %d, want 25", page.Meta.Total)
	}

	last, err := store.Appointments.List(ctx, AppointmentQuery{AppointmentFilters: domain.AppointmentFilters{Page: 3, PageSize: 10}})
	if err != nil {
		t.Fatal(err)
	}
	if len(last.Items) != 5 {
		t.Errorf("last page size = %d, want 5", len(last.Items))
	}

	beyond, err := store.Appointments.List(ctx, AppointmentQuery{AppointmentFilters: domain.AppointmentFilters{Page: 9, PageSize: 10}})
	if err != nil {
		t.Fatal(err)
	}
	if len(beyond.Items) != 0 {
		t.Errorf("page past the end should be empty, got %d items", len(beyond.Items))
	}
}

// slotAt maps an index to a distinct "HH:MM" start time.
func slotAt(i int) string {
	return fmt.Sprintf("%02d:%02d", 8+i/60, i%60)
}

func TestAppointmentsCreateRejectsTakenSlot(t *testing.T) {
	store := newTestStore(t)
	mustCreateAppointment(t, store, idomain.AppointmentRecord{
		PatientID: 201, DoctorID: 101, SpecialtyID: 1,
		Date: "2026-09-01", StartTime: "09:00", Status: domain.StatusPending,
	})

	ctx := context.Background()
	_, err := store.Appointments.Create(ctx, &idomain.AppointmentRecord{
		PatientID: 202, DoctorID: 101, SpecialtyID: 1,
		Date: "2026-09-01", StartTime: "09:00", Status: domain.StatusPending,
	})
	if !errors.Is(err, domain.ErrSlotTaken) {
		t.Errorf("same slot: %v, want ErrSlotTaken", err)
	}

	// Another doctor can hold the same slot.
	if _, err := store.Appointments.Create(ctx, &idomain.AppointmentRecord{
		PatientID: 202, DoctorID: 102, SpecialtyID: 1,
		Date: "2026-09-01", StartTime: "09:00", Status: domain.StatusPending,
	}); err != nil {
		t.Errorf("other doctor same slot: %v", err)
	}
}

func TestAppointmentsCancelledSlotIsFree(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	first := mustCreateAppointment(t, store, idomain.AppointmentRecord{
		PatientID: 201, DoctorID: 101, SpecialtyID: 1,
		Date: "2026-09-01", StartTime: "09:00", Status: domain.StatusPending,
	})

	if _, err := store.Appointments.SetStatus(ctx, first.ID, domain.StatusCancelled); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Appointments.Create(ctx, &idomain.AppointmentRecord{
		PatientID: 202, DoctorID: 101, SpecialtyID: 1,
		Date: "2026-09-01", StartTime: "09:00", Status: domain.StatusPending,
	}); err != nil {
		t.Errorf("cancelled slot should be reusable: %v", err)
	}
}

func TestAppointmentsRescheduleConfirms(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	appt := mustCreateAppointment(t, store, idomain.AppointmentRecord{
		PatientID: 201, DoctorID: 101, SpecialtyID: 1,
		Date: "2026-09-01", StartTime: "09:00", EndTime: "09:30", Status: domain.StatusPending,
	})

	moved, err := store.Appointments.Reschedule(ctx, appt.ID, "2026-09-03", "11:00", "11:30")
	if err != nil {
		t.Fatal(err)
	}
	if moved.Date != "2026-09-03" || moved.StartTime != "11:00" || moved.EndTime != "11:30" {
		t.Errorf("unexpected slot after reschedule: %s %s-%s", moved.Date, moved.StartTime, moved.EndTime)
	}
	if moved.Status != domain.StatusConfirmed {
		t.Errorf("status after reschedule = %s, want CONFIRMED", moved.Status)
	}

	// Rescheduling onto an occupied slot fails.
	other := mustCreateAppointment(t, store, idomain.AppointmentRecord{
		PatientID: 202, DoctorID: 101, SpecialtyID: 1,
		Date: "2026-09-04", StartTime: "08:00", Status: domain.StatusPending,
	})
	if _, err := store.Appointments.Reschedule(ctx, other.ID, "2026-09-03", "11:00", "11:30"); !errors.Is(err, domain.ErrSlotTaken) {
		t.Errorf("reschedule onto taken slot: %v, want ErrSlotTaken", err)
	}

	// Rescheduling onto its own slot is allowed.
	if _, err := store.Appointments.Reschedule(ctx, moved.ID, "2026-09-03", "11:00", "12:00"); err != nil {
		t.Errorf("reschedule onto own slot: %v", err)
	}
}

func TestAppointmentsJoinEmbedsParties(t *testing.T) {
	store := newTestStore(t)
	appt := mustCreateAppointment(t, store, idomain.AppointmentRecord{
		PatientID: 201, DoctorID: 101, SpecialtyID: 1,
		Date: "2026-09-01", StartTime: "09:00", Status: domain.StatusPending,
	})

	if appt.Patient == nil || appt.Patient.Name != "María García" || appt.Patient.Document != "30111222" {
		t.Errorf("patient ref = %+v", appt.Patient)
	}
	if appt.Doctor == nil || appt.Doctor.Name != "Carlos Pérez" || appt.Doctor.Specialty != "Cardiología" {
		t.Errorf("doctor ref = %+v", appt.Doctor)
	}
}

func TestAppointmentsGetByIDNotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Appointments.GetByID(context.Background(), 999); !errors.Is(err, domain.ErrAppointmentNotFound) {
		t.Errorf("got %v, want ErrAppointmentNotFound", err)
	}
}

func TestAppointmentsTakenSlots(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, slot := range []string{"10:00", "08:30", "09:00"} {
		mustCreateAppointment(t, store, idomain.AppointmentRecord{
			PatientID: 201, DoctorID: 101, SpecialtyID: 1,
			Date: "2026-09-01", StartTime: slot, Status: domain.StatusPending,
		})
	}
	cancelled := mustCreateAppointment(t, store, idomain.AppointmentRecord{
		PatientID: 202, DoctorID: 101, SpecialtyID: 1,
		Date: "2026-09-01", StartTime: "11:00", Status: domain.StatusPending,
	})
	if _, err := store.Appointments.SetStatus(ctx, cancelled.ID, domain.StatusCancelled); err != nil {
		t.Fatal(err)
	}

	taken, err := store.Appointments.TakenSlots(ctx, 101, "2026-09-01")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"08:30", "09:00", "10:00"}
	if len(taken) != len(want) {
		t.Fatalf("taken = %v, want %v", taken, want)
	}
	for i := range want {
		if taken[i] != want[i] {
			t.Errorf("taken[%d] = %s, want %s", i, taken[i], want[i])
		}
	}
}
