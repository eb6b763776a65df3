package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/medsched/medsched/internal/config"
	"github.com/medsched/medsched/pkg/client"
	"github.com/medsched/medsched/pkg/domain"
	"github.com/medsched/medsched/pkg/session"
)

const usage = `medsched - hospital scheduling console

Usage:
  medsched login --email <email> --password <password>
  medsched me
  medsched logout
  medsched appointments [--page N] [--status S] [--doctor ID] [--q TEXT] [--mine]
  medsched confirm <appointment-id>
  medsched cancel <appointment-id>
  medsched doctors
  medsched patients
  medsched records [--patient ID]
  medsched metrics
  medsched export <file.csv>
`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	cfg := config.LoadClient()
	tokens := session.NewTokenStore(cfg.TokenFile)
	api := client.New(cfg.APIBaseURL, tokens,
		client.WithTimeout(cfg.HTTPTimeout),
		client.WithLogger(logger),
	)
	manager := session.NewManager(api, tokens, session.WithLogger(logger))

	ctx := context.Background()
	if err := run(ctx, manager, api, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, manager *session.Manager, api *client.Client, command string, args []string) error {
	switch command {
	case "login":
		return runLogin(ctx, manager, args)
	case "me":
		return runMe(ctx, manager)
	case "logout":
		manager.Logout(ctx)
		fmt.Println("Sesión cerrada")
		return nil
	case "appointments":
		return runAppointments(ctx, api, args)
	case "confirm":
		return runTransition(ctx, api, args, api.ConfirmAppointment, "confirmada")
	case "cancel":
		return runTransition(ctx, api, args, api.CancelAppointment, "cancelada")
	case "doctors":
		return runDoctors(ctx, api)
	case "patients":
		return runPatients(ctx, api)
	case "records":
		return runRecords(ctx, api, args)
	case "metrics":
		return runMetrics(ctx, api)
	case "export":
		return runExport(ctx, api, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runLogin(ctx context.Context, manager *session.Manager, args []string) error {
	flags := pflag.NewFlagSet("login", pflag.ContinueOnError)
	email := flags.String("email", "", "account email")
	password := flags.String("password", "", "account password")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("--email and --password are required")
	}

	if err := manager.Login(ctx, *email, *password); err != nil {
		return err
	}
	user := manager.User()
	fmt.Printf("Bienvenido, %s (%s)\n", user.Name, user.Role)
	for _, route := range domain.AllowedRoutes(user.Role) {
		fmt.Printf("  %-20s %s\n", route.Label, route.Path)
	}
	return nil
}

func runMe(ctx context.Context, manager *session.Manager) error {
	user := manager.Me(ctx)
	if user == nil {
		return fmt.Errorf("no hay sesión activa")
	}
	fmt.Printf("%s <%s>\nRol: %s\n", user.Name, user.Email, user.Role)
	return nil
}

func runAppointments(ctx context.Context, api *client.Client, args []string) error {
	flags := pflag.NewFlagSet("appointments", pflag.ContinueOnError)
	page := flags.Int("page", 1, "page number")
	pageSize := flags.Int("page-size", 20, "page size")
	status := flags.String("status", "", "filter by status (PENDING, CONFIRMED, CANCELLED, COMPLETED)")
	doctor := flags.Int64("doctor", 0, "filter by doctor id")
	query := flags.String("q", "", "free-text search")
	mine := flags.Bool("mine", false, "only my own appointments")
	if err := flags.Parse(args); err != nil {
		return err
	}

	result, err := api.Appointments(ctx, domain.AppointmentFilters{
		Page:     *page,
		PageSize: *pageSize,
		Status:   *status,
		DoctorID: *doctor,
		Query:    *query,
		Mine:     *mine,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFECHA\tHORA\tPACIENTE\tMÉDICO\tESTADO")
	for _, appt := range result.Items {
		var patient, doctor string
		if appt.Patient != nil {
			patient = appt.Patient.Name
		}
		if appt.Doctor != nil {
			doctor = appt.Doctor.Name
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			appt.ID, appt.Date, appt.StartTime, patient, doctor, appt.Status)
	}
	w.Flush()
	fmt.Printf("Página %d de %d citas\n", result.Meta.Page, result.Meta.Total)
	return nil
}

func runTransition(ctx context.Context, api *client.Client, args []string, op func(context.Context, int64) error, label string) error {
	if len(args) != 1 {
		return fmt.Errorf("se requiere el id de la cita")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("id inválido: %s", args[0])
	}
	if err := op(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Cita %d %s\n", id, label)
	return nil
}

func runDoctors(ctx context.Context, api *client.Client) error {
	doctors, err := api.Doctors(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNOMBRE\tESPECIALIDAD\tESTADO")
	for _, d := range doctors {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", d.ID, d.Name, d.Specialty, d.Status)
	}
	return w.Flush()
}

func runPatients(ctx context.Context, api *client.Client) error {
	patients, err := api.Patients(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNOMBRE\tEMAIL\tESTADO")
	for _, p := range patients {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Email, p.Status)
	}
	return w.Flush()
}

func runRecords(ctx context.Context, api *client.Client, args []string) error {
	flags := pflag.NewFlagSet("records", pflag.ContinueOnError)
	patient := flags.Int64("patient", 0, "filter by patient id")
	if err := flags.Parse(args); err != nil {
		return err
	}

	records, total, err := api.Records(ctx, domain.RecordFilters{PatientID: *patient})
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFECHA\tPACIENTE\tMÉDICO\tDIAGNÓSTICO")
	for _, rec := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			rec.ID, rec.Date, rec.PatientName, rec.DoctorName, rec.Diagnosis)
	}
	w.Flush()
	fmt.Printf("%d historias clínicas\n", total)
	return nil
}

func runMetrics(ctx context.Context, api *client.Client) error {
	metrics, err := api.DashboardMetrics(ctx, "", "")
	if err != nil {
		return err
	}
	for _, kpi := range metrics.KPIs {
		fmt.Printf("%-14s %d\n", kpi.Label, kpi.Value)
	}
	fmt.Println("\nCitas por especialidad:")
	for _, sp := range metrics.AppointmentsBySpecialty {
		fmt.Printf("  %-16s %d\n", sp.Specialty, sp.Count)
	}
	if len(metrics.TodayAppointments) > 0 {
		fmt.Println("\nCitas de hoy:")
		for _, appt := range metrics.TodayAppointments {
			fmt.Printf("  %s  %s con %s (%s)\n", appt.Time, appt.Patient, appt.Doctor, appt.Status)
		}
	}
	return nil
}

func runExport(ctx context.Context, api *client.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("se requiere el archivo de destino")
	}
	data, err := api.ExportAppointmentsCSV(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[0], data, 0o644); err != nil {
		return err
	}
	fmt.Printf("Exportadas %d bytes a %s\n", len(data), args[0])
	return nil
}
