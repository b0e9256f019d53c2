package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sigh/sigh/internal/domain/admin"
	"github.com/sigh/sigh/internal/domain/bed"
	"github.com/sigh/sigh/internal/domain/establishment"
	"github.com/sigh/sigh/internal/domain/hospitalization"
	"github.com/sigh/sigh/internal/domain/patient"
	"github.com/sigh/sigh/internal/domain/staff"
	"github.com/sigh/sigh/internal/domain/surgery"
	"github.com/sigh/sigh/internal/platform/gateway"
	"github.com/sigh/sigh/internal/platform/session"
	"github.com/sigh/sigh/pkg/pagination"
)

// runAuthed wires the app, checks for a session and runs fn. Validation
// failures from the API are rendered field by field instead of as raw JSON.
func runAuthed(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireSession(); err != nil {
			return err
		}

		err = fn(context.Background(), a, args)

		var ve *gateway.ValidationError
		if errors.As(err, &ve) {
			fmt.Println("Datos rechazados por el servidor:")
			for field, msg := range ve.Fields() {
				fmt.Printf("  %s: %s\n", field, msg)
			}
			return fmt.Errorf("validación fallida")
		}
		return err
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func patientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patient",
		Short: "Patient admission records",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered patients",
	}
	listCmd.Flags().Int("limit", 20, "Page size")
	listCmd.Flags().Int("offset", 0, "Page offset")
	listCmd.RunE = runAuthed(func(ctx context.Context, a *app, args []string) error {
		limit, _ := listCmd.Flags().GetInt("limit")
		offset, _ := listCmd.Flags().GetInt("offset")

		patients, err := patient.NewService(a.gw).List(ctx, pagination.Params{Limit: limit, Offset: offset})
		if err != nil {
			return err
		}
		return printJSON(patients)
	})

	findCmd := &cobra.Command{
		Use:   "find <document>",
		Short: "Find a patient by document number",
		Args:  cobra.ExactArgs(1),
	}
	findCmd.RunE = runAuthed(func(ctx context.Context, a *app, args []string) error {
		p, err := patient.NewService(a.gw).FindByDocument(ctx, args[0])
		if err != nil {
			return err
		}
		if p == nil {
			fmt.Println("Paciente no registrado")
			return nil
		}
		return printJSON(p)
	})

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new patient",
	}
	registerCmd.Flags().String("document-type", "DNI", "Document type")
	registerCmd.Flags().String("document", "", "Document number")
	registerCmd.Flags().String("names", "", "First names")
	registerCmd.Flags().String("surnames", "", "Last names")
	registerCmd.Flags().String("birthdate", "", "Birth date (YYYY-MM-DD)")
	registerCmd.Flags().String("sex", "", "Sex (M/F)")
	registerCmd.Flags().String("phone", "", "Phone")
	registerCmd.Flags().String("address", "", "Address")
	registerCmd.Flags().String("insurance", "", "Insurance type")
	registerCmd.RunE = runAuthed(func(ctx context.Context, a *app, args []string) error {
		f := registerCmd.Flags()
		input := patient.RegisterInput{}
		input.DocumentType, _ = f.GetString("document-type")
		input.DocumentNumber, _ = f.GetString("document")
		input.FirstNames, _ = f.GetString("names")
		input.LastNames, _ = f.GetString("surnames")
		input.BirthDate, _ = f.GetString("birthdate")
		input.Sex, _ = f.GetString("sex")
		input.Phone, _ = f.GetString("phone")
		input.Address, _ = f.GetString("address")
		input.InsuranceType, _ = f.GetString("insurance")

		p, err := patient.NewService(a.gw).Register(ctx, input)
		if err != nil {
			return err
		}
		return printJSON(p)
	})

	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a patient's contact data",
		Args:  cobra.ExactArgs(1),
	}
	updateCmd.Flags().String("phone", "", "Phone")
	updateCmd.Flags().String("address", "", "Address")
	updateCmd.Flags().String("insurance", "", "Insurance type")
	updateCmd.RunE = runAuthed(func(ctx context.Context, a *app, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		input := patient.UpdateInput{}
		f := updateCmd.Flags()
		if f.Changed("phone") {
			v, _ := f.GetString("phone")
			input.Phone = &v
		}
		if f.Changed("address") {
			v, _ := f.GetString("address")
			input.Address = &v
		}
		if f.Changed("insurance") {
			v, _ := f.GetString("insurance")
			input.InsuranceType = &v
		}

		if err := patient.NewService(a.gw).Update(ctx, id, input); err != nil {
			return err
		}
		fmt.Println("Paciente actualizado")
		return nil
	})

	cmd.AddCommand(listCmd, findCmd, registerCmd, updateCmd)
	return cmd
}

func surgeryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "surgery",
		Short: "Surgery scheduling board",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List scheduled surgeries",
	}
	listCmd.Flags().String("date", "", "Board date (YYYY-MM-DD)")
	listCmd.RunE = runAuthed(func(ctx context.Context, a *app, args []string) error {
		date, _ := listCmd.Flags().GetString("date")
		surgeries, err := surgery.NewService(a.gw).List(ctx, date)
		if err != nil {
			return err
		}
		return printJSON(surgeries)
	})

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Program a surgery; the diagnosis is picked interactively",
	}
	scheduleCmd.Flags().Int64("patient", 0, "Patient ID")
	scheduleCmd.Flags().Int64("surgeon", 0, "Surgeon staff ID")
	scheduleCmd.Flags().String("room", "", "Operating room")
	scheduleCmd.Flags().String("date", "", "Date (YYYY-MM-DD)")
	scheduleCmd.Flags().String("time", "", "Start time (HH:MM)")
	scheduleCmd.Flags().String("cie", "", "Diagnosis CIE-10 code (skips the interactive picker)")
	scheduleCmd.Flags().String("diagnosis", "", "Diagnosis description (with --cie)")
	scheduleCmd.RunE = runAuthed(func(ctx context.Context, a *app, args []string) error {
		f := scheduleCmd.Flags()
		input := surgery.ScheduleInput{}
		input.PatientID, _ = f.GetInt64("patient")
		input.SurgeonID, _ = f.GetInt64("surgeon")
		input.Room, _ = f.GetString("room")
		input.Date, _ = f.GetString("date")
		input.StartTime, _ = f.GetString("time")
		input.DiagnosisCode, _ = f.GetString("cie")
		input.DiagnosisDescription, _ = f.GetString("diagnosis")

		if input.DiagnosisCode == "" {
			code, desc, err := pickDiagnosis(ctx, a)
			if err != nil {
				return err
			}
			input.DiagnosisCode, input.DiagnosisDescription = code, desc
		}

		scheduled, err := surgery.NewService(a.gw).Schedule(ctx, input)
		if err != nil {
			return err
		}
		return printJSON(scheduled)
	})

	statusCmd := &cobra.Command{
		Use:   "status <id> <state>",
		Short: "Transition a surgery (programada, en_curso, realizada, suspendida)",
		Args:  cobra.ExactArgs(2),
	}
	statusCmd.RunE = runAuthed(func(ctx context.Context, a *app, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := surgery.NewService(a.gw).UpdateStatus(ctx, id, args[1]); err != nil {
			return err
		}
		fmt.Println("Estado actualizado")
		return nil
	})

	suspendCmd := &cobra.Command{
		Use:   "suspend <id>",
		Short: "Suspend a surgery with a reason",
		Args:  cobra.ExactArgs(1),
	}
	suspendCmd.Flags().String("reason", "", "Suspension reason")
	suspendCmd.RunE = runAuthed(func(ctx context.Context, a *app, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		reason, _ := suspendCmd.Flags().GetString("reason")
		if err := surgery.NewService(a.gw).Suspend(ctx, id, reason); err != nil {
			return err
		}
		fmt.Println("Cirugía suspendida")
		return nil
	})

	cmd.AddCommand(listCmd, scheduleCmd, statusCmd, suspendCmd)
	return cmd
}

func bedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bed",
		Short: "Bed management",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List beds of the signed-in user's establishment",
	}
	listCmd.RunE = runAuthed(func(ctx context.Context, a *app, args []string) error {
		profile := session.LoadProfile(a.store)
		beds, err := bed.NewService(a.gw).List(ctx, profile.EstablishmentID)
		if err != nil {
			return err
		}
		return printJSON(beds)
	})

	assignCmd := &cobra.Command{
		Use:   "assign <bed-id> <patient-id>",
		Short: "Assign a patient to a bed",
		Args:  cobra.ExactArgs(2),
	}
	assignCmd.RunE = runAuthed(func(ctx context.Context, a *app, args []string) error {
		bedID, err := parseID(args[0])
		if err != nil {
			return err
		}
		patientID, err := parseID(args[1])
		if err != nil {
			return err
		}
		if err := bed.NewService(a.gw).Assign(ctx, bedID, patientID); err != nil {
			return err
		}
		fmt.Println("Cama asignada")
		return nil
	})

	releaseCmd := &cobra.Command{
		Use:   "release <bed-id>",
		Short: "Free a bed",
		Args:  cobra.ExactArgs(1),
	}
	releaseCmd.RunE = runAuthed(func(ctx context.Context, a *app, args []string) error {
		bedID, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := bed.NewService(a.gw).Release(ctx, bedID); err != nil {
			return err
		}
		fmt.Println("Cama liberada")
		return nil
	})

	cmd.AddCommand(listCmd, assignCmd, releaseCmd)
	return cmd
}

func staffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Hospital personnel",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List staff members",
	}
	listCmd.Flags().String("role", "", "Filter by role")
	listCmd.RunE = runAuthed(func(ctx context.Context, a *app, args []string) error {
		role, _ := listCmd.Flags().GetString("role")
		members, err := staff.NewService(a.gw).List(ctx, role)
		if err != nil {
			return err
		}
		return printJSON(members)
	})

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register a staff member",
	}
	registerCmd.Flags().String("document", "", "Document number")
	registerCmd.Flags().String("names", "", "First names")
	registerCmd.Flags().String("surnames", "", "Last names")
	registerCmd.Flags().String("role", "", "Role")
	registerCmd.Flags().String("specialty", "", "Specialty")
	registerCmd.Flags().String("collegiate", "", "Collegiate code")
	registerCmd.RunE = runAuthed(func(ctx context.Context, a *app, args []string) error {
		f := registerCmd.Flags()
		input := staff.RegisterInput{}
		input.DocumentNumber, _ = f.GetString("document")
		input.FirstNames, _ = f.GetString("names")
		input.LastNames, _ = f.GetString("surnames")
		input.Role, _ = f.GetString("role")
		input.Specialty, _ = f.GetString("specialty")
		input.CollegiateCode, _ = f.GetString("collegiate")
		if id, err := parseID(session.LoadProfile(a.store).EstablishmentID); err == nil {
			input.EstablishmentID = id
		}

		m, err := staff.NewService(a.gw).Register(ctx, input)
		if err != nil {
			return err
		}
		return printJSON(m)
	})

	cmd.AddCommand(listCmd, registerCmd)
	return cmd
}

func establishmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "establishment",
		Short: "Establishment catalog",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List establishments",
	}
	listCmd.RunE = runAuthed(func(ctx context.Context, a *app, args []string) error {
		establishments, err := establishment.NewService(a.gw).List(ctx)
		if err != nil {
			return err
		}
		return printJSON(establishments)
	})

	cmd.AddCommand(listCmd)
	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User administration (administrators only)",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
	}
	listCmd.RunE = runAuthed(func(ctx context.Context, a *app, args []string) error {
		users, err := admin.NewService(a.gw, a.store).ListUsers(ctx)
		if err != nil {
			return err
		}
		return printJSON(users)
	})

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
	}
	createCmd.Flags().String("username", "", "Username")
	createCmd.Flags().String("password", "", "Initial password")
	createCmd.Flags().String("name", "", "Staff full name")
	createCmd.Flags().String("type", "", "User type ID")
	createCmd.RunE = runAuthed(func(ctx context.Context, a *app, args []string) error {
		f := createCmd.Flags()
		input := admin.CreateInput{}
		input.Username, _ = f.GetString("username")
		input.Password, _ = f.GetString("password")
		input.FullName, _ = f.GetString("name")
		input.UserTypeID, _ = f.GetString("type")
		if id, err := parseID(session.LoadProfile(a.store).EstablishmentID); err == nil {
			input.EstablishmentID = id
		}

		u, err := admin.NewService(a.gw, a.store).CreateUser(ctx, input)
		if err != nil {
			return err
		}
		return printJSON(u)
	})

	deactivateCmd := &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Deactivate a user account",
		Args:  cobra.ExactArgs(1),
	}
	deactivateCmd.RunE = runAuthed(func(ctx context.Context, a *app, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		active := false
		if err := admin.NewService(a.gw, a.store).UpdateUser(ctx, id, admin.UpdateInput{Active: &active}); err != nil {
			return err
		}
		fmt.Println("Usuario desactivado")
		return nil
	})

	resetCmd := &cobra.Command{
		Use:   "reset-password <id>",
		Short: "Set a temporary password on an account",
		Args:  cobra.ExactArgs(1),
	}
	resetCmd.Flags().String("password", "", "Temporary password")
	resetCmd.RunE = runAuthed(func(ctx context.Context, a *app, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		password, _ := resetCmd.Flags().GetString("password")
		if err := admin.NewService(a.gw, a.store).ResetPassword(ctx, id, password); err != nil {
			return err
		}
		fmt.Println("Contraseña restablecida")
		return nil
	})

	cmd.AddCommand(listCmd, createCmd, deactivateCmd, resetCmd)
	return cmd
}

func hospitalizationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hospitalization",
		Short: "Inpatient stays",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List hospitalizations",
	}
	listCmd.Flags().String("status", "", "Filter by state (hospitalizado, alta)")
	listCmd.RunE = runAuthed(func(ctx context.Context, a *app, args []string) error {
		status, _ := listCmd.Flags().GetString("status")
		stays, err := hospitalization.NewService(a.gw).List(ctx, status)
		if err != nil {
			return err
		}
		return printJSON(stays)
	})

	admitCmd := &cobra.Command{
		Use:   "admit",
		Short: "Admit a patient; the diagnosis is picked interactively",
	}
	admitCmd.Flags().Int64("patient", 0, "Patient ID")
	admitCmd.Flags().Int64("bed", 0, "Bed ID")
	admitCmd.Flags().String("date", "", "Admission date (YYYY-MM-DD)")
	admitCmd.Flags().String("cie", "", "Diagnosis CIE-10 code (skips the interactive picker)")
	admitCmd.Flags().String("diagnosis", "", "Diagnosis description (with --cie)")
	admitCmd.RunE = runAuthed(func(ctx context.Context, a *app, args []string) error {
		f := admitCmd.Flags()
		input := hospitalization.AdmitInput{}
		input.PatientID, _ = f.GetInt64("patient")
		input.BedID, _ = f.GetInt64("bed")
		input.AdmissionDate, _ = f.GetString("date")
		input.DiagnosisCode, _ = f.GetString("cie")
		input.DiagnosisDescription, _ = f.GetString("diagnosis")

		if input.DiagnosisCode == "" {
			code, desc, err := pickDiagnosis(ctx, a)
			if err != nil {
				return err
			}
			input.DiagnosisCode, input.DiagnosisDescription = code, desc
		}

		stay, err := hospitalization.NewService(a.gw).Admit(ctx, input)
		if err != nil {
			return err
		}
		return printJSON(stay)
	})

	dischargeCmd := &cobra.Command{
		Use:   "discharge <id>",
		Short: "Discharge a hospitalized patient",
		Args:  cobra.ExactArgs(1),
	}
	dischargeCmd.RunE = runAuthed(func(ctx context.Context, a *app, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := hospitalization.NewService(a.gw).Discharge(ctx, id); err != nil {
			return err
		}
		fmt.Println("Alta registrada")
		return nil
	})

	cmd.AddCommand(listCmd, admitCmd, dischargeCmd)
	return cmd
}
