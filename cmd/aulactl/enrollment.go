package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/client"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"go.uber.org/multierr"
)

func parseIDs(flagName, raw string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s %q: %w", flagName, part, err)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("--%s is required", flagName)
	}
	return ids, nil
}

func optionalID(flagName, raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --%s: %w", flagName, err)
	}
	return id, nil
}

func assignCmd(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("assign", flag.ExitOnError)
	rawCourses := fs.String("course", "", "Comma separated course ids")
	rawStudents := fs.String("student", "", "Comma separated student ids")
	rawRenewal := fs.String("renewal", "", "Access end date, YYYY-MM-DD")
	fs.Parse(args)

	courses, err := parseIDs("course", *rawCourses)
	if err != nil {
		return err
	}
	students, err := parseIDs("student", *rawStudents)
	if err != nil {
		return err
	}

	var renewal *time.Time
	if *rawRenewal != "" {
		t, err := time.ParseInLocation(time.DateOnly, *rawRenewal, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --renewal: %w", err)
		}
		renewal = &t
	}

	switch {
	case len(courses) == 1 && len(students) == 1:
		err = c.AssignCourseToStudent(ctx, courses[0], students[0], renewal)
	case len(courses) == 1:
		err = c.AssignCourseToMultipleStudents(ctx, courses[0], students, renewal)
	case len(students) == 1:
		err = c.AssignMultipleCoursesToStudent(ctx, students[0], courses, renewal)
	default:
		err = c.AssignMultipleCoursesToMultipleStudents(ctx, students, courses, renewal)
	}

	failures := multierr.Errors(err)
	for _, f := range failures {
		fmt.Fprintf(os.Stderr, "  FAILED %v\n", f)
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d assignment(s) failed", len(failures))
	}
	fmt.Printf("Assigned %d course(s) to %d student(s)\n", len(courses), len(students))
	return nil
}

func accessCmd(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("access", flag.ExitOnError)
	rawCourse := fs.String("course", "", "Course id")
	rawStudent := fs.String("student", "", "Student id")
	fs.Parse(args)

	course, err := uuid.Parse(*rawCourse)
	if err != nil {
		return fmt.Errorf("invalid --course: %w", err)
	}
	student, err := uuid.Parse(*rawStudent)
	if err != nil {
		return fmt.Errorf("invalid --student: %w", err)
	}

	ok, err := c.HasCourseAccess(ctx, course, student)
	if err != nil {
		return err
	}
	if ok {
		fmt.Println("Access granted")
	} else {
		fmt.Println("No access")
	}
	return nil
}

func purchasesCmd(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("purchases", flag.ExitOnError)
	rawStudent := fs.String("student", "", "Only purchases of this student id")
	rawCourse := fs.String("course", "", "Only purchases of this course id")
	fs.Parse(args)

	filter, err := purchaseFilter(*rawStudent, *rawCourse)
	if err != nil {
		return err
	}

	purchases, err := c.Purchases.Find(ctx, filter)
	if err != nil {
		return err
	}

	now := time.Now()
	tw := newTable()
	fmt.Fprintln(tw, "ID\tSTUDENT\tCOURSE\tACQUIRED\tRENEWAL\tACTIVE")
	for _, p := range purchases {
		renewal := "-"
		if p.RenewalDate != nil {
			renewal = p.RenewalDate.Format(time.DateOnly)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\n",
			p.ID, p.StudentID, p.CourseID, p.AcquiredAt.Format(time.DateOnly), renewal, p.ActiveAt(now))
	}
	return tw.Flush()
}

func exportCmd(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "compras-"+time.Now().Format("20060102")+".xlsx", "Output file")
	rawStudent := fs.String("student", "", "Only purchases of this student id")
	rawCourse := fs.String("course", "", "Only purchases of this course id")
	fs.Parse(args)

	filter, err := purchaseFilter(*rawStudent, *rawCourse)
	if err != nil {
		return err
	}

	data, err := c.Purchases.Export(ctx, filter)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%d bytes)\n", *out, len(data))
	return nil
}

func purchaseFilter(rawStudent, rawCourse string) (domain.PurchaseFilter, error) {
	student, err := optionalID("student", rawStudent)
	if err != nil {
		return domain.PurchaseFilter{}, err
	}
	course, err := optionalID("course", rawCourse)
	if err != nil {
		return domain.PurchaseFilter{}, err
	}
	return domain.PurchaseFilter{StudentID: student, CourseID: course}, nil
}
