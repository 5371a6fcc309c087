package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/client"
	"github.com/novaacademy/aula-virtual/internal/domain"
)

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func categoriesCmd(ctx context.Context, c *client.Client, _ []string) error {
	categories, err := c.Categories.FindAll(ctx)
	if err != nil {
		return err
	}

	tw := newTable()
	fmt.Fprintln(tw, "ID\tNAME\tCOURSES")
	for _, cat := range categories {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", cat.ID, cat.Name, len(cat.CourseIDs))
	}
	return tw.Flush()
}

func coursesCmd(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("courses", flag.ExitOnError)
	category := fs.String("category", "", "Only courses of this category id")
	teacher := fs.String("teacher", "", "Only courses taught by this user id")
	fs.Parse(args)

	var (
		courses []client.Course
		err     error
	)
	switch {
	case *category != "":
		id, perr := uuid.Parse(*category)
		if perr != nil {
			return fmt.Errorf("invalid --category: %w", perr)
		}
		courses, err = c.Courses.FindByCategory(ctx, id)
	case *teacher != "":
		id, perr := uuid.Parse(*teacher)
		if perr != nil {
			return fmt.Errorf("invalid --teacher: %w", perr)
		}
		courses, err = c.Courses.FindByTeacher(ctx, id)
	default:
		courses, err = c.Courses.FindAll(ctx)
	}
	if err != nil {
		return err
	}

	tw := newTable()
	fmt.Fprintln(tw, "ID\tNAME\tDIFFICULTY\tPRICE\tRATING")
	for _, course := range courses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f\n", course.ID, course.Name, course.Difficulty, course.Price.StringFixed(2), course.Rating)
	}
	return tw.Flush()
}

func courseCmd(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("course", flag.ExitOnError)
	rawID := fs.String("id", "", "Course id")
	fs.Parse(args)

	id, err := uuid.Parse(*rawID)
	if err != nil {
		return fmt.Errorf("invalid --id: %w", err)
	}

	details, err := c.Courses.FindWithDetails(ctx, id)
	if err != nil {
		return err
	}

	course := details.Course
	fmt.Printf("%s (%s)\n", course.Name, course.Difficulty)
	if details.Category != nil {
		fmt.Printf("  category:    %s\n", details.Category.Name)
	}
	fmt.Printf("  price:       %s\n", course.Price.StringFixed(2))
	fmt.Printf("  duration:    %s\n", course.Duration)
	fmt.Printf("  students:    %d\n", details.StudentCount)
	fmt.Printf("  videos:      %d (%d zoom)\n", len(course.Videos), details.ZoomLiveCount)

	names := make([]string, len(course.Instructors))
	for i, u := range course.Instructors {
		names[i] = u.Name
	}
	fmt.Printf("  instructors: %s\n", strings.Join(names, ", "))
	return nil
}

func livesCmd(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("lives", flag.ExitOnError)
	zoom := fs.Bool("zoom", false, "Only Zoom lives")
	fs.Parse(args)

	var (
		lives []client.Live
		err   error
	)
	if *zoom {
		lives, err = c.Lives.FindZoomLives(ctx)
	} else {
		lives, err = c.Lives.FindAll(ctx)
	}
	if err != nil {
		return err
	}

	tw := newTable()
	fmt.Fprintln(tw, "ID\tNAME\tZOOM\tURL")
	for _, l := range lives {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", l.ID, l.Name, l.IsZoomLive, l.VideoURL)
	}
	return tw.Flush()
}

func usersCmd(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("users", flag.ExitOnError)
	role := fs.String("role", "", "Only users with this role (admin, teacher, student)")
	fs.Parse(args)

	var (
		users []client.User
		err   error
	)
	if *role != "" {
		r := domain.Role(*role)
		if !r.IsValid() {
			return fmt.Errorf("invalid --role %q", *role)
		}
		users, err = c.Users.FindByRole(ctx, r)
	} else {
		users, err = c.Users.FindAll(ctx)
	}
	if err != nil {
		return err
	}

	tw := newTable()
	fmt.Fprintln(tw, "ID\tNOVA ID\tNAME\tEMAIL\tROLE")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.NovaID, u.Name, u.Email, u.Role)
	}
	return tw.Flush()
}
