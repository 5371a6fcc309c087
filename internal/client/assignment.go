package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Course assignment is not transactional: a purchase may be created and the
// enrollment that follows fail. Bulk variants are best effort and return the
// failures of every item combined.

// AssignCourseToStudent records a purchase of the course for the student and
// enrolls them. renewal may be nil for a purchase without expiry date, which
// does not grant access through HasCourseAccess.
func (c *Client) AssignCourseToStudent(ctx context.Context, courseID, studentID uuid.UUID, renewal *time.Time) error {
	enrolled, err := c.Users.IsEnrolled(ctx, studentID, courseID)
	if err != nil {
		return err
	}
	if enrolled {
		return &DuplicateEnrollmentError{StudentID: studentID, CourseID: courseID}
	}

	if err := c.purchaseAndEnroll(ctx, studentID, courseID, renewal); err != nil {
		return err
	}

	c.logger.Info("[client.AssignCourseToStudent] course assigned",
		zap.String("courseID", courseID.String()),
		zap.String("studentID", studentID.String()))
	return nil
}

func (c *Client) purchaseAndEnroll(ctx context.Context, studentID, courseID uuid.UUID, renewal *time.Time) error {
	acquired := c.clock.Now()
	_, err := c.Purchases.Create(ctx, PurchaseInput{
		AcquiredAt:  &acquired,
		RenewalDate: renewal,
		StudentID:   &studentID,
		CourseID:    &courseID,
	})
	if err != nil {
		return err
	}

	if _, err := c.Users.Enroll(ctx, studentID, courseID); err != nil {
		c.logger.Error("[client.purchaseAndEnroll] purchase created but enrollment failed",
			zap.String("courseID", courseID.String()),
			zap.String("studentID", studentID.String()),
			zap.Error(err))
		return err
	}
	return nil
}

// AssignCourseToMultipleStudents assigns the course to every student
// concurrently.
func (c *Client) AssignCourseToMultipleStudents(ctx context.Context, courseID uuid.UUID, studentIDs []uuid.UUID, renewal *time.Time) error {
	return fanOut(len(studentIDs), func(i int) error {
		if err := c.AssignCourseToStudent(ctx, courseID, studentIDs[i], renewal); err != nil {
			return fmt.Errorf("student %s: %w", studentIDs[i], err)
		}
		return nil
	})
}

// AssignMultipleCoursesToStudent buys and enrolls the courses the student
// has no purchase for yet. When renewal is set every purchase the student
// already had is extended to it.
func (c *Client) AssignMultipleCoursesToStudent(ctx context.Context, studentID uuid.UUID, courseIDs []uuid.UUID, renewal *time.Time) error {
	if _, err := c.Users.FindOne(ctx, studentID); err != nil {
		return err
	}

	existing, err := c.Purchases.FindByUser(ctx, studentID)
	if err != nil {
		return err
	}

	owned := make(map[uuid.UUID]bool, len(existing))
	for _, p := range existing {
		owned[p.CourseID] = true
	}
	var missing []uuid.UUID
	for _, id := range courseIDs {
		if !owned[id] {
			owned[id] = true
			missing = append(missing, id)
		}
	}

	errs := fanOut(len(missing), func(i int) error {
		if err := c.purchaseAndEnroll(ctx, studentID, missing[i], renewal); err != nil {
			return fmt.Errorf("course %s: %w", missing[i], err)
		}
		return nil
	})

	if renewal != nil {
		errs = multierr.Append(errs, fanOut(len(existing), func(i int) error {
			_, err := c.Purchases.Update(ctx, existing[i].ID, PurchaseInput{RenewalDate: renewal})
			if err != nil {
				return fmt.Errorf("renew purchase %s: %w", existing[i].ID, err)
			}
			return nil
		}))
	}

	c.logger.Info("[client.AssignMultipleCoursesToStudent] courses assigned",
		zap.String("studentID", studentID.String()),
		zap.Int("created", len(missing)),
		zap.Int("existing", len(existing)),
		zap.Int("failed", len(multierr.Errors(errs))))
	return errs
}

// AssignMultipleCoursesToMultipleStudents runs AssignMultipleCoursesToStudent
// for each student concurrently.
func (c *Client) AssignMultipleCoursesToMultipleStudents(ctx context.Context, studentIDs, courseIDs []uuid.UUID, renewal *time.Time) error {
	return fanOut(len(studentIDs), func(i int) error {
		if err := c.AssignMultipleCoursesToStudent(ctx, studentIDs[i], courseIDs, renewal); err != nil {
			return fmt.Errorf("student %s: %w", studentIDs[i], err)
		}
		return nil
	})
}

// HasCourseAccess reports whether the student is enrolled in the course and
// holds a purchase of it whose renewal date is still ahead.
func (c *Client) HasCourseAccess(ctx context.Context, courseID, studentID uuid.UUID) (bool, error) {
	enrolled, err := c.Users.IsEnrolled(ctx, studentID, courseID)
	if err != nil || !enrolled {
		return false, err
	}

	purchases, err := c.Purchases.FindByUser(ctx, studentID)
	if err != nil {
		return false, err
	}

	now := c.clock.Now()
	for _, p := range purchases {
		if p.CourseID == courseID && p.ActiveAt(now) {
			return true, nil
		}
	}
	return false, nil
}

// fanOut runs fn for 0..n-1 concurrently and combines the errors in index
// order.
func fanOut(n int, fn func(i int) error) error {
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = fn(i)
		}(i)
	}
	wg.Wait()
	return multierr.Combine(errs...)
}
