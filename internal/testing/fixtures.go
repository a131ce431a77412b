package testing

import (
	"fmt"
	"time"

	"github.com/shanep/canvas-tools/internal/platform/ec2"
	"github.com/shanep/canvas-tools/internal/platform/iam"
	"github.com/shanep/canvas-tools/internal/roster"
)

// Roster returns a canned roster of n students with sequential ids and
// predictable emails (student1@example.edu, student2@example.edu, ...).
func Roster(n int) []roster.Student {
	students := make([]roster.Student, 0, n)
	for i := 1; i <= n; i++ {
		students = append(students, roster.Student{
			ID:    int64(i),
			Name:  fmt.Sprintf("Student %d", i),
			Email: fmt.Sprintf("student%d@example.edu", i),
		})
	}
	return students
}

// RunningInstance returns an instance in the running state with a public
// address derived from its numeric suffix.
func RunningInstance(id, student string) ec2.Instance {
	return ec2.Instance{
		ID:       id,
		Name:     student + "-vm",
		Student:  student,
		State:    ec2.StateRunning,
		PublicIP: "198.51.100.1",
	}
}

// PendingInstance returns an instance still in the pending state.
func PendingInstance(id, student string) ec2.Instance {
	return ec2.Instance{
		ID:      id,
		Name:    student + "-vm",
		Student: student,
		State:   ec2.StatePending,
	}
}

// PolicyVersions returns n stored policy versions v1..vn with ascending
// creation times. The last version is the default.
func PolicyVersions(n int) []iam.PolicyVersion {
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	versions := make([]iam.PolicyVersion, 0, n)
	for i := 1; i <= n; i++ {
		versions = append(versions, iam.PolicyVersion{
			ID:         fmt.Sprintf("v%d", i),
			IsDefault:  i == n,
			CreateDate: base.Add(time.Duration(i) * time.Hour),
		})
	}
	return versions
}
