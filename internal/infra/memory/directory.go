package memory

import (
	"context"

	"live-practice-service/internal/domain"
)

// Directory answers class ownership and enrollment questions from static
// maps. The learning platform owns the real records; this stands in for
// tests and dev mode.
type Directory struct {
	// classID -> teacher IDs who own or co-own it
	owners map[string][]string
	// classID -> enrolled student IDs
	students map[string][]string
}

func NewDirectory(owners, students map[string][]string) *Directory {
	return &Directory{owners: owners, students: students}
}

func (d *Directory) OwnsClass(_ context.Context, teacherID, classID string) (bool, error) {
	owners, ok := d.owners[classID]
	if !ok {
		return false, domain.ErrClassNotFound
	}
	for _, id := range owners {
		if id == teacherID {
			return true, nil
		}
	}
	return false, nil
}

func (d *Directory) IsEnrolled(_ context.Context, studentID, classID string) (bool, error) {
	for _, id := range d.students[classID] {
		if id == studentID {
			return true, nil
		}
	}
	return false, nil
}
