package employee

import "errors"

var (
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrSalaryStructureNotFound = errors.New("salary structure not found")
	ErrStructureOverlap        = errors.New("salary structure overlaps an existing version")
)
