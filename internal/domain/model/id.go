package model

import "strings"

// Kind tags for identifiers. They keep job and employee identifiers from being
// mixed up at compile time while sharing one implementation.
type (
	jobKind      struct{}
	employeeKind struct{}
)

// ID is an identifier with a mandatory formal code and an optional
// human-readable label. Equality and ordering use the formal code only.
type ID[K any] struct {
	formal string
	label  string
}

// JobID identifies a job role.
type JobID = ID[jobKind]

// EmployeeID identifies a person.
type EmployeeID = ID[employeeKind]

// NewJobID returns a JobID with the given formal code and optional label.
func NewJobID(formal string, label ...string) JobID {
	return newID[jobKind](formal, label)
}

// NewEmployeeID returns an EmployeeID with the given formal code and optional label.
func NewEmployeeID(formal string, label ...string) EmployeeID {
	return newID[employeeKind](formal, label)
}

func newID[K any](formal string, label []string) ID[K] {
	id := ID[K]{formal: strings.TrimSpace(formal)}
	if len(label) > 0 {
		id.label = label[0]
	}
	return id
}

// Formal returns the unambiguous code.
func (id ID[K]) Formal() string { return id.formal }

// Label returns the informal short name, possibly empty.
func (id ID[K]) Label() string { return id.label }

// WithLabel returns a copy of id carrying the given label.
func (id ID[K]) WithLabel(label string) ID[K] {
	id.label = label
	return id
}

// Equal reports whether both identifiers share the same formal code.
func (id ID[K]) Equal(o ID[K]) bool { return id.formal == o.formal }

// Compare orders identifiers by formal code.
func (id ID[K]) Compare(o ID[K]) int { return strings.Compare(id.formal, o.formal) }

// IsZero reports whether the formal code is empty.
func (id ID[K]) IsZero() bool { return id.formal == "" }

// String returns the formal code.
func (id ID[K]) String() string { return id.formal }

// Employee is a person whose workload history is tracked.
type Employee struct {
	ID   EmployeeID
	Name string
}

// NewEmployee returns an Employee with the given formal id and name.
func NewEmployee(id, name string) Employee {
	return Employee{ID: NewEmployeeID(id), Name: name}
}

// Equal compares the formal id and the name.
func (e Employee) Equal(o Employee) bool {
	return e.ID.Equal(o.ID) && e.Name == o.Name
}
