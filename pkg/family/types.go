package family

import (
	"encoding/json"
	"strconv"
)

// ID identifies a person, marriage, link or branch. Zero means "none".
type ID int64

// NoID is the zero ID used for unknown references.
const NoID ID = 0

// String returns the decimal form used in node and edge identifiers.
func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

// ExternalBranchOrder is the branch order from which a branch is treated as the
// external pseudo-branch of spouses who married into the family.
const ExternalBranchOrder = 99

// Gender of a person.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// Person is a single individual.
type Person struct {
	ID         ID     `json:"id"`
	FullName   string `json:"full_name"`
	Nickname   string `json:"nickname,omitempty"`
	Gender     Gender `json:"gender"`
	BirthDate  *Date  `json:"birth_date,omitempty"`
	DeathDate  *Date  `json:"death_date,omitempty"`
	IsAlive    bool   `json:"is_alive"`
	BranchID   ID     `json:"branch_id,omitempty"`
	Generation int    `json:"generation"`
	BirthOrder *int   `json:"birth_order,omitempty"`
}

// IsMale reports whether the person is recorded as male.
func (p Person) IsMale() bool { return p.Gender == Male }

// DisplayName returns the nickname when set, otherwise the full name.
func (p Person) DisplayName() string {
	if p.Nickname != "" {
		return p.Nickname
	}
	return p.FullName
}

// Marriage joins a husband and a wife.
//
// IsActive defaults to true when absent from JSON input. IsInternal is carried
// for round-trip fidelity only.
type Marriage struct {
	ID         ID   `json:"id"`
	HusbandID  ID   `json:"husband_id"`
	WifeID     ID   `json:"wife_id"`
	IsActive   bool `json:"is_active"`
	IsInternal bool `json:"is_internal,omitempty"`
}

// UnmarshalJSON decodes a marriage, defaulting is_active to true.
func (m *Marriage) UnmarshalJSON(data []byte) error {
	type raw Marriage
	aux := struct {
		*raw
		IsActive *bool `json:"is_active"`
	}{raw: (*raw)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	m.IsActive = aux.IsActive == nil || *aux.IsActive
	return nil
}

// Partner returns the other spouse of the marriage, or NoID if id is not
// part of it.
func (m Marriage) Partner(id ID) ID {
	switch id {
	case m.HusbandID:
		return m.WifeID
	case m.WifeID:
		return m.HusbandID
	}
	return NoID
}

// ParentChildLink records the birth parents of a child. Either parent may be
// unknown, and the marriage may be absent when only one parent is recorded.
type ParentChildLink struct {
	ChildID    ID   `json:"child_id"`
	MarriageID *ID  `json:"marriage_id,omitempty"`
	FatherID   *ID  `json:"father_id,omitempty"`
	MotherID   *ID  `json:"mother_id,omitempty"`
	BirthOrder *int `json:"birth_order,omitempty"`
}

// Branch is a named clan descending from one founder.
type Branch struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// IsExternal reports whether the branch groups spouses from outside the family.
func (b Branch) IsExternal() bool { return b.Order >= ExternalBranchOrder }

// Parents holds the resolved birth parents of a child. Unknown parents are NoID.
type Parents struct {
	Father ID
	Mother ID
}

// Known returns the known parent ids, father first.
func (p Parents) Known() []ID {
	var ids []ID
	if p.Father != NoID {
		ids = append(ids, p.Father)
	}
	if p.Mother != NoID {
		ids = append(ids, p.Mother)
	}
	return ids
}

// Other returns the parent that is not id, or NoID.
func (p Parents) Other(id ID) ID {
	switch id {
	case p.Father:
		return p.Mother
	case p.Mother:
		return p.Father
	}
	return NoID
}

// Ptr returns a pointer to v. It keeps literal records in tests and fixtures
// readable.
func Ptr[T any](v T) *T { return &v }
