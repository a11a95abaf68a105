package util

import "strings"

// Param is a broadcast value: a vehicle-scoped key/value pair, or an
// account-level pair if Vin is nil
type Param struct {
	Vin *string
	Key string
	Val interface{}
}

// UniqueID returns the unique identifier of a parameter
func (p Param) UniqueID() string {
	var b strings.Builder

	if p.Vin != nil {
		b.WriteString(*p.Vin)
		b.WriteString(".")
	}
	b.WriteString(p.Key)

	return b.String()
}
