// README: Identifier type shared by bookings, drivers and vehicles.
package types

type ID string

func (id ID) String() string { return string(id) }

// IDPtr returns nil for an empty id.
func IDPtr(v string) *ID {
	if v == "" {
		return nil
	}
	id := ID(v)
	return &id
}
