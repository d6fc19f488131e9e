/**
 * @description
 * This file defines the Operator domain model: a back-office user who performs
 * every mutating action in the system. Operators authenticate with a username
 * and a salted, irreversible password hash; the full-rights flag gates the
 * creation of further operators.
 */

package domain

// Operator represents one back-office operator (the `admins` table).
type Operator struct {
	ID           int64   `json:"id"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Address      Address `json:"address"`
	Username     string  `json:"username"`
	PasswordHash string  `json:"-"`
	FullRights   bool    `json:"full_rights"`
}

// OperatorUpdate carries a partial update for an operator. The password is
// changed through its own flow, never here. Nil fields are left untouched.
type OperatorUpdate struct {
	FirstName       *string `json:"first_name,omitempty"`
	LastName        *string `json:"last_name,omitempty"`
	AddressLine1    *string `json:"address_line1,omitempty"`
	AddressLine2    *string `json:"address_line2,omitempty"`
	AddressLine3    *string `json:"address_line3,omitempty"`
	AddressCity     *string `json:"address_city,omitempty"`
	AddressPostcode *string `json:"address_postcode,omitempty"`
	FullRights      *bool   `json:"full_rights,omitempty"`
}

// Empty reports whether no field was supplied.
func (u OperatorUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil &&
		u.AddressLine1 == nil && u.AddressLine2 == nil && u.AddressLine3 == nil &&
		u.AddressCity == nil && u.AddressPostcode == nil && u.FullRights == nil
}
