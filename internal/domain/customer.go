/**
 * @description
 * This file defines the Customer domain model and its address value type.
 * Customers are the owning side of every bank account; the five-part address
 * mirrors the back-office record layout (line1, city and postcode are always
 * present on a persisted row, lines 2 and 3 are optional).
 *
 * @notes
 * - These structs carry no I/O; persistence lives in internal/store.
 */

package domain

// Address is the five-part postal address attached to customers and operators.
type Address struct {
	Line1    string  `json:"line1"`
	Line2    *string `json:"line2,omitempty"`
	Line3    *string `json:"line3,omitempty"`
	City     string  `json:"city"`
	Postcode string  `json:"postcode"`
}

// Valid reports whether the required address parts are present.
func (a Address) Valid() bool {
	return a.Line1 != "" && a.City != "" && a.Postcode != ""
}

// Customer represents one back-office customer record.
// This struct maps directly to the `customers` table.
type Customer struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Address   Address `json:"address"`
}

// FullName returns the customer's display name.
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// CustomerUpdate carries a partial update for a customer. Nil fields are left
// untouched; at least one field must be set for an update to be accepted.
type CustomerUpdate struct {
	FirstName       *string `json:"first_name,omitempty"`
	LastName        *string `json:"last_name,omitempty"`
	AddressLine1    *string `json:"address_line1,omitempty"`
	AddressLine2    *string `json:"address_line2,omitempty"`
	AddressLine3    *string `json:"address_line3,omitempty"`
	AddressCity     *string `json:"address_city,omitempty"`
	AddressPostcode *string `json:"address_postcode,omitempty"`
}

// Empty reports whether no field was supplied.
func (u CustomerUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil &&
		u.AddressLine1 == nil && u.AddressLine2 == nil && u.AddressLine3 == nil &&
		u.AddressCity == nil && u.AddressPostcode == nil
}
