/**
 * @description
 * This file implements the dynamic search filter composer shared by customer
 * and account lookups. Every optional search criterion is accumulated as a
 * (column, value, comparator) predicate and rendered into a single WHERE
 * clause with $n parameter binding; caller-supplied values are never
 * interpolated into SQL text.
 *
 * Composition rules:
 * - All present predicates are joined with one boolean operator for the whole
 *   query: AND when MatchAll is set, OR otherwise.
 * - Text predicates honor Exact: equality when set, case-sensitive substring
 *   containment when not.
 * - Numeric predicates carry their own comparator token (">", "=", "<");
 *   ">" and "<" are inclusive to preserve the existing search semantics.
 * - The All flag bypasses predicate composition entirely and selects every
 *   row of the entity kind.
 */

package store

import (
	"fmt"
	"strings"
)

// Comparator tokens accepted by numeric predicates. Greater and Less are
// inclusive (>= and <=).
const (
	CmpGreater = ">"
	CmpEqual   = "="
	CmpLess    = "<"
)

// AmountCond is a numeric search criterion over an integer column.
type AmountCond struct {
	Value int64  `json:"value"`
	Op    string `json:"op"` // one of ">", "=", "<"; defaults to "="
}

// RateCond is a numeric search criterion over a decimal column.
type RateCond struct {
	Value float64 `json:"value"`
	Op    string  `json:"op"`
}

// CustomerFilter holds the optional search criteria for customers. Nil fields
// are not search criteria. All selects every customer regardless of
// predicates; with no predicates and All unset, searches return
// ErrNoSearchData.
type CustomerFilter struct {
	ID              *int64
	FirstName       *string
	LastName        *string
	AddressLine1    *string
	AddressLine2    *string
	AddressLine3    *string
	AddressCity     *string
	AddressPostcode *string

	MatchAll bool
	Exact    bool
	All      bool
}

func (f CustomerFilter) predicates(prefix string) []predicate {
	var preds []predicate
	if f.ID != nil {
		preds = append(preds, numericPredicate(prefix+"id", *f.ID, CmpEqual))
	}
	for _, tp := range []struct {
		column string
		value  *string
	}{
		{"first_name", f.FirstName},
		{"last_name", f.LastName},
		{"address_line1", f.AddressLine1},
		{"address_line2", f.AddressLine2},
		{"address_line3", f.AddressLine3},
		{"address_city", f.AddressCity},
		{"address_postcode", f.AddressPostcode},
	} {
		if tp.value != nil {
			preds = append(preds, textPredicate(prefix+tp.column, *tp.value))
		}
	}
	return preds
}

// HasCriteria reports whether at least one search criterion was supplied.
func (f CustomerFilter) HasCriteria() bool {
	return len(f.predicates("")) > 0
}

// AccountFilter holds the optional search criteria for accounts. Balance,
// interest rate and overdraft limit additionally carry per-field comparator
// tokens.
type AccountFilter struct {
	ID             *int64
	AccountNumber  *string
	AccountName    *string
	CustomerID     *int64
	Balance        *AmountCond
	InterestRate   *RateCond
	OverdraftLimit *AmountCond

	MatchAll bool
	Exact    bool
	All      bool
}

func (f AccountFilter) predicates(prefix string) []predicate {
	var preds []predicate
	if f.ID != nil {
		preds = append(preds, numericPredicate(prefix+"id", *f.ID, CmpEqual))
	}
	if f.AccountNumber != nil {
		preds = append(preds, textPredicate(prefix+"account_number", *f.AccountNumber))
	}
	if f.AccountName != nil {
		preds = append(preds, textPredicate(prefix+"account_name", *f.AccountName))
	}
	if f.CustomerID != nil {
		preds = append(preds, numericPredicate(prefix+"customer_id", *f.CustomerID, CmpEqual))
	}
	if f.Balance != nil {
		preds = append(preds, numericPredicate(prefix+"balance", f.Balance.Value, f.Balance.Op))
	}
	if f.InterestRate != nil {
		preds = append(preds, numericPredicate(prefix+"interest_rate", f.InterestRate.Value, f.InterestRate.Op))
	}
	if f.OverdraftLimit != nil {
		preds = append(preds, numericPredicate(prefix+"overdraft_limit", f.OverdraftLimit.Value, f.OverdraftLimit.Op))
	}
	return preds
}

// HasCriteria reports whether at least one search criterion was supplied.
func (f AccountFilter) HasCriteria() bool {
	return len(f.predicates("")) > 0
}

type predicateKind int

const (
	kindText predicateKind = iota
	kindNumeric
)

// predicate is one accumulated search criterion. New searchable fields only
// need to append another predicate; the AND/OR/exact rendering never changes.
type predicate struct {
	column string
	value  interface{}
	op     string
	kind   predicateKind
}

func textPredicate(column, value string) predicate {
	return predicate{column: column, value: value, kind: kindText}
}

func numericPredicate(column string, value interface{}, op string) predicate {
	return predicate{column: column, value: value, op: op, kind: kindNumeric}
}

// sqlOp maps a comparator token to its inclusive SQL operator.
func sqlOp(token string) string {
	switch token {
	case CmpGreater:
		return ">="
	case CmpLess:
		return "<="
	default:
		return "="
	}
}

// buildWhere renders the accumulated predicates into a WHERE clause and its
// bound arguments. argPos is the first placeholder number to use, so callers
// can prepend their own bound arguments. An empty predicate list yields an
// empty clause.
func buildWhere(preds []predicate, matchAll, exact bool, argPos int) (string, []interface{}) {
	if len(preds) == 0 {
		return "", nil
	}

	terms := make([]string, 0, len(preds))
	args := make([]interface{}, 0, len(preds))
	for _, p := range preds {
		switch p.kind {
		case kindText:
			if exact {
				terms = append(terms, fmt.Sprintf("%s = $%d", p.column, argPos))
			} else {
				// Case-sensitive containment: the value must appear anywhere
				// within the stored field.
				terms = append(terms, fmt.Sprintf("POSITION($%d IN %s) > 0", argPos, p.column))
			}
		case kindNumeric:
			terms = append(terms, fmt.Sprintf("%s %s $%d", p.column, sqlOp(p.op), argPos))
		}
		args = append(args, p.value)
		argPos++
	}

	joiner := " OR "
	if matchAll {
		joiner = " AND "
	}
	return "WHERE " + strings.Join(terms, joiner), args
}
