package leave

import (
	"fmt"
	"regexp"
	"slices"
	"time"
)

var employeeIDRegex = regexp.MustCompile(`^E\d{3,}$`)

// DateLayout is the only accepted leave date format.
const DateLayout = "2006-01-02"

// Account is an employee's leave ledger (value object, copied on every change).
type Account struct {
	employeeID string
	balance    int
	history    []string
}

// NewAccount validates and creates an Account.
func NewAccount(employeeID string, balance int, history []string) (Account, error) {
	if !employeeIDRegex.MatchString(employeeID) {
		return Account{}, fmt.Errorf("employee ID %q must look like E001", employeeID)
	}
	if balance < 0 {
		return Account{}, fmt.Errorf("balance must be non-negative, got %d", balance)
	}
	if err := ValidateDates(history); err != nil {
		return Account{}, err
	}
	return Account{employeeID: employeeID, balance: balance, history: slices.Clone(history)}, nil
}

// EmployeeID returns the employee identifier.
func (a *Account) EmployeeID() string { return a.employeeID }

// Balance returns the remaining leave days.
func (a *Account) Balance() int { return a.balance }

// History returns a copy of the dates already taken, in application order.
func (a *Account) History() []string { return slices.Clone(a.history) }

// CanTake reports whether days fit into the remaining balance.
func (a *Account) CanTake(days int) bool { return days <= a.balance }

// WithLeave returns a copy with the dates appended and the balance reduced.
// The caller checks CanTake first.
func (a *Account) WithLeave(dates []string) Account {
	h := make([]string, 0, len(a.history)+len(dates))
	h = append(h, a.history...)
	h = append(h, dates...)
	return Account{employeeID: a.employeeID, balance: a.balance - len(dates), history: h}
}

// ValidateDates checks every date is YYYY-MM-DD.
func ValidateDates(dates []string) error {
	for _, d := range dates {
		if _, err := time.Parse(DateLayout, d); err != nil {
			return fmt.Errorf("date %q must be in YYYY-MM-DD format", d)
		}
	}
	return nil
}
