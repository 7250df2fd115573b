// Package pricing turns a booking shape into the amount a guardian pays.
package pricing

import (
	"maps"

	"github.com/Domenick1991/tutorbooking/internal/domain"
)

// PendingNote is shown when a package has no fixed price.
const PendingNote = "El valor del paquete se confirma por mensaje."

type Table struct {
	HourInPerson      int64         `yaml:"hour_in_person" json:"hour_in_person"`
	HourVirtual       int64         `yaml:"hour_virtual" json:"hour_virtual"`
	GroupInPersonFrom int64         `yaml:"group_in_person_from" json:"group_in_person_from"`
	GroupVirtualFrom  int64         `yaml:"group_virtual_from" json:"group_virtual_from"`
	PackagesInPerson  map[int]int64 `yaml:"packages_in_person" json:"packages_in_person"`
	PackagesVirtual   map[int]int64 `yaml:"packages_virtual" json:"packages_virtual"`
}

var DefaultTable = Table{
	HourInPerson:      65000,
	HourVirtual:       50000,
	GroupInPersonFrom: 50000,
	GroupVirtualFrom:  45000,
	PackagesInPerson:  map[int]int64{4: 250000, 8: 505000, 10: 600000},
	PackagesVirtual:   map[int]int64{4: 190000, 8: 385000, 10: 460000},
}

type Request struct {
	Mode         domain.BookingMode
	DeliveryMode domain.DeliveryMode
	Hours        int
}

// Quote carries either an amount or a note, never an error.
type Quote struct {
	Amount *int64 `json:"amount"`
	Note   string `json:"note,omitempty"`
}

func (q Quote) HasAmount() bool {
	return q.Amount != nil
}

type Calculator struct {
	table Table
}

func NewCalculator(table Table) *Calculator {
	return &Calculator{table: table.Clone().withDefaults()}
}

func (c *Calculator) Table() Table {
	return c.table
}

func (c *Calculator) Compute(req Request) Quote {
	switch req.Mode {
	case domain.BookingModeIndividual:
		if req.DeliveryMode == domain.DeliveryInPerson {
			return amount(c.table.HourInPerson)
		}
		return amount(c.table.HourVirtual)
	case domain.BookingModePackage:
		var prices map[int]int64
		switch req.DeliveryMode {
		case domain.DeliveryInPerson:
			prices = c.table.PackagesInPerson
		case domain.DeliveryVirtual:
			prices = c.table.PackagesVirtual
		}
		if price, ok := prices[req.Hours]; ok && price > 0 {
			return amount(price)
		}
		return Quote{Note: PendingNote}
	default:
		return Quote{}
	}
}

// Compute prices a request against DefaultTable.
func Compute(req Request) Quote {
	return defaultCalculator.Compute(req)
}

var defaultCalculator = NewCalculator(DefaultTable)

func amount(v int64) Quote {
	return Quote{Amount: &v}
}

// Clone returns a copy that shares no maps with t.
func (t Table) Clone() Table {
	t.PackagesInPerson = maps.Clone(t.PackagesInPerson)
	t.PackagesVirtual = maps.Clone(t.PackagesVirtual)
	return t
}

// withDefaults fills the zero fields of an override from DefaultTable.
func (t Table) withDefaults() Table {
	if t.HourInPerson == 0 {
		t.HourInPerson = DefaultTable.HourInPerson
	}
	if t.HourVirtual == 0 {
		t.HourVirtual = DefaultTable.HourVirtual
	}
	if t.GroupInPersonFrom == 0 {
		t.GroupInPersonFrom = DefaultTable.GroupInPersonFrom
	}
	if t.GroupVirtualFrom == 0 {
		t.GroupVirtualFrom = DefaultTable.GroupVirtualFrom
	}
	if len(t.PackagesInPerson) == 0 {
		t.PackagesInPerson = DefaultTable.PackagesInPerson
	}
	if len(t.PackagesVirtual) == 0 {
		t.PackagesVirtual = DefaultTable.PackagesVirtual
	}
	return t
}
