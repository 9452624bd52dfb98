package domain

import (
	"errors"
	"slices"
	"strings"

	"gorm.io/datatypes"
)

// Customer - покупатель. Адрес обязателен и принадлежит только ему.
type Customer struct {
	ID      int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name    string   `gorm:"size:255;not null;index" json:"name"`
	Address *Address `json:"address,omitempty"`
}

// TableName фиксирует имя таблицы.
func (Customer) TableName() string { return "customers" }

// Normalize приводит поля клиента и его адреса к канонической форме.
func (c *Customer) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	if c.Address != nil {
		c.Address.Normalize()
	}
}

// Validate проверяет инварианты клиента. Владелец адреса проставляется при каскадной записи.
func (c Customer) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, ErrCustomerNameRequired)
	}
	if c.Address == nil {
		errs = append(errs, ErrCustomerAddressRequired)
	} else {
		errs = append(errs, c.Address.validateFields()...)
	}
	return errors.Join(errs...)
}

// Address - адрес клиента. Contacts хранится как множество строк.
type Address struct {
	ID         int64                       `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID int64                       `gorm:"not null;uniqueIndex" json:"customer_id"`
	Street     string                      `gorm:"size:255;not null" json:"street"`
	City       string                      `gorm:"column:city_name;size:128;not null;index" json:"city"`
	Contacts   datatypes.JSONSlice[string] `gorm:"column:contacts" json:"contacts"`
}

// TableName фиксирует имя таблицы.
func (Address) TableName() string { return "addresses" }

// Normalize сортирует контакты и убирает дубли и пустые значения.
func (a *Address) Normalize() {
	a.Street = strings.TrimSpace(a.Street)
	a.City = strings.TrimSpace(a.City)

	contacts := make([]string, 0, len(a.Contacts))
	for _, c := range a.Contacts {
		if c = strings.TrimSpace(c); c != "" {
			contacts = append(contacts, c)
		}
	}
	slices.Sort(contacts)
	a.Contacts = slices.Compact(contacts)
}

// HasContact проверяет наличие контакта.
func (a Address) HasContact(contact string) bool {
	return slices.Contains(a.Contacts, contact)
}

// Validate проверяет инварианты самостоятельно сохраняемого адреса.
func (a Address) Validate() error {
	errs := a.validateFields()
	if a.CustomerID == 0 {
		errs = append(errs, ErrAddressOwnerRequired)
	}
	return errors.Join(errs...)
}

func (a Address) validateFields() []error {
	var errs []error
	if strings.TrimSpace(a.Street) == "" {
		errs = append(errs, ErrAddressStreetRequired)
	}
	if strings.TrimSpace(a.City) == "" {
		errs = append(errs, ErrAddressCityRequired)
	}
	return errs
}
