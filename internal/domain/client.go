package domain

import (
	"fmt"
	"time"
)

// Placeholder values applied to omitted client fields.
const (
	DefaultCompanyName = "Bogus Inc"
	DefaultFirstName   = "Jon"
	DefaultLastName    = "Smith"
	DefaultEmail       = "bogus@test.com"
	DefaultPhone       = "5555555555"
	DefaultAddress     = "123 Bogus Ave"
	DefaultCity        = "Midland"
	DefaultState       = "Texas"
)

// Client is the customer on whose behalf tickets are opened.
type Client struct {
	ID          string
	CompanyName string
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Address     string
	City        string
	State       string
	ClientSince *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ApplyDefaults fills every blank text field with its placeholder.
func (c *Client) ApplyDefaults() {
	fill := func(field *string, value string) {
		if *field == "" {
			*field = value
		}
	}
	fill(&c.CompanyName, DefaultCompanyName)
	fill(&c.FirstName, DefaultFirstName)
	fill(&c.LastName, DefaultLastName)
	fill(&c.Email, DefaultEmail)
	fill(&c.Phone, DefaultPhone)
	fill(&c.Address, DefaultAddress)
	fill(&c.City, DefaultCity)
	fill(&c.State, DefaultState)
}

// URL returns the detail page path.
func (c *Client) URL() string {
	return "/client/" + c.ID
}

func (c *Client) String() string {
	return fmt.Sprintf("%s, %s", c.LastName, c.FirstName)
}
