// Package contacts reads the single-file contact record used to resolve the
// WhatsApp recipient for a call.
package contacts

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Contact is the stored contact record.
type Contact struct {
	Name               string `json:"name,omitempty"`
	PhoneNumber        string `json:"phone_number"`
	PropertyOfInterest string `json:"property_of_interest,omitempty"`
}

// Store loads contact data from a JSON file.
type Store struct {
	path string
}

// NewStore creates a store for the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads and validates the contact record. The phone number is cleaned of
// spaces and hyphens and returned with a + prefix.
func (s *Store) Load() (Contact, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Contact{}, fmt.Errorf("error reading contact data: %w", err)
	}

	var c Contact
	if err := json.Unmarshal(data, &c); err != nil {
		return Contact{}, fmt.Errorf("error parsing contact data: %w", err)
	}

	if c.PhoneNumber == "" {
		return Contact{}, fmt.Errorf("no phone number found in contact data")
	}

	phone := strings.NewReplacer(" ", "", "-", "").Replace(c.PhoneNumber)
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}
	c.PhoneNumber = phone

	return c, nil
}
