package biz

import (
	"strings"
	"time"

	"github.com/lk2023060901/prospect-finder/internal/crawler"
)

// Field names a BusinessRecord attribute by its JSON key.
type Field string

const (
	FieldBusinessName           Field = "business_name"
	FieldAddress                Field = "address"
	FieldPhoneNumber            Field = "phone_number"
	FieldEmail                  Field = "email"
	FieldWebsiteLink            Field = "website_link"
	FieldPostcode               Field = "postcode"
	FieldInternalNavigationLink Field = "internal_navigation_link"
)

// RecordFields lists the extractable fields in a stable order.
var RecordFields = []Field{
	FieldBusinessName,
	FieldAddress,
	FieldPhoneNumber,
	FieldEmail,
	FieldWebsiteLink,
	FieldPostcode,
	FieldInternalNavigationLink,
}

// InternalLinkNotFound is written to phone_number when a record has neither a
// website nor an internal navigation link.
const InternalLinkNotFound = "INTERNAL LINK NOT FOUND"

// State tracks a record through the pipeline.
type State string

const (
	StateExtracted       State = "extracted"
	StateContactResolved State = "contact_resolved"
	StateEnriched        State = "enriched"
	StatePersisted       State = "persisted"
)

// BusinessRecord is one kids-activity business listing.
type BusinessRecord struct {
	ID                     string `json:"id"`
	BusinessName           string `json:"business_name"`
	Address                string `json:"address"`
	PhoneNumber            string `json:"phone_number"`
	Email                  string `json:"email"`
	WebsiteLink            string `json:"website_link"`
	Postcode               string `json:"postcode"`
	InternalNavigationLink string `json:"internal_navigation_link"`

	Location          string    `json:"location,omitempty"`
	RequestedPostcode string    `json:"requested_postcode,omitempty"`
	SourceURL         string    `json:"source_url,omitempty"`
	CreatedAt         time.Time `json:"created_at"`

	State State `json:"-"`
}

// Get returns the value of f.
func (r *BusinessRecord) Get(f Field) string {
	if p := r.field(f); p != nil {
		return *p
	}
	return ""
}

func (r *BusinessRecord) field(f Field) *string {
	switch f {
	case FieldBusinessName:
		return &r.BusinessName
	case FieldAddress:
		return &r.Address
	case FieldPhoneNumber:
		return &r.PhoneNumber
	case FieldEmail:
		return &r.Email
	case FieldWebsiteLink:
		return &r.WebsiteLink
	case FieldPostcode:
		return &r.Postcode
	case FieldInternalNavigationLink:
		return &r.InternalNavigationLink
	}
	return nil
}

// FillMissing copies values into fields that are currently empty and returns
// the fields it changed. Non-empty fields are never overwritten and blank
// candidates are ignored.
func (r *BusinessRecord) FillMissing(values map[Field]string) []Field {
	var filled []Field
	for _, f := range RecordFields {
		v, ok := values[f]
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		p := r.field(f)
		if v == "" || p == nil || strings.TrimSpace(*p) != "" {
			continue
		}
		*p = v
		filled = append(filled, f)
	}
	return filled
}

// MergeContact fills phone and email from a successful contact probe.
func (r *BusinessRecord) MergeContact(info crawler.ContactInfo) []Field {
	if !info.Success {
		return nil
	}
	return r.FillMissing(map[Field]string{
		FieldPhoneNumber: info.PhoneNumber,
		FieldEmail:       info.Email,
	})
}

// HasContact reports whether both phone and email are set.
func (r *BusinessRecord) HasContact() bool {
	return strings.TrimSpace(r.PhoneNumber) != "" && strings.TrimSpace(r.Email) != ""
}

// IsEmpty reports whether every extractable field is blank.
func (r *BusinessRecord) IsEmpty() bool {
	for _, f := range RecordFields {
		if strings.TrimSpace(r.Get(f)) != "" {
			return false
		}
	}
	return true
}

// Advance moves the record forward. Moving backwards is ignored.
func (r *BusinessRecord) Advance(to State) {
	if stateOrder[to] > stateOrder[r.State] {
		r.State = to
	}
}

var stateOrder = map[State]int{
	"":                   0,
	StateExtracted:       1,
	StateContactResolved: 2,
	StateEnriched:        3,
	StatePersisted:       4,
}
