package companies

import "time"

type Company struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Website     string    `json:"website,omitempty"`
	Location    string    `json:"location,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	LogoURL     string    `json:"logoUrl,omitempty"`
	OwnerID     string    `json:"ownerId,omitempty"` // Employer account that manages this company
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}
