package domain

// Category labels journals or individual legs.
type Category struct {
	CategoryID string `json:"categoryID"`
	UserID     string `json:"userID"`
	Name       string `json:"name"`
	AuditFields
}

