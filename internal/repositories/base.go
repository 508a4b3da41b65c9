package repositories

// ===========================================================================
// Shared repository types
// ===========================================================================

// FindOptions query options for list methods
type FindOptions struct {
	// Offset starting position (pagination)
	Offset int

	// Limit max records
	Limit int

	// OrderBy column to sort by
	OrderBy string

	// OrderDir "asc" or "desc"
	OrderDir string

	// Filters extra filter conditions
	Filters map[string]interface{}
}

// SetDefaults fills in default values
func (o *FindOptions) SetDefaults() {
	if o.Limit == 0 {
		o.Limit = 20
	}
	if o.OrderBy == "" {
		o.OrderBy = "created_at"
	}
	if o.OrderDir == "" {
		o.OrderDir = "desc"
	}
}

// GetOrderClause returns the ORDER BY clause
func (o *FindOptions) GetOrderClause() string {
	return o.OrderBy + " " + o.OrderDir
}
