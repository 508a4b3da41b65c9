package models

// ===========================================================================
// Models index
// Feeds database.AutoMigrate with every table this service owns
// ===========================================================================

// AllModels returns the full model list for migration
func AllModels() []interface{} {
	return []interface{}{
		&User{},            // salespeople / dashboard users
		&WhatsAppInstance{},
		&Contact{},
		&Lead{},
		&Message{},
		&RoundRobinConfig{},
		&Negotiation{},
		&LeadAssignment{},
		&Notification{},
		&InteractionLog{},
	}
}
