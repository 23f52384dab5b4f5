package models

// Persona is a named system-prompt configuration used to steer model replies.
// Timestamps are epoch milliseconds.
type Persona struct {
	ID           string `json:"id" gorm:"primaryKey"`
	Name         string `json:"name" gorm:"not null"`
	SystemPrompt string `json:"system_prompt" gorm:"not null"`
	CreatedAt    int64  `json:"created_at" gorm:"not null"`
	UpdatedAt    int64  `json:"updated_at" gorm:"not null"`
}

// CreatePersonaRequest is the payload for creating a new persona.
type CreatePersonaRequest struct {
	Name         string `json:"name"`
	SystemPrompt string `json:"system_prompt"`
}

// UpdatePersonaRequest replaces a persona's name and prompt in full.
type UpdatePersonaRequest struct {
	Name         string `json:"name"`
	SystemPrompt string `json:"system_prompt"`
}
