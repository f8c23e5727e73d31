package model

import "time"

// Survey is a persisted survey owned by a user
type Survey struct {
	ID          string              `json:"id" bson:"_id,omitempty"`
	Title       string              `json:"title" bson:"title"`
	Description string              `json:"description" bson:"description"`
	CreatedBy   string              `json:"created_by" bson:"created_by"`
	Questions   []PersistedQuestion `json:"questions" bson:"questions"`
	CreatedAt   time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at" bson:"updated_at"`
	IsActive    bool                `json:"is_active" bson:"is_active"`
}

// Question returns the question with the given id
func (s *Survey) Question(id string) (*PersistedQuestion, bool) {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i], true
		}
	}
	return nil, false
}
