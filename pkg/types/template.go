package types

import (
	"encoding/json"
	"fmt"
)

// EmailTemplate is a backend-managed email template.
type EmailTemplate struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Subject  string `json:"subject"`
	Language string `json:"lang,omitempty"`
}

// UnmarshalJSON accepts numeric or string template ids.
func (t *EmailTemplate) UnmarshalJSON(data []byte) error {
	type alias EmailTemplate
	var raw struct {
		alias
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := decodeID(raw.ID)
	if err != nil {
		return fmt.Errorf("decoding template id: %w", err)
	}
	*t = EmailTemplate(raw.alias)
	t.ID = id
	return nil
}
