package types

import (
	"encoding/json"
	"fmt"
)

// RequestStatusMinName is the shortest accepted request status name.
const RequestStatusMinName = 3

// RequestStatus is a label applied to incoming client requests.
type RequestStatus struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts numeric or string ids. Lists served in option form
// ({"value": 1, "label": "Open"}) decode too.
func (s *RequestStatus) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID    json.RawMessage `json:"id"`
		Value json.RawMessage `json:"value"`
		Name  string          `json:"name"`
		Label string          `json:"label"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	idRaw := raw.ID
	if len(idRaw) == 0 {
		idRaw = raw.Value
	}
	id, err := decodeID(idRaw)
	if err != nil {
		return fmt.Errorf("decoding request status id: %w", err)
	}
	s.ID = id
	s.Name = raw.Name
	if s.Name == "" {
		s.Name = raw.Label
	}
	return nil
}
