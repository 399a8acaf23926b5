package messagequeue

import (
	"encoding/json"
	"fmt"
)

// Validate checks whether data is valid JSON conforming to the schema
// associated with the given subject. Unknown subjects only need to be
// valid JSON.
func Validate(subject string, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("invalid JSON on subject %s", subject)
	}

	var eventID string
	switch subject {
	case SubjectTodoCreated, SubjectTodoUpdated, SubjectTodoDeleted:
		var p TodoEventPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("schema validation failed for %s: %w", subject, err)
		}
		if p.TodoID == 0 {
			return fmt.Errorf("schema validation failed for %s: todo_id is required", subject)
		}
		eventID = p.EventID
	case SubjectTagCreated, SubjectTagDeleted:
		var p TagEventPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("schema validation failed for %s: %w", subject, err)
		}
		if p.TagID == 0 {
			return fmt.Errorf("schema validation failed for %s: tag_id is required", subject)
		}
		eventID = p.EventID
	case SubjectTodosArchived, SubjectDataCleared:
		var p BulkEventPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("schema validation failed for %s: %w", subject, err)
		}
		eventID = p.EventID
	default:
		return nil
	}

	if eventID == "" {
		return fmt.Errorf("schema validation failed for %s: event_id is required", subject)
	}
	return nil
}
