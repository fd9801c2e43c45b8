package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// StringList is a []string stored as a JSON array in a text column.
// Works the same on Postgres and SQLite.
type StringList []string

// Scan implements the sql.Scanner interface for reading from database
func (l *StringList) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}

	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

// Value implements the driver.Valuer interface for writing to database
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func generateUUID() string {
	return uuid.New().String()
}

// All lists every model for auto-migration, parents before children
func All() []interface{} {
	return []interface{}{
		&User{},
		&PasswordReset{},
		&OAuthAccount{},
		&Profile{},
		&Friendship{},
		&Follow{},
		&Post{},
		&Comment{},
		&PostLike{},
		&CommentLike{},
		&Retweet{},
		&Conversation{},
		&Message{},
		&Notification{},
		&Strain{},
		&StrainReview{},
		&StrainFavorite{},
		&SmokingPuff{},
	}
}
