package data

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lk2023060901/prospect-finder/internal/pkg/database"
	"github.com/lk2023060901/prospect-finder/internal/prospect/biz"
)

// RecordJSON stores a BusinessRecord in a jsonb column.
type RecordJSON biz.BusinessRecord

func (j *RecordJSON) Scan(value interface{}) error {
	if value == nil {
		*j = RecordJSON{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported payload type %T", value)
	}
	return json.Unmarshal(raw, j)
}

func (j RecordJSON) Value() (driver.Value, error) {
	return json.Marshal(biz.BusinessRecord(j))
}

// ProspectPO is one persisted record.
type ProspectPO struct {
	ID           string     `gorm:"type:uuid;primaryKey"`
	Collection   string     `gorm:"size:64;not null;index"`
	BusinessName string     `gorm:"size:255"`
	Postcode     string     `gorm:"size:8;index"`
	Location     string     `gorm:"size:128"`
	SourceURL    string     `gorm:"size:2048"`
	Payload      RecordJSON `gorm:"type:jsonb;not null"`
	CreatedAt    time.Time  `gorm:"not null"`
}

func (ProspectPO) TableName() string {
	return "prospects"
}

// PostgresSink writes records through gorm.
type PostgresSink struct {
	db *database.DB
}

// NewPostgresSink migrates the prospects table when auto migration is on.
func NewPostgresSink(db *database.DB) (*PostgresSink, error) {
	if db == nil {
		return nil, errors.New("postgres sink requires a database")
	}
	if err := db.AutoMigrate(&ProspectPO{}); err != nil {
		return nil, err
	}
	return &PostgresSink{db: db}, nil
}

func (s *PostgresSink) Add(ctx context.Context, collection string, rec *biz.BusinessRecord) (bool, error) {
	po := toPO(collection, rec)
	if err := s.db.WithContext(ctx).Create(po).Error; err != nil {
		return false, fmt.Errorf("insert prospect: %w", err)
	}
	return true, nil
}

func toPO(collection string, rec *biz.BusinessRecord) *ProspectPO {
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return &ProspectPO{
		ID:           rec.ID,
		Collection:   collection,
		BusinessName: rec.BusinessName,
		Postcode:     rec.Postcode,
		Location:     rec.Location,
		SourceURL:    rec.SourceURL,
		Payload:      RecordJSON(*rec),
		CreatedAt:    created,
	}
}
