package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Survey is one authored survey. Plan and Rules hold canonical JSON produced
// by the canon converters.
type Survey struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string         `json:"title"`
	Language  string         `json:"language"`
	Status    string         `json:"status"`
	Prompt    string         `json:"prompt"`
	Plan      datatypes.JSON `json:"plan,omitempty"`
	Rules     datatypes.JSON `json:"rules,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

const (
	StatusDraft     = "draft"
	StatusGenerated = "generated"
	StatusArchived  = "archived"
)

type SurveyRepo struct{ DB *gorm.DB }

func NewSurveyRepo(db *gorm.DB) *SurveyRepo { return &SurveyRepo{DB: db} }

// Create stores a new survey; a zero ID is assigned.
func (r *SurveyRepo) Create(ctx context.Context, s *Survey) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = StatusDraft
	}
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *SurveyRepo) Get(ctx context.Context, id uuid.UUID) (*Survey, error) {
	var s Survey
	err := r.DB.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns surveys newest first.
func (r *SurveyRepo) List(ctx context.Context, limit int) ([]Survey, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []Survey
	err := r.DB.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&out).Error
	return out, err
}

// SavePlan overwrites the stored canonical plan blob.
func (r *SurveyRepo) SavePlan(ctx context.Context, id uuid.UUID, plan any) error {
	blob, err := json.Marshal(plan)
	if err != nil {
		return err
	}
	return r.updateColumns(ctx, id, map[string]any{
		"plan":   datatypes.JSON(blob),
		"status": StatusGenerated,
	})
}

// SaveRules overwrites the stored canonical rule-set blob.
func (r *SurveyRepo) SaveRules(ctx context.Context, id uuid.UUID, rules any) error {
	blob, err := json.Marshal(rules)
	if err != nil {
		return err
	}
	return r.updateColumns(ctx, id, map[string]any{"rules": datatypes.JSON(blob)})
}

// UpdateMeta updates title/language/prompt without touching the blobs.
func (r *SurveyRepo) UpdateMeta(ctx context.Context, id uuid.UUID, title, language, prompt string) error {
	cols := map[string]any{}
	if title != "" {
		cols["title"] = title
	}
	if language != "" {
		cols["language"] = language
	}
	if prompt != "" {
		cols["prompt"] = prompt
	}
	if len(cols) == 0 {
		return nil
	}
	return r.updateColumns(ctx, id, cols)
}

func (r *SurveyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Delete(&Survey{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SurveyRepo) updateColumns(ctx context.Context, id uuid.UUID, cols map[string]any) error {
	res := r.DB.WithContext(ctx).Model(&Survey{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
