package service

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"blogmailer_backend/internal/model"
)

// OptionService reads and writes named JSON values in the options table.
// Migration flags, the schema version and last-send timestamps all live
// here.
type OptionService struct {
	db *gorm.DB
}

func NewOptionService(db *gorm.DB) *OptionService {
	return &OptionService{db: db}
}

// Get unmarshals the named option into out. Returns ErrNotFound when the
// option has never been set.
func (s *OptionService) Get(name string, out interface{}) error {
	var opt model.Option
	if err := s.db.Where("name = ?", name).First(&opt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return json.Unmarshal(opt.Value, out)
}

// Set stores the named option, creating or replacing it.
func (s *OptionService) Set(name string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	var opt model.Option
	err = s.db.Where("name = ?", name).First(&opt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(&model.Option{Name: name, Value: datatypes.JSON(raw)}).Error
	}
	if err != nil {
		return err
	}
	return s.db.Model(&opt).Update("value", datatypes.JSON(raw)).Error
}

func (s *OptionService) GetString(name string) (string, error) {
	var v string
	err := s.Get(name, &v)
	return v, err
}

func (s *OptionService) GetBool(name string) bool {
	var v bool
	if err := s.Get(name, &v); err != nil {
		return false
	}
	return v
}

func (s *OptionService) GetTime(name string) (time.Time, error) {
	var v time.Time
	err := s.Get(name, &v)
	return v, err
}
