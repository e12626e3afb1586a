package persistence

import (
	"time"
)

// ConfigurationProfileModel represents the configuration_profiles table
type ConfigurationProfileModel struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;unique;not null"`
	Version   int       `gorm:"column:version;not null;default:1"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (ConfigurationProfileModel) TableName() string {
	return "configuration_profiles"
}

// ReplacementRecordModel represents the replacement_records table.
// One row per record of every tier, pack templates and added props included.
type ReplacementRecordModel struct {
	ID             int                        `gorm:"column:id;primaryKey;autoIncrement"`
	ProfileID      int                        `gorm:"column:profile_id;not null;index"`
	Profile        *ConfigurationProfileModel `gorm:"foreignKey:ProfileID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Position       int                        `gorm:"column:position;not null"` // document order
	RecordID       string                     `gorm:"column:record_id;not null"`
	ParentKind     string                     `gorm:"column:parent_kind;not null"` // building, network
	Tier           string                     `gorm:"column:tier;not null"`        // individual, grouped, pack, all, added
	Parent         string                     `gorm:"column:parent"`
	PackName       string                     `gorm:"column:pack_name"`
	Target         string                     `gorm:"column:target;not null"`
	Replacement    string                     `gorm:"column:replacement"`
	IsTree         bool                       `gorm:"column:is_tree;not null;default:false"`
	Lane           int                        `gorm:"column:lane;not null;default:-1"`
	Slot           int                        `gorm:"column:slot;not null;default:-1"`
	Angle          float64                    `gorm:"column:angle;not null;default:0"`
	OffsetX        float64                    `gorm:"column:offset_x;not null;default:0"`
	OffsetY        float64                    `gorm:"column:offset_y;not null;default:0"`
	OffsetZ        float64                    `gorm:"column:offset_z;not null;default:0"`
	Probability    int                        `gorm:"column:probability;not null;default:100"`
	RepeatDistance float64                    `gorm:"column:repeat_distance;not null;default:0"`
	CustomHeight   bool                       `gorm:"column:custom_height;not null;default:false"`
}

func (ReplacementRecordModel) TableName() string {
	return "replacement_records"
}

// ReplacementPackModel represents the replacement_packs table
type ReplacementPackModel struct {
	ID        int                        `gorm:"column:id;primaryKey;autoIncrement"`
	ProfileID int                        `gorm:"column:profile_id;not null;index"`
	Profile   *ConfigurationProfileModel `gorm:"foreignKey:ProfileID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Position  int                        `gorm:"column:position;not null"`
	Name      string                     `gorm:"column:name;not null"`
	Applied   bool                       `gorm:"column:applied;not null;default:false"`
}

func (ReplacementPackModel) TableName() string {
	return "replacement_packs"
}

// ScaleOverrideModel represents the scale_overrides table
type ScaleOverrideModel struct {
	ID        int                        `gorm:"column:id;primaryKey;autoIncrement"`
	ProfileID int                        `gorm:"column:profile_id;not null;index"`
	Profile   *ConfigurationProfileModel `gorm:"foreignKey:ProfileID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Position  int                        `gorm:"column:position;not null"`
	Prefab    string                     `gorm:"column:prefab;not null"`
	IsTree    bool                       `gorm:"column:is_tree;not null;default:false"`
	Min       float64                    `gorm:"column:min_scale;not null"`
	Max       float64                    `gorm:"column:max_scale;not null"`
}

func (ScaleOverrideModel) TableName() string {
	return "scale_overrides"
}

// RandomPrefabModel represents the random_prefabs table
type RandomPrefabModel struct {
	ID         int                        `gorm:"column:id;primaryKey;autoIncrement"`
	ProfileID  int                        `gorm:"column:profile_id;not null;index"`
	Profile    *ConfigurationProfileModel `gorm:"foreignKey:ProfileID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Position   int                        `gorm:"column:position;not null"`
	Name       string                     `gorm:"column:name;not null"`
	IsTree     bool                       `gorm:"column:is_tree;not null;default:false"`
	Variations string                     `gorm:"column:variations;type:text"` // JSON array as text
}

func (RandomPrefabModel) TableName() string {
	return "random_prefabs"
}

// EngineLogModel represents the engine_logs table
type EngineLogModel struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement"`
	Session   string    `gorm:"column:session;not null;index"`
	Timestamp time.Time `gorm:"column:timestamp;not null"`
	Level     string    `gorm:"column:level;not null;default:'INFO'"`
	Message   string    `gorm:"column:message;type:text;not null"`
	Metadata  string    `gorm:"column:metadata;type:text"` // JSON as text
}

func (EngineLogModel) TableName() string {
	return "engine_logs"
}

// AllModels lists every model for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&ConfigurationProfileModel{},
		&ReplacementRecordModel{},
		&ReplacementPackModel{},
		&ScaleOverrideModel{},
		&RandomPrefabModel{},
		&EngineLogModel{},
	}
}
