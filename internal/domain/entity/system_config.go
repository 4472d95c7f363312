package entity

import "time"

// ApprovalConfigKey дублируется в Redis.
const ApprovalConfigKey = "approval"

type SystemConfig struct {
	ID          int64
	SystemType  string
	ConfigKey   string
	ConfigValue string
	Status      int
	Updater     string
	Remark      *string
	CreatedAt   *time.Time
	UpdatedAt   *time.Time
}

func (c *SystemConfig) IsApprovalFlag() bool {
	return c.ConfigKey == ApprovalConfigKey
}
