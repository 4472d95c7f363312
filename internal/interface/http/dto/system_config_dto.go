package dto

import (
	"strconv"

	"github.com/ucardlabs/ucard-admin/internal/domain/entity"
	"github.com/ucardlabs/ucard-admin/internal/usecase/sysconfig"
)

type CreateSystemConfigRequest struct {
	SystemType  string  `json:"systemType"`
	ConfigKey   string  `json:"configKey"`
	ConfigValue string  `json:"configValue"`
	Status      *int    `json:"status"`
	Remark      *string `json:"remark"`
	Updater     string  `json:"updater"`
}

type UpdateSystemConfigRequest struct {
	ID          FlexibleID `json:"id"`
	ConfigValue *string    `json:"configValue"`
	Status      *int       `json:"status"`
	Remark      *string    `json:"remark"`
	Updater     string     `json:"updater"`
}

type SystemConfigResponse struct {
	ID          int64   `json:"id"`
	SystemType  string  `json:"systemType"`
	ConfigKey   string  `json:"configKey"`
	ConfigValue string  `json:"configValue"`
	Status      int     `json:"status"`
	CreatedAt   *string `json:"createdAt"`
	UpdatedAt   *string `json:"updatedAt"`
	Updater     string  `json:"updater"`
	Remark      *string `json:"remark"`
}

type SystemConfigListResponse struct {
	List        []SystemConfigResponse `json:"list"`
	SystemTypes []string               `json:"systemTypes"`
}

func ToSystemConfigResponse(c *entity.SystemConfig) SystemConfigResponse {
	return SystemConfigResponse{
		ID:          c.ID,
		SystemType:  c.SystemType,
		ConfigKey:   c.ConfigKey,
		ConfigValue: c.ConfigValue,
		Status:      c.Status,
		CreatedAt:   formatTimePtr(c.CreatedAt),
		UpdatedAt:   formatTimePtr(c.UpdatedAt),
		Updater:     c.Updater,
		Remark:      c.Remark,
	}
}

func ToSystemConfigListResponse(out *sysconfig.ListOutput) SystemConfigListResponse {
	list := make([]SystemConfigResponse, len(out.Items))
	for i, c := range out.Items {
		list[i] = ToSystemConfigResponse(c)
	}
	types := out.SystemTypes
	if types == nil {
		types = []string{}
	}
	return SystemConfigListResponse{List: list, SystemTypes: types}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
