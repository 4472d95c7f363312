package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ucardlabs/ucard-admin/internal/domain/entity"
	"github.com/ucardlabs/ucard-admin/internal/interface/http/dto"
	"github.com/ucardlabs/ucard-admin/internal/interface/http/response"
	"github.com/ucardlabs/ucard-admin/internal/usecase/sysconfig"
)

type SystemConfigService interface {
	List(ctx context.Context, systemType string) (*sysconfig.ListOutput, error)
	Create(ctx context.Context, in sysconfig.CreateInput) (*entity.SystemConfig, error)
	Update(ctx context.Context, in sysconfig.UpdateInput) (*entity.SystemConfig, error)
	Delete(ctx context.Context, id int64) error
}

type SystemConfigHandler struct {
	configs SystemConfigService
}

func NewSystemConfigHandler(configs SystemConfigService) *SystemConfigHandler {
	return &SystemConfigHandler{configs: configs}
}

func (h *SystemConfigHandler) List(c *gin.Context) {
	out, err := h.configs.List(c.Request.Context(), c.Query("systemType"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToSystemConfigListResponse(out))
}

func (h *SystemConfigHandler) Create(c *gin.Context) {
	var req dto.CreateSystemConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	cfg, err := h.configs.Create(c.Request.Context(), sysconfig.CreateInput{
		SystemType:  req.SystemType,
		ConfigKey:   req.ConfigKey,
		ConfigValue: req.ConfigValue,
		Status:      req.Status,
		Remark:      req.Remark,
		Updater:     updaterFor(c, req.Updater),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToSystemConfigResponse(cfg))
}

func (h *SystemConfigHandler) Update(c *gin.Context) {
	var req dto.UpdateSystemConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	id, err := strconv.ParseInt(string(req.ID), 10, 64)
	if err != nil {
		response.BadRequest(c, "не указан id параметра")
		return
	}

	cfg, err := h.configs.Update(c.Request.Context(), sysconfig.UpdateInput{
		ID:          id,
		ConfigValue: req.ConfigValue,
		Status:      req.Status,
		Remark:      req.Remark,
		Updater:     updaterFor(c, req.Updater),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToSystemConfigResponse(cfg))
}

func (h *SystemConfigHandler) Delete(c *gin.Context) {
	id := int64(parseIntQuery(c, "id", 0))
	if err := h.configs.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, "параметр удалён", nil)
}

// updaterFor предпочитает имя из токена значению из тела запроса.
func updaterFor(c *gin.Context, fromBody string) string {
	if name := adminUsername(c); name != "" {
		return name
	}
	return fromBody
}
