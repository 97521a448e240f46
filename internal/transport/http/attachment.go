package httptransport

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"msgapi/backend/internal/middleware"
	"msgapi/backend/internal/monitoring"
	"msgapi/backend/internal/service"
)

// AttachmentHandler 处理附件资源的 HTTP 请求
type AttachmentHandler struct {
	attachments *service.AttachmentService
	metrics     *monitoring.Metrics
	log         *zap.Logger
}

// NewAttachmentHandler 创建附件处理器
func NewAttachmentHandler(attachments *service.AttachmentService, metrics *monitoring.Metrics, log *zap.Logger) *AttachmentHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AttachmentHandler{attachments: attachments, metrics: metrics, log: log}
}

type createAttachmentRequest struct {
	Alt     string `json:"alt" binding:"required"`
	Data    string `json:"data" binding:"required"`
	Message string `json:"message" binding:"required"`
}

type updateAttachmentRequest struct {
	Alt  *string `json:"alt"`
	Data *string `json:"data"`
}

// List 返回全部附件
// @Summary 附件列表
// @Description 返回全部附件，仅管理员可用
// @Tags 附件
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Attachment
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/attachments [get]
func (h *AttachmentHandler) List(c *gin.Context) {
	attachments, err := h.attachments.List(middleware.GetIdentity(c))
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	OK(c, attachments)
}

// Get 返回单个附件
// @Summary 附件详情
// @Description 按 ID 返回单个附件，任何已认证身份可用
// @Tags 附件
// @Produce json
// @Security BearerAuth
// @Param id path string true "附件 ID"
// @Success 200 {object} domain.Attachment
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/attachments/{id} [get]
func (h *AttachmentHandler) Get(c *gin.Context) {
	attachment, err := h.attachments.Get(middleware.GetIdentity(c), c.Param("id"))
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	OK(c, attachment)
}

// Create 创建附件
// @Summary 上传附件
// @Description 为已有消息创建附件，上传者必须是消息发送者
// @Tags 附件
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createAttachmentRequest true "附件内容与目标消息 ID"
// @Success 201 {object} domain.Attachment
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "目标消息不存在"
// @Router /api/attachments [post]
func (h *AttachmentHandler) Create(c *gin.Context) {
	var req createAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	attachment, err := h.attachments.Create(middleware.GetIdentity(c), service.CreateAttachmentInput{
		Alt:       req.Alt,
		Data:      req.Data,
		MessageID: req.Message,
	})
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	h.metrics.AttachmentsCreated.Inc()
	Created(c, attachment)
}

// Update 更新附件
// @Summary 更新附件
// @Description 管理员或上传者可更新
// @Tags 附件
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "附件 ID"
// @Param request body updateAttachmentRequest true "更新字段（缺省字段保持原值）"
// @Success 200 {object} domain.Attachment
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/attachments/{id} [put]
func (h *AttachmentHandler) Update(c *gin.Context) {
	var req updateAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	attachment, err := h.attachments.Update(middleware.GetIdentity(c), c.Param("id"), service.UpdateAttachmentInput{
		Alt:  req.Alt,
		Data: req.Data,
	})
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	OK(c, attachment)
}

// Delete 删除附件
// @Summary 删除附件
// @Description 管理员或上传者可删除
// @Tags 附件
// @Produce json
// @Security BearerAuth
// @Param id path string true "附件 ID"
// @Success 200 {object} ConfirmResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/attachments/{id} [delete]
func (h *AttachmentHandler) Delete(c *gin.Context) {
	if err := h.attachments.Delete(middleware.GetIdentity(c), c.Param("id")); err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	Confirm(c, "attachment deleted")
}
