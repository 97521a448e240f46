package httptransport

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"msgapi/backend/internal/middleware"
	"msgapi/backend/internal/monitoring"
	"msgapi/backend/internal/service"
)

// MessageHandler 处理消息资源的 HTTP 请求
type MessageHandler struct {
	messages *service.MessageService
	metrics  *monitoring.Metrics
	log      *zap.Logger
}

// NewMessageHandler 创建消息处理器
func NewMessageHandler(messages *service.MessageService, metrics *monitoring.Metrics, log *zap.Logger) *MessageHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MessageHandler{messages: messages, metrics: metrics, log: log}
}

type createMessageRequest struct {
	Subject    string   `json:"subject" binding:"required"`
	Body       string   `json:"body" binding:"required"`
	Recipients []string `json:"recipients"`
}

type updateMessageRequest struct {
	Subject *string `json:"subject"`
	Body    *string `json:"body"`
}

// List 返回全部消息
// @Summary 消息列表
// @Description 返回全部消息，仅管理员可用
// @Tags 消息
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Message
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	messages, err := h.messages.List(middleware.GetIdentity(c))
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	OK(c, messages)
}

// ListReceived 返回当前用户收到的消息
// @Summary 收件箱
// @Description 返回当前身份作为收件人的全部消息
// @Tags 消息
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Message
// @Failure 401 {object} ErrorResponse
// @Router /api/messages/all [get]
func (h *MessageHandler) ListReceived(c *gin.Context) {
	messages, err := h.messages.ListReceived(middleware.GetIdentity(c))
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	OK(c, messages)
}

// Get 返回单条消息
// @Summary 消息详情
// @Description 按 ID 返回单条消息，管理员或发送者可用
// @Tags 消息
// @Produce json
// @Security BearerAuth
// @Param id path string true "消息 ID"
// @Success 200 {object} domain.Message
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/messages/{id} [get]
func (h *MessageHandler) Get(c *gin.Context) {
	message, err := h.messages.Get(middleware.GetIdentity(c), c.Param("id"))
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	OK(c, message)
}

// Create 创建消息
// @Summary 发送消息
// @Description 创建消息并绑定收件人，trusted 及以上角色可用
// @Tags 消息
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createMessageRequest true "消息内容与收件人 ID 列表"
// @Success 201 {object} domain.Message
// @Failure 400 {object} ErrorResponse "收件人缺失或全部无法解析"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/messages [post]
func (h *MessageHandler) Create(c *gin.Context) {
	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	message, err := h.messages.Create(middleware.GetIdentity(c), service.CreateMessageInput{
		Subject:      req.Subject,
		Body:         req.Body,
		RecipientIDs: req.Recipients,
	})
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	h.metrics.MessagesSent.Inc()
	Created(c, message)
}

// Update 更新消息
// @Summary 更新消息
// @Description 管理员或发送者可更新主题与正文
// @Tags 消息
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "消息 ID"
// @Param request body updateMessageRequest true "更新字段（缺省字段保持原值）"
// @Success 200 {object} domain.Message
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/messages/{id} [put]
func (h *MessageHandler) Update(c *gin.Context) {
	var req updateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	message, err := h.messages.Update(middleware.GetIdentity(c), c.Param("id"), service.UpdateMessageInput{
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	OK(c, message)
}

// Delete 删除消息
// @Summary 删除消息
// @Description 管理员、发送者或任一收件人可删除
// @Tags 消息
// @Produce json
// @Security BearerAuth
// @Param id path string true "消息 ID"
// @Success 200 {object} ConfirmResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/messages/{id} [delete]
func (h *MessageHandler) Delete(c *gin.Context) {
	if err := h.messages.Delete(middleware.GetIdentity(c), c.Param("id")); err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	h.metrics.MessagesDeleted.Inc()
	Confirm(c, "message deleted")
}
