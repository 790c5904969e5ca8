package v1

import (
	"errors"
	"io"
	"net/http"

	"portfolio-email-service/internal/delivery/http/response"
	"portfolio-email-service/internal/domain"
	"portfolio-email-service/pkg/apperror"

	"github.com/gin-gonic/gin"
)

const (
	MsgContactSent       = "Email sent successfully! I will get back to you soon."
	MsgContactFailed     = "Failed to send email. Please try again later."
	MsgTestEmailSent     = "Test email sent successfully! Check your inbox."
	MsgTestEmailFailed   = "Failed to send test email"
	MsgInvalidBody       = "Invalid request body"
	MsgEndpointNotFound  = "Endpoint not found"
	contactAllowedMethod = http.MethodPost
)

type ContactHandler struct {
	contactUC domain.ContactUsecase
}

// NewContactHandler registers the contact routes (public, no auth required)
func NewContactHandler(api *gin.RouterGroup, contactUC domain.ContactUsecase) {
	handler := &ContactHandler{
		contactUC: contactUC,
	}

	// Every method is routed here so the handler can answer 405 itself.
	api.Any("/contact", handler.SubmitContact)
	api.POST("/email/test", handler.SendTestEmail)
}

// SubmitContact godoc
// @Summary      Submit Contact Form
// @Description  Validates the submission, notifies the site owner and sends the visitor an acknowledgement.
// @Description  Both emails must go out for the request to succeed. If the acknowledgement fails after the
// @Description  owner was notified, the request still reports failure and nothing is recalled.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        contact  body      domain.ContactRequest  true  "Contact Form Data"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      405      {object}  response.Response
// @Failure      413      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /api/contact [post]
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	if c.Request.Method != contactAllowedMethod {
		c.Header("Allow", contactAllowedMethod)
		_ = c.Error(apperror.MethodNotAllowed())
		return
	}

	var req domain.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			_ = c.Error(apperror.PayloadTooLarge(err))
			return
		case errors.Is(err, io.EOF):
			// An empty body is an empty submission.
		default:
			_ = c.Error(apperror.New(http.StatusBadRequest, MsgInvalidBody, err))
			return
		}
	}

	if err := h.contactUC.SendContactMessage(c.Request.Context(), &req); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			_ = c.Error(apperror.BadRequest(verr.Message))
			return
		}
		_ = c.Error(apperror.New(http.StatusInternalServerError, MsgContactFailed, err))
		return
	}

	response.Success(c, http.StatusOK, MsgContactSent)
}

// SendTestEmail godoc
// @Summary      Send SMTP Test Email
// @Description  Sends one test message to the configured owner address to check the mail settings.
// @Tags         contact
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /api/email/test [post]
func (h *ContactHandler) SendTestEmail(c *gin.Context) {
	if err := h.contactUC.SendTestEmail(c.Request.Context()); err != nil {
		_ = c.Error(apperror.New(http.StatusInternalServerError, MsgTestEmailFailed, err))
		return
	}

	response.Success(c, http.StatusOK, MsgTestEmailSent)
}
