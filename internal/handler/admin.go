package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/email"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/middleware"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/model"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/server"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/service"
)

// AdminHandler backs the dashboard. Routes sit behind RequireAdmin.
type AdminHandler struct {
	Handler
	admin *service.AdminService
}

func NewAdminHandler(s *server.Server, admin *service.AdminService) *AdminHandler {
	return &AdminHandler{
		Handler: NewHandler(s),
		admin:   admin,
	}
}

func (h *AdminHandler) ListSubmissions(c echo.Context, req *model.ListSubmissionsRequest) (*model.PaginatedResponse[model.Submission], error) {
	return h.admin.ListSubmissions(c.Request().Context(), req)
}

func (h *AdminHandler) UpdateSubmission(c echo.Context, req *model.UpdateSubmissionRequest) (*model.Submission, error) {
	sub, err := h.admin.UpdateSubmission(c.Request().Context(), req)
	if err != nil {
		return nil, err
	}

	middleware.GetLogger(c).Info().
		Str("submission_id", req.ID).
		Str("status", req.Status).
		Str("by", middleware.GetUserEmail(c)).
		Msg("submission status changed")

	return sub, nil
}

func (h *AdminHandler) ListLeads(c echo.Context, req *model.ListRequest) (*model.PaginatedResponse[model.Lead], error) {
	return h.admin.ListLeads(c.Request().Context(), req)
}

func (h *AdminHandler) ListSubscriptions(c echo.Context, req *model.ListRequest) (*model.PaginatedResponse[model.Subscription], error) {
	return h.admin.ListSubscriptions(c.Request().Context(), req)
}

func (h *AdminHandler) Stats(c echo.Context, _ *model.EmptyRequest) (*model.Stats, error) {
	return h.admin.Stats(c.Request().Context())
}

type emailTemplates struct {
	Templates []email.Template `json:"templates"`
}

func (h *AdminHandler) EmailTemplates(_ echo.Context, _ *model.EmptyRequest) (*emailTemplates, error) {
	return &emailTemplates{Templates: h.admin.EmailTemplates()}, nil
}

func (h *AdminHandler) PreviewEmail(_ echo.Context, req *model.EmailPreviewRequest) (string, error) {
	return h.admin.PreviewEmail(req.Template)
}
