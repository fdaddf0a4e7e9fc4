package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/model"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/server"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/service"
)

// FormHandler serves the public marketing site forms.
type FormHandler struct {
	Handler
	contact    *service.ContactService
	leadMagnet *service.LeadMagnetService
	signup     *service.SignupService
}

func NewFormHandler(s *server.Server, contact *service.ContactService, leadMagnet *service.LeadMagnetService, signup *service.SignupService) *FormHandler {
	return &FormHandler{
		Handler:    NewHandler(s),
		contact:    contact,
		leadMagnet: leadMagnet,
		signup:     signup,
	}
}

func (h *FormHandler) SubmitContact(c echo.Context, req *model.ContactRequest) (*service.FormResult, error) {
	return h.contact.Submit(c.Request().Context(), req, c.RealIP())
}

func (h *FormHandler) RequestLeadMagnet(c echo.Context, req *model.LeadMagnetRequest) (*service.FormResult, error) {
	return h.leadMagnet.Request(c.Request().Context(), req)
}

func (h *FormHandler) DownloadLeadMagnet(c echo.Context, req *model.DownloadRequest) (*Attachment, error) {
	dl, err := h.leadMagnet.Open(c.Request().Context(), req.Token)
	if err != nil {
		return nil, err
	}
	return &Attachment{
		Body:        dl.Body,
		Size:        dl.Size,
		ContentType: dl.ContentType,
		Filename:    dl.Filename,
	}, nil
}

func (h *FormHandler) Signup(c echo.Context, req *model.SignupRequest) (*service.SignupResult, error) {
	return h.signup.Signup(c.Request().Context(), req)
}
