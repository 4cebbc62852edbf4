package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ankatech/investor-admin/internal/core/domain"
	"github.com/ankatech/investor-admin/internal/core/form"
	"github.com/ankatech/investor-admin/internal/core/ports"
	"github.com/ankatech/investor-admin/internal/core/view"
	"github.com/ankatech/investor-admin/pkg/idx"
)

// Form actions posted by the client form.
const (
	actionSave   = "save"
	actionCancel = "cancel"
	actionToggle = "toggle"
)

// User-facing texts.
const (
	loadClientsPrefix   = "Erro ao carregar clientes: "
	loadAssetsPrefix    = "Erro ao carregar ativos: "
	loadClientAssetsMsg = "Erro ao carregar ativos do cliente"
	createFailedPrefix  = "Falha ao adicionar cliente: "
	updateFailedPrefix  = "Falha ao atualizar cliente: "
)

// notices are the flash messages the list page shows after a redirect.
var notices = map[string]string{
	"created":   "Cliente adicionado com sucesso.",
	"updated":   "Cliente atualizado com sucesso.",
	"duplicate": "Este formulário já foi enviado.",
}

// pageData is the model every HTML page is rendered with.
type pageData struct {
	Title    string
	User     string
	Role     string
	CanWrite bool
	Notice   string
	Error    string
	Empty    string
	Next     string

	Clients *ports.ClientList
	Assets  *ports.AssetList
	Detail  *ports.ClientDetail
	Form    *formPage
}

type formPage struct {
	View   form.View
	Token  string
	Action string
	Flash  string
}

// PageHandler serves the HTML admin screens.
type PageHandler struct {
	service   ports.ClientService
	validator ports.InputValidator
	log       zerolog.Logger
}

func NewPageHandler(service ports.ClientService, validator ports.InputValidator, log zerolog.Logger) *PageHandler {
	return &PageHandler{service: service, validator: validator, log: log}
}

// Home handles GET /.
func (h *PageHandler) Home(c echo.Context) error {
	return c.Render(http.StatusOK, "home.html", h.page(c, ""))
}

// Clients handles GET /clients.
func (h *PageHandler) Clients(c echo.Context) error {
	data := h.page(c, "Clientes")

	list, err := h.service.ListClients(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		h.log.Warn().Err(err).Msg("client list unavailable")
		data.Error = loadClientsPrefix + domain.Describe(err)
		return c.Render(http.StatusBadGateway, "clients.html", data)
	}

	data.Clients = list
	return c.Render(http.StatusOK, "clients.html", data)
}

// Assets handles GET /assets.
func (h *PageHandler) Assets(c echo.Context) error {
	data := h.page(c, "Ativos Financeiros")

	list, err := h.service.ListAssets(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		h.log.Warn().Err(err).Msg("asset list unavailable")
		data.Error = loadAssetsPrefix + domain.Describe(err)
		return c.Render(http.StatusBadGateway, "assets.html", data)
	}

	data.Assets = list
	return c.Render(http.StatusOK, "assets.html", data)
}

// Detail handles GET /clients/:id.
func (h *PageHandler) Detail(c echo.Context) error {
	detail, err := h.service.Detail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	data := h.page(c, detail.Client.Name)
	data.Detail = detail
	data.Empty = view.NoAllocations
	return c.Render(http.StatusOK, "client_detail.html", data)
}

// NewClient handles GET /clients/new.
func (h *PageHandler) NewClient(c echo.Context) error {
	f := form.New(h.validator)
	f.Initialize(c.Request().Context(), h.service.Assets(), nil)
	return h.renderForm(c, f, idx.New(), "", http.StatusOK)
}

// EditClient handles GET /clients/:id/edit.
func (h *PageHandler) EditClient(c echo.Context) error {
	ctx := c.Request().Context()

	defaults, err := h.service.EditDefaults(ctx, c.Param("id"))
	if errors.Is(err, domain.ErrClientNotFound) {
		return err
	}
	if err != nil {
		h.log.Warn().Err(err).Str("client_id", c.Param("id")).Msg("edit defaults unavailable")
		data := h.page(c, "Editar Cliente")
		data.Error = loadClientAssetsMsg
		return c.Render(http.StatusBadGateway, "error.html", data)
	}

	f := form.New(h.validator)
	f.Initialize(ctx, h.service.Assets(), defaults)
	return h.renderForm(c, f, idx.New(), "", http.StatusOK)
}

// CreateClient handles POST /clients.
func (h *PageHandler) CreateClient(c echo.Context) error {
	return h.submit(c, "")
}

// UpdateClient handles POST /clients/:id.
func (h *PageHandler) UpdateClient(c echo.Context) error {
	return h.submit(c, c.Param("id"))
}

// submit rebuilds the form from the posted fields and applies the action.
// An empty id creates a client.
func (h *PageHandler) submit(c echo.Context, id string) error {
	ctx := c.Request().Context()
	actor, _, err := ctxActor(c)
	if err != nil {
		return err
	}
	params, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	token := params.Get("token")
	if token == "" {
		token = idx.New()
	}

	var defaults *ports.EditDefaults
	if id != "" {
		defaults = &ports.EditDefaults{Client: domain.Client{ID: id}}
	}
	f := form.New(h.validator)
	f.Seed(defaults)
	f.SetValues(params.Get("nome"), params.Get("email"), domain.Status(params.Get("status")))
	f.Select(params["ativos"])

	switch c.FormValue("action") {
	case actionCancel:
		f.Cancel(nil)
		return c.Redirect(http.StatusSeeOther, "/clients")
	case actionToggle:
		f.Toggle(c.FormValue("asset"))
		return h.rerenderForm(c, f, token, "", http.StatusOK)
	case actionSave, "":
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown form action")
	}

	err = f.Submit(ctx, func(ctx context.Context, in domain.ClientInput) error {
		meta := ports.SubmitMeta{Token: token, Actor: actor}
		if id == "" {
			_, err := h.service.Create(ctx, in, meta)
			return err
		}
		_, err := h.service.Update(ctx, id, in.Patch(), meta)
		return err
	})
	switch {
	case err == nil:
		notice := "created"
		if id != "" {
			notice = "updated"
		}
		return c.Redirect(http.StatusSeeOther, "/clients?notice="+notice)
	case errors.Is(err, domain.ErrDuplicateSubmission):
		return c.Redirect(http.StatusSeeOther, "/clients?notice=duplicate")
	case errors.Is(err, domain.ErrClientNotFound):
		return err
	}
	if _, ok := domain.AsFieldErrors(err); ok {
		return h.rerenderForm(c, f, token, "", http.StatusUnprocessableEntity)
	}

	prefix := createFailedPrefix
	if id != "" {
		prefix = updateFailedPrefix
	}
	h.log.Warn().Err(err).Str("client_id", id).Msg("client submission failed")
	// The failed attempt consumed the token; the retry needs a fresh one.
	return h.rerenderForm(c, f, idx.New(), prefix+domain.Describe(err), failureStatus(err))
}

// rerenderForm loads the asset options of a posted form and renders it.
func (h *PageHandler) rerenderForm(c echo.Context, f *form.Form, token, flash string, status int) error {
	f.Load(c.Request().Context(), h.service.Assets())
	return h.renderForm(c, f, token, flash, status)
}

func (h *PageHandler) renderForm(c echo.Context, f *form.Form, token, flash string, status int) error {
	_ = f.Await(c.Request().Context())
	v := f.View()

	title := "Adicionar Cliente"
	action := "/clients"
	if v.Editing {
		title = "Editar Cliente"
		action += "/" + v.ClientID
	}

	data := h.page(c, title)
	data.Form = &formPage{View: v, Token: token, Action: action, Flash: flash}
	return c.Render(status, "client_form.html", data)
}

func (h *PageHandler) page(c echo.Context, title string) pageData {
	user, role, _ := ctxActor(c)
	return pageData{
		Title:    title,
		User:     user,
		Role:     role,
		CanWrite: canWrite(c),
		Notice:   notices[c.QueryParam("notice")],
	}
}

// failureStatus keeps upstream 4xx answers and reports everything else as a
// gateway failure.
func failureStatus(err error) int {
	var be *domain.BackendError
	if errors.As(err, &be) && be.Status >= 400 && be.Status < 500 {
		return be.Status
	}
	return http.StatusBadGateway
}
