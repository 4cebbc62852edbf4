package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ankatech/investor-admin/internal/core/ports"
)

// HeaderIdempotencyKey deduplicates API writes the way the submission token
// deduplicates form posts.
const HeaderIdempotencyKey = "Idempotency-Key"

// ClientAPIHandler serves the JSON API over clients and assets.
type ClientAPIHandler struct {
	service ports.ClientService
}

func NewClientAPIHandler(service ports.ClientService) *ClientAPIHandler {
	return &ClientAPIHandler{service: service}
}

// ListClients handles GET /api/clients.
//
// @Summary      List clients
// @Description  Case-insensitive substring match on name or email.
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        q    query     string  false  "Search term"
// @Success      200  {object}  clientListResponse
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/clients [get]
func (h *ClientAPIHandler) ListClients(c echo.Context) error {
	q, err := bindQuery(c)
	if err != nil {
		return err
	}

	list, err := h.service.ListClients(c.Request().Context(), q.Q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toClientListResponse(list))
}

// CreateClient handles POST /api/clients.
//
// @Summary      Create a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string         false  "Rejects a replayed request"
// @Param        body             body      clientRequest  true   "Client data"
// @Success      201              {object}  clientResponse
// @Failure      400              {object}  map[string]string
// @Failure      403              {object}  map[string]string
// @Failure      409              {object}  map[string]string
// @Failure      422              {object}  map[string]any
// @Failure      502              {object}  map[string]string
// @Router       /api/clients [post]
func (h *ClientAPIHandler) CreateClient(c echo.Context) error {
	actor, _, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	created, err := h.service.Create(c.Request().Context(), toInput(req), ports.SubmitMeta{
		Token: c.Request().Header.Get(HeaderIdempotencyKey),
		Actor: actor,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toClientResponse(*created))
}

// UpdateClient handles PATCH /api/clients/:id.
//
// @Summary      Update a client
// @Description  Only the fields present in the body are changed.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id               path      string              true   "Client id"
// @Param        Idempotency-Key  header    string              false  "Rejects a replayed request"
// @Param        body             body      clientPatchRequest  true   "Fields to change"
// @Success      200              {object}  clientResponse
// @Failure      400              {object}  map[string]string
// @Failure      404              {object}  map[string]string
// @Failure      409              {object}  map[string]string
// @Failure      422              {object}  map[string]any
// @Failure      502              {object}  map[string]string
// @Router       /api/clients/{id} [patch]
func (h *ClientAPIHandler) UpdateClient(c echo.Context) error {
	actor, _, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req clientPatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	updated, err := h.service.Update(c.Request().Context(), c.Param("id"), toPatch(req), ports.SubmitMeta{
		Token: c.Request().Header.Get(HeaderIdempotencyKey),
		Actor: actor,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toClientResponse(*updated))
}

// Allocations handles GET /api/clients/:id/allocations.
//
// @Summary      Client allocations
// @Description  The client with its assets in directory order and the summed value.
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Client id"
// @Success      200  {object}  clientDetailResponse
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/clients/{id}/allocations [get]
func (h *ClientAPIHandler) Allocations(c echo.Context) error {
	detail, err := h.service.Detail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDetailResponse(detail))
}

// ListAssets handles GET /api/assets.
//
// @Summary      List financial assets
// @Tags         assets
// @Produce      json
// @Security     BearerAuth
// @Param        q    query     string  false  "Search term"
// @Success      200  {object}  assetListResponse
// @Failure      502  {object}  map[string]string
// @Router       /api/assets [get]
func (h *ClientAPIHandler) ListAssets(c echo.Context) error {
	q, err := bindQuery(c)
	if err != nil {
		return err
	}

	list, err := h.service.ListAssets(c.Request().Context(), q.Q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAssetListResponse(list))
}

func bindQuery(c echo.Context) (listQuery, error) {
	var q listQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return q, echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if c.Echo().Validator != nil {
		if err := c.Validate(&q); err != nil {
			return q, err
		}
	}
	return q, nil
}
