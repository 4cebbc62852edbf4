package handler

import (
	"github.com/shopspring/decimal"

	"github.com/ankatech/investor-admin/internal/core/domain"
	"github.com/ankatech/investor-admin/internal/core/ports"
	"github.com/ankatech/investor-admin/internal/core/view"
	"github.com/ankatech/investor-admin/pkg/money"
)

// --- Request types ---

type listQuery struct {
	Q string `query:"q" validate:"max=200"`
}

type clientRequest struct {
	Name   string            `json:"nome" example:"Maria Aparecida Souza"`
	Email  string            `json:"email" example:"maria@example.com"`
	Status domain.Status     `json:"status" example:"ATIVO"`
	Assets []domain.AssetRef `json:"ativosFinanceiros" swaggertype:"array,string"`
}

// clientPatchRequest leaves absent fields untouched.
type clientPatchRequest struct {
	Name   *string            `json:"nome"`
	Email  *string            `json:"email"`
	Status *domain.Status     `json:"status"`
	Assets *[]domain.AssetRef `json:"ativosFinanceiros" swaggertype:"array,string"`
}

type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// --- Response types ---

type clientResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"nome"`
	Email       string   `json:"email"`
	Status      string   `json:"status"`
	StatusLabel string   `json:"statusLabel"`
	Assets      []string `json:"ativosFinanceiros"`
}

type clientListResponse struct {
	Term  string           `json:"termo"`
	Total int              `json:"total"`
	Items []clientResponse `json:"dados"`
	Empty string           `json:"mensagemVazia,omitempty"`
}

type assetResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"nome"`
	CurrentValue decimal.Decimal `json:"valorAtual" swaggertype:"number"`
	Formatted    string          `json:"valorFormatado"`
}

type assetListResponse struct {
	Term  string          `json:"termo"`
	Total int             `json:"total"`
	Items []assetResponse `json:"dados"`
	Empty string          `json:"mensagemVazia,omitempty"`
}

type allocationResponse struct {
	Asset assetResponse `json:"ativo"`
	Value string        `json:"valor"`
}

type clientDetailResponse struct {
	Client      clientResponse       `json:"cliente"`
	Allocations []allocationResponse `json:"alocacoes"`
	Total       string               `json:"total"`
	Empty       string               `json:"mensagemVazia,omitempty"`
	AssetsError string               `json:"erroAtivos,omitempty"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

// --- Mappers ---

func toInput(req clientRequest) domain.ClientInput {
	status := req.Status
	if status == "" {
		status = domain.StatusActive
	}
	return domain.ClientInput{
		Name:     req.Name,
		Email:    req.Email,
		Status:   status,
		AssetIDs: domain.NormalizeRefs(req.Assets),
	}
}

func toPatch(req clientPatchRequest) domain.ClientPatch {
	patch := domain.ClientPatch{
		Name:   req.Name,
		Email:  req.Email,
		Status: req.Status,
	}
	if req.Assets != nil {
		ids := domain.NormalizeRefs(*req.Assets)
		patch.AssetIDs = &ids
	}
	return patch
}

func toClientResponse(c domain.Client) clientResponse {
	assets := c.AssetIDs
	if assets == nil {
		assets = []string{}
	}
	return clientResponse{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		Status:      string(c.Status),
		StatusLabel: c.Status.Label(),
		Assets:      assets,
	}
}

func toAssetResponse(a domain.Asset) assetResponse {
	return assetResponse{
		ID:           a.ID,
		Name:         a.Name,
		CurrentValue: a.CurrentValue,
		Formatted:    money.BRL(a.CurrentValue),
	}
}

func toClientListResponse(l *ports.ClientList) clientListResponse {
	items := make([]clientResponse, len(l.Items))
	for i, c := range l.Items {
		items[i] = toClientResponse(c)
	}
	return clientListResponse{Term: l.Term, Total: l.Total, Items: items, Empty: l.Empty}
}

func toAssetListResponse(l *ports.AssetList) assetListResponse {
	items := make([]assetResponse, len(l.Items))
	for i, a := range l.Items {
		items[i] = toAssetResponse(a)
	}
	return assetListResponse{Term: l.Term, Total: l.Total, Items: items, Empty: l.Empty}
}

func toDetailResponse(d *ports.ClientDetail) clientDetailResponse {
	rows := make([]allocationResponse, len(d.Allocations))
	for i, a := range d.Allocations {
		rows[i] = allocationResponse{Asset: toAssetResponse(a.Asset), Value: a.Value}
	}
	resp := clientDetailResponse{
		Client:      toClientResponse(d.Client),
		Allocations: rows,
		Total:       d.Total,
		AssetsError: d.AssetsError,
	}
	if len(rows) == 0 && d.AssetsError == "" {
		resp.Empty = view.NoAllocations
	}
	return resp
}
