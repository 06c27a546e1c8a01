package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/ads-advisor/internal/pkg/httputil"
	"github.com/ignite/ads-advisor/internal/store"
)

// accountRequest is the create payload for a linked ad account.
type accountRequest struct {
	Name        string `json:"name"`
	Platform    string `json:"platform"`
	ExternalID  string `json:"external_id"`
	AccessToken string `json:"access_token"`
	Currency    string `json:"currency"`
}

// ListAccounts returns one page of linked ad accounts, newest first.
func (h *Handlers) ListAccounts(w http.ResponseWriter, r *http.Request) {
	if h.accounts == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "account store not configured")
		return
	}

	params := parsePageParams(r, 50, 200)
	accounts, total, err := h.accounts.List(r.Context(), params.Limit, params.Offset)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if accounts == nil {
		accounts = []store.AdAccount{}
	}

	httputil.OK(w, map[string]interface{}{
		"accounts":   accounts,
		"count":      len(accounts),
		"pagination": params.meta(total),
	})
}

// CreateAccount links a new ad account.
func (h *Handlers) CreateAccount(w http.ResponseWriter, r *http.Request) {
	if h.accounts == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "account store not configured")
		return
	}

	var req accountRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		httputil.BadRequest(w, "name is required")
		return
	}

	id, err := h.accounts.Create(r.Context(), &store.AdAccount{
		Name:        req.Name,
		Platform:    req.Platform,
		ExternalID:  req.ExternalID,
		AccessToken: req.AccessToken,
		Currency:    req.Currency,
	})
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	httputil.Created(w, map[string]string{"id": id, "status": "created"})
}

// GetAccount returns one linked ad account.
func (h *Handlers) GetAccount(w http.ResponseWriter, r *http.Request) {
	if h.accounts == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "account store not configured")
		return
	}

	id := chi.URLParam(r, "accountID")
	account, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.NotFound(w, "account not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, account)
}

// UpdateAccountToken rotates an account's stored access token.
func (h *Handlers) UpdateAccountToken(w http.ResponseWriter, r *http.Request) {
	if h.accounts == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "account store not configured")
		return
	}

	var req struct {
		AccessToken string `json:"access_token"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.AccessToken == "" {
		httputil.BadRequest(w, "access_token is required")
		return
	}

	id := chi.URLParam(r, "accountID")
	if err := h.accounts.UpdateToken(r.Context(), id, req.AccessToken); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.NotFound(w, "account not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, map[string]string{"id": id, "status": "updated"})
}

// DeleteAccount unlinks an ad account.
func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if h.accounts == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "account store not configured")
		return
	}

	id := chi.URLParam(r, "accountID")
	if err := h.accounts.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.NotFound(w, "account not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, map[string]string{"id": id, "status": "deleted"})
}
