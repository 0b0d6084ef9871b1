// Package http provides http transport for browse
package http

import (
	stdhttp "net/http"

	"showroom/internal/modkit/httpkit"
	"showroom/internal/platform/net/http/bind"
	"showroom/internal/services/browse/domain"
	svc "showroom/internal/services/browse/service"
)

// Register mounts browse endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	// sessions keep filters and the loaded window between requests
	httpkit.PostJSON[domain.OpenInput](r, "/sessions", h.open)
	httpkit.Get(r, "/sessions/{id}", h.view)
	httpkit.Delete(r, "/sessions/{id}", h.close)
	httpkit.Post(r, "/sessions/{id}/more", h.more)
	httpkit.Post(r, "/sessions/{id}/retry", h.retry)
	httpkit.PutJSON[domain.StateInput](r, "/sessions/{id}/state", h.restore)

	// one shot renders addressed by taxonomy path and query string
	httpkit.Get(r, "/{category}", h.browse)
	httpkit.Get(r, "/{category}/{sub}", h.browse)
	httpkit.Get(r, "/{category}/{sub}/{brand}", h.browse)
	httpkit.Get(r, "/{category}/{sub}/{brand}/{model}", h.browse)
}

type handlers struct{ svc svc.Service }

// swagger:route GET /browse/{category} Browse browseTarget
// @Summary Render a listing page
// @Description Filters, sort, layout and size come from the query string. Unknown or malformed parameters fall back to defaults.
// @Tags Browse
// @Produce json
// @Param category path string true "Category slug"
// @Param sub path string false "Sub category slug"
// @Param brand path string false "Brand slug"
// @Param model path string false "Model slug"
// @Param q query string false "Free text"
// @Param sort query string false "newest, priceAsc or priceDesc"
// @Param view query string false "grid or list"
// @Param size query int false "Visible items"
// @Success 200 {object} domain.View "ok"
// @Failure 400 {object} httpkit.Envelope "bad path segment"
// @Router /browse/{category} [get]
func (h *handlers) browse(r *stdhttp.Request) (any, error) {
	t := domain.Target{
		Category:    httpkit.Param(r, "category"),
		SubCategory: httpkit.Param(r, "sub"),
		Brand:       httpkit.Param(r, "brand"),
		Model:       httpkit.Param(r, "model"),
	}
	if err := validTarget(t); err != nil {
		return nil, err
	}
	v, err := h.svc.Browse(r.Context(), t, r.URL.RawQuery)
	if err != nil {
		return nil, err
	}
	return listed(v), nil
}

// swagger:route POST /browse/sessions Browse browseOpen
// @Summary Open a browse session
// @Tags Browse
// @Accept json
// @Produce json
// @Param payload body domain.OpenInput true "Target and optional query string"
// @Success 201 {object} domain.Opened "created"
// @Failure 400 {object} httpkit.Envelope "validation failed"
// @Router /browse/sessions [post]
func (h *handlers) open(r *stdhttp.Request, in domain.OpenInput) (any, error) {
	out, err := h.svc.Open(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(out), nil
}

// swagger:route GET /browse/sessions/{id} Browse browseView
// @Summary Current view of a session
// @Tags Browse
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} domain.View "ok"
// @Failure 404 {object} httpkit.Envelope "unknown session"
// @Router /browse/sessions/{id} [get]
func (h *handlers) view(r *stdhttp.Request) (any, error) {
	id, err := sessionID(r)
	if err != nil {
		return nil, err
	}
	return render(h.svc.View(r.Context(), id))
}

// swagger:route POST /browse/sessions/{id}/more Browse browseMore
// @Summary Show more items
// @Tags Browse
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} domain.View "ok"
// @Router /browse/sessions/{id}/more [post]
func (h *handlers) more(r *stdhttp.Request) (any, error) {
	id, err := sessionID(r)
	if err != nil {
		return nil, err
	}
	return render(h.svc.More(r.Context(), id))
}

// swagger:route POST /browse/sessions/{id}/retry Browse browseRetry
// @Summary Retry a failed fetch
// @Tags Browse
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} domain.View "ok"
// @Router /browse/sessions/{id}/retry [post]
func (h *handlers) retry(r *stdhttp.Request) (any, error) {
	id, err := sessionID(r)
	if err != nil {
		return nil, err
	}
	return render(h.svc.Retry(r.Context(), id))
}

// swagger:route PUT /browse/sessions/{id}/state Browse browseRestore
// @Summary Replace session state from a query string
// @Tags Browse
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param payload body domain.StateInput true "Query string"
// @Success 200 {object} domain.View "ok"
// @Router /browse/sessions/{id}/state [put]
func (h *handlers) restore(r *stdhttp.Request, in domain.StateInput) (any, error) {
	id, err := sessionID(r)
	if err != nil {
		return nil, err
	}
	return render(h.svc.Restore(r.Context(), id, in))
}

// swagger:route DELETE /browse/sessions/{id} Browse browseClose
// @Summary Close a session
// @Tags Browse
// @Param id path string true "Session id"
// @Success 204 "closed"
// @Router /browse/sessions/{id} [delete]
func (h *handlers) close(r *stdhttp.Request) (any, error) {
	id, err := sessionID(r)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Close(r.Context(), id); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

func sessionID(r *stdhttp.Request) (string, error) {
	id := httpkit.Param(r, "id")
	return id, bind.Var("id", id, "required,uuid")
}

func validTarget(t domain.Target) error {
	if err := bind.Var("category", t.Category, "required,slug"); err != nil {
		return err
	}
	for field, v := range map[string]string{"sub_category": t.SubCategory, "brand": t.Brand, "model": t.Model} {
		if err := bind.Var(field, v, "omitempty,slug"); err != nil {
			return err
		}
	}
	return nil
}

func render(v domain.View, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return listed(v), nil
}

// listed puts the window counters in the envelope page
func listed(v domain.View) httpkit.Response {
	return httpkit.List(v, httpkit.Page{
		Size:    v.ViewSize,
		Loaded:  v.Loaded,
		Matched: v.Matched,
		Total:   v.Total,
		HasMore: v.HasMore,
	})
}
