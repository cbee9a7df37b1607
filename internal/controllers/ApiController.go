package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gookit/validate"

	"github.com/lockedloop/tempus-fugit/internal/models"
	"github.com/lockedloop/tempus-fugit/internal/providers"
	"github.com/lockedloop/tempus-fugit/internal/services"
	"github.com/lockedloop/tempus-fugit/internal/storage"
	"github.com/lockedloop/tempus-fugit/internal/timecalc"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// containersCacheKey is the single cached response, the rendered container
// list. Mutating handlers evict it so a stale view never survives past the
// write that invalidated it.
const containersCacheKey = "containers"

type ApiController struct {
	logger  providers.Logger
	service services.ContainerServiceInterface
	store   storage.StoreInterface
	cache   providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, service services.ContainerServiceInterface, store storage.StoreInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		store:   store,
		cache:   cache,
	}
}

// containerView is the record plus the computed fields the renderer needs.
type containerView struct {
	models.Container
	Countdown  *services.CountdownState `json:"countdown,omitempty"`
	Fullscreen bool                     `json:"fullscreen"`
}

func viewOf(lc *services.LiveContainer) containerView {
	return containerView{
		Container:  lc.Record,
		Countdown:  lc.Countdown,
		Fullscreen: lc.Fullscreen,
	}
}

func (ac *ApiController) writeJSON(w http.ResponseWriter, status int, payload any) {
	gson, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) invalidateContainers() {
	ac.cache.Del(containersCacheKey)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	return io.ReadAll(r.Body)
}

func (ac *ApiController) GetContainers(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, containersCacheKey, func() (any, error) {
		live := ac.service.Containers()
		views := make([]containerView, 0, len(live))
		for _, lc := range live {
			views = append(views, viewOf(lc))
		}
		return views, nil
	})
}

func (ac *ApiController) CreateContainer(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	draft, err := models.DecodeDraft(body)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	lc, err := ac.service.AddNewContainer(draft)
	if err != nil {
		if isValidationError(err) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		ac.logger.Errorf(providers.TypeApi, "Create failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.invalidateContainers()
	ac.writeJSON(w, http.StatusCreated, viewOf(lc))
}

func isValidationError(err error) bool {
	var ve validate.Errors
	if errors.As(err, &ve) {
		return true
	}
	return errors.Is(err, models.ErrMissingDate) ||
		errors.Is(err, models.ErrInvertedRange) ||
		errors.Is(err, models.ErrMissingImageURL) ||
		errors.Is(err, models.ErrUnknownDataShape)
}

func (ac *ApiController) UpdateContainer(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	lc, ok := ac.service.GetContainer(id)
	if !ok {
		// stale reference, silent no-op
		w.WriteHeader(http.StatusNoContent)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	patch, err := models.DecodePatch(lc.Record.Type, body)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := ac.service.UpdateContainer(id, patch); err != nil {
		ac.logger.Errorf(providers.TypeApi, "Update of %q failed: %s", id, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.invalidateContainers()
	if lc, ok = ac.service.GetContainer(id); ok {
		ac.writeJSON(w, http.StatusOK, viewOf(lc))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) DeleteContainer(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if err := ac.service.DeleteContainer(id); err != nil {
		ac.logger.Errorf(providers.TypeApi, "Delete of %q failed: %s", id, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	ac.invalidateContainers()
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) AdjustHeight(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	delta, err := strconv.Atoi(r.URL.Query().Get("delta"))
	if err != nil || (delta != 1 && delta != -1) {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := ac.service.AdjustHeight(id, delta); err != nil {
		ac.logger.Errorf(providers.TypeApi, "Height change of %q failed: %s", id, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	ac.invalidateContainers()
	w.WriteHeader(http.StatusNoContent)
}

type todoRequest struct {
	Op     string `json:"op"`
	TodoID string `json:"todoId"`
	Text   string `json:"text"`
}

func (ac *ApiController) UpdateTodos(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	body, err := readBody(w, r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	var req todoRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	var mutate func(todos []models.TodoItem) []models.TodoItem
	switch req.Op {
	case "add":
		mutate = func(todos []models.TodoItem) []models.TodoItem {
			return append(todos, models.TodoItem{ID: models.NewTodoID(), Text: req.Text})
		}
	case "toggle":
		mutate = func(todos []models.TodoItem) []models.TodoItem {
			for i := range todos {
				if todos[i].ID == req.TodoID {
					todos[i].Completed = !todos[i].Completed
				}
			}
			return todos
		}
	case "remove":
		mutate = func(todos []models.TodoItem) []models.TodoItem {
			out := todos[:0]
			for _, t := range todos {
				if t.ID != req.TodoID {
					out = append(out, t)
				}
			}
			return out
		}
	default:
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := ac.service.UpdateTodos(id, mutate); err != nil {
		ac.logger.Errorf(providers.TypeApi, "Todo %s on %q failed: %s", req.Op, id, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	ac.invalidateContainers()
	w.WriteHeader(http.StatusNoContent)
}

type reorderRequest struct {
	Order  []string `json:"order"`
	Moved  string   `json:"moved"`
	Column *int     `json:"column"`
}

func (ac *ApiController) Reorder(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	var req reorderRequest
	if err := json.Unmarshal(body, &req); err != nil || req.Order == nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	column := -1
	if req.Column != nil {
		column = *req.Column
	}

	if err := ac.service.CommitReorder(req.Order, req.Moved, column); err != nil {
		ac.logger.Errorf(providers.TypeApi, "Reorder failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	ac.invalidateContainers()
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) SetFullscreen(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	on := r.URL.Query().Get("on") == "true"
	ac.service.SetFullscreen(id, on)
	ac.invalidateContainers()
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) GetSettings(w http.ResponseWriter, r *http.Request) {
	ac.writeJSON(w, http.StatusOK, ac.service.Settings())
}

// UpdateSettings merges the posted fields over the current settings, so a
// partial document changes only what it names.
func (ac *ApiController) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	settings := ac.service.Settings()
	if err := json.Unmarshal(body, &settings); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := ac.service.UpdateSettings(settings); err != nil {
		ac.logger.Errorf(providers.TypeApi, "Settings update failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	ac.writeJSON(w, http.StatusOK, ac.service.Settings())
}

func (ac *ApiController) Export(w http.ResponseWriter, r *http.Request) {
	doc, err := ac.store.Export()
	if err != nil {
		ac.logger.Errorf(providers.TypeApi, "Export failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="dashboard-export.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func (ac *ApiController) Import(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := ac.store.Import(body); err != nil {
		if errors.Is(err, storage.ErrInvalidImport) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ac.logger.Errorf(providers.TypeApi, "Import failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := ac.service.LoadContainers(); err != nil {
		ac.logger.Errorf(providers.TypeApi, "Reload after import failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	ac.invalidateContainers()
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) GetClock(w http.ResponseWriter, r *http.Request) {
	ac.writeJSON(w, http.StatusOK, timecalc.CurrentBreakdown(time.Now()))
}
