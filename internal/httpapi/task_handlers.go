package httpapi

import (
	"net/http"
	"strings"
	"time"

	"grow104.org/internal/apperr"
	"grow104.org/internal/auth"
	"grow104.org/internal/garden"
	"grow104.org/internal/validate"
)

func (a *API) handleTasksCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listTasks(w, r)
	case http.MethodPost:
		a.createTask(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleTaskResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/tasks/")
	if id == "" || strings.Contains(id, "/") {
		writeErr(w, r, apperr.New(apperr.KindNotFound, "Task not found"))
		return
	}
	switch r.Method {
	case http.MethodPut:
		a.updateTask(w, r, id)
	case http.MethodDelete:
		a.deleteTask(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodPut, http.MethodDelete)
	}
}

// listTasks scopes results by role: admins see everything, everyone
// else sees their own assignments.
func (a *API) listTasks(w http.ResponseWriter, r *http.Request) {
	p, err := a.principal(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	q := r.URL.Query()
	filter := garden.TaskFilter{
		GardenID: strings.TrimSpace(q.Get("gardenId")),
		Status:   strings.TrimSpace(q.Get("status")),
	}
	if p.Role != auth.RoleAdmin {
		filter.AssignedTo = p.ID
	}
	tasks, err := a.store.Tasks().List(r.Context(), filter)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []*garden.Task{}
	}
	writeData(w, http.StatusOK, tasks, "")
}

func (a *API) createTask(w http.ResponseWriter, r *http.Request) {
	p, err := a.principal(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := auth.RequireGardenerOrAdmin(p); err != nil {
		writeErr(w, r, err)
		return
	}
	payload, err := decodePayload(w, r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	values, err := validate.Apply(validate.TaskCreate, payload)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	gardenID := values.String("gardenId")
	if err := a.policy.RequireManage(r.Context(), p, gardenID); err != nil {
		writeErr(w, r, err)
		return
	}

	task := &garden.Task{
		GardenID:    gardenID,
		AssignedTo:  values.String("assignedTo"),
		Title:       values.String("title"),
		Description: values.String("description"),
		Status:      values.String("status"),
	}
	if due, ok := values.Time("dueDate"); ok {
		task.DueDate = &due
	}
	if err := a.store.Tasks().Create(r.Context(), task); err != nil {
		writeErr(w, r, err)
		return
	}
	if task.AssignedTo != p.ID {
		a.notify.Notify(r.Context(), task.AssignedTo,
			"New task assigned",
			"You have been assigned: "+task.Title,
			"task")
	}
	writeData(w, http.StatusCreated, task, "Task created")
}

func (a *API) updateTask(w http.ResponseWriter, r *http.Request, id string) {
	p, err := a.principal(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	task, err := a.store.Tasks().FindByID(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := a.requireTaskMutate(r, p, task); err != nil {
		writeErr(w, r, err)
		return
	}

	payload, err := decodePayload(w, r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	values, err := validate.Apply(validate.TaskUpdate, payload)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	var patch garden.TaskPatch
	if values.Has("title") {
		title := values.String("title")
		patch.Title = &title
	}
	if values.Has("description") {
		desc := values.String("description")
		patch.Description = &desc
	}
	if values.Has("status") {
		status := values.String("status")
		patch.Status = &status
	}
	if values.Has("dueDate") {
		if values.IsNull("dueDate") {
			patch.DueDate = garden.PatchNull[time.Time]()
		} else {
			due, _ := values.Time("dueDate")
			patch.DueDate = garden.PatchValue(due)
		}
	}

	updated, err := a.store.Tasks().Update(r.Context(), id, patch)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, updated, "Task updated")
}

func (a *API) deleteTask(w http.ResponseWriter, r *http.Request, id string) {
	p, err := a.principal(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	task, err := a.store.Tasks().FindByID(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := a.requireTaskMutate(r, p, task); err != nil {
		writeErr(w, r, err)
		return
	}
	if err := a.store.Tasks().Delete(r.Context(), id); err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"id": id}, "Task deleted")
}

// requireTaskMutate allows the assignee, a gardener who owns the
// task's garden, or an admin.
func (a *API) requireTaskMutate(r *http.Request, p auth.Principal, task *garden.Task) error {
	res := auth.ResourceOwnership{UserID: task.AssignedTo}
	if p.Role == auth.RoleGardener {
		g, err := a.store.Gardens().FindByID(r.Context(), task.GardenID)
		if err == nil {
			res.GardenOwnerID = g.OwnerID
		}
	}
	return auth.RequireMutate(p, res)
}
