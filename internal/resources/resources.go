package resources

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/shef088/Hospital-Management-System-sub001/internal/cache"
	"github.com/shef088/Hospital-Management-System-sub001/internal/models"
	"github.com/shef088/Hospital-Management-System-sub001/internal/transport"
)

// Resource is the CRUD façade for one entity type, composing transport and
// cache. T is the entity, In its mutation payload.
type Resource[T models.Entity, In any] struct {
	name  string
	t     *transport.Client
	cache *cache.Store
	log   zerolog.Logger
}

func newResource[T models.Entity, In any](name models.ResourceType, t *transport.Client, c *cache.Store, log zerolog.Logger) *Resource[T, In] {
	return &Resource[T, In]{
		name:  string(name),
		t:     t,
		cache: c,
		log:   log.With().Str("resource", string(name)).Logger(),
	}
}

func (r *Resource[T, In]) path(id string) string {
	if id == "" {
		return "/" + r.name
	}
	return "/" + r.name + "/" + id
}

// List is a cache-first read of a collection page. The entry is tagged
// with the type and with every contained id so narrowed invalidation
// reaches it.
func (r *Resource[T, In]) List(ctx context.Context, params models.ListParams) (*models.Page[T], error) {
	key := cache.NewKey(r.name, params.CacheKey())
	v, err := r.cache.Read(ctx, key, func(ctx context.Context) (any, []string, error) {
		var page models.Page[T]
		if err := r.t.Get(ctx, r.path(""), params.Query(), &page); err != nil {
			return nil, nil, err
		}
		tags := make([]string, 0, len(page.Items))
		for _, item := range page.Items {
			tags = append(tags, cache.IDTag(r.name, item.GetID()))
		}
		return &page, tags, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Page[T]), nil
}

// Get is a cache-first read of a single entity.
func (r *Resource[T, In]) Get(ctx context.Context, id string) (*T, error) {
	key := cache.ItemKey(r.name, id)
	v, err := r.cache.Read(ctx, key, func(ctx context.Context) (any, []string, error) {
		var item T
		if err := r.t.Get(ctx, r.path(id), nil, &item); err != nil {
			return nil, nil, err
		}
		return &item, []string{cache.IDTag(r.name, id)}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}

// Create posts the payload and, on success, writes the server's entity into
// the cache and staleness-marks the type's list queries. A failed create
// leaves the cache untouched.
func (r *Resource[T, In]) Create(ctx context.Context, in In) (*T, error) {
	var created T
	if err := r.t.Post(ctx, r.path(""), in, &created); err != nil {
		return nil, err
	}
	r.cache.Write(r.name, created.GetID(), &created)
	r.log.Debug().Str("id", created.GetID()).Msg("created")
	return &created, nil
}

// Update patches the entity; cache handling mirrors Create. Concurrent
// updates on one id are ordered only by the network: the cache keeps
// whichever response lands last, the server being the authority.
func (r *Resource[T, In]) Update(ctx context.Context, id string, in In) (*T, error) {
	var updated T
	if err := r.t.Patch(ctx, r.path(id), in, &updated); err != nil {
		return nil, err
	}
	r.cache.Write(r.name, updated.GetID(), &updated)
	r.log.Debug().Str("id", id).Msg("updated")
	return &updated, nil
}

// Remove deletes the entity and forgets it locally: the item entry is
// evicted and the id dropped from list snapshots, so a following Get
// misses and refetches. A failed delete leaves the cache unchanged.
func (r *Resource[T, In]) Remove(ctx context.Context, id string) error {
	if err := r.t.Delete(ctx, r.path(id)); err != nil {
		return err
	}
	r.cache.Forget(r.name, id)
	r.log.Debug().Str("id", id).Msg("removed")
	return nil
}

// Invalidate marks every cached query of the type stale.
func (r *Resource[T, In]) Invalidate() {
	r.cache.Invalidate(r.name, "")
}

// Endpoints bundles the CRUD façades for every entity the API serves.
type Endpoints struct {
	Patients       *Resource[models.Patient, models.PatientInput]
	Staff          *Resource[models.Staff, models.StaffInput]
	Departments    *Resource[models.Department, models.DepartmentInput]
	Roles          *Resource[models.Role, models.RoleInput]
	Permissions    *Resource[models.Permission, models.PermissionInput]
	Shifts         *Resource[models.Shift, models.ShiftInput]
	Tasks          *Resource[models.Task, models.TaskInput]
	MedicalRecords *Resource[models.MedicalRecord, models.MedicalRecordInput]
	Appointments   *Resource[models.Appointment, models.AppointmentInput]
	Notifications  *Resource[models.Notification, models.NotificationInput]

	cache *cache.Store
}

func New(t *transport.Client, c *cache.Store, log zerolog.Logger) *Endpoints {
	return &Endpoints{
		Patients:       newResource[models.Patient, models.PatientInput](models.ResourcePatients, t, c, log),
		Staff:          newResource[models.Staff, models.StaffInput](models.ResourceStaff, t, c, log),
		Departments:    newResource[models.Department, models.DepartmentInput](models.ResourceDepartments, t, c, log),
		Roles:          newResource[models.Role, models.RoleInput](models.ResourceRoles, t, c, log),
		Permissions:    newResource[models.Permission, models.PermissionInput](models.ResourcePermissions, t, c, log),
		Shifts:         newResource[models.Shift, models.ShiftInput](models.ResourceShifts, t, c, log),
		Tasks:          newResource[models.Task, models.TaskInput](models.ResourceTasks, t, c, log),
		MedicalRecords: newResource[models.MedicalRecord, models.MedicalRecordInput](models.ResourceMedicalRecords, t, c, log),
		Appointments:   newResource[models.Appointment, models.AppointmentInput](models.ResourceAppointments, t, c, log),
		Notifications:  newResource[models.Notification, models.NotificationInput](models.ResourceNotifications, t, c, log),
		cache:          c,
	}
}

// ApplyNotification merges a realtime event into the cached notification
// lists, in call order. No deduplication: a redelivered id appends again.
func (e *Endpoints) ApplyNotification(n models.Notification) {
	e.cache.Append(string(models.ResourceNotifications), n.ID, n)
}

// MarkNotificationRead flips the read flag server-side and refreshes the
// cache from the response.
func (e *Endpoints) MarkNotificationRead(ctx context.Context, id string) (*models.Notification, error) {
	read := true
	return e.Notifications.Update(ctx, id, models.NotificationInput{Read: &read})
}

// UnreadNotifications counts unread entries for a recipient from the
// (possibly cached) first page of their notifications.
func (e *Endpoints) UnreadNotifications(ctx context.Context, recipientID string) (int, error) {
	page, err := e.Notifications.List(ctx, models.ListParams{
		Filters: map[string]string{"recipientId": recipientID},
	})
	if err != nil {
		return 0, err
	}
	n := 0
	for _, item := range page.Items {
		if !item.Read {
			n++
		}
	}
	return n, nil
}
