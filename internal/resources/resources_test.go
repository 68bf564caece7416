package resources_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/shef088/Hospital-Management-System-sub001/internal/cache"
	"github.com/shef088/Hospital-Management-System-sub001/internal/config"
	"github.com/shef088/Hospital-Management-System-sub001/internal/models"
	"github.com/shef088/Hospital-Management-System-sub001/internal/resources"
	"github.com/shef088/Hospital-Management-System-sub001/internal/transport"
)

// fakeAPI is an in-memory patients endpoint with call counters.
type fakeAPI struct {
	mu       sync.Mutex
	patients map[string]models.Patient
	nextID   int

	listCalls atomic.Int32
	getCalls  atomic.Int32
	listDelay time.Duration
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		patients: map[string]models.Patient{
			"p1": {ID: "p1", FirstName: "Ama", LastName: "Boateng", Email: "ama@hospital.test"},
			"p2": {ID: "p2", FirstName: "Kofi", LastName: "Asante", Email: "kofi@hospital.test"},
		},
		nextID: 3,
	}
}

func (f *fakeAPI) register(engine *gin.Engine) {
	engine.GET("/patients", func(c *gin.Context) {
		f.listCalls.Add(1)
		if f.listDelay > 0 {
			time.Sleep(f.listDelay)
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		page := models.Page[models.Patient]{CurrentPage: 1, TotalPages: 1}
		for _, p := range f.patients {
			page.Items = append(page.Items, p)
		}
		page.Total = len(page.Items)
		c.JSON(http.StatusOK, page)
	})
	engine.GET("/patients/:id", func(c *gin.Context) {
		f.getCalls.Add(1)
		f.mu.Lock()
		defer f.mu.Unlock()
		p, ok := f.patients[c.Param("id")]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": "Patient not found"})
			return
		}
		c.JSON(http.StatusOK, p)
	})
	engine.POST("/patients", func(c *gin.Context) {
		var in models.PatientInput
		if err := c.ShouldBindJSON(&in); err != nil || in.Email == "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"message": "validation failed",
				"errors":  gin.H{"email": "is required"},
			})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		p := models.Patient{
			ID:        "p3",
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Email:     in.Email,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}
		f.patients[p.ID] = p
		c.JSON(http.StatusCreated, p)
	})
	engine.PATCH("/patients/:id", func(c *gin.Context) {
		var in models.PatientInput
		_ = c.ShouldBindJSON(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		p, ok := f.patients[c.Param("id")]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": "Patient not found"})
			return
		}
		if in.FirstName != "" {
			p.FirstName = in.FirstName
		}
		p.UpdatedAt = time.Now().UTC()
		f.patients[p.ID] = p
		c.JSON(http.StatusOK, p)
	})
	engine.DELETE("/patients/:id", func(c *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.patients[c.Param("id")]; !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": "Patient not found"})
			return
		}
		delete(f.patients, c.Param("id"))
		c.Status(http.StatusNoContent)
	})
}

func setup(t *testing.T) (*fakeAPI, *resources.Endpoints, *cache.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	api := newFakeAPI()
	api.register(engine)
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	tr := transport.New(config.APIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, nil, zerolog.Nop())
	store := cache.New(config.CacheConfig{TTL: time.Minute}, zerolog.Nop())
	return api, resources.New(tr, store, zerolog.Nop()), store
}

func TestList_CacheFirst(t *testing.T) {
	api, eps, _ := setup(t)
	ctx := context.Background()

	page, err := eps.Patients.List(ctx, models.ListParams{})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)

	_, err = eps.Patients.List(ctx, models.ListParams{})
	require.NoError(t, err)
	require.Equal(t, int32(1), api.listCalls.Load(), "second identical list is served from cache")

	// Different params are a different key.
	_, err = eps.Patients.List(ctx, models.ListParams{Page: 2, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, int32(2), api.listCalls.Load())
}

func TestList_ConcurrentCallsShareOneFetch(t *testing.T) {
	api, eps, _ := setup(t)
	api.listDelay = 50 * time.Millisecond
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eps.Patients.List(ctx, models.ListParams{Search: "a"})
			require.NoError(t, err)
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), api.listCalls.Load())
}

func TestCreate_WritesCacheAndStalesLists(t *testing.T) {
	api, eps, store := setup(t)
	ctx := context.Background()

	_, err := eps.Patients.List(ctx, models.ListParams{})
	require.NoError(t, err)

	created, err := eps.Patients.Create(ctx, models.PatientInput{
		FirstName: "Efua",
		LastName:  "Mensah",
		Email:     "efua@hospital.test",
	})
	require.NoError(t, err)
	require.Equal(t, "p3", created.ID)

	// The create response serves the follow-up Get without a network call.
	got, err := eps.Patients.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Efua", got.FirstName)
	require.Equal(t, int32(0), api.getCalls.Load())

	_, status, ok := store.Peek(cache.NewKey("patients", "all"))
	require.True(t, ok)
	require.Equal(t, cache.StatusStale, status, "list views must refetch after a create")
}

func TestCreate_FailureLeavesCacheUntouched(t *testing.T) {
	_, eps, store := setup(t)
	ctx := context.Background()

	_, err := eps.Patients.List(ctx, models.ListParams{})
	require.NoError(t, err)
	before := store.Len()

	_, err = eps.Patients.Create(ctx, models.PatientInput{FirstName: "NoEmail"})
	require.Error(t, err)
	require.True(t, transport.IsValidation(err))

	require.Equal(t, before, store.Len())
	_, status, _ := store.Peek(cache.NewKey("patients", "all"))
	require.Equal(t, cache.StatusReady, status, "prior cache state survives a failed mutation")
}

func TestUpdate_RefreshesItemEntry(t *testing.T) {
	api, eps, _ := setup(t)
	ctx := context.Background()

	updated, err := eps.Patients.Update(ctx, "p1", models.PatientInput{FirstName: "Amara"})
	require.NoError(t, err)
	require.Equal(t, "Amara", updated.FirstName)

	got, err := eps.Patients.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "Amara", got.FirstName)
	require.Equal(t, int32(0), api.getCalls.Load())
}

func TestRemove_ForgetsAndRefetches(t *testing.T) {
	api, eps, _ := setup(t)
	ctx := context.Background()

	page, err := eps.Patients.List(ctx, models.ListParams{})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)

	require.NoError(t, eps.Patients.Remove(ctx, "p1"))

	// Cache miss: the Get goes to the network, which answers not-found.
	_, err = eps.Patients.Get(ctx, "p1")
	require.Error(t, err)
	require.Equal(t, int32(1), api.getCalls.Load())

	var apiErr *transport.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestRemove_FailureLeavesCacheUnchanged(t *testing.T) {
	_, eps, store := setup(t)
	ctx := context.Background()

	_, err := eps.Patients.List(ctx, models.ListParams{})
	require.NoError(t, err)

	err = eps.Patients.Remove(ctx, "missing")
	require.Error(t, err)

	data, status, ok := store.Peek(cache.NewKey("patients", "all"))
	require.True(t, ok)
	require.Equal(t, cache.StatusReady, status)
	require.Equal(t, 2, data.(*models.Page[models.Patient]).Total)
}

// notificationsFixture serves a filterable notifications collection with a
// PATCH route that flips the read flag.
func notificationsFixture(t *testing.T) (*resources.Endpoints, *atomic.Int32) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var mu sync.Mutex
	items := map[string]models.Notification{
		"n1": {ID: "n1", RecipientID: "u1", Message: "shift changed"},
		"n2": {ID: "n2", RecipientID: "u1", Message: "task assigned", Read: true},
		"n3": {ID: "n3", RecipientID: "u2", Message: "appointment booked"},
	}
	var listCalls atomic.Int32

	engine := gin.New()
	engine.GET("/notifications", func(c *gin.Context) {
		listCalls.Add(1)
		mu.Lock()
		defer mu.Unlock()
		page := models.Page[models.Notification]{CurrentPage: 1, TotalPages: 1}
		for _, n := range items {
			if rid := c.Query("recipientId"); rid != "" && n.RecipientID != rid {
				continue
			}
			page.Items = append(page.Items, n)
		}
		page.Total = len(page.Items)
		c.JSON(http.StatusOK, page)
	})
	engine.PATCH("/notifications/:id", func(c *gin.Context) {
		var in models.NotificationInput
		_ = c.ShouldBindJSON(&in)
		mu.Lock()
		defer mu.Unlock()
		n, ok := items[c.Param("id")]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": "Notification not found"})
			return
		}
		if in.Read != nil {
			n.Read = *in.Read
		}
		n.UpdatedAt = time.Now().UTC()
		items[n.ID] = n
		c.JSON(http.StatusOK, n)
	})
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	tr := transport.New(config.APIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, nil, zerolog.Nop())
	store := cache.New(config.CacheConfig{TTL: time.Minute}, zerolog.Nop())
	return resources.New(tr, store, zerolog.Nop()), &listCalls
}

func TestUnreadNotifications_CountsPerRecipient(t *testing.T) {
	eps, listCalls := notificationsFixture(t)
	ctx := context.Background()

	n, err := eps.UnreadNotifications(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 1, n, "n2 is already read, n3 belongs to u2")

	// The count rides the cached recipient page.
	n, err = eps.UnreadNotifications(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, int32(1), listCalls.Load())
}

func TestMarkNotificationRead_FlipsFlagAndStalesCounts(t *testing.T) {
	eps, _ := notificationsFixture(t)
	ctx := context.Background()

	n, err := eps.UnreadNotifications(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	updated, err := eps.MarkNotificationRead(ctx, "n1")
	require.NoError(t, err)
	require.True(t, updated.Read)

	// The write stales the recipient page; the recount serves stale data
	// while revalidating, then settles on the flipped flag.
	require.Eventually(t, func() bool {
		n, err := eps.UnreadNotifications(ctx, "u1")
		return err == nil && n == 0
	}, time.Second, 10*time.Millisecond)
}

func TestApplyNotification_MergesInArrivalOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/notifications", func(c *gin.Context) {
		c.JSON(http.StatusOK, models.Page[models.Notification]{
			Items:       []models.Notification{{ID: "n1", Message: "existing"}},
			Total:       1,
			CurrentPage: 1,
			TotalPages:  1,
		})
	})
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	tr := transport.New(config.APIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, nil, zerolog.Nop())
	store := cache.New(config.CacheConfig{TTL: time.Minute}, zerolog.Nop())
	eps := resources.New(tr, store, zerolog.Nop())
	ctx := context.Background()

	_, err := eps.Notifications.List(ctx, models.ListParams{})
	require.NoError(t, err)

	eps.ApplyNotification(models.Notification{ID: "n2", Message: "pushed"})
	eps.ApplyNotification(models.Notification{ID: "n2", Message: "redelivered"})

	data, _, ok := store.Peek(cache.NewKey("notifications", "all"))
	require.True(t, ok)
	page := data.(*models.Page[models.Notification])
	require.Equal(t, 3, page.Total, "no deduplication on redelivered ids")
	require.Equal(t, "existing", page.Items[0].Message)
	require.Equal(t, "pushed", page.Items[1].Message)
	require.Equal(t, "redelivered", page.Items[2].Message)
}
