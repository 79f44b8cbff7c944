package marketplace

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Umary15/student-skill-share/internal/model"
)

func TestCreateGig(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		h, store := newTestHandler(t)

		rec := doJSON(t, h.CreateGig, http.MethodPost, "/gigs",
			`{"title":"Resume polish","description":"One page, two revisions","category":"resume_design","price_cents":1500,"delivery_days":2}`,
			"seller-1", nil)

		require.Equal(t, http.StatusCreated, rec.Code)
		var got model.Gig
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "seller-1", got.UserID)
		assert.True(t, got.IsActive)
		require.Len(t, store.gigs, 1)
	})

	t.Run("unknown category rejected", func(t *testing.T) {
		h, store := newTestHandler(t)

		rec := doJSON(t, h.CreateGig, http.MethodPost, "/gigs",
			`{"title":"x","description":"y","category":"freelance","price_cents":1500,"delivery_days":2}`,
			"seller-1", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, store.gigs)
	})

	t.Run("non-positive price rejected", func(t *testing.T) {
		h, _ := newTestHandler(t)

		rec := doJSON(t, h.CreateGig, http.MethodPost, "/gigs",
			`{"title":"x","description":"y","category":"tutoring","price_cents":0,"delivery_days":2}`,
			"seller-1", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateGigOwnership(t *testing.T) {
	h, store := newTestHandler(t)
	seedGig(store, "seller-1", 5000)

	rec := doJSON(t, h.UpdateGig, http.MethodPatch, "/gigs/gig-1",
		`{"price_cents":7500}`, "intruder", map[string]string{"id": "gig-1"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, int64(5000), store.gigs["gig-1"].PriceCents)
}

func TestDeleteGigDeactivates(t *testing.T) {
	h, store := newTestHandler(t)
	seedGig(store, "seller-1", 5000)

	rec := doJSON(t, h.DeleteGig, http.MethodDelete, "/gigs/gig-1", "", "seller-1", map[string]string{"id": "gig-1"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, store.gigs["gig-1"].IsActive, "rows stay for order history")
}

func TestListGigsHidesInactive(t *testing.T) {
	h, store := newTestHandler(t)
	seedGig(store, "seller-1", 5000)
	store.gigs["gig-2"] = &model.Gig{ID: "gig-2", UserID: "seller-2", IsActive: false}

	rec := doJSON(t, h.ListGigs, http.MethodGet, "/gigs", "", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Gigs []model.Gig `json:"gigs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Gigs, 1)
	assert.Equal(t, "gig-1", out.Gigs[0].ID)
}
