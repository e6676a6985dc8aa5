package handlers

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"AgriWaste-Marketplace/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventVisibleAppliesListingFilter(t *testing.T) {
	filter, err := domain.NewListingFilter("husk", domain.ListingStatusAvailable)
	require.NoError(t, err)

	husks := &domain.Listing{ID: "l-1", WasteType: "Rice Husk", Status: domain.ListingStatusAvailable}
	soldHusks := &domain.Listing{ID: "l-2", WasteType: "Rice Husk", Status: domain.ListingStatusSold}
	straw := &domain.Listing{ID: "l-3", WasteType: "Straw", Status: domain.ListingStatusAvailable}

	assert.True(t, eventVisible(domain.NewEvent(domain.EventListingCreated, husks), filter))
	assert.False(t, eventVisible(domain.NewEvent(domain.EventListingUpdated, soldHusks), filter))
	assert.False(t, eventVisible(domain.NewEvent(domain.EventListingCreated, straw), filter))
	assert.True(t, eventVisible(domain.NewEvent(domain.EventOrderUpdated, &domain.Order{ID: "o-1"}), filter))
}

func TestWriteEventFraming(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	event := domain.NewEvent(domain.EventQueryResponded, map[string]string{"id": "q-1"}, "user-1")
	event.ID = "evt-1"
	require.NoError(t, writeEvent(w, event))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "id: evt-1\nevent: query.responded\ndata: {"))
	assert.True(t, strings.HasSuffix(out, "\n\n"))
	assert.NotContains(t, out, "user-1")
}
