package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func createProperty(t *testing.T, token string, policy map[string]any) string {
	t.Helper()
	w := executeRequest(http.MethodPost, "/v1/properties", map[string]any{
		"title":           "Cabin by the lake",
		"max_guests":      4,
		"price_per_night": 12000,
		"policy":          policy,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w.Body.Bytes())["id"].(string)
}

func requestStay(token, propertyID, checkIn, checkOut string) (int, map[string]any) {
	w := executeRequest(http.MethodPost, "/v1/bookings", map[string]any{
		"property_id": propertyID,
		"check_in":    checkIn,
		"check_out":   checkOut,
		"guest_count": 2,
		"message":     "Visiting for the weekend",
	}, token)
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func decide(token, bookingID, decision, message string) (int, map[string]any) {
	w := executeRequest(http.MethodPost, "/v1/bookings/"+bookingID+"/decision", map[string]any{
		"decision":         decision,
		"response_message": message,
	}, token)
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func TestStayFlow(t *testing.T) {
	requireDB(t)
	clearTables()

	host := createTestUser(t, "host@example.com")
	friend := createTestUser(t, "friend@example.com")
	stranger := createTestUser(t, "stranger@example.com")
	befriend(t, host.ID, friend.ID)

	hostToken := generateToken(host)
	friendToken := generateToken(friend)
	strangerToken := generateToken(stranger)

	propertyID := createProperty(t, hostToken, map[string]any{"who_can_book": "degree_at_most", "value": 1})

	t.Run("EligibilityReflectsDegree", func(t *testing.T) {
		w := executeRequest(http.MethodGet, "/v1/properties/"+propertyID+"/eligibility", nil, friendToken)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w.Body.Bytes())
		assert.Equal(t, true, body["allowed"])
		assert.Equal(t, "within_degree", body["code"])
		assert.EqualValues(t, 1, body["connection_degree"])

		w = executeRequest(http.MethodGet, "/v1/properties/"+propertyID+"/eligibility", nil, strangerToken)
		require.Equal(t, http.StatusOK, w.Code)
		body = decode(t, w.Body.Bytes())
		assert.Equal(t, false, body["allowed"])
		assert.Equal(t, "not_connected", body["code"])
	})

	t.Run("StrangerIsDenied", func(t *testing.T) {
		code, body := requestStay(strangerToken, propertyID, "2099-06-01", "2099-06-05")
		require.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "eligibility_denied", body["kind"])
		assert.Contains(t, body["error"], "not connected")
	})

	var firstID string
	t.Run("FriendBooksAndHostApproves", func(t *testing.T) {
		code, body := requestStay(friendToken, propertyID, "2099-06-01", "2099-06-05")
		require.Equal(t, http.StatusCreated, code, body)
		assert.Equal(t, "pending", body["status"])
		assert.EqualValues(t, 4, body["nights"])
		assert.EqualValues(t, 48000, body["total_price"])
		firstID = body["id"].(string)

		// Only the host decides.
		code, _ = decide(friendToken, firstID, "approve", "")
		assert.Equal(t, http.StatusForbidden, code)

		code, body = decide(hostToken, firstID, "approve", "See you then")
		require.Equal(t, http.StatusOK, code, body)
		assert.Equal(t, "approved", body["status"])
	})

	t.Run("OverlapCannotBeApproved", func(t *testing.T) {
		// Touching the end date is fine.
		code, body := requestStay(friendToken, propertyID, "2099-06-05", "2099-06-07")
		require.Equal(t, http.StatusCreated, code, body)

		code, body = requestStay(friendToken, propertyID, "2099-06-04", "2099-06-06")
		require.Equal(t, http.StatusConflict, code, body)
		assert.Equal(t, "conflict", body["kind"])
	})

	t.Run("AvailabilityCheck", func(t *testing.T) {
		w := executeRequest(http.MethodGet,
			"/v1/properties/"+propertyID+"/availability/check?check_in=2099-06-03&check_out=2099-06-04", nil, strangerToken)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w.Body.Bytes())
		assert.Equal(t, false, body["available"])
		assert.Len(t, body["conflicts"], 1)

		w = executeRequest(http.MethodGet,
			"/v1/properties/"+propertyID+"/availability/check?check_in=2099-07-01&check_out=2099-07-03", nil, strangerToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decode(t, w.Body.Bytes())["available"])
	})

	t.Run("CancelFreesDates", func(t *testing.T) {
		w := executeRequest(http.MethodPost, "/v1/bookings/"+firstID+"/cancel", nil, friendToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "cancelled", decode(t, w.Body.Bytes())["status"])

		w = executeRequest(http.MethodGet,
			"/v1/properties/"+propertyID+"/availability/check?check_in=2099-06-01&check_out=2099-06-05", nil, friendToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decode(t, w.Body.Bytes())["available"])

		// Terminal bookings stay terminal.
		code, _ := decide(hostToken, firstID, "approve", "")
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("BlockedIntervalsAndCalendar", func(t *testing.T) {
		w := executeRequest(http.MethodPatch, "/v1/properties/"+propertyID+"/blocked-intervals", map[string]any{
			"blocked_intervals": []map[string]any{{"start": "2099-08-01", "end": "2099-08-10", "reason": "Renovation"}},
		}, hostToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		code, body := requestStay(friendToken, propertyID, "2099-08-09", "2099-08-12")
		require.Equal(t, http.StatusConflict, code, body)

		w = executeRequest(http.MethodGet, "/v1/properties/"+propertyID+"/calendar.ics", nil, friendToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/calendar"))
		assert.Contains(t, w.Body.String(), "Blocked: Renovation")
	})

	t.Run("HostListsIncomingRequests", func(t *testing.T) {
		w := executeRequest(http.MethodGet, "/v1/bookings?role=host&status=pending", nil, hostToken)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w.Body.Bytes())
		assert.EqualValues(t, 1, body["total"])
	})
}

func TestConcurrentApprovalsOverHTTP(t *testing.T) {
	requireDB(t)
	clearTables()

	host := createTestUser(t, "host@example.com")
	hostToken := generateToken(host)
	propertyID := createProperty(t, hostToken, map[string]any{"who_can_book": "anyone"})

	const guests = 6
	ids := make([]string, 0, guests)
	for i := 0; i < guests; i++ {
		g := createTestUser(t, fmt.Sprintf("guest%d@example.com", i))
		code, body := requestStay(generateToken(g), propertyID, "2099-09-10", "2099-09-14")
		require.Equal(t, http.StatusCreated, code, body)
		ids = append(ids, body["id"].(string))
	}

	codes := make([]int, guests)
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			codes[i], _ = decide(hostToken, id, "approve", "")
		}(i, id)
	}
	wg.Wait()

	approved := 0
	for _, code := range codes {
		switch code {
		case http.StatusOK:
			approved++
		case http.StatusConflict:
		default:
			t.Errorf("unexpected status %d", code)
		}
	}
	assert.Equal(t, 1, approved)

	var count int
	require.NoError(t, testPool.QueryRow(context.Background(),
		"SELECT count(*) FROM public.bookings WHERE property_id = $1 AND status = 'approved'", propertyID).Scan(&count))
	assert.Equal(t, 1, count)
}
