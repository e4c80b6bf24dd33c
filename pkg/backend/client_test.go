package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rubiojr/stusearch/pkg/student"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/api")
}

func TestHealth(t *testing.T) {
	c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, c.Health(context.Background()))
}

func TestHealthNon2xx(t *testing.T) {
	c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	err := c.Health(context.Background())
	require.ErrorIs(t, err, ErrUnhealthy)
	assert.NotErrorIs(t, err, ErrTransport)
}

func TestHealthUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewClient(url).Health(context.Background())
	require.ErrorIs(t, err, ErrTransport)
}

func TestColumns(t *testing.T) {
	c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/columns", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"columns":["Talaba ID","Fakultet"],"total_students":1523}`))
	})

	resp, err := c.Columns(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.TotalStudents)
	assert.Equal(t, 1523, *resp.TotalStudents)
	assert.Equal(t, []string{"Talaba ID", "Fakultet"}, resp.Columns)
}

func TestSearchEncodesTermOnce(t *testing.T) {
	var calls atomic.Int32
	c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/api/search", r.URL.Path)
		assert.Equal(t, "Ali & Vali/2", r.URL.Query().Get("q"))
		assert.NotContains(t, r.URL.RawQuery, "&Vali")
		_, _ = w.Write([]byte(`{"success":true,"count":2,"students":[{"Talaba ID":"2","Kurs":3},{"Talaba ID":"1","Fakultet":null}]}`))
	})

	resp, elapsed, err := c.Search(context.Background(), "Ali & Vali/2")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Greater(t, elapsed, time.Duration(0))

	require.Len(t, resp.Students, 2)
	assert.Equal(t, "2", resp.Students[0].Get(student.FieldID))
	assert.Equal(t, "3", resp.Students[0].Get(student.FieldCourse))
	assert.True(t, resp.Students[1].IsNull(student.FieldFaculty))
}

func TestSearchLogicalFailureIsData(t *testing.T) {
	c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"Qidiruv so'rovi bo'sh","students":[]}`))
	})

	resp, _, err := c.Search(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Qidiruv so'rovi bo'sh", resp.Message)
}

func TestSearchMissingSuccessIsFailure(t *testing.T) {
	c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"X"}`))
	})

	resp, _, err := c.Search(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "X", resp.Message)
}

func TestSearchEncodesSpacesAsPercent20(t *testing.T) {
	c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "q=Ali%20Vali%2BA%26B", r.URL.RawQuery)
		assert.Equal(t, "Ali Vali+A&B", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"success":true,"students":[]}`))
	})

	_, _, err := c.Search(context.Background(), "Ali Vali+A&B")
	require.NoError(t, err)
}

func TestSearchMalformedBody(t *testing.T) {
	c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway error</html>`))
	})

	_, elapsed, err := c.Search(context.Background(), "x")
	require.ErrorIs(t, err, ErrMalformedResponse)
	assert.Greater(t, elapsed, time.Duration(0))
}

func TestSearchSchemaMismatch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"array body", `[]`},
		{"string body", `"ok"`},
		{"students not array", `{"success":true,"students":"nope"}`},
		{"nested field", `{"success":true,"students":[{"Talaba ID":{"x":1}}]}`},
		{"success not bool", `{"success":"yes"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			_, _, err := c.Search(context.Background(), "x")
			require.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestSearchTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(block)
		srv.Close()
	})

	c := NewClient(srv.URL, WithTimeout(50*time.Millisecond))
	_, _, err := c.Search(context.Background(), "slow")
	require.ErrorIs(t, err, ErrTransport)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("")
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Zero(t, c.http.Timeout)

	c = NewClient("http://example.test/api/")
	assert.Equal(t, "http://example.test/api", c.BaseURL())
}
